package application

import (
	"context"
	"errors"
	"time"

	"github.com/ipede/oauth-provider-service/internal/domain"
	"github.com/ipede/oauth-provider-service/internal/infrastructure/credentials"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// maxCredentialAttempts bounds the regenerate-and-retry loop that recovers
// from generated credentials colliding with stored ones. Collisions are
// vanishingly rare, so hitting the bound means something is broken and the
// caller gets ErrInternal rather than ErrUniquenessCollision.
const maxCredentialAttempts = 3

// ApplicationService manages registered client applications.
type ApplicationService struct {
	apps   domain.ApplicationRepository
	logger *zap.Logger
}

func NewApplicationService(apps domain.ApplicationRepository, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		apps:   apps,
		logger: logger,
	}
}

// Create registers a new application with generated client credentials
// and returns it along with the cleartext client secret. Only the secret
// hash is stored, so this is the one chance to hand the secret to the
// client developer. Both client types receive a secret; public clients
// simply cannot be trusted to keep theirs.
func (s *ApplicationService) Create(ctx context.Context, clientType domain.ClientType, grantType domain.GrantType, redirectURIs []string, name string, ownerID ulid.ULID) (*domain.Application, string, error) {
	if !clientType.Valid() {
		return nil, "", domain.ErrInvalidClientType
	}
	if !grantType.Valid() {
		return nil, "", domain.ErrInvalidGrantType
	}
	if err := domain.ValidateURIList(redirectURIs); err != nil {
		return nil, "", err
	}

	secret := credentials.GenerateClientSecret()
	hash, err := credentials.HashSecret(secret)
	if err != nil {
		s.logger.Error("failed to hash client secret", zap.Error(err))
		return nil, "", domain.ErrInternal
	}

	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		app := domain.NewApplication(
			credentials.GenerateClientID(),
			hash,
			clientType, grantType, redirectURIs, name, ownerID,
		)

		err := s.apps.Create(ctx, app)
		if err == nil {
			return app, secret, nil
		}
		if !errors.Is(err, domain.ErrUniquenessCollision) {
			return nil, "", err
		}
	}

	s.logger.Error("exhausted client credential generation attempts", zap.String("name", name))
	return nil, "", domain.ErrInternal
}

// Authenticate verifies a confidential client's credentials and returns
// the application they belong to. An application that never received a
// secret cannot authenticate this way.
func (s *ApplicationService) Authenticate(ctx context.Context, clientID, secret string) (*domain.Application, error) {
	app, err := s.apps.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := credentials.CheckSecret(secret, app.ClientSecret); err != nil {
		return nil, domain.ErrInvalidClientSecret
	}
	return app, nil
}

// Get retrieves an application by ID
func (s *ApplicationService) Get(ctx context.Context, id ulid.ULID) (*domain.Application, error) {
	return s.apps.FindByID(ctx, id)
}

// GetByClientID retrieves an application by its client identifier
func (s *ApplicationService) GetByClientID(ctx context.Context, clientID string) (*domain.Application, error) {
	return s.apps.FindByClientID(ctx, clientID)
}

// List retrieves applications with pagination
func (s *ApplicationService) List(ctx context.Context, limit, offset int) ([]*domain.Application, error) {
	return s.apps.List(ctx, limit, offset)
}

// Update changes the registration of an existing application. Generated
// credentials are not touched; the client identifier never changes.
func (s *ApplicationService) Update(ctx context.Context, id ulid.ULID, clientType domain.ClientType, grantType domain.GrantType, redirectURIs []string, name string) (*domain.Application, error) {
	if !clientType.Valid() {
		return nil, domain.ErrInvalidClientType
	}
	if !grantType.Valid() {
		return nil, domain.ErrInvalidGrantType
	}
	if err := domain.ValidateURIList(redirectURIs); err != nil {
		return nil, err
	}

	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if clientType == domain.ClientConfidential && app.ClientSecret == "" {
		return nil, domain.ErrClientSecretRequired
	}

	app.ClientType = clientType
	app.GrantType = grantType
	app.RedirectURIs = redirectURIs
	app.Name = name
	app.UpdatedAt = time.Now()

	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Delete removes an application. Its grants and tokens go with it.
func (s *ApplicationService) Delete(ctx context.Context, id ulid.ULID) error {
	return s.apps.Delete(ctx, id)
}
