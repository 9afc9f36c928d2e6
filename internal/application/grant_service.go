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

// GrantService issues and exchanges authorization grants.
type GrantService struct {
	grants domain.GrantRepository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewGrantService(grants domain.GrantRepository, ttl time.Duration, logger *zap.Logger) *GrantService {
	return &GrantService{
		grants: grants,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Issue creates a grant bound to the given redirect URI. The URI must
// already have passed the application's redirect check; Issue only binds
// it to the code.
func (s *GrantService) Issue(ctx context.Context, app *domain.Application, ownerID ulid.ULID, redirectURI string, scope []string) (*domain.Grant, error) {
	if err := domain.ValidateScope(scope); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		grant := domain.NewGrant(credentials.GenerateGrantCode(), app.ID, ownerID, redirectURI, scope, s.now(), s.ttl)

		err := s.grants.Create(ctx, grant)
		if err == nil {
			return grant, nil
		}
		if !errors.Is(err, domain.ErrUniquenessCollision) {
			return nil, err
		}
	}

	s.logger.Error("exhausted grant code generation attempts", zap.String("application_id", app.ID.String()))
	return nil, domain.ErrInternal
}

// Exchange consumes a grant by code. The code is removed in the same
// conditional delete that fetches it, so two exchanges of one code can
// never both succeed; expiry and redirect binding are then checked against
// the consumed grant, and a grant that fails them stays burned.
func (s *GrantService) Exchange(ctx context.Context, code, redirectURI string) (*domain.Grant, error) {
	grant, err := s.grants.ConsumeByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if grant.IsExpired(s.now()) {
		return nil, domain.ErrGrantExpired
	}
	if !grant.RedirectURIMatches(redirectURI) {
		return nil, domain.ErrRedirectURIMismatch
	}
	return grant, nil
}

// Revoke withdraws an unexchanged grant. Revoking an unknown code is a
// no-op.
func (s *GrantService) Revoke(ctx context.Context, code string) error {
	return s.grants.Delete(ctx, code)
}

// RevokeByApplication withdraws every outstanding grant issued to an
// application, leaving the registration itself in place.
func (s *GrantService) RevokeByApplication(ctx context.Context, applicationID ulid.ULID) error {
	s.logger.Debug("revoking all grants for application", zap.String("application_id", applicationID.String()))
	return s.grants.DeleteByApplicationID(ctx, applicationID)
}

// PurgeExpired removes grants whose expiry has passed and reports how many
// were dropped.
func (s *GrantService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.grants.DeleteExpired(ctx, s.now())
}
