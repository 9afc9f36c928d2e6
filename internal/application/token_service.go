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

// TokenService issues, validates, refreshes and revokes access and refresh
// tokens.
type TokenService struct {
	tokens    domain.TokenRepository
	accessTTL time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewTokenService(tokens domain.TokenRepository, accessTTL time.Duration, logger *zap.Logger) *TokenService {
	return &TokenService{
		tokens:    tokens,
		accessTTL: accessTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// IssueAccessToken creates a bare access token, as used by the implicit
// flow where no refresh token is handed out.
func (s *TokenService) IssueAccessToken(ctx context.Context, applicationID, ownerID ulid.ULID, scope []string) (*domain.AccessToken, error) {
	if err := domain.ValidateScope(scope); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		token := domain.NewAccessToken(credentials.GenerateToken(), applicationID, ownerID, scope, s.now(), s.accessTTL)

		err := s.tokens.CreateAccessToken(ctx, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, domain.ErrUniquenessCollision) {
			return nil, err
		}
	}

	s.logger.Error("exhausted access token generation attempts", zap.String("application_id", applicationID.String()))
	return nil, domain.ErrInternal
}

// IssueRefreshToken binds a new refresh token to an existing access token.
// An access token can carry at most one; a second request fails with
// ErrRefreshTokenConflict.
func (s *TokenService) IssueRefreshToken(ctx context.Context, access *domain.AccessToken) (*domain.RefreshToken, error) {
	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		token := domain.NewRefreshToken(credentials.GenerateToken(), access.ID, access.ApplicationID, access.OwnerID, s.now())

		err := s.tokens.CreateRefreshToken(ctx, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, domain.ErrUniquenessCollision) {
			return nil, err
		}
	}

	s.logger.Error("exhausted refresh token generation attempts", zap.String("access_token_id", access.ID.String()))
	return nil, domain.ErrInternal
}

// IssueTokenPair creates an access token and its refresh token atomically,
// as used when exchanging an authorization grant or a direct (password or
// client-credential) grant.
func (s *TokenService) IssueTokenPair(ctx context.Context, applicationID, ownerID ulid.ULID, scope []string) (*domain.TokenPair, error) {
	if err := domain.ValidateScope(scope); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		pair := s.newTokenPair(applicationID, ownerID, scope)

		err := s.tokens.CreateTokenPair(ctx, pair)
		if err == nil {
			return pair, nil
		}
		if !errors.Is(err, domain.ErrUniquenessCollision) {
			return nil, err
		}
	}

	s.logger.Error("exhausted token pair generation attempts", zap.String("application_id", applicationID.String()))
	return nil, domain.ErrInternal
}

// Validate reports whether the given token string identifies a live access
// token covering every requested scope. An unknown token is merely
// invalid, not an error; the error return is reserved for storage
// failures.
func (s *TokenService) Validate(ctx context.Context, token string, scopes []string) (bool, error) {
	access, err := s.tokens.FindAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrAccessTokenNotFound) {
			return false, nil
		}
		return false, err
	}
	return access.IsValid(s.now(), scopes), nil
}

// Refresh exchanges a refresh token for a fresh token pair with the same
// application, owner and scope. The old pair is atomically replaced; a
// stale refresh token, including one that just lost a concurrent refresh
// race, fails with ErrRefreshTokenNotFound.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	refresh, err := s.tokens.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.FindAccessTokenByID(ctx, refresh.AccessTokenID)
	if err != nil {
		if errors.Is(err, domain.ErrAccessTokenNotFound) {
			// The bound access token is gone, so the refresh token is dead
			return nil, domain.ErrRefreshTokenNotFound
		}
		return nil, err
	}

	for attempt := 0; attempt < maxCredentialAttempts; attempt++ {
		pair := s.newTokenPair(access.ApplicationID, access.OwnerID, access.Scope)

		err := s.tokens.Rotate(ctx, refreshToken, pair)
		if err == nil {
			return pair, nil
		}
		if !errors.Is(err, domain.ErrUniquenessCollision) {
			return nil, err
		}
	}

	s.logger.Error("exhausted token pair generation attempts during refresh", zap.String("application_id", access.ApplicationID.String()))
	return nil, domain.ErrInternal
}

// Revoke withdraws the token with the given string value, whichever kind
// it is. Revoking an access token takes its refresh token with it;
// revoking a refresh token leaves the access token to expire on its own.
// Revoking an unknown value is a no-op.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if err := s.tokens.RevokeAccessToken(ctx, token); err != nil {
		return err
	}
	return s.tokens.RevokeRefreshToken(ctx, token)
}

// RevokeByApplication withdraws every outstanding token issued to an
// application, as when a leaked client secret is rotated. The registration
// itself stays.
func (s *TokenService) RevokeByApplication(ctx context.Context, applicationID ulid.ULID) error {
	s.logger.Debug("revoking all tokens for application", zap.String("application_id", applicationID.String()))
	return s.tokens.DeleteByApplicationID(ctx, applicationID)
}

// PurgeExpired removes expired access tokens that no refresh token can
// still redeem and reports how many were dropped. Expired tokens with a
// refresh binding are kept; the refresh token exists precisely to replace
// an access token that has gone stale.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpiredAccessTokens(ctx, s.now())
}

func (s *TokenService) newTokenPair(applicationID, ownerID ulid.ULID, scope []string) *domain.TokenPair {
	now := s.now()
	access := domain.NewAccessToken(credentials.GenerateToken(), applicationID, ownerID, scope, now, s.accessTTL)
	refresh := domain.NewRefreshToken(credentials.GenerateToken(), access.ID, applicationID, ownerID, now)
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}
}
