package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// TokenRepository defines the interface for access and refresh token
// persistence. Token values are unique across the store; a duplicate is
// reported with ErrUniquenessCollision. Each access token has at most one
// refresh token; a second one is rejected with ErrRefreshTokenConflict.
type TokenRepository interface {
	// CreateAccessToken stores a new access token
	CreateAccessToken(ctx context.Context, token *AccessToken) error

	// CreateRefreshToken stores a new refresh token bound to an access token
	CreateRefreshToken(ctx context.Context, token *RefreshToken) error

	// CreateTokenPair stores an access token and its refresh token
	// atomically: either both persist or neither does.
	CreateTokenPair(ctx context.Context, pair *TokenPair) error

	// FindAccessToken finds an access token by its token value
	FindAccessToken(ctx context.Context, token string) (*AccessToken, error)

	// FindAccessTokenByID finds an access token by ID
	FindAccessTokenByID(ctx context.Context, id ulid.ULID) (*AccessToken, error)

	// FindRefreshToken finds a refresh token by its token value
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)

	// FindRefreshTokenByAccessTokenID finds the refresh token bound to an
	// access token
	FindRefreshTokenByAccessTokenID(ctx context.Context, accessTokenID ulid.ULID) (*RefreshToken, error)

	// Rotate atomically replaces the pair identified by the old refresh
	// token value with a new one. The old refresh token and its access
	// token are removed; when the old refresh token is already gone the
	// rotation fails with ErrRefreshTokenNotFound and stores nothing.
	Rotate(ctx context.Context, oldRefreshToken string, pair *TokenPair) error

	// RevokeAccessToken removes an access token along with any refresh
	// token bound to it
	RevokeAccessToken(ctx context.Context, token string) error

	// RevokeRefreshToken removes a refresh token, leaving its access token
	// to expire on its own
	RevokeRefreshToken(ctx context.Context, token string) error

	// DeleteByApplicationID removes all tokens issued to an application
	DeleteByApplicationID(ctx context.Context, applicationID ulid.ULID) error

	// DeleteExpiredAccessTokens deletes access tokens that expired at or
	// before the given time and have no refresh token bound. A pair whose
	// access token has expired stays until the refresh token is spent or
	// revoked, since the refresh token itself never expires.
	DeleteExpiredAccessTokens(ctx context.Context, before time.Time) (int64, error)
}
