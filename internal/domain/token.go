package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// AccessToken represents a bearer token authorizing API access on behalf of
// its owner, limited to the scopes granted at issuance.
type AccessToken struct {
	ID            ulid.ULID `json:"id"`
	Token         string    `json:"token"`
	ApplicationID ulid.ULID `json:"application_id"`
	OwnerID       ulid.ULID `json:"owner_id"`
	Scope         []string  `json:"scope"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewAccessToken creates a new access token expiring ttl after now.
func NewAccessToken(token string, applicationID, ownerID ulid.ULID, scope []string, now time.Time, ttl time.Duration) *AccessToken {
	return &AccessToken{
		ID:            ulid.Make(),
		Token:         token,
		ApplicationID: applicationID,
		OwnerID:       ownerID,
		Scope:         scope,
		ExpiresAt:     now.Add(ttl),
		CreatedAt:     now,
	}
}

// IsExpired reports whether the token has expired at now. The boundary is
// inclusive: a token expiring exactly at now is already expired.
func (t *AccessToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// AllowScopes reports whether every requested scope was granted to the
// token. An empty request is allowed by any token.
func (t *AccessToken) AllowScopes(requested []string) bool {
	return ScopesAllowed(t.Scope, requested)
}

// IsValid reports whether the token is unexpired at now and covers all
// requested scopes.
func (t *AccessToken) IsValid(now time.Time, requested []string) bool {
	return !t.IsExpired(now) && t.AllowScopes(requested)
}

// RefreshToken represents a long-lived credential tied to exactly one
// access token. It never expires on its own; it is invalidated by rotation
// or revocation. The scope of a refreshed pair comes from the access token
// it replaces.
type RefreshToken struct {
	ID            ulid.ULID `json:"id"`
	Token         string    `json:"token"`
	AccessTokenID ulid.ULID `json:"access_token_id"`
	ApplicationID ulid.ULID `json:"application_id"`
	OwnerID       ulid.ULID `json:"owner_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewRefreshToken creates a new refresh token bound to an access token.
func NewRefreshToken(token string, accessTokenID ulid.ULID, applicationID, ownerID ulid.ULID, now time.Time) *RefreshToken {
	return &RefreshToken{
		ID:            ulid.Make(),
		Token:         token,
		AccessTokenID: accessTokenID,
		ApplicationID: applicationID,
		OwnerID:       ownerID,
		CreatedAt:     now,
	}
}

// TokenPair bundles an access token with the refresh token that can
// replace it.
type TokenPair struct {
	AccessToken  *AccessToken  `json:"access_token"`
	RefreshToken *RefreshToken `json:"refresh_token"`
}
