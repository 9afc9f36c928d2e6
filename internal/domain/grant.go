package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Grant represents a short-lived authorization code issued after the
// resource owner approves an application. It is bound to the redirect URI
// used on the authorization request and is exchanged exactly once for a
// token pair.
type Grant struct {
	Code          string    `json:"code"`
	ApplicationID ulid.ULID `json:"application_id"`
	OwnerID       ulid.ULID `json:"owner_id"`
	RedirectURI   string    `json:"redirect_uri"`
	Scope         []string  `json:"scope"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewGrant creates a new authorization grant expiring ttl after now.
func NewGrant(code string, applicationID, ownerID ulid.ULID, redirectURI string, scope []string, now time.Time, ttl time.Duration) *Grant {
	return &Grant{
		Code:          code,
		ApplicationID: applicationID,
		OwnerID:       ownerID,
		RedirectURI:   redirectURI,
		Scope:         scope,
		ExpiresAt:     now.Add(ttl),
		CreatedAt:     now,
	}
}

// IsExpired reports whether the grant has expired at now. The boundary is
// inclusive: a grant expiring exactly at now is already expired.
func (g *Grant) IsExpired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

// RedirectURIMatches reports whether uri equals the redirect URI the grant
// was issued for, after trailing-slash normalization on both sides.
func (g *Grant) RedirectURIMatches(uri string) bool {
	return NormalizeRedirectURI(uri) == NormalizeRedirectURI(g.RedirectURI)
}
