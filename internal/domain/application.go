package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ClientType classifies how an application keeps its credentials, per RFC
// 6749 section 2.1. Confidential clients must present their client secret
// on token requests; public clients cannot keep one safe.
type ClientType string

const (
	ClientConfidential ClientType = "confidential"
	ClientPublic       ClientType = "public"
)

// Valid reports whether the client type is a registered choice.
func (t ClientType) Valid() bool {
	return t == ClientConfidential || t == ClientPublic
}

// GrantType enumerates the authorization flows available to an application.
type GrantType string

const (
	GrantAllInOne          GrantType = "all-in-one"
	GrantAuthorizationCode GrantType = "authorization-code"
	GrantImplicit          GrantType = "implicit"
	GrantPassword          GrantType = "password"
	GrantClientCredential  GrantType = "client-credential"
)

// Valid reports whether the grant type is a registered choice.
func (t GrantType) Valid() bool {
	switch t {
	case GrantAllInOne, GrantAuthorizationCode, GrantImplicit, GrantPassword, GrantClientCredential:
		return true
	}
	return false
}

// Application represents a client registered on the authorization server.
// ClientID is a generated credential; ClientSecret holds the hash of the
// generated secret, whose cleartext is handed out once at registration.
// OwnerID references the principal who registered the client and lives in
// an external store.
type Application struct {
	ID           ulid.ULID  `json:"id"`
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret"`
	ClientType   ClientType `json:"client_type"`
	GrantType    GrantType  `json:"authorization_grant_type"`
	RedirectURIs []string   `json:"redirect_uris"`
	Name         string     `json:"name"`
	OwnerID      ulid.ULID  `json:"owner_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewApplication assembles a registered application. Credentials must be
// generated and the redirect URI list validated before construction; the
// constructor only puts the pieces together.
func NewApplication(clientID, clientSecret string, clientType ClientType, grantType GrantType, redirectURIs []string, name string, ownerID ulid.ULID) *Application {
	now := time.Now()
	return &Application{
		ID:           ulid.Make(),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		ClientType:   clientType,
		GrantType:    grantType,
		RedirectURIs: redirectURIs,
		Name:         name,
		OwnerID:      ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsConfidential reports whether the application must authenticate with its
// client secret on token requests.
func (a *Application) IsConfidential() bool {
	return a.ClientType == ClientConfidential
}

// RedirectURIAllowed reports whether uri exactly matches one of the
// registered redirect URIs after trailing-slash normalization on both
// sides. No prefix or scheme-relaxed matching is done.
func (a *Application) RedirectURIAllowed(uri string) bool {
	normalized := NormalizeRedirectURI(uri)
	for _, registered := range a.RedirectURIs {
		if normalized == NormalizeRedirectURI(registered) {
			return true
		}
	}
	return false
}

// DefaultRedirectURI returns the first registered redirect URI, used when
// an authorization request names none.
func (a *Application) DefaultRedirectURI() (string, error) {
	if len(a.RedirectURIs) == 0 {
		return "", ErrNoRedirectURI
	}
	return a.RedirectURIs[0], nil
}
