// Package inmemory provides a thread-safe in-memory implementation of the
// domain repositories. It mirrors the uniqueness, cascade and atomicity
// semantics of the PostgreSQL schema and backs tests and local runs that
// have no database.
package inmemory

import (
	"sync"

	"github.com/ipede/oauth-provider-service/internal/domain"
	"github.com/oklog/ulid/v2"
)

// Store holds all entities behind one lock, so multi-entity operations
// (token pair creation, rotation, cascading deletes) are atomic.
type Store struct {
	mu sync.RWMutex

	applications   map[ulid.ULID]*domain.Application
	appsByClientID map[string]ulid.ULID

	grants map[string]*domain.Grant

	accessTokens  map[string]*domain.AccessToken
	accessByID    map[ulid.ULID]string
	refreshTokens map[string]*domain.RefreshToken
	refreshByATID map[ulid.ULID]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		applications:   make(map[ulid.ULID]*domain.Application),
		appsByClientID: make(map[string]ulid.ULID),
		grants:         make(map[string]*domain.Grant),
		accessTokens:   make(map[string]*domain.AccessToken),
		accessByID:     make(map[ulid.ULID]string),
		refreshTokens:  make(map[string]*domain.RefreshToken),
		refreshByATID:  make(map[ulid.ULID]string),
	}
}

// Applications returns the application repository view of the store.
func (s *Store) Applications() *ApplicationRepository {
	return &ApplicationRepository{store: s}
}

// Grants returns the grant repository view of the store.
func (s *Store) Grants() *GrantRepository {
	return &GrantRepository{store: s}
}

// Tokens returns the token repository view of the store.
func (s *Store) Tokens() *TokenRepository {
	return &TokenRepository{store: s}
}

// Entities are copied on the way in and out so callers can never mutate
// stored state through a shared pointer.

func cloneApplication(app *domain.Application) *domain.Application {
	clone := *app
	clone.RedirectURIs = append([]string(nil), app.RedirectURIs...)
	return &clone
}

func cloneGrant(grant *domain.Grant) *domain.Grant {
	clone := *grant
	clone.Scope = append([]string(nil), grant.Scope...)
	return &clone
}

func cloneAccessToken(token *domain.AccessToken) *domain.AccessToken {
	clone := *token
	clone.Scope = append([]string(nil), token.Scope...)
	return &clone
}

func cloneRefreshToken(token *domain.RefreshToken) *domain.RefreshToken {
	clone := *token
	return &clone
}

// deleteGrantsByApplication removes all grants for an application. Caller
// must hold the write lock.
func (s *Store) deleteGrantsByApplication(applicationID ulid.ULID) {
	for code, grant := range s.grants {
		if grant.ApplicationID == applicationID {
			delete(s.grants, code)
		}
	}
}

// deleteTokensByApplication removes all tokens for an application. Caller
// must hold the write lock.
func (s *Store) deleteTokensByApplication(applicationID ulid.ULID) {
	for value, token := range s.accessTokens {
		if token.ApplicationID == applicationID {
			s.removeAccessToken(value, token.ID)
		}
	}
	for value, token := range s.refreshTokens {
		if token.ApplicationID == applicationID {
			delete(s.refreshTokens, value)
			delete(s.refreshByATID, token.AccessTokenID)
		}
	}
}

// removeAccessToken drops an access token and cascades to the refresh
// token bound to it. Caller must hold the write lock.
func (s *Store) removeAccessToken(value string, id ulid.ULID) {
	delete(s.accessTokens, value)
	delete(s.accessByID, id)
	if refreshValue, ok := s.refreshByATID[id]; ok {
		delete(s.refreshTokens, refreshValue)
		delete(s.refreshByATID, id)
	}
}
