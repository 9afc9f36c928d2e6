package inmemory

import (
	"context"
	"sort"

	"github.com/ipede/oauth-provider-service/internal/domain"
	"github.com/oklog/ulid/v2"
)

var _ domain.ApplicationRepository = (*ApplicationRepository)(nil)

// ApplicationRepository implements domain.ApplicationRepository on a Store.
type ApplicationRepository struct {
	store *Store
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.applications[app.ID]; exists {
		return domain.ErrUniquenessCollision
	}
	if _, exists := s.appsByClientID[app.ClientID]; exists {
		return domain.ErrUniquenessCollision
	}

	s.applications[app.ID] = cloneApplication(app)
	s.appsByClientID[app.ClientID] = app.ID
	return nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.Application, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, exists := s.applications[id]
	if !exists {
		return nil, domain.ErrApplicationNotFound
	}
	return cloneApplication(app), nil
}

func (r *ApplicationRepository) FindByClientID(ctx context.Context, clientID string) (*domain.Application, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.appsByClientID[clientID]
	if !exists {
		return nil, domain.ErrApplicationNotFound
	}
	return cloneApplication(s.applications[id]), nil
}

// Update replaces the mutable fields of a stored application. The client
// identifier is immutable and keeps its stored value.
func (r *ApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.applications[app.ID]
	if !exists {
		return domain.ErrApplicationNotFound
	}

	stored.ClientSecret = app.ClientSecret
	stored.ClientType = app.ClientType
	stored.GrantType = app.GrantType
	stored.RedirectURIs = append([]string(nil), app.RedirectURIs...)
	stored.Name = app.Name
	stored.UpdatedAt = app.UpdatedAt
	return nil
}

// Delete removes an application and cascades to its grants and tokens.
func (r *ApplicationRepository) Delete(ctx context.Context, id ulid.ULID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	app, exists := s.applications[id]
	if !exists {
		return domain.ErrApplicationNotFound
	}

	delete(s.appsByClientID, app.ClientID)
	delete(s.applications, id)
	s.deleteGrantsByApplication(id)
	s.deleteTokensByApplication(id)
	return nil
}

func (r *ApplicationRepository) List(ctx context.Context, limit, offset int) ([]*domain.Application, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]*domain.Application, 0, len(s.applications))
	for _, app := range s.applications {
		apps = append(apps, cloneApplication(app))
	}

	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})

	if limit <= 0 || offset < 0 || offset >= len(apps) {
		return nil, nil
	}
	apps = apps[offset:]
	if limit < len(apps) {
		apps = apps[:limit]
	}
	return apps, nil
}
