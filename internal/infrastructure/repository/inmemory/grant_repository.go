package inmemory

import (
	"context"
	"time"

	"github.com/ipede/oauth-provider-service/internal/domain"
	"github.com/oklog/ulid/v2"
)

var _ domain.GrantRepository = (*GrantRepository)(nil)

// GrantRepository implements domain.GrantRepository on a Store.
type GrantRepository struct {
	store *Store
}

func (r *GrantRepository) Create(ctx context.Context, grant *domain.Grant) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.grants[grant.Code]; exists {
		return domain.ErrUniquenessCollision
	}

	s.grants[grant.Code] = cloneGrant(grant)
	return nil
}

func (r *GrantRepository) FindByCode(ctx context.Context, code string) (*domain.Grant, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, exists := s.grants[code]
	if !exists {
		return nil, domain.ErrGrantNotFound
	}
	return cloneGrant(grant), nil
}

// ConsumeByCode removes and returns the grant under one lock acquisition,
// so a code is handed out at most once under concurrent exchanges.
func (r *GrantRepository) ConsumeByCode(ctx context.Context, code string) (*domain.Grant, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, exists := s.grants[code]
	if !exists {
		return nil, domain.ErrGrantNotFound
	}
	delete(s.grants, code)
	return grant, nil
}

func (r *GrantRepository) Delete(ctx context.Context, code string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.grants, code)
	return nil
}

func (r *GrantRepository) DeleteByApplicationID(ctx context.Context, applicationID ulid.ULID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteGrantsByApplication(applicationID)
	return nil
}

func (r *GrantRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for code, grant := range s.grants {
		if !grant.ExpiresAt.After(before) {
			delete(s.grants, code)
			removed++
		}
	}
	return removed, nil
}
