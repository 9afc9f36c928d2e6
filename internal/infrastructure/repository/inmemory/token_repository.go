package inmemory

import (
	"context"
	"time"

	"github.com/ipede/oauth-provider-service/internal/domain"
	"github.com/oklog/ulid/v2"
)

var _ domain.TokenRepository = (*TokenRepository)(nil)

// TokenRepository implements domain.TokenRepository on a Store.
type TokenRepository struct {
	store *Store
}

func (r *TokenRepository) CreateAccessToken(ctx context.Context, token *domain.AccessToken) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAccessTokenFree(token); err != nil {
		return err
	}
	s.putAccessToken(token)
	return nil
}

func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRefreshTokenFree(token); err != nil {
		return err
	}
	s.putRefreshToken(token)
	return nil
}

// CreateTokenPair stores both tokens or, when either would violate a
// uniqueness rule, neither.
func (r *TokenRepository) CreateTokenPair(ctx context.Context, pair *domain.TokenPair) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAccessTokenFree(pair.AccessToken); err != nil {
		return err
	}
	if err := s.checkRefreshTokenFree(pair.RefreshToken); err != nil {
		return err
	}
	s.putAccessToken(pair.AccessToken)
	s.putRefreshToken(pair.RefreshToken)
	return nil
}

func (r *TokenRepository) FindAccessToken(ctx context.Context, token string) (*domain.AccessToken, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.accessTokens[token]
	if !exists {
		return nil, domain.ErrAccessTokenNotFound
	}
	return cloneAccessToken(stored), nil
}

func (r *TokenRepository) FindAccessTokenByID(ctx context.Context, id ulid.ULID) (*domain.AccessToken, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.accessByID[id]
	if !exists {
		return nil, domain.ErrAccessTokenNotFound
	}
	return cloneAccessToken(s.accessTokens[value]), nil
}

func (r *TokenRepository) FindRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.refreshTokens[token]
	if !exists {
		return nil, domain.ErrRefreshTokenNotFound
	}
	return cloneRefreshToken(stored), nil
}

func (r *TokenRepository) FindRefreshTokenByAccessTokenID(ctx context.Context, accessTokenID ulid.ULID) (*domain.RefreshToken, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.refreshByATID[accessTokenID]
	if !exists {
		return nil, domain.ErrRefreshTokenNotFound
	}
	return cloneRefreshToken(s.refreshTokens[value]), nil
}

// Rotate replaces the pair belonging to the old refresh token under one
// lock acquisition. The second of two concurrent rotations finds the old
// token gone and fails with ErrRefreshTokenNotFound, storing nothing.
func (r *TokenRepository) Rotate(ctx context.Context, oldRefreshToken string, pair *domain.TokenPair) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.refreshTokens[oldRefreshToken]
	if !exists {
		return domain.ErrRefreshTokenNotFound
	}

	var oldAccess *domain.AccessToken
	if value, ok := s.accessByID[old.AccessTokenID]; ok {
		oldAccess = s.accessTokens[value]
		delete(s.accessTokens, value)
		delete(s.accessByID, old.AccessTokenID)
	}
	delete(s.refreshTokens, oldRefreshToken)
	delete(s.refreshByATID, old.AccessTokenID)

	err := s.checkAccessTokenFree(pair.AccessToken)
	if err == nil {
		err = s.checkRefreshTokenFree(pair.RefreshToken)
	}
	if err != nil {
		// A failed rotation must leave the old pair in place
		if oldAccess != nil {
			s.accessTokens[oldAccess.Token] = oldAccess
			s.accessByID[oldAccess.ID] = oldAccess.Token
		}
		s.refreshTokens[old.Token] = old
		s.refreshByATID[old.AccessTokenID] = old.Token
		return err
	}

	s.putAccessToken(pair.AccessToken)
	s.putRefreshToken(pair.RefreshToken)
	return nil
}

func (r *TokenRepository) RevokeAccessToken(ctx context.Context, token string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, exists := s.accessTokens[token]; exists {
		s.removeAccessToken(token, stored.ID)
	}
	return nil
}

func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, exists := s.refreshTokens[token]; exists {
		delete(s.refreshTokens, token)
		delete(s.refreshByATID, stored.AccessTokenID)
	}
	return nil
}

func (r *TokenRepository) DeleteByApplicationID(ctx context.Context, applicationID ulid.ULID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteTokensByApplication(applicationID)
	return nil
}

// DeleteExpiredAccessTokens sweeps expired access tokens without a refresh
// binding. An expired token that still has a refresh token stays redeemable
// and is left alone.
func (r *TokenRepository) DeleteExpiredAccessTokens(ctx context.Context, before time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for value, token := range s.accessTokens {
		if _, bound := s.refreshByATID[token.ID]; bound {
			continue
		}
		if !token.ExpiresAt.After(before) {
			s.removeAccessToken(value, token.ID)
			removed++
		}
	}
	return removed, nil
}

// checkAccessTokenFree reports a collision when the token value or ID is
// already stored. Caller must hold the write lock.
func (s *Store) checkAccessTokenFree(token *domain.AccessToken) error {
	if _, exists := s.accessTokens[token.Token]; exists {
		return domain.ErrUniquenessCollision
	}
	if _, exists := s.accessByID[token.ID]; exists {
		return domain.ErrUniquenessCollision
	}
	return nil
}

// checkRefreshTokenFree enforces both token value uniqueness and the
// one-refresh-token-per-access-token rule. Caller must hold the write lock.
func (s *Store) checkRefreshTokenFree(token *domain.RefreshToken) error {
	if _, exists := s.refreshByATID[token.AccessTokenID]; exists {
		return domain.ErrRefreshTokenConflict
	}
	if _, exists := s.refreshTokens[token.Token]; exists {
		return domain.ErrUniquenessCollision
	}
	return nil
}

func (s *Store) putAccessToken(token *domain.AccessToken) {
	clone := cloneAccessToken(token)
	s.accessTokens[clone.Token] = clone
	s.accessByID[clone.ID] = clone.Token
}

func (s *Store) putRefreshToken(token *domain.RefreshToken) {
	clone := cloneRefreshToken(token)
	s.refreshTokens[clone.Token] = clone
	s.refreshByATID[clone.AccessTokenID] = clone.Token
}
