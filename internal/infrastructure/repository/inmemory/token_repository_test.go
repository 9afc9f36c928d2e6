package inmemory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ipede/oauth-provider-service/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenPair(at, rt string, now time.Time) *domain.TokenPair {
	appID := ulid.Make()
	ownerID := ulid.Make()
	access := domain.NewAccessToken(at, appID, ownerID, []string{"read"}, now, time.Hour)
	refresh := domain.NewRefreshToken(rt, access.ID, appID, ownerID, now)
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}
}

func TestTokenRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tokens()

	pair := testTokenPair("at-1", "rt-1", time.Now())
	require.NoError(t, repo.CreateTokenPair(ctx, pair))

	access, err := repo.FindAccessToken(ctx, "at-1")
	require.NoError(t, err)
	assert.Equal(t, pair.AccessToken, access)

	byID, err := repo.FindAccessTokenByID(ctx, pair.AccessToken.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.AccessToken, byID)

	refresh, err := repo.FindRefreshToken(ctx, "rt-1")
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, refresh)

	byATID, err := repo.FindRefreshTokenByAccessTokenID(ctx, pair.AccessToken.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, byATID)

	_, err = repo.FindAccessToken(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrAccessTokenNotFound)
	_, err = repo.FindRefreshToken(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrRefreshTokenNotFound)
}

func TestTokenRepository_CreateTokenPair_Atomic(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tokens()

	require.NoError(t, repo.CreateTokenPair(ctx, testTokenPair("at-1", "rt-1", time.Now())))

	// Second pair reuses the refresh token value; nothing of it may persist
	err := repo.CreateTokenPair(ctx, testTokenPair("at-2", "rt-1", time.Now()))
	assert.ErrorIs(t, err, domain.ErrUniquenessCollision)

	_, err = repo.FindAccessToken(ctx, "at-2")
	assert.ErrorIs(t, err, domain.ErrAccessTokenNotFound)
}

func TestTokenRepository_RefreshTokenConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tokens()

	now := time.Now()
	access := domain.NewAccessToken("at-1", ulid.Make(), ulid.Make(), []string{"read"}, now, time.Hour)
	require.NoError(t, repo.CreateAccessToken(ctx, access))

	first := domain.NewRefreshToken("rt-1", access.ID, access.ApplicationID, access.OwnerID, now)
	require.NoError(t, repo.CreateRefreshToken(ctx, first))

	second := domain.NewRefreshToken("rt-2", access.ID, access.ApplicationID, access.OwnerID, now)
	err := repo.CreateRefreshToken(ctx, second)
	assert.ErrorIs(t, err, domain.ErrRefreshTokenConflict)

	_, err = repo.FindRefreshToken(ctx, "rt-2")
	assert.ErrorIs(t, err, domain.ErrRefreshTokenNotFound)
}

func TestTokenRepository_Rotate(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tokens()

	now := time.Now()
	old := testTokenPair("at-old", "rt-old", now)
	require.NoError(t, repo.CreateTokenPair(ctx, old))

	fresh := testTokenPair("at-new", "rt-new", now)
	require.NoError(t, repo.Rotate(ctx, "rt-old", fresh))

	// The old pair is gone
	_, err := repo.FindAccessToken(ctx, "at-old")
	assert.ErrorIs(t, err, domain.ErrAccessTokenNotFound)
	_, err = repo.FindRefreshToken(ctx, "rt-old")
	assert.ErrorIs(t, err, domain.ErrRefreshTokenNotFound)

	// The new pair is live
	_, err = repo.FindAccessToken(ctx, "at-new")
	assert.NoError(t, err)
	_, err = repo.FindRefreshToken(ctx, "rt-new")
	assert.NoError(t, err)

	// A second rotation with the stale token stores nothing
	stale := testTokenPair("at-stale", "rt-stale", now)
	err = repo.Rotate(ctx, "rt-old", stale)
	assert.ErrorIs(t, err, domain.ErrRefreshTokenNotFound)
	_, err = repo.FindAccessToken(ctx, "at-stale")
	assert.ErrorIs(t, err, domain.ErrAccessTokenNotFound)
}

func TestTokenRepository_Rotate_CollisionKeepsOldPair(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tokens()

	now := time.Now()
	require.NoError(t, repo.CreateTokenPair(ctx, testTokenPair("at-other", "rt-other", now)))
	require.NoError(t, repo.CreateTokenPair(ctx, testTokenPair("at-old", "rt-old", now)))

	// The replacement collides with an unrelated stored token, so the
	// rotation fails and the old pair must survive
	err := repo.Rotate(ctx, "rt-old", testTokenPair("at-other", "rt-new", now))
	assert.ErrorIs(t, err, domain.ErrUniquenessCollision)

	_, err = repo.FindAccessToken(ctx, "at-old")
	assert.NoError(t, err)
	_, err = repo.FindRefreshToken(ctx, "rt-old")
	assert.NoError(t, err)
	_, err = repo.FindRefreshToken(ctx, "rt-new")
	assert.ErrorIs(t, err, domain.ErrRefreshTokenNotFound)

	// The old pair still rotates once the collision is gone
	require.NoError(t, repo.Rotate(ctx, "rt-old", testTokenPair("at-new", "rt-new", now)))
	_, err = repo.FindAccessToken(ctx, "at-new")
	assert.NoError(t, err)
}

func TestTokenRepository_Rotate_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tokens()

	now := time.Now()
	require.NoError(t, repo.CreateTokenPair(ctx, testTokenPair("at-old", "rt-old", now)))

	const attempts = 16
	var wins int64
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		pair := testTokenPair("at-new-"+string(rune('a'+i)), "rt-new-"+string(rune('a'+i)), now)
		go func() {
			defer wg.Done()
			if err := repo.Rotate(ctx, "rt-old", pair); err == nil {
				atomic.AddInt64(&wins, 1)
			} else {
				assert.ErrorIs(t, err, domain.ErrRefreshTokenNotFound)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
}

func TestTokenRepository_RevokeAccessToken_Cascades(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tokens()

	require.NoError(t, repo.CreateTokenPair(ctx, testTokenPair("at-1", "rt-1", time.Now())))
	require.NoError(t, repo.RevokeAccessToken(ctx, "at-1"))

	_, err := repo.FindAccessToken(ctx, "at-1")
	assert.ErrorIs(t, err, domain.ErrAccessTokenNotFound)
	_, err = repo.FindRefreshToken(ctx, "rt-1")
	assert.ErrorIs(t, err, domain.ErrRefreshTokenNotFound)

	// Revoking an unknown token is a no-op
	assert.NoError(t, repo.RevokeAccessToken(ctx, "at-1"))
}

func TestTokenRepository_RevokeRefreshToken_LeavesAccessToken(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tokens()

	pair := testTokenPair("at-1", "rt-1", time.Now())
	require.NoError(t, repo.CreateTokenPair(ctx, pair))
	require.NoError(t, repo.RevokeRefreshToken(ctx, "rt-1"))

	_, err := repo.FindRefreshToken(ctx, "rt-1")
	assert.ErrorIs(t, err, domain.ErrRefreshTokenNotFound)

	// The access token lives on until it expires
	_, err = repo.FindAccessToken(ctx, "at-1")
	assert.NoError(t, err)

	// The access token may be bound to a new refresh token afterwards
	replacement := domain.NewRefreshToken("rt-2", pair.AccessToken.ID, pair.AccessToken.ApplicationID, pair.AccessToken.OwnerID, time.Now())
	assert.NoError(t, repo.CreateRefreshToken(ctx, replacement))
}

func TestTokenRepository_DeleteExpiredAccessTokens(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tokens()

	cutoff := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	expired := domain.NewAccessToken("at-expired", ulid.Make(), ulid.Make(), []string{"read"}, cutoff.Add(-2*time.Hour), time.Hour)
	atCutoff := domain.NewAccessToken("at-cutoff", ulid.Make(), ulid.Make(), []string{"read"}, cutoff.Add(-time.Hour), time.Hour) // expires exactly at cutoff
	live := domain.NewAccessToken("at-live", ulid.Make(), ulid.Make(), []string{"read"}, cutoff, time.Hour)
	for _, token := range []*domain.AccessToken{expired, atCutoff, live} {
		require.NoError(t, repo.CreateAccessToken(ctx, token))
	}

	// An expired pair is still redeemable through its refresh token
	redeemable := testTokenPair("at-redeemable", "rt-redeemable", cutoff.Add(-2*time.Hour))
	require.NoError(t, repo.CreateTokenPair(ctx, redeemable))

	removed, err := repo.DeleteExpiredAccessTokens(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = repo.FindAccessToken(ctx, "at-expired")
	assert.ErrorIs(t, err, domain.ErrAccessTokenNotFound)
	_, err = repo.FindAccessToken(ctx, "at-cutoff")
	assert.ErrorIs(t, err, domain.ErrAccessTokenNotFound)

	_, err = repo.FindAccessToken(ctx, "at-live")
	assert.NoError(t, err)
	_, err = repo.FindAccessToken(ctx, "at-redeemable")
	assert.NoError(t, err)
	_, err = repo.FindRefreshToken(ctx, "rt-redeemable")
	assert.NoError(t, err)

	// Once the refresh token is revoked the sweep may take the pair
	require.NoError(t, repo.RevokeRefreshToken(ctx, "rt-redeemable"))
	removed, err = repo.DeleteExpiredAccessTokens(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	_, err = repo.FindAccessToken(ctx, "at-redeemable")
	assert.ErrorIs(t, err, domain.ErrAccessTokenNotFound)
}
