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

func testGrant(code string, now time.Time) *domain.Grant {
	return domain.NewGrant(code, ulid.Make(), ulid.Make(), "https://example.com/cb", []string{"read"}, now, 10*time.Minute)
}

func TestGrantRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Grants()

	grant := testGrant("code-1", time.Now())
	require.NoError(t, repo.Create(ctx, grant))

	found, err := repo.FindByCode(ctx, "code-1")
	require.NoError(t, err)
	assert.Equal(t, grant, found)

	err = repo.Create(ctx, testGrant("code-1", time.Now()))
	assert.ErrorIs(t, err, domain.ErrUniquenessCollision)

	_, err = repo.FindByCode(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrGrantNotFound)
}

func TestGrantRepository_ConsumeByCode_ExactlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Grants()

	grant := testGrant("code-1", time.Now())
	require.NoError(t, repo.Create(ctx, grant))

	consumed, err := repo.ConsumeByCode(ctx, "code-1")
	require.NoError(t, err)
	assert.Equal(t, grant.Code, consumed.Code)

	_, err = repo.ConsumeByCode(ctx, "code-1")
	assert.ErrorIs(t, err, domain.ErrGrantNotFound)

	_, err = repo.FindByCode(ctx, "code-1")
	assert.ErrorIs(t, err, domain.ErrGrantNotFound)
}

func TestGrantRepository_ConsumeByCode_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Grants()

	require.NoError(t, repo.Create(ctx, testGrant("code-1", time.Now())))

	const attempts = 32
	var wins int64
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			if _, err := repo.ConsumeByCode(ctx, "code-1"); err == nil {
				atomic.AddInt64(&wins, 1)
			} else {
				assert.ErrorIs(t, err, domain.ErrGrantNotFound)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
}

func TestGrantRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Grants()

	require.NoError(t, repo.Create(ctx, testGrant("code-1", time.Now())))
	require.NoError(t, repo.Delete(ctx, "code-1"))

	_, err := repo.FindByCode(ctx, "code-1")
	assert.ErrorIs(t, err, domain.ErrGrantNotFound)

	// Deleting an unknown code is a no-op
	assert.NoError(t, repo.Delete(ctx, "code-1"))
}

func TestGrantRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Grants()

	cutoff := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	expired := testGrant("expired", cutoff.Add(-20*time.Minute))
	atCutoff := testGrant("at-cutoff", cutoff.Add(-10*time.Minute)) // expires exactly at cutoff
	live := testGrant("live", cutoff)

	for _, grant := range []*domain.Grant{expired, atCutoff, live} {
		require.NoError(t, repo.Create(ctx, grant))
	}

	removed, err := repo.DeleteExpired(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = repo.FindByCode(ctx, "expired")
	assert.ErrorIs(t, err, domain.ErrGrantNotFound)
	_, err = repo.FindByCode(ctx, "at-cutoff")
	assert.ErrorIs(t, err, domain.ErrGrantNotFound)
	_, err = repo.FindByCode(ctx, "live")
	assert.NoError(t, err)
}
