package domain

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
	// Setup
	appID := ulid.Make()
	ownerID := ulid.Make()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Execute
	token := NewAccessToken("token-abc", appID, ownerID, []string{"read", "write"}, now, time.Hour)

	// Assert
	require.NotNil(t, token)
	assert.NotEqual(t, ulid.ULID{}, token.ID)
	assert.Equal(t, "token-abc", token.Token)
	assert.Equal(t, appID, token.ApplicationID)
	assert.Equal(t, ownerID, token.OwnerID)
	assert.Equal(t, []string{"read", "write"}, token.Scope)
	assert.Equal(t, now, token.CreatedAt)
	assert.Equal(t, now.Add(time.Hour), token.ExpiresAt)
}

func TestAccessToken_IsExpired(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	token := &AccessToken{ExpiresAt: expiry}

	assert.False(t, token.IsExpired(expiry.Add(-time.Nanosecond)))
	assert.True(t, token.IsExpired(expiry))
	assert.True(t, token.IsExpired(expiry.Add(time.Second)))
}

func TestAccessToken_AllowScopes(t *testing.T) {
	token := &AccessToken{Scope: []string{"read", "write"}}

	assert.True(t, token.AllowScopes(nil))
	assert.True(t, token.AllowScopes([]string{"read"}))
	assert.True(t, token.AllowScopes([]string{"read", "write"}))
	assert.False(t, token.AllowScopes([]string{"admin"}))
	assert.False(t, token.AllowScopes([]string{"read", "admin"}))
}

func TestAccessToken_IsValid(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	token := &AccessToken{Scope: []string{"read"}, ExpiresAt: expiry}

	tests := []struct {
		name      string
		now       time.Time
		requested []string
		want      bool
	}{
		{
			name:      "live token with granted scope",
			now:       expiry.Add(-time.Minute),
			requested: []string{"read"},
			want:      true,
		},
		{
			name:      "live token with empty request",
			now:       expiry.Add(-time.Minute),
			requested: nil,
			want:      true,
		},
		{
			name:      "expired token",
			now:       expiry,
			requested: []string{"read"},
			want:      false,
		},
		{
			name:      "scope not granted",
			now:       expiry.Add(-time.Minute),
			requested: []string{"write"},
			want:      false,
		},
		{
			name:      "expired and out of scope",
			now:       expiry.Add(time.Minute),
			requested: []string{"write"},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, token.IsValid(tt.now, tt.requested))
		})
	}
}

func TestNewRefreshToken(t *testing.T) {
	// Setup
	appID := ulid.Make()
	ownerID := ulid.Make()
	accessTokenID := ulid.Make()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Execute
	token := NewRefreshToken("refresh-xyz", accessTokenID, appID, ownerID, now)

	// Assert
	require.NotNil(t, token)
	assert.NotEqual(t, ulid.ULID{}, token.ID)
	assert.Equal(t, "refresh-xyz", token.Token)
	assert.Equal(t, accessTokenID, token.AccessTokenID)
	assert.Equal(t, appID, token.ApplicationID)
	assert.Equal(t, ownerID, token.OwnerID)
	assert.Equal(t, now, token.CreatedAt)
}
