package utils

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestJWT(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		token, err := GenerateJWT(7, "a@b.test", "admin", "secret", time.Hour)
		require.NoError(t, err)

		claims, err := ParseJWT(token, "secret")
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "a@b.test", claims.Email)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := GenerateJWT(7, "a@b.test", "user", "secret", time.Hour)
		require.NoError(t, err)

		_, err = ParseJWT(token, "other")
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := GenerateJWT(7, "a@b.test", "user", "secret", -time.Minute)
		require.NoError(t, err)

		_, err = ParseJWT(token, "secret")
		assert.Error(t, err)
	})
}

func TestRevocation(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	issued := time.Now().Add(-time.Minute)

	revoked, err := IsRevoked(ctx, rdb, 3, issued)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeTokens(ctx, rdb, 3, time.Now(), time.Hour))

	revoked, err = IsRevoked(ctx, rdb, 3, issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsRevoked(ctx, rdb, 3, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after the block stay valid")

	revoked, err = IsRevoked(ctx, rdb, 4, issued)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationWithinOneSecond(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	blockedAt := time.Unix(1000, int64(100*time.Millisecond))
	require.NoError(t, RevokeTokens(ctx, rdb, 8, blockedAt, time.Hour))

	revoked, err := IsRevoked(ctx, rdb, 8, blockedAt.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, revoked, "a login later in the same second is valid")

	revoked, err = IsRevoked(ctx, rdb, 8, blockedAt.Add(-50*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestJWTIssuedAtKeepsMilliseconds(t *testing.T) {
	token, err := GenerateJWT(7, "a@b.test", "user", "secret", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Regexp(t, `"iat":\d+\.\d{3}[,}]`, string(payload))
}

func TestIncrWindow(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, ttl, err := IncrWindow(ctx, rdb, "rl:test", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		assert.Greater(t, ttl, time.Duration(0))
	}

	mr.FastForward(2 * time.Minute)

	n, _, err := IncrWindow(ctx, rdb, "rl:test", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
