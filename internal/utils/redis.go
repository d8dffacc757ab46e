package utils

import (
	"context" // Context for Redis operations
	"strconv" // Key and value formatting
	"time"    // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// revokedKey is the Redis key holding the revocation time for a user's tokens
func revokedKey(userID uint) string {
	return "revoked:user:" + strconv.FormatUint(uint64(userID), 10)
}

// RevokeTokens marks every token issued to the user up to at as invalid.
// Times are kept in milliseconds, the precision tokens are stamped with.
// The marker lives as long as a token can, after which no older token survives anyway.
func RevokeTokens(ctx context.Context, rdb *redis.Client, userID uint, at time.Time, ttl time.Duration) error {
	return rdb.Set(ctx, revokedKey(userID), at.UnixMilli(), ttl).Err() // Store revocation time with TTL
}

// IsRevoked reports whether a token issued at issuedAt predates a revocation for the user
func IsRevoked(ctx context.Context, rdb *redis.Client, userID uint, issuedAt time.Time) (bool, error) {
	val, err := rdb.Get(ctx, revokedKey(userID)).Int64() // Get revocation time from Redis
	if err == redis.Nil {
		return false, nil // No revocation recorded
	} else if err != nil {
		return false, err // Other Redis error
	}
	return issuedAt.UnixMilli() <= val, nil
}

// IncrWindow bumps a fixed-window counter and returns the count and time left in the window
func IncrWindow(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	n, err := rdb.Incr(ctx, key).Result() // Count this hit
	if err != nil {
		return 0, 0, err // Return error if Redis fails
	}
	ttl, err := rdb.PTTL(ctx, key).Result() // Remaining window time
	if err != nil {
		return 0, 0, err
	}
	// First hit, or a counter that lost its expiry, starts a new window
	if n == 1 || ttl < 0 {
		if err := rdb.PExpire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return n, ttl, nil
}
