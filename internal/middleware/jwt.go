package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"music_library/internal/utils" // JWT and response helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// Context keys set by the auth middlewares
const (
	ContextUserID = "userID" // uint
	ContextEmail  = "email"  // string
	ContextRole   = "role"   // string, from the token
)

// authenticate parses the bearer token and checks it has not been revoked.
// It returns the HTTP status to fail with, or 0 when the token is good.
func authenticate(c *gin.Context, secret string, rdb *redis.Client) (*utils.Claims, int) {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, http.StatusUnauthorized
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
	claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
	if err != nil || claims.IssuedAt == nil {
		return nil, http.StatusUnauthorized
	}
	if rdb != nil {
		revoked, err := utils.IsRevoked(c.Request.Context(), rdb, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": claims.UserID, // Token owner
				"error":   err.Error(),   // Error message
			}).Error("Revocation check failed")
			return nil, http.StatusInternalServerError
		}
		if revoked {
			return nil, http.StatusUnauthorized // Issued before the account was blocked
		}
	}
	return claims, 0
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set(ContextUserID, claims.UserID) // Store userID in context
	c.Set(ContextEmail, claims.Email)   // Store email in context
	c.Set(ContextRole, claims.Role)     // Store role in context
}

// JWTAuthMiddleware validates JWT tokens and extracts user information
func JWTAuthMiddleware(secret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, status := authenticate(c, secret, rdb)
		switch status {
		case 0:
			setIdentity(c, claims)
			c.Next() // Proceed to the next handler
		case http.StatusUnauthorized:
			utils.AbortFail(c, status, "Invalid or expired token") // Same reply for every token problem
		default:
			utils.AbortError(c, status)
		}
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is sent and
// lets anonymous requests through otherwise
func OptionalAuthMiddleware(secret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if claims, status := authenticate(c, secret, rdb); status == 0 {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, if any
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// CurrentRole returns the role the token was issued with
func CurrentRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}
