package api

import (
	"net/http" // HTTP status codes
	"time"     // Revocation timestamps

	"music_library/internal/middleware" // Caller identity
	"music_library/internal/service"    // Services
	"music_library/internal/utils"      // Token revocation and responses

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// StatsHandler returns the dashboard totals
func StatsHandler(stats *service.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		totals, err := stats.Totals(c.Request.Context())
		if err != nil {
			respondErr(c, "Collect stats", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, totals)
	}
}

// DeleteAllUsersHandler removes every non-admin account
func DeleteAllUsersHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := users.DeleteAllUsers(c.Request.Context())
		if err != nil {
			respondErr(c, "Delete users", err, nil)
			return
		}
		logrus.WithField("deleted", n).Info("Users deleted by admin")
		utils.Success(c, http.StatusOK, gin.H{"message": "All users deleted", "deleted": n})
	}
}

// BlockUserHandler blocks an account and revokes every token issued to it so far
func BlockUserHandler(users *service.UserService, rdb *redis.Client, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if self, _ := middleware.CurrentUserID(c); self == id {
			utils.Fail(c, http.StatusBadRequest, "You cannot block yourself")
			return
		}
		user, err := users.BlockUser(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Block user", err, logrus.Fields{"user_id": id})
			return
		}
		if user == nil {
			notFound(c, "User")
			return
		}
		if rdb != nil {
			if err := utils.RevokeTokens(c.Request.Context(), rdb, id, time.Now(), tokenTTL); err != nil {
				// The block flag still stops logins and every role-checked route
				logrus.WithFields(logrus.Fields{
					"user_id": id,          // Blocked user
					"error":   err.Error(), // Error message
				}).Error("Token revocation failed")
			}
		}
		logrus.WithField("user_id", id).Info("User blocked")
		utils.Success(c, http.StatusOK, user)
	}
}

// UnblockUserHandler lifts a block; tokens revoked by it stay revoked
func UnblockUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		user, err := users.UnblockUser(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Unblock user", err, logrus.Fields{"user_id": id})
			return
		}
		if user == nil {
			notFound(c, "User")
			return
		}
		logrus.WithField("user_id", id).Info("User unblocked")
		utils.Success(c, http.StatusOK, user)
	}
}
