package middleware

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"music_library/internal/domain" // Importing domain models
	"music_library/internal/utils"  // Response helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// ContextAdmin is set to true once the database confirms the caller is an admin
const ContextAdmin = "isAdmin"

// loadRole reads the caller's current role and block flag from the database
func loadRole(c *gin.Context, db *gorm.DB) (*domain.User, bool) {
	userID, exists := CurrentUserID(c) // Get userID from context
	if !exists {
		utils.AbortFail(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	var user domain.User // Fetch user from database
	err := db.WithContext(c.Request.Context()).Select("id", "role", "is_blocked").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.AbortFail(c, http.StatusUnauthorized, "Unauthorized") // Account was deleted
		return nil, false
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,      // Caller
			"error":   err.Error(), // Error message
		}).Error("Role lookup failed")
		utils.AbortError(c, http.StatusInternalServerError)
		return nil, false
	}
	if user.IsBlocked {
		utils.AbortFail(c, http.StatusForbidden, "Account is blocked")
		return nil, false
	}
	c.Set(ContextAdmin, user.IsAdmin())
	return &user, true
}

// AdminOnlyMiddleware checks the user's role from the database on each request
func AdminOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadRole(c, db)
		if !ok {
			return
		}
		// Check if user role is admin
		if !user.IsAdmin() {
			utils.AbortFail(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next() // If admin, proceed to the next handler
	}
}

// SelfOrAdminMiddleware lets a user act on the account named by the :id path
// parameter only when it is their own, unless they are an admin
func SelfOrAdminMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadRole(c, db)
		if !ok {
			return
		}
		target, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			utils.AbortFail(c, http.StatusBadRequest, "Invalid user id")
			return
		}
		if uint(target) != user.ID && !user.IsAdmin() {
			utils.AbortFail(c, http.StatusForbidden, "You can only manage your own account")
			return
		}
		c.Next()
	}
}

// IsAdmin reports what the admin middlewares found for this request
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextAdmin)
}
