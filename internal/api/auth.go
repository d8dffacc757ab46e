package api

import (
	"net/http" // HTTP status codes

	"music_library/internal/domain"  // Importing domain models
	"music_library/internal/media"   // Avatar uploads
	"music_library/internal/service" // Auth service
	"music_library/internal/utils"   // Response envelope

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// RegisterRequest is the registration form
type RegisterRequest struct {
	Username string `form:"username" json:"username" binding:"required,min=3,max=100"` // Display name
	Email    string `form:"email" json:"email" binding:"required,email"`               // Login email
	Password string `form:"password" json:"password" binding:"required,min=6,max=72"`  // bcrypt reads at most 72 bytes
}

// LoginRequest is the login form
type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"` // Login email
	Password string `form:"password" json:"password" binding:"required"` // Plain password
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	Token string       `json:"token"` // JWT token
	User  *domain.User `json:"user"`  // Logged in user
}

// RegisterHandler creates a regular account, with an optional avatar upload
func RegisterHandler(auth *service.AuthService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if !bind(c, &req) {
			return
		}
		up := newUploads(store)
		avatar, err := up.one(c, "avatar_url", media.KindImage)
		if err != nil {
			respondErr(c, "Avatar upload", err, nil)
			return
		}
		in := service.RegisterInput{Username: req.Username, Email: req.Email, Password: req.Password}
		if avatar != nil {
			in.AvatarURL = &avatar.URL
		}
		user, err := auth.Register(c.Request.Context(), in)
		if err != nil {
			up.discard()
			respondErr(c, "Registration", err, logrus.Fields{"email": req.Email})
			return
		}
		utils.Success(c, http.StatusCreated, user)
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !bind(c, &req) {
			return
		}
		token, user, err := auth.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, "Login", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, AuthResponse{Token: token, User: user})
	}
}
