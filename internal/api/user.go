package api

import (
	"net/http" // HTTP status codes

	"music_library/internal/domain"     // Importing domain models
	"music_library/internal/media"      // Avatar uploads
	"music_library/internal/middleware" // Caller identity
	"music_library/internal/service"    // User and auth services
	"music_library/internal/utils"      // Response envelope

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// UpdateUserRequest is the partial account update form
type UpdateUserRequest struct {
	Username *string `form:"username" json:"username" binding:"omitempty,min=3,max=100"` // Display name
	Email    *string `form:"email" json:"email" binding:"omitempty,email"`               // Login email
	Password *string `form:"password" json:"password" binding:"omitempty,min=6,max=72"`  // New password
	Role     *string `form:"role" json:"role" binding:"omitempty,oneof=user admin"`      // Admins only
}

// FavoriteRequest names the song to add or remove
type FavoriteRequest struct {
	SongID uint `form:"song_id" json:"song_id" binding:"required,gt=0"` // Song ID
}

// ListUsersHandler returns every account
func ListUsersHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := users.GetAll(c.Request.Context())
		if err != nil {
			respondErr(c, "List users", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, list)
	}
}

// GetUserHandler returns one account
func GetUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		user, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Get user", err, logrus.Fields{"user_id": id})
			return
		}
		if user == nil {
			notFound(c, "User")
			return
		}
		utils.Success(c, http.StatusOK, user)
	}
}

// UpdateUserHandler changes the supplied account fields. Only admins may change roles.
func UpdateUserHandler(users *service.UserService, auth *service.AuthService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateUserRequest
		if !bind(c, &req) {
			return
		}
		if req.Role != nil && !middleware.IsAdmin(c) {
			utils.Fail(c, http.StatusForbidden, "Only admins can change roles")
			return
		}
		in := service.UserUpdate{Username: req.Username, Email: req.Email, Role: req.Role}
		if req.Password != nil {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				respondErr(c, "Hash password", err, logrus.Fields{"user_id": id})
				return
			}
			in.PasswordHash = &hash
		}

		up := newUploads(store)
		avatar, err := up.one(c, "avatar_url", media.KindImage)
		if err != nil {
			respondErr(c, "Avatar upload", err, nil)
			return
		}
		if avatar != nil {
			in.AvatarURL = &avatar.URL
		}
		user, err := users.Update(c.Request.Context(), id, in)
		if err != nil || user == nil {
			up.discard()
			if err != nil {
				respondErr(c, "Update user", err, logrus.Fields{"user_id": id})
			} else {
				notFound(c, "User")
			}
			return
		}
		utils.Success(c, http.StatusOK, user)
	}
}

// DeleteUserHandler removes an account with its favorites and playlists
func DeleteUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		deleted, err := users.Remove(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Delete user", err, logrus.Fields{"user_id": id})
			return
		}
		if !deleted {
			notFound(c, "User")
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"message": "User deleted"})
	}
}

// AddFavoriteHandler adds a song to the user's favorites; repeating it is harmless
func AddFavoriteHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req FavoriteRequest
		if !bind(c, &req) {
			return
		}
		fav, err := users.AddFavoriteSong(c.Request.Context(), id, req.SongID)
		if err != nil {
			respondErr(c, "Add favorite", err, logrus.Fields{"user_id": id, "song_id": req.SongID})
			return
		}
		utils.Success(c, http.StatusOK, fav)
	}
}

// ListFavoritesHandler returns the user's favorite songs
func ListFavoritesHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		songs, err := users.GetFavoriteSongs(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "List favorites", err, logrus.Fields{"user_id": id})
			return
		}
		if songs == nil {
			songs = []domain.Song{}
		}
		utils.Success(c, http.StatusOK, songs)
	}
}

// RemoveFavoriteHandler drops a song from the user's favorites
func RemoveFavoriteHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req FavoriteRequest
		if !bind(c, &req) {
			return
		}
		if err := users.RemoveFavoriteSong(c.Request.Context(), id, req.SongID); err != nil {
			respondErr(c, "Remove favorite", err, logrus.Fields{"user_id": id, "song_id": req.SongID})
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"message": "Song removed from favorites"})
	}
}
