package api

import (
	"net/http" // HTTP status codes

	"music_library/internal/domain"  // Importing domain models
	"music_library/internal/media"   // Avatar uploads
	"music_library/internal/service" // Artist service
	"music_library/internal/utils"   // Response envelope

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// ArtistRequest is the artist create/update form
type ArtistRequest struct {
	Name *string `form:"name" json:"name" binding:"omitempty,max=255"` // Display name
	Bio  *string `form:"bio" json:"bio"`                               // Biography
}

// ListArtistsHandler pages through artists, optionally filtered by name
func ListArtistsHandler(artists *service.ArtistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pageParams(c)
		res, err := artists.FindAllWithFilters(c.Request.Context(), c.Query("name"), page, limit)
		if err != nil {
			respondErr(c, "List artists", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, res)
	}
}

// GetArtistHandler returns one artist
func GetArtistHandler(artists *service.ArtistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		artist, err := artists.FindByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Get artist", err, logrus.Fields{"artist_id": id})
			return
		}
		if artist == nil {
			notFound(c, "Artist")
			return
		}
		utils.Success(c, http.StatusOK, artist)
	}
}

// artistExists answers 404 (or 500) and returns false when the artist is missing
func artistExists(c *gin.Context, artists *service.ArtistService, id uint) bool {
	artist, err := artists.FindByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, "Get artist", err, logrus.Fields{"artist_id": id})
		return false
	}
	if artist == nil {
		notFound(c, "Artist")
		return false
	}
	return true
}

// ArtistSongsHandler returns the songs an artist contributed to
func ArtistSongsHandler(artists *service.ArtistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if !artistExists(c, artists, id) {
			return
		}
		songs, err := artists.FindSongsByArtistID(ctx, id)
		if err != nil {
			respondErr(c, "List artist songs", err, logrus.Fields{"artist_id": id})
			return
		}
		utils.Success(c, http.StatusOK, songs)
	}
}

// ArtistAlbumsHandler returns the albums an artist owns
func ArtistAlbumsHandler(artists *service.ArtistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if !artistExists(c, artists, id) {
			return
		}
		albums, err := artists.FindAlbumsByArtistID(ctx, id)
		if err != nil {
			respondErr(c, "List artist albums", err, logrus.Fields{"artist_id": id})
			return
		}
		utils.Success(c, http.StatusOK, albums)
	}
}

// CreateArtistHandler creates an artist with an optional avatar
func CreateArtistHandler(artists *service.ArtistService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ArtistRequest
		if !bind(c, &req) {
			return
		}
		if req.Name == nil {
			validationFailed(c, []string{"name: is required"})
			return
		}
		up := newUploads(store)
		avatar, err := up.one(c, "avatar_url", media.KindImage)
		if err != nil {
			respondErr(c, "Avatar upload", err, nil)
			return
		}
		artist := &domain.Artist{Name: *req.Name, Bio: req.Bio}
		if avatar != nil {
			artist.AvatarURL = &avatar.URL
		}
		if err := artists.Create(c.Request.Context(), artist); err != nil {
			up.discard()
			respondErr(c, "Create artist", err, logrus.Fields{"name": *req.Name})
			return
		}
		utils.Success(c, http.StatusCreated, artist)
	}
}

// UpdateArtistHandler changes the supplied artist fields
func UpdateArtistHandler(artists *service.ArtistService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req ArtistRequest
		if !bind(c, &req) {
			return
		}
		up := newUploads(store)
		avatar, err := up.one(c, "avatar_url", media.KindImage)
		if err != nil {
			respondErr(c, "Avatar upload", err, nil)
			return
		}
		in := service.ArtistUpdate{Name: req.Name, Bio: req.Bio}
		if avatar != nil {
			in.AvatarURL = &avatar.URL
		}
		artist, err := artists.UpdateByID(c.Request.Context(), id, in)
		if err != nil || artist == nil {
			up.discard()
			if err != nil {
				respondErr(c, "Update artist", err, logrus.Fields{"artist_id": id})
			} else {
				notFound(c, "Artist")
			}
			return
		}
		utils.Success(c, http.StatusOK, artist)
	}
}

// DeleteArtistHandler removes one artist
func DeleteArtistHandler(artists *service.ArtistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		deleted, err := artists.DeleteByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Delete artist", err, logrus.Fields{"artist_id": id})
			return
		}
		if !deleted {
			notFound(c, "Artist")
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"message": "Artist deleted"})
	}
}

// DeleteAllArtistsHandler removes every artist
func DeleteAllArtistsHandler(artists *service.ArtistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := artists.DeleteAll(c.Request.Context()); err != nil {
			respondErr(c, "Delete artists", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"message": "All artists deleted"})
	}
}
