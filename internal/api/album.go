package api

import (
	"net/http" // HTTP status codes
	"strings"  // Input trimming
	"time"     // Release dates

	"music_library/internal/media"   // Cover and track uploads
	"music_library/internal/service" // Album service
	"music_library/internal/utils"   // Response envelope

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// AlbumRequest is the album create/update form. Tracks arrive as audio_files.
type AlbumRequest struct {
	Title       *string `form:"title" json:"title" binding:"omitempty,max=255"`   // Album title
	Artist      *string `form:"artist" json:"artist" binding:"omitempty,max=255"` // Owning artist name
	ReleaseDate string  `form:"release_date" json:"release_date"`                 // YYYY-MM-DD or RFC 3339
}

// parseReleaseDate accepts a plain date or a full timestamp; empty means absent
func parseReleaseDate(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// albumFiles saves the optional cover and the uploaded tracks
func albumFiles(c *gin.Context, up *uploads) (*media.File, []*media.File, error) {
	cover, err := up.one(c, "cover", media.KindImage)
	if err != nil {
		return nil, nil, err
	}
	tracks, err := up.many(c, "audio_files", media.KindAudio)
	if err != nil {
		return nil, nil, err
	}
	return cover, tracks, nil
}

// ListAlbumsHandler returns every album
func ListAlbumsHandler(albums *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := albums.FindAll(c.Request.Context())
		if err != nil {
			respondErr(c, "List albums", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, list)
	}
}

// GetAlbumHandler returns one album
func GetAlbumHandler(albums *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		album, err := albums.FindByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Get album", err, logrus.Fields{"album_id": id})
			return
		}
		if album == nil {
			notFound(c, "Album")
			return
		}
		utils.Success(c, http.StatusOK, album)
	}
}

// AlbumSongsHandler returns an album with its tracks
func AlbumSongsHandler(albums *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		res, err := albums.FindWithSongs(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Get album songs", err, logrus.Fields{"album_id": id})
			return
		}
		if res == nil {
			notFound(c, "Album")
			return
		}
		utils.Success(c, http.StatusOK, res)
	}
}

// CreateAlbumHandler creates an album and one song per uploaded track
func CreateAlbumHandler(albums *service.AlbumService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AlbumRequest
		if !bind(c, &req) {
			return
		}
		var msgs []string
		if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
			msgs = append(msgs, "title: is required")
		}
		if req.Artist == nil || strings.TrimSpace(*req.Artist) == "" {
			msgs = append(msgs, "artist: is required")
		}
		release, ok := parseReleaseDate(req.ReleaseDate)
		if !ok {
			msgs = append(msgs, "release_date: must be a date (YYYY-MM-DD)")
		}
		if len(msgs) > 0 {
			validationFailed(c, msgs)
			return
		}

		up := newUploads(store)
		cover, tracks, err := albumFiles(c, up)
		if err != nil {
			up.discard()
			respondErr(c, "Album upload", err, nil)
			return
		}
		res, err := albums.CreateWithSongs(c.Request.Context(), service.AlbumInput{
			Title:       *req.Title,
			ArtistName:  *req.Artist,
			ReleaseDate: release,
			Cover:       cover,
			AudioFiles:  tracks,
		})
		if err != nil {
			up.discard()
			respondErr(c, "Create album", err, logrus.Fields{"title": *req.Title})
			return
		}
		utils.Success(c, http.StatusCreated, res)
	}
}

// UpdateAlbumHandler changes the supplied album fields and appends uploaded tracks
func UpdateAlbumHandler(albums *service.AlbumService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req AlbumRequest
		if !bind(c, &req) {
			return
		}
		release, ok := parseReleaseDate(req.ReleaseDate)
		if !ok {
			validationFailed(c, []string{"release_date: must be a date (YYYY-MM-DD)"})
			return
		}

		up := newUploads(store)
		cover, tracks, err := albumFiles(c, up)
		if err != nil {
			up.discard()
			respondErr(c, "Album upload", err, nil)
			return
		}
		res, err := albums.UpdateAlbum(c.Request.Context(), id, service.AlbumUpdate{
			Title:       req.Title,
			ReleaseDate: release,
			ArtistName:  req.Artist,
			Cover:       cover,
			AudioFiles:  tracks,
		})
		if err != nil {
			up.discard()
			respondErr(c, "Update album", err, logrus.Fields{"album_id": id})
			return
		}
		utils.Success(c, http.StatusOK, res)
	}
}

// DeleteAlbumHandler removes an album together with all of its songs
func DeleteAlbumHandler(albums *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		deleted, err := albums.DeleteByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Delete album", err, logrus.Fields{"album_id": id})
			return
		}
		if !deleted {
			notFound(c, "Album")
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"message": "Album and its songs deleted"})
	}
}
