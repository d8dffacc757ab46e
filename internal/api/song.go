package api

import (
	"net/http" // HTTP status codes

	"music_library/internal/media"   // Audio and cover uploads
	"music_library/internal/service" // Song service
	"music_library/internal/utils"   // Response envelope

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// SongRequest is the song create form; artist is a comma-separated list
type SongRequest struct {
	Title  string `form:"title" json:"title" binding:"required,max=255"` // Song title
	Artist string `form:"artist" json:"artist" binding:"required"`       // Comma-separated artist names
	Album  string `form:"album" json:"album" binding:"max=255"`          // Optional album title
}

// SongUpdateRequest is the partial song update form. An empty album detaches the song.
type SongUpdateRequest struct {
	Title  *string `form:"title" json:"title" binding:"omitempty,max=255"` // Song title
	Artist *string `form:"artist" json:"artist"`                           // Comma-separated artist names
	Album  *string `form:"album" json:"album" binding:"omitempty,max=255"` // Album title
}

// ListSongsHandler pages through songs filtered by title and artist
func ListSongsHandler(songs *service.SongService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pageParams(c)
		res, err := songs.GetByFilter(c.Request.Context(), service.SongFilter{
			Title:  c.Query("title"),
			Artist: c.Query("artist"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			respondErr(c, "List songs", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, res)
	}
}

// GetSongHandler returns one song with its artists
func GetSongHandler(songs *service.SongService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		song, err := songs.GetByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Get song", err, logrus.Fields{"song_id": id})
			return
		}
		if song == nil {
			notFound(c, "Song")
			return
		}
		utils.Success(c, http.StatusOK, song)
	}
}

// songFiles saves the optional audio and cover uploads
func songFiles(c *gin.Context, up *uploads) (*media.File, *media.File, error) {
	audio, err := up.one(c, "audio_files", media.KindAudio)
	if err != nil {
		return nil, nil, err
	}
	cover, err := up.one(c, "cover", media.KindImage)
	if err != nil {
		return nil, nil, err
	}
	return audio, cover, nil
}

// AddSongHandler stores an uploaded song, creating its artists and album as needed
func AddSongHandler(songs *service.SongService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SongRequest
		if !bind(c, &req) {
			return
		}
		up := newUploads(store)
		audio, cover, err := songFiles(c, up)
		if err != nil {
			up.discard()
			respondErr(c, "Song upload", err, nil)
			return
		}
		song, err := songs.AddSong(c.Request.Context(), service.SongInput{
			Title:   req.Title,
			Artists: req.Artist,
			Album:   req.Album,
			Audio:   audio,
			Cover:   cover,
		})
		if err != nil {
			up.discard()
			respondErr(c, "Add song", err, logrus.Fields{"title": req.Title})
			return
		}
		utils.Success(c, http.StatusCreated, song)
	}
}

// UpdateSongHandler applies a partial update, optionally replacing audio and cover
func UpdateSongHandler(songs *service.SongService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req SongUpdateRequest
		if !bind(c, &req) {
			return
		}
		up := newUploads(store)
		audio, cover, err := songFiles(c, up)
		if err != nil {
			up.discard()
			respondErr(c, "Song upload", err, nil)
			return
		}
		song, err := songs.UpdateSong(c.Request.Context(), id, service.SongUpdate{
			Title:   req.Title,
			Artists: req.Artist,
			Album:   req.Album,
			Audio:   audio,
			Cover:   cover,
		})
		if err != nil {
			up.discard()
			respondErr(c, "Update song", err, logrus.Fields{"song_id": id})
			return
		}
		utils.Success(c, http.StatusOK, song)
	}
}

// DeleteSongHandler removes one song
func DeleteSongHandler(songs *service.SongService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		deleted, err := songs.Delete(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Delete song", err, logrus.Fields{"song_id": id})
			return
		}
		if !deleted {
			notFound(c, "Song")
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"message": "Song deleted"})
	}
}

// DeleteAllSongsHandler removes every song
func DeleteAllSongsHandler(songs *service.SongService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := songs.DeleteAll(c.Request.Context()); err != nil {
			respondErr(c, "Delete songs", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"message": "All songs deleted"})
	}
}
