package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Song id parsing
	"strings"  // Song id lists

	"music_library/internal/domain"     // Importing domain models
	"music_library/internal/media"      // Cover uploads
	"music_library/internal/middleware" // Caller identity
	"music_library/internal/service"    // Playlist service
	"music_library/internal/utils"      // Response envelope

	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/gin-gonic/gin/binding" // Content type names
	"github.com/sirupsen/logrus"       // Logging
)

// PlaylistRequest is the playlist create/update form. In JSON song_ids is an
// array; in a form it may be repeated or comma-separated. Leaving it out keeps
// the current songs on update, sending it empty clears them.
type PlaylistRequest struct {
	Name     *string `form:"name" json:"name" binding:"omitempty,max=255"` // Playlist name
	UserID   *uint   `form:"user_id" json:"user_id"`                       // Owner, defaults to the caller
	IsPublic *bool   `form:"is_public" json:"is_public"`                   // Visible to everyone
	IsSystem *bool   `form:"is_system" json:"is_system"`                   // Curated by an admin
	SongIDs  *[]uint `form:"-" json:"song_ids"`                            // Linked songs
}

// bindPlaylist decodes the request, reading song_ids from the form when not JSON
func bindPlaylist(c *gin.Context) (*PlaylistRequest, bool) {
	var req PlaylistRequest
	if !bind(c, &req) {
		return nil, false
	}
	if c.ContentType() == binding.MIMEJSON {
		return &req, true
	}
	vals, present := c.GetPostFormArray("song_ids")
	if !present {
		return &req, true
	}
	ids := []uint{}
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil || id == 0 {
				validationFailed(c, []string{"song_ids: must be positive integers"})
				return nil, false
			}
			ids = append(ids, uint(id))
		}
	}
	req.SongIDs = &ids
	return &req, true
}

// viewer returns the caller's id and whether the database says they are an admin
func viewer(c *gin.Context, users *service.UserService) (*uint, bool, error) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil, false, nil
	}
	user, err := users.GetByID(c.Request.Context(), id)
	if err != nil || user == nil {
		return nil, false, err
	}
	return &user.ID, user.IsAdmin(), nil
}

// canManage reports whether the caller may change the playlist
func canManage(p *domain.Playlist, viewerID *uint, admin bool) bool {
	if admin {
		return true
	}
	return viewerID != nil && !p.IsSystem && p.OwnedBy(*viewerID)
}

// ListPlaylistsHandler returns the playlists visible to the caller
func ListPlaylistsHandler(playlists *service.PlaylistService, users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, admin, err := viewer(c, users)
		if err != nil {
			respondErr(c, "Load viewer", err, nil)
			return
		}
		list, err := playlists.GetAll(c.Request.Context(), viewerID, admin)
		if err != nil {
			respondErr(c, "List playlists", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, list)
	}
}

// GetPlaylistHandler returns a playlist with its songs. Private playlists of
// other users look exactly like missing ones.
func GetPlaylistHandler(playlists *service.PlaylistService, users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		viewerID, admin, err := viewer(c, users)
		if err != nil {
			respondErr(c, "Load viewer", err, nil)
			return
		}
		p, err := playlists.GetByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, "Get playlist", err, logrus.Fields{"playlist_id": id})
			return
		}
		visible := p != nil && (p.IsPublic || p.IsSystem || admin || (viewerID != nil && p.OwnedBy(*viewerID)))
		if !visible {
			notFound(c, "Playlist")
			return
		}
		utils.Success(c, http.StatusOK, p)
	}
}

// CreatePlaylistHandler creates a playlist for the caller. Only admins may
// create system playlists or playlists for someone else.
func CreatePlaylistHandler(playlists *service.PlaylistService, users *service.UserService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindPlaylist(c)
		if !ok {
			return
		}
		viewerID, admin, err := viewer(c, users)
		if err != nil {
			respondErr(c, "Load viewer", err, nil)
			return
		}
		if viewerID == nil {
			utils.Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if req.Name == nil {
			validationFailed(c, []string{"name: is required"})
			return
		}
		in := service.PlaylistInput{Name: *req.Name, UserID: viewerID}
		if req.UserID != nil {
			in.UserID = req.UserID
		}
		if req.IsPublic != nil {
			in.IsPublic = *req.IsPublic
		}
		if req.IsSystem != nil {
			in.IsSystem = *req.IsSystem
		}
		if req.SongIDs != nil {
			in.SongIDs = *req.SongIDs
		}
		if !admin && (in.IsSystem || *in.UserID != *viewerID) {
			utils.Fail(c, http.StatusForbidden, "Only admins can create system playlists or playlists for other users")
			return
		}

		up := newUploads(store)
		cover, err := up.one(c, "cover", media.KindImage)
		if err != nil {
			respondErr(c, "Cover upload", err, nil)
			return
		}
		res, err := playlists.CreateWithSongs(c.Request.Context(), in, cover)
		if err != nil {
			up.discard()
			respondErr(c, "Create playlist", err, logrus.Fields{"name": in.Name})
			return
		}
		utils.Success(c, http.StatusCreated, res)
	}
}

// UpdatePlaylistHandler merges the supplied fields into a playlist the caller manages
func UpdatePlaylistHandler(playlists *service.PlaylistService, users *service.UserService, store *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		req, ok := bindPlaylist(c)
		if !ok {
			return
		}
		p, admin, ok := managedPlaylist(c, playlists, users, id)
		if !ok {
			return
		}
		if !admin && ((req.IsSystem != nil && *req.IsSystem) || (req.UserID != nil && !p.OwnedBy(*req.UserID))) {
			utils.Fail(c, http.StatusForbidden, "Only admins can change playlist ownership")
			return
		}

		up := newUploads(store)
		cover, err := up.one(c, "cover", media.KindImage)
		if err != nil {
			respondErr(c, "Cover upload", err, nil)
			return
		}
		res, err := playlists.UpdatePlaylist(c.Request.Context(), id, service.PlaylistUpdate{
			Name:     req.Name,
			UserID:   req.UserID,
			IsPublic: req.IsPublic,
			IsSystem: req.IsSystem,
			SongIDs:  req.SongIDs,
		}, cover)
		if err != nil {
			up.discard()
			respondErr(c, "Update playlist", err, logrus.Fields{"playlist_id": id})
			return
		}
		utils.Success(c, http.StatusOK, res)
	}
}

// managedPlaylist loads a playlist the caller may change, answering 404 or 403
// otherwise. It also reports whether the caller is an admin.
func managedPlaylist(c *gin.Context, playlists *service.PlaylistService, users *service.UserService, id uint) (*service.PlaylistWithSongs, bool, bool) {
	viewerID, admin, err := viewer(c, users)
	if err != nil {
		respondErr(c, "Load viewer", err, nil)
		return nil, false, false
	}
	p, err := playlists.GetByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, "Get playlist", err, logrus.Fields{"playlist_id": id})
		return nil, false, false
	}
	if p == nil {
		notFound(c, "Playlist")
		return nil, false, false
	}
	if !canManage(&p.Playlist, viewerID, admin) {
		utils.Fail(c, http.StatusForbidden, "You can only manage your own playlists")
		return nil, false, false
	}
	return p, admin, true
}

// DeletePlaylistHandler removes a playlist the caller manages
func DeletePlaylistHandler(playlists *service.PlaylistService, users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if _, _, ok := managedPlaylist(c, playlists, users, id); !ok {
			return
		}
		if _, err := playlists.DeletePlaylistByID(c.Request.Context(), id); err != nil {
			respondErr(c, "Delete playlist", err, logrus.Fields{"playlist_id": id})
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"message": "Playlist deleted"})
	}
}

// DeleteAllPlaylistsHandler removes every playlist
func DeleteAllPlaylistsHandler(playlists *service.PlaylistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := playlists.DeleteAllPlaylists(c.Request.Context()); err != nil {
			respondErr(c, "Delete playlists", err, nil)
			return
		}
		utils.Success(c, http.StatusOK, gin.H{"message": "All playlists deleted"})
	}
}
