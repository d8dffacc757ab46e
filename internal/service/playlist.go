package service

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping
	"strings" // String manipulation

	"music_library/internal/domain" // Domain models
	"music_library/internal/media"  // Upload storage and tag reading

	"gorm.io/gorm" // GORM ORM library
)

// PlaylistService manages playlists and their song lists
type PlaylistService struct {
	db *gorm.DB
}

// NewPlaylistService creates a PlaylistService over db
func NewPlaylistService(db *gorm.DB) *PlaylistService {
	return &PlaylistService{db: db}
}

// PlaylistInput describes a new playlist
type PlaylistInput struct {
	Name     string
	UserID   *uint
	IsPublic bool
	IsSystem bool
	SongIDs  []uint
}

// PlaylistUpdate holds the fields to change. A nil SongIDs leaves the song list
// untouched; a non-nil empty one clears it.
type PlaylistUpdate struct {
	Name     *string
	UserID   *uint
	IsPublic *bool
	IsSystem *bool
	SongIDs  *[]uint
}

// PlaylistWithSongs is a playlist with a summary of each linked song
type PlaylistWithSongs struct {
	domain.Playlist
	Songs []domain.SongSummary `json:"songs"`
}

// PlaylistUpdateResult is the merged playlist and its linked song ids
type PlaylistUpdateResult struct {
	domain.Playlist
	SongIDs []uint `json:"song_ids"`
}

// existingSongs loads the songs among ids that exist, in id order
func existingSongs(tx *gorm.DB, ids []uint) ([]domain.SongSummary, error) {
	songs := []domain.SongSummary{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return songs, nil
	}
	err := tx.Model(&domain.Song{}).Select("id", "title").Where("id IN ?", ids).Order("id").Scan(&songs).Error
	return songs, err
}

// linkSongs bulk-inserts playlist links; repeated pairs are ignored
func linkSongs(tx *gorm.DB, playlistID uint, songs []domain.SongSummary) error {
	if len(songs) == 0 {
		return nil
	}
	links := make([]domain.PlaylistSong, len(songs))
	for i, song := range songs {
		links[i] = domain.PlaylistSong{PlaylistID: playlistID, SongID: song.ID}
	}
	return ignoreConflict(tx).Create(&links).Error
}

// CreateWithSongs creates a playlist linked to every existing song in SongIDs.
// User playlists need an owner and at least one of the songs must exist.
func (s *PlaylistService) CreateWithSongs(ctx context.Context, in PlaylistInput, cover *media.File) (*PlaylistWithSongs, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name: is required")
	}
	if !in.IsSystem && in.UserID == nil {
		return nil, domain.ErrUserRequired
	}

	var result PlaylistWithSongs
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		songs, err := existingSongs(tx, in.SongIDs)
		if err != nil {
			return err
		}
		if len(songs) == 0 {
			return domain.ErrNoSongs
		}

		playlist := domain.Playlist{
			Name:     strings.TrimSpace(in.Name),
			UserID:   in.UserID,
			IsPublic: in.IsPublic,
			IsSystem: in.IsSystem,
		}
		if in.IsSystem {
			playlist.UserID = nil // System playlists have no owner
		}
		if cover != nil {
			playlist.ImageURL = &cover.URL
		}
		if err := tx.Omit("Songs").Create(&playlist).Error; err != nil {
			return err
		}
		if err := linkSongs(tx, playlist.ID, songs); err != nil {
			return err
		}
		result = PlaylistWithSongs{Playlist: playlist, Songs: songs}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating playlist %q: %w", in.Name, err)
	}
	return &result, nil
}

// GetAll returns the playlists visible to a viewer: public and system ones,
// plus the viewer's own. Admins see every playlist.
func (s *PlaylistService) GetAll(ctx context.Context, viewerID *uint, admin bool) ([]domain.Playlist, error) {
	query := s.db.WithContext(ctx).Order("id")
	if !admin {
		if viewerID != nil {
			query = query.Where("is_public = ? OR is_system = ? OR user_id = ?", true, true, *viewerID)
		} else {
			query = query.Where("is_public = ? OR is_system = ?", true, true)
		}
	}
	var playlists []domain.Playlist
	if err := query.Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	return playlists, nil
}

// GetByID returns the playlist with its song summaries, or nil
func (s *PlaylistService) GetByID(ctx context.Context, id uint) (*PlaylistWithSongs, error) {
	tx := s.db.WithContext(ctx)
	var playlist domain.Playlist
	err := tx.First(&playlist, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding playlist %d: %w", id, err)
	}
	songs := []domain.SongSummary{}
	err = tx.Model(&domain.Song{}).
		Select("songs.id", "songs.title").
		Joins("JOIN playlistsongs ON playlistsongs.song_id = songs.id").
		Where("playlistsongs.playlist_id = ?", id).
		Order("songs.id").
		Scan(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("listing songs of playlist %d: %w", id, err)
	}
	return &PlaylistWithSongs{Playlist: playlist, Songs: songs}, nil
}

// songIDsOf returns the ids linked to a playlist
func songIDsOf(tx *gorm.DB, playlistID uint) ([]uint, error) {
	ids := []uint{}
	err := tx.Model(&domain.PlaylistSong{}).Where("playlist_id = ?", playlistID).Order("song_id").Pluck("song_id", &ids).Error
	return ids, err
}

// UpdatePlaylist merges the supplied fields over the stored playlist. When
// SongIDs is supplied the whole song list is replaced, atomically.
func (s *PlaylistService) UpdatePlaylist(ctx context.Context, id uint, in PlaylistUpdate, cover *media.File) (*PlaylistUpdateResult, error) {
	var result PlaylistUpdateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var playlist domain.Playlist
		if err := tx.First(&playlist, id).Error; err != nil {
			if notFound(err) {
				return domain.ErrNotFound
			}
			return err
		}

		if in.Name != nil {
			if name := strings.TrimSpace(*in.Name); name != "" {
				playlist.Name = name
			}
		}
		if in.UserID != nil {
			playlist.UserID = in.UserID
		}
		if in.IsPublic != nil {
			playlist.IsPublic = *in.IsPublic
		}
		if in.IsSystem != nil {
			playlist.IsSystem = *in.IsSystem
		}
		if playlist.IsSystem {
			playlist.UserID = nil
		} else if playlist.UserID == nil {
			return domain.ErrUserRequired
		}
		if cover != nil {
			playlist.ImageURL = &cover.URL
		}
		if err := tx.Omit("Songs").Save(&playlist).Error; err != nil {
			return err
		}

		if in.SongIDs == nil {
			ids, err := songIDsOf(tx, id)
			if err != nil {
				return err
			}
			result = PlaylistUpdateResult{Playlist: playlist, SongIDs: ids}
			return nil
		}

		if err := tx.Where("playlist_id = ?", id).Delete(&domain.PlaylistSong{}).Error; err != nil {
			return err
		}
		songs, err := existingSongs(tx, *in.SongIDs)
		if err != nil {
			return err
		}
		if err := linkSongs(tx, id, songs); err != nil {
			return err
		}
		ids := make([]uint, len(songs))
		for i, song := range songs {
			ids[i] = song.ID
		}
		result = PlaylistUpdateResult{Playlist: playlist, SongIDs: ids}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating playlist %d: %w", id, err)
	}
	return &result, nil
}

// DeletePlaylistByID removes the playlist and its song links.
// It reports whether the playlist existed.
func (s *PlaylistService) DeletePlaylistByID(ctx context.Context, id uint) (bool, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&domain.PlaylistSong{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Playlist{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, fmt.Errorf("deleting playlist %d: %w", id, err)
	}
	return deleted > 0, nil
}

// DeleteAllPlaylists clears every link row and then every playlist
func (s *PlaylistService) DeleteAllPlaylists(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.PlaylistSong{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&domain.Playlist{}).Error
	})
	if err != nil {
		return fmt.Errorf("deleting playlists: %w", err)
	}
	return nil
}

// Find matches names of public or system playlists for search, capped at SearchLimit
func (s *PlaylistService) Find(ctx context.Context, query string) ([]domain.Playlist, error) {
	playlists := []domain.Playlist{}
	if strings.TrimSpace(query) == "" {
		return playlists, nil
	}
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", containsPattern(query)).
		Where("is_public = ? OR is_system = ?", true, true).
		Order("id").
		Limit(SearchLimit).
		Find(&playlists).Error
	if err != nil {
		return nil, fmt.Errorf("searching playlists: %w", err)
	}
	return playlists, nil
}
