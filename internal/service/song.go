package service

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping
	"strings" // String manipulation

	"music_library/internal/domain" // Domain models
	"music_library/internal/media"  // Upload storage and tag reading

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// SongService manages songs and their artist links
type SongService struct {
	db        *gorm.DB
	durations media.DurationReader
}

// NewSongService creates a SongService over db that reads audio lengths with durations
func NewSongService(db *gorm.DB, durations media.DurationReader) *SongService {
	return &SongService{db: db, durations: durations}
}

// SongFilter narrows GetByFilter; empty strings match everything
type SongFilter struct {
	Title  string
	Artist string
	Page   int
	Limit  int
}

// Pagination describes one page of GetByFilter
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// SongPage is one page of GetByFilter
type SongPage struct {
	Items      []domain.Song `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// SongInput describes a song being added with its audio upload.
// Artists is a comma-separated list whose first name becomes the primary artist.
type SongInput struct {
	Title   string
	Artists string
	Album   string
	Audio   *media.File
	Cover   *media.File
}

// SongUpdate holds the fields to change; nil fields are left alone.
// A non-nil empty Album detaches the song from its album.
type SongUpdate struct {
	Title   *string
	Artists *string
	Album   *string
	Audio   *media.File
	Cover   *media.File
}

// songColumns lists the columns Update may write
var songColumns = map[string]bool{
	"title": true, "audio_url": true, "image_url": true,
	"duration": true, "album_id": true, "artist_id": true,
}

// Create inserts a song row
func (s *SongService) Create(ctx context.Context, song *domain.Song) error {
	if err := s.db.WithContext(ctx).Omit("Artists").Create(song).Error; err != nil { // Links are written separately
		return fmt.Errorf("creating song: %w", err)
	}
	return nil
}

// Update writes the given columns and returns the updated song, or nil if it does not exist
func (s *SongService) Update(ctx context.Context, id uint, fields map[string]any) (*domain.Song, error) {
	for col := range fields {
		if !songColumns[col] {
			return nil, domain.NewValidationError(col + ": cannot be updated")
		}
	}
	res := s.db.WithContext(ctx).Model(&domain.Song{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("updating song %d: %w", id, res.Error)
	}
	return s.GetByID(ctx, id)
}

// deleteSongRows removes songs together with every join row pointing at them
func deleteSongRows(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	for _, join := range []any{&domain.SongArtist{}, &domain.PlaylistSong{}, &domain.Favorite{}} {
		if err := tx.Where("song_id IN ?", ids).Delete(join).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", ids).Delete(&domain.Song{}).Error
}

// Delete removes the song and its links. It reports whether the song existed.
func (s *SongService) Delete(ctx context.Context, id uint) (bool, error) {
	var existed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64 // Matching rows
		if err := tx.Model(&domain.Song{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		existed = n > 0
		return deleteSongRows(tx, []uint{id})
	})
	if err != nil {
		return false, fmt.Errorf("deleting song %d: %w", id, err)
	}
	return existed, nil
}

// DeleteAll removes every song and every row linking to songs
func (s *SongService) DeleteAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&domain.SongArtist{}, &domain.PlaylistSong{}, &domain.Favorite{}, &domain.Song{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting songs: %w", err)
	}
	return nil
}

// AddArtistLink links a contributing artist to a song; repeating a link is a no-op
func (s *SongService) AddArtistLink(ctx context.Context, songID, artistID uint) error {
	return addArtistLinks(s.db.WithContext(ctx), songID, artistID)
}

func addArtistLinks(tx *gorm.DB, songID uint, artistIDs ...uint) error {
	artistIDs = uniqueIDs(artistIDs)
	if len(artistIDs) == 0 {
		return nil
	}
	links := make([]domain.SongArtist, len(artistIDs))
	for i, id := range artistIDs {
		links[i] = domain.SongArtist{SongID: songID, ArtistID: id}
	}
	if err := ignoreConflict(tx).Create(&links).Error; err != nil {
		return fmt.Errorf("linking artists to song %d: %w", songID, err)
	}
	return nil
}

// GetByID returns the song with all linked artists, or nil
func (s *SongService) GetByID(ctx context.Context, id uint) (*domain.Song, error) {
	return getSong(s.db.WithContext(ctx), id)
}

func getSong(tx *gorm.DB, id uint) (*domain.Song, error) {
	var song domain.Song
	err := tx.Preload("Artists", artistColumns).First(&song, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding song %d: %w", id, err)
	}
	return &song, nil
}

// matchesArtist restricts songs to those with a linked artist whose name contains the pattern
const matchesArtist = `EXISTS (SELECT 1 FROM songartists JOIN artists ON artists.id = songartists.artist_id
	WHERE songartists.song_id = songs.id AND LOWER(artists.name) LIKE ?)`

// GetByFilter pages through songs whose title and artist contain the given substrings
func (s *SongService) GetByFilter(ctx context.Context, f SongFilter) (*SongPage, error) {
	page, limit := normalizePage(f.Page, f.Limit)

	query := s.db.WithContext(ctx).Model(&domain.Song{})
	if strings.TrimSpace(f.Title) != "" {
		query = query.Where("LOWER(songs.title) LIKE ?", containsPattern(f.Title))
	}
	if strings.TrimSpace(f.Artist) != "" {
		query = query.Where(matchesArtist, containsPattern(f.Artist))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting songs: %w", err)
	}
	var songs []domain.Song
	err := query.Preload("Artists", artistColumns).
		Order("songs.id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	return &SongPage{Items: songs, Pagination: Pagination{Page: page, Limit: limit, Total: total}}, nil
}

// CountAll returns the number of songs
func (s *SongService) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Song{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting songs: %w", err)
	}
	return n, nil
}

// Find matches song titles or artist names for search, capped at SearchLimit
func (s *SongService) Find(ctx context.Context, query string) ([]domain.Song, error) {
	songs := []domain.Song{}
	if strings.TrimSpace(query) == "" {
		return songs, nil
	}
	pattern := containsPattern(query)
	err := s.db.WithContext(ctx).
		Where("LOWER(songs.title) LIKE ? OR "+matchesArtist, pattern, pattern).
		Preload("Artists", artistColumns).
		Order("songs.id").
		Limit(SearchLimit).
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("searching songs: %w", err)
	}
	return songs, nil
}

// SplitArtistNames splits a comma-separated artist list, dropping blanks and
// case-insensitive repeats while keeping the first spelling seen
func SplitArtistNames(raw string) []string {
	seen := map[string]bool{}
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		key := domain.ArtistKey(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

// resolveArtists finds or creates each named artist, in order
func resolveArtists(tx *gorm.DB, names []string) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		artist, err := findOrCreateArtist(tx, name)
		if err != nil {
			return nil, fmt.Errorf("resolving artist %q: %w", name, err)
		}
		ids = append(ids, artist.ID)
	}
	return ids, nil
}

// AddSong stores an uploaded song. Every named artist is found or created, the
// first becoming the primary artist; a named album is found or created under
// that artist; then the song is inserted and linked to every artist.
func (s *SongService) AddSong(ctx context.Context, in SongInput) (*domain.Song, error) {
	if in.Audio == nil {
		return nil, domain.ErrAudioRequired
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.NewValidationError("title: is required")
	}
	names := SplitArtistNames(in.Artists)
	if len(names) == 0 {
		return nil, domain.NewValidationError("artist: is required")
	}
	duration := s.durations.Duration(ctx, in.Audio.Path)

	var songID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		artistIDs, err := resolveArtists(tx, names)
		if err != nil {
			return err
		}

		song := domain.Song{
			Title:    title,
			AudioURL: in.Audio.URL,
			Duration: duration,
			ArtistID: artistIDs[0],
		}
		if in.Cover != nil {
			song.ImageURL = &in.Cover.URL
		}
		if album := strings.TrimSpace(in.Album); album != "" {
			a, err := findOrCreateAlbum(tx, album, artistIDs[0])
			if err != nil {
				return fmt.Errorf("resolving album %q: %w", album, err)
			}
			song.AlbumID = &a.ID
		}

		if err := tx.Omit("Artists").Create(&song).Error; err != nil {
			return fmt.Errorf("inserting song: %w", err)
		}
		songID = song.ID
		return addArtistLinks(tx, song.ID, artistIDs...)
	})
	if err != nil {
		return nil, fmt.Errorf("adding song %q: %w", title, err)
	}

	logrus.WithFields(logrus.Fields{
		"song_id": songID,
		"artists": len(names),
	}).Info("Song added")
	return s.GetByID(ctx, songID)
}

// UpdateSong applies a partial update. New artists are resolved by name and
// linked; a new album is resolved under the (possibly new) primary artist.
func (s *SongService) UpdateSong(ctx context.Context, id uint, in SongUpdate) (*domain.Song, error) {
	var duration *float64
	if in.Audio != nil {
		duration = s.durations.Duration(ctx, in.Audio.Path)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.Song
		if err := tx.First(&current, id).Error; err != nil {
			if notFound(err) {
				return domain.ErrNotFound
			}
			return err
		}

		updates := map[string]any{}
		if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Audio != nil {
			updates["audio_url"] = in.Audio.URL
			updates["duration"] = duration
		}
		if in.Cover != nil {
			updates["image_url"] = in.Cover.URL
		}

		primary := current.ArtistID
		var artistIDs []uint
		if in.Artists != nil {
			names := SplitArtistNames(*in.Artists)
			if len(names) > 0 {
				ids, err := resolveArtists(tx, names)
				if err != nil {
					return err
				}
				artistIDs = ids
				primary = ids[0]
				updates["artist_id"] = primary
			}
		}

		if in.Album != nil {
			if album := strings.TrimSpace(*in.Album); album == "" {
				updates["album_id"] = nil
			} else {
				a, err := findOrCreateAlbum(tx, album, primary)
				if err != nil {
					return err
				}
				updates["album_id"] = a.ID
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&current).Updates(updates).Error; err != nil {
				return err
			}
		}
		return addArtistLinks(tx, id, artistIDs...)
	})
	if err != nil {
		return nil, fmt.Errorf("updating song %d: %w", id, err)
	}
	return s.GetByID(ctx, id)
}
