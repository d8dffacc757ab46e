package service

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping
	"strings" // String manipulation
	"time"    // Release dates

	"music_library/internal/domain" // Domain models
	"music_library/internal/media"  // Upload storage and tag reading

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// AlbumService manages albums and the songs uploaded with them
type AlbumService struct {
	db        *gorm.DB
	durations media.DurationReader
}

// NewAlbumService creates an AlbumService over db that reads audio lengths with durations
func NewAlbumService(db *gorm.DB, durations media.DurationReader) *AlbumService {
	return &AlbumService{db: db, durations: durations}
}

// AlbumInput describes a new album and its uploaded tracks
type AlbumInput struct {
	Title       string
	ArtistName  string
	ReleaseDate *time.Time
	Cover       *media.File
	AudioFiles  []*media.File
}

// AlbumUpdate holds the fields to change; nil fields are left alone
type AlbumUpdate struct {
	Title       *string
	ReleaseDate *time.Time
	ArtistName  *string
	Cover       *media.File
	AudioFiles  []*media.File
}

// AlbumWithSongs is an album together with its tracks
type AlbumWithSongs struct {
	Album domain.Album  `json:"album"`
	Songs []domain.Song `json:"songs"`
}

// AlbumUpdateResult is the updated album plus any tracks added by the update
type AlbumUpdateResult struct {
	Album    domain.Album  `json:"album"`
	NewSongs []domain.Song `json:"new_songs,omitempty"`
}

// albumQuery selects albums joined with their artist's name
func albumQuery(tx *gorm.DB) *gorm.DB {
	return tx.Model(&domain.Album{}).
		Select("albums.*, artists.name AS artist_name").
		Joins("LEFT JOIN artists ON artists.id = albums.artist_id")
}

// FindAll returns every album with its artist name
func (s *AlbumService) FindAll(ctx context.Context) ([]domain.Album, error) {
	var albums []domain.Album
	if err := albumQuery(s.db.WithContext(ctx)).Order("albums.id").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	return albums, nil
}

// FindByID returns the album with its artist name, or nil
func (s *AlbumService) FindByID(ctx context.Context, id uint) (*domain.Album, error) {
	return findAlbum(s.db.WithContext(ctx), id)
}

func findAlbum(tx *gorm.DB, id uint) (*domain.Album, error) {
	var album domain.Album
	err := albumQuery(tx).Where("albums.id = ?", id).Take(&album).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding album %d: %w", id, err)
	}
	return &album, nil
}

// FindWithSongs returns the album and its tracks, or nil
func (s *AlbumService) FindWithSongs(ctx context.Context, id uint) (*AlbumWithSongs, error) {
	album, err := s.FindByID(ctx, id)
	if err != nil || album == nil {
		return nil, err
	}
	var songs []domain.Song
	err = s.db.WithContext(ctx).
		Where("album_id = ?", id).
		Preload("Artists", artistColumns).
		Order("id").
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("listing songs of album %d: %w", id, err)
	}
	return &AlbumWithSongs{Album: *album, Songs: songs}, nil
}

// FindOrCreateByName returns the artist's album titled title (ignoring case),
// creating it with today's release date when absent
func (s *AlbumService) FindOrCreateByName(ctx context.Context, title string, artistID uint) (*domain.Album, error) {
	return findOrCreateAlbum(s.db.WithContext(ctx), title, artistID)
}

// findOrCreateAlbum is an atomic get-or-insert keyed on (lowercased title, artist)
func findOrCreateAlbum(tx *gorm.DB, title string, artistID uint) (*domain.Album, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.NewValidationError("album: is required")
	}
	key := domain.AlbumKey(title)

	var album domain.Album
	err := tx.Where("title_key = ? AND artist_id = ?", key, artistID).First(&album).Error
	if err == nil {
		return &album, nil
	}
	if !notFound(err) {
		return nil, fmt.Errorf("finding album %q: %w", title, err)
	}

	now := time.Now() // Auto-created albums are released today
	created := domain.Album{Title: title, ArtistID: artistID, ReleaseDate: &now}
	if err := ignoreConflict(tx).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("creating album %q: %w", title, err)
	}
	if err := tx.Where("title_key = ? AND artist_id = ?", key, artistID).First(&album).Error; err != nil {
		return nil, fmt.Errorf("reloading album %q: %w", title, err)
	}
	return &album, nil
}

// trackRows builds song rows for uploaded audio files, reading each duration.
// Durations are read before any transaction opens so file reads never hold a store connection.
func (s *AlbumService) trackRows(ctx context.Context, files []*media.File, imageURL *string) []domain.Song {
	songs := make([]domain.Song, 0, len(files))
	for _, f := range files {
		songs = append(songs, domain.Song{
			Title:    f.CleanTitle(),
			AudioURL: f.URL,
			ImageURL: imageURL,
			Duration: s.durations.Duration(ctx, f.Path),
		})
	}
	return songs
}

// insertTracks stores songs under an album and links each to its primary artist
func insertTracks(tx *gorm.DB, songs []domain.Song, albumID, artistID uint) error {
	if len(songs) == 0 {
		return nil
	}
	for i := range songs {
		songs[i].AlbumID = &albumID
		songs[i].ArtistID = artistID
	}
	if err := tx.Create(&songs).Error; err != nil {
		return fmt.Errorf("inserting songs: %w", err)
	}
	links := make([]domain.SongArtist, len(songs))
	for i, song := range songs {
		links[i] = domain.SongArtist{SongID: song.ID, ArtistID: artistID}
	}
	if err := ignoreConflict(tx).Create(&links).Error; err != nil {
		return fmt.Errorf("linking songs to artist: %w", err)
	}
	return nil
}

// CreateWithSongs creates the album, its artist if needed, and one song per
// audio file in a single transaction. Nothing is stored if any step fails.
func (s *AlbumService) CreateWithSongs(ctx context.Context, in AlbumInput) (*AlbumWithSongs, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.NewValidationError("title: is required")
	}
	var coverURL *string
	if in.Cover != nil {
		coverURL = &in.Cover.URL
	}
	songs := s.trackRows(ctx, in.AudioFiles, coverURL)

	var albumID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		artist, err := findOrCreateArtist(tx, in.ArtistName)
		if err != nil {
			return err
		}
		album := domain.Album{
			Title:       strings.TrimSpace(in.Title),
			ArtistID:    artist.ID,
			ReleaseDate: in.ReleaseDate,
			CoverURL:    coverURL,
		}
		if err := tx.Create(&album).Error; err != nil {
			return fmt.Errorf("inserting album: %w", translate(err))
		}
		albumID = album.ID
		return insertTracks(tx, songs, album.ID, artist.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("creating album %q: %w", in.Title, err)
	}

	logrus.WithFields(logrus.Fields{
		"album_id": albumID,
		"songs":    len(songs),
	}).Info("Album created")
	return s.FindWithSongs(ctx, albumID)
}

// UpdateAlbum writes only the columns that differ from the stored row, can move
// the album to another artist by name, and appends newly uploaded tracks
func (s *AlbumService) UpdateAlbum(ctx context.Context, id uint, in AlbumUpdate) (*AlbumUpdateResult, error) {
	newSongs := s.trackRows(ctx, in.AudioFiles, nil)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.Album
		if err := tx.First(&current, id).Error; err != nil {
			if notFound(err) {
				return domain.ErrNotFound
			}
			return err
		}

		updates := map[string]any{}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title != "" && title != current.Title {
				updates["title"] = title
				updates["title_key"] = domain.AlbumKey(title)
			}
		}
		if in.ReleaseDate != nil && !sameDay(in.ReleaseDate, current.ReleaseDate) {
			updates["release_date"] = *in.ReleaseDate
		}
		if in.Cover != nil {
			updates["cover_url"] = in.Cover.URL
		}
		artistID := current.ArtistID
		if in.ArtistName != nil && strings.TrimSpace(*in.ArtistName) != "" {
			artist, err := findOrCreateArtist(tx, *in.ArtistName)
			if err != nil {
				return err
			}
			if artist.ID != current.ArtistID {
				updates["artist_id"] = artist.ID
				artistID = artist.ID
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&current).Updates(updates).Error; err != nil {
				return translate(err)
			}
		}
		return insertTracks(tx, newSongs, id, artistID)
	})
	if err != nil {
		return nil, fmt.Errorf("updating album %d: %w", id, err)
	}

	album, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, domain.ErrNotFound
	}
	return &AlbumUpdateResult{Album: *album, NewSongs: newSongs}, nil
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.UTC().Format(time.DateOnly) == b.UTC().Format(time.DateOnly)
}

// DeleteByID removes the album and all of its songs in one transaction.
// It reports whether the album existed.
func (s *AlbumService) DeleteByID(ctx context.Context, id uint) (bool, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var songIDs []uint
		if err := tx.Model(&domain.Song{}).Where("album_id = ?", id).Pluck("id", &songIDs).Error; err != nil {
			return err
		}
		if err := deleteSongRows(tx, songIDs); err != nil {
			return err
		}
		res := tx.Delete(&domain.Album{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, fmt.Errorf("deleting album %d: %w", id, err)
	}
	return deleted > 0, nil
}

// CountAll returns the number of albums
func (s *AlbumService) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Album{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting albums: %w", err)
	}
	return n, nil
}

// Find matches album titles or artist names for search, capped at SearchLimit
func (s *AlbumService) Find(ctx context.Context, query string) ([]domain.Album, error) {
	albums := []domain.Album{}
	if strings.TrimSpace(query) == "" {
		return albums, nil
	}
	pattern := containsPattern(query)
	err := albumQuery(s.db.WithContext(ctx)).
		Where("LOWER(albums.title) LIKE ? OR LOWER(artists.name) LIKE ?", pattern, pattern).
		Order("albums.id").
		Limit(SearchLimit).
		Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("searching albums: %w", err)
	}
	return albums, nil
}
