package service

import (
	"context"
	"fmt"
	"strings"

	"music_library/internal/domain"

	"gorm.io/gorm"
)

// ArtistService manages artists and their catalog
type ArtistService struct {
	db *gorm.DB
}

// NewArtistService creates an ArtistService over db
func NewArtistService(db *gorm.DB) *ArtistService {
	return &ArtistService{db: db}
}

// ArtistPage is one page of FindAllWithFilters
type ArtistPage struct {
	Items    []domain.Artist `json:"items"`
	Metadata PageMetadata    `json:"metadata"`
}

// ArtistUpdate holds the fields to change; nil fields are left alone
type ArtistUpdate struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}

// Create inserts a new artist. A name already taken, ignoring case, is a conflict.
func (s *ArtistService) Create(ctx context.Context, artist *domain.Artist) error {
	if strings.TrimSpace(artist.Name) == "" {
		return domain.NewValidationError("name: is required")
	}
	if err := s.db.WithContext(ctx).Create(artist).Error; err != nil {
		return fmt.Errorf("creating artist: %w", translate(err))
	}
	return nil
}

// FindByID returns the artist or nil
func (s *ArtistService) FindByID(ctx context.Context, id uint) (*domain.Artist, error) {
	var artist domain.Artist
	err := s.db.WithContext(ctx).First(&artist, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding artist %d: %w", id, err)
	}
	return &artist, nil
}

// FindByName returns the artist whose name matches exactly, or nil
func (s *ArtistService) FindByName(ctx context.Context, name string) (*domain.Artist, error) {
	var artist domain.Artist
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&artist).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding artist %q: %w", name, err)
	}
	return &artist, nil
}

// FindOrCreateByName returns the artist matching name case-insensitively,
// creating it with only the name set when none exists
func (s *ArtistService) FindOrCreateByName(ctx context.Context, name string) (*domain.Artist, error) {
	return findOrCreateArtist(s.db.WithContext(ctx), name)
}

// findOrCreateArtist is an atomic get-or-insert keyed on the lowercased name.
// Concurrent callers racing on the same name all end up with the single stored row.
func findOrCreateArtist(tx *gorm.DB, name string) (*domain.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("artist: is required")
	}
	key := domain.ArtistKey(name)

	var artist domain.Artist
	err := tx.Where("name_key = ?", key).First(&artist).Error
	if err == nil {
		return &artist, nil
	}
	if !notFound(err) {
		return nil, fmt.Errorf("finding artist %q: %w", name, err)
	}

	created := domain.Artist{Name: name}
	if err := ignoreConflict(tx).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("creating artist %q: %w", name, err)
	}
	// Re-read by key so a row inserted by a concurrent request wins
	if err := tx.Where("name_key = ?", key).First(&artist).Error; err != nil {
		return nil, fmt.Errorf("reloading artist %q: %w", name, err)
	}
	return &artist, nil
}

// FindAll returns every artist
func (s *ArtistService) FindAll(ctx context.Context) ([]domain.Artist, error) {
	var artists []domain.Artist
	if err := s.db.WithContext(ctx).Order("id").Find(&artists).Error; err != nil {
		return nil, fmt.Errorf("listing artists: %w", err)
	}
	return artists, nil
}

// FindAllWithFilters pages through artists, optionally filtered by a
// case-insensitive substring of the name
func (s *ArtistService) FindAllWithFilters(ctx context.Context, name string, page, limit int) (*ArtistPage, error) {
	page, limit = normalizePage(page, limit)

	query := s.db.WithContext(ctx).Model(&domain.Artist{})
	if strings.TrimSpace(name) != "" {
		query = query.Where("LOWER(name) LIKE ?", containsPattern(name))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting artists: %w", err)
	}
	var artists []domain.Artist
	if err := query.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&artists).Error; err != nil {
		return nil, fmt.Errorf("listing artists: %w", err)
	}

	return &ArtistPage{
		Items: artists,
		Metadata: PageMetadata{
			TotalRecords: total,
			Page:         page,
			Limit:        limit,
			TotalPages:   totalPages(total, limit),
		},
	}, nil
}

// UpdateByID applies the non-nil fields and returns the updated artist, or nil if it does not exist
func (s *ArtistService) UpdateByID(ctx context.Context, id uint, in ArtistUpdate) (*domain.Artist, error) {
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name: must not be empty")
		}
		updates["name"] = name
		updates["name_key"] = domain.ArtistKey(name)
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}

	artist, err := s.FindByID(ctx, id)
	if err != nil || artist == nil {
		return nil, err
	}
	if len(updates) == 0 {
		return artist, nil
	}
	if err := s.db.WithContext(ctx).Model(artist).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating artist %d: %w", id, translate(err))
	}
	return s.FindByID(ctx, id)
}

// deleteArtistRows removes artists with their albums, the songs they own or
// that sit on their albums, and every link to either
func deleteArtistRows(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	albums := tx.Model(&domain.Album{}).Select("id").Where("artist_id IN ?", ids)
	var songIDs []uint
	err := tx.Model(&domain.Song{}).
		Where("artist_id IN ? OR album_id IN (?)", ids, albums).
		Pluck("id", &songIDs).Error
	if err != nil {
		return err
	}
	if err := deleteSongRows(tx, songIDs); err != nil { // Songs first, they reference albums
		return err
	}
	if err := tx.Where("artist_id IN ?", ids).Delete(&domain.Album{}).Error; err != nil {
		return err
	}
	if err := tx.Where("artist_id IN ?", ids).Delete(&domain.SongArtist{}).Error; err != nil { // Featured-artist links on other songs
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&domain.Artist{}).Error
}

// DeleteByID removes the artist together with its albums and songs in one
// transaction. It reports whether the artist existed.
func (s *ArtistService) DeleteByID(ctx context.Context, id uint) (bool, error) {
	var existed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Artist{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		existed = n > 0
		if !existed {
			return nil // Nothing to cascade
		}
		return deleteArtistRows(tx, []uint{id})
	})
	if err != nil {
		return false, fmt.Errorf("deleting artist %d: %w", id, err)
	}
	return existed, nil
}

// DeleteAll removes every artist. Every song and album has an owning artist,
// so the whole catalog goes with them.
func (s *ArtistService) DeleteAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		models := []any{&domain.SongArtist{}, &domain.PlaylistSong{}, &domain.Favorite{}, &domain.Song{}, &domain.Album{}, &domain.Artist{}}
		for _, model := range models {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting artists: %w", err)
	}
	return nil
}

// CountAll returns the number of artists
func (s *ArtistService) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Artist{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting artists: %w", err)
	}
	return n, nil
}

// FindSongsByArtistID returns the songs the artist contributed to, each with
// its contributing artists as {id, name}
func (s *ArtistService) FindSongsByArtistID(ctx context.Context, id uint) ([]domain.Song, error) {
	var songs []domain.Song
	err := s.db.WithContext(ctx).
		Joins("JOIN songartists ON songartists.song_id = songs.id").
		Where("songartists.artist_id = ?", id).
		Preload("Artists", artistColumns).
		Order("songs.id").
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("listing songs of artist %d: %w", id, err)
	}
	return songs, nil
}

// FindAlbumsByArtistID returns the albums owned by the artist
func (s *ArtistService) FindAlbumsByArtistID(ctx context.Context, id uint) ([]domain.Album, error) {
	var albums []domain.Album
	err := albumQuery(s.db.WithContext(ctx)).Where("albums.artist_id = ?", id).Order("albums.id").Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("listing albums of artist %d: %w", id, err)
	}
	return albums, nil
}

// Find matches artist names for search, capped at SearchLimit
func (s *ArtistService) Find(ctx context.Context, query string) ([]domain.Artist, error) {
	artists := []domain.Artist{}
	if strings.TrimSpace(query) == "" {
		return artists, nil
	}
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", containsPattern(query)).
		Order("id").
		Limit(SearchLimit).
		Find(&artists).Error
	if err != nil {
		return nil, fmt.Errorf("searching artists: %w", err)
	}
	return artists, nil
}
