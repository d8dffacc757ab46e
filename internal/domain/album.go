package domain

import (
	"strings" // Title normalization
	"time"    // Release dates

	"gorm.io/gorm" // GORM hooks
)

// Album Model
type Album struct {
	ID          uint       `gorm:"primaryKey" json:"id"`                                          // Primary key
	Title       string     `gorm:"size:255;not null" json:"title"`                                // Album title
	TitleKey    string     `gorm:"size:255;not null;uniqueIndex:idx_album_title_artist" json:"-"` // Lowercased title, unique per artist
	ReleaseDate *time.Time `json:"release_date"`                                                  // Release date
	CoverURL    *string    `json:"cover_url"`                                                     // Optional cover path
	ArtistID    uint       `gorm:"not null;uniqueIndex:idx_album_title_artist" json:"artist_id"`  // Owning artist
	ArtistName  string     `gorm:"->;-:migration" json:"artist_name,omitempty"`                   // Filled by joined reads
	Artist      *Artist    `gorm:"constraint:OnDelete:CASCADE" json:"-"`                          // Owning artist row
}

// AlbumKey returns the case-insensitive lookup key for an album title
func AlbumKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// BeforeSave keeps TitleKey in sync with Title
func (a *Album) BeforeSave(tx *gorm.DB) error {
	a.TitleKey = AlbumKey(a.Title)
	return nil
}
