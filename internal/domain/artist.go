package domain

import (
	"strings" // Name normalization

	"gorm.io/gorm" // GORM hooks
)

// Artist Model
type Artist struct {
	ID        uint    `gorm:"primaryKey" json:"id"`                   // Primary key
	Name      string  `gorm:"size:255;not null" json:"name"`          // Display name
	NameKey   string  `gorm:"size:255;uniqueIndex;not null" json:"-"` // Lowercased name, unique
	Bio       *string `gorm:"type:text" json:"bio,omitempty"`         // Optional biography
	AvatarURL *string `json:"avatar_url,omitempty"`                   // Optional avatar path
	UserID    *uint   `gorm:"index" json:"user_id,omitempty"`         // Optional owning user
}

// ArtistKey returns the case-insensitive lookup key for an artist name
func ArtistKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// BeforeSave keeps NameKey in sync with Name
func (a *Artist) BeforeSave(tx *gorm.DB) error {
	a.NameKey = ArtistKey(a.Name)
	return nil
}
