package domain

import "time" // Timestamps

// Song Model
type Song struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                            // Primary key
	Title     string    `gorm:"size:255;not null" json:"title"`                  // Song title
	AudioURL  string    `gorm:"not null" json:"audio_url"`                       // Stored audio path
	ImageURL  *string   `json:"image_url"`                                       // Optional cover path
	Duration  *float64  `gorm:"type:decimal(10,2)" json:"duration"`              // Seconds, null when unknown
	AlbumID   *uint     `gorm:"index" json:"album_id"`                           // Optional album
	ArtistID  uint      `gorm:"index;not null" json:"artist_id"`                 // Primary artist
	Artist    *Artist   `gorm:"constraint:OnDelete:CASCADE" json:"-"`            // Primary artist row
	Artists   []Artist  `gorm:"many2many:songartists;" json:"artists,omitempty"` // Contributing artists
	CreatedAt time.Time `json:"created_at"`                                      // Upload time
}

// SongArtist is the join row between a song and a contributing artist
type SongArtist struct {
	SongID   uint `gorm:"primaryKey;autoIncrement:false"` // Linked song
	ArtistID uint `gorm:"primaryKey;autoIncrement:false"` // Linked artist
}

// TableName pins the join table name
func (SongArtist) TableName() string {
	return "songartists"
}

// SongSummary is the lightweight song shape returned alongside playlists
type SongSummary struct {
	ID    uint   `json:"id"`    // Song ID
	Title string `json:"title"` // Song title
}
