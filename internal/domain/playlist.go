package domain

// Playlist Model
type Playlist struct {
	ID       uint    `gorm:"primaryKey" json:"id"`                    // Primary key
	Name     string  `gorm:"size:255;not null" json:"name"`           // Playlist name
	UserID   *uint   `gorm:"index" json:"user_id"`                    // Owner, null for system playlists
	IsPublic bool    `gorm:"not null;default:false" json:"is_public"` // Visible to everyone
	IsSystem bool    `gorm:"not null;default:false" json:"is_system"` // Curated, not owned by a user
	ImageURL *string `json:"image_url"`                               // Optional cover path
	Songs    []Song  `gorm:"many2many:playlistsongs;" json:"-"`       // Linked songs
}

// PlaylistSong is the join row between a playlist and a song
type PlaylistSong struct {
	PlaylistID uint `gorm:"primaryKey;autoIncrement:false"` // Linked playlist
	SongID     uint `gorm:"primaryKey;autoIncrement:false"` // Linked song
}

// TableName pins the join table name
func (PlaylistSong) TableName() string {
	return "playlistsongs"
}

// OwnedBy reports whether the playlist belongs to the given user
func (p *Playlist) OwnedBy(userID uint) bool {
	return p.UserID != nil && *p.UserID == userID
}
