package domain

import "time" // Timestamps

// Roles a user can hold
const (
	RoleUser  = "user"  // Regular listener
	RoleAdmin = "admin" // Catalog and account administrator
)

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	Username     string    `gorm:"size:100;not null" json:"username"`          // Display name
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"` // Unique login email
	PasswordHash string    `gorm:"not null" json:"-"`                          // Hashed password, never serialized
	AvatarURL    *string   `json:"avatar_url"`                                 // Optional avatar path
	Role         string    `gorm:"size:20;default:user;not null" json:"role"`  // Role: user or admin
	IsBlocked    bool      `gorm:"not null;default:false" json:"is_blocked"`   // Blocked accounts cannot log in
	CreatedAt    time.Time `json:"created_at"`                                 // Registration time
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Favorite is the join row between a user and a song they liked
type Favorite struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"` // Owning user
	SongID    uint      `gorm:"primaryKey;autoIncrement:false" json:"song_id"` // Liked song
	CreatedAt time.Time `json:"created_at"`                                    // When the favorite was added
}
