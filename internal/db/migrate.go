package db

import (
	"music_library/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Config is shared by every connection. Duplicate key errors come back as gorm.ErrDuplicatedKey.
func Config() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// Open connects to MySQL using the given DSN
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), Config())
}

// Migrate creates or updates every table the library needs
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Artist{},
		&domain.Album{},
		&domain.Song{},
		&domain.SongArtist{},
		&domain.Playlist{},
		&domain.PlaylistSong{},
		&domain.Favorite{},
	)
	if err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
