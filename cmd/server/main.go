package main

import (
	"context" // context package is needed for Redis operations

	"music_library/internal/api"     // HTTP handlers and routes
	"music_library/internal/config"  // Custom package for configuration
	"music_library/internal/db"      // Database connection and schema
	"music_library/internal/media"   // Upload storage and audio tags
	"music_library/internal/service" // Entity services

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database and bring the schema up to date
	conn, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Services
	durations := media.TaglibReader{}
	artists := service.NewArtistService(conn)
	albums := service.NewAlbumService(conn, durations)
	songs := service.NewSongService(conn, durations)
	playlists := service.NewPlaylistService(conn)
	users := service.NewUserService(conn)

	r := api.NewRouter(api.Deps{
		DB:          conn,
		Redis:       redisClient,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		PerMinute:   100,
		Artists:     artists,
		Albums:      albums,
		Songs:       songs,
		Playlists:   playlists,
		Users:       users,
		Auth:        service.NewAuthService(users, cfg.JWTSecret, cfg.JWTTTL, cfg.BcryptCost),
		Search:      service.NewSearchService(artists, albums, playlists, songs),
		Stats:       service.NewStatsService(songs, users, albums, artists),
		Store:       media.NewStore(cfg.UploadDir, "/public/uploads", cfg.MaxUploadMB),
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort)  // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
