package api

import (
	"time" // Limiter windows

	"music_library/internal/media"      // Upload store
	"music_library/internal/middleware" // Auth, limiting and logging middlewares
	"music_library/internal/service"    // Services

	"github.com/gin-contrib/cors"  // CORS handling
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps is everything the HTTP layer needs
type Deps struct {
	DB          *gorm.DB      // Role checks
	Redis       *redis.Client // Rate limits and token revocation
	JWTSecret   string        // Token signing key
	CORSOrigins []string      // Allowed origins, "*" for any
	PerMinute   int           // General per-IP request budget

	Artists   *service.ArtistService
	Albums    *service.AlbumService
	Songs     *service.SongService
	Playlists *service.PlaylistService
	Users     *service.UserService
	Auth      *service.AuthService
	Search    *service.SearchService
	Stats     *service.StatsService
	Store     *media.Store
}

// corsConfig allows the configured origins with bearer token headers
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewRouter builds the gin engine with every route of the API
func NewRouter(d Deps) *gin.Engine {
	useRequestFieldNames()

	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), cors.New(corsConfig(d.CORSOrigins)))
	r.Static(d.Store.URLPrefix, d.Store.Root) // Uploaded covers, avatars and audio

	perMinute := d.PerMinute
	if perMinute <= 0 {
		perMinute = 100
	}
	jwt := middleware.JWTAuthMiddleware(d.JWTSecret, d.Redis)
	optionalAuth := middleware.OptionalAuthMiddleware(d.JWTSecret, d.Redis)
	adminOnly := middleware.AdminOnlyMiddleware(d.DB)
	selfOrAdmin := middleware.SelfOrAdminMiddleware(d.DB)
	authLimit := middleware.RedisRateLimit(d.Redis, "auth", 10, 5*time.Minute, "Too many authentication attempts, please try again later")
	favoriteLimit := middleware.RedisRateLimit(d.Redis, "favorites", 10, time.Minute, "Too many favorite changes, please slow down")
	userUpdateLimit := middleware.RedisRateLimit(d.Redis, "user-update", 5, 5*time.Minute, "Too many profile updates, please try again later")

	api := r.Group("/api")
	api.Use(middleware.NewIPLimiter(perMinute).Middleware())

	// Auth routes
	auth := api.Group("/auth", authLimit)
	auth.POST("/register", RegisterHandler(d.Auth, d.Store)) // Registration endpoint
	auth.POST("/login", LoginHandler(d.Auth))                // Login endpoint

	api.GET("/search", SearchHandler(d.Search)) // Search every category

	// Artist routes
	artists := api.Group("/artists")
	artists.GET("", ListArtistsHandler(d.Artists))
	artists.GET("/:id", GetArtistHandler(d.Artists))
	artists.GET("/:id/songs", ArtistSongsHandler(d.Artists))
	artists.GET("/:id/albums", ArtistAlbumsHandler(d.Artists))
	adminArtists := artists.Group("", jwt, adminOnly)
	adminArtists.POST("", CreateArtistHandler(d.Artists, d.Store))
	adminArtists.PUT("/:id", UpdateArtistHandler(d.Artists, d.Store))
	adminArtists.DELETE("/:id", DeleteArtistHandler(d.Artists))
	adminArtists.DELETE("", DeleteAllArtistsHandler(d.Artists))

	// Album routes
	albums := api.Group("/albums")
	albums.GET("", ListAlbumsHandler(d.Albums))
	albums.GET("/:id", GetAlbumHandler(d.Albums))
	albums.GET("/:id/songs", AlbumSongsHandler(d.Albums))
	adminAlbums := albums.Group("", jwt, adminOnly)
	adminAlbums.POST("", CreateAlbumHandler(d.Albums, d.Store))
	adminAlbums.PUT("/:id", UpdateAlbumHandler(d.Albums, d.Store))
	adminAlbums.DELETE("/:id", DeleteAlbumHandler(d.Albums))

	// Song routes
	songs := api.Group("/songs")
	songs.GET("", ListSongsHandler(d.Songs))
	songs.GET("/:id", GetSongHandler(d.Songs))
	adminSongs := songs.Group("", jwt, adminOnly)
	adminSongs.POST("", AddSongHandler(d.Songs, d.Store))
	adminSongs.PUT("/:id", UpdateSongHandler(d.Songs, d.Store))
	adminSongs.DELETE("/:id", DeleteSongHandler(d.Songs))
	adminSongs.DELETE("", DeleteAllSongsHandler(d.Songs))

	// Playlist routes, visibility depends on the caller
	playlists := api.Group("/playlists")
	playlists.GET("", optionalAuth, ListPlaylistsHandler(d.Playlists, d.Users))
	playlists.GET("/:id", optionalAuth, GetPlaylistHandler(d.Playlists, d.Users))
	playlists.POST("", jwt, CreatePlaylistHandler(d.Playlists, d.Users, d.Store))
	playlists.PUT("/:id", jwt, UpdatePlaylistHandler(d.Playlists, d.Users, d.Store))
	playlists.DELETE("/:id", jwt, DeletePlaylistHandler(d.Playlists, d.Users))
	playlists.DELETE("", jwt, adminOnly, DeleteAllPlaylistsHandler(d.Playlists))

	// User routes
	users := api.Group("/users", jwt)
	users.GET("", adminOnly, ListUsersHandler(d.Users))
	users.GET("/:id", GetUserHandler(d.Users))
	users.PUT("/:id", userUpdateLimit, selfOrAdmin, UpdateUserHandler(d.Users, d.Auth, d.Store))
	users.DELETE("/:id", selfOrAdmin, DeleteUserHandler(d.Users))
	users.POST("/:id/favorites", selfOrAdmin, AddFavoriteHandler(d.Users))
	users.GET("/:id/favorites", selfOrAdmin, ListFavoritesHandler(d.Users))
	users.DELETE("/:id/favorites", favoriteLimit, selfOrAdmin, RemoveFavoriteHandler(d.Users))

	// Admin routes (protected, admin only)
	admin := api.Group("/admin", jwt, adminOnly)
	admin.GET("", StatsHandler(d.Stats))
	admin.DELETE("", DeleteAllUsersHandler(d.Users))
	admin.PATCH("/users/:id/block", BlockUserHandler(d.Users, d.Redis, d.Auth.TokenTTL()))
	admin.PATCH("/users/:id/unblock", UnblockUserHandler(d.Users))

	return r
}
