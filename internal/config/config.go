package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For token lifetime

	"github.com/joho/godotenv"   // For loading .env files
	"golang.org/x/crypto/bcrypt" // For the default hashing cost
)

// Config holds the application configuration
type Config struct {
	AppPort     string        // Application port
	DBUser      string        // Database user
	DBPassword  string        // Database password
	DBHost      string        // Database host
	DBPort      string        // Database port
	DBName      string        // Database name
	JWTSecret   string        // JWT secret key
	JWTTTL      time.Duration // Token lifetime
	BcryptCost  int           // Password hashing work factor
	RedisAddr   string        // Redis server address
	RedisPass   string        // Redis password
	RedisDB     int           // Redis database number
	IsProd      bool          // Is production environment
	UploadDir   string        // Root directory for uploaded files
	MaxUploadMB int64         // Per-file upload limit in megabytes
	CORSOrigins []string      // Allowed CORS origins
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:     getEnv("APP_PORT", "3000"),                      // Application port
		DBUser:      os.Getenv("DB_USER"),                            // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),                        // Database password
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),                  // Database host
		DBPort:      getEnv("DB_PORT", "3306"),                       // Database port
		DBName:      os.Getenv("DB_NAME"),                            // Database name
		JWTSecret:   os.Getenv("JWT_SECRET"),                         // JWT secret key
		JWTTTL:      getDuration("JWT_TTL", 7*24*time.Hour),          // Token lifetime
		BcryptCost:  getInt("BCRYPT_COST", bcrypt.DefaultCost),       // Hashing cost
		RedisAddr:   os.Getenv("REDIS_ADDR"),                         // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),                         // Redis password
		RedisDB:     redisDB,                                         // Redis database number
		IsProd:      os.Getenv("IS_PROD") == "true",                  // Is production environment
		UploadDir:   getEnv("UPLOAD_DIR", "public/uploads"),          // Upload root
		MaxUploadMB: int64(getInt("MAX_UPLOAD_MB", 50)),              // Upload size limit
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "*"), ","), // Allowed origins
	}
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
