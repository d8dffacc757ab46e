package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, k := range []string{"APP_PORT", "JWT_TTL", "BCRYPT_COST", "UPLOAD_DIR", "MAX_UPLOAD_MB", "CORS_ORIGINS", "DB_HOST", "DB_PORT"} {
			t.Setenv(k, "")
		}
		cfg := LoadConfig()

		assert.Equal(t, "3000", cfg.AppPort)
		assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
		assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
		assert.Equal(t, "public/uploads", cfg.UploadDir)
		assert.Equal(t, int64(50), cfg.MaxUploadMB)
		assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("APP_PORT", "8080")
		t.Setenv("JWT_TTL", "1h")
		t.Setenv("BCRYPT_COST", "4")
		t.Setenv("IS_PROD", "true")
		t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
		cfg := LoadConfig()

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, time.Hour, cfg.JWTTTL)
		assert.Equal(t, 4, cfg.BcryptCost)
		assert.True(t, cfg.IsProd)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	})

	t.Run("DSN", func(t *testing.T) {
		cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "music"}
		assert.Equal(t, "u:p@tcp(h:3306)/music?parseTime=true&charset=utf8mb4", cfg.DSN())
	})
}
