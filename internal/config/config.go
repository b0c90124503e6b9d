package config

import (
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config carries everything the process needs that is decided at startup:
// database coordinates, the token signing secret, and where uploaded media
// lives. It is built once in main and handed to each component; nothing
// reads the environment after this.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string
	TokenTTL  time.Duration

	// UploadDir is where media files are written; UploadPath is the public
	// route prefix they are served back under.
	UploadDir  string
	UploadPath string
}

// Load reads the configuration from the environment (a .env file is picked
// up automatically in development). JWT_SECRET is the only value with no
// usable default.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	cfg := &Config{
		Port:       envOr("PORT", "8080"),
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     envOr("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envOr("DB_NAME", "socialfeed"),
		DBSSLMode:  envOr("DB_SSLMODE", "disable"),
		JWTSecret:  secret,
		TokenTTL:   30 * 24 * time.Hour,
		UploadDir:  envOr("UPLOAD_DIR", "./uploads"),
		UploadPath: "/uploads",
	}

	return cfg, nil
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
