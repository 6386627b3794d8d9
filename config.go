package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port        string
	DSN         string
	AutoMigrate bool
	JWTSecret   []byte
	TokenTTL    time.Duration
	UploadDir   string
	MaxFileSize int64
}

// loadConfig reads the environment, loading a local .env first if present.
// Development fallbacks exist for everything except the Postgres DSN.
func loadConfig() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	secret := envOr("JWT_SECRET", "dev-insecure-secret-change")
	cfg := Config{
		Port:        envOr("PORT", "3001"),
		DSN:         os.Getenv("DB_DSN"),
		AutoMigrate: envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:   []byte(secret),
		TokenTTL:    time.Duration(envInt("JWT_EXPIRES_HOURS", 168)) * time.Hour,
		UploadDir:   envOr("UPLOAD_DIR", "uploads"),
		MaxFileSize: int64(envInt("MAX_FILE_SIZE", 2097152)),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
