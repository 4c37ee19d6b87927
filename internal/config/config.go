// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port      string
	AppEnv    string
	JWTSecret string // empty disables the upload guard

	// Object storage (any S3-compatible provider)
	StorageEndpoint     string
	StorageRegion       string
	StorageAccessKey    string
	StorageSecretKey    string
	StorageBucket       string
	StorageUseSSL       bool
	StoragePublicBase   string // browser-accessible base URL, e.g. "https://cdn.example.com"
	StorageEnsureBucket bool

	// WebP encoding
	WebPQuality int
	WebPMethod  int

	StoreTimeout   time.Duration
	MaxUploadBytes int64
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	return &Config{
		Port:      getEnv("PORT", "5000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		StorageEndpoint:     getEnv("STORAGE_ENDPOINT", getEnv("S3_ENDPOINT", "localhost:9000")),
		StorageRegion:       getEnv("STORAGE_REGION", getEnv("S3_REGION", "ru-1")),
		StorageAccessKey:    getEnv("STORAGE_ACCESS_KEY", getEnv("S3_ACCESS_KEY", "minioadmin")),
		StorageSecretKey:    getEnv("STORAGE_SECRET_KEY", getEnv("S3_SECRET_KEY", "minioadmin")),
		StorageBucket:       getEnv("STORAGE_BUCKET", getEnv("S3_BUCKET", "images")),
		StorageUseSSL:       getEnvBool("STORAGE_USE_SSL", false),
		StoragePublicBase:   getEnv("STORAGE_PUBLIC_BASE", "http://localhost:9000/images"),
		StorageEnsureBucket: getEnvBool("STORAGE_ENSURE_BUCKET", true),

		WebPQuality: getEnvInt("WEBP_QUALITY", 85),
		WebPMethod:  getEnvInt("WEBP_METHOD", 6),

		StoreTimeout:   getEnvDuration("STORE_TIMEOUT", 10*time.Second),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AuthEnabled reports whether upload routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: invalid bool %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid int %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("config: invalid duration %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
