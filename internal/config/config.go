package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
// It is built once at startup and injected into the stores and the token
// service; nothing reads the environment after Load returns.
type Config struct {
	Port           string
	PostgresDSN    string
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	AllowedOrigins []string
}

func Load() *Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return &Config{
		Port:           getenv("PORT", "8080"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "estate_market"),
		JWTSecret:      getenv("JWT_SECRET", ""),
		AllowedOrigins: splitOrigins(getenv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
