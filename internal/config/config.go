package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings. It is loaded once at startup and passed
// to components at construction; nothing reads the environment afterwards, so
// tests can build a Config by hand with fake secrets.
type Config struct {
	GeminiAPIKey     string
	EncryptionSecret string
	DatabaseURL      string
	HTTPPort         string
	UploadDir        string
	LogLevel         string
}

func Load() (*Config, error) {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EncryptionSecret: getEnv("ENCRYPTION_SECRET_KEY", ""),
		DatabaseURL:      getEnv("DATABASE_URL", "medai.db"),
		HTTPPort:         getEnv("HTTP_PORT", "5000"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	if cfg.EncryptionSecret == "" {
		return nil, fmt.Errorf("ENCRYPTION_SECRET_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
