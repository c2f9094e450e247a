// Package config loads the server configuration from the environment.
// A .env file is honored when present.
package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/riftnotes/riftnotes/internal/llm"
)

// Config holds everything the server needs. Model settings are grouped
// in an explicit struct so call sites and tests can inject their own.
type Config struct {
	Addr       string
	DBPath     string
	CookieName string
	Secure     bool
	Model      llm.Config
}

// Load reads configuration from the environment, applying defaults for
// the local-development case. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:       envOr("RIFT_ADDR", ":8080"),
		DBPath:     envOr("RIFT_DB", "riftnotes.db"),
		CookieName: envOr("RIFT_SESSION_COOKIE", "rift_user"),
		Secure:     os.Getenv("RIFT_ENV") == "production",
		Model: llm.Config{
			Endpoint:         os.Getenv("AZURE_OPENAI_ENDPOINT"),
			APIKey:           os.Getenv("AZURE_OPENAI_API_KEY"),
			APIVersion:       envOr("AZURE_OPENAI_API_VERSION", "2024-02-15-preview"),
			ChatDeployment:   os.Getenv("AZURE_OPENAI_GPT4O_MINI"),
			EmbedDeployment:  os.Getenv("AZURE_OPENAI_EMBEDDING"),
			VisionDeployment: os.Getenv("AZURE_OPENAI_DEPLOYMENT_VISION"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
