// Package config loads engine configuration from environment variables.
// A .env file is honored when present (local development); real environments
// set variables directly. Every optional key degrades gracefully: a missing
// LIFF id falls back to direct URLs, a missing flex flag to plain text
// messages, a missing database URL to cache-only conversation history.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Provider identifiers selectable via MODEL_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all environment-derived settings consumed by the engine.
type Config struct {
	// Model provider selection and credentials.
	ModelProvider   string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// DatabaseURL enables the persistent conversation store when set.
	DatabaseURL string

	// DealerAPIURL is the base URL of the business-data collaborator
	// (cars, appointments, identity linking).
	DealerAPIURL string

	// LINE channel behavior.
	LineUseFlex bool
	LIFFID      string

	// BaseURL prefixes generated deep links. Empty means relative paths.
	BaseURL string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, honoring a .env file if one
// exists in the working directory. It never fails: unset keys produce zero
// values and the engine applies per-feature fallbacks.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ModelProvider:   getEnv("MODEL_PROVIDER", ProviderOpenAI),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DealerAPIURL:    os.Getenv("DEALER_API_URL"),
		LineUseFlex:     getBool("LINE_USE_FLEX", false),
		LIFFID:          os.Getenv("LIFF_ID"),
		BaseURL:         os.Getenv("BASE_URL"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
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
