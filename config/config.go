// Package config manages application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret is used when SESSION_SECRET is not set. It is only
// acceptable for local development.
const DefaultSessionSecret = "dev-secret-key-change-in-production"

// Config holds all application configuration, loaded once at process start.
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string
	// SessionSecret signs the session cookie.
	SessionSecret string

	// YouTubeAPIKey authenticates against the YouTube Data API. When empty the
	// tracker degrades to simulated statistics and comment analysis is
	// unavailable.
	YouTubeAPIKey string
	// GeminiAPIKey authenticates against the generative-language API. Required.
	GeminiAPIKey string
	// GeminiModel is the generative model name.
	GeminiModel string

	// EmotionAPIURL is the endpoint of the emotion-classification model.
	EmotionAPIURL string
	// EmotionAPIToken is the bearer token for the classification endpoint.
	EmotionAPIToken string

	// DatabasePath is the SQLite database file.
	DatabasePath string
	// DataDir holds transient tracker record files.
	DataDir string
	// PlotDir holds generated chart images, served under the static root.
	PlotDir string
	// StaticDir is the root of statically served assets.
	StaticDir string

	// RedisAddr enables the sentiment-stats cache when set.
	RedisAddr string

	// Timezone labels chart time axes.
	Timezone string
}

// Load reads configuration from a .env file (if present) and the environment,
// applies defaults, creates the working directories, and validates the result.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:      getenv("LISTEN_ADDR", ":5005"),
		SessionSecret:   getenv("SESSION_SECRET", DefaultSessionSecret),
		YouTubeAPIKey:   os.Getenv("YOUTUBE_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		EmotionAPIURL:   os.Getenv("EMOTION_API_URL"),
		EmotionAPIToken: os.Getenv("EMOTION_API_TOKEN"),
		DatabasePath:    getenv("DATABASE_PATH", filepath.Join("instance", "tubepulse.db")),
		DataDir:         getenv("TRACKER_DATA_DIR", filepath.Join("instance", "tracker_data")),
		PlotDir:         getenv("TRACKER_PLOT_DIR", filepath.Join("static", "images", "tracker")),
		StaticDir:       getenv("STATIC_DIR", "static"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		Timezone:        getenv("TRACKER_TIMEZONE", "Asia/Kolkata"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{filepath.Dir(cfg.DatabasePath), cfg.DataDir, cfg.PlotDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// Validate checks the values that make the process viable at all. A missing
// YouTube key is deliberately not an error: the tracker falls back to
// simulated statistics without it.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config: GEMINI_API_KEY is required")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
