package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName     = "balla"
	EnvFileName = "config.env"
)

// LoadEnvFile loads environment variables from the config file in the user's
// config directory, then from .env in the working directory. Errors are
// ignored since the files may not exist. Variables already set win.
func LoadEnvFile() {
	if configBase, err := os.UserConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(configBase, AppName, EnvFileName))
	}
	_ = godotenv.Load()
}

// DefaultAnalyzePath is appended to SUPABASE_URL when BALLA_ANALYZE_URL is
// not set.
const DefaultAnalyzePath = "/functions/v1/analyze-item"

type Config struct {
	// Analysis endpoint
	AnalyzeURL     string
	AnonKey        string
	ExtendedFlow   bool
	RequestTimeout time.Duration

	// Local storage
	DBPath string

	// Gateway
	GeminiAPIKey string
	GeminiModel  string
	Port         string
	Environment  string
}

func Load() (*Config, error) {
	cfg := &Config{
		AnalyzeURL:     getEnv("BALLA_ANALYZE_URL", ""),
		AnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
		ExtendedFlow:   getBoolEnv("BALLA_EXTENDED_FLOW", true),
		RequestTimeout: getDurationEnv("BALLA_REQUEST_TIMEOUT", 90*time.Second),

		DBPath: getEnv("BALLA_DB_PATH", "balla.db"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", ""),
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
	}

	if cfg.AnalyzeURL == "" {
		if base := getEnv("SUPABASE_URL", ""); base != "" {
			cfg.AnalyzeURL = strings.TrimSuffix(base, "/") + DefaultAnalyzePath
		}
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("invalid configuration: BALLA_REQUEST_TIMEOUT must be positive")
	}
	return cfg, nil
}

// ValidateClient checks the settings needed to call the analysis endpoint.
func (c *Config) ValidateClient() error {
	if c.AnalyzeURL == "" {
		return fmt.Errorf("BALLA_ANALYZE_URL or SUPABASE_URL is required")
	}
	return nil
}

// ValidateGateway checks the settings needed to serve the endpoint.
func (c *Config) ValidateGateway() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv accepts Go durations ("90s") or plain seconds ("90").
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
