/*
Package config loads the service configuration from environment variables.
A .env file next to the binary is honored via godotenv autoload.
*/
package config

import (
	"fmt"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
)

const (
	// DefaultModel is the Gemini model used when GEMINI_MODEL is not set.
	DefaultModel = "gemini-2.0-flash"

	defaultPort        = 8080
	defaultMetricsPort = 9090
)

// Config holds everything the process needs to run. It is built once in
// main and passed by reference; nothing reads the environment after startup.
type Config struct {
	// GeminiAPIKey authenticates calls to the generative-text provider.
	// Required; startup fails without it.
	GeminiAPIKey string

	// GeminiModel is the model identifier sent with each upstream call.
	GeminiModel string

	// Port is the TCP port the API server listens on.
	Port int

	// MetricsPort is the TCP port the Prometheus exposition server listens on.
	MetricsPort int
}

// ErrMissingAPIKey is returned by Load when GEMINI_API_KEY is absent. Main
// prints operator instructions and exits; this is never a per-request error.
var ErrMissingAPIKey = fmt.Errorf("GEMINI_API_KEY environment variable is not set")

// Load reads and validates the environment. The only hard requirement is the
// Gemini API key; everything else falls back to a sensible default.
func Load() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &Config{
		GeminiAPIKey: apiKey,
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", DefaultModel),
		Port:         getEnvIntOrDefault("PORT", defaultPort),
		MetricsPort:  getEnvIntOrDefault("METRICS_PORT", defaultMetricsPort),
	}, nil
}

// MissingKeyHelp is the operator-facing message printed when startup aborts
// because no API key was found.
const MissingKeyHelp = `ERROR: GEMINI_API_KEY environment variable not set!

Set it with:
  export GEMINI_API_KEY='your-api-key-here'

Or create a .env file with:
  GEMINI_API_KEY=your-api-key-here

Get your API key at: https://aistudio.google.com/app/apikey`

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v == 0 {
		return defaultValue
	}
	return v
}
