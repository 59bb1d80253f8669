// Package config loads service configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Addr string

	GroqAPIKey      string
	GroqModel       string
	GroqVisionModel string

	PipelineTimeout time.Duration
	SourceTimeout   time.Duration

	SearchMaxResults  int
	SearchConcurrency int64
	SearchRPS         float64
	SearchJitter      float64

	ProxyFile          string
	FingerprintProfile string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Addr: getEnv("ADDR", ":8000"),

		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqVisionModel: getEnv("GROQ_VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),

		PipelineTimeout: time.Duration(getEnvInt("PIPELINE_TIMEOUT_SECONDS", 120)) * time.Second,
		SourceTimeout:   time.Duration(getEnvInt("SOURCE_TIMEOUT_SECONDS", 60)) * time.Second,

		SearchMaxResults:  getEnvInt("SEARCH_MAX_RESULTS", 5),
		SearchConcurrency: int64(getEnvInt("SEARCH_CONCURRENCY", 8)),
		SearchRPS:         getEnvFloat("SEARCH_RPS", 2),
		SearchJitter:      getEnvFloat("SEARCH_JITTER", 0.3),

		ProxyFile:          getEnv("PROXY_FILE", ""),
		FingerprintProfile: getEnv("FINGERPRINT_PROFILE", "chrome"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
