package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// API key required on data endpoints (X-API-Key header).
	// Empty disables the endpoints rather than leaving them open.
	APIKey string

	// Database (snapshot cache)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Data sources
	PreferredSource  string // "sec_edgar", "yahoo_finance" or "alpha_vantage"
	SECUserAgent     string // SEC fair-access policy requires a contact UA
	AlphaVantageKey  string
	FetchTimeout     time.Duration
	SnapshotCacheTTL time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		APIKey: getEnv("API_KEY", ""),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finsight"),
		DBPassword: getEnv("DB_PASSWORD", "finsight"),
		DBName:     getEnv("DB_NAME", "finsight"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Data sources
		PreferredSource: getEnv("PREFERRED_SOURCE", "sec_edgar"),
		SECUserAgent:    getEnv("SEC_USER_AGENT", "FinSight/1.0 (contact@finsight.dev)"),
		AlphaVantageKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),
	}

	config.FetchTimeout = getDurationEnv("FETCH_TIMEOUT", 15*time.Second)
	config.SnapshotCacheTTL = getDurationEnv("SNAPSHOT_CACHE_TTL", time.Hour)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv parses a duration environment variable, accepting either a
// Go duration string ("30s") or a plain number of seconds.
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
	log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, value, defaultValue)
	return defaultValue
}
