package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port          string
	Env           string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string

	// Base URL of the external asset service used to clean up issue
	// images after deletion. Empty disables remote cleanup.
	AssetServiceURL string

	// Maximum number of issues a single user may create per 24h window.
	IssueDailyLimit int

	CORSOrigins []string
}

// Load reads configuration from the environment. Call godotenv.Load
// beforehand if a .env file should be honored.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("GO_ENV", "development"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getEnv("MONGODB_DB", "civicreport"),
		RedisAddr:       getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AssetServiceURL: os.Getenv("ASSET_SERVICE_URL"),
		IssueDailyLimit: getEnvInt("ISSUE_DAILY_LIMIT", 10),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	return cfg, nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
