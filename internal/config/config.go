package config

import (
	"fmt"
	"os"
	"time"
)

// Config contains runtime configuration values.
type Config struct {
	Environment string
	ServerPort  string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	JWTTTL      time.Duration
	CookieTTL   time.Duration
}

// Development reports whether the service runs in development mode, which
// controls logger choice and error detail exposure.
func (c Config) Development() bool { return c.Environment == "development" }

// Load reads configuration from environment variables with sane defaults.
// The signing secret and store connection string have none.
func Load() (Config, error) {
	cfg := Config{
		Environment: getEnv("APP_ENV", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MongoURI:    os.Getenv("MONGO_URI"),
		MongoDB:     getEnv("MONGO_DB", "accounts"),
		JWTSecret:   os.Getenv("JWT_SECRET_KEY"),
		JWTTTL:      getDuration("JWT_EXPIRATION", 24*time.Hour),
		CookieTTL:   getDuration("COOKIE_TTL", 24*time.Hour),
	}

	if cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
