// Package config loads application configuration from the environment.
// A .env file in the working directory is honored when present, matching
// how the dashboard this service replaces was configured.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Strings for identifiers
// and secrets, durations for TTLs. Database and port values are required;
// everything else degrades to a sensible default.
type Config struct {
	Env        string // application environment (e.g. "dev", "prod")
	Port       string // HTTP port to listen on
	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host address
	DBPort     string // database port number
	DBName     string // database name
	BusinessTZ string // IANA zone used for cohort/rollup week bucketing
	// Translation capability; leave TranslateURL empty to disable.
	TranslateURL    string
	TranslateAPIKey string
	TranslateTarget string        // target language for message translation
	TranslateTTL    time.Duration // lifetime of cached translations
}

// Load reads configuration from the environment. Required variables are
// enforced by must(); missing values exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		BusinessTZ:      envStr("BUSINESS_TIMEZONE", "UTC"),
		TranslateURL:    os.Getenv("TRANSLATE_URL"),
		TranslateAPIKey: os.Getenv("TRANSLATE_API_KEY"),
		TranslateTarget: envStr("TRANSLATE_TARGET", "en"),
		TranslateTTL:    envDur("TRANSLATE_CACHE_TTL", 24*time.Hour),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
