package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the engine reads from the environment
type Config struct {
	// HTTP listen address, e.g. ":8080"
	ListenAddr string
	// "postgres" or "sqlite"
	DBType string
	// Postgres DSN; ignored for sqlite
	DatabaseURL string
	// SQLite file path; ignored for postgres
	SQLitePath string
	// Redis address for the word-score store
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Base URL of the external phrase corpus
	PhraseSourceURL string
	// How often the aggregate statistics job runs
	StatsInterval time.Duration
	// Logger mode: "dev" or "prod"
	LogMode string
}

// Load reads .env (if present) and assembles the configuration
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		ListenAddr:      getenv("LISTEN_ADDR", ":8080"),
		DBType:          getenv("DB_TYPE", "sqlite"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      getenv("SQLITE_PATH", "data/practice.db"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getenvInt("REDIS_DB", 0),
		PhraseSourceURL: getenv("PHRASE_SOURCE_URL", "http://localhost:8090"),
		StatsInterval:   time.Duration(getenvInt("STATS_INTERVAL_SECONDS", 10)) * time.Second,
		LogMode:         getenv("LOG_MODE", "dev"),
	}
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getenvInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
