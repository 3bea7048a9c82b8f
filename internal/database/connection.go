package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. DB_TYPE selects the
// driver: "postgres" (DATABASE_URL) or "sqlite" (SQLITE_PATH, the default).
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	if dbType == "postgres" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	} else {
		dbPath := os.Getenv("SQLITE_PATH")
		if dbPath == "" {
			dbPath = filepath.Join("data", "practice.db")
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
		db, err = sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if DB.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	_, err := DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS practice_profiles (
			id %s,
			client_id TEXT NOT NULL,
			phrase_id BIGINT NOT NULL,
			exercise_type TEXT NOT NULL,
			ease_factor REAL DEFAULT 2.5,
			interval_days INTEGER DEFAULT 0,
			consecutive_correct INTEGER DEFAULT 0,
			review_count INTEGER DEFAULT 0,
			lapse_count INTEGER DEFAULT 0,
			last_reviewed_at TIMESTAMP,
			due_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(client_id, phrase_id, exercise_type)
		)
	`, serial))
	if err != nil {
		return fmt.Errorf("failed to create practice_profiles table: %v", err)
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS practice_attempts (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			phrase_id BIGINT NOT NULL,
			exercise_type TEXT NOT NULL,
			prompt_text TEXT NOT NULL,
			expected_answer TEXT NOT NULL,
			user_answer TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL,
			score INTEGER NOT NULL,
			latency_ms INTEGER DEFAULT 0,
			hints_used INTEGER DEFAULT 0,
			grading_method TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create practice_attempts table: %v", err)
	}

	_, err = DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS words (
			id %s,
			lemma TEXT NOT NULL,
			pos TEXT NOT NULL,
			language TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(lemma, pos, language)
		)
	`, serial))
	if err != nil {
		return fmt.Errorf("failed to create words table: %v", err)
	}

	_, err = DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS word_forms (
			id %s,
			word_id BIGINT NOT NULL,
			form TEXT NOT NULL,
			morph TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (word_id) REFERENCES words(id),
			UNIQUE(word_id, form)
		)
	`, serial))
	if err != nil {
		return fmt.Errorf("failed to create word_forms table: %v", err)
	}

	_, err = DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS cefr_words (
			id %s,
			lemma TEXT NOT NULL,
			pos TEXT NOT NULL,
			language TEXT NOT NULL,
			level TEXT NOT NULL,
			UNIQUE(lemma, pos, language)
		)
	`, serial))
	if err != nil {
		return fmt.Errorf("failed to create cefr_words table: %v", err)
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS practice_stats (
			client_id TEXT NOT NULL,
			exercise_type TEXT NOT NULL,
			attempts INTEGER DEFAULT 0,
			correct INTEGER DEFAULT 0,
			avg_score REAL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (client_id, exercise_type)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create practice_stats table: %v", err)
	}

	return nil
}
