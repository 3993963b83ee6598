package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// Store is the local price/rate cache, backed by a SQLite file. Every
// operation opens and closes its own connection; nothing is held between
// calls. At this data scale (a few hundred rows per run) the per-call
// overhead is irrelevant, and it keeps the file safe to share with other
// readers between runs.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	return db, nil
}

// Init creates both cache tables if they do not exist. Safe to call at
// every process start.
func (s *Store) Init() error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS crypto_prices (
			coin_id TEXT NOT NULL,
			date TEXT NOT NULL,
			price REAL,
			PRIMARY KEY (coin_id, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("create crypto_prices: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS fiat_rates (
			code TEXT NOT NULL,
			date TEXT NOT NULL,
			close REAL,
			PRIMARY KEY (code, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("create fiat_rates: %w", err)
	}

	return nil
}

const dayFormat = "2006-01-02"

// nullable converts an optional float into a driver value, preserving
// missing-vs-zero.
func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
