package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"linkedin-assistant/internal/domain"
)

// SQLiteStore implements domain.ProfileStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and runs
// the schema migration. Parent directories are created as needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open profile db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate profile db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id          TEXT PRIMARY KEY,
			profile_url TEXT NOT NULL,
			profile     TEXT NOT NULL,
			created_at  TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save persists an extraction result and returns the stored record.
func (s *SQLiteStore) Save(_ context.Context, profileURL string, p *domain.Profile) (*domain.StoredProfile, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}

	now := time.Now().UTC()
	id := ulid.Make().String()

	_, err = s.db.Exec(
		"INSERT INTO profiles (id, profile_url, profile, created_at) VALUES (?, ?, ?, ?)",
		id, profileURL, string(data), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert: %v", domain.ErrProfileStore, err)
	}

	return &domain.StoredProfile{
		ID:         id,
		ProfileURL: profileURL,
		Profile:    *p,
		CreatedAt:  now,
	}, nil
}

// Latest returns the most recently stored profile.
func (s *SQLiteStore) Latest(_ context.Context) (*domain.StoredProfile, error) {
	row := s.db.QueryRow(
		"SELECT id, profile_url, profile, created_at FROM profiles ORDER BY created_at DESC LIMIT 1",
	)

	var sp domain.StoredProfile
	var profileStr, createdStr string
	if err := row.Scan(&sp.ID, &sp.ProfileURL, &profileStr, &createdStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("%w: query: %v", domain.ErrProfileStore, err)
	}
	if err := json.Unmarshal([]byte(profileStr), &sp.Profile); err != nil {
		return nil, fmt.Errorf("%w: unmarshal profile: %v", domain.ErrProfileStore, err)
	}
	sp.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return &sp, nil
}

var _ domain.ProfileStore = (*SQLiteStore)(nil)
