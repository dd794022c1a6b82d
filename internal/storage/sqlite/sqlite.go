// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/royaltysplit/internal/models"
	"github.com/mmynk/royaltysplit/internal/royalty"
	"github.com/mmynk/royaltysplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas are per connection; a single connection keeps foreign keys on
	// for every statement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateSong persists a new song and its split entries.
func (s *SQLiteStore) CreateSong(ctx context.Context, song *models.Song) error {
	// Generate ID and timestamps if not set
	if song.ID == "" {
		song.ID = uuid.New().String()
	}
	if song.CreatedAt == 0 {
		song.CreatedAt = time.Now().Unix()
	}
	if song.UpdatedAt == 0 {
		song.UpdatedAt = song.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO songs (id, artist_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		song.ID, song.ArtistID, song.Title, song.CreatedAt, song.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	if err := insertSplitEntries(ctx, tx, song.ID, song.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertSplitEntries(ctx context.Context, db execer, songID string, splits models.SplitData) error {
	for _, c := range royalty.Categories {
		for pos, e := range splits.Entries(c) {
			if e.ContributorID == "" {
				e.ContributorID = uuid.New().String()
			}
			_, err := db.ExecContext(ctx,
				`INSERT INTO split_entries
				 (song_id, category, position, contributor_id, name, role, pro_affiliation, publisher, percentage)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				songID, string(c), pos, e.ContributorID, e.Name, e.Role, e.PROAffiliation, e.Publisher, e.Percentage,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s split entry: %w", c, err)
			}
		}
	}
	return nil
}

// GetSong retrieves a song by ID, including all split entries.
func (s *SQLiteStore) GetSong(ctx context.Context, songID string) (*models.Song, error) {
	song := &models.Song{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, artist_id, title, created_at, updated_at FROM songs WHERE id = ?",
		songID,
	).Scan(&song.ID, &song.ArtistID, &song.Title, &song.CreatedAt, &song.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("song %s: %w", songID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get song: %w", err)
	}

	if err := s.loadSplits(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, song *models.Song) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, contributor_id, name, role, pro_affiliation, publisher, percentage
		 FROM split_entries WHERE song_id = ? ORDER BY category, position`,
		song.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get split entries: %w", err)
	}
	defer rows.Close()

	song.Splits = models.SplitData{}
	for rows.Next() {
		var (
			category string
			e        models.SplitEntry
		)
		if err := rows.Scan(&category, &e.ContributorID, &e.Name, &e.Role, &e.PROAffiliation, &e.Publisher, &e.Percentage); err != nil {
			return fmt.Errorf("failed to scan split entry: %w", err)
		}
		c := royalty.Category(category)
		song.Splits.SetEntries(c, append(song.Splits.Entries(c), e))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate split entries: %w", err)
	}
	return nil
}

// ListSongs retrieves all songs owned by an artist, newest first.
func (s *SQLiteStore) ListSongs(ctx context.Context, artistID string) ([]*models.Song, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, artist_id, title, created_at, updated_at
		 FROM songs WHERE artist_id = ? ORDER BY created_at DESC, title`,
		artistID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}

	var songs []*models.Song
	for rows.Next() {
		song := &models.Song{}
		if err := rows.Scan(&song.ID, &song.ArtistID, &song.Title, &song.CreatedAt, &song.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}

	// The store holds one connection, so entries are loaded after the song
	// cursor is closed.
	for _, song := range songs {
		if err := s.loadSplits(ctx, song); err != nil {
			return nil, err
		}
	}

	return songs, nil
}

// DeleteSong removes a song by ID. Split entries and conditional splits are
// removed by cascade.
func (s *SQLiteStore) DeleteSong(ctx context.Context, songID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", songID)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("song %s: %w", songID, storage.ErrNotFound)
	}
	return nil
}

// ReplaceSplits swaps every split entry of a song in one transaction.
func (s *SQLiteStore) ReplaceSplits(ctx context.Context, songID string, splits models.SplitData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE songs SET updated_at = ? WHERE id = ?",
		time.Now().Unix(), songID,
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("song %s: %w", songID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM split_entries WHERE song_id = ?", songID); err != nil {
		return fmt.Errorf("failed to clear split entries: %w", err)
	}
	if err := insertSplitEntries(ctx, tx, songID, splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
