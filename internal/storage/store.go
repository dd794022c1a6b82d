// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/royaltysplit/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

// Store defines the catalog and conditional-split storage operations.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	// CreateSong persists a new song. ID and timestamps are populated by the
	// store when empty.
	CreateSong(ctx context.Context, song *models.Song) error

	// GetSong retrieves a song with its split entries.
	GetSong(ctx context.Context, songID string) (*models.Song, error)

	// ListSongs returns the songs owned by artistID, newest first.
	ListSongs(ctx context.Context, artistID string) ([]*models.Song, error)

	// DeleteSong removes a song together with its splits and conditional splits.
	DeleteSong(ctx context.Context, songID string) error

	// ReplaceSplits swaps the song's split entries for splits in one
	// transaction.
	ReplaceSplits(ctx context.Context, songID string, splits models.SplitData) error

	// CreateConditional persists a conditional split.
	CreateConditional(ctx context.Context, rec *models.ConditionalRecord) error

	// ListConditionals returns the conditional splits of a song, oldest first.
	ListConditionals(ctx context.Context, songID string) ([]*models.ConditionalRecord, error)

	// ListPendingConditionals returns every conditional split still in the
	// pre phase.
	ListPendingConditionals(ctx context.Context) ([]*models.ConditionalRecord, error)

	// ResolveConditional moves a conditional split to the post phase. It
	// reports false when the split was already resolved; the phase is never
	// written back to pre.
	ResolveConditional(ctx context.Context, id string, resolvedAt time.Time) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
