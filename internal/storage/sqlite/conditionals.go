package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/royaltysplit/internal/models"
	"github.com/mmynk/royaltysplit/internal/storage"
)

const conditionalColumns = `id, song_id, category, condition_type, threshold, phase, created_at, resolved_at`

// CreateConditional persists a conditional split and both of its entry lists.
func (s *SQLiteStore) CreateConditional(ctx context.Context, rec *models.ConditionalRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}
	if rec.Phase == "" {
		rec.Phase = "pre"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conditional_splits (`+conditionalColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SongID, rec.Category, rec.ConditionType, rec.Threshold, rec.Phase, rec.CreatedAt, rec.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conditional split: %w", err)
	}

	sides := []struct {
		name    string
		entries []models.SplitEntry
	}{
		{"pre", rec.PreSplit},
		{"post", rec.PostSplit},
	}
	for _, side := range sides {
		for pos, e := range side.entries {
			if e.ContributorID == "" {
				e.ContributorID = uuid.New().String()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO conditional_entries
				 (conditional_id, side, position, contributor_id, name, role, pro_affiliation, publisher, percentage)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.ID, side.name, pos, e.ContributorID, e.Name, e.Role, e.PROAffiliation, e.Publisher, e.Percentage,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s entry: %w", side.name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListConditionals retrieves the conditional splits of a song, oldest first.
func (s *SQLiteStore) ListConditionals(ctx context.Context, songID string) ([]*models.ConditionalRecord, error) {
	return s.queryConditionals(ctx, "c.song_id = ?", songID)
}

// ListPendingConditionals retrieves every conditional split still in the pre phase.
func (s *SQLiteStore) ListPendingConditionals(ctx context.Context) ([]*models.ConditionalRecord, error) {
	return s.queryConditionals(ctx, "c.phase = 'pre'")
}

// ResolveConditional moves a conditional split to post. The update only
// matches rows still in pre, so a resolved split is never written twice.
func (s *SQLiteStore) ResolveConditional(ctx context.Context, id string, resolvedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE conditional_splits SET phase = 'post', resolved_at = ? WHERE id = ? AND phase = 'pre'",
		resolvedAt.Unix(), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to resolve conditional split: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check resolved rows: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM conditional_splits WHERE id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("conditional split %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check conditional split existence: %w", err)
	}
	return false, nil
}

// queryConditionals loads the conditional splits matching where, which
// refers to conditional_splits as c, along with their entries.
func (s *SQLiteStore) queryConditionals(ctx context.Context, where string, args ...any) ([]*models.ConditionalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.song_id, c.category, c.condition_type, c.threshold, c.phase, c.created_at, c.resolved_at
		 FROM conditional_splits c WHERE `+where+` ORDER BY c.created_at, c.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conditional splits: %w", err)
	}

	var recs []*models.ConditionalRecord
	byID := make(map[string]*models.ConditionalRecord)
	for rows.Next() {
		rec := &models.ConditionalRecord{}
		if err := rows.Scan(&rec.ID, &rec.SongID, &rec.Category, &rec.ConditionType, &rec.Threshold,
			&rec.Phase, &rec.CreatedAt, &rec.ResolvedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan conditional split: %w", err)
		}
		recs = append(recs, rec)
		byID[rec.ID] = rec
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conditional splits: %w", err)
	}
	if len(recs) == 0 {
		return recs, nil
	}

	entryRows, err := s.db.QueryContext(ctx,
		`SELECT e.conditional_id, e.side, e.contributor_id, e.name, e.role, e.pro_affiliation, e.publisher, e.percentage
		 FROM conditional_entries e
		 JOIN conditional_splits c ON c.id = e.conditional_id
		 WHERE `+where+`
		 ORDER BY e.conditional_id, e.side, e.position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get conditional entries: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var (
			conditionalID, side string
			e                   models.SplitEntry
		)
		if err := entryRows.Scan(&conditionalID, &side, &e.ContributorID, &e.Name, &e.Role,
			&e.PROAffiliation, &e.Publisher, &e.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan conditional entry: %w", err)
		}
		// A split created between the two queries has no record here.
		rec, ok := byID[conditionalID]
		if !ok {
			continue
		}
		if side == "post" {
			rec.PostSplit = append(rec.PostSplit, e)
		} else {
			rec.PreSplit = append(rec.PreSplit, e)
		}
	}
	if err := entryRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conditional entries: %w", err)
	}

	return recs, nil
}
