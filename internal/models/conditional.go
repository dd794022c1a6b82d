package models

import (
	"fmt"
	"time"

	"github.com/mmynk/royaltysplit/internal/royalty"
)

// ConditionalRecord is the stored form of a conditional split.
type ConditionalRecord struct {
	// ID is the unique identifier for the conditional split (UUID format).
	ID string

	// SongID is the song the conditional split is attached to.
	SongID string

	// Category is the category under condition.
	Category string

	// ConditionType is "recoupment" or "time".
	ConditionType string

	// Threshold is the canonical text of the threshold: a decimal amount such
	// as "750.00" for recoupment, an RFC 3339 UTC time for time conditions.
	Threshold string

	// Phase is "pre" or "post".
	Phase string

	// PreSplit and PostSplit each sum to exactly 100.
	PreSplit  []SplitEntry
	PostSplit []SplitEntry

	// CreatedAt is the Unix timestamp when the conditional split was created.
	CreatedAt int64

	// ResolvedAt is the Unix timestamp of the phase change, or 0 while pending.
	ResolvedAt int64
}

// ConditionalRecordFrom converts a conditional split to its stored form.
func ConditionalRecordFrom(songID string, cs *royalty.ConditionalSplit) *ConditionalRecord {
	snap := cs.Snapshot()
	rec := &ConditionalRecord{
		ID:            snap.ID,
		SongID:        songID,
		Category:      string(cs.Category()),
		ConditionType: string(snap.Condition.Type()),
		Threshold:     ThresholdText(snap.Condition),
		Phase:         string(snap.Phase),
		PreSplit:      EntriesFrom(snap.Pre),
		PostSplit:     EntriesFrom(snap.Post),
		CreatedAt:     snap.CreatedAt.Unix(),
	}
	if !snap.ResolvedAt.IsZero() {
		rec.ResolvedAt = snap.ResolvedAt.Unix()
	}
	return rec
}

// ThresholdText renders cond in the canonical stored form.
func ThresholdText(cond royalty.Condition) string {
	switch c := cond.(type) {
	case royalty.Recoupment:
		return c.Threshold.String()
	case royalty.Deadline:
		return c.At.UTC().Format(time.RFC3339)
	}
	return ""
}

// Restore validates the record and rebuilds the conditional split.
func (r *ConditionalRecord) Restore() (*royalty.ConditionalSplit, error) {
	category, err := royalty.ParseCategory(r.Category)
	if err != nil {
		return nil, fmt.Errorf("conditional %s: %w", r.ID, err)
	}
	condType, err := royalty.ParseConditionType(r.ConditionType)
	if err != nil {
		return nil, fmt.Errorf("conditional %s: %w", r.ID, err)
	}
	cond, err := royalty.ParseCondition(condType, r.Threshold, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("conditional %s: %w", r.ID, err)
	}
	pre, err := AllocationFrom(category, r.PreSplit)
	if err != nil {
		return nil, fmt.Errorf("conditional %s pre split: %w", r.ID, err)
	}
	post, err := AllocationFrom(category, r.PostSplit)
	if err != nil {
		return nil, fmt.Errorf("conditional %s post split: %w", r.ID, err)
	}

	snap := royalty.Snapshot{
		ID:        r.ID,
		Condition: cond,
		Pre:       pre,
		Post:      post,
		Phase:     royalty.Phase(r.Phase),
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
	}
	if r.ResolvedAt != 0 {
		snap.ResolvedAt = time.Unix(r.ResolvedAt, 0).UTC()
	}
	return royalty.Restore(snap)
}
