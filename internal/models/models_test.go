package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/royaltysplit/internal/royalty"
)

func TestSummarize(t *testing.T) {
	full := []SplitEntry{{Name: "A", Percentage: 100}}

	tests := []struct {
		name       string
		data       SplitData
		wantStatus SongStatus
		wantPct    string
		wantSplits int
	}{
		{
			name:       "no splits",
			wantStatus: StatusUnclaimed,
			wantPct:    "0.0%",
		},
		{
			name:       "music only",
			data:       SplitData{Music: []SplitEntry{{Name: "A", Percentage: 60}, {Name: "B", Percentage: 40}}},
			wantStatus: StatusIntermediate,
			wantPct:    "33.3%",
			wantSplits: 2,
		},
		{
			name:       "two of three",
			data:       SplitData{Music: full, Instruments: full},
			wantStatus: StatusIntermediate,
			wantPct:    "66.7%",
			wantSplits: 2,
		},
		{
			name:       "all categories",
			data:       SplitData{Music: full, Lyrics: full, Instruments: full},
			wantStatus: StatusClaimed,
			wantPct:    "100.0%",
			wantSplits: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := tt.data.SplitSet()
			if err != nil {
				t.Fatalf("SplitSet() failed: %v", err)
			}
			got := Summarize(set)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			if pct := FormatPercentage(got.SplitPercentage); pct != tt.wantPct {
				t.Errorf("SplitPercentage = %s, want %s", pct, tt.wantPct)
			}
			if got.NumberOfSplits != tt.wantSplits {
				t.Errorf("NumberOfSplits = %d, want %d", got.NumberOfSplits, tt.wantSplits)
			}
		})
	}
}

func TestSplitDataRejectsInvalidCategory(t *testing.T) {
	data := SplitData{Lyrics: []SplitEntry{{Name: "A", Percentage: 50}, {Name: "B", Percentage: 40}}}
	_, err := data.SplitSet()

	var ce *royalty.CategoryError
	if !errors.As(err, &ce) {
		t.Fatalf("SplitSet() = %v, want *CategoryError", err)
	}
	if ce.Category != royalty.Lyrics {
		t.Errorf("Category = %q, want lyrics", ce.Category)
	}
	if !errors.Is(err, royalty.ErrSumMismatch) {
		t.Errorf("error does not wrap ErrSumMismatch: %v", err)
	}
}

func TestSplitDataJSONKeys(t *testing.T) {
	data := SplitData{Music: []SplitEntry{{Name: "A", Percentage: 100}}}
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"music", "lyrics", "instruments"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, b)
		}
	}
}

func TestConditionalRecordRestore(t *testing.T) {
	pre := royalty.NewLedger(royalty.Music)
	pre.Add(royalty.Contributor{Name: "Artist"}, 20)
	pre.Add(royalty.Contributor{Name: "Label"}, 80)
	post := royalty.NewLedger(royalty.Music)
	post.Add(royalty.Contributor{Name: "Artist"}, 50)
	post.Add(royalty.Contributor{Name: "Label"}, 50)

	cond, err := royalty.NewRecoupment(125050)
	if err != nil {
		t.Fatal(err)
	}
	cs, err := royalty.NewConditionalSplit(cond, pre, post)
	if err != nil {
		t.Fatal(err)
	}

	rec := ConditionalRecordFrom("song-1", cs)
	if rec.Threshold != "1250.50" {
		t.Errorf("Threshold = %q, want 1250.50", rec.Threshold)
	}
	if rec.Phase != "pre" || rec.ResolvedAt != 0 {
		t.Errorf("Phase = %q, ResolvedAt = %d", rec.Phase, rec.ResolvedAt)
	}

	restored, err := rec.Restore()
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.ID() != cs.ID() {
		t.Errorf("ID = %s, want %s", restored.ID(), cs.ID())
	}
	if restored.Condition() != royalty.Condition(cond) {
		t.Errorf("Condition = %v, want %v", restored.Condition(), cond)
	}

	rec.PostSplit[0].Percentage = 10
	if _, err := rec.Restore(); !errors.Is(err, royalty.ErrSumMismatch) {
		t.Errorf("Restore with broken post split = %v, want ErrSumMismatch", err)
	}
}

func TestConditionalRecordRestoreKeepsDeadline(t *testing.T) {
	pre := royalty.NewLedger(royalty.Lyrics)
	pre.Add(royalty.Contributor{Name: "Writer"}, 100)
	post := royalty.NewLedger(royalty.Lyrics)
	post.Add(royalty.Contributor{Name: "Writer"}, 50)
	post.Add(royalty.Contributor{Name: "Estate"}, 50)

	start := time.Date(2025, 3, 1, 9, 0, 0, 600_000_000, time.UTC)
	cond, err := royalty.ParseDeadline("30d", start)
	if err != nil {
		t.Fatal(err)
	}
	cs, err := royalty.NewConditionalSplit(cond, pre, post)
	if err != nil {
		t.Fatal(err)
	}

	restored, err := ConditionalRecordFrom("song-1", cs).Restore()
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	got, ok := restored.Condition().(royalty.Deadline)
	if !ok {
		t.Fatalf("Condition = %T, want Deadline", restored.Condition())
	}
	if !got.At.Equal(cond.At) {
		t.Errorf("restored deadline %v, live deadline %v", got.At, cond.At)
	}
}
