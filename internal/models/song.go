package models

import (
	"fmt"

	"github.com/mmynk/royaltysplit/internal/royalty"
)

// SongStatus is derived from how many categories are allocated.
type SongStatus string

const (
	// StatusUnclaimed means no category has been allocated.
	StatusUnclaimed SongStatus = "unclaimed"
	// StatusIntermediate means some but not all categories are allocated.
	StatusIntermediate SongStatus = "intermediate"
	// StatusClaimed means all three categories are allocated.
	StatusClaimed SongStatus = "claimed"
)

// Song is a catalog entry.
type Song struct {
	// ID is the unique identifier for the song (UUID format).
	ID string

	// ArtistID is the owning artist, taken from the caller's token subject.
	ArtistID string

	// Title is the song title.
	Title string

	// Splits is the song's current split set.
	Splits SplitData

	// CreatedAt is the Unix timestamp when the song was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last split commit.
	UpdatedAt int64
}

// Summary is the set of figures shown next to a song in a catalog listing.
type Summary struct {
	// SplitPercentage is the split set's summary percentage.
	SplitPercentage float64

	// NumberOfSplits counts contributor entries across all categories.
	NumberOfSplits int

	// Status is derived from the number of allocated categories.
	Status SongStatus
}

// Summarize computes the catalog figures from a split set.
func Summarize(set royalty.SplitSet) Summary {
	status := StatusIntermediate
	switch set.AllocatedCategories() {
	case 0:
		status = StatusUnclaimed
	case len(royalty.Categories):
		status = StatusClaimed
	}
	return Summary{
		SplitPercentage: set.SummaryPercentage(),
		NumberOfSplits:  set.NumberOfSplits(),
		Status:          status,
	}
}

// FormatPercentage renders a summary percentage with one decimal.
func FormatPercentage(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
