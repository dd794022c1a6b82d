package models

import (
	"fmt"

	"github.com/mmynk/royaltysplit/internal/royalty"
)

// SplitEntry is one contributor's share of one category.
type SplitEntry struct {
	// ContributorID is the contributor reference inside its category (UUID format).
	ContributorID string `json:"id,omitempty"`

	// Name is the display name of the contributor.
	Name string `json:"name"`

	// Role is free text such as songwriter, producer or engineer.
	Role string `json:"role,omitempty"`

	// PROAffiliation is the performing-rights organisation, if any.
	PROAffiliation string `json:"proAffiliation,omitempty"`

	// Publisher is optional.
	Publisher string `json:"publisher,omitempty"`

	// Percentage is an integer in [0,100].
	Percentage int `json:"percentage"`
}

// SplitData is the stored form of a split set. Each list is either empty or
// sums to exactly 100.
type SplitData struct {
	Music       []SplitEntry `json:"music"`
	Lyrics      []SplitEntry `json:"lyrics"`
	Instruments []SplitEntry `json:"instruments"`
}

// Entries returns the entry list of category c.
func (d SplitData) Entries(c royalty.Category) []SplitEntry {
	switch c {
	case royalty.Music:
		return d.Music
	case royalty.Lyrics:
		return d.Lyrics
	case royalty.Instrumental:
		return d.Instruments
	}
	return nil
}

// SetEntries replaces the entry list of category c.
func (d *SplitData) SetEntries(c royalty.Category, entries []SplitEntry) {
	switch c {
	case royalty.Music:
		d.Music = entries
	case royalty.Lyrics:
		d.Lyrics = entries
	case royalty.Instrumental:
		d.Instruments = entries
	}
}

// SplitDataFrom converts a validated split set to its stored form.
func SplitDataFrom(set royalty.SplitSet) SplitData {
	var d SplitData
	for _, c := range royalty.Categories {
		d.SetEntries(c, EntriesFrom(set.Category(c)))
	}
	return d
}

// SplitSet validates the stored entries and returns the split set.
func (d SplitData) SplitSet() (royalty.SplitSet, error) {
	var set royalty.SplitSet
	for _, c := range royalty.Categories {
		a, err := AllocationFrom(c, d.Entries(c))
		if err != nil {
			return royalty.SplitSet{}, &royalty.CategoryError{Category: c, Err: err}
		}
		set = set.With(a)
	}
	return set, nil
}

// EntriesFrom converts an allocation to stored entries.
func EntriesFrom(a royalty.Allocation) []SplitEntry {
	shares := a.Shares()
	entries := make([]SplitEntry, 0, len(shares))
	for _, s := range shares {
		entries = append(entries, SplitEntry{
			ContributorID:  string(s.Ref),
			Name:           s.Contributor.Name,
			Role:           s.Contributor.Role,
			PROAffiliation: s.Contributor.PROAffiliation,
			Publisher:      s.Contributor.Publisher,
			Percentage:     s.Percentage,
		})
	}
	return entries
}

// AllocationFrom validates stored entries as an allocation of category c.
func AllocationFrom(c royalty.Category, entries []SplitEntry) (royalty.Allocation, error) {
	shares := make([]royalty.Share, 0, len(entries))
	for _, e := range entries {
		shares = append(shares, royalty.Share{
			Ref: royalty.ContributorRef(e.ContributorID),
			Contributor: royalty.Contributor{
				Name:           e.Name,
				Role:           e.Role,
				PROAffiliation: e.PROAffiliation,
				Publisher:      e.Publisher,
			},
			Percentage: e.Percentage,
		})
	}
	a, err := royalty.NewAllocation(c, shares)
	if err != nil {
		return royalty.Allocation{}, fmt.Errorf("invalid %s entries: %w", c, err)
	}
	return a, nil
}
