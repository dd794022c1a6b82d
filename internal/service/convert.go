package service

import (
	"log/slog"

	"github.com/mmynk/royaltysplit/internal/models"
	"github.com/mmynk/royaltysplit/internal/royalty"
	"github.com/mmynk/royaltysplit/pkg/api"
)

func contributorsFromEntries(entries []models.SplitEntry) []api.Contributor {
	out := make([]api.Contributor, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.Contributor{
			ID:             e.ContributorID,
			Name:           e.Name,
			Role:           e.Role,
			ProAffiliation: e.PROAffiliation,
			Publisher:      e.Publisher,
			Percentage:     e.Percentage,
		})
	}
	return out
}

func entriesFromContributors(contributors []api.Contributor) []models.SplitEntry {
	out := make([]models.SplitEntry, 0, len(contributors))
	for _, c := range contributors {
		out = append(out, models.SplitEntry{
			ContributorID:  c.ID,
			Name:           c.Name,
			Role:           c.Role,
			PROAffiliation: c.ProAffiliation,
			Publisher:      c.Publisher,
			Percentage:     c.Percentage,
		})
	}
	return out
}

func contributorsFromShares(shares []royalty.Share) []api.Contributor {
	out := make([]api.Contributor, 0, len(shares))
	for _, s := range shares {
		out = append(out, api.Contributor{
			ID:             string(s.Ref),
			Name:           s.Contributor.Name,
			Role:           s.Contributor.Role,
			ProAffiliation: s.Contributor.PROAffiliation,
			Publisher:      s.Contributor.Publisher,
			Percentage:     s.Percentage,
		})
	}
	return out
}

func contributorOf(c api.Contributor) royalty.Contributor {
	return royalty.Contributor{
		Name:           c.Name,
		Role:           c.Role,
		PROAffiliation: c.ProAffiliation,
		Publisher:      c.Publisher,
	}
}

func splitDataToAPI(d models.SplitData) api.SplitData {
	return api.SplitData{
		Music:       contributorsFromEntries(d.Music),
		Lyrics:      contributorsFromEntries(d.Lyrics),
		Instruments: contributorsFromEntries(d.Instruments),
	}
}

func splitDataFromAPI(d api.SplitData) models.SplitData {
	return models.SplitData{
		Music:       entriesFromContributors(d.Music),
		Lyrics:      entriesFromContributors(d.Lyrics),
		Instruments: entriesFromContributors(d.Instruments),
	}
}

// songToAPI renders a song with its derived catalog figures.
func songToAPI(song *models.Song) *api.Song {
	set, err := song.Splits.SplitSet()
	if err != nil {
		// stored splits are validated on write; report what we can
		slog.Warn("stored splits failed validation", "song_id", song.ID, "error", err)
	}
	summary := models.Summarize(set)
	return &api.Song{
		ID:              song.ID,
		ArtistID:        song.ArtistID,
		Title:           song.Title,
		Splits:          splitDataToAPI(song.Splits),
		SplitPercentage: models.FormatPercentage(summary.SplitPercentage),
		NumberOfSplits:  summary.NumberOfSplits,
		Status:          string(summary.Status),
		CreatedAt:       song.CreatedAt,
		UpdatedAt:       song.UpdatedAt,
	}
}

func conditionalToAPI(rec *models.ConditionalRecord) *api.ConditionalSplit {
	return &api.ConditionalSplit{
		ID:            rec.ID,
		SongID:        rec.SongID,
		Category:      rec.Category,
		ConditionType: rec.ConditionType,
		Threshold:     rec.Threshold,
		Phase:         rec.Phase,
		PreSplit:      contributorsFromEntries(rec.PreSplit),
		PostSplit:     contributorsFromEntries(rec.PostSplit),
		CreatedAt:     rec.CreatedAt,
		ResolvedAt:    rec.ResolvedAt,
	}
}
