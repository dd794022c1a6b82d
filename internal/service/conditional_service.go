package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/internal/engine"
	"github.com/mmynk/royaltysplit/internal/models"
	"github.com/mmynk/royaltysplit/internal/royalty"
	"github.com/mmynk/royaltysplit/internal/storage"
	"github.com/mmynk/royaltysplit/pkg/api"
	"github.com/mmynk/royaltysplit/pkg/api/apiconnect"
)

var _ apiconnect.ConditionalServiceHandler = (*ConditionalService)(nil)

// ConditionalService implements the Connect ConditionalService: direct
// creation of conditional splits, revenue reports from the revenue-tracking
// side, and the effective split consulted for payouts.
type ConditionalService struct {
	store   storage.Store
	tracker *engine.Tracker
	now     func() time.Time
}

// NewConditionalService creates a new ConditionalService.
func NewConditionalService(store storage.Store, tracker *engine.Tracker) *ConditionalService {
	return &ConditionalService{store: store, tracker: tracker, now: time.Now}
}

// ledgerFrom loads contributors into a ledger for one side of a conditional
// split. The sum is checked later by royalty.NewConditionalSplit.
func ledgerFrom(c royalty.Category, side royalty.Side, contributors []api.Contributor) (*royalty.Ledger, error) {
	l := royalty.NewLedger(c)
	for _, contrib := range contributors {
		if _, err := l.Add(contributorOf(contrib), contrib.Percentage); err != nil {
			return nil, &royalty.CategoryError{Category: c, Side: side, Err: err}
		}
	}
	return l, nil
}

// createConditional persists cs and hands it to the tracker.
func createConditional(ctx context.Context, store storage.Store, tracker *engine.Tracker, songID string, cs *royalty.ConditionalSplit) (*models.ConditionalRecord, error) {
	rec := models.ConditionalRecordFrom(songID, cs)
	if err := store.CreateConditional(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save conditional split: %w", err)
	}
	tracker.Track(songID, cs)
	slog.Info("Conditional split created",
		"conditional_id", rec.ID,
		"song_id", songID,
		"category", rec.Category,
		"condition_type", rec.ConditionType,
		"threshold", rec.Threshold,
	)
	return rec, nil
}

// CreateConditionalSplit validates and stores a conditional split in one call.
func (s *ConditionalService) CreateConditionalSplit(ctx context.Context, req *connect.Request[api.CreateConditionalSplitRequest]) (*connect.Response[api.CreateConditionalSplitResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	song, err := ownedSong(ctx, s.store, artistID, req.Msg.SongID)
	if err != nil {
		return nil, toConnectError(err)
	}

	category, err := royalty.ParseCategory(req.Msg.Category)
	if err != nil {
		return nil, invalidArgument(err)
	}
	condType, err := royalty.ParseConditionType(req.Msg.ConditionType)
	if err != nil {
		return nil, invalidArgument(err)
	}
	cond, err := royalty.ParseCondition(condType, req.Msg.Threshold, s.now())
	if err != nil {
		return nil, toConnectError(err)
	}
	pre, err := ledgerFrom(category, royalty.SidePre, req.Msg.PreSplit)
	if err != nil {
		return nil, toConnectError(err)
	}
	post, err := ledgerFrom(category, royalty.SidePost, req.Msg.PostSplit)
	if err != nil {
		return nil, toConnectError(err)
	}
	cs, err := royalty.NewConditionalSplit(cond, pre, post)
	if err != nil {
		return nil, toConnectError(err)
	}

	rec, err := createConditional(ctx, s.store, s.tracker, song.ID, cs)
	if err != nil {
		slog.Error("CreateConditionalSplit failed", "song_id", song.ID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CreateConditionalSplitResponse{Conditional: conditionalToAPI(rec)}), nil
}

// ListConditionalSplits returns the conditional splits of a song, oldest first.
func (s *ConditionalService) ListConditionalSplits(ctx context.Context, req *connect.Request[api.ListConditionalSplitsRequest]) (*connect.Response[api.ListConditionalSplitsResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	song, err := ownedSong(ctx, s.store, artistID, req.Msg.SongID)
	if err != nil {
		return nil, toConnectError(err)
	}
	recs, err := s.store.ListConditionals(ctx, song.ID)
	if err != nil {
		slog.Error("ListConditionalSplits failed", "song_id", song.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.ConditionalSplit, 0, len(recs))
	for _, rec := range recs {
		out = append(out, conditionalToAPI(rec))
	}
	return connect.NewResponse(&api.ListConditionalSplitsResponse{Conditionals: out}), nil
}

// ReportRevenue feeds cumulative revenue totals to the tracker and returns
// the conditional splits that crossed their threshold.
func (s *ConditionalService) ReportRevenue(ctx context.Context, req *connect.Request[api.ReportRevenueRequest]) (*connect.Response[api.ReportRevenueResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Msg.Reports) == 0 {
		return nil, invalidArgument(errors.New("at least one revenue report is required"))
	}

	owned := make(map[string]bool)
	reports := make([]engine.RevenueReport, 0, len(req.Msg.Reports))
	for _, r := range req.Msg.Reports {
		if !owned[r.SongID] {
			if _, err := ownedSong(ctx, s.store, artistID, r.SongID); err != nil {
				return nil, toConnectError(err)
			}
			owned[r.SongID] = true
		}
		total, err := royalty.ParseAmount(r.Amount)
		if err != nil {
			return nil, toConnectError(err)
		}
		reports = append(reports, engine.RevenueReport{SongID: r.SongID, Total: total})
	}

	resolved, err := s.tracker.ObserveRevenueBatch(ctx, reports)
	if err != nil {
		// unsaved resolutions stay tracked and are retried on the next tick
		slog.Error("ReportRevenue failed", "reports", len(reports), "resolved", len(resolved), "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Resolution, 0, len(resolved))
	for _, r := range resolved {
		out = append(out, &api.Resolution{
			ConditionalID: r.ConditionalID,
			SongID:        r.SongID,
			ConditionType: string(r.ConditionType),
			ResolvedAt:    r.ResolvedAt.Unix(),
		})
	}
	return connect.NewResponse(&api.ReportRevenueResponse{Resolved: out}), nil
}

// GetActiveSplit returns the split set that applies right now: the song's
// splits with every conditional split's active allocation laid over its
// category. Conditionals are applied oldest first, so the newest one of a
// category wins.
func (s *ConditionalService) GetActiveSplit(ctx context.Context, req *connect.Request[api.GetActiveSplitRequest]) (*connect.Response[api.GetActiveSplitResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	song, err := ownedSong(ctx, s.store, artistID, req.Msg.SongID)
	if err != nil {
		return nil, toConnectError(err)
	}

	set, err := song.Splits.SplitSet()
	if err != nil {
		slog.Error("GetActiveSplit found invalid stored splits", "song_id", song.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	recs, err := s.store.ListConditionals(ctx, song.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	applied := make([]string, 0, len(recs))
	for _, rec := range recs {
		// a live split may have resolved in memory ahead of storage
		cs, ok := s.tracker.Lookup(rec.ID)
		if !ok {
			if cs, err = rec.Restore(); err != nil {
				slog.Warn("skipping invalid conditional split", "conditional_id", rec.ID, "error", err)
				continue
			}
		}
		if set, err = cs.Overlay(set); err != nil {
			return nil, toConnectError(err)
		}
		applied = append(applied, rec.ID)
	}

	return connect.NewResponse(&api.GetActiveSplitResponse{
		SongID:          song.ID,
		Splits:          splitDataToAPI(models.SplitDataFrom(set)),
		SplitPercentage: models.FormatPercentage(set.SummaryPercentage()),
		Applied:         applied,
	}), nil
}
