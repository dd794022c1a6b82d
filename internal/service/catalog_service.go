package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/internal/engine"
	"github.com/mmynk/royaltysplit/internal/models"
	"github.com/mmynk/royaltysplit/internal/royalty"
	"github.com/mmynk/royaltysplit/internal/storage"
	"github.com/mmynk/royaltysplit/pkg/api"
	"github.com/mmynk/royaltysplit/pkg/api/apiconnect"
)

var _ apiconnect.CatalogServiceHandler = (*CatalogService)(nil)

// CatalogService implements the Connect CatalogService.
type CatalogService struct {
	store   storage.Store
	tracker *engine.Tracker
}

// NewCatalogService creates a new CatalogService with the given storage backend.
func NewCatalogService(store storage.Store, tracker *engine.Tracker) *CatalogService {
	return &CatalogService{store: store, tracker: tracker}
}

// ownedSong loads songID and checks that artistID owns it. Songs of other
// artists are reported as not found.
func ownedSong(ctx context.Context, store storage.Store, artistID, songID string) (*models.Song, error) {
	if songID == "" {
		return nil, invalidArgument(errors.New("song id is required"))
	}
	song, err := store.GetSong(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song.ArtistID != artistID {
		return nil, fmt.Errorf("song %s: %w", songID, storage.ErrNotFound)
	}
	return song, nil
}

// validatedSplits checks every category of d and returns the stored form,
// with contributor ids assigned where missing.
func validatedSplits(d api.SplitData) (models.SplitData, error) {
	incoming := splitDataFromAPI(d)
	var ledgers [len(royalty.Categories)]*royalty.Ledger
	for i, c := range royalty.Categories {
		a, err := models.AllocationFrom(c, incoming.Entries(c))
		if err != nil {
			return models.SplitData{}, &royalty.CategoryError{Category: c, Err: err}
		}
		ledgers[i] = a.Edit()
	}
	var set royalty.SplitSet
	if err := set.Commit(ledgers[0], ledgers[1], ledgers[2]); err != nil {
		return models.SplitData{}, err
	}
	return models.SplitDataFrom(set), nil
}

// CreateSong creates a new song owned by the calling artist.
func (s *CatalogService) CreateSong(ctx context.Context, req *connect.Request[api.CreateSongRequest]) (*connect.Response[api.CreateSongResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Msg.Title)
	if title == "" {
		return nil, invalidArgument(errors.New("title is required"))
	}

	song := &models.Song{ArtistID: artistID, Title: title}
	if req.Msg.Splits != nil {
		splits, err := validatedSplits(*req.Msg.Splits)
		if err != nil {
			return nil, toConnectError(err)
		}
		song.Splits = splits
	}

	// Save to storage (generates ID and timestamps)
	if err := s.store.CreateSong(ctx, song); err != nil {
		slog.Error("CreateSong failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Song created", "song_id", song.ID, "artist_id", artistID)

	return connect.NewResponse(&api.CreateSongResponse{Song: songToAPI(song)}), nil
}

// GetSong retrieves a song together with its conditional splits.
func (s *CatalogService) GetSong(ctx context.Context, req *connect.Request[api.GetSongRequest]) (*connect.Response[api.GetSongResponse], error) {
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
		slog.Error("GetSong failed to list conditionals", "song_id", song.ID, "error", err)
		return nil, toConnectError(err)
	}
	conditionals := make([]*api.ConditionalSplit, 0, len(recs))
	for _, rec := range recs {
		conditionals = append(conditionals, conditionalToAPI(rec))
	}

	return connect.NewResponse(&api.GetSongResponse{
		Song:         songToAPI(song),
		Conditionals: conditionals,
	}), nil
}

// ListSongs retrieves the songs of the calling artist, newest first.
func (s *CatalogService) ListSongs(ctx context.Context, req *connect.Request[api.ListSongsRequest]) (*connect.Response[api.ListSongsResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	songs, err := s.store.ListSongs(ctx, artistID)
	if err != nil {
		slog.Error("ListSongs failed", "artist_id", artistID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Song, 0, len(songs))
	for _, song := range songs {
		out = append(out, songToAPI(song))
	}
	return connect.NewResponse(&api.ListSongsResponse{Songs: out}), nil
}

// DeleteSong removes a song and stops tracking its conditional splits.
func (s *CatalogService) DeleteSong(ctx context.Context, req *connect.Request[api.DeleteSongRequest]) (*connect.Response[api.DeleteSongResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	song, err := ownedSong(ctx, s.store, artistID, req.Msg.SongID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.DeleteSong(ctx, song.ID); err != nil {
		slog.Error("DeleteSong failed", "song_id", song.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.tracker.Forget(song.ID)

	slog.Info("Song deleted", "song_id", song.ID)
	return connect.NewResponse(&api.DeleteSongResponse{}), nil
}

// CommitSplitSet replaces all three categories of a song at once. If any
// category is invalid nothing is written.
func (s *CatalogService) CommitSplitSet(ctx context.Context, req *connect.Request[api.CommitSplitSetRequest]) (*connect.Response[api.CommitSplitSetResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	song, err := ownedSong(ctx, s.store, artistID, req.Msg.SongID)
	if err != nil {
		return nil, toConnectError(err)
	}

	splits, err := validatedSplits(req.Msg.Splits)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.ReplaceSplits(ctx, song.ID, splits); err != nil {
		slog.Error("CommitSplitSet failed", "song_id", song.ID, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.store.GetSong(ctx, song.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Split set committed", "song_id", song.ID)
	return connect.NewResponse(&api.CommitSplitSetResponse{Song: songToAPI(updated)}), nil
}
