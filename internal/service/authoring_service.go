package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/internal/authoring"
	"github.com/mmynk/royaltysplit/internal/engine"
	"github.com/mmynk/royaltysplit/internal/models"
	"github.com/mmynk/royaltysplit/internal/royalty"
	"github.com/mmynk/royaltysplit/internal/storage"
	"github.com/mmynk/royaltysplit/pkg/api"
	"github.com/mmynk/royaltysplit/pkg/api/apiconnect"
)

var _ apiconnect.AuthoringServiceHandler = (*AuthoringService)(nil)

// AuthoringService runs the guided split flows over RPC. Flow state lives in
// the session registry; nothing is written until a flow is confirmed.
type AuthoringService struct {
	store    storage.Store
	tracker  *engine.Tracker
	sessions *authoring.Registry
	now      func() time.Time
}

// NewAuthoringService creates a new AuthoringService.
func NewAuthoringService(store storage.Store, tracker *engine.Tracker, sessions *authoring.Registry) *AuthoringService {
	return &AuthoringService{store: store, tracker: tracker, sessions: sessions, now: time.Now}
}

// editable is the editing surface shared by both flow kinds.
type editable interface {
	SelectCategory(royalty.Category) error
	AddContributor(royalty.Contributor, int) (royalty.ContributorRef, error)
	SetPercentage(royalty.ContributorRef, int) error
	RemoveContributor(royalty.ContributorRef) error
	Next() error
	Back() error
}

// StartFlow opens an authoring session for one of the caller's songs.
func (s *AuthoringService) StartFlow(ctx context.Context, req *connect.Request[api.StartFlowRequest]) (*connect.Response[api.StartFlowResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	song, err := ownedSong(ctx, s.store, artistID, req.Msg.SongID)
	if err != nil {
		return nil, toConnectError(err)
	}
	kind, err := authoring.ParseKind(req.Msg.Kind)
	if err != nil {
		return nil, invalidArgument(err)
	}

	var flow authoring.Flow
	switch kind {
	case authoring.KindSplitSet:
		base, err := song.Splits.SplitSet()
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("stored splits of song %s: %w", song.ID, err))
		}
		flow = authoring.NewSplitSetFlow(base)
	case authoring.KindConditional:
		category := royalty.Music
		if req.Msg.Category != "" {
			if category, err = royalty.ParseCategory(req.Msg.Category); err != nil {
				return nil, invalidArgument(err)
			}
		}
		flow = authoring.NewConditionalFlow(category, s.now)
	}

	sess := s.sessions.Start(artistID, song.ID, flow)
	sess.Lock()
	state := flowState(sess)
	sess.Unlock()

	slog.Info("Authoring flow started", "session_id", sess.ID, "song_id", song.ID, "kind", kind)
	return connect.NewResponse(&api.StartFlowResponse{State: state}), nil
}

// ApplyFlowAction applies one action to a session. Input the flow refuses is
// reported in the response's Error together with the unchanged step, so the
// caller can correct it. A session closes once its flow is confirmed.
func (s *AuthoringService) ApplyFlowAction(ctx context.Context, req *connect.Request[api.ApplyFlowActionRequest]) (*connect.Response[api.ApplyFlowActionResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(artistID, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}

	sess.Lock()
	resp, err := s.apply(ctx, sess, req.Msg.Action)
	closed := sess.Flow().Step().Closed()
	sess.Unlock()

	// Close after unlocking: eviction takes the session lock.
	if closed {
		s.sessions.Close(sess.ID)
	}
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

// apply runs action against the session's flow. The caller holds the lock.
func (s *AuthoringService) apply(ctx context.Context, sess *authoring.Session, action api.FlowAction) (*api.ApplyFlowActionResponse, error) {
	resp := &api.ApplyFlowActionResponse{}
	var (
		song *api.Song
		err  error
	)
	switch f := sess.Flow().(type) {
	case *authoring.ConditionalFlow:
		err = s.applyConditional(ctx, sess, f, action, resp)
	case *authoring.SplitSetFlow:
		song, err = s.applySplitSet(ctx, sess, f, action, resp)
	default:
		err = fmt.Errorf("unsupported flow %T", f)
	}

	if err != nil {
		fe := flowErrorOf(err)
		if fe == nil {
			return nil, toConnectError(err)
		}
		slog.Debug("Flow action refused", "session_id", sess.ID, "action", action.Type, "kind", fe.Kind, "error", err)
		resp.Error = fe
	}

	resp.State = flowState(sess)
	resp.State.Song = song
	return resp, nil
}

// applyEdit handles the actions both flow kinds share. It reports false for
// an action type it does not know.
func applyEdit(f editable, action api.FlowAction, resp *api.ApplyFlowActionResponse) (bool, error) {
	ref := royalty.ContributorRef(action.ContributorID)
	switch action.Type {
	case api.ActionSelectCategory:
		c, err := royalty.ParseCategory(action.Category)
		if err != nil {
			return true, &royalty.CategoryError{Category: royalty.Category(action.Category), Err: err}
		}
		return true, f.SelectCategory(c)
	case api.ActionAddContributor:
		if action.Contributor == nil {
			return true, invalidArgument(errors.New("add_contributor requires a contributor"))
		}
		added, err := f.AddContributor(contributorOf(*action.Contributor), action.Contributor.Percentage)
		resp.ContributorID = string(added)
		return true, err
	case api.ActionSetPercentage:
		return true, f.SetPercentage(ref, action.Percentage)
	case api.ActionRemoveContributor:
		return true, f.RemoveContributor(ref)
	case api.ActionNext:
		return true, f.Next()
	case api.ActionBack:
		return true, f.Back()
	}
	return false, nil
}

func unknownAction(kind authoring.Kind, action string) error {
	return invalidArgument(fmt.Errorf("unknown %s action %q", kind, action))
}

func (s *AuthoringService) applyConditional(ctx context.Context, sess *authoring.Session, f *authoring.ConditionalFlow, action api.FlowAction, resp *api.ApplyFlowActionResponse) error {
	switch action.Type {
	case api.ActionChooseConditionType:
		return f.ChooseConditionType(royalty.ConditionType(action.ConditionType))
	case api.ActionDefineThreshold:
		return f.DefineThreshold(action.Threshold)
	case api.ActionConfirm:
		cs, err := f.Confirm()
		if err != nil {
			return err
		}
		if _, err := createConditional(ctx, s.store, s.tracker, sess.SongID, cs); err != nil {
			slog.Error("Confirmed conditional split could not be saved", "session_id", sess.ID, "song_id", sess.SongID, "error", err)
			return connect.NewError(connect.CodeInternal, err)
		}
		return nil
	}
	if handled, err := applyEdit(f, action, resp); handled {
		return err
	}
	return unknownAction(authoring.KindConditional, action.Type)
}

func (s *AuthoringService) applySplitSet(ctx context.Context, sess *authoring.Session, f *authoring.SplitSetFlow, action api.FlowAction, resp *api.ApplyFlowActionResponse) (*api.Song, error) {
	if action.Type == api.ActionConfirm {
		var set royalty.SplitSet
		if err := f.Confirm(&set); err != nil {
			return nil, err
		}
		if err := s.store.ReplaceSplits(ctx, sess.SongID, models.SplitDataFrom(set)); err != nil {
			slog.Error("Confirmed split set could not be saved", "session_id", sess.ID, "song_id", sess.SongID, "error", err)
			return nil, toConnectError(fmt.Errorf("failed to save split set: %w", err))
		}
		song, err := s.store.GetSong(ctx, sess.SongID)
		if err != nil {
			return nil, toConnectError(err)
		}
		slog.Info("Split set committed", "session_id", sess.ID, "song_id", sess.SongID)
		return songToAPI(song), nil
	}
	if handled, err := applyEdit(f, action, resp); handled {
		return nil, err
	}
	return nil, unknownAction(authoring.KindSplitSet, action.Type)
}

// CancelFlow discards a session and everything entered in it.
func (s *AuthoringService) CancelFlow(ctx context.Context, req *connect.Request[api.CancelFlowRequest]) (*connect.Response[api.CancelFlowResponse], error) {
	artistID, err := artistFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Cancel(artistID, req.Msg.SessionID); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Authoring flow cancelled", "session_id", req.Msg.SessionID)
	return connect.NewResponse(&api.CancelFlowResponse{}), nil
}

// flowState renders the session's flow. The caller holds the lock.
func flowState(sess *authoring.Session) *api.FlowState {
	flow := sess.Flow()
	st := &api.FlowState{
		SessionID: sess.ID,
		SongID:    sess.SongID,
		Kind:      string(flow.Kind()),
		Step:      string(flow.Step()),
	}
	switch f := flow.(type) {
	case *authoring.ConditionalFlow:
		cs := f.State()
		st.Category = string(cs.Category)
		st.Remaining = cs.Remaining
		st.ConditionType = string(cs.ConditionType)
		st.Threshold = cs.Threshold
		st.PreSplit = contributorsFromShares(cs.Pre)
		st.PostSplit = contributorsFromShares(cs.Post)
		if cs.Result != nil {
			st.Conditional = conditionalToAPI(models.ConditionalRecordFrom(sess.SongID, cs.Result))
		}
	case *authoring.SplitSetFlow:
		ss := f.State()
		st.Category = string(ss.Category)
		st.Remaining = ss.Remaining
		st.Splits = &api.SplitData{
			Music:       contributorsFromShares(ss.Categories[royalty.Music]),
			Lyrics:      contributorsFromShares(ss.Categories[royalty.Lyrics]),
			Instruments: contributorsFromShares(ss.Categories[royalty.Instrumental]),
		}
	}
	return st
}
