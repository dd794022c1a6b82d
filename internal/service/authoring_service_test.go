package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/pkg/api"
)

type flowDriver struct {
	t         *testing.T
	env       *testEnv
	sessionID string
}

func startFlow(t *testing.T, env *testEnv, req *api.StartFlowRequest) (*flowDriver, *api.FlowState) {
	t.Helper()
	resp, err := env.authoring.StartFlow(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}
	return &flowDriver{t: t, env: env, sessionID: resp.Msg.State.SessionID}, resp.Msg.State
}

// do applies an action that must be accepted.
func (d *flowDriver) do(action api.FlowAction) *api.ApplyFlowActionResponse {
	d.t.Helper()
	resp := d.try(action)
	if resp.Error != nil {
		d.t.Fatalf("%s refused: %s (%s)", action.Type, resp.Error.Message, resp.Error.Kind)
	}
	return resp
}

// try applies an action; the flow may refuse it.
func (d *flowDriver) try(action api.FlowAction) *api.ApplyFlowActionResponse {
	d.t.Helper()
	resp, err := d.env.authoring.ApplyFlowAction(context.Background(), connect.NewRequest(&api.ApplyFlowActionRequest{
		SessionID: d.sessionID,
		Action:    action,
	}))
	if err != nil {
		d.t.Fatalf("ApplyFlowAction(%s) failed: %v", action.Type, err)
	}
	return resp.Msg
}

func (d *flowDriver) refused(action api.FlowAction, kind string) *api.ApplyFlowActionResponse {
	d.t.Helper()
	resp := d.try(action)
	if resp.Error == nil || resp.Error.Kind != kind {
		d.t.Fatalf("%s: error = %+v, want kind %s", action.Type, resp.Error, kind)
	}
	return resp
}

func add(name string, pct int) api.FlowAction {
	return api.FlowAction{Type: api.ActionAddContributor, Contributor: &api.Contributor{Name: name, Percentage: pct}}
}

var (
	next    = api.FlowAction{Type: api.ActionNext}
	back    = api.FlowAction{Type: api.ActionBack}
	confirm = api.FlowAction{Type: api.ActionConfirm}
)

func TestConditionalFlowOverRPC(t *testing.T) {
	env := setupTestServer(t)
	song := createSong(t, env, "Guided", nil)

	d, state := startFlow(t, env, &api.StartFlowRequest{SongID: song.ID, Kind: "conditional", Category: "music"})
	if state.Step != "choose_condition_type" || state.Category != "music" {
		t.Fatalf("initial state = %+v", state)
	}

	resp := d.refused(next, "no_condition_type")
	if resp.State.Step != "choose_condition_type" {
		t.Errorf("step moved after refusal: %s", resp.State.Step)
	}

	d.do(api.FlowAction{Type: api.ActionChooseConditionType, ConditionType: "recoupment"})
	if got := d.do(next).State.Step; got != "define_threshold" {
		t.Fatalf("step = %s, want define_threshold", got)
	}

	d.refused(api.FlowAction{Type: api.ActionDefineThreshold, Threshold: "-5"}, "invalid_threshold")
	d.do(api.FlowAction{Type: api.ActionDefineThreshold, Threshold: "750"})
	resp = d.do(next)
	if resp.State.Step != "define_pre_split" || resp.State.Remaining != 100 {
		t.Fatalf("state = %+v", resp.State)
	}

	resp = d.do(add("Artist", 20))
	if resp.ContributorID == "" || resp.State.Remaining != 80 {
		t.Fatalf("after add: id=%q remaining=%d", resp.ContributorID, resp.State.Remaining)
	}
	resp = d.refused(add("Label", 90), "invalid_range")
	if resp.State.Remaining != 80 {
		t.Errorf("refused add changed remaining to %d", resp.State.Remaining)
	}
	d.refused(next, "sum_mismatch")
	d.do(add("Label", 80))
	d.do(next)

	artist := d.do(add("Artist", 50)).ContributorID
	d.do(add("Label", 40))
	d.do(api.FlowAction{Type: api.ActionSetPercentage, ContributorID: artist, Percentage: 60})
	if got := d.do(next).State.Step; got != "review" {
		t.Fatalf("step = %s, want review", got)
	}

	if got := d.do(back).State; got.Step != "define_post_split" || len(got.PostSplit) != 2 {
		t.Fatalf("back lost data: %+v", got)
	}
	d.do(next)

	resp = d.do(confirm)
	if resp.State.Step != "done" || resp.State.Conditional == nil {
		t.Fatalf("confirm state = %+v", resp.State)
	}
	if resp.State.Conditional.Threshold != "750.00" || resp.State.Conditional.Phase != "pre" {
		t.Errorf("conditional = %+v", resp.State.Conditional)
	}
	if env.tracker.Live() != 1 {
		t.Errorf("tracker live = %d, want 1", env.tracker.Live())
	}

	list, err := env.conditional.ListConditionalSplits(context.Background(), connect.NewRequest(&api.ListConditionalSplitsRequest{SongID: song.ID}))
	if err != nil {
		t.Fatalf("ListConditionalSplits failed: %v", err)
	}
	if len(list.Msg.Conditionals) != 1 || list.Msg.Conditionals[0].ID != resp.State.Conditional.ID {
		t.Errorf("stored conditionals = %+v", list.Msg.Conditionals)
	}
	if p := percentages(list.Msg.Conditionals[0].PostSplit); p["Artist"] != 60 || p["Label"] != 40 {
		t.Errorf("stored post split = %v", p)
	}

	// a confirmed session is closed
	_, err = env.authoring.ApplyFlowAction(context.Background(), connect.NewRequest(&api.ApplyFlowActionRequest{
		SessionID: d.sessionID,
		Action:    next,
	}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestSplitSetFlowOverRPC(t *testing.T) {
	env := setupTestServer(t)
	song := createSong(t, env, "Rework", &api.SplitData{Music: contributors("A", 100)})

	d, state := startFlow(t, env, &api.StartFlowRequest{SongID: song.ID, Kind: "split_set"})
	if state.Step != "define_music" || state.Remaining != 0 || state.Splits == nil || len(state.Splits.Music) != 1 {
		t.Fatalf("initial state = %+v", state)
	}

	d.refused(confirm, "wrong_step")

	a := state.Splits.Music[0].ID
	resp := d.do(api.FlowAction{Type: api.ActionSetPercentage, ContributorID: a, Percentage: 50})
	if resp.State.Remaining != 50 {
		t.Errorf("remaining = %d, want 50", resp.State.Remaining)
	}
	d.refused(next, "sum_mismatch")
	d.do(add("B", 50))
	if got := d.do(next).State.Step; got != "define_lyrics" {
		t.Fatalf("step = %s, want define_lyrics", got)
	}
	d.do(next) // lyrics stays empty
	d.do(add("C", 100))
	d.do(next)

	resp = d.do(confirm)
	if resp.State.Step != "done" || resp.State.Song == nil {
		t.Fatalf("confirm state = %+v", resp.State)
	}
	if resp.State.Song.Status != "intermediate" || resp.State.Song.NumberOfSplits != 3 {
		t.Errorf("song after confirm = %+v", resp.State.Song)
	}

	got, err := env.catalog.GetSong(context.Background(), connect.NewRequest(&api.GetSongRequest{SongID: song.ID}))
	if err != nil {
		t.Fatalf("GetSong failed: %v", err)
	}
	if p := percentages(got.Msg.Song.Splits.Music); p["A"] != 50 || p["B"] != 50 {
		t.Errorf("stored music = %v", p)
	}
	if p := percentages(got.Msg.Song.Splits.Instruments); p["C"] != 100 {
		t.Errorf("stored instruments = %v", p)
	}
}

func TestSplitSetFlowSelectCategory(t *testing.T) {
	env := setupTestServer(t)
	song := createSong(t, env, "Jump", nil)

	d, _ := startFlow(t, env, &api.StartFlowRequest{SongID: song.ID, Kind: "split_set"})
	resp := d.do(api.FlowAction{Type: api.ActionSelectCategory, Category: "instruments"})
	if resp.State.Step != "define_instrumental" || resp.State.Category != "instrumental" {
		t.Fatalf("state = %+v", resp.State)
	}
	d.refused(api.FlowAction{Type: api.ActionSelectCategory, Category: "drums"}, "category_invalid")
}

func TestCancelFlowDiscardsInput(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	song := createSong(t, env, "Abandoned", &api.SplitData{Lyrics: contributors("L", 100)})

	d, _ := startFlow(t, env, &api.StartFlowRequest{SongID: song.ID, Kind: "split_set"})
	d.do(add("A", 100))

	_, err := env.authoring.CancelFlow(ctx, as("artist-2", &api.CancelFlowRequest{SessionID: d.sessionID}))
	requireCode(t, err, connect.CodeNotFound)

	if _, err := env.authoring.CancelFlow(ctx, connect.NewRequest(&api.CancelFlowRequest{SessionID: d.sessionID})); err != nil {
		t.Fatalf("CancelFlow failed: %v", err)
	}
	_, err = env.authoring.ApplyFlowAction(ctx, connect.NewRequest(&api.ApplyFlowActionRequest{SessionID: d.sessionID, Action: next}))
	requireCode(t, err, connect.CodeNotFound)

	got, err := env.catalog.GetSong(ctx, connect.NewRequest(&api.GetSongRequest{SongID: song.ID}))
	if err != nil {
		t.Fatalf("GetSong failed: %v", err)
	}
	if len(got.Msg.Song.Splits.Music) != 0 || len(got.Msg.Song.Splits.Lyrics) != 1 {
		t.Errorf("cancelled flow changed the song: %+v", got.Msg.Song.Splits)
	}
	if env.sessions.Len() != 0 {
		t.Errorf("sessions = %d, want 0", env.sessions.Len())
	}
}

func TestAuthoringRequestValidation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	song := createSong(t, env, "Strict", nil)

	_, err := env.authoring.StartFlow(ctx, connect.NewRequest(&api.StartFlowRequest{SongID: song.ID, Kind: "remix"}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.authoring.StartFlow(ctx, connect.NewRequest(&api.StartFlowRequest{SongID: song.ID, Kind: "conditional", Category: "drums"}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.authoring.StartFlow(ctx, as("artist-2", &api.StartFlowRequest{SongID: song.ID, Kind: "split_set"}))
	requireCode(t, err, connect.CodeNotFound)

	d, _ := startFlow(t, env, &api.StartFlowRequest{SongID: song.ID, Kind: "conditional"})
	_, err = env.authoring.ApplyFlowAction(ctx, connect.NewRequest(&api.ApplyFlowActionRequest{
		SessionID: d.sessionID,
		Action:    api.FlowAction{Type: "shuffle"},
	}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.authoring.ApplyFlowAction(ctx, connect.NewRequest(&api.ApplyFlowActionRequest{
		SessionID: d.sessionID,
		Action:    api.FlowAction{Type: api.ActionAddContributor},
	}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.authoring.ApplyFlowAction(ctx, as("artist-2", &api.ApplyFlowActionRequest{SessionID: d.sessionID, Action: next}))
	requireCode(t, err, connect.CodeNotFound)
}
