package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/internal/authoring"
	"github.com/mmynk/royaltysplit/internal/engine"
	"github.com/mmynk/royaltysplit/internal/middleware"
	"github.com/mmynk/royaltysplit/internal/storage/sqlite"
	"github.com/mmynk/royaltysplit/pkg/api"
	"github.com/mmynk/royaltysplit/pkg/api/apiconnect"
)

const (
	testArtist   = "artist-1"
	artistHeader = "X-Test-Artist"
)

// testAuthInterceptor puts the artist named by the X-Test-Artist header, or
// testArtist, in the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			artistID := req.Header().Get(artistHeader)
			if artistID == "" {
				artistID = testArtist
			}
			return next(middleware.WithArtistID(ctx, artistID), req)
		}
	}
}

type testEnv struct {
	catalog     apiconnect.CatalogServiceClient
	conditional apiconnect.ConditionalServiceClient
	authoring   apiconnect.AuthoringServiceClient
	tracker     *engine.Tracker
	sessions    *authoring.Registry
}

// setupTestServer creates a test server backed by a temp-file SQLite database
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	tracker := engine.NewTracker(store, engine.Options{Workers: 2, QueueSize: 16})
	sessions := authoring.NewRegistry(time.Minute, nil)

	interceptors := connect.WithInterceptors(testAuthInterceptor())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewCatalogServiceHandler(NewCatalogService(store, tracker), interceptors))
	mux.Handle(apiconnect.NewConditionalServiceHandler(NewConditionalService(store, tracker), interceptors))
	mux.Handle(apiconnect.NewAuthoringServiceHandler(NewAuthoringService(store, tracker, sessions), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		tracker.Stop()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testEnv{
		catalog:     apiconnect.NewCatalogServiceClient(http.DefaultClient, server.URL),
		conditional: apiconnect.NewConditionalServiceClient(http.DefaultClient, server.URL),
		authoring:   apiconnect.NewAuthoringServiceClient(http.DefaultClient, server.URL),
		tracker:     tracker,
		sessions:    sessions,
	}
}

// as sends req on behalf of artistID.
func as[T any](artistID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(artistHeader, artistID)
	return req
}

func contributors(pairs ...any) []api.Contributor {
	var out []api.Contributor
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, api.Contributor{Name: pairs[i].(string), Percentage: pairs[i+1].(int)})
	}
	return out
}

func createSong(t *testing.T, env *testEnv, title string, splits *api.SplitData) *api.Song {
	t.Helper()
	resp, err := env.catalog.CreateSong(context.Background(), connect.NewRequest(&api.CreateSongRequest{
		Title:  title,
		Splits: splits,
	}))
	if err != nil {
		t.Fatalf("CreateSong failed: %v", err)
	}
	return resp.Msg.Song
}

func requireCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("code = %v, want %v (err: %v)", got, want, err)
	}
}

func percentages(cs []api.Contributor) map[string]int {
	out := make(map[string]int, len(cs))
	for _, c := range cs {
		out[c.Name] = c.Percentage
	}
	return out
}
