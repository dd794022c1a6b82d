package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/pkg/api"
)

const (
	// CatalogServiceName is the fully-qualified name of the CatalogService.
	CatalogServiceName = "royaltysplit.v1.CatalogService"
)

const (
	CatalogServiceCreateSongProcedure     = "/royaltysplit.v1.CatalogService/CreateSong"
	CatalogServiceGetSongProcedure        = "/royaltysplit.v1.CatalogService/GetSong"
	CatalogServiceListSongsProcedure      = "/royaltysplit.v1.CatalogService/ListSongs"
	CatalogServiceDeleteSongProcedure     = "/royaltysplit.v1.CatalogService/DeleteSong"
	CatalogServiceCommitSplitSetProcedure = "/royaltysplit.v1.CatalogService/CommitSplitSet"
)

// CatalogServiceHandler is implemented by the catalog service.
type CatalogServiceHandler interface {
	CreateSong(context.Context, *connect.Request[api.CreateSongRequest]) (*connect.Response[api.CreateSongResponse], error)
	GetSong(context.Context, *connect.Request[api.GetSongRequest]) (*connect.Response[api.GetSongResponse], error)
	ListSongs(context.Context, *connect.Request[api.ListSongsRequest]) (*connect.Response[api.ListSongsResponse], error)
	DeleteSong(context.Context, *connect.Request[api.DeleteSongRequest]) (*connect.Response[api.DeleteSongResponse], error)
	CommitSplitSet(context.Context, *connect.Request[api.CommitSplitSetRequest]) (*connect.Response[api.CommitSplitSetResponse], error)
}

// NewCatalogServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewCatalogServiceHandler(svc CatalogServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(CatalogServiceCreateSongProcedure, connect.NewUnaryHandler(CatalogServiceCreateSongProcedure, svc.CreateSong, opt))
	mux.Handle(CatalogServiceGetSongProcedure, connect.NewUnaryHandler(CatalogServiceGetSongProcedure, svc.GetSong, opt))
	mux.Handle(CatalogServiceListSongsProcedure, connect.NewUnaryHandler(CatalogServiceListSongsProcedure, svc.ListSongs, opt))
	mux.Handle(CatalogServiceDeleteSongProcedure, connect.NewUnaryHandler(CatalogServiceDeleteSongProcedure, svc.DeleteSong, opt))
	mux.Handle(CatalogServiceCommitSplitSetProcedure, connect.NewUnaryHandler(CatalogServiceCommitSplitSetProcedure, svc.CommitSplitSet, opt))
	return "/" + CatalogServiceName + "/", mux
}

// CatalogServiceClient is a client for the CatalogService.
type CatalogServiceClient interface {
	CreateSong(context.Context, *connect.Request[api.CreateSongRequest]) (*connect.Response[api.CreateSongResponse], error)
	GetSong(context.Context, *connect.Request[api.GetSongRequest]) (*connect.Response[api.GetSongResponse], error)
	ListSongs(context.Context, *connect.Request[api.ListSongsRequest]) (*connect.Response[api.ListSongsResponse], error)
	DeleteSong(context.Context, *connect.Request[api.DeleteSongRequest]) (*connect.Response[api.DeleteSongResponse], error)
	CommitSplitSet(context.Context, *connect.Request[api.CommitSplitSetRequest]) (*connect.Response[api.CommitSplitSetResponse], error)
}

// NewCatalogServiceClient constructs a client for the CatalogService. baseURL
// is the server root, for example http://localhost:8080.
func NewCatalogServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CatalogServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &catalogServiceClient{
		createSong:     connect.NewClient[api.CreateSongRequest, api.CreateSongResponse](httpClient, baseURL+CatalogServiceCreateSongProcedure, opt),
		getSong:        connect.NewClient[api.GetSongRequest, api.GetSongResponse](httpClient, baseURL+CatalogServiceGetSongProcedure, opt),
		listSongs:      connect.NewClient[api.ListSongsRequest, api.ListSongsResponse](httpClient, baseURL+CatalogServiceListSongsProcedure, opt),
		deleteSong:     connect.NewClient[api.DeleteSongRequest, api.DeleteSongResponse](httpClient, baseURL+CatalogServiceDeleteSongProcedure, opt),
		commitSplitSet: connect.NewClient[api.CommitSplitSetRequest, api.CommitSplitSetResponse](httpClient, baseURL+CatalogServiceCommitSplitSetProcedure, opt),
	}
}

type catalogServiceClient struct {
	createSong     *connect.Client[api.CreateSongRequest, api.CreateSongResponse]
	getSong        *connect.Client[api.GetSongRequest, api.GetSongResponse]
	listSongs      *connect.Client[api.ListSongsRequest, api.ListSongsResponse]
	deleteSong     *connect.Client[api.DeleteSongRequest, api.DeleteSongResponse]
	commitSplitSet *connect.Client[api.CommitSplitSetRequest, api.CommitSplitSetResponse]
}

func (c *catalogServiceClient) CreateSong(ctx context.Context, req *connect.Request[api.CreateSongRequest]) (*connect.Response[api.CreateSongResponse], error) {
	return c.createSong.CallUnary(ctx, req)
}

func (c *catalogServiceClient) GetSong(ctx context.Context, req *connect.Request[api.GetSongRequest]) (*connect.Response[api.GetSongResponse], error) {
	return c.getSong.CallUnary(ctx, req)
}

func (c *catalogServiceClient) ListSongs(ctx context.Context, req *connect.Request[api.ListSongsRequest]) (*connect.Response[api.ListSongsResponse], error) {
	return c.listSongs.CallUnary(ctx, req)
}

func (c *catalogServiceClient) DeleteSong(ctx context.Context, req *connect.Request[api.DeleteSongRequest]) (*connect.Response[api.DeleteSongResponse], error) {
	return c.deleteSong.CallUnary(ctx, req)
}

func (c *catalogServiceClient) CommitSplitSet(ctx context.Context, req *connect.Request[api.CommitSplitSetRequest]) (*connect.Response[api.CommitSplitSetResponse], error) {
	return c.commitSplitSet.CallUnary(ctx, req)
}
