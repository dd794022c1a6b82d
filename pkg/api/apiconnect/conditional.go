package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/pkg/api"
)

const (
	// ConditionalServiceName is the fully-qualified name of the ConditionalService.
	ConditionalServiceName = "royaltysplit.v1.ConditionalService"
)

const (
	ConditionalServiceCreateConditionalSplitProcedure = "/royaltysplit.v1.ConditionalService/CreateConditionalSplit"
	ConditionalServiceListConditionalSplitsProcedure  = "/royaltysplit.v1.ConditionalService/ListConditionalSplits"
	ConditionalServiceReportRevenueProcedure          = "/royaltysplit.v1.ConditionalService/ReportRevenue"
	ConditionalServiceGetActiveSplitProcedure         = "/royaltysplit.v1.ConditionalService/GetActiveSplit"
)

// ConditionalServiceHandler is implemented by the conditional service.
type ConditionalServiceHandler interface {
	CreateConditionalSplit(context.Context, *connect.Request[api.CreateConditionalSplitRequest]) (*connect.Response[api.CreateConditionalSplitResponse], error)
	ListConditionalSplits(context.Context, *connect.Request[api.ListConditionalSplitsRequest]) (*connect.Response[api.ListConditionalSplitsResponse], error)
	ReportRevenue(context.Context, *connect.Request[api.ReportRevenueRequest]) (*connect.Response[api.ReportRevenueResponse], error)
	GetActiveSplit(context.Context, *connect.Request[api.GetActiveSplitRequest]) (*connect.Response[api.GetActiveSplitResponse], error)
}

// NewConditionalServiceHandler builds an HTTP handler from the service
// implementation.
func NewConditionalServiceHandler(svc ConditionalServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ConditionalServiceCreateConditionalSplitProcedure, connect.NewUnaryHandler(ConditionalServiceCreateConditionalSplitProcedure, svc.CreateConditionalSplit, opt))
	mux.Handle(ConditionalServiceListConditionalSplitsProcedure, connect.NewUnaryHandler(ConditionalServiceListConditionalSplitsProcedure, svc.ListConditionalSplits, opt))
	mux.Handle(ConditionalServiceReportRevenueProcedure, connect.NewUnaryHandler(ConditionalServiceReportRevenueProcedure, svc.ReportRevenue, opt))
	mux.Handle(ConditionalServiceGetActiveSplitProcedure, connect.NewUnaryHandler(ConditionalServiceGetActiveSplitProcedure, svc.GetActiveSplit, opt))
	return "/" + ConditionalServiceName + "/", mux
}

// ConditionalServiceClient is a client for the ConditionalService.
type ConditionalServiceClient interface {
	CreateConditionalSplit(context.Context, *connect.Request[api.CreateConditionalSplitRequest]) (*connect.Response[api.CreateConditionalSplitResponse], error)
	ListConditionalSplits(context.Context, *connect.Request[api.ListConditionalSplitsRequest]) (*connect.Response[api.ListConditionalSplitsResponse], error)
	ReportRevenue(context.Context, *connect.Request[api.ReportRevenueRequest]) (*connect.Response[api.ReportRevenueResponse], error)
	GetActiveSplit(context.Context, *connect.Request[api.GetActiveSplitRequest]) (*connect.Response[api.GetActiveSplitResponse], error)
}

// NewConditionalServiceClient constructs a client for the ConditionalService.
func NewConditionalServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ConditionalServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &conditionalServiceClient{
		create:         connect.NewClient[api.CreateConditionalSplitRequest, api.CreateConditionalSplitResponse](httpClient, baseURL+ConditionalServiceCreateConditionalSplitProcedure, opt),
		list:           connect.NewClient[api.ListConditionalSplitsRequest, api.ListConditionalSplitsResponse](httpClient, baseURL+ConditionalServiceListConditionalSplitsProcedure, opt),
		reportRevenue:  connect.NewClient[api.ReportRevenueRequest, api.ReportRevenueResponse](httpClient, baseURL+ConditionalServiceReportRevenueProcedure, opt),
		getActiveSplit: connect.NewClient[api.GetActiveSplitRequest, api.GetActiveSplitResponse](httpClient, baseURL+ConditionalServiceGetActiveSplitProcedure, opt),
	}
}

type conditionalServiceClient struct {
	create         *connect.Client[api.CreateConditionalSplitRequest, api.CreateConditionalSplitResponse]
	list           *connect.Client[api.ListConditionalSplitsRequest, api.ListConditionalSplitsResponse]
	reportRevenue  *connect.Client[api.ReportRevenueRequest, api.ReportRevenueResponse]
	getActiveSplit *connect.Client[api.GetActiveSplitRequest, api.GetActiveSplitResponse]
}

func (c *conditionalServiceClient) CreateConditionalSplit(ctx context.Context, req *connect.Request[api.CreateConditionalSplitRequest]) (*connect.Response[api.CreateConditionalSplitResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *conditionalServiceClient) ListConditionalSplits(ctx context.Context, req *connect.Request[api.ListConditionalSplitsRequest]) (*connect.Response[api.ListConditionalSplitsResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *conditionalServiceClient) ReportRevenue(ctx context.Context, req *connect.Request[api.ReportRevenueRequest]) (*connect.Response[api.ReportRevenueResponse], error) {
	return c.reportRevenue.CallUnary(ctx, req)
}

func (c *conditionalServiceClient) GetActiveSplit(ctx context.Context, req *connect.Request[api.GetActiveSplitRequest]) (*connect.Response[api.GetActiveSplitResponse], error) {
	return c.getActiveSplit.CallUnary(ctx, req)
}
