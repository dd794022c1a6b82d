package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/pkg/api"
)

const (
	// AuthoringServiceName is the fully-qualified name of the AuthoringService.
	AuthoringServiceName = "royaltysplit.v1.AuthoringService"
)

const (
	AuthoringServiceStartFlowProcedure       = "/royaltysplit.v1.AuthoringService/StartFlow"
	AuthoringServiceApplyFlowActionProcedure = "/royaltysplit.v1.AuthoringService/ApplyFlowAction"
	AuthoringServiceCancelFlowProcedure      = "/royaltysplit.v1.AuthoringService/CancelFlow"
)

// AuthoringServiceHandler is implemented by the authoring service.
type AuthoringServiceHandler interface {
	StartFlow(context.Context, *connect.Request[api.StartFlowRequest]) (*connect.Response[api.StartFlowResponse], error)
	ApplyFlowAction(context.Context, *connect.Request[api.ApplyFlowActionRequest]) (*connect.Response[api.ApplyFlowActionResponse], error)
	CancelFlow(context.Context, *connect.Request[api.CancelFlowRequest]) (*connect.Response[api.CancelFlowResponse], error)
}

// NewAuthoringServiceHandler builds an HTTP handler from the service
// implementation.
func NewAuthoringServiceHandler(svc AuthoringServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthoringServiceStartFlowProcedure, connect.NewUnaryHandler(AuthoringServiceStartFlowProcedure, svc.StartFlow, opt))
	mux.Handle(AuthoringServiceApplyFlowActionProcedure, connect.NewUnaryHandler(AuthoringServiceApplyFlowActionProcedure, svc.ApplyFlowAction, opt))
	mux.Handle(AuthoringServiceCancelFlowProcedure, connect.NewUnaryHandler(AuthoringServiceCancelFlowProcedure, svc.CancelFlow, opt))
	return "/" + AuthoringServiceName + "/", mux
}

// AuthoringServiceClient is a client for the AuthoringService.
type AuthoringServiceClient interface {
	StartFlow(context.Context, *connect.Request[api.StartFlowRequest]) (*connect.Response[api.StartFlowResponse], error)
	ApplyFlowAction(context.Context, *connect.Request[api.ApplyFlowActionRequest]) (*connect.Response[api.ApplyFlowActionResponse], error)
	CancelFlow(context.Context, *connect.Request[api.CancelFlowRequest]) (*connect.Response[api.CancelFlowResponse], error)
}

// NewAuthoringServiceClient constructs a client for the AuthoringService.
func NewAuthoringServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthoringServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &authoringServiceClient{
		startFlow:       connect.NewClient[api.StartFlowRequest, api.StartFlowResponse](httpClient, baseURL+AuthoringServiceStartFlowProcedure, opt),
		applyFlowAction: connect.NewClient[api.ApplyFlowActionRequest, api.ApplyFlowActionResponse](httpClient, baseURL+AuthoringServiceApplyFlowActionProcedure, opt),
		cancelFlow:      connect.NewClient[api.CancelFlowRequest, api.CancelFlowResponse](httpClient, baseURL+AuthoringServiceCancelFlowProcedure, opt),
	}
}

type authoringServiceClient struct {
	startFlow       *connect.Client[api.StartFlowRequest, api.StartFlowResponse]
	applyFlowAction *connect.Client[api.ApplyFlowActionRequest, api.ApplyFlowActionResponse]
	cancelFlow      *connect.Client[api.CancelFlowRequest, api.CancelFlowResponse]
}

func (c *authoringServiceClient) StartFlow(ctx context.Context, req *connect.Request[api.StartFlowRequest]) (*connect.Response[api.StartFlowResponse], error) {
	return c.startFlow.CallUnary(ctx, req)
}

func (c *authoringServiceClient) ApplyFlowAction(ctx context.Context, req *connect.Request[api.ApplyFlowActionRequest]) (*connect.Response[api.ApplyFlowActionResponse], error) {
	return c.applyFlowAction.CallUnary(ctx, req)
}

func (c *authoringServiceClient) CancelFlow(ctx context.Context, req *connect.Request[api.CancelFlowRequest]) (*connect.Response[api.CancelFlowResponse], error) {
	return c.cancelFlow.CallUnary(ctx, req)
}
