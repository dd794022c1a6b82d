package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/royaltysplit/internal/authoring"
	"github.com/mmynk/royaltysplit/internal/middleware"
	"github.com/mmynk/royaltysplit/internal/royalty"
	"github.com/mmynk/royaltysplit/internal/storage"
	"github.com/mmynk/royaltysplit/pkg/api"
)

var errNoArtist = errors.New("no artist in request context")

// artistFrom returns the calling artist set by the auth interceptor.
func artistFrom(ctx context.Context) (string, error) {
	artistID := middleware.GetArtistID(ctx)
	if artistID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errNoArtist)
	}
	return artistID, nil
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, authoring.ErrSessionNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, authoring.ErrWrongStep), errors.Is(err, authoring.ErrFlowClosed),
		errors.Is(err, authoring.ErrNoConditionType):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, royalty.ErrConditionMismatch):
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	switch royalty.KindOf(err) {
	case royalty.KindInvalidRange, royalty.KindSumMismatch, royalty.KindCategoryInvalid, royalty.KindInvalidThreshold:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case royalty.KindNotFound:
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// flowErrorOf reports errors a user can correct without leaving the current
// step. Anything else is returned as an RPC error.
func flowErrorOf(err error) *api.FlowError {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return nil
	}
	kind := string(royalty.KindOf(err))
	switch {
	case errors.Is(err, authoring.ErrFlowClosed):
		return nil
	case errors.Is(err, authoring.ErrWrongStep):
		kind = "wrong_step"
	case errors.Is(err, authoring.ErrNoConditionType):
		kind = "no_condition_type"
	}
	if kind == "" {
		return nil
	}
	return &api.FlowError{Kind: kind, Message: err.Error()}
}

// invalidArgument is shorthand for a request field that failed validation.
func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}
