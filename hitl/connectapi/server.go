package connectapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/contract-review/hitl"
)

const (
	ServiceName = "contractreview.approval.v1.ApprovalService"

	PendingProcedure = "/" + ServiceName + "/Pending"
	AnswerProcedure  = "/" + ServiceName + "/Answer"
)

type service struct {
	transport *hitl.CallbackTransport
}

// NewHandler returns the service path and its handler for mounting on a mux.
func NewHandler(transport *hitl.CallbackTransport, opts ...connect.HandlerOption) (string, http.Handler) {
	svc := &service{transport: transport}

	mux := http.NewServeMux()
	mux.Handle(PendingProcedure, connect.NewUnaryHandler(PendingProcedure, svc.pending, opts...))
	mux.Handle(AnswerProcedure, connect.NewUnaryHandler(AnswerProcedure, svc.answer, opts...))
	return "/" + ServiceName + "/", mux
}

func (s *service) pending(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[structpb.ListValue], error) {
	items, err := toList(s.transport.Pending())
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(items), nil
}

func (s *service) answer(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[wrapperspb.BoolValue], error) {
	fields := req.Msg.GetFields()

	id := fields["id"].GetStringValue()
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}

	approved, ok := fields["approved"].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("approved must be a boolean"))
	}

	if err := s.transport.Answer(id, approved.BoolValue); err != nil {
		if errors.Is(err, hitl.ErrUnknownRequest) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(wrapperspb.Bool(approved.BoolValue)), nil
}

func toList(requests []hitl.Request) (*structpb.ListValue, error) {
	data, err := json.Marshal(requests)
	if err != nil {
		return nil, err
	}

	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return structpb.NewList(items)
}

// ListenAndServe serves the approval service on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr string, transport *hitl.CallbackTransport) error {
	path, handler := NewHandler(transport)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("approval server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("approval server shutdown: %w", err)
		}
		return nil
	}
}
