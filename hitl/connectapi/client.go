package connectapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/contract-review/hitl"
)

// Client calls a remote approval service.
type Client struct {
	pending *connect.Client[emptypb.Empty, structpb.ListValue]
	answer  *connect.Client[structpb.Struct, wrapperspb.BoolValue]
}

func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		pending: connect.NewClient[emptypb.Empty, structpb.ListValue](httpClient, baseURL+PendingProcedure, opts...),
		answer:  connect.NewClient[structpb.Struct, wrapperspb.BoolValue](httpClient, baseURL+AnswerProcedure, opts...),
	}
}

// Pending lists the requests waiting on the server.
func (c *Client) Pending(ctx context.Context) ([]hitl.Request, error) {
	resp, err := c.pending.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return nil, fmt.Errorf("pending: %w", err)
	}

	data, err := json.Marshal(resp.Msg.AsSlice())
	if err != nil {
		return nil, err
	}

	var requests []hitl.Request
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("decode pending: %w", err)
	}
	return requests, nil
}

// Answer approves or rejects the pending request id.
func (c *Client) Answer(ctx context.Context, id string, approved bool) error {
	msg, err := structpb.NewStruct(map[string]any{
		"id":       id,
		"approved": approved,
	})
	if err != nil {
		return err
	}

	if _, err := c.answer.CallUnary(ctx, connect.NewRequest(msg)); err != nil {
		return fmt.Errorf("answer %s: %w", id, err)
	}
	return nil
}
