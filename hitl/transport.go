package hitl

import "context"

// Transport delivers a request to the approver and waits for the answer.
// Implementations should return when ctx is done; the Gateway stops waiting
// either way.
type Transport interface {
	Ask(ctx context.Context, req Request) (bool, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req Request) (bool, error)

func (f TransportFunc) Ask(ctx context.Context, req Request) (bool, error) {
	return f(ctx, req)
}

// AutoTransport answers every request with Approve. Used for
// non-interactive runs.
type AutoTransport struct {
	Approve bool
}

func (t AutoTransport) Ask(ctx context.Context, _ Request) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return t.Approve, nil
}
