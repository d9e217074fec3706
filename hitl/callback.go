package hitl

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// CallbackTransport parks requests until the host answers them through
// Answer. Pending lists what is waiting, so a server or UI can poll it.
type CallbackTransport struct {
	mu      sync.Mutex
	pending map[string]*parked

	// Notify, if set, is called with each new request before Ask blocks.
	Notify func(Request)
}

type parked struct {
	req Request
	ch  chan bool
}

func NewCallbackTransport() *CallbackTransport {
	return &CallbackTransport{
		pending: make(map[string]*parked),
	}
}

func (t *CallbackTransport) Ask(ctx context.Context, req Request) (bool, error) {
	p := &parked{req: req, ch: make(chan bool, 1)}

	t.mu.Lock()
	t.pending[req.ID] = p
	notify := t.Notify
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, req.ID)
		t.mu.Unlock()
	}()

	if notify != nil {
		notify(req)
	}

	select {
	case approved := <-p.ch:
		return approved, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Pending returns the requests awaiting an answer, oldest first.
func (t *CallbackTransport) Pending() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Request, 0, len(t.pending))
	for _, p := range t.pending {
		out = append(out, p.req)
	}
	slices.SortFunc(out, func(a, b Request) int {
		if c := a.AskedAt.Compare(b.AskedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Answer delivers the decision for the pending request id.
func (t *CallbackTransport) Answer(id string, approved bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}

	select {
	case p.ch <- approved:
		delete(t.pending, id)
		return nil
	default:
		return fmt.Errorf("%w: %s already answered", ErrUnknownRequest, id)
	}
}
