package hub

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Receive once a channel is closed and drained.
var ErrClosed = errors.New("channel closed")

// MessageChannel is a buffered channel bound to a parent context.
type MessageChannel[T any] struct {
	channel chan T
	context context.Context
	mu      sync.RWMutex
	closed  bool
}

func NewMessageChannel[T any](ctx context.Context, bufferSize int) *MessageChannel[T] {
	return &MessageChannel[T]{
		channel: make(chan T, bufferSize),
		context: ctx,
	}
}

// Send blocks until the message is buffered, ctx is done, or the channel's
// parent context ends. Sending on a closed channel reports ErrClosed.
func (mc *MessageChannel[T]) Send(ctx context.Context, message T) error {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if mc.closed {
		return ErrClosed
	}

	select {
	case mc.channel <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-mc.context.Done():
		return mc.context.Err()
	}
}

// Receive returns the next message. Buffered messages are still delivered
// after Close.
func (mc *MessageChannel[T]) Receive(ctx context.Context) (T, error) {
	var zero T

	select {
	case message, ok := <-mc.channel:
		if !ok {
			return zero, ErrClosed
		}
		return message, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (mc *MessageChannel[T]) Close() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if !mc.closed {
		mc.closed = true
		close(mc.channel)
	}
}

func (mc *MessageChannel[T]) IsClosed() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.closed
}

func (mc *MessageChannel[T]) QueueLength() int {
	return len(mc.channel)
}
