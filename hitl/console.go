package hitl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ConsoleTransport prompts on w and reads a yes/no answer from r. Anything
// other than "y" or "yes" rejects.
//
// A single goroutine owns the reader for the transport's lifetime, so a
// request abandoned on timeout never consumes the answer meant for the next
// one. Hosts that build several kernels over the same stream share one
// ConsoleTransport between them.
type ConsoleTransport struct {
	mu     sync.Mutex
	reader *bufio.Reader
	writer io.Writer

	start   sync.Once
	lines   chan string
	readErr error // set before lines is closed
}

func NewConsoleTransport(r io.Reader, w io.Writer) *ConsoleTransport {
	return &ConsoleTransport{
		reader: bufio.NewReader(r),
		writer: w,
		lines:  make(chan string),
	}
}

func (t *ConsoleTransport) read() {
	defer close(t.lines)
	for {
		line, err := t.reader.ReadString('\n')
		if line != "" {
			t.lines <- line
		}
		if err != nil {
			t.readErr = err
			return
		}
	}
}

func (t *ConsoleTransport) Ask(ctx context.Context, req Request) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	t.mu.Lock()
	fmt.Fprintf(t.writer, "\n%s\n", req.Summary())
	fmt.Fprintf(t.writer, "Risk summary: %s\n", req.Risk.Summary)
	fmt.Fprintf(t.writer, "Answer by %s [y/N]: ", req.Deadline.Local().Format("15:04:05"))
	t.mu.Unlock()

	t.start.Do(func() { go t.read() })

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case line, ok := <-t.lines:
		if !ok {
			return false, fmt.Errorf("read answer: %w", t.readErr)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
