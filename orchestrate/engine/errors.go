package engine

import (
	"errors"
	"fmt"
)

var (
	ErrCancelled        = errors.New("run cancelled")
	ErrMaxSteps         = errors.New("max steps exceeded")
	ErrNoTerminalOutput = errors.New("run ended without terminal output")
	ErrConflictingEdges = errors.New("conflicting conditional edges")
)

// ExecutionError describes a failed run.
type ExecutionError struct {
	Node string
	Path []string
	Step int
	Err  error
}

func (e *ExecutionError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("execution failed at step %d: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("execution failed at node %s (step %d): %v", e.Node, e.Step, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
