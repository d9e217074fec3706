package graph

import "fmt"

// EdgeKind classifies an edge.
type EdgeKind string

const (
	EdgePlain       EdgeKind = "plain"
	EdgeConditional EdgeKind = "conditional"
	EdgeFanOut      EdgeKind = "fan-out"
	EdgeFanIn       EdgeKind = "fan-in"
	EdgeLoopBack    EdgeKind = "loop-back"
)

// Predicate decides whether a conditional edge is followed for a source
// output. An error aborts the run.
type Predicate func(output any) (bool, error)

// Edge is a transition between nodes. Plain, conditional and loop-back edges
// use From and To; fan-out edges use From and Targets; fan-in edges use
// Sources and To.
type Edge struct {
	Kind EdgeKind

	From string
	To   string

	Targets []string
	Sources []string

	// Name is an optional identifier, typically describing the predicate
	// (e.g. "low-risk", "continue")
	Name string

	// Expression is the CEL source of an expression edge
	Expression string

	// Predicate is nil for unconditional edges
	Predicate Predicate
}

// Conditional reports whether the edge takes part in predicate resolution.
func (e Edge) Conditional() bool {
	return e.Kind == EdgeConditional || e.Kind == EdgeLoopBack
}

// Label identifies the edge in events and errors.
func (e Edge) Label() string {
	switch e.Kind {
	case EdgeFanOut:
		return fmt.Sprintf("%s -> %v", e.From, e.Targets)
	case EdgeFanIn:
		return fmt.Sprintf("%v -> %s", e.Sources, e.To)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s -[%s]-> %s", e.From, e.Name, e.To)
	}
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}

// Always is a predicate that always holds.
func Always() Predicate {
	return func(any) (bool, error) { return true, nil }
}

// When builds a predicate over a typed output. An output that is not a T
// fails with ErrInputType.
func When[T any](fn func(T) bool) Predicate {
	return func(output any) (bool, error) {
		v, ok := output.(T)
		if !ok {
			var want T
			return false, fmt.Errorf("%w: predicate expects %T, got %T", ErrInputType, want, output)
		}
		return fn(v), nil
	}
}

func Not(p Predicate) Predicate {
	return func(output any) (bool, error) {
		ok, err := p(output)
		return !ok && err == nil, err
	}
}

func And(predicates ...Predicate) Predicate {
	return func(output any) (bool, error) {
		for _, p := range predicates {
			ok, err := p(output)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

func Or(predicates ...Predicate) Predicate {
	return func(output any) (bool, error) {
		for _, p := range predicates {
			ok, err := p(output)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}
