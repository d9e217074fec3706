package graph

import "errors"

var (
	// ErrInvalidGraph is wrapped by every structural error reported while
	// building or validating a graph.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrInputType reports a node input or predicate subject of an
	// unexpected type.
	ErrInputType = errors.New("unexpected input type")
)
