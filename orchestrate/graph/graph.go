package graph

import (
	"fmt"
	"slices"
)

// LoopRegion names a cyclic sub-graph. Loop-back edges may only run from
// the head or a member back to the head.
type LoopRegion struct {
	Name    string   `json:"name" yaml:"name"`
	Head    string   `json:"head" yaml:"head"`
	Members []string `json:"members" yaml:"members"`
}

// Contains reports whether name is the head or a member of the region.
func (r LoopRegion) Contains(name string) bool {
	return name == r.Head || slices.Contains(r.Members, name)
}

// Graph is a workflow definition. Build it with the Add* and Set* methods,
// then Validate it before execution. A Graph is not safe for concurrent
// modification; once built it is read-only and may be shared.
type Graph struct {
	name      string
	nodes     map[string]Node
	order     []string
	edges     []Edge
	entry     string
	terminals []string
	loops     []LoopRegion
}

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{
		name:  name,
		nodes: make(map[string]Node),
	}
}

func (g *Graph) Name() string {
	return g.name
}

// AddNode registers node under node.Name().
func (g *Graph) AddNode(node Node) error {
	if node == nil {
		return fmt.Errorf("%w: node cannot be nil", ErrInvalidGraph)
	}

	name := node.Name()
	if name == "" {
		return fmt.Errorf("%w: node name cannot be empty", ErrInvalidGraph)
	}

	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("%w: node %s already exists", ErrInvalidGraph, name)
	}

	g.nodes[name] = node
	g.order = append(g.order, name)
	return nil
}

// Node returns the node registered under name.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns node names in registration order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.order)
}

// AddEdge adds an unconditional transition.
func (g *Graph) AddEdge(from, to string) error {
	if err := g.requireNodes(from, to); err != nil {
		return err
	}

	g.edges = append(g.edges, Edge{Kind: EdgePlain, From: from, To: to})
	return nil
}

// AddConditionalEdge adds a transition followed when predicate holds for the
// output of from.
func (g *Graph) AddConditionalEdge(from, to, name string, predicate Predicate) error {
	if err := g.requireNodes(from, to); err != nil {
		return err
	}

	if predicate == nil {
		return fmt.Errorf("%w: conditional edge %s -> %s has no predicate", ErrInvalidGraph, from, to)
	}

	g.edges = append(g.edges, Edge{
		Kind:      EdgeConditional,
		From:      from,
		To:        to,
		Name:      name,
		Predicate: predicate,
	})
	return nil
}

// AddExpressionEdge adds a conditional transition whose predicate is the CEL
// expression expr. See Expression.
func (g *Graph) AddExpressionEdge(from, to, expr string) error {
	if err := g.requireNodes(from, to); err != nil {
		return err
	}

	predicate, err := Expression(expr)
	if err != nil {
		return err
	}

	g.edges = append(g.edges, Edge{
		Kind:       EdgeConditional,
		From:       from,
		To:         to,
		Name:       expr,
		Expression: expr,
		Predicate:  predicate,
	})
	return nil
}

// AddFanOutEdge dispatches every target concurrently with the output of from.
func (g *Graph) AddFanOutEdge(from string, targets ...string) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: fan-out from %s has no targets", ErrInvalidGraph, from)
	}

	if err := g.requireNodes(append([]string{from}, targets...)...); err != nil {
		return err
	}

	if hasDuplicates(targets) {
		return fmt.Errorf("%w: fan-out from %s repeats a target", ErrInvalidGraph, from)
	}

	g.edges = append(g.edges, Edge{Kind: EdgeFanOut, From: from, Targets: slices.Clone(targets)})
	return nil
}

// AddFanInEdge runs to once every source has produced an output in the same
// loop pass. The outputs are delivered in the order of sources.
func (g *Graph) AddFanInEdge(sources []string, to string) error {
	if len(sources) == 0 {
		return fmt.Errorf("%w: fan-in to %s has no sources", ErrInvalidGraph, to)
	}

	if err := g.requireNodes(append(slices.Clone(sources), to)...); err != nil {
		return err
	}

	if hasDuplicates(sources) {
		return fmt.Errorf("%w: fan-in to %s repeats a source", ErrInvalidGraph, to)
	}

	g.edges = append(g.edges, Edge{Kind: EdgeFanIn, Sources: slices.Clone(sources), To: to})
	return nil
}

// AddLoopRegion declares a cyclic sub-graph entered at head.
func (g *Graph) AddLoopRegion(name, head string, members ...string) error {
	if name == "" {
		return fmt.Errorf("%w: loop region name cannot be empty", ErrInvalidGraph)
	}

	if err := g.requireNodes(append([]string{head}, members...)...); err != nil {
		return err
	}

	for _, region := range g.loops {
		if region.Name == name {
			return fmt.Errorf("%w: loop region %s already exists", ErrInvalidGraph, name)
		}
		for _, n := range append([]string{head}, members...) {
			if region.Contains(n) {
				return fmt.Errorf("%w: node %s already belongs to loop region %s", ErrInvalidGraph, n, region.Name)
			}
		}
	}

	g.loops = append(g.loops, LoopRegion{Name: name, Head: head, Members: slices.Clone(members)})
	return nil
}

// AddLoopBackEdge returns from a loop region member to the region head when
// predicate holds. The target pass is incremented.
func (g *Graph) AddLoopBackEdge(from, to, name string, predicate Predicate) error {
	if err := g.requireNodes(from, to); err != nil {
		return err
	}

	if predicate == nil {
		return fmt.Errorf("%w: loop-back edge %s -> %s has no predicate", ErrInvalidGraph, from, to)
	}

	region, ok := g.RegionOf(to)
	if !ok {
		return fmt.Errorf("%w: loop-back target %s is not a loop region head", ErrInvalidGraph, to)
	}

	if !region.Contains(from) {
		return fmt.Errorf("%w: loop-back source %s is outside loop region %s", ErrInvalidGraph, from, region.Name)
	}

	g.edges = append(g.edges, Edge{
		Kind:      EdgeLoopBack,
		From:      from,
		To:        to,
		Name:      name,
		Predicate: predicate,
	})
	return nil
}

func (g *Graph) SetEntryPoint(name string) error {
	if name == "" {
		return fmt.Errorf("%w: entry point cannot be empty", ErrInvalidGraph)
	}

	if g.entry != "" {
		return fmt.Errorf("%w: entry point already set to %s", ErrInvalidGraph, g.entry)
	}

	if err := g.requireNodes(name); err != nil {
		return err
	}

	g.entry = name
	return nil
}

// SetTerminal marks name as a terminal node. Its output is the run output.
func (g *Graph) SetTerminal(name string) error {
	if err := g.requireNodes(name); err != nil {
		return err
	}

	if !slices.Contains(g.terminals, name) {
		g.terminals = append(g.terminals, name)
	}
	return nil
}

func (g *Graph) EntryPoint() string {
	return g.entry
}

func (g *Graph) IsTerminal(name string) bool {
	return slices.Contains(g.terminals, name)
}

func (g *Graph) Terminals() []string {
	return slices.Clone(g.terminals)
}

func (g *Graph) Loops() []LoopRegion {
	return slices.Clone(g.loops)
}

// RegionOf returns the loop region headed by head.
func (g *Graph) RegionOf(head string) (LoopRegion, bool) {
	for _, region := range g.loops {
		if region.Head == head {
			return region, true
		}
	}
	return LoopRegion{}, false
}

// Outgoing returns the edges leaving name in declaration order, including
// fan-in edges that list name as a source.
func (g *Graph) Outgoing(name string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == name || (e.Kind == EdgeFanIn && slices.Contains(e.Sources, name)) {
			out = append(out, e)
		}
	}
	return out
}

// Edges returns every edge in declaration order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

func (g *Graph) requireNodes(names ...string) error {
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("%w: node name cannot be empty", ErrInvalidGraph)
		}
		if _, exists := g.nodes[name]; !exists {
			return fmt.Errorf("%w: node %s does not exist", ErrInvalidGraph, name)
		}
	}
	return nil
}

func successors(e Edge) []string {
	if e.Kind == EdgeFanOut {
		return e.Targets
	}
	return []string{e.To}
}

func hasDuplicates(names []string) bool {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return true
		}
		seen[n] = true
	}
	return false
}
