package graph

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks the graph structure and returns every problem found,
// joined. Each wraps ErrInvalidGraph.
func (g *Graph) Validate() error {
	if len(g.nodes) == 0 {
		return fmt.Errorf("%w: graph has no nodes", ErrInvalidGraph)
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidGraph}, args...)...))
	}

	if g.entry == "" {
		fail("entry point not set")
	}

	if len(g.terminals) == 0 {
		fail("no terminal nodes set")
	}

	for _, e := range g.edges {
		for _, n := range slices.Concat(successors(e), []string{e.From}, e.Sources) {
			if n == "" {
				continue
			}
			if _, ok := g.nodes[n]; !ok {
				fail("edge %s references unknown node %s", e.Label(), n)
			}
		}
	}

	for _, name := range g.order {
		outgoing := len(g.Outgoing(name))
		switch {
		case g.IsTerminal(name) && outgoing > 0:
			fail("terminal %s has %d outgoing edges", name, outgoing)
		case !g.IsTerminal(name) && outgoing == 0:
			fail("node %s has no outgoing edges and is not terminal", name)
		}
	}

	fanIns := make(map[string]int)
	incoming := make(map[string]int)
	for _, e := range g.edges {
		if e.Kind == EdgeFanIn {
			fanIns[e.To]++
			continue
		}
		for _, n := range successors(e) {
			incoming[n]++
		}
	}
	for target, count := range fanIns {
		if count > 1 {
			fail("node %s is the target of %d fan-in edges", target, count)
		}
		if incoming[target] > 0 {
			fail("fan-in target %s has %d other incoming edges", target, incoming[target])
		}
	}

	for _, e := range g.edges {
		if e.Kind != EdgeLoopBack {
			continue
		}
		region, ok := g.RegionOf(e.To)
		if !ok || !region.Contains(e.From) {
			fail("loop-back edge %s is outside a loop region", e.Label())
		}
	}

	if g.entry != "" {
		reachable := g.reachableFrom(g.entry)
		for _, t := range g.terminals {
			if !reachable[t] {
				fail("terminal %s is unreachable from entry point %s", t, g.entry)
			}
		}
	}

	return errors.Join(errs...)
}

func (g *Graph) reachableFrom(start string) map[string]bool {
	seen := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, e := range g.Outgoing(current) {
			for _, next := range successors(e) {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
	}

	return seen
}
