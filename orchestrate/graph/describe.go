package graph

import (
	"slices"

	"gopkg.in/yaml.v3"
)

// Description is a serializable view of a graph.
type Description struct {
	Name      string            `json:"name" yaml:"name"`
	Entry     string            `json:"entry" yaml:"entry"`
	Terminals []string          `json:"terminals" yaml:"terminals"`
	Nodes     []string          `json:"nodes" yaml:"nodes"`
	Edges     []EdgeDescription `json:"edges" yaml:"edges"`
	Loops     []LoopRegion      `json:"loops,omitempty" yaml:"loops,omitempty"`
}

type EdgeDescription struct {
	Kind       EdgeKind `json:"kind" yaml:"kind"`
	From       string   `json:"from,omitempty" yaml:"from,omitempty"`
	To         string   `json:"to,omitempty" yaml:"to,omitempty"`
	Sources    []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	Targets    []string `json:"targets,omitempty" yaml:"targets,omitempty"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Expression string   `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// Describe returns the graph structure. Predicates are represented by their
// edge names and CEL sources only.
func (g *Graph) Describe() Description {
	d := Description{
		Name:      g.name,
		Entry:     g.entry,
		Terminals: slices.Clone(g.terminals),
		Nodes:     slices.Clone(g.order),
		Loops:     g.Loops(),
	}

	for _, e := range g.edges {
		ed := EdgeDescription{
			Kind:       e.Kind,
			From:       e.From,
			To:         e.To,
			Sources:    slices.Clone(e.Sources),
			Targets:    slices.Clone(e.Targets),
			Expression: e.Expression,
		}
		if e.Expression == "" {
			ed.Name = e.Name
		}
		d.Edges = append(d.Edges, ed)
	}

	return d
}

// YAML renders the description.
func (d Description) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}
