package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of a graph
// definition: its tasks in declaration order and the flows linking them.
type Model struct {
	Tasks []*TaskDefinition
	Flows []*Flow
}

// TaskDefinition is the format-agnostic representation of a `task` or
// `decision` block.
type TaskDefinition struct {
	Name        string
	Description string
	Decision    bool

	// Handler names a Go handler. Empty when the task is an expression.
	Handler string
	// Run is the expression evaluated for an ordinary task.
	Run hcl.Expression

	// Value and Next are the expressions of a decision task.
	Value    hcl.Expression
	Next     hcl.Expression
	Branches []string

	// DeclRange points at the block header, for diagnostics.
	DeclRange hcl.Range
}

// Flow is a chain of edges: every step links to the one after it.
type Flow struct {
	Steps     []string
	DeclRange hcl.Range
}

// Task returns the definition with the given name, or nil.
func (m *Model) Task(name string) *TaskDefinition {
	for _, t := range m.Tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Edges returns every edge declared by the flows, in declaration order.
func (m *Model) Edges() [][2]string {
	var out [][2]string
	for _, f := range m.Flows {
		for i := 0; i+1 < len(f.Steps); i++ {
			out = append(out, [2]string{f.Steps[i], f.Steps[i+1]})
		}
	}
	return out
}
