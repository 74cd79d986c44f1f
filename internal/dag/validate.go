package dag

import (
	"fmt"
	"slices"
	"strings"
)

// color is the DFS mark of a task during cycle detection.
type color int

const (
	white color = iota // unvisited
	gray               // on the current path
	black              // fully explored, no cycle through it
)

// CheckAcyclic reports whether the graph's edge set contains no cycle.
func CheckAcyclic(g *Graph) bool {
	return findCycle(g.snapshot()) == nil
}

// Validate returns an error wrapping ErrCyclicGraph, with one cycle path, if
// the graph is not acyclic.
func (g *Graph) Validate() error {
	if cycle := findCycle(g.snapshot()); cycle != nil {
		return fmt.Errorf("%w: %s", ErrCyclicGraph, strings.Join(cycle, " -> "))
	}
	return nil
}

// findCycle runs a three-colour depth-first search from every task in
// registration order and returns the first cycle found as a closed path
// (first and last element equal), or nil. The search keeps its own stack, so
// graph depth is bounded by memory rather than the goroutine stack.
func findCycle(t *topology) []string {
	type frame struct {
		name string
		next int
	}

	colors := make(map[string]color, len(t.order))

	for _, root := range t.order {
		if colors[root] != white {
			continue
		}

		colors[root] = gray
		stack := []frame{{name: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := t.edges[top.name]
			if top.next >= len(succ) {
				colors[top.name] = black
				stack = stack[:len(stack)-1]
				continue
			}

			child := succ[top.next]
			top.next++
			if _, ok := t.tasks[child]; !ok {
				continue
			}

			switch colors[child] {
			case gray:
				i := slices.IndexFunc(stack, func(f frame) bool { return f.name == child })
				path := make([]string, 0, len(stack)-i+1)
				for _, f := range stack[i:] {
					path = append(path, f.name)
				}
				return append(path, child)
			case white:
				colors[child] = gray
				stack = append(stack, frame{name: child})
			}
		}
	}

	return nil
}
