// Package hclexpr collects HCL expressions and reports what they reference:
// root variables and called functions. The builder uses it to reject graph
// definitions that use names the evaluation context will not provide.
package hclexpr

import (
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Container is a thread-safe helper that gathers HCL expressions and provides
// analysis results, such as variable references and function calls.
type Container struct {
	mu          sync.RWMutex
	expressions []hcl.Expression
	analyzed    bool

	references      []hcl.Traversal
	calledFunctions []string
}

// NewContainer creates a container holding exprs.
func NewContainer(exprs ...hcl.Expression) *Container {
	c := &Container{}
	c.Add(exprs...)
	return c
}

// Add adds one or more expressions to the container for analysis.
// It safely ignores any nil expressions.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
			c.analyzed = false
		}
	}
}

func (c *Container) analyze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.analyzed {
		return
	}
	c.references, c.calledFunctions = extractReferencesAndFunctions(c.expressions...)
	c.analyzed = true
}

// References returns all unique variable traversals found in the expressions,
// sorted by their canonical text.
func (c *Container) References() []hcl.Traversal {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.references
}

// CalledFunctions returns the sorted names of all functions called.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calledFunctions
}

// Check reports a diagnostic for every reference whose root is not in vars
// and every call to a function missing from funcs.
func (c *Container) Check(vars map[string]bool, funcs map[string]bool) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, ref := range c.References() {
		if !vars[ref.RootName()] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown variable",
				Detail:   "There is no variable named \"" + ref.RootName() + "\". Task expressions can only refer to \"input\".",
				Subject:  ref.SourceRange().Ptr(),
			})
		}
	}
	for _, name := range c.CalledFunctions() {
		if !funcs[name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Call to unknown function",
				Detail:   "There is no function named \"" + name + "\".",
			})
		}
	}
	return diags
}
