package hclexpr_test

import (
	"sync"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/hclexpr"
)

// parseExpr is a test helper to quickly get an hcl.Expression from a string.
func parseExpr(t *testing.T, exprStr string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(exprStr), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Expression parsing failed: %s", diags.Error())
	return expr
}

func TestContainer_AddAndExtract(t *testing.T) {
	c := hclexpr.NewContainer(
		parseExpr(t, `upper("hello")`),
		parseExpr(t, `input.name`),
		parseExpr(t, `lower(input.label)`),
		parseExpr(t, `input.name`), // Duplicate reference
		nil,
	)

	require.Equal(t, []string{"lower", "upper"}, c.CalledFunctions())

	refs := c.References()
	require.Len(t, refs, 2)
	require.Equal(t, []string{"input.label", "input.name"}, []string{
		hclexpr.TraversalKey(refs[0]),
		hclexpr.TraversalKey(refs[1]),
	})
}

func TestContainer_NestedFunctionCalls(t *testing.T) {
	c := hclexpr.NewContainer(
		parseExpr(t, `[for x in input : abs(x) if x > max(0, 1)]`),
		parseExpr(t, `input[0] > 1 ? "a${upper("b")}" : sum(input)`),
	)

	require.Equal(t, []string{"abs", "max", "sum", "upper"}, c.CalledFunctions())
}

func TestContainer_FunctionsInObjectKeysAndTemplateLoops(t *testing.T) {
	c := hclexpr.NewContainer(
		parseExpr(t, `{ (lower(input.key)) = 1 }`),
		parseExpr(t, `"%{ for name in input.names }${upper(name)} %{ endfor }"`),
	)

	require.Equal(t, []string{"lower", "upper"}, c.CalledFunctions())

	var unknown []string
	for _, diag := range c.Check(map[string]bool{"input": true}, map[string]bool{}) {
		if diag.Summary == "Call to unknown function" {
			unknown = append(unknown, diag.Detail)
		}
	}
	require.Equal(t, []string{
		`There is no function named "lower".`,
		`There is no function named "upper".`,
	}, unknown)
}

func TestContainer_AddAfterExtract(t *testing.T) {
	c := hclexpr.NewContainer(parseExpr(t, `input + 1`))
	require.Len(t, c.References(), 1)

	c.Add(parseExpr(t, `other`))
	require.Len(t, c.References(), 2, "adding expressions invalidates the cached analysis")
}

func TestContainer_Check(t *testing.T) {
	vars := map[string]bool{"input": true}
	funcs := map[string]bool{"sum": true}

	ok := hclexpr.NewContainer(parseExpr(t, `sum(input) + 1`))
	require.False(t, ok.Check(vars, funcs).HasErrors())

	bad := hclexpr.NewContainer(parseExpr(t, `nope(var.x)`))
	diags := bad.Check(vars, funcs)
	require.Len(t, diags, 2)
	require.Equal(t, "Unknown variable", diags[0].Summary)
	require.Equal(t, "Call to unknown function", diags[1].Summary)
}

func TestContainer_ConcurrentReads(t *testing.T) {
	c := hclexpr.NewContainer(parseExpr(t, `upper(input.a) + input.b`))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, c.References(), 2)
			assert.Equal(t, []string{"upper"}, c.CalledFunctions())
		}()
	}
	wg.Wait()
}
