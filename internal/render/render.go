// Package render exports the structure of a graph: a plain edge listing,
// Graphviz DOT, or HCL flow blocks that the loader can read back.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/taskflow/internal/dag"
	"github.com/zclconf/go-cty/cty"
)

// Format selects the output of Write.
type Format string

const (
	FormatNone Format = "none"
	FormatText Format = "text"
	FormatDOT  Format = "dot"
	FormatHCL  Format = "hcl"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatNone, FormatText, FormatDOT, FormatHCL:
		return f, nil
	case "":
		return FormatNone, nil
	default:
		return "", fmt.Errorf("unknown render format %q (want none, text, dot or hcl)", s)
	}
}

// Write renders g to w in the given format. FormatNone writes nothing.
func Write(w io.Writer, g *dag.Graph, format Format) error {
	switch format {
	case FormatNone, "":
		return nil
	case FormatText:
		return writeText(w, g)
	case FormatDOT:
		return writeDOT(w, g)
	case FormatHCL:
		return writeHCL(w, g)
	default:
		return fmt.Errorf("unknown render format %q", format)
	}
}

// writeText lists one `source --> destination` line per edge. A task with no
// edges at all is listed on its own.
func writeText(w io.Writer, g *dag.Graph) error {
	var b strings.Builder
	linked := make(map[string]bool)
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "%s --> %s\n", e.From, e.To)
		linked[e.From], linked[e.To] = true, true
	}
	for _, name := range g.Tasks() {
		if !linked[name] {
			fmt.Fprintln(&b, name)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDOT(w io.Writer, g *dag.Graph) error {
	var b strings.Builder
	b.WriteString("digraph taskflow {\n")
	b.WriteString("  rankdir=LR;\n")

	for _, name := range g.Tasks() {
		attrs := []string{}
		if g.IsDecision(name) {
			attrs = append(attrs, "shape=diamond")
		}
		if name == g.Start() {
			attrs = append(attrs, "style=bold")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&b, "  %s;\n", strconv.Quote(name))
			continue
		}
		fmt.Fprintf(&b, "  %s [%s];\n", strconv.Quote(name), strings.Join(attrs, ", "))
	}

	for _, e := range g.Edges() {
		label := ""
		if br, ok := g.Branches(e.From); ok {
			switch e.To {
			case br.True:
				label = ` [label="true"]`
			case br.False:
				label = ` [label="false"]`
			}
		}
		fmt.Fprintf(&b, "  %s -> %s%s;\n", strconv.Quote(e.From), strconv.Quote(e.To), label)
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// writeHCL emits one two-step flow block per edge, in edge order, so loading
// the output yields the same edge set.
func writeHCL(w io.Writer, g *dag.Graph) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	first := true
	for _, e := range g.Edges() {
		if !first {
			body.AppendNewline()
		}
		first = false
		flow := body.AppendNewBlock("flow", nil).Body()
		flow.SetAttributeValue("steps", cty.ListVal([]cty.Value{
			cty.StringVal(e.From),
			cty.StringVal(e.To),
		}))
	}

	_, err := f.WriteTo(w)
	return err
}
