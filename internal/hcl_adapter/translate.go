// This file translates single HCL blocks into the format-agnostic
// configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/taskflow/internal/config"
	"github.com/vk/taskflow/internal/ctxlog"
)

// translateTask converts a `task` block into a task definition.
func translateTask(ctx context.Context, block *hcl.Block) (*config.TaskDefinition, hcl.Diagnostics) {
	def := &config.TaskDefinition{Name: block.Labels[0], DeclRange: block.DefRange}
	ctxlog.FromContext(ctx).Debug("Translating HCL task block.", "task", def.Name)

	diags := checkName(block)
	content, moreDiags := block.Body.Content(taskSchema)
	diags = append(diags, moreDiags...)
	if moreDiags.HasErrors() {
		return nil, diags
	}

	diags = append(diags, decodeString(content, "description", &def.Description)...)
	diags = append(diags, decodeString(content, "handler", &def.Handler)...)
	if attr, ok := content.Attributes["run"]; ok {
		def.Run = attr.Expr
	}

	switch {
	case def.Run != nil && def.Handler != "":
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Conflicting task body",
			Detail:   fmt.Sprintf("Task %q sets both \"run\" and \"handler\"; exactly one is allowed.", def.Name),
			Subject:  &def.DeclRange,
		})
	case def.Run == nil && def.Handler == "":
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing task body",
			Detail:   fmt.Sprintf("Task %q must set either \"run\" or \"handler\".", def.Name),
			Subject:  &def.DeclRange,
		})
	}
	return def, diags
}

// translateDecision converts a `decision` block into a task definition with
// the decision flag set.
func translateDecision(ctx context.Context, block *hcl.Block) (*config.TaskDefinition, hcl.Diagnostics) {
	def := &config.TaskDefinition{Name: block.Labels[0], Decision: true, DeclRange: block.DefRange}
	ctxlog.FromContext(ctx).Debug("Translating HCL decision block.", "task", def.Name)

	diags := checkName(block)
	content, moreDiags := block.Body.Content(decisionSchema)
	diags = append(diags, moreDiags...)
	if moreDiags.HasErrors() {
		return nil, diags
	}

	def.Value = content.Attributes["value"].Expr
	def.Next = content.Attributes["next"].Expr
	diags = append(diags, decodeString(content, "description", &def.Description)...)

	if attr, ok := content.Attributes["branches"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &def.Branches)...)
		if !diags.HasErrors() && len(def.Branches) != 2 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid branches",
				Detail:   fmt.Sprintf("Decision %q lists %d branches; expected exactly two: the true branch and the false branch.", def.Name, len(def.Branches)),
				Subject:  attr.Expr.Range().Ptr(),
			})
		}
	}
	return def, diags
}

// translateFlow converts a `flow` block into a chain of steps.
func translateFlow(block *hcl.Block) (*config.Flow, hcl.Diagnostics) {
	var fb flowBlock
	diags := gohcl.DecodeBody(block.Body, nil, &fb)
	if diags.HasErrors() {
		return nil, diags
	}
	if len(fb.Steps) < 2 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Flow too short",
			Detail:   "A flow needs at least two steps to declare an edge.",
			Subject:  block.DefRange.Ptr(),
		})
	}
	return &config.Flow{Steps: fb.Steps, DeclRange: block.DefRange}, diags
}

func decodeString(content *hcl.BodyContent, name string, target *string) hcl.Diagnostics {
	attr, ok := content.Attributes[name]
	if !ok {
		return nil
	}
	return gohcl.DecodeExpression(attr.Expr, nil, target)
}

func checkName(block *hcl.Block) hcl.Diagnostics {
	name := block.Labels[0]
	if hclsyntax.ValidIdentifier(name) {
		return nil
	}
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Invalid task name",
		Detail:   fmt.Sprintf("%q is not a valid name; names must be identifiers.", name),
		Subject:  block.LabelRanges[0].Ptr(),
	}}
}
