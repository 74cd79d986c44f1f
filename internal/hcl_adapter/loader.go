package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/taskflow/internal/config"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL graph loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the entire HCL loading process. Every path may be a file
// or a directory searched for .hcl files; files are read in lexical order and
// their blocks merged into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFiles(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := l.merge(ctx, model, file, hclFile); err != nil {
			return nil, err
		}
	}

	if err := validate(model); err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "tasks", len(model.Tasks), "flows", len(model.Flows))
	return model, nil
}

// LoadSource parses a single in-memory graph file. filename is used only in
// diagnostics.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	model := &config.Model{}
	if err := l.merge(ctx, model, filename, hclFile); err != nil {
		return nil, err
	}
	if err := validate(model); err != nil {
		return nil, err
	}
	return model, nil
}

// merge decodes the blocks of one file and appends them to model in source
// order.
func (l *Loader) merge(ctx context.Context, model *config.Model, filename string, file *hcl.File) error {
	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	for _, block := range content.Blocks {
		var blockDiags hcl.Diagnostics
		switch block.Type {
		case blockTask:
			var def *config.TaskDefinition
			def, blockDiags = translateTask(ctx, block)
			if def != nil {
				model.Tasks = append(model.Tasks, def)
			}
		case blockDecision:
			var def *config.TaskDefinition
			def, blockDiags = translateDecision(ctx, block)
			if def != nil {
				model.Tasks = append(model.Tasks, def)
			}
		case blockFlow:
			var flow *config.Flow
			flow, blockDiags = translateFlow(block)
			if flow != nil {
				model.Flows = append(model.Flows, flow)
			}
		}
		diags = append(diags, blockDiags...)
	}

	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	return nil
}

// validate runs the checks that span files: task names are unique across the
// whole model.
func validate(model *config.Model) error {
	var diags hcl.Diagnostics
	seen := make(map[string]*config.TaskDefinition, len(model.Tasks))
	for _, def := range model.Tasks {
		if prev, ok := seen[def.Name]; ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate task name",
				Detail:   fmt.Sprintf("A task named %q was already declared at %s.", def.Name, prev.DeclRange),
				Subject:  def.DeclRange.Ptr(),
			})
			continue
		}
		seen[def.Name] = def
	}
	if diags.HasErrors() {
		return fmt.Errorf("invalid graph definition: %w", diags)
	}
	return nil
}
