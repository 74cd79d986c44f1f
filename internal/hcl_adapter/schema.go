package hcl_adapter

import "github.com/hashicorp/hcl/v2"

const (
	blockTask     = "task"
	blockDecision = "decision"
	blockFlow     = "flow"
)

// fileSchema lists the top-level blocks of a graph file. Decoding through a
// schema, rather than a tagged struct, keeps task and decision blocks in the
// order they appear in the file.
var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockTask, LabelNames: []string{"name"}},
		{Type: blockDecision, LabelNames: []string{"name"}},
		{Type: blockFlow},
	},
}

var taskSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
		{Name: "run"},
		{Name: "handler"},
	},
}

var decisionSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
		{Name: "value", Required: true},
		{Name: "next", Required: true},
		{Name: "branches"},
	},
}

// flowBlock is the gohcl target of a `flow` block.
type flowBlock struct {
	Steps []string `hcl:"steps"`
}
