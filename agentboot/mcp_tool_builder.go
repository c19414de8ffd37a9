package agentboot

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
)

// MCPToolBuilder declares a tool's JSON schema and handler. Required
// parameters keep the order they were added in.
type MCPToolBuilder struct {
	tool MCPTool
}

func NewMCPToolBuilder(name, description string) *MCPToolBuilder {
	tool := MCPTool{Tool: api.Tool{Type: "function"}}
	tool.Function.Name = name
	tool.Function.Description = description
	tool.Function.Parameters.Type = "object"
	tool.Function.Parameters.Properties = map[string]api.ToolProperty{}
	return &MCPToolBuilder{tool: tool}
}

func (b *MCPToolBuilder) StringParam(name, desc string, required bool) *MCPToolBuilder {
	return b.param(name, "string", desc, required, nil)
}

func (b *MCPToolBuilder) IntParam(name, desc string, required bool) *MCPToolBuilder {
	return b.param(name, "integer", desc, required, nil)
}

func (b *MCPToolBuilder) BoolParam(name, desc string, required bool) *MCPToolBuilder {
	return b.param(name, "boolean", desc, required, nil)
}

// StringSliceParam declares an array of strings, e.g. Ensembl or ChEMBL ids.
func (b *MCPToolBuilder) StringSliceParam(name, desc string, required bool) *MCPToolBuilder {
	return b.param(name, "array", desc, required, map[string]any{"type": "string"})
}

// Summarize lets the agent condense long results with its mini model.
func (b *MCPToolBuilder) Summarize(enabled bool) *MCPToolBuilder {
	b.tool.SummarizeContext = enabled
	return b
}

func (b *MCPToolBuilder) WithHandler(fn func(ctx context.Context, params api.ToolCallFunctionArguments) <-chan *schema.ToolResultChunk) *MCPToolBuilder {
	b.tool.Handler = fn
	return b
}

func (b *MCPToolBuilder) Build() MCPTool {
	return b.tool
}

func (b *MCPToolBuilder) param(name, kind, desc string, required bool, items any) *MCPToolBuilder {
	params := &b.tool.Function.Parameters
	params.Properties[name] = api.ToolProperty{
		Type:        api.PropertyType{kind},
		Items:       items,
		Description: desc,
	}
	if required && !slices.Contains(params.Required, name) {
		params.Required = append(params.Required, name)
	}
	return b
}

// ToolResultChunkBuilder assembles one chunk of a tool's output.
type ToolResultChunkBuilder struct {
	chk *schema.ToolResultChunk
}

func NewToolResultChunk() *ToolResultChunkBuilder {
	return &ToolResultChunkBuilder{
		chk: &schema.ToolResultChunk{
			Metadata: make(map[string]string),
		},
	}
}

// Sentences appends non-blank lines.
func (b *ToolResultChunkBuilder) Sentences(sentences ...string) *ToolResultChunkBuilder {
	for _, s := range sentences {
		if strings.TrimSpace(s) != "" {
			b.chk.Sentences = append(b.chk.Sentences, s)
		}
	}
	return b
}

func (b *ToolResultChunkBuilder) Attribution(attr string) *ToolResultChunkBuilder {
	b.chk.Attribution = attr
	return b
}

func (b *ToolResultChunkBuilder) Title(t string) *ToolResultChunkBuilder {
	b.chk.Title = t
	return b
}

func (b *ToolResultChunkBuilder) MetadataKV(key, value string) *ToolResultChunkBuilder {
	b.chk.Metadata[key] = value
	return b
}

func (b *ToolResultChunkBuilder) MetadataMap(m map[string]string) *ToolResultChunkBuilder {
	maps.Copy(b.chk.Metadata, m)
	return b
}

func (b *ToolResultChunkBuilder) ToolName(name string) *ToolResultChunkBuilder {
	b.chk.ToolName = name
	return b
}

func (b *ToolResultChunkBuilder) Error(errMsg string) *ToolResultChunkBuilder {
	b.chk.Error = errMsg
	return b
}

func (b *ToolResultChunkBuilder) Build() *schema.ToolResultChunk {
	return b.chk
}

// SingleChunk returns a closed channel holding only chk.
func SingleChunk(chk *schema.ToolResultChunk) <-chan *schema.ToolResultChunk {
	ch := make(chan *schema.ToolResultChunk, 1)
	ch <- chk
	close(ch)
	return ch
}
