package agentboot

import (
	"context"
	"strings"
	"testing"

	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatToolInputsToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		toolName string
		params   api.ToolCallFunctionArguments
		expected []string
	}{
		{
			name:     "no parameters",
			toolName: "list",
			params:   api.ToolCallFunctionArguments{},
			expected: []string{"Tool: `list` (no parameters)"},
		},
		{
			name:     "scalars",
			toolName: "get_disease_targets",
			params: api.ToolCallFunctionArguments{
				"disease_id":         "MONDO_0004979",
				"limit":              5.0,
				"return_ensembl_ids": false,
			},
			expected: []string{
				"Tool: `get\\_disease\\_targets`",
				"Parameters:",
				"- **disease\\_id**: MONDO\\_0004979",
				"- **limit**: 5",
				"- **return\\_ensembl\\_ids**: false",
			},
		},
		{
			name:     "list",
			toolName: "drugs",
			params:   api.ToolCallFunctionArguments{"drug_ids": []any{"vemurafenib", "dabrafenib"}},
			expected: []string{"- **drug\\_ids**: vemurafenib, dabrafenib"},
		},
		{
			name:     "escaping",
			toolName: "t<x>",
			params:   api.ToolCallFunctionArguments{"q": "a|b*[c]"},
			expected: []string{"Tool: `t&lt;x&gt;`", "- **q**: a\\|b\\*\\[c\\]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatToolInputsToMarkdown(tt.toolName, tt.params)
			for _, expected := range tt.expected {
				assert.Contains(t, result, expected)
			}
		})
	}
}

func TestFormatToolInputsToMarkdownSorted(t *testing.T) {
	result := formatToolInputsToMarkdown("t", api.ToolCallFunctionArguments{"z": "1", "a": "2", "m": "3"})

	a := strings.Index(result, "- **a**")
	m := strings.Index(result, "- **m**")
	z := strings.Index(result, "- **z**")
	assert.True(t, a < m && m < z)
}

func TestRunTool(t *testing.T) {
	agent := NewAgentBuilder().
		WithName("safety_agent").
		WithBigModel(&scriptedLLM{}).
		AddTool(staticTool("get_target_tractability", "SM: Approved Drug", "AB: GO CC high conf")).
		Build()

	reporter := &RecordingProgressReporter{}
	out, err := agent.RunTool(context.Background(), reporter, "Is BRAF tractable?",
		&api.ToolCall{Function: api.ToolCallFunction{Name: "get_target_tractability"}})

	require.NoError(t, err)
	assert.Contains(t, out, "### get_target_tractability")
	assert.Contains(t, out, "- SM: Approved Drug\n- AB: GO CC high conf")

	results := eventsOfKind(reporter.Events(), "tool_result")
	require.Len(t, results, 1)
	assert.Equal(t, "get_target_tractability", results[0].ToolResultChunk.ToolName)

	stages := []schema.Stage{}
	for _, e := range eventsOfKind(reporter.Events(), "progress") {
		stages = append(stages, e.ProgressUpdateChunk.Stage)
	}
	assert.Equal(t, []schema.Stage{schema.StageToolExecutionStarting, schema.StageToolExecutionCompleted}, stages)
}

func TestRunToolUnknown(t *testing.T) {
	agent := NewAgentBuilder().WithName("data_steward").WithBigModel(&scriptedLLM{}).Build()
	reporter := &RecordingProgressReporter{}

	_, err := agent.RunTool(context.Background(), reporter, "q", &api.ToolCall{Function: api.ToolCallFunction{Name: "nope"}})

	assert.ErrorIs(t, err, ErrUnknownTool)
	errs := eventsOfKind(reporter.Events(), "error")
	require.Len(t, errs, 1)
	assert.Equal(t, "unknown_tool", errs[0].Error.ErrorCode)
}

func TestRunToolSummarization(t *testing.T) {
	mini := &scriptedLLM{responses: []string{"# IRRELEVANT", "BRAF V600E is targeted by vemurafenib."}}

	tool := NewMCPToolBuilder("search", "search").
		Summarize(true).
		WithHandler(func(ctx context.Context, params api.ToolCallFunctionArguments) <-chan *schema.ToolResultChunk {
			ch := make(chan *schema.ToolResultChunk, 2)
			ch <- NewToolResultChunk().Title("known drugs").Sentences(
				"vemurafenib", "dabrafenib", "encorafenib", "sorafenib", "regorafenib", "belvarafenib").Build()
			close(ch)
			return ch
		}).
		Build()

	agent := NewAgentBuilder().WithBigModel(&scriptedLLM{}).WithMiniModel(mini).AddTool(tool).Build()

	out, err := agent.RunTool(context.Background(), &RecordingProgressReporter{}, "BRAF drugs?",
		&api.ToolCall{Function: api.ToolCallFunction{Name: "search"}})
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = agent.RunTool(context.Background(), &RecordingProgressReporter{}, "BRAF drugs?",
		&api.ToolCall{Function: api.ToolCallFunction{Name: "search"}})
	require.NoError(t, err)
	assert.Contains(t, out, "BRAF V600E is targeted by vemurafenib.")
	assert.Contains(t, out, "original_sentence_count=6, summarized=true")
}

func TestRunToolSkipsSummaryForShortChunks(t *testing.T) {
	mini := &scriptedLLM{responses: []string{"# IRRELEVANT"}}
	agent := NewAgentBuilder().
		WithBigModel(&scriptedLLM{}).
		WithMiniModel(mini).
		AddTool(NewMCPToolBuilder("get_drugs_info", "drug records").
			Summarize(true).
			WithHandler(func(ctx context.Context, params api.ToolCallFunctionArguments) <-chan *schema.ToolResultChunk {
				return SingleChunk(NewToolResultChunk().Title("VEMURAFENIB").Sentences("Max phase 4.").Build())
			}).
			Build()).
		Build()

	out, err := agent.RunTool(context.Background(), &RecordingProgressReporter{}, "q",
		&api.ToolCall{Function: api.ToolCallFunction{Name: "get_drugs_info"}})
	require.NoError(t, err)
	assert.Contains(t, out, "- Max phase 4.")
	assert.Equal(t, 0, mini.inferenceCalls)
}

func TestFormatToolResultMarkdown(t *testing.T) {
	out := FormatToolResultMarkdown(&schema.ToolResultChunk{
		ToolName:    "get_target_drugs",
		Title:       "Known drugs for ENSG00000157764",
		Sentences:   []string{" vemurafenib ", "", "dabrafenib"},
		Metadata:    map[string]string{"target_id": "ENSG00000157764", "count": "2"},
		Attribution: "Open Targets Platform",
	})

	assert.Equal(t, "### Known drugs for ENSG00000157764\n\n"+
		"- vemurafenib\n- dabrafenib\n\n"+
		"_count=2, target_id=ENSG00000157764_\n\n"+
		"Source: Open Targets Platform", out)
}

func TestFormatToolResultMarkdownError(t *testing.T) {
	out := FormatToolResultMarkdown(&schema.ToolResultChunk{ToolName: "get_target_safety_information", Error: "timeout"})

	assert.Equal(t, "### get_target_safety_information\n\n> **Error:** timeout", out)
	assert.Empty(t, FormatToolResultMarkdown(nil))
}
