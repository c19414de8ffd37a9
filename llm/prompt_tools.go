package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/SaiNageswarS/opentargets-agent/prompts"
	"github.com/ollama/ollama/api"
)

// toolDecision is the JSON reply of a model without native function calling.
type toolDecision struct {
	Action    string `json:"action"`
	Content   string `json:"content,omitempty"`
	ToolCalls []struct {
		Function struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		} `json:"function"`
		Reasoning string `json:"reasoning,omitempty"`
	} `json:"tool_calls,omitempty"`
}

func (d toolDecision) dispatch(contentCallback func(string) error, toolCallback func([]api.ToolCall) error) error {
	if d.Action == "direct_answer" {
		return contentCallback(d.Content)
	}

	calls := make([]api.ToolCall, 0, len(d.ToolCalls))
	for _, tc := range d.ToolCalls {
		calls = append(calls, api.ToolCall{
			Function: api.ToolCallFunction{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
		})
	}
	return toolCallback(calls)
}

// parseToolDecision extracts the outermost JSON object from text, tolerating
// prose or code fences around it.
func parseToolDecision(text string) (toolDecision, error) {
	var d toolDecision

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return d, errors.New("no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &d); err != nil {
		return d, fmt.Errorf("decode decision: %w", err)
	}

	switch d.Action {
	case "direct_answer":
		if strings.TrimSpace(d.Content) == "" {
			return d, errors.New("direct_answer without content")
		}
	case "use_tools":
		if len(d.ToolCalls) == 0 {
			return d, errors.New("use_tools without tool calls")
		}
		for _, tc := range d.ToolCalls {
			if tc.Function.Name == "" {
				return d, errors.New("tool call without a name")
			}
		}
	default:
		return d, fmt.Errorf("unknown action %q", d.Action)
	}
	return d, nil
}

// renderToolPrompt builds the decision prompt from the conversation: the last
// real user message is the query and tool results after it are prior context.
func renderToolPrompt(instruction string, tools []api.Tool, messages []Message) (string, string, error) {
	var query string
	var previous []string
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role != "user" {
			continue
		}
		if m.IsToolResult {
			previous = append(previous, m.Content)
			continue
		}
		query = m.Content
		break
	}
	slices.Reverse(previous)

	systemPrompt, userPrompt, err := prompts.RenderInferenceWithToolPrompt(prompts.InferenceWithToolPromptData{
		ToolDescriptions:    describeTools(tools),
		MaxTools:            len(tools),
		Query:               query,
		Context:             instruction,
		PreviousToolResults: strings.Join(previous, "\n\n"),
	})
	if err != nil {
		return "", "", fmt.Errorf("render tool prompt: %w", err)
	}
	return systemPrompt, userPrompt, nil
}

// describeTools renders "name: description (parameters: a:string (required), b:integer)".
func describeTools(tools []api.Tool) []string {
	out := make([]string, len(tools))
	for i, tool := range tools {
		props := tool.Function.Parameters.Properties
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)

		params := make([]string, 0, len(names))
		for _, name := range names {
			kind := "string"
			if t := props[name].Type; len(t) > 0 {
				kind = t[0]
			}
			p := name + ":" + kind
			if slices.Contains(tool.Function.Parameters.Required, name) {
				p += " (required)"
			}
			params = append(params, p)
		}

		out[i] = tool.Function.Name + ": " + tool.Function.Description
		if len(params) > 0 {
			out[i] += " (parameters: " + strings.Join(params, ", ") + ")"
		}
	}
	return out
}
