// Package mcpserver exposes the Open Targets tools and the research team to
// MCP clients over stdio.
package mcpserver

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/opentargets-agent/agentboot"
	"github.com/SaiNageswarS/opentargets-agent/prompts"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

const (
	AskTeamTool          = "ask_research_team"
	TargetAssessmentName = "target_assessment"
)

var errTargetRequired = errors.New("target is required")

// Answerer is satisfied by *agentboot.Agent.
type Answerer interface {
	Name() string
	Execute(ctx context.Context, reporter agentboot.ProgressReporter, req *schema.GenerateAnswerRequest) (*schema.StreamComplete, error)
}

// New registers every tool and, when root is set, an ask_research_team tool
// that runs the whole team.
func New(version string, tools []agentboot.MCPTool, root Answerer) *server.MCPServer {
	s := server.NewMCPServer(
		"opentargets-agent",
		version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	for _, t := range tools {
		s.AddTool(ToolDefinition(t), ToolHandler(t))
	}

	if root != nil {
		s.AddTool(mcp.NewTool(AskTeamTool,
			mcp.WithDescription("Ask the research team led by "+root.Name()+". The question is answered using Open Targets data and expert sub-agents."),
			mcp.WithString("question", mcp.Description("Research question"), mcp.Required()),
			mcp.WithString("session_id", mcp.Description("Continue an earlier conversation")),
		), AskHandler(root))
	}

	s.AddPrompt(mcp.NewPrompt(TargetAssessmentName,
		mcp.WithPromptDescription("Step-by-step assessment of a therapeutic target with the Open Targets tools"),
		mcp.WithArgument("target", mcp.ArgumentDescription("Gene symbol or Ensembl id"), mcp.RequiredArgument()),
		mcp.WithArgument("disease", mcp.ArgumentDescription("Optional disease context")),
	), TargetAssessmentPrompt)

	return s
}

func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// ToolDefinition converts the tool's function schema into MCP property options.
func ToolDefinition(t agentboot.MCPTool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Function.Description)}

	required := map[string]bool{}
	for _, r := range t.Function.Parameters.Required {
		required[r] = true
	}

	names := make([]string, 0, len(t.Function.Parameters.Properties))
	for name := range t.Function.Parameters.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := t.Function.Parameters.Properties[name]
		propOpts := []mcp.PropertyOption{mcp.Description(prop.Description)}
		if required[name] {
			propOpts = append(propOpts, mcp.Required())
		}

		kind := "string"
		if len(prop.Type) > 0 {
			kind = prop.Type[0]
		}
		switch kind {
		case "integer", "number":
			opts = append(opts, mcp.WithNumber(name, propOpts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(name, propOpts...))
		case "array":
			opts = append(opts, mcp.WithArray(name, append(propOpts, mcp.Items(map[string]any{"type": "string"}))...))
		default:
			opts = append(opts, mcp.WithString(name, propOpts...))
		}
	}

	return mcp.NewTool(t.Function.Name, opts...)
}

// ToolHandler drains the tool's chunks into one markdown result. The call
// fails only when every chunk carries an error.
func ToolHandler(t agentboot.MCPTool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if t.Handler == nil {
			return mcp.NewToolResultError("tool " + t.Function.Name + " has no handler"), nil
		}

		args := api.ToolCallFunctionArguments{}
		for k, v := range req.GetArguments() {
			args[k] = v
		}

		var sections []string
		failed := 0
		for chunk := range t.Handler(ctx, args) {
			if chunk == nil {
				continue
			}
			if chunk.Error != "" {
				failed++
			}
			sections = append(sections, agentboot.FormatToolResultMarkdown(chunk))
		}

		text := strings.Join(sections, "\n\n")
		if len(sections) == 0 {
			return mcp.NewToolResultText("No results."), nil
		}
		if failed == len(sections) {
			logger.Error("MCP tool call failed", zap.String("tool", t.Function.Name))
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func AskHandler(root Answerer) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := strings.TrimSpace(req.GetString("question", ""))
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		result, err := root.Execute(ctx, nil, &schema.GenerateAnswerRequest{
			Question:  question,
			SessionId: req.GetString("session_id", ""),
		})
		if err != nil {
			logger.Error("Research team run failed", zap.Error(err))
			return mcp.NewToolResultError("research team failed: " + err.Error()), nil
		}
		if result.Answer == "" {
			return mcp.NewToolResultError("research team returned no answer"), nil
		}
		return mcp.NewToolResultText(result.Answer), nil
	}
}

func TargetAssessmentPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := strings.TrimSpace(req.Params.Arguments["target"])
	if target == "" {
		return nil, errTargetRequired
	}

	text, err := prompts.RenderTargetAssessmentPrompt(target, strings.TrimSpace(req.Params.Arguments["disease"]))
	if err != nil {
		return nil, err
	}

	return &mcp.GetPromptResult{
		Description: "Target assessment for " + target,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}, nil
}
