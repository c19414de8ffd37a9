package agentboot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/opentargets-agent/metrics"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

var ErrUnknownTool = errors.New("unknown tool")

func (a *Agent) RunTool(ctx context.Context, reporter ProgressReporter, query string, selection *api.ToolCall) (string, error) {
	name := selection.Function.Name

	tool := findMCPToolByName(a.config.Tools, name)
	if tool == nil || tool.Handler == nil {
		logger.Error("Model selected an unknown tool", zap.String("agent", a.config.Name), zap.String("tool", name))
		metrics.ToolCallsTotal.WithLabelValues(a.config.Name, name, "unknown").Inc()
		reporter.Send(NewStreamError(fmt.Sprintf("tool %q is not available to %s", name, a.config.Name), "unknown_tool"))
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	reporter.Send(NewProgressUpdate(
		schema.StageToolExecutionStarting,
		fmt.Sprintf("Running tool %s with arguments: %v", name, selection.Function.Arguments)))

	// Format tool inputs for summarization context
	toolInputsMD := formatToolInputsToMarkdown(name, selection.Function.Arguments)

	toolResultChan := tool.Handler(ctx, selection.Function.Arguments)

	r := NewToolResultRenderer(WithReporter(reporter, name), WithSummarizationModel(a.config.MiniModel))

	toolResultChunks, err := r.Render(ctx, query, toolInputsMD, toolResultChan, tool.SummarizeContext)
	if err != nil {
		logger.Error("Error rendering tool result", zap.String("tool", name), zap.Error(err))
		metrics.ToolCallsTotal.WithLabelValues(a.config.Name, name, "error").Inc()
		reporter.Send(NewStreamError(err.Error(), "tool_execution_failed"))
		return "", err
	}

	metrics.ToolCallsTotal.WithLabelValues(a.config.Name, name, "ok").Inc()
	reporter.Send(NewProgressUpdate(
		schema.StageToolExecutionCompleted,
		fmt.Sprintf("Tool %s completed", name)))
	return strings.Join(toolResultChunks, "\n\n"), nil
}
