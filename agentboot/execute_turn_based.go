package agentboot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/opentargets-agent/llm"
	"github.com/SaiNageswarS/opentargets-agent/memory"
	"github.com/SaiNageswarS/opentargets-agent/metrics"
	"github.com/SaiNageswarS/opentargets-agent/prompts"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// Execute answers one question in turn-based mode: up to MaxTurns rounds of
// tool selection and execution, then a final answer from the big model.
// Failures of individual steps are reported on the stream; only a cancelled
// context is returned as an error.
func (a *Agent) Execute(ctx context.Context, reporter ProgressReporter, req *schema.GenerateAnswerRequest) (*schema.StreamComplete, error) {
	startTime := getCurrentTimeMs()
	if reporter == nil {
		reporter = &NoOpProgressReporter{}
	}
	reporter = &taggedReporter{inner: reporter, agent: a.config.Name}

	response := &schema.StreamComplete{ToolsUsed: []string{}, Metadata: map[string]string{}}

	conversation := a.loadConversation(ctx, req.SessionId)
	// A delegated run sees what the team has produced so far.
	if parent := runFromContext(ctx); parent != nil {
		for k, v := range parent.snapshot() {
			conversation.State[k] = v
		}
	}
	conversation.AddUserMessage(req.Question)

	rc := &runContext{sessionID: conversation.ID, reporter: reporter, state: conversation.State}
	ctx = withRunContext(ctx, rc)

	turns := 0
	for turn := 0; turn < a.config.MaxTurns && len(a.config.Tools) > 0; turn++ {
		toolCalls := a.SelectTools(ctx, reporter, conversation.Messages, turn, rc.snapshot())
		turns++
		if len(toolCalls) == 0 {
			break
		}

		for _, toolCall := range toolCalls {
			toolResultContext, err := a.RunTool(ctx, reporter, req.Question, &toolCall)
			if err != nil {
				continue
			}

			conversation.AddToolResult(toolResultContext)
			response.ToolsUsed = appendUnique(response.ToolsUsed, toolCall.Function.Name)
		}

		if ctx.Err() != nil {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		a.recordRun("cancelled", startTime)
		return nil, fmt.Errorf("%s: %w", a.config.Name, err)
	}

	reporter.Send(NewProgressUpdate(schema.StageAnswerGeneration, fmt.Sprintf("%s is writing the answer", a.config.Name)))

	var inference strings.Builder
	err := a.config.BigModel.GenerateInference(
		ctx, conversation.Messages,
		func(chunk string) error {
			inference.WriteString(chunk)
			reporter.Send(NewAnswerChunk(&schema.AnswerChunk{Content: chunk}))
			return nil
		},
		llm.WithMaxTokens(a.config.MaxTokens),
		llm.WithTemperature(0.7),
		llm.WithSystemPrompt(a.instruction(rc.snapshot())),
	)

	status := "ok"
	if err != nil {
		status = "error"
		logger.Error("Failed to run inference", zap.String("agent", a.config.Name), zap.Error(err))
		reporter.Send(NewStreamError(err.Error(), "inference_failed"))
	}

	response.Answer = inference.String()
	response.ProcessingTime = getCurrentTimeMs() - startTime
	response.Metadata["agent"] = a.config.Name
	response.Metadata["model"] = a.config.BigModel.GetModel()
	response.Metadata["turns"] = strconv.Itoa(turns)
	if conversation.ID != "" {
		response.Metadata["session_id"] = conversation.ID
	}

	if a.config.OutputKey != "" && response.Answer != "" {
		rc.setState(a.config.OutputKey, response.Answer)
	}

	conversation.AddAssistantMessage(response.Answer)
	if a.config.ConversationManager != nil {
		a.config.ConversationManager.SaveSession(ctx, conversation)
	}

	a.recordRun(status, startTime)
	reporter.Send(NewStreamComplete(response))
	return response, nil
}

func (a *Agent) SelectTools(ctx context.Context, reporter ProgressReporter, msgs []llm.Message, turn int, state map[string]string) []api.ToolCall {
	var toolCalls []api.ToolCall

	reporter.Send(NewProgressUpdate(schema.StageToolSelectionStarting,
		fmt.Sprintf("Selecting tools (step %d of %d)", turn+1, a.config.MaxTurns)))

	systemPrompt, err := prompts.RenderToolSelectionPrompt(a.instruction(state), turn, a.config.MaxTurns)
	if err != nil {
		logger.Error("Failed to render tool selection prompt", zap.Error(err))
		reporter.Send(NewStreamError(err.Error(), "prompt_rendering_failed"))
		return toolCalls
	}

	err = a.config.ToolSelector.GenerateInferenceWithTools(
		ctx, msgs,
		func(chunk string) error { return nil }, // ignore Answer
		func(calls []api.ToolCall) error {
			toolCalls = append(toolCalls, calls...)
			return nil
		},
		llm.WithTools(toAPITools(a.config.Tools)),
		llm.WithMaxTokens(a.config.MaxTokens),
		llm.WithSystemPrompt(systemPrompt),
	)

	if err != nil {
		logger.Error("Failed to select tools", zap.String("agent", a.config.Name), zap.Error(err))
		reporter.Send(NewStreamError(err.Error(), "tool_selection_failed"))
		return nil
	}

	names := make([]string, len(toolCalls))
	for i, c := range toolCalls {
		names[i] = c.Function.Name
	}
	reporter.Send(NewProgressUpdate(schema.StageToolSelectionCompleted,
		fmt.Sprintf("Selected tools: [%s]", strings.Join(names, ", "))))

	return toolCalls
}

func (a *Agent) loadConversation(ctx context.Context, sessionID string) *memory.Conversation {
	if a.config.ConversationManager != nil {
		return a.config.ConversationManager.LoadSession(ctx, sessionID)
	}
	return memory.NewConversation(sessionID)
}

// instruction appends the session state, sorted by key, to the system prompt.
func (a *Agent) instruction(state map[string]string) string {
	if len(state) == 0 {
		return a.config.SystemPrompt
	}

	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(a.config.SystemPrompt)
	b.WriteString("\n\n---\n\n## Session state\n")
	for _, k := range keys {
		b.WriteString("\n### ")
		b.WriteString(k)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(state[k]))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *Agent) recordRun(status string, startTime int64) {
	metrics.AgentRunsTotal.WithLabelValues(a.config.Name, status).Inc()
	metrics.AgentRunDuration.WithLabelValues(a.config.Name).Observe(
		(time.Duration(getCurrentTimeMs()-startTime) * time.Millisecond).Seconds())
}
