package agentboot

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/SaiNageswarS/opentargets-agent/schema"
)

// ProgressReporter is an interface for reporting agent execution progress
type ProgressReporter interface {
	// Send sends a progress update
	Send(event *schema.AgentStreamChunk) error
}

// NoOpProgressReporter implements ProgressReporter with no-op operations
type NoOpProgressReporter struct{}

func (r *NoOpProgressReporter) Send(event *schema.AgentStreamChunk) error {
	return nil
}

// ConsoleProgressReporter prints a human readable trace of the run. Answer
// chunks are written verbatim so the answer streams as it is generated.
type ConsoleProgressReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleProgressReporter(w io.Writer) *ConsoleProgressReporter {
	return &ConsoleProgressReporter{w: w}
}

func (r *ConsoleProgressReporter) Send(event *schema.AgentStreamChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := ""
	if event.Agent != "" {
		prefix = "[" + event.Agent + "] "
	}

	var err error
	switch event.Kind() {
	case "progress":
		_, err = fmt.Fprintf(r.w, "%s%s\n", prefix, event.ProgressUpdateChunk.Message)
	case "tool_result":
		res := event.ToolResultChunk
		title := res.Title
		if title == "" {
			title = res.ToolName
		}
		if res.Error != "" {
			_, err = fmt.Fprintf(r.w, "%s  %s: error: %s\n", prefix, title, res.Error)
		} else {
			_, err = fmt.Fprintf(r.w, "%s  %s (%d lines)\n", prefix, title, len(res.Sentences))
		}
	case "answer":
		_, err = io.WriteString(r.w, event.Answer.Content)
	case "complete":
		_, err = fmt.Fprintf(r.w, "\n\n%s(%d ms, tools: %s)\n", prefix, event.Complete.ProcessingTime, strings.Join(event.Complete.ToolsUsed, ", "))
	case "error":
		_, err = fmt.Fprintf(r.w, "%serror [%s]: %s\n", prefix, event.Error.ErrorCode, event.Error.ErrorMessage)
	}
	return err
}

// SSEProgressReporter writes each chunk as a server-sent event named after
// the chunk kind.
type SSEProgressReporter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
}

func NewSSEProgressReporter(w http.ResponseWriter) *SSEProgressReporter {
	flusher, _ := w.(http.Flusher)
	return &SSEProgressReporter{w: w, flusher: flusher}
}

func (r *SSEProgressReporter) Send(event *schema.AgentStreamChunk) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := fmt.Fprintf(r.w, "event: %s\ndata: %s\n\n", event.Kind(), data); err != nil {
		return err
	}
	if r.flusher != nil {
		r.flusher.Flush()
	}
	return nil
}

// RecordingProgressReporter keeps every chunk in memory.
type RecordingProgressReporter struct {
	mu     sync.Mutex
	events []*schema.AgentStreamChunk
}

func (r *RecordingProgressReporter) Send(event *schema.AgentStreamChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *RecordingProgressReporter) Events() []*schema.AgentStreamChunk {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*schema.AgentStreamChunk(nil), r.events...)
}

// taggedReporter stamps chunks with the name of the agent that produced them.
type taggedReporter struct {
	inner ProgressReporter
	agent string
}

func (r *taggedReporter) Send(event *schema.AgentStreamChunk) error {
	if event.Agent == "" {
		event.Agent = r.agent
	}
	return r.inner.Send(event)
}

// delegateReporter forwards a sub-agent's progress to its caller's reporter.
// The sub-agent's answer reaches the caller as a tool result, so answer and
// completion chunks are not forwarded.
type delegateReporter struct {
	inner ProgressReporter
}

func (r *delegateReporter) Send(event *schema.AgentStreamChunk) error {
	if event.Answer != nil || event.Complete != nil {
		return nil
	}
	return r.inner.Send(event)
}

// Helper functions for creating progress events
func NewProgressUpdate(stage schema.Stage, message string) *schema.AgentStreamChunk {
	return &schema.AgentStreamChunk{
		ProgressUpdateChunk: &schema.ProgressUpdateChunk{
			Stage:          stage,
			Timestamp:      time.Now().UnixMilli(),
			Message:        message,
			EstimatedSteps: 3,
		},
	}
}

// NewToolExecutionResult creates a ToolExecutionResultChunk chunk
func NewToolExecutionResult(toolName string, result *schema.ToolResultChunk) *schema.AgentStreamChunk {
	result.ToolName = toolName

	return &schema.AgentStreamChunk{ToolResultChunk: result}
}

func NewAnswerChunk(answerChunk *schema.AnswerChunk) *schema.AgentStreamChunk {
	return &schema.AgentStreamChunk{Answer: answerChunk}
}

func NewStreamComplete(finalResponse *schema.StreamComplete) *schema.AgentStreamChunk {
	return &schema.AgentStreamChunk{Complete: finalResponse}
}

func NewStreamError(message, code string) *schema.AgentStreamChunk {
	return &schema.AgentStreamChunk{
		Error: &schema.StreamError{
			ErrorMessage: message,
			ErrorCode:    code,
		},
	}
}
