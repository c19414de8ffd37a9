// Package schema holds the wire types exchanged between agents, tools and the
// outer surfaces (console and HTTP event stream).
package schema

type Stage string

const (
	StageToolSelectionStarting  Stage = "tool_selection_starting"
	StageToolSelectionCompleted Stage = "tool_selection_completed"
	StageToolExecutionStarting  Stage = "tool_execution_starting"
	StageToolExecutionCompleted Stage = "tool_execution_completed"
	StageDelegationStarting     Stage = "delegation_starting"
	StageDelegationCompleted    Stage = "delegation_completed"
	StageAnswerGeneration       Stage = "answer_generation"
)

// GenerateAnswerRequest is a single question addressed to an agent.
type GenerateAnswerRequest struct {
	Question  string `json:"question"`
	SessionId string `json:"session_id,omitempty"`
}

type ToolResultChunk struct {
	ToolName    string            `json:"tool_name,omitempty"`
	Title       string            `json:"title,omitempty"`
	Sentences   []string          `json:"sentences,omitempty"`
	Attribution string            `json:"attribution,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Error       string            `json:"error,omitempty"`
}

type ProgressUpdateChunk struct {
	Stage          Stage  `json:"stage"`
	Timestamp      int64  `json:"timestamp"`
	Message        string `json:"message"`
	EstimatedSteps int32  `json:"estimated_steps,omitempty"`
}

type AnswerChunk struct {
	Content string `json:"content"`
}

type StreamComplete struct {
	Answer         string            `json:"answer"`
	ToolsUsed      []string          `json:"tools_used"`
	ProcessingTime int64             `json:"processing_time_ms"`
	Metadata       map[string]string `json:"metadata"`
}

type StreamError struct {
	ErrorMessage string `json:"error_message"`
	ErrorCode    string `json:"error_code"`
}

// AgentStreamChunk carries exactly one of its payload fields.
type AgentStreamChunk struct {
	Agent string `json:"agent,omitempty"`

	ProgressUpdateChunk *ProgressUpdateChunk `json:"progress,omitempty"`
	ToolResultChunk     *ToolResultChunk     `json:"tool_result,omitempty"`
	Answer              *AnswerChunk         `json:"answer,omitempty"`
	Complete            *StreamComplete      `json:"complete,omitempty"`
	Error               *StreamError         `json:"error,omitempty"`
}

// Kind names the populated payload; used as the SSE event name.
func (c *AgentStreamChunk) Kind() string {
	switch {
	case c.ProgressUpdateChunk != nil:
		return "progress"
	case c.ToolResultChunk != nil:
		return "tool_result"
	case c.Answer != nil:
		return "answer"
	case c.Complete != nil:
		return "complete"
	case c.Error != nil:
		return "error"
	default:
		return "unknown"
	}
}
