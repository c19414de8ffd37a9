package agentboot

import (
	"context"

	"github.com/SaiNageswarS/opentargets-agent/llm"
	"github.com/SaiNageswarS/opentargets-agent/memory"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
)

// AgentConfig holds configuration for the agent
type AgentConfig struct {
	Name        string
	Description string
	// OutputKey names the session state entry the final answer is written to.
	OutputKey string

	MiniModel    llm.LLMClient
	BigModel     llm.LLMClient
	ToolSelector llm.LLMClient
	SystemPrompt string
	Tools        []MCPTool
	MaxTokens    int
	MaxTurns     int

	// Conversation management
	ConversationManager *memory.ConversationManager
}

// Agent represents the main agent system
type Agent struct {
	config AgentConfig
}

func (a *Agent) Name() string        { return a.config.Name }
func (a *Agent) Description() string { return a.config.Description }
func (a *Agent) OutputKey() string   { return a.config.OutputKey }

// ToolNames lists the tools the agent may call, delegate tools included.
func (a *Agent) ToolNames() []string {
	names := make([]string, len(a.config.Tools))
	for i, t := range a.config.Tools {
		names[i] = t.Function.Name
	}
	return names
}

// MCPTool wraps an api.Tool and provides a handler for execution
type MCPTool struct {
	api.Tool
	// SummarizeContext enables automatic summarization of tool results using the mini model.
	// Each ToolResult's Sentences are summarized with respect to the user's query and
	// irrelevant results are dropped.
	SummarizeContext bool `json:"summarize_context"`
	Handler          func(ctx context.Context, params api.ToolCallFunctionArguments) <-chan *schema.ToolResultChunk
}
