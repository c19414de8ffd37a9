package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
)

type Capability uint8

const (
	NativeToolCalling Capability = 1 << iota
)

type LLMClient interface {
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	// GenerateInferenceWithTools supports native tool calling
	GenerateInferenceWithTools(
		ctx context.Context,
		messages []Message,
		contentCallback func(chunk string) error,
		toolCallback func(toolCalls []api.ToolCall) error,
		opts ...LLMOption,
	) error

	Capabilities() Capability

	GetModel() string
}

type LLMSettings struct {
	model       string     // model name
	temperature float64    // randomness (0.0 to 1.0)
	maxTokens   int        // maximum tokens to generate
	system      string     // system prompt
	stream      bool       // whether to stream response
	tools       []api.Tool // tools to use for tool calling
}

type LLMOption func(*LLMSettings)

func defaultSettings(model string) LLMSettings {
	return LLMSettings{
		model:       model,
		temperature: 0.7,
		maxTokens:   4096,
	}
}

func applyOptions(s *LLMSettings, opts []LLMOption) {
	for _, opt := range opts {
		opt(s)
	}
}

// Common options for all LLM providers
func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) {
		if tokens > 0 {
			s.maxTokens = tokens
		}
	}
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

func WithStreaming(stream bool) LLMOption {
	return func(s *LLMSettings) { s.stream = stream }
}

func WithTools(tools []api.Tool) LLMOption {
	return func(s *LLMSettings) { s.tools = tools }
}

type Message struct {
	Role         string `json:"role"`    // "user", "assistant", "system"
	Content      string `json:"content"` // the message content
	IsToolResult bool   `json:"is_tool_result,omitempty"`
}

// wireMessage is the provider-facing shape of Message.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// splitSystem hoists system messages out of msgs and joins them with the
// configured system prompt.
func splitSystem(system string, msgs []Message) (string, []wireMessage) {
	parts := []string{}
	if system != "" {
		parts = append(parts, system)
	}

	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "system" {
			parts = append(parts, m.Content)
			continue
		}
		out = append(out, wireMessage{Role: m.Role, Content: m.Content})
	}

	return strings.Join(parts, "\n\n"), out
}

// NewClient builds the client for a provider name as used in config.ini.
func NewClient(provider, model string) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "gemini", "google":
		return NewGeminiClient(model)
	case "anthropic", "claude":
		return NewAnthropicClient(model)
	case "groq":
		return NewGroqClient(model)
	case "ollama":
		return NewOllamaClient(model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
