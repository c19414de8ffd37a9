package llm

import (
	"context"
	"fmt"

	"github.com/ollama/ollama/api"
)

// OllamaClient talks to a local Ollama daemon (OLLAMA_HOST).
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllamaClient(model string) (LLMClient, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("error creating ollama client: %w", err)
	}

	return &OllamaClient{client: client, model: model}, nil
}

func (c *OllamaClient) Capabilities() Capability {
	return NativeToolCalling
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	return c.GenerateInferenceWithTools(ctx, messages, callback, nil, opts...)
}

func (c *OllamaClient) GenerateInferenceWithTools(
	ctx context.Context,
	messages []Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
	opts ...LLMOption,
) error {
	settings := defaultSettings(c.model)
	applyOptions(&settings, opts)

	req := buildOllamaChatRequest(settings, messages, toolCallback != nil)

	var toolCalls []api.ToolCall
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		toolCalls = append(toolCalls, resp.Message.ToolCalls...)
		if resp.Message.Content != "" && contentCallback != nil {
			return contentCallback(resp.Message.Content)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error calling ollama chat: %w", err)
	}

	if len(toolCalls) > 0 && toolCallback != nil {
		return toolCallback(toolCalls)
	}
	return nil
}

func buildOllamaChatRequest(settings LLMSettings, messages []Message, withTools bool) *api.ChatRequest {
	system, wire := splitSystem(settings.system, messages)

	msgs := make([]api.Message, 0, len(wire)+1)
	if system != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: system})
	}
	for _, m := range wire {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := settings.stream
	req := &api.ChatRequest{
		Model:    settings.model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}
	if withTools && len(settings.tools) > 0 {
		req.Tools = settings.tools
	}
	return req
}
