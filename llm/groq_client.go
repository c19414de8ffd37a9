package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

const (
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	defaultGroqBaseURL = "https://api.groq.com"
)

// Model families Groq serves with function calling.
var groqToolModels = []string{
	"llama-3.3-70b",
	"llama-3.1-8b",
	"openai/gpt-oss-",
	"meta-llama/llama-4-",
	"moonshotai/kimi-k2",
	"qwen/qwen3-32b",
}

// GroqClient talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewGroqClient(model string) (LLMClient, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GROQ_API_KEY environment variable is not set")
	}
	if model == "" {
		model = DefaultGroqModel
	}

	baseURL := os.Getenv("GROQ_BASE_URL")
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}

	return &GroqClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}, nil
}

func (c *GroqClient) Capabilities() Capability {
	for _, family := range groqToolModels {
		if strings.HasPrefix(c.model, family) {
			return NativeToolCalling
		}
	}
	return 0
}

func (c *GroqClient) GetModel() string {
	return c.model
}

func (c *GroqClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	settings := defaultSettings(c.model)
	applyOptions(&settings, opts)

	return c.chat(ctx, c.buildRequest(settings, messages, false), callback, nil)
}

func (c *GroqClient) GenerateInferenceWithTools(
	ctx context.Context,
	messages []Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
	opts ...LLMOption,
) error {
	settings := defaultSettings(c.model)
	applyOptions(&settings, opts)

	return c.chat(ctx, c.buildRequest(settings, messages, true), contentCallback, toolCallback)
}

// buildRequest puts the system prompt first, as the chat completions API
// expects it.
func (c *GroqClient) buildRequest(settings LLMSettings, messages []Message, withTools bool) groqRequest {
	system, wire := splitSystem(settings.system, messages)
	if system != "" {
		wire = append([]wireMessage{{Role: "system", Content: system}}, wire...)
	}

	request := groqRequest{
		Model:       settings.model,
		Messages:    wire,
		Temperature: settings.temperature,
		MaxTokens:   settings.maxTokens,
	}
	if withTools && len(settings.tools) > 0 {
		request.Tools = toGroqTools(settings.tools)
		request.ToolChoice = "auto"
	}
	return request
}

func (c *GroqClient) chat(
	ctx context.Context,
	request groqRequest,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("groq: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/openai/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("groq: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("groq: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("groq: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr groqErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("groq: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("groq: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response groqResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("groq: decode response: %w", err)
	}
	if len(response.Choices) == 0 {
		return errors.New("groq: no choices in response")
	}

	choice := response.Choices[0]
	logger.Info("Groq inference",
		zap.String("model", request.Model),
		zap.String("finish_reason", choice.FinishReason),
		zap.Int("prompt_tokens", response.Usage.PromptTokens),
		zap.Int("completion_tokens", response.Usage.CompletionTokens))

	if len(choice.Message.ToolCalls) > 0 && toolCallback != nil {
		calls := make([]api.ToolCall, 0, len(choice.Message.ToolCalls))
		for _, tc := range choice.Message.ToolCalls {
			args := api.ToolCallFunctionArguments{}
			if tc.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					return fmt.Errorf("groq: arguments for %s: %w", tc.Function.Name, err)
				}
			}
			calls = append(calls, api.ToolCall{
				Function: api.ToolCallFunction{Name: tc.Function.Name, Arguments: args},
			})
		}
		return toolCallback(calls)
	}

	if choice.Message.Content != "" && contentCallback != nil {
		return contentCallback(choice.Message.Content)
	}
	return nil
}

func toGroqTools(tools []api.Tool) []groqTool {
	out := make([]groqTool, len(tools))
	for i, tool := range tools {
		out[i] = groqTool{
			Type: "function",
			Function: groqFunction{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		}
	}
	return out
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_completion_tokens,omitempty"`
	Tools       []groqTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
}

type groqTool struct {
	Type     string       `json:"type"`
	Function groqFunction `json:"function"`
}

type groqFunction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

type groqResponse struct {
	Choices []groqChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type groqChoice struct {
	Message      groqMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type groqMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []groqToolCall `json:"tool_calls,omitempty"`
}

type groqToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type groqErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
