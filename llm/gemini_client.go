package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultGeminiModel    = "gemini-2.5-pro"
	defaultGeminiLocation = "us-central1"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient uses GOOGLE_API_KEY when set. Otherwise it talks to Vertex AI
// in GOOGLE_CLOUD_PROJECT with Application Default Credentials
// (`gcloud auth application-default login`), which refresh themselves.
func NewGeminiClient(model string) (LLMClient, error) {
	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{BaseURL: os.Getenv("GEMINI_BASE_URL")},
	}

	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		cc.APIKey = apiKey
		cc.Backend = genai.BackendGeminiAPI
	} else {
		project := os.Getenv("GOOGLE_CLOUD_PROJECT")
		if project == "" {
			return nil, errors.New("neither GOOGLE_API_KEY nor GOOGLE_CLOUD_PROJECT is set")
		}
		location := os.Getenv("GOOGLE_CLOUD_LOCATION")
		if location == "" {
			location = defaultGeminiLocation
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = project
		cc.Location = location
	}

	client, err := newGeminiClient(context.Background(), model, cc)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newGeminiClient(ctx context.Context, model string, cc *genai.ClientConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}

	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Capabilities() Capability {
	return NativeToolCalling
}

func (c *GeminiClient) GetModel() string {
	return c.model
}

func (c *GeminiClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	settings := defaultSettings(c.model)
	applyOptions(&settings, opts)

	return c.generate(ctx, settings, messages, callback, nil)
}

func (c *GeminiClient) GenerateInferenceWithTools(
	ctx context.Context,
	messages []Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
	opts ...LLMOption,
) error {
	settings := defaultSettings(c.model)
	applyOptions(&settings, opts)

	return c.generate(ctx, settings, messages, contentCallback, toolCallback)
}

func (c *GeminiClient) generate(
	ctx context.Context,
	settings LLMSettings,
	messages []Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
) error {
	system, contents := toGeminiContents(settings.system, messages)
	if len(contents) == 0 {
		return errors.New("gemini request has no user content")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(settings.temperature)),
		MaxOutputTokens: int32(settings.maxTokens),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(settings.tools) > 0 && toolCallback != nil {
		config.Tools = []*genai.Tool{{FunctionDeclarations: toGeminiFunctions(settings.tools)}}
	}

	response, err := c.client.Models.GenerateContent(ctx, settings.model, contents, config)
	if err != nil {
		return fmt.Errorf("gemini generate content: %w", err)
	}

	if len(response.Candidates) == 0 {
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			return fmt.Errorf("prompt blocked: %s", response.PromptFeedback.BlockReason)
		}
		return fmt.Errorf("no candidates in response")
	}

	candidate := response.Candidates[0]
	if response.UsageMetadata != nil {
		logger.Info("Gemini inference",
			zap.String("model", settings.model),
			zap.String("finish_reason", string(candidate.FinishReason)),
			zap.Int32("prompt_tokens", response.UsageMetadata.PromptTokenCount),
			zap.Int32("candidate_tokens", response.UsageMetadata.CandidatesTokenCount))
	}

	var text strings.Builder
	var toolCalls []api.ToolCall
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.FunctionCall != nil {
				args := api.ToolCallFunctionArguments{}
				for k, v := range part.FunctionCall.Args {
					args[k] = v
				}
				toolCalls = append(toolCalls, api.ToolCall{
					Function: api.ToolCallFunction{Name: part.FunctionCall.Name, Arguments: args},
				})
				continue
			}
			text.WriteString(part.Text)
		}
	}

	if len(toolCalls) > 0 && toolCallback != nil {
		return toolCallback(toolCalls)
	}

	if text.Len() > 0 && contentCallback != nil {
		return contentCallback(text.String())
	}

	return nil
}

// toGeminiContents maps roles onto Gemini's user/model pair and merges
// consecutive turns of the same role.
func toGeminiContents(system string, msgs []Message) (string, []*genai.Content) {
	system, wire := splitSystem(system, msgs)

	var contents []*genai.Content
	var last genai.Role
	for _, m := range wire {
		if m.Content == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == "assistant" || m.Role == "model" {
			role = genai.RoleModel
		}

		if len(contents) > 0 && last == role {
			prev := contents[len(contents)-1]
			prev.Parts = append(prev.Parts, genai.NewPartFromText(m.Content))
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
		last = role
	}

	return system, contents
}

func toGeminiFunctions(tools []api.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
		}

		if len(tool.Function.Parameters.Properties) > 0 {
			names := make([]string, 0, len(tool.Function.Parameters.Properties))
			for name := range tool.Function.Parameters.Properties {
				names = append(names, name)
			}
			sort.Strings(names)

			props := make(map[string]*genai.Schema, len(names))
			for _, name := range names {
				prop := tool.Function.Parameters.Properties[name]
				s := &genai.Schema{Type: genai.TypeString, Description: prop.Description}
				if len(prop.Type) > 0 {
					s.Type = genai.Type(strings.ToUpper(prop.Type[0]))
				}
				if items, ok := prop.Items.(map[string]any); ok {
					if t, ok := items["type"].(string); ok {
						s.Items = &genai.Schema{Type: genai.Type(strings.ToUpper(t))}
					}
				}
				for _, e := range prop.Enum {
					s.Enum = append(s.Enum, fmt.Sprint(e))
				}
				props[name] = s
			}

			decl.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   tool.Function.Parameters.Required,
			}
		}

		decls = append(decls, decl)
	}
	return decls
}
