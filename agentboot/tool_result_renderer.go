package agentboot

import (
	"context"
	"maps"
	"strconv"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"github.com/SaiNageswarS/opentargets-agent/llm"
	"github.com/SaiNageswarS/opentargets-agent/prompts"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"go.uber.org/zap"
)

// Chunks shorter than this are passed through even when the tool asks for
// summarization. Single drug or disease records are already compact.
const defaultSummarizeMinSentences = 5

// ToolResultRenderer turns the chunks of one tool call into markdown
// sections for the conversation, optionally condensing long chunks with the
// summarization model first.
type ToolResultRenderer struct {
	reporter     ProgressReporter
	summarizer   llm.LLMClient
	toolName     string
	minSentences int
}

type ToolResultRendererOption func(*ToolResultRenderer)

func NewToolResultRenderer(opts ...ToolResultRendererOption) *ToolResultRenderer {
	r := &ToolResultRenderer{
		reporter:     &NoOpProgressReporter{},
		minSentences: defaultSummarizeMinSentences,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithReporter forwards every rendered chunk to reporter, tagged with toolName.
func WithReporter(reporter ProgressReporter, toolName string) ToolResultRendererOption {
	return func(r *ToolResultRenderer) {
		r.reporter = reporter
		r.toolName = toolName
	}
}

// WithSummarizationModel sets the model used when a tool enables
// SummarizeContext. Without one chunks are never summarized.
func WithSummarizationModel(model llm.LLMClient) ToolResultRendererOption {
	return func(r *ToolResultRenderer) {
		r.summarizer = model
	}
}

func WithSummarizeMinSentences(n int) ToolResultRendererOption {
	return func(r *ToolResultRenderer) {
		r.minSentences = n
	}
}

// Render drains results concurrently. Chunks judged irrelevant by the
// summarizer are dropped; the rest come back in completion order.
func (r *ToolResultRenderer) Render(ctx context.Context, question, toolInputsMD string, results <-chan *schema.ToolResultChunk, summarize bool) ([]string, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	summarize = summarize && r.summarizer != nil

	return linq.Pipe4(
		linq.NewStream(streamCtx, results, cancel, 10),

		linq.SelectPar(func(chunk *schema.ToolResultChunk) *schema.ToolResultChunk {
			if chunk == nil || !summarize || !r.needsSummary(chunk) {
				return chunk
			}
			return r.summarize(streamCtx, chunk, question, toolInputsMD)
		}),

		linq.Where(func(chunk *schema.ToolResultChunk) bool {
			return chunk != nil
		}),

		linq.Select(func(chunk *schema.ToolResultChunk) string {
			if chunk.ToolName == "" {
				chunk.ToolName = r.toolName
			}
			r.reporter.Send(NewToolExecutionResult(r.toolName, chunk))
			return FormatToolResultMarkdown(chunk)
		}),

		linq.ToSlice[string](),
	)
}

func (r *ToolResultRenderer) needsSummary(chunk *schema.ToolResultChunk) bool {
	return chunk.Error == "" && len(chunk.Sentences) >= r.minSentences
}

// summarize returns nil when the model marks the chunk irrelevant and the
// chunk unchanged when the model fails.
func (r *ToolResultRenderer) summarize(ctx context.Context, chunk *schema.ToolResultChunk, question, toolInputs string) *schema.ToolResultChunk {
	systemPrompt, userPrompt, err := prompts.RenderSummarizationPrompt(question, strings.Join(chunk.Sentences, "\n"), toolInputs)
	if err != nil {
		logger.Error("Failed to render summarization prompt", zap.String("title", chunk.Title), zap.Error(err))
		return chunk
	}

	var summary strings.Builder
	err = r.summarizer.GenerateInference(ctx,
		[]llm.Message{{Role: "user", Content: userPrompt}},
		func(part string) error {
			summary.WriteString(part)
			return nil
		},
		llm.WithTemperature(0.2),
		llm.WithSystemPrompt(systemPrompt),
	)
	if err != nil {
		logger.Error("Summarization failed, keeping full result", zap.String("title", chunk.Title), zap.Error(err))
		return chunk
	}

	text := strings.TrimSpace(summary.String())
	if text == "" || strings.Contains(text, "# IRRELEVANT") {
		logger.Info("Dropping irrelevant tool result", zap.String("tool", r.toolName), zap.String("title", chunk.Title))
		return nil
	}

	condensed := &schema.ToolResultChunk{
		ToolName:    chunk.ToolName,
		Title:       chunk.Title,
		Attribution: chunk.Attribution,
		Sentences:   summaryLines(text),
		Metadata:    maps.Clone(chunk.Metadata),
	}
	if condensed.Metadata == nil {
		condensed.Metadata = map[string]string{}
	}
	condensed.Metadata["summarized"] = "true"
	condensed.Metadata["original_sentence_count"] = strconv.Itoa(len(chunk.Sentences))

	logger.Info("Summarized tool result",
		zap.String("tool", r.toolName),
		zap.String("title", chunk.Title),
		zap.Int("from", len(chunk.Sentences)),
		zap.Int("to", len(condensed.Sentences)))
	return condensed
}

// summaryLines splits a model summary into sentences, dropping list markers
// and blank lines.
func summaryLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
