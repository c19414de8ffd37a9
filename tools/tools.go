// Package tools exposes the Open Targets lookups to agents as MCP tools.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/opentargets-agent/agentboot"
	"github.com/SaiNageswarS/opentargets-agent/opentargets"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

const attribution = "Open Targets Platform (https://platform.opentargets.org)"

// OpenTargets is the part of *opentargets.Client the tools call.
type OpenTargets interface {
	SearchDisease(ctx context.Context, name string) (opentargets.SearchHit, error)
	DiseaseAssociations(ctx context.Context, diseaseID string, limit int) ([]opentargets.AssociatedTarget, error)
	TargetDrugs(ctx context.Context, targetIDs []string, limit int) (map[string][]string, error)
	DrugsInfo(ctx context.Context, ids []string, searchByName bool) (map[string]opentargets.DrugInfo, error)
	TargetTractability(ctx context.Context, ensemblIDs []string) (map[string]opentargets.TargetReport, error)
	TargetChemicalProbes(ctx context.Context, ensemblIDs []string) (map[string]opentargets.TargetReport, error)
	TargetPrioritisation(ctx context.Context, ensemblIDs []string) (map[string]opentargets.TargetReport, error)
	TargetSafety(ctx context.Context, ensemblIDs []string) (map[string]opentargets.TargetReport, error)
}

// Registry indexes tools by name.
type Registry map[string]agentboot.MCPTool

func NewRegistry(tools ...agentboot.MCPTool) Registry {
	r := make(Registry, len(tools))
	for _, t := range tools {
		r[t.Function.Name] = t
	}
	return r
}

// Resolve returns the named tools in order, failing on the first unknown name.
func (r Registry) Resolve(names []string) ([]agentboot.MCPTool, error) {
	out := make([]agentboot.MCPTool, 0, len(names))
	for _, n := range names {
		t, ok := r[n]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q", n)
		}
		out = append(out, t)
	}
	return out, nil
}

// OpenTargetsTools returns the data steward and safety tools.
func OpenTargetsTools(client OpenTargets) []agentboot.MCPTool {
	return append(DataStewardTools(client), SafetyTools(client)...)
}

// handler adapts a function producing chunks into a tool handler. The
// returned channel is closed once fn returns; an error from fn becomes a
// chunk carrying Error.
func handler(name string, fn func(ctx context.Context, params api.ToolCallFunctionArguments, emit func(*schema.ToolResultChunk)) error) func(context.Context, api.ToolCallFunctionArguments) <-chan *schema.ToolResultChunk {
	return func(ctx context.Context, params api.ToolCallFunctionArguments) <-chan *schema.ToolResultChunk {
		out := make(chan *schema.ToolResultChunk, 8)

		go func() {
			defer close(out)

			emit := func(chunk *schema.ToolResultChunk) {
				if chunk.Attribution == "" {
					chunk.Attribution = attribution
				}
				select {
				case out <- chunk:
				case <-ctx.Done():
				}
			}

			if err := fn(ctx, params, emit); err != nil {
				logger.Error("Tool failed", zap.String("tool", name), zap.Error(err))
				emit(agentboot.NewToolResultChunk().Title(name).Error(err.Error()).Build())
			}
		}()

		return out
	}
}

// idsArg reads a list of ids with repeats dropped.
func idsArg(params api.ToolCallFunctionArguments, key string) ([]string, error) {
	raw, err := agentboot.ArgStringSlice(params, key)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	ids := raw[:0]
	for _, id := range raw {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func joinErrors(errs []opentargets.GraphQLError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func formatScore(f *float64) string {
	if f == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *f)
}
