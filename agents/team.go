// Package agents declares the research team and assembles it into runnable
// agents.
package agents

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/SaiNageswarS/opentargets-agent/agentboot"
	"github.com/SaiNageswarS/opentargets-agent/llm"
	"github.com/SaiNageswarS/opentargets-agent/memory"
	"github.com/SaiNageswarS/opentargets-agent/prompts"
	"github.com/SaiNageswarS/opentargets-agent/tools"
	"gopkg.in/yaml.v3"
)

//go:embed team.yaml
var defaultTeam []byte

type AgentSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Instruction names a template under prompts/templates/agents.
	Instruction string `yaml:"instruction"`
	OutputKey   string `yaml:"output_key"`
	// Model is "big" (default) or "mini".
	Model     string   `yaml:"model"`
	MaxTurns  int      `yaml:"max_turns"`
	Tools     []string `yaml:"tools"`
	Delegates []string `yaml:"delegates"`
}

type TeamSpec struct {
	Root   string      `yaml:"root"`
	Agents []AgentSpec `yaml:"agents"`
}

// DefaultTeamSpec returns the embedded team declaration.
func DefaultTeamSpec() (*TeamSpec, error) {
	return ParseTeamSpec(defaultTeam)
}

// ParseTeamSpec decodes and validates a team declaration. Unknown fields are
// rejected.
func ParseTeamSpec(data []byte) (*TeamSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var spec TeamSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("error parsing team: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *TeamSpec) validate() error {
	if len(s.Agents) == 0 {
		return errors.New("team has no agents")
	}

	seen := map[string]bool{}
	for _, a := range s.Agents {
		if a.Name == "" {
			return errors.New("agent without a name")
		}
		if seen[a.Name] {
			return fmt.Errorf("agent %q declared twice", a.Name)
		}
		seen[a.Name] = true

		switch a.Model {
		case "", "big", "mini":
		default:
			return fmt.Errorf("agent %q: model must be big or mini, got %q", a.Name, a.Model)
		}
	}

	for _, a := range s.Agents {
		for _, d := range a.Delegates {
			if !seen[d] {
				return fmt.Errorf("agent %q: unknown delegate %q", a.Name, d)
			}
		}
	}

	if !seen[s.Root] {
		return fmt.Errorf("root agent %q is not declared", s.Root)
	}
	return nil
}

func (s *TeamSpec) agent(name string) AgentSpec {
	for _, a := range s.Agents {
		if a.Name == name {
			return a
		}
	}
	return AgentSpec{}
}

type Models struct {
	Big  llm.LLMClient
	Mini llm.LLMClient
	// ToolSelector defaults to the agent's own model.
	ToolSelector llm.LLMClient
}

type TeamOptions struct {
	Models              Models
	Tools               tools.Registry
	ConversationManager *memory.ConversationManager
	MaxTurns            int
	MaxTokens           int
}

// Team is the assembled set of agents; Root is the entry point.
type Team struct {
	Root   *agentboot.Agent
	agents map[string]*agentboot.Agent
}

func (t *Team) Agent(name string) (*agentboot.Agent, bool) {
	a, ok := t.agents[name]
	return a, ok
}

// Agents lists every agent sorted by name.
func (t *Team) Agents() []*agentboot.Agent {
	out := make([]*agentboot.Agent, 0, len(t.agents))
	for _, a := range t.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// BuildTeam builds delegates before the agents that use them. Unknown tools
// and delegation cycles are errors.
func BuildTeam(spec *TeamSpec, opts TeamOptions) (*Team, error) {
	if opts.Models.Big == nil {
		return nil, errors.New("team needs a big model")
	}
	if opts.Models.Mini == nil {
		opts.Models.Mini = opts.Models.Big
	}

	b := &teamBuilder{spec: spec, opts: opts, built: map[string]*agentboot.Agent{}, building: map[string]bool{}}
	root, err := b.build(spec.Root)
	if err != nil {
		return nil, err
	}

	// Agents not reachable from the root are still built so they can be
	// addressed directly.
	for _, a := range spec.Agents {
		if _, err := b.build(a.Name); err != nil {
			return nil, err
		}
	}

	return &Team{Root: root, agents: b.built}, nil
}

type teamBuilder struct {
	spec     *TeamSpec
	opts     TeamOptions
	built    map[string]*agentboot.Agent
	building map[string]bool
}

func (b *teamBuilder) build(name string) (*agentboot.Agent, error) {
	if a, ok := b.built[name]; ok {
		return a, nil
	}
	if b.building[name] {
		return nil, fmt.Errorf("delegation cycle through agent %q", name)
	}
	b.building[name] = true
	defer delete(b.building, name)

	s := b.spec.agent(name)

	agentTools, err := b.opts.Tools.Resolve(s.Tools)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", name, err)
	}

	var delegates []prompts.Delegate
	for _, d := range s.Delegates {
		sub, err := b.build(d)
		if err != nil {
			return nil, err
		}
		tool := sub.AsTool()
		agentTools = append(agentTools, tool)
		delegates = append(delegates, prompts.Delegate{
			Name:        sub.Name(),
			ToolName:    tool.Function.Name,
			Description: sub.Description(),
		})
	}

	instruction := ""
	if s.Instruction != "" {
		instruction, err = prompts.RenderAgentInstruction(s.Instruction, prompts.AgentInstructionData{Delegates: delegates})
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", name, err)
		}
	}

	model := b.opts.Models.Big
	if s.Model == "mini" {
		model = b.opts.Models.Mini
	}

	maxTurns := b.opts.MaxTurns
	if s.MaxTurns > 0 {
		maxTurns = s.MaxTurns
	}

	builder := agentboot.NewAgentBuilder().
		WithName(s.Name).
		WithDescription(s.Description).
		WithOutputKey(s.OutputKey).
		WithBigModel(model).
		WithMiniModel(b.opts.Models.Mini).
		WithToolSelector(b.opts.Models.ToolSelector).
		WithSystemPrompt(instruction).
		AddTools(agentTools...).
		WithConversationManager(b.opts.ConversationManager)
	if maxTurns > 0 {
		builder.WithMaxTurns(maxTurns)
	}
	if b.opts.MaxTokens > 0 {
		builder.WithMaxTokens(b.opts.MaxTokens)
	}

	agent := builder.Build()
	b.built[name] = agent
	return agent, nil
}
