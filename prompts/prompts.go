package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.md templates/agents/*.md
var templatesFS embed.FS

func render(name string, data any) (string, error) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderSummarizationPrompt renders the summarization prompt using embedded Go templates
func RenderSummarizationPrompt(query, content, toolInputs string) (systemPrompt, userPrompt string, err error) {
	data := struct {
		Query      string
		Content    string
		ToolInputs string
	}{
		Query:      query,
		Content:    content,
		ToolInputs: toolInputs,
	}

	if systemPrompt, err = render("summarize_context_system.md", data); err != nil {
		return "", "", err
	}
	if userPrompt, err = render("summarize_context_user.md", data); err != nil {
		return "", "", err
	}
	return systemPrompt, userPrompt, nil
}

// RenderToolSelectionPrompt renders the system prompt for one tool-selection
// step. turn is zero based.
func RenderToolSelectionPrompt(instruction string, turn, maxTurns int) (string, error) {
	return render("tool_selection_system.md", struct {
		Instruction string
		Turn        int
		MaxTurns    int
		FinalTurn   bool
	}{
		Instruction: instruction,
		Turn:        turn + 1,
		MaxTurns:    maxTurns,
		FinalTurn:   turn+1 >= maxTurns,
	})
}

type InferenceWithToolPromptData struct {
	ToolDescriptions    []string
	MaxTools            int
	Query               string
	Context             string
	PreviousToolResults string
}

// RenderInferenceWithToolPrompt renders the JSON tool-calling protocol used by
// models without native function calling.
func RenderInferenceWithToolPrompt(data InferenceWithToolPromptData) (systemPrompt, userPrompt string, err error) {
	if systemPrompt, err = render("inference_with_tools_system.md", data); err != nil {
		return "", "", err
	}
	if userPrompt, err = render("inference_with_tools_user.md", data); err != nil {
		return "", "", err
	}
	return systemPrompt, userPrompt, nil
}

type Delegate struct {
	Name        string
	ToolName    string
	Description string
}

type AgentInstructionData struct {
	Delegates []Delegate
}

// RenderAgentInstruction renders templates/agents/<name>.md.
func RenderAgentInstruction(name string, data AgentInstructionData) (string, error) {
	out, err := render("agents/"+name+".md", data)
	if err != nil {
		return "", fmt.Errorf("instruction %q: %w", name, err)
	}
	return out, nil
}

// RenderTargetAssessmentPrompt renders the user prompt that walks a client
// through a target assessment. disease may be empty.
func RenderTargetAssessmentPrompt(target, disease string) (string, error) {
	return render("target_assessment.md", struct {
		Target  string
		Disease string
	}{Target: target, Disease: disease})
}
