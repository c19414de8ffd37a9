package agentboot

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
)

// DelegateToolName is the tool name under which an agent is offered to its
// parent.
func DelegateToolName(agentName string) string {
	return "transfer_to_" + agentName
}

// AsTool wraps the agent as a tool taking a free-text task. The sub-agent
// keeps its own conversation under "<parent session>/<name>", its progress is
// forwarded to the caller's reporter and its answer is written to the caller's
// session state under the sub-agent's output key.
func (a *Agent) AsTool() MCPTool {
	description := a.config.Description
	if description == "" {
		description = fmt.Sprintf("Delegate a task to the %s agent.", a.config.Name)
	}

	return NewMCPToolBuilder(DelegateToolName(a.config.Name), description).
		StringParam("task", "Precise description of the task for the "+a.config.Name+" agent, including every identifier it needs.", true).
		WithHandler(func(ctx context.Context, params api.ToolCallFunctionArguments) <-chan *schema.ToolResultChunk {
			out := make(chan *schema.ToolResultChunk, 1)

			go func() {
				defer close(out)

				chunk := NewToolResultChunk().Title(a.config.Name+" report").MetadataKV("agent", a.config.Name)

				task, err := ArgString(params, "task")
				if err != nil {
					out <- chunk.Error(err.Error()).Build()
					return
				}

				var reporter ProgressReporter = &NoOpProgressReporter{}
				sessionID := ""
				parent := runFromContext(ctx)
				if parent != nil {
					reporter = &delegateReporter{inner: parent.reporter}
					if parent.sessionID != "" {
						sessionID = parent.sessionID + "/" + a.config.Name
					}
				}

				reporter.Send(NewProgressUpdate(schema.StageDelegationStarting, fmt.Sprintf("Delegating to %s: %s", a.config.Name, task)))

				result, err := a.Execute(ctx, reporter, &schema.GenerateAnswerRequest{Question: task, SessionId: sessionID})
				if err != nil {
					out <- chunk.Error(err.Error()).Build()
					return
				}

				if parent != nil && a.config.OutputKey != "" && result.Answer != "" {
					parent.setState(a.config.OutputKey, result.Answer)
				}

				reporter.Send(NewProgressUpdate(schema.StageDelegationCompleted,
					fmt.Sprintf("%s finished in %d ms", a.config.Name, result.ProcessingTime)))

				if result.Answer == "" {
					out <- chunk.Error(a.config.Name + " returned no answer").Build()
					return
				}

				if a.config.OutputKey != "" {
					chunk.MetadataKV("output_key", a.config.OutputKey)
				}
				out <- chunk.Sentences(result.Answer).Build()
			}()

			return out
		}).
		Build()
}
