// Agent implements the multi-turn tool-use loop: load prior history if
// requested, append the new user message, then repeatedly ask the LLM for
// a response, execute any tool calls it requests, and feed the results
// back — until the model stops requesting tools or the agent's iteration
// budget runs out. Grounded in shape on the teacher's
// internal/workflow.WorkflowExecutor step loop (sequential progression,
// partial results preserved through failure), generalized from a fixed
// tool-call sequence to an open-ended LLM-driven loop since the teacher
// itself has no agent turn loop to copy directly.
package execution

import (
	"context"
	"fmt"

	"mcphost/internal/filtering"
	"mcphost/internal/llm"
	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
	"mcphost/pkg/logging"
)

// StopReason values mirror the spec's agent-loop outcomes.
const (
	StopReasonComplete         = "complete"
	StopReasonTurnLimitReached = "turn_limit_reached"
)

// TurnHost is the subset of mcphost.Host the agent loop needs: resolving
// and executing a tool call under a policy.
type TurnHost interface {
	ExecuteTool(ctx context.Context, name string, args map[string]any, policy *filtering.FilteringManager, preferredClient string) (*mcptypes.ToolResult, error)
}

// ToolCatalog supplies the tool schemas visible to one agent call, already
// narrowed by the agent's filtering policy.
type ToolCatalog interface {
	VisibleTools(agent mcptypes.AgentConfig, policy *filtering.FilteringManager) []llm.ToolSchema
}

// RunAgentInput is everything one RunAgent call needs.
type RunAgentInput struct {
	Agent           mcptypes.AgentConfig
	LLMConfig       mcptypes.LLMConfig
	Client          llm.Client
	UserMessage     string
	SessionID       string
	Override        CallOverride
	PreferredClient string
}

// TurnResult is RunAgent's return value.
type TurnResult struct {
	FinalResponse string
	History       []mcptypes.Message
	StopReason    string
}

// Runner executes agent turns against a host and an optional history store.
type Runner struct {
	host    TurnHost
	tools   ToolCatalog
	history HistoryStore
}

// HistoryStore is the narrow history dependency Runner needs.
type HistoryStore interface {
	Get(ctx context.Context, agentName, sessionID string) (mcptypes.ConversationHistory, error)
	Save(ctx context.Context, history mcptypes.ConversationHistory) error
}

// NewRunner returns a Runner.
func NewRunner(host TurnHost, tools ToolCatalog, history HistoryStore) *Runner {
	return &Runner{host: host, tools: tools, history: history}
}

// RunAgent executes one agent turn to completion (or to the iteration
// limit) and returns the final response, the accumulated message history,
// and why the loop stopped.
func (r *Runner) RunAgent(ctx context.Context, in RunAgentInput) (TurnResult, error) {
	policy := filtering.New(in.Agent)

	var messages []mcptypes.Message
	if in.Agent.IncludeHistory && in.SessionID != "" {
		prior, err := r.history.Get(ctx, in.Agent.Name, in.SessionID)
		if err != nil && !mcperrors.IsComponentNotFound(err) {
			return TurnResult{}, fmt.Errorf("loading history: %w", err)
		}
		messages = append(messages, prior.Messages...)
	}

	messages = append(messages, mcptypes.Message{Role: "user", Content: in.UserMessage})

	tools := r.tools.VisibleTools(in.Agent, policy)
	params := resolveParams(in.Override, in.LLMConfig, in.Agent, tools)

	stopReason := StopReasonTurnLimitReached
	var finalResponse string

	maxIterations := in.Agent.EffectiveMaxIterations()
	for iteration := 0; iteration < maxIterations; iteration++ {
		result, err := in.Client.Call(ctx, messages, params)
		if err != nil {
			return TurnResult{}, &mcperrors.LLMError{Cause: err}
		}

		messages = append(messages, mcptypes.Message{Role: "assistant", Content: result.Text})

		if len(result.ToolCalls) == 0 {
			finalResponse = result.Text
			stopReason = StopReasonComplete
			break
		}

		for _, call := range result.ToolCalls {
			toolResult, err := r.host.ExecuteTool(ctx, call.Name, call.Arguments, policy, in.PreferredClient)
			if err != nil {
				logging.Warn("Agent", "tool %q failed for agent %q: %v", call.Name, in.Agent.Name, err)
				messages = append(messages, mcptypes.Message{
					Role: "tool",
					Content: mcptypes.ToolResult{
						Content: []any{fmt.Sprintf("error: %v", err)},
						IsError: true,
					},
				})
				continue
			}
			messages = append(messages, mcptypes.Message{Role: "tool", Content: *toolResult})
		}

		finalResponse = result.Text
	}

	if in.Agent.IncludeHistory && in.SessionID != "" {
		if err := r.history.Save(ctx, mcptypes.ConversationHistory{
			AgentName: in.Agent.Name,
			SessionID: in.SessionID,
			Messages:  messages,
		}); err != nil {
			return TurnResult{}, fmt.Errorf("saving history: %w", err)
		}
	}

	return TurnResult{
		FinalResponse: finalResponse,
		History:       messages,
		StopReason:    stopReason,
	}, nil
}
