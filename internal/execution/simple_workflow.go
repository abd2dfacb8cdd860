package execution

import (
	"context"
	"fmt"

	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
)

// SimpleWorkflowResult is the outcome of running a sequential workflow.
type SimpleWorkflowResult struct {
	StepResponses []string
	FinalResponse string
	Completed     bool // false for the zero-step case and when a step fails
}

// AgentRunnerFunc invokes one agent turn by name, resolving its LLM client
// and config — supplied by ExecutionFacade so SimpleWorkflowExecutor
// doesn't need to know how agents or LLM clients are constructed.
type AgentRunnerFunc func(ctx context.Context, agentName, userMessage, sessionID string) (TurnResult, error)

// SimpleWorkflowExecutor runs a WorkflowConfig's steps in sequence, feeding
// each step's final textual response as the next step's user message.
// Grounded on the teacher's internal/workflow.WorkflowExecutor sequential
// step loop, replacing direct tool calls with agent turns (this spec's
// simple workflow steps name agents, not tools) and dropping the
// template-variable resolution the teacher's tool-argument steps needed.
type SimpleWorkflowExecutor struct {
	runAgent AgentRunnerFunc
}

// NewSimpleWorkflowExecutor returns an executor that dispatches each step
// through runAgent.
func NewSimpleWorkflowExecutor(runAgent AgentRunnerFunc) *SimpleWorkflowExecutor {
	return &SimpleWorkflowExecutor{runAgent: runAgent}
}

// Run executes workflow's steps in order. An empty step list yields a
// Completed=false result with no error, per the "completed_empty" outcome.
func (e *SimpleWorkflowExecutor) Run(ctx context.Context, workflow mcptypes.WorkflowConfig, initialMessage, sessionID string) (SimpleWorkflowResult, error) {
	if len(workflow.Steps) == 0 {
		return SimpleWorkflowResult{Completed: false}, nil
	}

	result := SimpleWorkflowResult{StepResponses: make([]string, 0, len(workflow.Steps))}
	message := initialMessage

	for i, agentName := range workflow.Steps {
		turn, err := e.runAgent(ctx, agentName, message, sessionID)
		if err != nil {
			return result, &mcperrors.WorkflowStepFailed{Workflow: workflow.Name, StepIndex: i, Cause: err}
		}
		if turn.StopReason != StopReasonComplete {
			return result, &mcperrors.WorkflowStepFailed{
				Workflow:  workflow.Name,
				StepIndex: i,
				Cause:     fmt.Errorf("step agent %q did not complete (stop_reason=%s)", agentName, turn.StopReason),
			}
		}

		result.StepResponses = append(result.StepResponses, turn.FinalResponse)
		message = turn.FinalResponse
	}

	result.FinalResponse = message
	result.Completed = true
	return result, nil
}
