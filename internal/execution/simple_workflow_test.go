package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
)

func TestSimpleWorkflowEmptyStepsYieldsUncompletedNoError(t *testing.T) {
	executor := NewSimpleWorkflowExecutor(func(ctx context.Context, agentName, userMessage, sessionID string) (TurnResult, error) {
		t.Fatal("runAgent should never be called for a workflow with no steps")
		return TurnResult{}, nil
	})

	result, err := executor.Run(context.Background(), mcptypes.WorkflowConfig{Name: "empty"}, "hi", "sess")

	require.NoError(t, err)
	assert.False(t, result.Completed)
}

func TestSimpleWorkflowChainsStepOutputIntoNextStepInput(t *testing.T) {
	var seenMessages []string
	executor := NewSimpleWorkflowExecutor(func(ctx context.Context, agentName, userMessage, sessionID string) (TurnResult, error) {
		seenMessages = append(seenMessages, userMessage)
		return TurnResult{FinalResponse: "response from " + agentName, StopReason: StopReasonComplete}, nil
	})

	workflow := mcptypes.WorkflowConfig{Name: "pipeline", Steps: []string{"researcher", "writer"}}
	result, err := executor.Run(context.Background(), workflow, "initial message", "sess")

	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, []string{"initial message", "response from researcher"}, seenMessages)
	assert.Equal(t, "response from writer", result.FinalResponse)
	assert.Equal(t, []string{"response from researcher", "response from writer"}, result.StepResponses)
}

func TestSimpleWorkflowAbortsOnStepAgentError(t *testing.T) {
	executor := NewSimpleWorkflowExecutor(func(ctx context.Context, agentName, userMessage, sessionID string) (TurnResult, error) {
		return TurnResult{}, errors.New("llm unreachable")
	})

	_, err := executor.Run(context.Background(), mcptypes.WorkflowConfig{Name: "pipeline", Steps: []string{"researcher"}}, "hi", "sess")

	var stepErr *mcperrors.WorkflowStepFailed
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 0, stepErr.StepIndex)
}

func TestSimpleWorkflowAbortsWhenStepDoesNotComplete(t *testing.T) {
	executor := NewSimpleWorkflowExecutor(func(ctx context.Context, agentName, userMessage, sessionID string) (TurnResult, error) {
		return TurnResult{FinalResponse: "partial", StopReason: StopReasonTurnLimitReached}, nil
	})

	_, err := executor.Run(context.Background(), mcptypes.WorkflowConfig{Name: "pipeline", Steps: []string{"researcher", "writer"}}, "hi", "sess")

	var stepErr *mcperrors.WorkflowStepFailed
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 0, stepErr.StepIndex, "should fail at the first non-completing step, not run the second")
}
