package execution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcphost/internal/history"
	"mcphost/internal/llm"
	"mcphost/internal/mcptypes"
)

func drainEvents(events <-chan Event) []Event {
	var out []Event
	for e := range events {
		out = append(out, e)
	}
	return out
}

func TestStreamAgentEmitsMessageStartWithMessageID(t *testing.T) {
	client := &scriptedClient{responses: []llm.CallResult{{Text: "hi"}}}
	runner := NewRunner(&fakeHost{}, &fakeCatalog{}, history.NewMemoryStore())

	events := make(chan Event, 32)
	runner.StreamAgent(context.Background(), RunAgentInput{
		Agent:       mcptypes.AgentConfig{Name: "assistant"},
		Client:      client,
		UserMessage: "hi",
	}, events)

	got := drainEvents(events)
	require.NotEmpty(t, got)
	assert.Equal(t, EventMessageStart, got[0].Type)
	assert.NotEmpty(t, got[0].MessageID, "message_start must carry a minted message id")
}

func TestStreamAgentFrontendIndicesAreMonotonicAcrossBlocks(t *testing.T) {
	client := &scriptedClient{responses: []llm.CallResult{
		{Text: "thinking", ToolCalls: []llm.ToolCall{{ID: "t1", Name: "lookup"}}},
		{Text: "final answer"},
	}}
	host := &fakeHost{results: map[string]*mcptypes.ToolResult{"lookup": {Content: []any{"42"}}}}
	runner := NewRunner(host, &fakeCatalog{}, history.NewMemoryStore())

	events := make(chan Event, 64)
	runner.StreamAgent(context.Background(), RunAgentInput{
		Agent:       mcptypes.AgentConfig{Name: "assistant"},
		Client:      client,
		UserMessage: "go",
	}, events)

	got := drainEvents(events)

	var blockStarts []int
	for _, e := range got {
		switch e.Type {
		case EventTextBlockStart, EventToolUseStart:
			blockStarts = append(blockStarts, e.FrontendIdx)
		}
	}

	require.Len(t, blockStarts, 3, "expected a text block for the first response, a tool-use block, and a text block for the final response")
	for i := 1; i < len(blockStarts); i++ {
		assert.Greater(t, blockStarts[i], blockStarts[i-1], "frontend indices must be strictly increasing across blocks")
	}
}

func TestStreamAgentToolUseInputCompleteCarriesFinalizedArgs(t *testing.T) {
	client := &scriptedClient{responses: []llm.CallResult{
		{Text: "thinking", ToolCalls: []llm.ToolCall{{ID: "t1", Name: "lookup", Arguments: map[string]any{"q": "weather"}}}},
		{Text: "final answer"},
	}}
	host := &fakeHost{results: map[string]*mcptypes.ToolResult{"lookup": {Content: []any{"42"}}}}
	runner := NewRunner(host, &fakeCatalog{}, history.NewMemoryStore())

	events := make(chan Event, 64)
	runner.StreamAgent(context.Background(), RunAgentInput{
		Agent:       mcptypes.AgentConfig{Name: "assistant"},
		Client:      client,
		UserMessage: "go",
	}, events)

	got := drainEvents(events)

	var complete *Event
	for i := range got {
		if got[i].Type == EventToolUseInputDone {
			complete = &got[i]
			break
		}
	}
	require.NotNil(t, complete, "expected a tool_use_input_complete event")
	assert.JSONEq(t, `{"q":"weather"}`, complete.ToolInput)
}

func TestStreamAgentClosesChannelAndEmitsStreamEnd(t *testing.T) {
	client := &scriptedClient{responses: []llm.CallResult{{Text: "done"}}}
	runner := NewRunner(&fakeHost{}, &fakeCatalog{}, history.NewMemoryStore())

	events := make(chan Event, 32)
	runner.StreamAgent(context.Background(), RunAgentInput{
		Agent:       mcptypes.AgentConfig{Name: "assistant"},
		Client:      client,
		UserMessage: "hi",
	}, events)

	got := drainEvents(events)
	last := got[len(got)-1]
	assert.Equal(t, EventStreamEnd, last.Type)
	assert.Equal(t, StopReasonComplete, last.StopReason)
	assert.Empty(t, last.Error)
}

func TestStreamAgentReportsLLMFailureOnStreamEndNotPanic(t *testing.T) {
	client := &scriptedClient{errs: []error{assert.AnError}}
	runner := NewRunner(&fakeHost{}, &fakeCatalog{}, history.NewMemoryStore())

	events := make(chan Event, 8)
	runner.StreamAgent(context.Background(), RunAgentInput{
		Agent:       mcptypes.AgentConfig{Name: "assistant"},
		Client:      client,
		UserMessage: "hi",
	}, events)

	got := drainEvents(events)
	last := got[len(got)-1]
	assert.Equal(t, EventStreamEnd, last.Type)
	assert.NotEmpty(t, last.Error)
}
