package execution

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"mcphost/internal/filtering"
	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
	"mcphost/pkg/logging"
)

// textChunkSize bounds how much text accompanies one text_delta event, so a
// long response streams as several deltas instead of one giant block.
const textChunkSize = 64

// StreamAgent runs the same turn loop as RunAgent but emits one Event per
// conceptual block onto events, so a caller can relay live progress to a
// frontend. The channel is closed when the run ends, successfully or not;
// a terminal error is reported via EventStreamEnd's Error field rather than
// the function's return value, since by the time an error can occur the
// caller may already be mid-stream.
func (r *Runner) StreamAgent(ctx context.Context, in RunAgentInput, events chan<- Event) {
	defer close(events)

	idx := newFrontendIndexer()
	policy := filtering.New(in.Agent)

	var messages []mcptypes.Message
	if in.Agent.IncludeHistory && in.SessionID != "" {
		prior, err := r.history.Get(ctx, in.Agent.Name, in.SessionID)
		if err != nil && !mcperrors.IsComponentNotFound(err) {
			events <- Event{Type: EventStreamEnd, Error: fmt.Sprintf("loading history: %v", err)}
			return
		}
		messages = append(messages, prior.Messages...)
	}
	messages = append(messages, mcptypes.Message{Role: "user", Content: in.UserMessage})

	tools := r.tools.VisibleTools(in.Agent, policy)
	params := resolveParams(in.Override, in.LLMConfig, in.Agent, tools)

	events <- Event{Type: EventMessageStart, MessageID: uuid.New().String()}

	stopReason := StopReasonTurnLimitReached
	maxIterations := in.Agent.EffectiveMaxIterations()

	for iteration := 0; iteration < maxIterations; iteration++ {
		idx.reset()

		result, err := in.Client.Call(ctx, messages, params)
		if err != nil {
			events <- Event{Type: EventStreamEnd, Error: fmt.Sprintf("llm call failed: %v", err)}
			return
		}

		messages = append(messages, mcptypes.Message{Role: "assistant", Content: result.Text})
		r.emitTextBlock(events, idx, 0, result.Text)
		events <- Event{Type: EventLLMCallCompleted, StopReason: result.StopReason}

		if len(result.ToolCalls) == 0 {
			stopReason = StopReasonComplete
			break
		}

		for _, call := range result.ToolCalls {
			toolFrontendIdx := idx.startTool(call.ID)
			inputJSON, _ := json.Marshal(call.Arguments)
			events <- Event{Type: EventToolUseStart, FrontendIdx: toolFrontendIdx, ToolID: call.ID, ToolName: call.Name}
			events <- Event{Type: EventToolUseInputDelta, FrontendIdx: toolFrontendIdx, ToolID: call.ID, ToolInput: string(inputJSON)}
			events <- Event{Type: EventToolUseInputDone, FrontendIdx: toolFrontendIdx, ToolID: call.ID, ToolInput: string(inputJSON)}

			toolResult, err := r.host.ExecuteTool(ctx, call.Name, call.Arguments, policy, in.PreferredClient)
			if err != nil {
				logging.Warn("Agent", "tool %q failed for agent %q: %v", call.Name, in.Agent.Name, err)
				events <- Event{Type: EventToolExecutionError, FrontendIdx: toolFrontendIdx, ToolID: call.ID, Error: err.Error()}
				messages = append(messages, mcptypes.Message{
					Role:    "tool",
					Content: mcptypes.ToolResult{Content: []any{fmt.Sprintf("error: %v", err)}, IsError: true},
				})
				continue
			}

			events <- Event{Type: EventToolResult, FrontendIdx: toolFrontendIdx, ToolID: call.ID, ToolResult: toolResult}
			messages = append(messages, mcptypes.Message{Role: "tool", Content: *toolResult})
		}
	}

	if in.Agent.IncludeHistory && in.SessionID != "" {
		if err := r.history.Save(ctx, mcptypes.ConversationHistory{
			AgentName: in.Agent.Name,
			SessionID: in.SessionID,
			Messages:  messages,
		}); err != nil {
			events <- Event{Type: EventStreamEnd, Error: fmt.Sprintf("saving history: %v", err), StopReason: stopReason}
			return
		}
	}

	events <- Event{Type: EventStreamEnd, StopReason: stopReason}
}

// emitTextBlock splits text into fixed-size chunks and emits a
// text_block_start followed by text_delta events, then a
// content_block_stop, all sharing one frontend index.
func (r *Runner) emitTextBlock(events chan<- Event, idx *frontendIndexer, llmBlockIdx int, text string) {
	if text == "" {
		return
	}
	frontendIdx := idx.startBlock(llmBlockIdx)
	events <- Event{Type: EventTextBlockStart, FrontendIdx: frontendIdx}

	for start := 0; start < len(text); start += textChunkSize {
		end := start + textChunkSize
		if end > len(text) {
			end = len(text)
		}
		events <- Event{Type: EventTextDelta, FrontendIdx: frontendIdx, Text: text[start:end]}
	}

	events <- Event{Type: EventContentBlockStop, FrontendIdx: frontendIdx}
}
