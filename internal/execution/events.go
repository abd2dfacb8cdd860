// Events carries the streaming SSE taxonomy StreamAgent emits: one event
// per conceptual block (message start/stop, text deltas, tool-use
// lifecycle, tool results, completion). Every block-scoped event carries a
// host-minted "frontend index" — a monotonic counter independent of
// whatever indexing scheme the LLM provider itself uses internally, so the
// UI can address blocks stably across providers.
package execution

// EventType names one entry in the streaming taxonomy.
type EventType string

const (
	EventMessageStart        EventType = "message_start"
	EventTextBlockStart      EventType = "text_block_start"
	EventTextDelta           EventType = "text_delta"
	EventContentBlockStop    EventType = "content_block_stop"
	EventToolUseStart        EventType = "tool_use_start"
	EventToolUseInputDelta   EventType = "tool_use_input_delta"
	EventToolUseInputDone    EventType = "tool_use_input_complete"
	EventToolResult          EventType = "tool_result"
	EventToolExecutionError  EventType = "tool_execution_error"
	EventLLMCallCompleted    EventType = "llm_call_completed"
	EventStreamEnd           EventType = "stream_end"
	EventPing                EventType = "ping"
)

// Event is one entry in an agent run's SSE stream.
type Event struct {
	Type        EventType `json:"type"`
	MessageID   string    `json:"message_id,omitempty"`
	FrontendIdx int       `json:"frontend_idx,omitempty"`
	Text        string    `json:"text,omitempty"`
	ToolID      string    `json:"tool_id,omitempty"`
	ToolName    string    `json:"tool_name,omitempty"`
	ToolInput   string    `json:"tool_input,omitempty"` // json_fragment on the delta event, finalized args on tool_use_input_complete
	ToolResult  any       `json:"tool_result,omitempty"`
	Error       string    `json:"error,omitempty"`
	StopReason  string    `json:"stop_reason,omitempty"`
}

// frontendIndexer mints the host's own monotonic block index, independent
// of the LLM provider's own per-response indexing. Every conceptual block
// (a text run, a tool-use block) gets the next index the first time a
// start event is emitted for it; subsequent delta/stop events for the same
// provider-side index reuse that frontend index until a new block starts.
type frontendIndexer struct {
	next       int
	llmToIdx   map[int]int
	toolToIdx  map[string]int
}

func newFrontendIndexer() *frontendIndexer {
	return &frontendIndexer{
		llmToIdx:  make(map[int]int),
		toolToIdx: make(map[string]int),
	}
}

// startBlock mints a fresh frontend index for a new text block keyed by the
// provider's own block index, replacing any stale mapping for that index.
func (f *frontendIndexer) startBlock(llmIdx int) int {
	idx := f.next
	f.next++
	f.llmToIdx[llmIdx] = idx
	return idx
}

// blockIndex returns the frontend index already minted for a provider
// block index; used by delta/stop events that follow a start event.
func (f *frontendIndexer) blockIndex(llmIdx int) (int, bool) {
	idx, ok := f.llmToIdx[llmIdx]
	return idx, ok
}

// startTool mints a fresh frontend index for a tool-use block keyed by the
// provider's tool call id.
func (f *frontendIndexer) startTool(toolID string) int {
	idx := f.next
	f.next++
	f.toolToIdx[toolID] = idx
	return idx
}

// toolIndex returns the frontend index minted for a tool call id.
func (f *frontendIndexer) toolIndex(toolID string) (int, bool) {
	idx, ok := f.toolToIdx[toolID]
	return idx, ok
}

// reset clears per-response mappings, called at the start of each new LLM
// call within a turn so a new response's block indices don't collide with
// the previous call's.
func (f *frontendIndexer) reset() {
	f.llmToIdx = make(map[int]int)
	f.toolToIdx = make(map[string]int)
}
