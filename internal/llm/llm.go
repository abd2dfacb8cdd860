// Package llm defines the Client interface the agent turn loop drives, and
// a small registry of provider constructors keyed by LLMConfig.Provider.
// The interface is intentionally narrow — one tool-aware chat call — so any
// provider SDK can be adapted behind it. Shaped after the teacher pack's
// own LLM adapter pattern (AgenticGoKit's LLMAdapter interface-segregation
// style), generalized from plain prompt/response to the tool-use turn the
// spec's agent loop needs.
package llm

import (
	"context"
	"fmt"

	"mcphost/internal/mcptypes"
)

// ToolSchema is the subset of a tool's descriptor an LLM call needs to
// offer it to the model.
type ToolSchema struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolCall is one tool invocation requested by the model in its response.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// CallParams are the effective parameters for one LLM call, already
// resolved through the per-call/agent/client precedence chain (see
// internal/execution/params.go).
type CallParams struct {
	Provider     string
	ModelName    string
	Temperature  *float64
	MaxTokens    *int
	SystemPrompt string
	Tools        []ToolSchema
}

// CallResult is one LLM response: text content, any tool calls requested,
// and whether the model signaled it is done.
type CallResult struct {
	Text         string
	ToolCalls    []ToolCall
	StopReason   string
	InputTokens  int
	OutputTokens int
}

// Client is the turn-loop-facing LLM surface: one call given the running
// message history and the effective parameters for this turn.
type Client interface {
	Call(ctx context.Context, history []mcptypes.Message, params CallParams) (CallResult, error)
	Close() error
}

// Factory constructs a Client for one LLMConfig. Registered per provider
// name so ExecutionFacade's client cache can build clients on demand
// without a hardwired provider list.
type Factory func(cfg mcptypes.LLMConfig) (Client, error)

var factories = make(map[string]Factory)

// RegisterProvider makes a provider constructor available under name. Call
// from an init() in the package that wires a concrete SDK (e.g. an
// Anthropic or OpenAI client adapter); not calling this for an unused
// provider is fine, the factory simply won't be found.
func RegisterProvider(name string, factory Factory) {
	factories[name] = factory
}

// New builds a Client for cfg using the factory registered for
// cfg.Provider.
func New(cfg mcptypes.LLMConfig) (Client, error) {
	factory, ok := factories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("no llm provider registered for %q", cfg.Provider)
	}
	return factory(cfg)
}
