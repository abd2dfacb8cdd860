package execution

import (
	"context"
	"fmt"

	"mcphost/internal/filtering"
	"mcphost/internal/llm"
	"mcphost/internal/mcptypes"
)

// fakeHost is a TurnHost that returns a scripted result (or error) for every
// ExecuteTool call, recording each call it receives.
type fakeHost struct {
	results map[string]*mcptypes.ToolResult
	errs    map[string]error
	calls   []string
}

func (f *fakeHost) ExecuteTool(ctx context.Context, name string, args map[string]any, policy *filtering.FilteringManager, preferredClient string) (*mcptypes.ToolResult, error) {
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if res, ok := f.results[name]; ok {
		return res, nil
	}
	return &mcptypes.ToolResult{Content: []any{"ok"}}, nil
}

// fakeCatalog is a ToolCatalog that always returns a fixed schema list.
type fakeCatalog struct {
	schemas []llm.ToolSchema
}

func (f *fakeCatalog) VisibleTools(agent mcptypes.AgentConfig, policy *filtering.FilteringManager) []llm.ToolSchema {
	return f.schemas
}

// scriptedClient is an llm.Client that returns one CallResult per call, in
// order; it errors if asked for more calls than scripted.
type scriptedClient struct {
	responses []llm.CallResult
	errs      []error
	calls     int
	closed    bool
}

func (c *scriptedClient) Call(ctx context.Context, history []mcptypes.Message, params llm.CallParams) (llm.CallResult, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return llm.CallResult{}, c.errs[i]
	}
	if i >= len(c.responses) {
		return llm.CallResult{}, fmt.Errorf("scriptedClient: no response scripted for call %d", i)
	}
	return c.responses[i], nil
}

func (c *scriptedClient) Close() error {
	c.closed = true
	return nil
}
