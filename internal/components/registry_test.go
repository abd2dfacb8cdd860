package components

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcphost/internal/mcptypes"
)

type stubToolExecutor struct {
	lastName string
	lastArgs map[string]any
	result   *mcptypes.ToolResult
	err      error
}

func (s *stubToolExecutor) CallTool(ctx context.Context, name string, args map[string]any) (*mcptypes.ToolResult, error) {
	s.lastName = name
	s.lastArgs = args
	return s.result, s.err
}

func TestToolManagerRegisterHonorsExclude(t *testing.T) {
	m := NewToolManager()
	m.Register("client-a", []mcptypes.ToolInfo{
		{Name: "search"},
		{Name: "delete"},
	}, map[string]struct{}{"delete": {}})

	tools := m.List("client-a")
	require.Len(t, tools, 1)
	assert.Equal(t, "search", tools[0].Name)
	assert.Equal(t, "client-a", tools[0].ClientID)

	_, ok := m.Lookup("client-a", "delete")
	assert.False(t, ok)
}

func TestToolManagerExecuteRequiresRegistration(t *testing.T) {
	m := NewToolManager()
	m.Register("client-a", []mcptypes.ToolInfo{{Name: "search"}}, nil)

	stub := &stubToolExecutor{result: &mcptypes.ToolResult{Content: []any{"ok"}}}
	result, err := m.Execute(context.Background(), stub, "client-a", "search", map[string]any{"q": "x"})
	require.NoError(t, err)
	assert.Equal(t, []any{"ok"}, result.Content)
	assert.Equal(t, "search", stub.lastName)

	_, err = m.Execute(context.Background(), stub, "client-a", "unknown", nil)
	assert.Error(t, err)
}

func TestToolManagerUnregisterLeavesNoTrace(t *testing.T) {
	m := NewToolManager()
	m.Register("client-a", []mcptypes.ToolInfo{{Name: "search"}}, nil)
	m.Unregister("client-a")
	assert.Empty(t, m.List("client-a"))
	assert.Empty(t, m.List(""))
}

func TestPromptManagerRegisterHonorsExclude(t *testing.T) {
	m := NewPromptManager()
	m.Register("client-a", []mcptypes.PromptInfo{
		{Name: "greeting"},
		{Name: "secret"},
	}, map[string]struct{}{"secret": {}})

	prompts := m.List("")
	require.Len(t, prompts, 1)
	assert.Equal(t, "greeting", prompts[0].Name)
}

func TestResourceManagerRegisterHonorsExclude(t *testing.T) {
	m := NewResourceManager()
	m.Register("client-a", []mcptypes.ResourceInfo{
		{URI: "file:///a"},
		{URI: "file:///secret"},
	}, map[string]struct{}{"file:///secret": {}})

	resources := m.List("client-a")
	require.Len(t, resources, 1)
	assert.Equal(t, "file:///a", resources[0].URI)
}
