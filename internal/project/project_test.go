package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcphost/internal/componentstore"
	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
)

func TestActivateSnapshotsStoreDefinitions(t *testing.T) {
	root := t.TempDir()
	store := componentstore.New(root)
	require.NoError(t, store.SaveAgent(mcptypes.AgentConfig{Name: "researcher"}))
	require.NoError(t, store.SaveLLM(mcptypes.LLMConfig{LLMID: "claude", Provider: "anthropic"}))

	mgr := New(store)
	require.NoError(t, mgr.Activate("demo"))

	active, err := mgr.Active()
	require.NoError(t, err)
	assert.Equal(t, "demo", active.Name)

	agent, err := mgr.ResolveAgent("researcher")
	require.NoError(t, err)
	assert.Equal(t, "researcher", agent.Name)
}

func TestResolveAgentNotFound(t *testing.T) {
	store := componentstore.New(t.TempDir())
	mgr := New(store)
	require.NoError(t, mgr.Activate("demo"))

	_, err := mgr.ResolveAgent("missing")
	assert.True(t, mcperrors.IsComponentNotFound(err))
}

func TestRegisterAgentIsRuntimeOnly(t *testing.T) {
	root := t.TempDir()
	store := componentstore.New(root)
	mgr := New(store)
	require.NoError(t, mgr.Activate("demo"))

	require.NoError(t, mgr.RegisterAgent(mcptypes.AgentConfig{Name: "dynamic"}))

	agent, err := mgr.ResolveAgent("dynamic")
	require.NoError(t, err)
	assert.Equal(t, "dynamic", agent.Name)

	_, ok := store.GetAgent("dynamic")
	assert.False(t, ok, "dynamic registration must not persist back to the component store")
}

func TestValidateDetectsUnknownLLMReference(t *testing.T) {
	store := componentstore.New(t.TempDir())
	mgr := New(store)
	require.NoError(t, mgr.Activate("demo"))
	require.NoError(t, mgr.RegisterAgent(mcptypes.AgentConfig{Name: "researcher", LLMConfigID: "missing-llm"}))

	errs := mgr.Validate()
	require.Len(t, errs, 1)
}
