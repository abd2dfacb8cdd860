package mcphost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcphost/internal/filtering"
	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
)

type noopSecrets struct{}

func (noopSecrets) ResolveEnv(ctx context.Context, clientID string, refs []mcptypes.SecretRef) (map[string]string, error) {
	return nil, nil
}

func TestResolveTargetClientSingleCandidate(t *testing.T) {
	h := New(noopSecrets{})
	h.Router.RegisterProvider(mcptypes.KindTool, "search", "client-a")

	policy := filtering.New(mcptypes.AgentConfig{})
	clientID, err := h.ResolveTargetClient(mcptypes.KindTool, "search", policy, "")
	require.NoError(t, err)
	assert.Equal(t, "client-a", clientID)
}

func TestResolveTargetClientAmbiguousWithoutPreferred(t *testing.T) {
	h := New(noopSecrets{})
	h.Router.RegisterProvider(mcptypes.KindTool, "search", "client-a")
	h.Router.RegisterProvider(mcptypes.KindTool, "search", "client-b")

	policy := filtering.New(mcptypes.AgentConfig{})
	_, err := h.ResolveTargetClient(mcptypes.KindTool, "search", policy, "")
	assert.True(t, mcperrors.IsAmbiguousComponent(err))
}

func TestResolveTargetClientPreferredClientDisambiguates(t *testing.T) {
	h := New(noopSecrets{})
	h.Router.RegisterProvider(mcptypes.KindTool, "search", "client-a")
	h.Router.RegisterProvider(mcptypes.KindTool, "search", "client-b")

	policy := filtering.New(mcptypes.AgentConfig{})
	clientID, err := h.ResolveTargetClient(mcptypes.KindTool, "search", policy, "client-b")
	require.NoError(t, err)
	assert.Equal(t, "client-b", clientID)
}

func TestResolveTargetClientFilteredByPolicy(t *testing.T) {
	h := New(noopSecrets{})
	h.Router.RegisterProvider(mcptypes.KindTool, "search", "client-a")

	policy := filtering.New(mcptypes.AgentConfig{ExcludeComponents: []string{"tool:search"}})
	_, err := h.ResolveTargetClient(mcptypes.KindTool, "search", policy, "")
	assert.True(t, mcperrors.IsComponentNotFound(err))
}

func TestResolveTargetClientNoCandidates(t *testing.T) {
	h := New(noopSecrets{})
	policy := filtering.New(mcptypes.AgentConfig{})
	_, err := h.ResolveTargetClient(mcptypes.KindTool, "missing", policy, "")
	assert.True(t, mcperrors.IsComponentNotFound(err))
}

func TestResolveTargetClientDisallowedPreferred(t *testing.T) {
	h := New(noopSecrets{})
	h.Router.RegisterProvider(mcptypes.KindTool, "search", "client-a")

	policy := filtering.New(mcptypes.AgentConfig{ClientIDs: []string{"client-a"}})
	_, err := h.ResolveTargetClient(mcptypes.KindTool, "search", policy, "client-z")
	assert.Error(t, err)
}

func TestShutdownWithoutStartIsNoop(t *testing.T) {
	h := New(noopSecrets{})
	assert.NoError(t, h.Shutdown())
}
