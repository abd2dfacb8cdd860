package componentstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcphost/internal/mcptypes"
)

func writeFile(t *testing.T, root string, kind Kind, name, content string) {
	t.Helper()
	dir := filepath.Join(root, string(kind))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadSingleAndArrayDefinitions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, KindClients, "a.yaml", "client_id: alpha\ntransport: stdio\nserver_path: /bin/true\n")
	writeFile(t, root, KindClients, "b.yaml", "- client_id: beta\n  transport: stdio\n- client_id: gamma\n  transport: stdio\n")

	s := New(root)
	require.NoError(t, s.Load())

	_, ok := s.GetClient("alpha")
	assert.True(t, ok)
	_, ok = s.GetClient("beta")
	assert.True(t, ok)
	_, ok = s.GetClient("gamma")
	assert.True(t, ok)
}

func TestLoadDuplicateIDKeepsFirst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, KindClients, "a.yaml", "client_id: alpha\ntransport: stdio\nserver_path: /bin/first\n")
	writeFile(t, root, KindClients, "b.yaml", "client_id: alpha\ntransport: stdio\nserver_path: /bin/second\n")

	s := New(root)
	require.NoError(t, s.Load())

	c, ok := s.GetClient("alpha")
	require.True(t, ok)
	assert.Equal(t, "/bin/first", c.ServerPath)
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	require.NoError(t, s.SaveAgent(mcptypes.AgentConfig{Name: "researcher", MaxIterations: 5}))

	a, ok := s.GetAgent("researcher")
	require.True(t, ok)
	assert.Equal(t, 5, a.MaxIterations)

	reloaded := New(root)
	require.NoError(t, reloaded.Load())
	a2, ok := reloaded.GetAgent("researcher")
	require.True(t, ok)
	assert.Equal(t, a, a2)
}

func TestDeleteClientRemovesFromDiskAndMemory(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	require.NoError(t, s.SaveClient(mcptypes.ClientConfig{ClientID: "alpha", Transport: mcptypes.TransportStdio}))

	require.NoError(t, s.DeleteClient("alpha"))
	_, ok := s.GetClient("alpha")
	assert.False(t, ok)

	err := s.DeleteClient("alpha")
	assert.Error(t, err)
}

func TestResolveModulePathRejectsEscape(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	_, err := s.ResolveModulePath("../../etc/passwd")
	assert.Error(t, err)

	resolved, err := s.ResolveModulePath("workflows/my_workflow.go")
	require.NoError(t, err)
	assert.Contains(t, resolved, root)
}

func TestMissingDirectoryLoadsEmpty(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	require.NoError(t, s.Load())
	assert.Empty(t, s.ListClients())
}
