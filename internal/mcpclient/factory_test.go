package mcpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcphost/internal/mcptypes"
)

func TestNewStdioRequiresServerPath(t *testing.T) {
	_, err := New(Config{ClientConfig: mcptypes.ClientConfig{Transport: mcptypes.TransportStdio}})
	assert.Error(t, err)
}

func TestNewStdioBuildsStdioSession(t *testing.T) {
	session, err := New(Config{ClientConfig: mcptypes.ClientConfig{
		Transport:  mcptypes.TransportStdio,
		ServerPath: "/usr/bin/true",
	}})
	require.NoError(t, err)
	_, ok := session.(*StdioSession)
	assert.True(t, ok)
}

func TestNewSSERequiresURL(t *testing.T) {
	_, err := New(Config{ClientConfig: mcptypes.ClientConfig{Transport: mcptypes.TransportSSE}})
	assert.Error(t, err)
}

func TestNewUnsupportedTransport(t *testing.T) {
	_, err := New(Config{ClientConfig: mcptypes.ClientConfig{Transport: "carrier-pigeon"}})
	assert.Error(t, err)
}

func TestNewThreadsClientConfigTimeoutIntoStdioSession(t *testing.T) {
	session, err := New(Config{ClientConfig: mcptypes.ClientConfig{
		Transport:  mcptypes.TransportStdio,
		ServerPath: "/usr/bin/true",
		Timeout:    30 * time.Second,
	}})
	require.NoError(t, err)
	stdio, ok := session.(*StdioSession)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, stdio.timeout)
}

func TestNewThreadsClientConfigTimeoutIntoSSESession(t *testing.T) {
	session, err := New(Config{ClientConfig: mcptypes.ClientConfig{
		Transport: mcptypes.TransportSSE,
		SSEURL:    "http://example.invalid/sse",
		Timeout:   45 * time.Second,
	}})
	require.NoError(t, err)
	sse, ok := session.(*SSESession)
	require.True(t, ok)
	assert.Equal(t, 45*time.Second, sse.timeout)
}
