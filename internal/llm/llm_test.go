package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcphost/internal/mcptypes"
)

type stubClient struct{ closed bool }

func (s *stubClient) Call(ctx context.Context, history []mcptypes.Message, params CallParams) (CallResult, error) {
	return CallResult{Text: "ok"}, nil
}

func (s *stubClient) Close() error {
	s.closed = true
	return nil
}

func TestNewUsesRegisteredFactory(t *testing.T) {
	RegisterProvider("test-provider", func(cfg mcptypes.LLMConfig) (Client, error) {
		return &stubClient{}, nil
	})

	client, err := New(mcptypes.LLMConfig{Provider: "test-provider"})
	require.NoError(t, err)

	result, err := client.Call(context.Background(), nil, CallParams{})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
}

func TestNewUnregisteredProviderErrors(t *testing.T) {
	_, err := New(mcptypes.LLMConfig{Provider: "nonexistent-provider"})
	assert.Error(t, err)
}
