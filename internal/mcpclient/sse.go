package mcpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"

	"mcphost/internal/mcptypes"
	"mcphost/pkg/logging"
)

// SSESession connects to a remote MCP server over Server-Sent Events.
type SSESession struct {
	baseSession
	url     string
	headers map[string]string
	timeout time.Duration
}

// NewSSE returns an SSE session for the given endpoint and optional
// request headers (e.g. bearer tokens). timeout bounds the handshake
// performed by Initialize, falling back to DefaultInitTimeout when zero.
func NewSSE(url string, headers map[string]string, timeout time.Duration) *SSESession {
	return &SSESession{url: url, headers: headers, timeout: timeout}
}

// Initialize dials the endpoint and performs the MCP handshake.
func (s *SSESession) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	logging.Debug("SSESession", "connecting to %s", s.url)

	var opts []transport.ClientOption
	if len(s.headers) > 0 {
		opts = append(opts, transport.WithHeaders(s.headers))
	}

	underlying, err := client.NewSSEMCPClient(s.url, opts...)
	if err != nil {
		return fmt.Errorf("connecting to sse endpoint %q: %w", s.url, err)
	}
	if err := underlying.Start(ctx); err != nil {
		return fmt.Errorf("starting sse transport for %q: %w", s.url, err)
	}

	return s.initialize(ctx, underlying, "SSESession", s.timeout)
}

// Close tears down the SSE connection.
func (s *SSESession) Close() error { return s.closeClient() }

// ListTools returns all tools advertised by the remote server.
func (s *SSESession) ListTools(ctx context.Context) ([]mcptypes.ToolInfo, error) {
	return s.listTools(ctx)
}

// CallTool invokes a tool by name.
func (s *SSESession) CallTool(ctx context.Context, name string, args map[string]any) (*mcptypes.ToolResult, error) {
	return s.callTool(ctx, name, args)
}

// ListResources returns all resources advertised by the remote server.
func (s *SSESession) ListResources(ctx context.Context) ([]mcptypes.ResourceInfo, error) {
	return s.listResources(ctx)
}

// ReadResource reads a resource's contents by URI.
func (s *SSESession) ReadResource(ctx context.Context, uri string) ([]byte, string, error) {
	return s.readResource(ctx, uri)
}

// ListPrompts returns all prompts advertised by the remote server.
func (s *SSESession) ListPrompts(ctx context.Context) ([]mcptypes.PromptInfo, error) {
	return s.listPrompts(ctx)
}

// GetPrompt renders a prompt by name.
func (s *SSESession) GetPrompt(ctx context.Context, name string, args map[string]string) ([]mcptypes.Message, error) {
	return s.getPrompt(ctx, name, args)
}

// Ping checks liveness of the remote connection.
func (s *SSESession) Ping(ctx context.Context) error {
	return s.ping(ctx)
}
