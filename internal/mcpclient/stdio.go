package mcpclient

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mark3labs/mcp-go/client"

	"mcphost/internal/mcptypes"
	"mcphost/pkg/logging"
)

// StdioSession connects to an MCP server over a local subprocess's
// stdin/stdout.
type StdioSession struct {
	baseSession
	command string
	args    []string
	env     map[string]string
	timeout time.Duration
}

// NewStdio returns a stdio session for the given command, arguments, and
// subprocess environment. Env is expected to already include any resolved
// secrets (see internal/security). timeout bounds the handshake performed
// by Initialize, falling back to DefaultInitTimeout when zero.
func NewStdio(command string, args []string, env map[string]string, timeout time.Duration) *StdioSession {
	return &StdioSession{command: command, args: args, env: env, timeout: timeout}
}

// Initialize spawns the subprocess and performs the MCP handshake.
func (s *StdioSession) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	envStrings := make([]string, 0, len(s.env))
	for k, v := range s.env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}

	logging.Debug("StdioSession", "spawning %s %v", s.command, s.args)
	underlying, err := client.NewStdioMCPClient(s.command, envStrings, s.args...)
	if err != nil {
		return fmt.Errorf("spawning stdio client for %q: %w", s.command, err)
	}

	return s.initialize(ctx, underlying, "StdioSession", s.timeout)
}

// Close terminates the subprocess.
func (s *StdioSession) Close() error { return s.closeClient() }

// ListTools returns all tools advertised by the subprocess.
func (s *StdioSession) ListTools(ctx context.Context) ([]mcptypes.ToolInfo, error) {
	return s.listTools(ctx)
}

// CallTool invokes a tool by name.
func (s *StdioSession) CallTool(ctx context.Context, name string, args map[string]any) (*mcptypes.ToolResult, error) {
	return s.callTool(ctx, name, args)
}

// ListResources returns all resources advertised by the subprocess.
func (s *StdioSession) ListResources(ctx context.Context) ([]mcptypes.ResourceInfo, error) {
	return s.listResources(ctx)
}

// ReadResource reads a resource's contents by URI.
func (s *StdioSession) ReadResource(ctx context.Context, uri string) ([]byte, string, error) {
	return s.readResource(ctx, uri)
}

// ListPrompts returns all prompts advertised by the subprocess.
func (s *StdioSession) ListPrompts(ctx context.Context) ([]mcptypes.PromptInfo, error) {
	return s.listPrompts(ctx)
}

// GetPrompt renders a prompt by name.
func (s *StdioSession) GetPrompt(ctx context.Context, name string, args map[string]string) ([]mcptypes.Message, error) {
	return s.getPrompt(ctx, name, args)
}

// Ping checks liveness of the subprocess connection.
func (s *StdioSession) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Stderr exposes the subprocess's stderr stream, when the underlying
// transport is the concrete mark3labs stdio client.
func (s *StdioSession) Stderr() (io.Reader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected || s.client == nil {
		return nil, false
	}
	if concrete, ok := s.client.(*client.Client); ok {
		return client.GetStderr(concrete), true
	}
	return nil, false
}
