// Package mcpclient wraps github.com/mark3labs/mcp-go's client transports
// behind a single Session interface and translates its wire types into the
// host's own mcptypes descriptors. Structure follows the teacher's
// internal/mcpserver package: a shared baseSession carrying the common
// protocol operations, one concrete type per transport, and a factory
// selecting among them by TransportKind.
package mcpclient

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"mcphost/internal/mcptypes"
	"mcphost/pkg/logging"
)

// DefaultInitTimeout bounds the MCP handshake when the session has no
// timeout configured and the caller's context carries no deadline of its
// own. The stdio subprocess spawn runs before this bound is applied.
const DefaultInitTimeout = 10 * time.Second

// clientName/clientVersion identify this host to every MCP server it talks
// to, in the InitializeRequest's ClientInfo field.
const (
	clientName    = "mcphost"
	clientVersion = "1.0.0"
)

// Session is the transport-agnostic surface the rest of the host programs
// against: connect once, then list/call/read/get until Close.
type Session interface {
	Initialize(ctx context.Context) error
	Close() error
	ListTools(ctx context.Context) ([]mcptypes.ToolInfo, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*mcptypes.ToolResult, error)
	ListResources(ctx context.Context) ([]mcptypes.ResourceInfo, error)
	ReadResource(ctx context.Context, uri string) ([]byte, string, error)
	ListPrompts(ctx context.Context) ([]mcptypes.PromptInfo, error)
	GetPrompt(ctx context.Context, name string, args map[string]string) ([]mcptypes.Message, error)
	Ping(ctx context.Context) error
}

var (
	_ Session = (*StdioSession)(nil)
	_ Session = (*SSESession)(nil)
)

// baseSession holds the operations identical across transports once the
// underlying mark3labs client.MCPClient is connected.
type baseSession struct {
	mu        sync.RWMutex
	client    client.MCPClient
	connected bool
}

func (b *baseSession) checkConnected() error {
	if !b.connected || b.client == nil {
		return fmt.Errorf("session not connected")
	}
	return nil
}

func (b *baseSession) closeClient() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected || b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.connected = false
	b.client = nil
	return err
}

func (b *baseSession) initialize(ctx context.Context, underlying client.MCPClient, subsystem string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultInitTimeout
	}

	initCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	_, err := underlying.Initialize(initCtx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo:      mcp.Implementation{Name: clientName, Version: clientVersion},
			Capabilities:    mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		logging.Error(subsystem, err, "MCP handshake failed")
		if closeErr := underlying.Close(); closeErr != nil {
			logging.Debug(subsystem, "error closing failed session: %v", closeErr)
		}
		return fmt.Errorf("mcp handshake failed: %w", err)
	}

	b.mu.Lock()
	b.client = underlying
	b.connected = true
	b.mu.Unlock()
	return nil
}

func (b *baseSession) listTools(ctx context.Context) ([]mcptypes.ToolInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	out := make([]mcptypes.ToolInfo, 0, len(result.Tools))
	for _, t := range result.Tools {
		out = append(out, mcptypes.ToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schemaToMap(t.InputSchema),
		})
	}
	return out, nil
}

func (b *baseSession) callTool(ctx context.Context, name string, args map[string]any) (*mcptypes.ToolResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		return nil, fmt.Errorf("calling tool %q: %w", name, err)
	}

	content := make([]any, 0, len(result.Content))
	for _, c := range result.Content {
		content = append(content, c)
	}
	return &mcptypes.ToolResult{Content: content, IsError: result.IsError}, nil
}

func (b *baseSession) listResources(ctx context.Context) ([]mcptypes.ResourceInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}

	out := make([]mcptypes.ResourceInfo, 0, len(result.Resources))
	for _, r := range result.Resources {
		out = append(out, mcptypes.ResourceInfo{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MIMEType:    r.MIMEType,
		})
	}
	return out, nil
}

func (b *baseSession) readResource(ctx context.Context, uri string) ([]byte, string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, "", err
	}

	result, err := b.client.ReadResource(ctx, mcp.ReadResourceRequest{
		Params: struct {
			URI       string         `json:"uri"`
			Arguments map[string]any `json:"arguments,omitempty"`
		}{URI: uri},
	})
	if err != nil {
		return nil, "", fmt.Errorf("reading resource %q: %w", uri, err)
	}
	if len(result.Contents) == 0 {
		return nil, "", fmt.Errorf("resource %q returned no contents", uri)
	}

	switch content := result.Contents[0].(type) {
	case mcp.TextResourceContents:
		return []byte(content.Text), content.MIMEType, nil
	case mcp.BlobResourceContents:
		return []byte(content.Blob), content.MIMEType, nil
	default:
		return nil, "", fmt.Errorf("resource %q: unrecognized content type", uri)
	}
}

func (b *baseSession) listPrompts(ctx context.Context) ([]mcptypes.PromptInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.ListPrompts(ctx, mcp.ListPromptsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}

	out := make([]mcptypes.PromptInfo, 0, len(result.Prompts))
	for _, p := range result.Prompts {
		args := make([]string, 0, len(p.Arguments))
		for _, a := range p.Arguments {
			args = append(args, a.Name)
		}
		out = append(out, mcptypes.PromptInfo{
			Name:        p.Name,
			Description: p.Description,
			Arguments:   args,
		})
	}
	return out, nil
}

func (b *baseSession) getPrompt(ctx context.Context, name string, args map[string]string) ([]mcptypes.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return nil, err
	}

	result, err := b.client.GetPrompt(ctx, mcp.GetPromptRequest{
		Params: struct {
			Name      string            `json:"name"`
			Arguments map[string]string `json:"arguments,omitempty"`
		}{Name: name, Arguments: args},
	})
	if err != nil {
		return nil, fmt.Errorf("getting prompt %q: %w", name, err)
	}

	out := make([]mcptypes.Message, 0, len(result.Messages))
	for _, m := range result.Messages {
		out = append(out, mcptypes.Message{Role: string(m.Role), Content: m.Content})
	}
	return out, nil
}

func (b *baseSession) ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkConnected(); err != nil {
		return err
	}
	return b.client.Ping(ctx)
}

func schemaToMap(schema mcp.ToolInputSchema) map[string]any {
	out := map[string]any{
		"type": schema.Type,
	}
	if len(schema.Properties) > 0 {
		out["properties"] = schema.Properties
	}
	if len(schema.Required) > 0 {
		out["required"] = schema.Required
	}
	return out
}

// stderrReader is implemented by transports that expose subprocess stderr
// (currently only StdioSession), used for diagnostics on init failure.
type stderrReader interface {
	Stderr() (io.Reader, bool)
}

var _ stderrReader = (*StdioSession)(nil)
