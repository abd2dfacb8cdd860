// Package components implements the per-client catalogs of tools, prompts,
// and resources: ToolManager, PromptManager, ResourceManager. Each registers
// the descriptors a client advertised at initialization, honoring the
// client's exclude list at registration time, and later serves the
// execute/get/read primitives once a caller has already resolved a client
// id. Modeled on the teacher's aggregator.ServerRegistry per-server catalog,
// split one manager per component kind to match the spec's three-registry
// shape.
package components

import (
	"context"
	"fmt"
	"sync"

	"mcphost/internal/mcptypes"
)

// ToolExecutor is the minimal client capability the ToolManager needs to
// dispatch a call; implemented by internal/mcpclient's Session.
type ToolExecutor interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*mcptypes.ToolResult, error)
}

// PromptGetter is the minimal client capability PromptManager needs.
type PromptGetter interface {
	GetPrompt(ctx context.Context, name string, args map[string]string) ([]mcptypes.Message, error)
}

// ResourceReader is the minimal client capability ResourceManager needs.
type ResourceReader interface {
	ReadResource(ctx context.Context, uri string) ([]byte, string, error)
}

// ToolManager is the per-host catalog of tools, keyed by (clientID, name).
type ToolManager struct {
	mu    sync.RWMutex
	tools map[string]map[string]mcptypes.ToolInfo
}

// NewToolManager returns an empty ToolManager.
func NewToolManager() *ToolManager {
	return &ToolManager{tools: make(map[string]map[string]mcptypes.ToolInfo)}
}

// Register adds the client's advertised tools, skipping any name present in
// exclude. Called once per client during MCPHost initialization.
func (m *ToolManager) Register(clientID string, tools []mcptypes.ToolInfo, exclude map[string]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := make(map[string]mcptypes.ToolInfo, len(tools))
	for _, t := range tools {
		if _, excluded := exclude[t.Name]; excluded {
			continue
		}
		t.ClientID = clientID
		bucket[t.Name] = t
	}
	m.tools[clientID] = bucket
}

// Unregister drops every tool registered for clientID.
func (m *ToolManager) Unregister(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tools, clientID)
}

// List returns every registered tool across all clients, optionally
// restricted to a single client id (empty string means all clients).
func (m *ToolManager) List(clientID string) []mcptypes.ToolInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []mcptypes.ToolInfo
	for id, bucket := range m.tools {
		if clientID != "" && id != clientID {
			continue
		}
		for _, t := range bucket {
			out = append(out, t)
		}
	}
	return out
}

// Lookup returns the tool descriptor registered for (clientID, name).
func (m *ToolManager) Lookup(clientID, name string) (mcptypes.ToolInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.tools[clientID]
	if !ok {
		return mcptypes.ToolInfo{}, false
	}
	info, ok := bucket[name]
	return info, ok
}

// Execute dispatches a call to an already-resolved client. Callers (the
// host's resolve_target_client path) are responsible for filtering and
// routing; this method assumes clientID is correct.
func (m *ToolManager) Execute(ctx context.Context, client ToolExecutor, clientID, name string, args map[string]any) (*mcptypes.ToolResult, error) {
	if _, ok := m.Lookup(clientID, name); !ok {
		return nil, fmt.Errorf("tool %q not registered for client %q", name, clientID)
	}
	return client.CallTool(ctx, name, args)
}

// PromptManager is the per-host catalog of prompts, keyed by (clientID, name).
type PromptManager struct {
	mu      sync.RWMutex
	prompts map[string]map[string]mcptypes.PromptInfo
}

// NewPromptManager returns an empty PromptManager.
func NewPromptManager() *PromptManager {
	return &PromptManager{prompts: make(map[string]map[string]mcptypes.PromptInfo)}
}

// Register adds the client's advertised prompts, skipping excluded names.
func (m *PromptManager) Register(clientID string, prompts []mcptypes.PromptInfo, exclude map[string]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := make(map[string]mcptypes.PromptInfo, len(prompts))
	for _, p := range prompts {
		if _, excluded := exclude[p.Name]; excluded {
			continue
		}
		p.ClientID = clientID
		bucket[p.Name] = p
	}
	m.prompts[clientID] = bucket
}

// Unregister drops every prompt registered for clientID.
func (m *PromptManager) Unregister(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prompts, clientID)
}

// List returns every registered prompt, optionally restricted to a client.
func (m *PromptManager) List(clientID string) []mcptypes.PromptInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []mcptypes.PromptInfo
	for id, bucket := range m.prompts {
		if clientID != "" && id != clientID {
			continue
		}
		for _, p := range bucket {
			out = append(out, p)
		}
	}
	return out
}

// Lookup returns the prompt descriptor registered for (clientID, name).
func (m *PromptManager) Lookup(clientID, name string) (mcptypes.PromptInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.prompts[clientID]
	if !ok {
		return mcptypes.PromptInfo{}, false
	}
	info, ok := bucket[name]
	return info, ok
}

// Get dispatches a prompt fetch to an already-resolved client.
func (m *PromptManager) Get(ctx context.Context, client PromptGetter, clientID, name string, args map[string]string) ([]mcptypes.Message, error) {
	if _, ok := m.Lookup(clientID, name); !ok {
		return nil, fmt.Errorf("prompt %q not registered for client %q", name, clientID)
	}
	return client.GetPrompt(ctx, name, args)
}

// ResourceManager is the per-host catalog of resources, keyed by (clientID, uri).
type ResourceManager struct {
	mu        sync.RWMutex
	resources map[string]map[string]mcptypes.ResourceInfo
}

// NewResourceManager returns an empty ResourceManager.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{resources: make(map[string]map[string]mcptypes.ResourceInfo)}
}

// Register adds the client's advertised resources, skipping excluded URIs.
func (m *ResourceManager) Register(clientID string, resources []mcptypes.ResourceInfo, exclude map[string]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := make(map[string]mcptypes.ResourceInfo, len(resources))
	for _, r := range resources {
		if _, excluded := exclude[r.URI]; excluded {
			continue
		}
		r.ClientID = clientID
		bucket[r.URI] = r
	}
	m.resources[clientID] = bucket
}

// Unregister drops every resource registered for clientID.
func (m *ResourceManager) Unregister(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resources, clientID)
}

// List returns every registered resource, optionally restricted to a client.
func (m *ResourceManager) List(clientID string) []mcptypes.ResourceInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []mcptypes.ResourceInfo
	for id, bucket := range m.resources {
		if clientID != "" && id != clientID {
			continue
		}
		for _, r := range bucket {
			out = append(out, r)
		}
	}
	return out
}

// Lookup returns the resource descriptor registered for (clientID, uri).
func (m *ResourceManager) Lookup(clientID, uri string) (mcptypes.ResourceInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.resources[clientID]
	if !ok {
		return mcptypes.ResourceInfo{}, false
	}
	info, ok := bucket[uri]
	return info, ok
}

// Read dispatches a resource read to an already-resolved client, returning
// the raw bytes and MIME type.
func (m *ResourceManager) Read(ctx context.Context, client ResourceReader, clientID, uri string) ([]byte, string, error) {
	if _, ok := m.Lookup(clientID, uri); !ok {
		return nil, "", fmt.Errorf("resource %q not registered for client %q", uri, clientID)
	}
	return client.ReadResource(ctx, uri)
}
