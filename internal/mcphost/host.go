// Package mcphost implements MCPHost: the orchestrator that owns every
// client connection for the active project, the registries and router fed
// by those connections, and the shared target-resolution algorithm used by
// tool execution, prompt rendering, and resource reads. Initialization is
// resilient to individual client failures — one bad client is logged and
// skipped, the rest of the fleet still comes up — and every client's
// supervising goroutine lives in a single errgroup task group so Shutdown
// can wait for clean teardown of the whole fleet. Grounded on the
// teacher's internal/aggregator.AggregatorManager Start/Stop lifecycle and
// internal/aggregator/registry.go's resolve-by-name logic.
package mcphost

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"mcphost/internal/clientmanager"
	"mcphost/internal/components"
	"mcphost/internal/filtering"
	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
	"mcphost/internal/router"
	"mcphost/internal/security"
	"mcphost/pkg/logging"
	pkgstrings "mcphost/pkg/strings"
)

// logDescMaxLen bounds the description text echoed in discovery debug logs
// so one verbose tool doesn't blow out a log line.
const logDescMaxLen = pkgstrings.DefaultDescriptionMaxLen

// SecretResolver resolves a client's declared secrets into its subprocess
// environment. Satisfied by *security.SecurityManager.
type SecretResolver interface {
	ResolveEnv(ctx context.Context, clientID string, refs []mcptypes.SecretRef) (map[string]string, error)
}

// Host owns client lifecycles for one active project.
type Host struct {
	Router    *router.MessageRouter
	Roots     *router.RootManager
	Tools     *components.ToolManager
	Prompts   *components.PromptManager
	Resources *components.ResourceManager

	security SecretResolver

	mu      sync.RWMutex
	clients map[string]*clientmanager.Handle

	group      *errgroup.Group
	groupCtx   context.Context
	cancelFunc context.CancelFunc
}

// New returns an empty Host backed by the given secret resolver.
func New(security SecretResolver) *Host {
	return &Host{
		Router:    router.New(),
		Roots:     router.NewRootManager(),
		Tools:     components.NewToolManager(),
		Prompts:   components.NewPromptManager(),
		Resources: components.NewResourceManager(),
		security:  security,
		clients:   make(map[string]*clientmanager.Handle),
	}
}

// Start connects every client in configs, registering the ones that
// succeed and logging-and-skipping the ones that don't. It always returns
// nil; per-client failures never abort the call.
func (h *Host) Start(ctx context.Context, configs []mcptypes.ClientConfig) error {
	h.mu.Lock()
	groupCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(groupCtx)
	h.group = group
	h.groupCtx = groupCtx
	h.cancelFunc = cancel
	h.mu.Unlock()

	for _, cfg := range configs {
		if err := h.startClient(ctx, cfg); err != nil {
			logging.Warn("MCPHost", "client %q failed to initialize: %v", cfg.ClientID, err)
		}
	}
	return nil
}

// RegisterClient connects and discovers exactly one client, registering it
// into the router and registries and spawning its supervision goroutine,
// without touching any other already-running client. Used by dynamic
// registration (HostManager.RegisterClient): unlike Start's log-and-skip
// bulk path, a failure here is returned to the caller so a bad dynamic
// registration is reported, not silently dropped. Start must already have
// been called once (to establish the supervisor task group) before this is
// used.
func (h *Host) RegisterClient(ctx context.Context, cfg mcptypes.ClientConfig) error {
	h.mu.RLock()
	group := h.group
	h.mu.RUnlock()
	if group == nil {
		return fmt.Errorf("host not started: no supervisor task group")
	}
	return h.startClient(ctx, cfg)
}

// startClient connects, registers, and spawns supervision for one client.
// Any failure here is returned to the caller for logging; it never takes
// down the rest of the fleet.
func (h *Host) startClient(ctx context.Context, cfg mcptypes.ClientConfig) error {
	env, err := h.security.ResolveEnv(ctx, cfg.ClientID, cfg.GCPSecrets)
	if err != nil {
		return &mcperrors.ClientInitFailed{ClientID: cfg.ClientID, Cause: err}
	}

	handle := clientmanager.New(cfg)
	if err := handle.Connect(ctx, env); err != nil {
		return err
	}

	session, err := handle.Session()
	if err != nil {
		handle.Close()
		return err
	}

	if err := h.registerComponents(ctx, cfg, session); err != nil {
		handle.Close()
		return fmt.Errorf("registering components for client %q: %w", cfg.ClientID, err)
	}

	h.Router.RegisterClientCapabilities(cfg.ClientID, cfg.Capabilities)
	h.Roots.Register(cfg.ClientID, cfg.Roots)

	h.mu.Lock()
	h.clients[cfg.ClientID] = handle
	group := h.group
	groupCtx := h.groupCtx
	h.mu.Unlock()

	group.Go(func() error {
		monitorErr := handle.Monitor(groupCtx)
		h.teardownClient(cfg.ClientID)
		return monitorErr
	})

	logging.Info("MCPHost", "client %q initialized", cfg.ClientID)
	return nil
}

func (h *Host) registerComponents(ctx context.Context, cfg mcptypes.ClientConfig, session sessionLister) error {
	exclude := cfg.ExcludeSet()

	tools, err := session.ListTools(ctx)
	if err != nil {
		return err
	}
	h.Tools.Register(cfg.ClientID, tools, exclude)
	for _, t := range tools {
		if _, excluded := exclude[t.Name]; !excluded {
			h.Router.RegisterProvider(mcptypes.KindTool, t.Name, cfg.ClientID)
			logging.Debug("MCPHost", "client %q tool %q: %s", cfg.ClientID, t.Name, pkgstrings.TruncateDescription(t.Description, logDescMaxLen))
		}
	}

	prompts, err := session.ListPrompts(ctx)
	if err != nil {
		return err
	}
	h.Prompts.Register(cfg.ClientID, prompts, exclude)
	for _, p := range prompts {
		if _, excluded := exclude[p.Name]; !excluded {
			h.Router.RegisterProvider(mcptypes.KindPrompt, p.Name, cfg.ClientID)
			logging.Debug("MCPHost", "client %q prompt %q: %s", cfg.ClientID, p.Name, pkgstrings.TruncateDescription(p.Description, logDescMaxLen))
		}
	}

	resources, err := session.ListResources(ctx)
	if err != nil {
		return err
	}
	h.Resources.Register(cfg.ClientID, resources, exclude)
	for _, r := range resources {
		if _, excluded := exclude[r.URI]; !excluded {
			h.Router.RegisterProvider(mcptypes.KindResource, r.URI, cfg.ClientID)
			logging.Debug("MCPHost", "client %q resource %q: %s", cfg.ClientID, r.URI, pkgstrings.TruncateDescription(r.Description, logDescMaxLen))
		}
	}

	return nil
}

// sessionLister is the subset of mcpclient.Session registerComponents needs.
type sessionLister interface {
	ListTools(ctx context.Context) ([]mcptypes.ToolInfo, error)
	ListPrompts(ctx context.Context) ([]mcptypes.PromptInfo, error)
	ListResources(ctx context.Context) ([]mcptypes.ResourceInfo, error)
}

func (h *Host) teardownClient(clientID string) {
	h.mu.Lock()
	delete(h.clients, clientID)
	h.mu.Unlock()

	h.Router.UnregisterClient(clientID)
	h.Roots.Unregister(clientID)
	h.Tools.Unregister(clientID)
	h.Prompts.Unregister(clientID)
	h.Resources.Unregister(clientID)
}

// Shutdown cancels every client's supervision goroutine and waits for the
// fleet to tear down cleanly.
func (h *Host) Shutdown() error {
	h.mu.RLock()
	cancel := h.cancelFunc
	group := h.group
	h.mu.RUnlock()

	if cancel == nil {
		return nil
	}
	cancel()
	if group == nil {
		return nil
	}
	return group.Wait()
}

// Status reports the health of every connected client.
func (h *Host) Status() []clientmanager.Status {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]clientmanager.Status, 0, len(h.clients))
	for _, handle := range h.clients {
		out = append(out, handle.Status())
	}
	return out
}

// clientHandle returns the live handle for clientID.
func (h *Host) clientHandle(clientID string) (*clientmanager.Handle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	handle, ok := h.clients[clientID]
	return handle, ok
}

// ResolveTargetClient implements the candidate-selection algorithm shared
// by execute_tool/get_prompt/read_resource: gather providers from the
// router, restrict to clients the agent's policy permits, restrict to
// components the agent's policy permits, then apply preferred-client
// disambiguation.
func (h *Host) ResolveTargetClient(kind mcptypes.ComponentKind, name string, policy *filtering.FilteringManager, preferredClient string) (string, error) {
	candidates := h.Router.Providers(kind, name)

	permittedClients := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if policy.IsClientPermitted(id) {
			permittedClients = append(permittedClients, id)
		}
	}

	if !policy.IsComponentPermitted(kind, name) {
		return "", &mcperrors.ComponentNotFound{Kind: string(kind), Name: name, Reason: mcperrors.ReasonFiltered}
	}

	if len(permittedClients) == 0 {
		if len(candidates) > 0 {
			return "", &mcperrors.ComponentNotFound{Kind: string(kind), Name: name, Reason: mcperrors.ReasonDisallowedClient}
		}
		return "", &mcperrors.ComponentNotFound{Kind: string(kind), Name: name, Reason: mcperrors.ReasonUnknown}
	}

	if preferredClient != "" {
		for _, id := range permittedClients {
			if id == preferredClient {
				return id, nil
			}
		}
		return "", &mcperrors.DisallowedClient{ClientID: preferredClient, Kind: string(kind), Name: name}
	}

	if len(permittedClients) == 1 {
		return permittedClients[0], nil
	}
	return "", &mcperrors.AmbiguousComponent{Kind: string(kind), Name: name, Candidates: permittedClients}
}

// ExecuteTool resolves and dispatches a tool call under the given policy.
func (h *Host) ExecuteTool(ctx context.Context, name string, args map[string]any, policy *filtering.FilteringManager, preferredClient string) (*mcptypes.ToolResult, error) {
	clientID, err := h.ResolveTargetClient(mcptypes.KindTool, name, policy, preferredClient)
	if err != nil {
		return nil, err
	}
	handle, ok := h.clientHandle(clientID)
	if !ok {
		return nil, &mcperrors.ClientUnavailable{ClientID: clientID}
	}
	session, err := handle.Session()
	if err != nil {
		return nil, err
	}
	return h.Tools.Execute(ctx, session, clientID, name, args)
}

// GetPrompt resolves and dispatches a prompt fetch under the given policy.
func (h *Host) GetPrompt(ctx context.Context, name string, args map[string]string, policy *filtering.FilteringManager, preferredClient string) ([]mcptypes.Message, error) {
	clientID, err := h.ResolveTargetClient(mcptypes.KindPrompt, name, policy, preferredClient)
	if err != nil {
		return nil, err
	}
	handle, ok := h.clientHandle(clientID)
	if !ok {
		return nil, &mcperrors.ClientUnavailable{ClientID: clientID}
	}
	session, err := handle.Session()
	if err != nil {
		return nil, err
	}
	return h.Prompts.Get(ctx, session, clientID, name, args)
}

// ReadResource resolves and dispatches a resource read under the given policy.
func (h *Host) ReadResource(ctx context.Context, uri string, policy *filtering.FilteringManager, preferredClient string) ([]byte, string, error) {
	clientID, err := h.ResolveTargetClient(mcptypes.KindResource, uri, policy, preferredClient)
	if err != nil {
		return nil, "", err
	}
	handle, ok := h.clientHandle(clientID)
	if !ok {
		return nil, "", &mcperrors.ClientUnavailable{ClientID: clientID}
	}
	session, err := handle.Session()
	if err != nil {
		return nil, "", err
	}
	return h.Resources.Read(ctx, session, clientID, uri)
}
