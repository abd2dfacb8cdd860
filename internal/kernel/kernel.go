// Package kernel implements HostManager: the process-lifetime object that
// lazily stands up an MCPHost and an execution.Facade for the active
// project on first use, and tears down and rebuilds both whenever the
// active project changes. Dynamic registration updates the running
// runtime in place and never triggers a rebuild.
// Grounded on the teacher's internal/aggregator.AggregatorManager as the
// top-level owner, combined with internal/services/mcpserver's
// lazy-connect-on-first-use pattern.
package kernel

import (
	"context"
	"fmt"
	"sync"

	"mcphost/internal/clientmanager"
	"mcphost/internal/componentstore"
	"mcphost/internal/execution"
	"mcphost/internal/history"
	"mcphost/internal/mcperrors"
	"mcphost/internal/mcphost"
	"mcphost/internal/mcptypes"
	"mcphost/internal/project"
	"mcphost/internal/security"
	"mcphost/pkg/logging"
)

// HostManager owns the store, the active project, and the lazily-built
// runtime (MCPHost + execution.Facade) serving it.
type HostManager struct {
	store    *componentstore.Store
	projects *project.Manager
	security *security.SecurityManager
	histFn   func() history.Store

	mu      sync.Mutex
	host    *mcphost.Host
	facade  *execution.Facade
	watcher *project.ProjectWatcher
}

// New returns a HostManager backed by store and a secret fetcher, with no
// project active and no runtime built yet. histFn is called once per
// (re)build to obtain the history store the new runtime should use,
// letting callers choose a fresh MemoryStore or a shared ValkeyStore.
func New(store *componentstore.Store, fetcher security.SecretFetcher, histFn func() history.Store) *HostManager {
	return &HostManager{
		store:    store,
		projects: project.New(store),
		security: security.New(fetcher),
		histFn:   histFn,
	}
}

// ChangeProject activates the named project from the store and rebuilds
// the runtime against it, tearing down any previously running host first.
func (k *HostManager) ChangeProject(ctx context.Context, name string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.teardownLocked(); err != nil {
		logging.Warn("Kernel", "tearing down previous runtime for project change: %v", err)
	}

	if err := k.projects.Activate(name); err != nil {
		return fmt.Errorf("activating project %q: %w", name, err)
	}
	return k.buildLocked(ctx)
}

// ensureLoaded builds the runtime against whatever project is already
// active (or the default "default" project if none has been activated
// yet), the first time any Run*/Execute call needs it.
func (k *HostManager) ensureLoaded(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.facade != nil {
		return nil
	}

	if _, err := k.projects.Active(); err != nil {
		if actErr := k.projects.Activate("default"); actErr != nil {
			return fmt.Errorf("activating default project: %w", actErr)
		}
	}
	return k.buildLocked(ctx)
}

// buildLocked constructs a fresh MCPHost and Facade for the currently
// active project. Caller must hold k.mu.
func (k *HostManager) buildLocked(ctx context.Context) error {
	active, err := k.projects.Active()
	if err != nil {
		return err
	}

	host := mcphost.New(k.security)
	if err := host.Start(ctx, active.HostConfigs()); err != nil {
		return fmt.Errorf("starting host for project %q: %w", active.Name, err)
	}

	hist := history.Store(history.NewMemoryStore())
	if k.histFn != nil {
		hist = k.histFn()
	}

	k.host = host
	k.facade = execution.NewFacade(host, host.Tools, k.projects, hist)
	logging.Info("Kernel", "runtime built for project %q", active.Name)
	return nil
}

// teardownLocked shuts down the current runtime, if any. Caller must hold
// k.mu.
func (k *HostManager) teardownLocked() error {
	if k.host == nil {
		return nil
	}
	var firstErr error
	if err := k.facade.Close(); err != nil {
		firstErr = err
	}
	if err := k.host.Shutdown(); err != nil && firstErr == nil {
		firstErr = err
	}
	k.host = nil
	k.facade = nil
	return firstErr
}

// Shutdown tears down the runtime, if one is running, and stops the
// project watcher if one was started.
func (k *HostManager) Shutdown() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.watcher != nil {
		if err := k.watcher.Close(); err != nil {
			logging.Warn("Kernel", "closing project watcher: %v", err)
		}
		k.watcher = nil
	}
	return k.teardownLocked()
}

// WatchForChanges starts watching the component store's typed directories
// for external edits, reloading the named project and rebuilding the
// runtime (debounced) whenever a file changes. This is an opt-in
// convenience for long-running deployments; nothing in the default
// Run*/Register* path depends on it. Calling it again replaces any
// previous watch.
func (k *HostManager) WatchForChanges(ctx context.Context, projectName string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.watcher != nil {
		if err := k.watcher.Close(); err != nil {
			logging.Warn("Kernel", "closing previous project watcher: %v", err)
		}
	}

	watcher, err := project.WatchProject(k.store.KindDirs(), func() {
		if err := k.store.Load(); err != nil {
			logging.Warn("Kernel", "reloading component store after change: %v", err)
			return
		}
		if err := k.ChangeProject(ctx, projectName); err != nil {
			logging.Warn("Kernel", "reloading project %q after store change: %v", projectName, err)
		}
	})
	if err != nil {
		return fmt.Errorf("watching component store: %w", err)
	}
	k.watcher = watcher
	return nil
}

// RegisterAgent adds a runtime-only agent to the active project and
// ensures the LLM it references already resolves, so a bad reference fails
// at registration time rather than on first use.
func (k *HostManager) RegisterAgent(ctx context.Context, agent mcptypes.AgentConfig) error {
	if err := k.ensureLoaded(ctx); err != nil {
		return err
	}
	if agent.LLMConfigID != "" {
		if _, err := k.projects.ResolveLLM(agent.LLMConfigID); err != nil {
			return &mcperrors.ConfigValidationError{
				Path:    "agents." + agent.Name,
				Field:   "llm_config_id",
				Message: fmt.Sprintf("references unknown llm config %q", agent.LLMConfigID),
			}
		}
	}
	return k.projects.RegisterAgent(agent)
}

// RegisterLLM adds a runtime-only LLM config to the active project.
func (k *HostManager) RegisterLLM(ctx context.Context, llmCfg mcptypes.LLMConfig) error {
	if err := k.ensureLoaded(ctx); err != nil {
		return err
	}
	return k.projects.RegisterLLM(llmCfg)
}

// RegisterSimpleWorkflow adds a runtime-only simple workflow, verifying
// every step name already resolves to an agent so a bad step fails at
// registration rather than mid-run.
func (k *HostManager) RegisterSimpleWorkflow(ctx context.Context, workflow mcptypes.WorkflowConfig) error {
	if err := k.ensureLoaded(ctx); err != nil {
		return err
	}
	for i, step := range workflow.Steps {
		if _, err := k.projects.ResolveAgent(step); err != nil {
			return &mcperrors.ConfigValidationError{
				Path:    fmt.Sprintf("simple_workflows.%s.steps[%d]", workflow.Name, i),
				Field:   "steps",
				Message: fmt.Sprintf("references unknown agent %q", step),
			}
		}
	}
	return k.projects.RegisterSimpleWorkflow(workflow)
}

// RegisterCustomWorkflow adds a runtime-only custom workflow to the active
// project, verifying its class name already resolves against the
// compile-time registry so a typo'd class fails at registration rather
// than on first run.
func (k *HostManager) RegisterCustomWorkflow(ctx context.Context, workflow mcptypes.CustomWorkflowConfig) error {
	if err := k.ensureLoaded(ctx); err != nil {
		return err
	}
	if !execution.IsCustomWorkflowRegistered(workflow.ClassName) {
		return &mcperrors.ConfigValidationError{
			Path:    "custom_workflows." + workflow.Name,
			Field:   "class_name",
			Message: fmt.Sprintf("no custom workflow registered for class %q", workflow.ClassName),
		}
	}
	return k.projects.RegisterCustomWorkflow(workflow)
}

// RegisterClient connects and discovers one client against the live host,
// per §4.13's "registering a client calls MCPHost.register_client which
// performs connect-and-discover for just that one", and records it in the
// active project so later lookups see it. A later ChangeProject re-activates
// from the store, so the registration does not survive a rebuild.
func (k *HostManager) RegisterClient(ctx context.Context, client mcptypes.ClientConfig) error {
	if err := k.ensureLoaded(ctx); err != nil {
		return err
	}
	k.mu.Lock()
	host := k.host
	k.mu.Unlock()
	if host == nil {
		return fmt.Errorf("no runtime built")
	}
	if err := host.RegisterClient(ctx, client); err != nil {
		return err
	}
	return k.projects.RegisterClient(client)
}

// RunAgent lazily builds the runtime if needed and runs one agent turn.
func (k *HostManager) RunAgent(ctx context.Context, agentName, userMessage, sessionID string, override execution.CallOverride, preferredClient string) (execution.TurnResult, error) {
	if err := k.ensureLoaded(ctx); err != nil {
		return execution.TurnResult{}, err
	}
	return k.facadeRef().RunAgent(ctx, agentName, userMessage, sessionID, override, preferredClient)
}

// StreamAgent lazily builds the runtime if needed and streams one agent
// turn's events.
func (k *HostManager) StreamAgent(ctx context.Context, agentName, userMessage, sessionID string, override execution.CallOverride, preferredClient string, events chan<- execution.Event) error {
	if err := k.ensureLoaded(ctx); err != nil {
		close(events)
		return err
	}
	return k.facadeRef().StreamAgent(ctx, agentName, userMessage, sessionID, override, preferredClient, events)
}

// RunSimpleWorkflow lazily builds the runtime if needed and runs a
// sequential workflow.
func (k *HostManager) RunSimpleWorkflow(ctx context.Context, name, initialMessage, sessionID string) (execution.SimpleWorkflowResult, error) {
	if err := k.ensureLoaded(ctx); err != nil {
		return execution.SimpleWorkflowResult{}, err
	}
	return k.facadeRef().RunSimpleWorkflow(ctx, name, initialMessage, sessionID)
}

// RunCustomWorkflow lazily builds the runtime if needed and invokes a
// registered custom workflow implementation, threading sessionID through to
// the user code so it can reach any agent run the workflow composes.
func (k *HostManager) RunCustomWorkflow(ctx context.Context, name string, input map[string]any, sessionID string) (any, error) {
	if err := k.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if cfg, err := k.projects.ResolveCustomWorkflow(name); err == nil && cfg.ModulePath != "" {
		if _, err := k.store.ResolveModulePath(cfg.ModulePath); err != nil {
			return nil, err
		}
	}
	return k.facadeRef().RunCustomWorkflow(ctx, name, input, sessionID)
}

// Status reports every connected client's health for the active project's
// runtime, or an empty slice if nothing has been built yet.
func (k *HostManager) Status() []clientmanager.Status {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.host == nil {
		return nil
	}
	return k.host.Status()
}

func (k *HostManager) facadeRef() *execution.Facade {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.facade
}
