// Package project implements ProjectManager: holds exactly one active,
// fully-resolved ProjectConfig, expanding string-id references against a
// componentstore.Store into concrete definitions, and supports runtime-only
// dynamic registration of new components (never persisted back to the
// store — see SPEC_FULL.md's Open Question decision on dynamic registration).
package project

import (
	"fmt"
	"sync"

	"mcphost/internal/componentstore"
	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
)

// Manager holds the single active project and resolves it against a
// component store.
type Manager struct {
	store *componentstore.Store

	mu     sync.RWMutex
	active *mcptypes.ProjectConfig
}

// New returns a Manager backed by store, with no active project loaded.
func New(store *componentstore.Store) *Manager {
	return &Manager{store: store}
}

// Activate builds a fully-resolved ProjectConfig named name from every
// definition currently in the store and makes it the active project.
func (m *Manager) Activate(name string) error {
	cfg := mcptypes.NewProjectConfig(name)

	for _, c := range m.store.ListClients() {
		cfg.Clients[c.ClientID] = c
	}
	for _, l := range m.store.ListLLMs() {
		cfg.LLMs[l.LLMID] = l
	}
	for _, a := range m.store.ListAgents() {
		cfg.Agents[a.Name] = a
	}
	for _, w := range m.store.ListSimpleWorkflows() {
		cfg.SimpleWorkflows[w.Name] = w
	}
	for _, w := range m.store.ListCustomWorkflows() {
		cfg.CustomWorkflows[w.Name] = w
	}

	m.mu.Lock()
	m.active = cfg
	m.mu.Unlock()
	return nil
}

// Active returns the currently active project, or an error if none is
// loaded.
func (m *Manager) Active() (*mcptypes.ProjectConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return nil, fmt.Errorf("no active project")
	}
	return m.active, nil
}

// ResolveAgent returns the agent named name from the active project,
// falling back to the component store if it was not part of the initial
// activation snapshot (e.g. saved after Activate ran).
func (m *Manager) ResolveAgent(name string) (mcptypes.AgentConfig, error) {
	m.mu.RLock()
	if m.active != nil {
		if a, ok := m.active.Agents[name]; ok {
			m.mu.RUnlock()
			return a, nil
		}
	}
	m.mu.RUnlock()

	a, ok := m.store.GetAgent(name)
	if !ok {
		return mcptypes.AgentConfig{}, &mcperrors.ComponentNotFound{Kind: "agent", Name: name}
	}
	return a, nil
}

// ResolveLLM returns the LLM config named id, checking the active project
// first and falling back to the store.
func (m *Manager) ResolveLLM(id string) (mcptypes.LLMConfig, error) {
	m.mu.RLock()
	if m.active != nil {
		if l, ok := m.active.LLMs[id]; ok {
			m.mu.RUnlock()
			return l, nil
		}
	}
	m.mu.RUnlock()

	l, ok := m.store.GetLLM(id)
	if !ok {
		return mcptypes.LLMConfig{}, &mcperrors.ComponentNotFound{Kind: "llm", Name: id}
	}
	return l, nil
}

// ResolveSimpleWorkflow returns the simple workflow named name.
func (m *Manager) ResolveSimpleWorkflow(name string) (mcptypes.WorkflowConfig, error) {
	m.mu.RLock()
	if m.active != nil {
		if w, ok := m.active.SimpleWorkflows[name]; ok {
			m.mu.RUnlock()
			return w, nil
		}
	}
	m.mu.RUnlock()

	w, ok := m.store.GetSimpleWorkflow(name)
	if !ok {
		return mcptypes.WorkflowConfig{}, &mcperrors.ComponentNotFound{Kind: "simple_workflow", Name: name}
	}
	return w, nil
}

// ResolveCustomWorkflow returns the custom workflow named name.
func (m *Manager) ResolveCustomWorkflow(name string) (mcptypes.CustomWorkflowConfig, error) {
	m.mu.RLock()
	if m.active != nil {
		if w, ok := m.active.CustomWorkflows[name]; ok {
			m.mu.RUnlock()
			return w, nil
		}
	}
	m.mu.RUnlock()

	w, ok := m.store.GetCustomWorkflow(name)
	if !ok {
		return mcptypes.CustomWorkflowConfig{}, &mcperrors.ComponentNotFound{Kind: "custom_workflow", Name: name}
	}
	return w, nil
}

// RegisterAgent adds or replaces an agent definition in the active project
// only, without touching the on-disk component store. Used for dynamic,
// runtime-only registration (e.g. a workflow step generated at runtime).
func (m *Manager) RegisterAgent(a mcptypes.AgentConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return fmt.Errorf("no active project")
	}
	m.active.Agents[a.Name] = a
	return nil
}

// RegisterLLM adds or replaces an LLM definition in the active project only.
func (m *Manager) RegisterLLM(l mcptypes.LLMConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return fmt.Errorf("no active project")
	}
	m.active.LLMs[l.LLMID] = l
	return nil
}

// RegisterSimpleWorkflow adds or replaces a simple workflow definition in
// the active project only. The caller (kernel.HostManager) is responsible
// for cascading re-registration of each step's agent.
func (m *Manager) RegisterSimpleWorkflow(w mcptypes.WorkflowConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return fmt.Errorf("no active project")
	}
	m.active.SimpleWorkflows[w.Name] = w
	return nil
}

// RegisterCustomWorkflow adds or replaces a custom workflow definition in
// the active project only.
func (m *Manager) RegisterCustomWorkflow(w mcptypes.CustomWorkflowConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return fmt.Errorf("no active project")
	}
	m.active.CustomWorkflows[w.Name] = w
	return nil
}

// RegisterClient adds or replaces a client definition in the active project
// only. The caller (kernel.HostManager) is responsible for cascading the
// connect-and-discover step against the live MCPHost.
func (m *Manager) RegisterClient(c mcptypes.ClientConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return fmt.Errorf("no active project")
	}
	m.active.Clients[c.ClientID] = c
	return nil
}

// Validate checks the active project's definitions for referential
// integrity (agent -> llm_config_id in the component store, simple
// workflow -> step agent names) without mutating anything, for a dry-run /
// validate-only check. With no active project it reports nothing.
func (m *Manager) Validate() []error {
	var errs []error

	for _, a := range m.listAgents() {
		if a.LLMConfigID != "" {
			if _, ok := m.store.GetLLM(a.LLMConfigID); !ok {
				errs = append(errs, fmt.Errorf("agent %q references unknown llm_config_id %q", a.Name, a.LLMConfigID))
			}
		}
	}

	m.mu.RLock()
	var workflows []mcptypes.WorkflowConfig
	if m.active != nil {
		for _, w := range m.active.SimpleWorkflows {
			workflows = append(workflows, w)
		}
	}
	m.mu.RUnlock()
	for _, w := range workflows {
		for _, step := range w.Steps {
			if _, err := m.ResolveAgent(step); err != nil {
				errs = append(errs, fmt.Errorf("simple workflow %q references unknown agent %q", w.Name, step))
			}
		}
	}
	return errs
}

func (m *Manager) listAgents() []mcptypes.AgentConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return nil
	}
	out := make([]mcptypes.AgentConfig, 0, len(m.active.Agents))
	for _, a := range m.active.Agents {
		out = append(out, a)
	}
	return out
}
