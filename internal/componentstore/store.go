// Package componentstore implements ComponentManager: the on-disk,
// typed-directory store of client/llm/agent/simple_workflow/custom_workflow
// definitions. Each file under a kind's directory may hold a single
// definition or a YAML sequence of several; a duplicate id encountered
// during a directory scan keeps the first definition found and logs a
// warning rather than failing the whole load. Grounded on the teacher's
// internal/config.Storage (per-entity-type directory, sanitized filename,
// .yaml extension CRUD) and internal/mcpserver/manager.go's
// LoadDefinitions/validateDefinition scan pattern.
package componentstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
	"mcphost/pkg/logging"
)

// Kind names the five typed directories a project root holds.
type Kind string

const (
	KindClients         Kind = "clients"
	KindLLMs            Kind = "llms"
	KindAgents          Kind = "agents"
	KindSimpleWorkflows Kind = "simple_workflows"
	KindCustomWorkflows Kind = "custom_workflows"
)

var allKinds = []Kind{KindClients, KindLLMs, KindAgents, KindSimpleWorkflows, KindCustomWorkflows}

// Store is the typed-directory component store rooted at a project
// directory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	root string

	clients         map[string]mcptypes.ClientConfig
	llms            map[string]mcptypes.LLMConfig
	agents          map[string]mcptypes.AgentConfig
	simpleWorkflows map[string]mcptypes.WorkflowConfig
	customWorkflows map[string]mcptypes.CustomWorkflowConfig
}

// New returns a Store rooted at root. Call Load to populate it from disk.
func New(root string) *Store {
	return &Store{
		root:            root,
		clients:         make(map[string]mcptypes.ClientConfig),
		llms:            make(map[string]mcptypes.LLMConfig),
		agents:          make(map[string]mcptypes.AgentConfig),
		simpleWorkflows: make(map[string]mcptypes.WorkflowConfig),
		customWorkflows: make(map[string]mcptypes.CustomWorkflowConfig),
	}
}

// Root returns the project directory this store is rooted at.
func (s *Store) Root() string { return s.root }

// KindDirs returns the five typed directories under Root(), for a caller
// that wants to watch them for external edits (see internal/project's
// ProjectWatcher).
func (s *Store) KindDirs() []string {
	dirs := make([]string, 0, len(allKinds))
	for _, kind := range allKinds {
		dirs = append(dirs, filepath.Join(s.root, string(kind)))
	}
	return dirs
}

// Load scans every typed directory under root and populates the store,
// replacing any previously loaded state.
func (s *Store) Load() error {
	clients, err := loadYAMLDir[mcptypes.ClientConfig](s.root, KindClients, func(c mcptypes.ClientConfig) string { return c.ClientID })
	if err != nil {
		return err
	}
	llms, err := loadYAMLDir[mcptypes.LLMConfig](s.root, KindLLMs, func(c mcptypes.LLMConfig) string { return c.LLMID })
	if err != nil {
		return err
	}
	agents, err := loadYAMLDir[mcptypes.AgentConfig](s.root, KindAgents, func(c mcptypes.AgentConfig) string { return c.Name })
	if err != nil {
		return err
	}
	simple, err := loadYAMLDir[mcptypes.WorkflowConfig](s.root, KindSimpleWorkflows, func(c mcptypes.WorkflowConfig) string { return c.Name })
	if err != nil {
		return err
	}
	custom, err := loadYAMLDir[mcptypes.CustomWorkflowConfig](s.root, KindCustomWorkflows, func(c mcptypes.CustomWorkflowConfig) string { return c.Name })
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.clients, s.llms, s.agents, s.simpleWorkflows, s.customWorkflows = clients, llms, agents, simple, custom
	s.mu.Unlock()
	return nil
}

// loadYAMLDir scans dir kind's directory under root, parsing each .yaml
// file as either a single T or a YAML sequence of T. A duplicate id keeps
// the first definition encountered (files are scanned in sorted order) and
// logs a warning.
func loadYAMLDir[T any](root string, kind Kind, idOf func(T) string) (map[string]T, error) {
	out := make(map[string]T)
	dir := filepath.Join(root, string(kind))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("reading %s directory: %w", kind, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isYAMLFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		defs, err := parseOneOrMany[T](data)
		if err != nil {
			return nil, &mcperrors.ConfigValidationError{Path: path, Field: "", Message: err.Error()}
		}

		for _, def := range defs {
			id := idOf(def)
			if id == "" {
				return nil, &mcperrors.ConfigValidationError{Path: path, Field: "id", Message: "definition has no identifier"}
			}
			if _, exists := out[id]; exists {
				logging.Warn("ComponentStore", "duplicate %s id %q in %s, keeping first definition", kind, id, path)
				continue
			}
			out[id] = def
		}
	}
	return out, nil
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// parseOneOrMany tries a YAML sequence first, falling back to a single
// document, so a file may hold either shape.
func parseOneOrMany[T any](data []byte) ([]T, error) {
	var many []T
	if err := yaml.Unmarshal(data, &many); err == nil && many != nil {
		return many, nil
	}

	var one T
	if err := yaml.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

// GetClient returns the named client definition.
func (s *Store) GetClient(id string) (mcptypes.ClientConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	return c, ok
}

// ListClients returns every client definition, sorted by id.
func (s *Store) ListClients() []mcptypes.ClientConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedKeysClients(s.clients)
	out := make([]mcptypes.ClientConfig, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.clients[id])
	}
	return out
}

// SaveClient writes a client definition both in memory and to disk.
func (s *Store) SaveClient(c mcptypes.ClientConfig) error {
	if err := s.writeYAML(KindClients, c.ClientID, c); err != nil {
		return err
	}
	s.mu.Lock()
	s.clients[c.ClientID] = c
	s.mu.Unlock()
	return nil
}

// DeleteClient removes a client definition from memory and disk.
func (s *Store) DeleteClient(id string) error {
	if err := s.deleteFile(KindClients, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
	return nil
}

// ListLLMs returns every LLM definition, sorted by id.
func (s *Store) ListLLMs() []mcptypes.LLMConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.llms))
	for k := range s.llms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]mcptypes.LLMConfig, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.llms[k])
	}
	return out
}

// ListAgents returns every agent definition, sorted by name.
func (s *Store) ListAgents() []mcptypes.AgentConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.agents))
	for k := range s.agents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]mcptypes.AgentConfig, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.agents[k])
	}
	return out
}

// ListSimpleWorkflows returns every simple workflow definition, sorted by name.
func (s *Store) ListSimpleWorkflows() []mcptypes.WorkflowConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.simpleWorkflows))
	for k := range s.simpleWorkflows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]mcptypes.WorkflowConfig, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.simpleWorkflows[k])
	}
	return out
}

// ListCustomWorkflows returns every custom workflow definition, sorted by name.
func (s *Store) ListCustomWorkflows() []mcptypes.CustomWorkflowConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.customWorkflows))
	for k := range s.customWorkflows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]mcptypes.CustomWorkflowConfig, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.customWorkflows[k])
	}
	return out
}

// GetLLM returns the named LLM definition.
func (s *Store) GetLLM(id string) (mcptypes.LLMConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.llms[id]
	return l, ok
}

// SaveLLM writes an LLM definition both in memory and to disk.
func (s *Store) SaveLLM(l mcptypes.LLMConfig) error {
	if err := s.writeYAML(KindLLMs, l.LLMID, l); err != nil {
		return err
	}
	s.mu.Lock()
	s.llms[l.LLMID] = l
	s.mu.Unlock()
	return nil
}

// GetAgent returns the named agent definition.
func (s *Store) GetAgent(name string) (mcptypes.AgentConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[name]
	return a, ok
}

// SaveAgent writes an agent definition both in memory and to disk.
func (s *Store) SaveAgent(a mcptypes.AgentConfig) error {
	if err := s.writeYAML(KindAgents, a.Name, a); err != nil {
		return err
	}
	s.mu.Lock()
	s.agents[a.Name] = a
	s.mu.Unlock()
	return nil
}

// GetSimpleWorkflow returns the named simple workflow definition.
func (s *Store) GetSimpleWorkflow(name string) (mcptypes.WorkflowConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.simpleWorkflows[name]
	return w, ok
}

// SaveSimpleWorkflow writes a simple workflow definition both in memory and
// to disk.
func (s *Store) SaveSimpleWorkflow(w mcptypes.WorkflowConfig) error {
	if err := s.writeYAML(KindSimpleWorkflows, w.Name, w); err != nil {
		return err
	}
	s.mu.Lock()
	s.simpleWorkflows[w.Name] = w
	s.mu.Unlock()
	return nil
}

// GetCustomWorkflow returns the named custom workflow definition.
func (s *Store) GetCustomWorkflow(name string) (mcptypes.CustomWorkflowConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.customWorkflows[name]
	return w, ok
}

// SaveCustomWorkflow writes a custom workflow definition both in memory and
// to disk.
func (s *Store) SaveCustomWorkflow(w mcptypes.CustomWorkflowConfig) error {
	if err := s.writeYAML(KindCustomWorkflows, w.Name, w); err != nil {
		return err
	}
	s.mu.Lock()
	s.customWorkflows[w.Name] = w
	s.mu.Unlock()
	return nil
}

func (s *Store) writeYAML(kind Kind, id string, v any) error {
	if id == "" {
		return fmt.Errorf("cannot save %s with empty id", kind)
	}
	dir := filepath.Join(s.root, string(kind))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", kind, err)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s %q: %w", kind, id, err)
	}

	path := filepath.Join(dir, sanitizeFilename(id)+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logging.Info("ComponentStore", "saved %s %q to %s", kind, id, path)
	return nil
}

func (s *Store) deleteFile(kind Kind, id string) error {
	path := filepath.Join(s.root, string(kind), sanitizeFilename(id)+".yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &mcperrors.ComponentNotFound{Kind: string(kind), Name: id}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return replacer.Replace(name)
}

func sortedKeysClients(m map[string]mcptypes.ClientConfig) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResolveServerPath resolves a client's ServerPath relative to the project
// root when it is not already absolute.
func (s *Store) ResolveServerPath(serverPath string) string {
	if filepath.IsAbs(serverPath) {
		return serverPath
	}
	return filepath.Join(s.root, serverPath)
}

// ResolveModulePath resolves a custom workflow's ModulePath relative to the
// project root and guards against the result escaping the root
// (path-traversal guard; ModulePath is advisory metadata only — see
// internal/execution's compile-time CustomWorkflow registry).
func (s *Store) ResolveModulePath(modulePath string) (string, error) {
	resolved := modulePath
	if !filepath.IsAbs(modulePath) {
		resolved = filepath.Join(s.root, modulePath)
	}
	resolved = filepath.Clean(resolved)

	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("resolving module path: %w", err)
	}
	if resolvedAbs != rootAbs && !strings.HasPrefix(resolvedAbs, rootAbs+string(filepath.Separator)) {
		return "", &mcperrors.CustomWorkflowLoadError{ModulePath: modulePath, Cause: fmt.Errorf("module path escapes project root")}
	}
	return resolvedAbs, nil
}
