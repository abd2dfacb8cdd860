// Package execution is the host's entry point for every way a project can
// be run: single agent turns (RunAgent/StreamAgent), sequential simple
// workflows, and compile-time-registered custom workflows. Facade ties
// together MCPHost (client/tool access), project.Manager (component
// resolution), history.Store (conversation persistence), and the llm
// Factory (provider clients), caching one llm.Client per LLM config so a
// busy agent doesn't reconnect to its provider on every turn. Grounded on
// the teacher's internal/aggregator.AggregatorManager as the "one object
// that owns everything downstream" shape, generalized from server-fleet
// orchestration to turn/workflow orchestration.
package execution

import (
	"context"
	"fmt"
	"sync"

	"mcphost/internal/filtering"
	"mcphost/internal/llm"
	"mcphost/internal/mcptypes"
	"mcphost/internal/project"
)

// toolLister is the narrow catalog dependency a Host implementation
// supplies to list every registered tool, independent of client id.
type toolLister interface {
	List(clientID string) []mcptypes.ToolInfo
}

// Facade is the single object a caller (the kernel, an HTTP handler, a
// CLI command) needs to run agents and workflows against the active
// project.
type Facade struct {
	host    TurnHost
	tools   toolLister
	project *project.Manager
	history HistoryStore

	mu         sync.Mutex
	llmClients map[string]llm.Client
}

// NewFacade wires together a ready MCPHost's ExecuteTool dependency, its
// tool catalog, a project manager, and a history store.
func NewFacade(host TurnHost, tools toolLister, proj *project.Manager, hist HistoryStore) *Facade {
	return &Facade{
		host:       host,
		tools:      tools,
		project:    proj,
		history:    hist,
		llmClients: make(map[string]llm.Client),
	}
}

// VisibleTools implements ToolCatalog: every tool registered on the host,
// narrowed to the ones the agent's client and component policy permits,
// converted to the provider-facing schema shape.
func (f *Facade) VisibleTools(agent mcptypes.AgentConfig, policy *filtering.FilteringManager) []llm.ToolSchema {
	all := f.tools.List("")
	out := make([]llm.ToolSchema, 0, len(all))
	for _, t := range all {
		if !policy.IsClientPermitted(t.ClientID) {
			continue
		}
		if !policy.IsComponentPermitted(mcptypes.KindTool, t.Name) {
			continue
		}
		out = append(out, llm.ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return out
}

// llmClientFor returns the cached llm.Client for cfg.LLMID, constructing
// and caching one on first use.
func (f *Facade) llmClientFor(cfg mcptypes.LLMConfig) (llm.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.llmClients[cfg.LLMID]; ok {
		return client, nil
	}
	client, err := llm.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("constructing llm client %q: %w", cfg.LLMID, err)
	}
	f.llmClients[cfg.LLMID] = client
	return client, nil
}

// RunAgent resolves agentName and its LLM config against the active
// project and runs one turn.
func (f *Facade) RunAgent(ctx context.Context, agentName, userMessage, sessionID string, override CallOverride, preferredClient string) (TurnResult, error) {
	agent, err := f.project.ResolveAgent(agentName)
	if err != nil {
		return TurnResult{}, err
	}
	llmCfg, err := f.project.ResolveLLM(agent.LLMConfigID)
	if err != nil {
		return TurnResult{}, err
	}
	client, err := f.llmClientFor(llmCfg)
	if err != nil {
		return TurnResult{}, err
	}

	runner := NewRunner(f.host, f, f.history)
	return runner.RunAgent(ctx, RunAgentInput{
		Agent:           agent,
		LLMConfig:       llmCfg,
		Client:          client,
		UserMessage:     userMessage,
		SessionID:       sessionID,
		Override:        override,
		PreferredClient: preferredClient,
	})
}

// StreamAgent is RunAgent's streaming counterpart, emitting Events onto
// events (which this call closes when the run ends).
func (f *Facade) StreamAgent(ctx context.Context, agentName, userMessage, sessionID string, override CallOverride, preferredClient string, events chan<- Event) error {
	agent, err := f.project.ResolveAgent(agentName)
	if err != nil {
		close(events)
		return err
	}
	llmCfg, err := f.project.ResolveLLM(agent.LLMConfigID)
	if err != nil {
		close(events)
		return err
	}
	client, err := f.llmClientFor(llmCfg)
	if err != nil {
		close(events)
		return err
	}

	runner := NewRunner(f.host, f, f.history)
	runner.StreamAgent(ctx, RunAgentInput{
		Agent:           agent,
		LLMConfig:       llmCfg,
		Client:          client,
		UserMessage:     userMessage,
		SessionID:       sessionID,
		Override:        override,
		PreferredClient: preferredClient,
	}, events)
	return nil
}

// RunSimpleWorkflow resolves name against the active project and runs its
// steps in sequence, each step dispatched through RunAgent.
func (f *Facade) RunSimpleWorkflow(ctx context.Context, name, initialMessage, sessionID string) (SimpleWorkflowResult, error) {
	workflow, err := f.project.ResolveSimpleWorkflow(name)
	if err != nil {
		return SimpleWorkflowResult{}, err
	}

	executor := NewSimpleWorkflowExecutor(func(ctx context.Context, agentName, userMessage, sessionID string) (TurnResult, error) {
		return f.RunAgent(ctx, agentName, userMessage, sessionID, CallOverride{}, "")
	})
	return executor.Run(ctx, workflow, initialMessage, sessionID)
}

// RunCustomWorkflow resolves name against the active project and invokes
// its registered implementation. sessionID is optional and is threaded
// through unchanged so user code can use it (e.g. to run agents with
// history) without the facade inspecting it.
func (f *Facade) RunCustomWorkflow(ctx context.Context, name string, input map[string]any, sessionID string) (any, error) {
	cfg, err := f.project.ResolveCustomWorkflow(name)
	if err != nil {
		return nil, err
	}
	executor := NewCustomWorkflowExecutor(f)
	return executor.Run(ctx, cfg, input, sessionID)
}

// HistoryFor exposes the facade's history store, for callers that need
// direct access without running a turn.
func (f *Facade) HistoryFor() HistoryStore {
	return f.history
}

// Close releases every cached LLM client.
func (f *Facade) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	for id, client := range f.llmClients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing llm client %q: %w", id, err)
		}
	}
	f.llmClients = make(map[string]llm.Client)
	return firstErr
}
