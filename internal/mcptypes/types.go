// Package mcptypes holds the static configuration and runtime data-model
// types shared across the host, configuration, and execution layers:
// client/llm/agent/workflow configuration, the resolved project, and the
// component descriptors the registries hand back to callers.
package mcptypes

import "time"

// TransportKind is the wire transport a ClientConfig connects over.
type TransportKind string

const (
	TransportStdio TransportKind = "stdio"
	TransportSSE   TransportKind = "sse"
)

// Capability names a class of component an MCP client may advertise.
type Capability string

const (
	CapabilityTools     Capability = "tools"
	CapabilityPrompts   Capability = "prompts"
	CapabilityResources Capability = "resources"
)

// ComponentKind distinguishes the three component catalogs. It is also used
// as the prefix in exclude/include strings ("tool:<name>", "prompt:<name>",
// "resource:<uri>").
type ComponentKind string

const (
	KindTool     ComponentKind = "tool"
	KindPrompt   ComponentKind = "prompt"
	KindResource ComponentKind = "resource"
)

// Root describes a filesystem or logical root a client declares access to,
// mirrored from the MCP roots capability.
type Root struct {
	URI          string       `yaml:"uri" json:"uri"`
	Name         string       `yaml:"name,omitempty" json:"name,omitempty"`
	Capabilities []Capability `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
}

// SecretRef declares one secret to resolve into a subprocess environment
// variable before a stdio client is spawned.
type SecretRef struct {
	SecretID   string `yaml:"secret_id" json:"secret_id"`
	EnvVarName string `yaml:"env_var_name" json:"env_var_name"`
}

// ClientConfig is the static definition of one MCP client connection.
type ClientConfig struct {
	ClientID     string        `yaml:"client_id" json:"client_id"`
	Transport    TransportKind `yaml:"transport" json:"transport"`
	ServerPath   string        `yaml:"server_path,omitempty" json:"server_path,omitempty"`
	ServerArgs   []string      `yaml:"server_args,omitempty" json:"server_args,omitempty"`
	SSEURL       string        `yaml:"sse_url,omitempty" json:"sse_url,omitempty"`
	Capabilities []Capability  `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
	Roots        []Root        `yaml:"roots,omitempty" json:"roots,omitempty"`
	Exclude      []string      `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	GCPSecrets   []SecretRef   `yaml:"gcp_secrets,omitempty" json:"gcp_secrets,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	RoutingWeight int          `yaml:"routing_weight,omitempty" json:"routing_weight,omitempty"`
}

// ExcludeSet returns Exclude as a lookup set.
func (c ClientConfig) ExcludeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Exclude))
	for _, name := range c.Exclude {
		set[name] = struct{}{}
	}
	return set
}

// LLMConfig is the static definition of one LLM provider configuration.
type LLMConfig struct {
	LLMID               string         `yaml:"llm_id" json:"llm_id"`
	Provider            string         `yaml:"provider" json:"provider"`
	ModelName           string         `yaml:"model_name" json:"model_name"`
	Temperature         *float64       `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens           *int           `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	DefaultSystemPrompt string         `yaml:"default_system_prompt,omitempty" json:"default_system_prompt,omitempty"`
	ProviderParams      map[string]any `yaml:"provider_params,omitempty" json:"provider_params,omitempty"`
}

// AgentConfig is the static definition of one agent role.
type AgentConfig struct {
	Name              string   `yaml:"name" json:"name"`
	LLMConfigID       string   `yaml:"llm_config_id,omitempty" json:"llm_config_id,omitempty"`
	Model             string   `yaml:"model,omitempty" json:"model,omitempty"`
	Temperature       *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens         *int     `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	SystemPrompt      string   `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`
	ClientIDs         []string `yaml:"client_ids,omitempty" json:"client_ids,omitempty"`
	ExcludeComponents []string `yaml:"exclude_components,omitempty" json:"exclude_components,omitempty"`
	IncludeComponents []string `yaml:"include_components,omitempty" json:"include_components,omitempty"`
	MaxIterations     int      `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"`
	IncludeHistory    bool     `yaml:"include_history,omitempty" json:"include_history,omitempty"`
}

// ClientIDSet returns ClientIDs as a lookup set, or nil if ClientIDs is unset
// (the "no restriction" case, distinct from an empty-but-present list).
func (a AgentConfig) ClientIDSet() map[string]struct{} {
	if a.ClientIDs == nil {
		return nil
	}
	set := make(map[string]struct{}, len(a.ClientIDs))
	for _, id := range a.ClientIDs {
		set[id] = struct{}{}
	}
	return set
}

// DefaultMaxIterations is used when an AgentConfig does not set MaxIterations.
const DefaultMaxIterations = 10

// EffectiveMaxIterations returns MaxIterations, defaulting when unset.
func (a AgentConfig) EffectiveMaxIterations() int {
	if a.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return a.MaxIterations
}

// WorkflowConfig is a simple (sequential) workflow: an ordered list of agent
// names, each step's output feeding the next step's input.
type WorkflowConfig struct {
	Name        string   `yaml:"name" json:"name"`
	Steps       []string `yaml:"steps" json:"steps"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// CustomWorkflowConfig references user code implementing a custom workflow.
// ModulePath is advisory metadata (validated to lie under the project root)
// rather than a loader directive; ClassName is the key into the compile-time
// CustomWorkflow registry (see internal/execution).
type CustomWorkflowConfig struct {
	Name        string `yaml:"name" json:"name"`
	ModulePath  string `yaml:"module_path" json:"module_path"`
	ClassName   string `yaml:"class_name" json:"class_name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// ProjectConfig is the fully-resolved active project: every referenced
// component id has been expanded into a concrete definition.
type ProjectConfig struct {
	Name            string                          `yaml:"name" json:"name"`
	Description     string                          `yaml:"description,omitempty" json:"description,omitempty"`
	Clients         map[string]ClientConfig         `yaml:"clients" json:"clients"`
	LLMs            map[string]LLMConfig            `yaml:"llms" json:"llms"`
	Agents          map[string]AgentConfig          `yaml:"agents" json:"agents"`
	SimpleWorkflows map[string]WorkflowConfig       `yaml:"simple_workflows" json:"simple_workflows"`
	CustomWorkflows map[string]CustomWorkflowConfig `yaml:"custom_workflows" json:"custom_workflows"`
}

// NewProjectConfig returns a ProjectConfig with all maps initialized.
func NewProjectConfig(name string) *ProjectConfig {
	return &ProjectConfig{
		Name:            name,
		Clients:         make(map[string]ClientConfig),
		LLMs:            make(map[string]LLMConfig),
		Agents:          make(map[string]AgentConfig),
		SimpleWorkflows: make(map[string]WorkflowConfig),
		CustomWorkflows: make(map[string]CustomWorkflowConfig),
	}
}

// HostConfigs returns the project's client configs in a stable, name-sorted
// order, for MCPHost initialization.
func (p *ProjectConfig) HostConfigs() []ClientConfig {
	ids := make([]string, 0, len(p.Clients))
	for id := range p.Clients {
		ids = append(ids, id)
	}
	sortStrings(ids)

	out := make([]ClientConfig, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.Clients[id])
	}
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// ToolInfo describes one tool as advertised by a client.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
	ClientID    string         `json:"client_id"`
}

// PromptInfo describes one prompt as advertised by a client.
type PromptInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Arguments   []string `json:"arguments,omitempty"`
	ClientID    string   `json:"client_id"`
}

// ResourceInfo describes one resource as advertised by a client.
type ResourceInfo struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mime_type,omitempty"`
	ClientID    string `json:"client_id"`
}

// ToolResult is the outcome of dispatching a tool call to a client.
type ToolResult struct {
	Content []any `json:"content"`
	IsError bool  `json:"is_error,omitempty"`
}

// Message is one turn in a conversation, stored in ConversationHistory and
// passed to the LLM client.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "tool"
	Content any    `json:"content"`
}

// ConversationHistory is the ordered, persisted record of one (agent,
// session) conversation.
type ConversationHistory struct {
	AgentName string    `json:"agent_name"`
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}
