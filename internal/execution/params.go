package execution

import (
	"mcphost/internal/llm"
	"mcphost/internal/mcptypes"
)

// CallOverride carries per-call parameter overrides a caller may pass into
// RunAgent, taking precedence over everything else.
type CallOverride struct {
	ModelName    string
	Temperature  *float64
	MaxTokens    *int
	SystemPrompt string
}

// resolveParams applies the frozen precedence chain: per-call override
// beats the agent's own inline settings (model, temperature, max tokens,
// system prompt), which beat the agent's referenced LLMConfig, which beats
// the client default baked into the LLM client adapter itself. Each field is resolved
// independently — a caller can override just the system prompt and still
// inherit the configured model.
func resolveParams(override CallOverride, referenced mcptypes.LLMConfig, agent mcptypes.AgentConfig, tools []llm.ToolSchema) llm.CallParams {
	params := llm.CallParams{
		Provider:  referenced.Provider,
		ModelName: referenced.ModelName,
		Tools:     tools,
	}

	if referenced.Temperature != nil {
		params.Temperature = referenced.Temperature
	}
	if agent.Temperature != nil {
		params.Temperature = agent.Temperature
	}
	if override.Temperature != nil {
		params.Temperature = override.Temperature
	}

	if referenced.MaxTokens != nil {
		params.MaxTokens = referenced.MaxTokens
	}
	if agent.MaxTokens != nil {
		params.MaxTokens = agent.MaxTokens
	}
	if override.MaxTokens != nil {
		params.MaxTokens = override.MaxTokens
	}

	params.SystemPrompt = referenced.DefaultSystemPrompt
	if agent.SystemPrompt != "" {
		params.SystemPrompt = agent.SystemPrompt
	}
	if override.SystemPrompt != "" {
		params.SystemPrompt = override.SystemPrompt
	}

	if agent.Model != "" {
		params.ModelName = agent.Model
	}
	if override.ModelName != "" {
		params.ModelName = override.ModelName
	}

	return params
}
