package execution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcphost/internal/componentstore"
	"mcphost/internal/filtering"
	"mcphost/internal/history"
	"mcphost/internal/llm"
	"mcphost/internal/mcptypes"
	"mcphost/internal/project"
)

type fakeToolLister struct {
	tools []mcptypes.ToolInfo
}

func (f *fakeToolLister) List(clientID string) []mcptypes.ToolInfo {
	return f.tools
}

func newTestFacade(t *testing.T, host TurnHost, tools *fakeToolLister) (*Facade, *project.Manager) {
	t.Helper()
	store := componentstore.New(t.TempDir())
	proj := project.New(store)
	require.NoError(t, proj.Activate("test"))
	return NewFacade(host, tools, proj, history.NewMemoryStore()), proj
}

func registerFakeLLMProvider(t *testing.T, providerName string, client llm.Client) {
	t.Helper()
	llm.RegisterProvider(providerName, func(cfg mcptypes.LLMConfig) (llm.Client, error) {
		return client, nil
	})
}

func TestFacadeVisibleToolsAppliesAgentPolicy(t *testing.T) {
	tools := &fakeToolLister{tools: []mcptypes.ToolInfo{
		{Name: "search", ClientID: "web"},
		{Name: "delete_everything", ClientID: "web"},
	}}
	facade, _ := newTestFacade(t, &fakeHost{}, tools)

	agent := mcptypes.AgentConfig{Name: "researcher", ExcludeComponents: []string{"tool:delete_everything"}}
	visible := facade.VisibleTools(agent, filtering.New(agent))

	names := make([]string, 0, len(visible))
	for _, v := range visible {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"search"}, names)
}

func TestFacadeRunAgentResolvesAgentAndLLMFromProject(t *testing.T) {
	provider := "test-provider-run"
	client := &scriptedClient{responses: []llm.CallResult{{Text: "all done"}}}
	registerFakeLLMProvider(t, provider, client)

	facade, proj := newTestFacade(t, &fakeHost{}, &fakeToolLister{})
	require.NoError(t, proj.RegisterLLM(mcptypes.LLMConfig{LLMID: "llm-1", Provider: provider}))
	require.NoError(t, proj.RegisterAgent(mcptypes.AgentConfig{Name: "researcher", LLMConfigID: "llm-1"}))

	result, err := facade.RunAgent(context.Background(), "researcher", "hello", "sess-1", CallOverride{}, "")

	require.NoError(t, err)
	assert.Equal(t, "all done", result.FinalResponse)
	assert.Equal(t, StopReasonComplete, result.StopReason)
}

func TestFacadeCachesLLMClientAcrossCalls(t *testing.T) {
	provider := "test-provider-cache"
	client := &scriptedClient{responses: []llm.CallResult{{Text: "one"}, {Text: "two"}}}
	buildCount := 0
	llm.RegisterProvider(provider, func(cfg mcptypes.LLMConfig) (llm.Client, error) {
		buildCount++
		return client, nil
	})

	facade, proj := newTestFacade(t, &fakeHost{}, &fakeToolLister{})
	require.NoError(t, proj.RegisterLLM(mcptypes.LLMConfig{LLMID: "llm-cache", Provider: provider}))
	require.NoError(t, proj.RegisterAgent(mcptypes.AgentConfig{Name: "researcher", LLMConfigID: "llm-cache"}))

	_, err := facade.RunAgent(context.Background(), "researcher", "first", "sess-1", CallOverride{}, "")
	require.NoError(t, err)
	_, err = facade.RunAgent(context.Background(), "researcher", "second", "sess-2", CallOverride{}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, buildCount, "the llm client should be built once and cached by llm_id")
}

func TestFacadeRunSimpleWorkflowDispatchesEachStepThroughRunAgent(t *testing.T) {
	provider := "test-provider-workflow"
	client := &scriptedClient{responses: []llm.CallResult{{Text: "step one done"}, {Text: "step two done"}}}
	registerFakeLLMProvider(t, provider, client)

	facade, proj := newTestFacade(t, &fakeHost{}, &fakeToolLister{})
	require.NoError(t, proj.RegisterLLM(mcptypes.LLMConfig{LLMID: "llm-wf", Provider: provider}))
	require.NoError(t, proj.RegisterAgent(mcptypes.AgentConfig{Name: "first", LLMConfigID: "llm-wf"}))
	require.NoError(t, proj.RegisterAgent(mcptypes.AgentConfig{Name: "second", LLMConfigID: "llm-wf"}))
	require.NoError(t, proj.RegisterSimpleWorkflow(mcptypes.WorkflowConfig{Name: "pipeline", Steps: []string{"first", "second"}}))

	result, err := facade.RunSimpleWorkflow(context.Background(), "pipeline", "go", "sess-1")

	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, "step two done", result.FinalResponse)
}

func TestFacadeRunCustomWorkflowResolvesRegisteredClass(t *testing.T) {
	RegisterCustomWorkflow("test.facade_custom", func() CustomWorkflow {
		return &fakeCustomWorkflow{output: map[string]any{"ok": true}}
	})

	store := componentstore.New(t.TempDir())
	require.NoError(t, store.SaveCustomWorkflow(mcptypes.CustomWorkflowConfig{
		Name:      "custom",
		ClassName: "test.facade_custom",
	}))
	proj := project.New(store)
	require.NoError(t, proj.Activate("test"))

	facade := NewFacade(&fakeHost{}, &fakeToolLister{}, proj, history.NewMemoryStore())

	out, err := facade.RunCustomWorkflow(context.Background(), "custom", nil, "sess-custom")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, out)
}

func TestFacadeCloseClosesEveryCachedLLMClient(t *testing.T) {
	provider := "test-provider-close"
	client := &scriptedClient{responses: []llm.CallResult{{Text: "done"}}}
	registerFakeLLMProvider(t, provider, client)

	facade, proj := newTestFacade(t, &fakeHost{}, &fakeToolLister{})
	require.NoError(t, proj.RegisterLLM(mcptypes.LLMConfig{LLMID: "llm-close", Provider: provider}))
	require.NoError(t, proj.RegisterAgent(mcptypes.AgentConfig{Name: "researcher", LLMConfigID: "llm-close"}))

	_, err := facade.RunAgent(context.Background(), "researcher", "hi", "sess-1", CallOverride{}, "")
	require.NoError(t, err)

	require.NoError(t, facade.Close())
	assert.True(t, client.closed)
}
