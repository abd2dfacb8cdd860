package mcptypes

import "testing"

func TestAgentConfigEffectiveMaxIterations(t *testing.T) {
	tests := []struct {
		name     string
		agent    AgentConfig
		expected int
	}{
		{"unset defaults", AgentConfig{}, DefaultMaxIterations},
		{"zero defaults", AgentConfig{MaxIterations: 0}, DefaultMaxIterations},
		{"negative defaults", AgentConfig{MaxIterations: -1}, DefaultMaxIterations},
		{"explicit value is honored", AgentConfig{MaxIterations: 3}, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.agent.EffectiveMaxIterations(); got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestAgentConfigClientIDSetDistinguishesNilFromEmpty(t *testing.T) {
	unrestricted := AgentConfig{}
	if set := unrestricted.ClientIDSet(); set != nil {
		t.Errorf("expected nil set for an agent with no client_ids restriction, got %v", set)
	}

	denyAll := AgentConfig{ClientIDs: []string{}}
	if set := denyAll.ClientIDSet(); set == nil || len(set) != 0 {
		t.Errorf("expected a non-nil empty set for an explicitly empty client_ids list, got %v", set)
	}

	restricted := AgentConfig{ClientIDs: []string{"web", "db"}}
	set := restricted.ClientIDSet()
	if _, ok := set["web"]; !ok {
		t.Error("expected web in client id set")
	}
	if _, ok := set["ghost"]; ok {
		t.Error("did not expect ghost in client id set")
	}
}

func TestProjectConfigHostConfigsIsSortedByClientID(t *testing.T) {
	cfg := NewProjectConfig("demo")
	cfg.Clients["zebra"] = ClientConfig{ClientID: "zebra"}
	cfg.Clients["alpha"] = ClientConfig{ClientID: "alpha"}
	cfg.Clients["mid"] = ClientConfig{ClientID: "mid"}

	hosts := cfg.HostConfigs()
	if len(hosts) != 3 {
		t.Fatalf("expected 3 host configs, got %d", len(hosts))
	}
	order := []string{hosts[0].ClientID, hosts[1].ClientID, hosts[2].ClientID}
	expected := []string{"alpha", "mid", "zebra"}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("expected sorted order %v, got %v", expected, order)
		}
	}
}

func TestClientConfigExcludeSet(t *testing.T) {
	cfg := ClientConfig{Exclude: []string{"tool:danger"}}
	set := cfg.ExcludeSet()
	if _, ok := set["tool:danger"]; !ok {
		t.Error("expected excluded entry in set")
	}
	if len(set) != 1 {
		t.Errorf("expected exactly one entry, got %d", len(set))
	}
}
