// Package filtering implements the agent-level component policy: which
// clients and which named components an agent is permitted to reach.
// Exclude always dominates include, and the logic is pure and synchronous —
// it consults only the AgentConfig already loaded into memory, no I/O.
package filtering

import (
	"strings"

	"mcphost/internal/mcptypes"
)

// FilteringManager evaluates one agent's client and component policy.
type FilteringManager struct {
	clientIDs         map[string]struct{} // nil means "all clients permitted"
	excludeComponents map[string]struct{}
	includeComponents map[string]struct{} // nil/empty means "all components permitted"
}

// New builds a FilteringManager from an agent's static configuration.
func New(cfg mcptypes.AgentConfig) *FilteringManager {
	return &FilteringManager{
		clientIDs:         cfg.ClientIDSet(),
		excludeComponents: toSet(cfg.ExcludeComponents),
		includeComponents: toSet(cfg.IncludeComponents),
	}
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// IsClientPermitted reports whether the agent may use the named client. An
// agent with no ClientIDs restriction (nil set) permits every client.
func (f *FilteringManager) IsClientPermitted(clientID string) bool {
	if f.clientIDs == nil {
		return true
	}
	_, ok := f.clientIDs[clientID]
	return ok
}

// componentKey builds the "<kind>:<name>" form exclude/include entries use.
func componentKey(kind mcptypes.ComponentKind, name string) string {
	return string(kind) + ":" + name
}

// IsComponentPermitted reports whether the agent may use the named
// component. Exclude dominates include: a name present in both is denied.
// Matching is exact "<kind>:<name>" string membership — case-sensitive, no
// wildcards, no bare-name fallback.
func (f *FilteringManager) IsComponentPermitted(kind mcptypes.ComponentKind, name string) bool {
	key := componentKey(kind, name)
	if _, excluded := f.excludeComponents[key]; excluded {
		return false
	}
	if len(f.includeComponents) == 0 {
		return true
	}
	_, included := f.includeComponents[key]
	return included
}

// FilterClients returns the subset of candidateClientIDs the agent is
// permitted to use, preserving input order.
func (f *FilteringManager) FilterClients(candidateClientIDs []string) []string {
	out := make([]string, 0, len(candidateClientIDs))
	for _, id := range candidateClientIDs {
		if f.IsClientPermitted(id) {
			out = append(out, id)
		}
	}
	return out
}

// Describe renders a short human-readable summary of the policy, used in
// diagnostics and error messages.
func (f *FilteringManager) Describe() string {
	var b strings.Builder
	if f.clientIDs == nil {
		b.WriteString("clients=*")
	} else {
		b.WriteString("clients=restricted(")
		b.WriteString(joinKeys(f.clientIDs))
		b.WriteString(")")
	}
	if len(f.excludeComponents) > 0 {
		b.WriteString(" exclude=")
		b.WriteString(joinKeys(f.excludeComponents))
	}
	if len(f.includeComponents) > 0 {
		b.WriteString(" include=")
		b.WriteString(joinKeys(f.includeComponents))
	}
	return b.String()
}

func joinKeys(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return strings.Join(keys, ",")
}
