// Package router implements the in-memory, no-I/O index the host consults
// to resolve a component name to the set of clients that provide it, and a
// client id to the capabilities it was registered with. It performs no
// network or disk access; all writes are serialized under a single mutex
// and reads take a consistent snapshot, mirroring the teacher's
// aggregator.ServerRegistry bookkeeping.
package router

import (
	"sync"

	"mcphost/internal/mcptypes"
)

// MessageRouter indexes component name -> providing client ids, and client
// id -> advertised capabilities. It holds no client handles and performs no
// I/O; MCPHost and the registries own that.
type MessageRouter struct {
	mu sync.RWMutex

	// providers maps "<kind>:<name>" -> set of client ids providing it.
	providers map[string]map[string]struct{}

	// clientCapabilities maps client id -> set of capabilities it registered.
	clientCapabilities map[string]map[mcptypes.Capability]struct{}
}

// New returns an empty MessageRouter.
func New() *MessageRouter {
	return &MessageRouter{
		providers:          make(map[string]map[string]struct{}),
		clientCapabilities: make(map[string]map[mcptypes.Capability]struct{}),
	}
}

func providerKey(kind mcptypes.ComponentKind, name string) string {
	return string(kind) + ":" + name
}

// RegisterProvider records that clientID provides the named component of
// the given kind. Safe to call multiple times for the same tuple.
func (r *MessageRouter) RegisterProvider(kind mcptypes.ComponentKind, name, clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := providerKey(kind, name)
	set, ok := r.providers[key]
	if !ok {
		set = make(map[string]struct{})
		r.providers[key] = set
	}
	set[clientID] = struct{}{}
}

// RegisterClientCapabilities records the capability set a client advertised
// at registration time.
func (r *MessageRouter) RegisterClientCapabilities(clientID string, caps []mcptypes.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := make(map[mcptypes.Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	r.clientCapabilities[clientID] = set
}

// Providers returns the sorted list of client ids currently registered as
// providers of the named component. The returned slice is a copy.
func (r *MessageRouter) Providers(kind mcptypes.ComponentKind, name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.providers[providerKey(kind, name)]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sortStrings(out)
	return out
}

// HasCapability reports whether clientID was registered with the given
// capability.
func (r *MessageRouter) HasCapability(clientID string, cap mcptypes.Capability) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.clientCapabilities[clientID]
	if !ok {
		return false
	}
	_, ok = set[cap]
	return ok
}

// UnregisterClient removes clientID from every provider set and drops its
// capability record. Called during client teardown so a dead client leaves
// no trace in the router.
func (r *MessageRouter) UnregisterClient(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, set := range r.providers {
		delete(set, clientID)
		if len(set) == 0 {
			delete(r.providers, key)
		}
	}
	delete(r.clientCapabilities, clientID)
}

// Reset clears all state.
func (r *MessageRouter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = make(map[string]map[string]struct{})
	r.clientCapabilities = make(map[string]map[mcptypes.Capability]struct{})
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
