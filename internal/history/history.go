// Package history persists ConversationHistory records keyed by (agent
// name, session id). Store abstracts the backing mechanism so the agent
// turn loop's include_history/session_id flow works the same whether
// history lives in memory (tests, ephemeral runs) or in Valkey (durable,
// shared across host restarts). Interface and JSON-per-record shape
// grounded on the teacher's internal/workflow.ExecutionStorage; the
// Valkey-backed implementation is new, wiring in the valkey-go client the
// rest of the pack pulls transitively through mcp-oauth's storage backend.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
)

// Store persists and retrieves conversation histories.
type Store interface {
	Get(ctx context.Context, agentName, sessionID string) (mcptypes.ConversationHistory, error)
	Save(ctx context.Context, history mcptypes.ConversationHistory) error
	Delete(ctx context.Context, agentName, sessionID string) error
}

func key(agentName, sessionID string) string {
	return agentName + "/" + sessionID
}

// MemoryStore is an in-process Store backed by a map, used in tests and
// for hosts that don't need history to survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]mcptypes.ConversationHistory
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]mcptypes.ConversationHistory)}
}

// Get returns the stored history, or ComponentNotFound if none exists yet
// (a fresh session has no prior history — callers should treat this as an
// empty history, not a fatal error).
func (m *MemoryStore) Get(ctx context.Context, agentName, sessionID string) (mcptypes.ConversationHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.sessions[key(agentName, sessionID)]
	if !ok {
		return mcptypes.ConversationHistory{}, &mcperrors.ComponentNotFound{Kind: "conversation_history", Name: key(agentName, sessionID)}
	}
	return h, nil
}

// Save stores history, replacing any prior record for the same session.
func (m *MemoryStore) Save(ctx context.Context, history mcptypes.ConversationHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key(history.AgentName, history.SessionID)] = history
	return nil
}

// Delete removes a session's history.
func (m *MemoryStore) Delete(ctx context.Context, agentName, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key(agentName, sessionID))
	return nil
}

// ValkeyClient is the subset of valkey-go's client the store needs, kept
// narrow so tests can substitute an in-memory fake without a running
// server.
type ValkeyClient interface {
	Do(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// ValkeyStore persists history in a Valkey/Redis-compatible store, one key
// per (agent, session) holding the JSON-encoded history. Use when
// conversations must survive a host restart or be shared across host
// instances.
type ValkeyStore struct {
	client ValkeyClient
	prefix string
}

// NewValkeyStore returns a ValkeyStore using client, namespacing keys under
// prefix (e.g. "mcphost:history:").
func NewValkeyStore(client ValkeyClient, prefix string) *ValkeyStore {
	return &ValkeyStore{client: client, prefix: prefix}
}

func (v *ValkeyStore) redisKey(agentName, sessionID string) string {
	return v.prefix + key(agentName, sessionID)
}

// Get loads and decodes the history for (agentName, sessionID).
func (v *ValkeyStore) Get(ctx context.Context, agentName, sessionID string) (mcptypes.ConversationHistory, error) {
	data, err := v.client.Do(ctx, v.redisKey(agentName, sessionID))
	if err != nil {
		return mcptypes.ConversationHistory{}, fmt.Errorf("loading history for %s/%s: %w", agentName, sessionID, err)
	}
	if data == nil {
		return mcptypes.ConversationHistory{}, &mcperrors.ComponentNotFound{Kind: "conversation_history", Name: key(agentName, sessionID)}
	}

	var history mcptypes.ConversationHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return mcptypes.ConversationHistory{}, fmt.Errorf("decoding history for %s/%s: %w", agentName, sessionID, err)
	}
	return history, nil
}

// Save encodes and stores history.
func (v *ValkeyStore) Save(ctx context.Context, history mcptypes.ConversationHistory) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding history for %s/%s: %w", history.AgentName, history.SessionID, err)
	}
	if err := v.client.Set(ctx, v.redisKey(history.AgentName, history.SessionID), data); err != nil {
		return fmt.Errorf("saving history for %s/%s: %w", history.AgentName, history.SessionID, err)
	}
	return nil
}

// Delete removes a session's history.
func (v *ValkeyStore) Delete(ctx context.Context, agentName, sessionID string) error {
	if err := v.client.Del(ctx, v.redisKey(agentName, sessionID)); err != nil {
		return fmt.Errorf("deleting history for %s/%s: %w", agentName, sessionID, err)
	}
	return nil
}
