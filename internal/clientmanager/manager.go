// Package clientmanager owns the lifecycle of one MCP client connection:
// connect, periodic liveness supervision, and teardown. Connect is
// deliberately separable from the long-running monitor loop so MCPHost can
// run connect synchronously during startup (to report init failures inline)
// while monitor runs for the client's entire lifetime in the host's task
// group. Whichever goroutine runs monitor owns final cleanup — the same
// goroutine that notices the client is gone tears it down, so no other
// code path can race a partial teardown. Grounded on the teacher's
// internal/services/mcpserver Service.Start/Stop state machine, trimmed
// of the Kubernetes-CRD state transitions that don't apply here.
package clientmanager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mcphost/internal/mcpclient"
	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
	"mcphost/pkg/logging"
)

// PingInterval is how often monitor checks liveness of a connected client.
const PingInterval = 30 * time.Second

// Status summarizes one client's current health, used by the host's
// diagnostic Status() verb.
type Status struct {
	ClientID  string
	Connected bool
	LastError string
}

// Handle is one managed client: its static config, live session, and
// derived status. The zero value is not usable; construct with New.
type Handle struct {
	Config mcptypes.ClientConfig

	mu        sync.RWMutex
	session   mcpclient.Session
	connected bool
	lastErr   error
}

// New returns an unconnected Handle for cfg.
func New(cfg mcptypes.ClientConfig) *Handle {
	return &Handle{Config: cfg}
}

// Connect builds and initializes the transport session. It does not start
// supervision; call Monitor afterward (typically in its own goroutine) to
// own the session for its lifetime and guarantee teardown.
func (h *Handle) Connect(ctx context.Context, env map[string]string) error {
	session, err := mcpclient.New(mcpclient.Config{ClientConfig: h.Config, Env: env})
	if err != nil {
		return fmt.Errorf("building session for client %q: %w", h.Config.ClientID, err)
	}
	if err := session.Initialize(ctx); err != nil {
		return &mcperrors.ClientInitFailed{ClientID: h.Config.ClientID, Cause: err}
	}

	h.mu.Lock()
	h.session = session
	h.connected = true
	h.lastErr = nil
	h.mu.Unlock()
	return nil
}

// Session returns the live session, or an error if the client is not
// connected. Callers (the registries, tool/prompt/resource dispatch) should
// resolve a client id and then call this immediately before use.
func (h *Handle) Session() (mcpclient.Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.connected || h.session == nil {
		return nil, &mcperrors.ClientUnavailable{ClientID: h.Config.ClientID}
	}
	return h.session, nil
}

// Status reports the handle's current health.
func (h *Handle) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := Status{ClientID: h.Config.ClientID, Connected: h.connected}
	if h.lastErr != nil {
		s.LastError = h.lastErr.Error()
	}
	return s
}

// Monitor supervises a connected handle until ctx is canceled or the
// session reports it is unreachable, then closes the session. Intended to
// run as its own goroutine within the host's task group; on return the
// handle is guaranteed torn down — callers (MCPHost) must still unregister
// the client id from the router and component registries.
func (h *Handle) Monitor(ctx context.Context) error {
	defer h.teardown()

	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			session, err := h.Session()
			if err != nil {
				return nil
			}
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = session.Ping(pingCtx)
			cancel()
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logging.Warn("ClientManager", "client %q failed liveness ping: %v", h.Config.ClientID, err)
				h.mu.Lock()
				h.lastErr = err
				h.mu.Unlock()
				return fmt.Errorf("client %q unreachable: %w", h.Config.ClientID, err)
			}
		}
	}
}

func (h *Handle) teardown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session == nil {
		return
	}
	if err := h.session.Close(); err != nil {
		logging.Debug("ClientManager", "error closing client %q: %v", h.Config.ClientID, err)
	}
	h.session = nil
	h.connected = false
}

// Close tears down the handle outside of Monitor's control flow, used when
// a client never made it past Connect (so Monitor was never started).
func (h *Handle) Close() {
	h.teardown()
}
