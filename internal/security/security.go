// Package security resolves SecretRef entries into environment variables
// for stdio client subprocesses. Fetching a secret is assumed to be a
// blocking, possibly remote call (a GCP Secret Manager lookup in
// production); concurrent requests for the same secret id are deduped with
// golang.org/x/sync/singleflight, the same mechanism the teacher's
// internal/oauth client uses to collapse concurrent metadata fetches.
package security

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/singleflight"

	"mcphost/internal/mcptypes"
	"mcphost/pkg/logging"
)

// SecretFetcher retrieves the plaintext value of a secret by id. Production
// wiring points this at a cloud secret manager client; tests use a map-
// backed stub.
type SecretFetcher interface {
	FetchSecret(ctx context.Context, secretID string) (string, error)
}

// SecurityManager resolves a client's declared GCPSecrets into the
// environment map passed to its stdio subprocess.
type SecurityManager struct {
	fetcher SecretFetcher
	group   singleflight.Group
}

// New returns a SecurityManager backed by fetcher.
func New(fetcher SecretFetcher) *SecurityManager {
	return &SecurityManager{fetcher: fetcher}
}

// ResolveEnv resolves every SecretRef in refs into an environment map keyed
// by EnvVarName. Concurrent calls resolving the same secret id share one
// underlying fetch. A missing or forbidden secret is logged (as an audit
// failure) and skipped — it never aborts the batch, so the rest of the
// client's declared secrets still resolve into the returned environment.
func (s *SecurityManager) ResolveEnv(ctx context.Context, clientID string, refs []mcptypes.SecretRef) (map[string]string, error) {
	env := make(map[string]string, len(refs))
	for _, ref := range refs {
		value, err := s.resolveOne(ctx, ref.SecretID)
		if err != nil {
			logging.Audit(logging.AuditEvent{
				Action:  "secret_resolve",
				Outcome: "failure",
				Target:  ref.SecretID,
				Details: "client=" + clientID,
				Error:   err.Error(),
			})
			logging.Warn("Security", "skipping secret %q for client %q: %v", ref.SecretID, clientID, err)
			continue
		}
		logging.Audit(logging.AuditEvent{
			Action:  "secret_resolve",
			Outcome: "success",
			Target:  ref.SecretID,
			Details: "client=" + clientID,
		})
		env[ref.EnvVarName] = value
	}
	return env, nil
}

func (s *SecurityManager) resolveOne(ctx context.Context, secretID string) (string, error) {
	value, err, _ := s.group.Do(secretID, func() (interface{}, error) {
		return s.fetcher.FetchSecret(ctx, secretID)
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// EnvSecretFetcher resolves secret ids against the host process's own
// environment, one variable per secret id with no indirection through a
// cloud secret manager. This is the default fetcher a standalone binary
// wires in; anything needing real secret-manager-backed resolution
// supplies its own SecretFetcher (e.g. a GCP Secret Manager client) to
// security.New instead.
type EnvSecretFetcher struct{}

// FetchSecret looks up secretID as an environment variable name, failing
// if it is unset or empty.
func (EnvSecretFetcher) FetchSecret(ctx context.Context, secretID string) (string, error) {
	value, ok := os.LookupEnv(secretID)
	if !ok || value == "" {
		return "", fmt.Errorf("secret %q not set in environment", secretID)
	}
	return value, nil
}
