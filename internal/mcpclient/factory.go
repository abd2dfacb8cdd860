package mcpclient

import (
	"fmt"

	"mcphost/internal/mcptypes"
)

// Config carries the resolved values a Session needs to connect: the
// static ClientConfig plus the environment map SecurityManager built from
// its GCPSecrets (stdio only).
type Config struct {
	ClientConfig mcptypes.ClientConfig
	Env          map[string]string
}

// New selects and constructs the Session for cfg.ClientConfig.Transport.
func New(cfg Config) (Session, error) {
	switch cfg.ClientConfig.Transport {
	case mcptypes.TransportStdio:
		if cfg.ClientConfig.ServerPath == "" {
			return nil, fmt.Errorf("server_path is required for stdio transport")
		}
		return NewStdio(cfg.ClientConfig.ServerPath, cfg.ClientConfig.ServerArgs, cfg.Env, cfg.ClientConfig.Timeout), nil

	case mcptypes.TransportSSE:
		if cfg.ClientConfig.SSEURL == "" {
			return nil, fmt.Errorf("sse_url is required for sse transport")
		}
		return NewSSE(cfg.ClientConfig.SSEURL, nil, cfg.ClientConfig.Timeout), nil

	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.ClientConfig.Transport)
	}
}
