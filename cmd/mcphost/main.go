// Command mcphost is a minimal wiring entrypoint, not a CLI or UI: it loads
// a project root from disk, activates the named project, and runs one
// agent turn against it, printing the result. Real entrypoints (HTTP
// server, worker, interactive shell) are out of scope for this library —
// see SPEC_FULL.md's package layout (§D) on why cmd/ stays this thin.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"mcphost/internal/componentstore"
	"mcphost/internal/execution"
	"mcphost/internal/history"
	"mcphost/internal/kernel"
	"mcphost/internal/security"
	"mcphost/pkg/logging"
)

func main() {
	root := flag.String("root", ".", "project root directory (clients/llms/agents/simple_workflows/custom_workflows)")
	project := flag.String("project", "default", "project name to activate")
	agent := flag.String("agent", "", "agent name to run one turn against")
	message := flag.String("message", "", "user message for the turn")
	session := flag.String("session", "", "session id for conversation history (optional)")
	flag.Parse()

	if *agent == "" || *message == "" {
		fmt.Fprintln(os.Stderr, "usage: mcphost -agent <name> -message <text> [-root <dir>] [-project <name>] [-session <id>]")
		os.Exit(2)
	}

	store := componentstore.New(*root)
	if err := store.Load(); err != nil {
		logging.Error("main", err, "loading component store from %q", *root)
		os.Exit(1)
	}

	manager := kernel.New(store, security.EnvSecretFetcher{}, func() history.Store {
		return history.NewMemoryStore()
	})
	defer manager.Shutdown()

	ctx := context.Background()
	if err := manager.ChangeProject(ctx, *project); err != nil {
		logging.Error("main", err, "activating project %q", *project)
		os.Exit(1)
	}

	result, err := manager.RunAgent(ctx, *agent, *message, *session, execution.CallOverride{}, "")
	if err != nil {
		logging.Error("main", err, "running agent %q", *agent)
		os.Exit(1)
	}

	fmt.Println(result.FinalResponse)
}
