package execution

import (
	"context"
	"fmt"

	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
)

// CustomWorkflow is user code composing agent runs, simple workflows, and
// direct tool calls through the Facade it's handed. Implementations
// register themselves at package init time with RegisterCustomWorkflow;
// there is no dynamic module loading (see the CustomWorkflowConfig
// ModulePath doc comment in internal/mcptypes — that field is advisory
// metadata, validated by componentstore.Store.ResolveModulePath, not a
// loader directive).
type CustomWorkflow interface {
	Run(ctx context.Context, facade *Facade, input map[string]any, sessionID string) (any, error)
}

// CustomWorkflowFactory constructs a fresh CustomWorkflow instance per run,
// so workflows can hold per-run state without it leaking across calls.
type CustomWorkflowFactory func() CustomWorkflow

var customWorkflowRegistry = make(map[string]CustomWorkflowFactory)

// RegisterCustomWorkflow makes a custom workflow implementation available
// under className, the same key a CustomWorkflowConfig's ClassName field
// names.
func RegisterCustomWorkflow(className string, factory CustomWorkflowFactory) {
	customWorkflowRegistry[className] = factory
}

// IsCustomWorkflowRegistered reports whether className has a factory
// registered, so a dynamic registration of a CustomWorkflowConfig can be
// validated before it's added to the active project.
func IsCustomWorkflowRegistered(className string) bool {
	_, ok := customWorkflowRegistry[className]
	return ok
}

// CustomWorkflowExecutor resolves a CustomWorkflowConfig's ClassName
// against the compile-time registry and runs it, passing the owning
// Facade by reference so the workflow can recursively run agents or
// simple workflows of its own.
type CustomWorkflowExecutor struct {
	facade *Facade
}

// NewCustomWorkflowExecutor returns an executor bound to facade.
func NewCustomWorkflowExecutor(facade *Facade) *CustomWorkflowExecutor {
	return &CustomWorkflowExecutor{facade: facade}
}

// Run resolves and invokes the named custom workflow with input. sessionID
// is threaded through unchanged so the user code can pass it on to any
// agent run it composes (spec §8 scenario 6).
func (e *CustomWorkflowExecutor) Run(ctx context.Context, cfg mcptypes.CustomWorkflowConfig, input map[string]any, sessionID string) (any, error) {
	factory, ok := customWorkflowRegistry[cfg.ClassName]
	if !ok {
		return nil, &mcperrors.CustomWorkflowLoadError{
			ModulePath: cfg.ModulePath,
			ClassName:  cfg.ClassName,
			Cause:      fmt.Errorf("no custom workflow registered for class %q", cfg.ClassName),
		}
	}

	workflow := factory()
	output, err := workflow.Run(ctx, e.facade, input, sessionID)
	if err != nil {
		return nil, fmt.Errorf("custom workflow %q failed: %w", cfg.Name, err)
	}
	return output, nil
}
