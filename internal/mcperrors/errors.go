// Package mcperrors defines the typed error kinds surfaced at the host and
// facade boundaries (spec §7): concrete structs plus Is*/As-based helpers,
// in the style of the teacher's internal/api error types.
package mcperrors

import (
	"errors"
	"fmt"
)

// NotFoundReason distinguishes why a component resolution found no
// candidates, so operators can tell an unknown name from a policy denial.
type NotFoundReason string

const (
	ReasonUnknown           NotFoundReason = "unknown"
	ReasonFiltered          NotFoundReason = "filtered"
	ReasonDisallowedClient  NotFoundReason = "disallowed_client"
)

// ComponentNotFound means resolution yielded zero candidate clients.
type ComponentNotFound struct {
	Kind   string
	Name   string
	Reason NotFoundReason
}

func (e *ComponentNotFound) Error() string {
	switch e.Reason {
	case ReasonFiltered:
		return fmt.Sprintf("%s %q filtered out by agent policy", e.Kind, e.Name)
	case ReasonDisallowedClient:
		return fmt.Sprintf("%s %q not available on the requested client", e.Kind, e.Name)
	default:
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
}

// IsComponentNotFound reports whether err is a *ComponentNotFound.
func IsComponentNotFound(err error) bool {
	var e *ComponentNotFound
	return errors.As(err, &e)
}

// AmbiguousComponent means resolution yielded more than one candidate client
// without a preferred_client to disambiguate.
type AmbiguousComponent struct {
	Kind       string
	Name       string
	Candidates []string
}

func (e *AmbiguousComponent) Error() string {
	return fmt.Sprintf("%s %q is provided by multiple clients %v; specify a preferred client", e.Kind, e.Name, e.Candidates)
}

// IsAmbiguousComponent reports whether err is an *AmbiguousComponent.
func IsAmbiguousComponent(err error) bool {
	var e *AmbiguousComponent
	return errors.As(err, &e)
}

// ClientUnavailable means the named client has no live session.
type ClientUnavailable struct {
	ClientID string
}

func (e *ClientUnavailable) Error() string {
	return fmt.Sprintf("client %q is not available", e.ClientID)
}

// IsClientUnavailable reports whether err is a *ClientUnavailable.
func IsClientUnavailable(err error) bool {
	var e *ClientUnavailable
	return errors.As(err, &e)
}

// ClientInitFailed is a non-fatal failure during host startup: the client is
// logged and skipped, initialization continues for the rest of the fleet.
type ClientInitFailed struct {
	ClientID string
	Cause    error
}

func (e *ClientInitFailed) Error() string {
	return fmt.Sprintf("client %q failed to initialize: %v", e.ClientID, e.Cause)
}

func (e *ClientInitFailed) Unwrap() error { return e.Cause }

// LLMError wraps a provider/transport failure from the LLM client.
type LLMError struct {
	Cause error
}

func (e *LLMError) Error() string { return fmt.Sprintf("llm error: %v", e.Cause) }
func (e *LLMError) Unwrap() error { return e.Cause }

// ToolExecutionError wraps a remote tool failure. In the agent loop this is
// turned into a structured tool-result message for the LLM, not raised.
type ToolExecutionError struct {
	ToolName string
	Cause    error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q execution failed: %v", e.ToolName, e.Cause)
}
func (e *ToolExecutionError) Unwrap() error { return e.Cause }

// ConfigValidationError is raised during component/project load; fatal for
// that load.
type ConfigValidationError struct {
	Path    string
	Field   string
	Message string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", e.Path, e.Field, e.Message)
}

// WorkflowStepFailed aborts a simple workflow at the named step.
type WorkflowStepFailed struct {
	Workflow  string
	StepIndex int
	Cause     error
}

func (e *WorkflowStepFailed) Error() string {
	return fmt.Sprintf("workflow %q failed at step %d: %v", e.Workflow, e.StepIndex, e.Cause)
}
func (e *WorkflowStepFailed) Unwrap() error { return e.Cause }

// CustomWorkflowLoadError is raised before a custom workflow is invoked:
// its class was never registered, or its module path fails the path-
// traversal guard.
type CustomWorkflowLoadError struct {
	ModulePath string
	ClassName  string
	Cause      error
}

func (e *CustomWorkflowLoadError) Error() string {
	return fmt.Sprintf("custom workflow %q (module %q) failed to load: %v", e.ClassName, e.ModulePath, e.Cause)
}
func (e *CustomWorkflowLoadError) Unwrap() error { return e.Cause }

// DisallowedClient means a caller-preferred client was outside the agent's
// permitted candidate set.
type DisallowedClient struct {
	ClientID string
	Kind     string
	Name     string
}

func (e *DisallowedClient) Error() string {
	return fmt.Sprintf("client %q is not permitted to serve %s %q for this agent", e.ClientID, e.Kind, e.Name)
}
