// Package agents implements the five pipeline stage agents. Each agent
// gathers context from the retrieval layer, builds a prompt, invokes the
// model, and parses the result into a typed record, substituting a
// deterministic fallback when its external dependencies fail.
package agents

import "fmt"

// RetrievalError wraps a failure in the retrieval layer. Stages catch it
// locally and degrade to empty context.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// InvokeError wraps a model invocation failure: network, quota, or
// timeout problems at the model boundary.
type InvokeError struct {
	Stage string
	Err   error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("%s: invoke model: %v", e.Stage, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

// ParseError indicates the model returned text that does not match the
// stage's expected structured shape. It is returned, never panicked, so
// each stage decides between fallback and propagation explicitly.
type ParseError struct {
	Stage  string
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse response: %s", e.Stage, e.Reason)
}

// SetupError indicates agent or pipeline construction failed. No partial
// pipeline runs after a SetupError.
type SetupError struct {
	Component string
	Err       error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %v", e.Component, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }
