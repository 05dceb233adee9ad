package errors

import (
	"fmt"
	"io"
)

// EngineError is the interface implemented by all ecmacore errors.
type EngineError interface {
	error
	Kind() string // e.g., "Invariant", "Lifecycle", "Resource", "Config", "Runtime"
	// Message returns the specific error message without the kind prefix.
	Message() string
	Unwrap() error
}

// --- Concrete Error Types ---

// InvariantError reports a programming error: a corrupted identity tag, an
// unsorted built-in table, a violated instantiate-once invariant. It is
// raised with panic, except where initialization can still refuse to start.
type InvariantError struct {
	Msg   string
	Cause error
}

func (e *InvariantError) Error() string   { return "Invariant violation: " + e.Msg }
func (e *InvariantError) Kind() string    { return "Invariant" }
func (e *InvariantError) Message() string { return e.Msg }
func (e *InvariantError) Unwrap() error   { return e.Cause }
func (e *InvariantError) CausedBy(cause error) *InvariantError {
	e.Cause = cause
	return e
}

// Invariantf builds an InvariantError from a format string.
func Invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// LifecycleError reports misuse of built-in init/finalize bookends, or a
// singleton that is still referenced when it is finalized.
type LifecycleError struct {
	Builtin string
	Msg     string
	Cause   error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("Lifecycle error for %s: %s", e.Builtin, e.Msg)
}
func (e *LifecycleError) Kind() string    { return "Lifecycle" }
func (e *LifecycleError) Message() string { return e.Msg }
func (e *LifecycleError) Unwrap() error   { return e.Cause }
func (e *LifecycleError) CausedBy(cause error) *LifecycleError {
	e.Cause = cause
	return e
}

// ResourceError reports allocation failure. Inside the engine it is turned
// into a thrown out-of-memory exception rather than surfacing to the host.
type ResourceError struct {
	Msg   string
	Cause error
}

func (e *ResourceError) Error() string   { return "Resource exhausted: " + e.Msg }
func (e *ResourceError) Kind() string    { return "Resource" }
func (e *ResourceError) Message() string { return e.Msg }
func (e *ResourceError) Unwrap() error   { return e.Cause }

// ConfigError reports an invalid configuration file or override.
type ConfigError struct {
	Path  string
	Msg   string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "Config error: " + e.Msg
	}
	return fmt.Sprintf("Config error in %s: %s", e.Path, e.Msg)
}
func (e *ConfigError) Kind() string    { return "Config" }
func (e *ConfigError) Message() string { return e.Msg }
func (e *ConfigError) Unwrap() error   { return e.Cause }
func (e *ConfigError) CausedBy(cause error) *ConfigError {
	e.Cause = cause
	return e
}

// RuntimeError is an uncaught script exception reported to Go code. Name
// and Msg are copied out of the exception object, which has been released.
type RuntimeError struct {
	Name string
	Msg  string
}

func (e *RuntimeError) Error() string {
	if e.Msg == "" {
		return "Uncaught " + e.Name
	}
	return fmt.Sprintf("Uncaught %s: %s", e.Name, e.Msg)
}
func (e *RuntimeError) Kind() string    { return "Runtime" }
func (e *RuntimeError) Message() string { return e.Name + ": " + e.Msg }
func (e *RuntimeError) Unwrap() error   { return nil }

// --- Error Reporting ---

// DisplayErrors prints a list of engine errors to w, one per line, followed
// by their causes.
func DisplayErrors(w io.Writer, errs []EngineError) {
	for _, err := range errs {
		fmt.Fprintf(w, "%s Error: %s\n", err.Kind(), err.Message())
		for cause := err.Unwrap(); cause != nil; {
			fmt.Fprintf(w, "  caused by: %s\n", cause)
			next, ok := cause.(interface{ Unwrap() error })
			if !ok {
				break
			}
			cause = next.Unwrap()
		}
	}
}
