// Package errors provides centralized error definitions for the naoko
// codebase: sentinel errors for well-known failure conditions, domain error
// types that wrap causes with context, and classification helpers used by
// the orchestrator to decide whether a failure aborts the run.
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions so callers can import only this
// package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Session-related sentinel errors
var (
	// ErrSessionNotFound indicates that a session could not be found.
	// Resuming with an unknown identifier is fatal: a reused session id
	// must never silently start a fresh run.
	ErrSessionNotFound = New("session not found")
	// ErrSessionCorrupted indicates that a persisted progress record
	// could not be parsed.
	ErrSessionCorrupted = New("session data corrupted")
)

// Artifact and patch sentinel errors
var (
	// ErrArtifactMissing indicates a phase artifact does not exist on disk.
	ErrArtifactMissing = New("artifact missing")
	// ErrArtifactEmpty indicates a phase artifact exists but has no content.
	ErrArtifactEmpty = New("artifact empty")
	// ErrPatchRejected indicates the patch failed the authoritative
	// check-apply against the working tree.
	ErrPatchRejected = New("patch rejected by check-apply")
)

// Generation sentinel errors
var (
	// ErrNoCredentials indicates a hosted backend has no usable credentials.
	// The backend is skipped without consuming any retry attempts.
	ErrNoCredentials = New("no credentials available")
	// ErrMarkerMissing indicates generated output did not define the
	// expected marker and was discarded.
	ErrMarkerMissing = New("expected marker missing from output")
	// ErrGenerationExhausted indicates every backend tier failed, including
	// the relaxation pass.
	ErrGenerationExhausted = New("all generation backends exhausted")
	// ErrBackendAbandoned indicates the user declined to keep waiting for a
	// timed-out backend call.
	ErrBackendAbandoned = New("backend abandoned after timeout")
)

// Run sentinel errors
var (
	// ErrRunAborted indicates the user declined a HOLD confirmation and the
	// whole run stops, not just the review loop.
	ErrRunAborted = New("run aborted by user")
	// ErrDocumentNotFound indicates the planning document does not exist.
	ErrDocumentNotFound = New("document not found")
)

// PhaseError wraps a failure with the phase it occurred in. The orchestrator
// records the phase name as last_failed_phase in session state so a human
// can diagnose and resume.
type PhaseError struct {
	Phase string
	Msg   string
	Err   error
}

// NewPhaseError creates a PhaseError for the given phase.
func NewPhaseError(phase, msg string, err error) *PhaseError {
	return &PhaseError{Phase: phase, Msg: msg, Err: err}
}

func (e *PhaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Phase, e.Msg)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// BackendError wraps a failure from a single generation backend tier.
type BackendError struct {
	Backend string
	Msg     string
	Err     error
}

// NewBackendError creates a BackendError for the named backend.
func NewBackendError(backend, msg string, err error) *BackendError {
	return &BackendError{Backend: backend, Msg: msg, Err: err}
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Msg, e.Err)
	}
	return fmt.Sprintf("backend %s: %s", e.Backend, e.Msg)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsFatal reports whether an error must terminate the run rather than fall
// through to a recovery path. Generation-tier errors are recovered locally
// by the pipeline and are never fatal on their own.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case Is(err, ErrRunAborted),
		Is(err, ErrSessionNotFound),
		Is(err, ErrSessionCorrupted),
		Is(err, ErrDocumentNotFound):
		return true
	}
	return false
}

// IsRecoverable reports whether the generation pipeline may continue with
// the next backend tier after this error.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	var be *BackendError
	return Is(err, ErrNoCredentials) ||
		Is(err, ErrMarkerMissing) ||
		Is(err, ErrBackendAbandoned) ||
		As(err, &be)
}
