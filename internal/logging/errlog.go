package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrorLog is an append-only record of generation backend failures, kept
// separate from the debug log so a post-mortem can read it without sifting
// through routine entries. Each entry is a single line:
//
//	2026-08-26T14:03:11Z backend=gemini-cli reason=expected marker missing
//
// Writes are best-effort: a failure to record never disturbs the run.
type ErrorLog struct {
	path string
	mu   sync.Mutex
}

// NewErrorLog creates an ErrorLog writing to the given file path. The parent
// directory is created on first append, not here, so constructing one in
// dry-run mode touches nothing.
func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path}
}

// Append records a single backend failure.
func (e *ErrorLog) Append(backend, reason string) error {
	if e == nil || e.path == "" {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("failed to create error log directory: %w", err)
	}

	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s backend=%s reason=%s\n",
		time.Now().UTC().Format(time.RFC3339), backend, reason)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append error log entry: %w", err)
	}
	return nil
}

// Path returns the error log file path.
func (e *ErrorLog) Path() string { return e.path }
