// Package gen implements multi-tier text generation: an ordered list of
// backends is tried in strict order with per-backend timeouts, retry
// budgets, and fallback, and the winning output is cleaned and validated
// against expected-content constraints before anyone sees it.
package gen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/naoko-ai/naoko/internal/errors"
)

// Request describes one generation call.
type Request struct {
	// System is optional framing for the model. CLI tiers fold it into the
	// prompt; the hosted tier sends it as a separate message.
	System string
	// Prompt is the user prompt.
	Prompt string
	// Marker, when set, names an identifier the cleaned output must define.
	// Output that fails this check is discarded, never returned.
	Marker string
}

// Backend is one candidate generation provider in the fallback chain.
// Adding or removing a tier is a list edit in the caller.
type Backend interface {
	// Name identifies the backend in logs and error entries.
	Name() string
	// Attempts is the retry budget for this backend. CLI tiers get one
	// attempt (the keep-waiting prompt handles their retries).
	Attempts() int
	// Backoff is the pause between attempts.
	Backoff() time.Duration
	// Timeout bounds a single call.
	Timeout() time.Duration
	// Available reports whether the backend can run at all. An unavailable
	// backend is skipped without consuming attempts.
	Available() bool
	// Generate performs one call. The context carries the per-call timeout.
	Generate(ctx context.Context, req Request) (string, error)
}

// CLIBackend runs a local agent CLI as a subprocess and captures stdout.
type CLIBackend struct {
	name    string
	command string
	args    []string
	timeout time.Duration
	// promptStdin feeds the prompt on stdin instead of as an argument.
	promptStdin bool
}

// NewGeminiCLI creates the Gemini CLI backend. model selects the quality
// tier ("pro" vs "flash" resolve to concrete model names in config).
func NewGeminiCLI(command, model string, timeout time.Duration) *CLIBackend {
	return &CLIBackend{
		name:    "gemini-cli",
		command: command,
		args:    []string{"-m", model, "-p"},
		timeout: timeout,
	}
}

// NewCodexCLI creates the Codex CLI backend in non-interactive exec mode.
func NewCodexCLI(command string, timeout time.Duration) *CLIBackend {
	return &CLIBackend{
		name:        "codex-cli",
		command:     command,
		args:        []string{"exec", "--full-auto"},
		timeout:     timeout,
		promptStdin: true,
	}
}

func (c *CLIBackend) Name() string           { return c.name }
func (c *CLIBackend) Attempts() int          { return 1 }
func (c *CLIBackend) Backoff() time.Duration { return 0 }
func (c *CLIBackend) Timeout() time.Duration { return c.timeout }
func (c *CLIBackend) Available() bool        { return c.command != "" }

func (c *CLIBackend) Generate(ctx context.Context, req Request) (string, error) {
	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}

	args := append([]string{}, c.args...)
	var stdin *strings.Reader
	if c.promptStdin {
		stdin = strings.NewReader(prompt)
	} else {
		args = append(args, prompt)
	}

	cmd := exec.CommandContext(ctx, c.command, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.NewBackendError(c.name, fmt.Sprintf("exited with error: %s", msg), err)
	}
	return out.String(), nil
}
