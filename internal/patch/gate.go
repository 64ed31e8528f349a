// Package patch implements the single gate through which generated changes
// reach the working tree. Every application path funnels through Gate.Apply,
// which re-validates unconditionally; there is no way to mutate the tree
// with an unchecked diff.
package patch

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/naoko-ai/naoko/internal/console"
	"github.com/naoko-ai/naoko/internal/logging"
)

// Runner executes the patch system's commands in a working directory.
// Injectable so tests can exercise the gate without a real git tree.
type Runner func(ctx context.Context, dir string, args ...string) (stderr string, err error)

// GitRunner runs git with the given arguments.
func GitRunner(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return errBuf.String(), err
}

// Gate validates and applies unified-diff patches against one working tree.
type Gate struct {
	workDir  string
	runner   Runner
	reporter console.Reporter
	logger   *logging.Logger
}

// NewGate creates a Gate for the given working tree root. A nil runner
// defaults to invoking git.
func NewGate(workDir string, runner Runner, reporter console.Reporter, logger *logging.Logger) *Gate {
	if runner == nil {
		runner = GitRunner
	}
	if reporter == nil {
		reporter = console.Nop{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Gate{
		workDir:  workDir,
		runner:   runner,
		reporter: reporter,
		logger:   logger,
	}
}

// Validate checks a patch file without mutating anything. An empty or
// missing file fails immediately. A non-empty patch lacking unified-diff
// markers is warned about but still handed to the authoritative check-apply;
// the patch system has the final word, not the heuristic.
func (g *Gate) Validate(ctx context.Context, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		g.reporter.Error("Patch file not found: %s", path)
		g.logger.Error("patch file missing", "path", path, "error", err)
		return false
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		g.reporter.Error("Patch file is empty: %s", path)
		g.logger.Error("patch file empty", "path", path)
		return false
	}

	if !strings.Contains(content, "--- ") ||
		!strings.Contains(content, "+++ ") ||
		!strings.Contains(content, "@@") {
		g.reporter.Warn("Patch may not be in unified diff format: %s", path)
		g.logger.Warn("patch missing unified diff markers", "path", path)
	}

	if stderr, err := g.runner(ctx, g.workDir, "apply", "--check", path); err != nil {
		g.reporter.Error("Patch failed check-apply: %s", strings.TrimSpace(stderr))
		g.logger.Error("patch rejected by check-apply",
			"path", path, "stderr", strings.TrimSpace(stderr))
		return false
	}
	return true
}

// Apply validates and applies a patch. Validation always runs here even if
// the caller validated already. dryRun short-circuits to success after
// validation without touching the filesystem. Application is all-or-nothing:
// a failing patch leaves the working tree untouched. Failure is reported to
// the caller as false, never as a panic.
func (g *Gate) Apply(ctx context.Context, path string, dryRun bool) bool {
	if !g.Validate(ctx, path) {
		return false
	}

	if dryRun {
		g.reporter.Info("Dry-run: would apply patch %s", path)
		return true
	}

	g.logger.Info("applying patch", "path", path)
	if stderr, err := g.runner(ctx, g.workDir, "apply", path); err != nil {
		g.reporter.Error("Failed to apply patch: %s", strings.TrimSpace(stderr))
		g.logger.Error("patch apply failed",
			"path", path, "stderr", strings.TrimSpace(stderr))
		return false
	}

	g.reporter.Info("Applied patch %s", path)
	return true
}
