// Package gitops is the version-control collaborator: staging and committing
// applied changes. Commits are best-effort by contract; a failure here is
// reported to the caller for logging, never escalated into a run failure.
package gitops

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/naoko-ai/naoko/internal/console"
	"github.com/naoko-ai/naoko/internal/logging"
)

// Committer records applied changes in version control.
type Committer interface {
	Commit(message string, dryRun bool) error
}

// Repo commits through go-git against a working tree root.
type Repo struct {
	rootDir  string
	reporter console.Reporter
	logger   *logging.Logger
}

// NewRepo creates a Committer for the given working tree root.
func NewRepo(rootDir string, reporter console.Reporter, logger *logging.Logger) *Repo {
	if reporter == nil {
		reporter = console.Nop{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Repo{rootDir: rootDir, reporter: reporter, logger: logger}
}

// Commit stages everything and commits. dryRun reports what would happen
// without touching the repository.
func (r *Repo) Commit(message string, dryRun bool) error {
	if dryRun {
		r.reporter.Info("Dry-run: would commit with message %q", message)
		return nil
	}

	repo, err := git.PlainOpen(r.rootDir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}
	if status.IsClean() {
		r.logger.Info("nothing to commit")
		return nil
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "naoko",
			Email: "naoko@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.reporter.Info("Committed %s", hash.String()[:8])
	r.logger.Info("commit created", "hash", hash.String(), "message", message)
	return nil
}
