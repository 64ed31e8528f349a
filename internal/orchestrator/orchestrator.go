// Package orchestrator sequences a run's phases: planning, optional style
// analysis, implementation, the review cycle, and completion. Phases are
// strictly sequential, every transition is persisted before the next phase
// starts, and every abort records which phase failed.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/naoko-ai/naoko/internal/console"
	"github.com/naoko-ai/naoko/internal/errors"
	"github.com/naoko-ai/naoko/internal/logging"
	"github.com/naoko-ai/naoko/internal/review"
	"github.com/naoko-ai/naoko/internal/session"
)

// Planner turns a planning document into a requirements request artifact.
type Planner interface {
	Plan(ctx context.Context, docPath string) (string, error)
}

// StyleAnalyzer produces an optional style guide from an entry point.
type StyleAnalyzer interface {
	Analyze(ctx context.Context, entryPoint string) (string, error)
}

// Implementer produces and applies a patch for the requirements.
type Implementer interface {
	Implement(ctx context.Context, reqPath, styleGuidePath, targetFile string) (string, bool, error)
}

// ReviewRunner drives the review→refine loop.
type ReviewRunner interface {
	Run(ctx context.Context, reqPath, patchPath string, maxRounds int) (review.Result, error)
}

// Committer records the applied changes in version control.
type Committer interface {
	Commit(message string, dryRun bool) error
}

// Options are the per-run knobs from the command line.
type Options struct {
	Document        string
	EntryPoint      string
	MaxRounds       int
	DryRun          bool
	ExistingProject bool
}

// Orchestrator owns the phase sequence for one run.
type Orchestrator struct {
	store       *session.Store
	planner     Planner
	analyzer    StyleAnalyzer
	implementer Implementer
	cycle       ReviewRunner
	committer   Committer
	reporter    console.Reporter
	logger      *logging.Logger
}

// New wires an orchestrator. Nil reporter and logger fall back to no-ops;
// analyzer and committer may be nil when the run carries no entry point or
// no repository.
func New(store *session.Store, planner Planner, analyzer StyleAnalyzer, implementer Implementer, cycle ReviewRunner, committer Committer, reporter console.Reporter, logger *logging.Logger) *Orchestrator {
	if reporter == nil {
		reporter = console.Nop{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Orchestrator{
		store:       store,
		planner:     planner,
		analyzer:    analyzer,
		implementer: implementer,
		cycle:       cycle,
		committer:   committer,
		reporter:    reporter,
		logger:      logger,
	}
}

// Run executes the full phase sequence against the given session state. A
// resumed state skips phases whose artifacts are still reusable.
func (o *Orchestrator) Run(ctx context.Context, state *session.State, opts Options) error {
	if _, err := os.Stat(opts.Document); err != nil {
		// Nothing has run yet; abort before planning so no artifacts appear.
		return o.fail(state, session.PhasePlanning,
			fmt.Errorf("%w: planning document %s", errors.ErrDocumentNotFound, opts.Document))
	}

	state.Set(session.KeyDocument, opts.Document)
	o.persist(state, "run started for "+opts.Document)

	reqPath, err := o.runPlanning(ctx, state, opts)
	if err != nil {
		return err
	}

	stylePath := o.runStyleAnalysis(ctx, state, opts)

	patchPath, err := o.runImplementation(ctx, state, opts, reqPath, stylePath)
	if err != nil {
		return err
	}

	if err := o.runReview(ctx, state, opts, reqPath, patchPath); err != nil {
		return err
	}

	return o.runCompletion(state, opts)
}

func (o *Orchestrator) runPlanning(ctx context.Context, state *session.State, opts Options) (string, error) {
	if path, ok := state.Reusable(session.PhasePlanning); ok {
		o.reporter.Info("Reusing requirements from %s", path)
		o.logger.Info("planning phase reused", "artifact", path)
		return path, nil
	}

	o.reporter.Phase("Phase 1: Planning")
	path, err := o.planner.Plan(ctx, opts.Document)
	if err != nil {
		return "", o.fail(state, session.PhasePlanning, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", o.fail(state, session.PhasePlanning,
			fmt.Errorf("%w: %s", errors.ErrArtifactMissing, path))
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", o.fail(state, session.PhasePlanning,
			fmt.Errorf("%w: %s", errors.ErrArtifactEmpty, path))
	}

	o.completePhase(state, session.PhasePlanning, path)
	return path, nil
}

// runStyleAnalysis is best-effort: a failure degrades to running without a
// style guide, it never aborts the run.
func (o *Orchestrator) runStyleAnalysis(ctx context.Context, state *session.State, opts Options) string {
	if opts.EntryPoint == "" || o.analyzer == nil {
		return ""
	}
	if path, ok := state.Reusable(session.PhaseStyleAnalysis); ok {
		o.reporter.Info("Reusing style guide from %s", path)
		return path
	}

	o.reporter.Phase("Style analysis")
	path, err := o.analyzer.Analyze(ctx, opts.EntryPoint)
	if err != nil {
		o.reporter.Warn("Style analysis failed, continuing without it: %v", err)
		o.logger.Warn("style analysis failed", "error", err)
		return ""
	}
	if path != "" {
		o.completePhase(state, session.PhaseStyleAnalysis, path)
	}
	return path
}

func (o *Orchestrator) runImplementation(ctx context.Context, state *session.State, opts Options, reqPath, stylePath string) (string, error) {
	if path, ok := state.Reusable(session.PhaseImplementation); ok {
		o.reporter.Info("Reusing applied patch from %s", path)
		o.logger.Info("implementation phase reused", "artifact", path)
		return path, nil
	}

	o.reporter.Phase("Phase 2: Implementation")
	path, applied, err := o.implementer.Implement(ctx, reqPath, stylePath, opts.EntryPoint)
	if err != nil {
		return "", o.fail(state, session.PhaseImplementation, err)
	}
	if !applied {
		return "", o.fail(state, session.PhaseImplementation,
			fmt.Errorf("%w: %s", errors.ErrPatchRejected, path))
	}

	o.completePhase(state, session.PhaseImplementation, path)
	return path, nil
}

func (o *Orchestrator) runReview(ctx context.Context, state *session.State, opts Options, reqPath, patchPath string) error {
	if _, ok := state.Reusable(session.PhaseReview); ok {
		o.reporter.Info("Review already passed on a previous run")
		return nil
	}

	o.reporter.Phase("Phase 3: Review")
	result, err := o.cycle.Run(ctx, reqPath, patchPath, opts.MaxRounds)
	if err != nil {
		return o.fail(state, session.PhaseReview, err)
	}
	if !result.Resolved() {
		return o.fail(state, session.PhaseReview,
			fmt.Errorf("review ended without resolution: %s after %d round(s)", result.Status, result.Rounds))
	}

	// The review phase leaves the reviewed patch as its artifact.
	o.completePhase(state, session.PhaseReview, patchPath)
	return nil
}

func (o *Orchestrator) runCompletion(state *session.State, opts Options) error {
	o.reporter.Phase("Phase 4: Completion")

	if opts.ExistingProject || opts.EntryPoint != "" {
		o.reporter.Info("Changes applied but not committed (existing project)")
		o.logger.Info("commit skipped", "reason", "existing project")
	} else if o.committer != nil {
		message := fmt.Sprintf("Apply reviewed changes for %s", filepath.Base(opts.Document))
		if err := o.committer.Commit(message, opts.DryRun); err != nil {
			// Best-effort by contract: the work is applied and reviewed,
			// a commit failure must not undo a successful run.
			o.reporter.Warn("Commit failed: %v", err)
			o.logger.Warn("commit failed", "error", err)
		}
	}

	state.MarkComplete(session.PhaseCompletion)
	state.ClearLastFailedPhase()
	o.persist(state, "run completed")
	o.reporter.Success("Run complete")
	return nil
}

// completePhase records a phase's artifact and completion flag and persists
// the state immediately, so a crash afterwards still resumes past it.
func (o *Orchestrator) completePhase(state *session.State, phase, artifact string) {
	state.SetArtifact(phase, artifact)
	state.MarkComplete(phase)
	state.ClearLastFailedPhase()
	o.persist(state, "phase "+phase+" completed")
}

// fail records the failing phase, persists, and reports a phase-labeled
// error. The returned error is the cause, unmodified, so callers can match
// sentinels with errors.Is.
func (o *Orchestrator) fail(state *session.State, phase string, err error) error {
	state.SetLastFailedPhase(phase)
	o.persist(state, "phase "+phase+" failed: "+err.Error())
	o.reporter.Error("[%s] %v", phase, err)
	o.logger.Error("phase failed", "phase", phase, "error", err)
	return err
}

func (o *Orchestrator) persist(state *session.State, event string) {
	if err := o.store.Save(state); err != nil {
		o.logger.Error("failed to persist session state", "error", err)
	}
	if err := o.store.AppendLog(state.ID(), event); err != nil {
		o.logger.Warn("failed to append run log", "error", err)
	}
}
