package agent

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/naoko-ai/naoko/internal/console"
	"github.com/naoko-ai/naoko/internal/errors"
	"github.com/naoko-ai/naoko/internal/gen"
	"github.com/naoko-ai/naoko/internal/logging"
	"github.com/naoko-ai/naoko/internal/review"
)

// Applier is the slice of the patch gate the implementer needs.
type Applier interface {
	Apply(ctx context.Context, path string, dryRun bool) bool
}

// Codex is the implementer/refiner agent. Every patch it produces reaches
// the working tree only through the patch gate.
type Codex struct {
	pipeline     Generator
	gate         Applier
	artifactsDir string
	dryRun       bool
	reporter     console.Reporter
	logger       *logging.Logger
}

// NewCodex wires the implementer over a generation pipeline and patch gate.
func NewCodex(pipeline Generator, gate Applier, artifactsDir string, dryRun bool, reporter console.Reporter, logger *logging.Logger) *Codex {
	if reporter == nil {
		reporter = console.Nop{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Codex{
		pipeline:     pipeline,
		gate:         gate,
		artifactsDir: artifactsDir,
		dryRun:       dryRun,
		reporter:     reporter,
		logger:       logger,
	}
}

// Implement generates a unified diff for the requirements, persists it, and
// applies it through the gate. The returned bool reports whether the patch
// actually applied; a generated-but-rejected patch is not an error here, the
// caller decides how to proceed.
func (c *Codex) Implement(ctx context.Context, reqPath, styleGuidePath, targetFile string) (string, bool, error) {
	requirements, err := os.ReadFile(reqPath)
	if err != nil {
		return "", false, errors.NewPhaseError("implementation", "failed to read requirements", err)
	}
	if strings.TrimSpace(string(requirements)) == "" {
		return "", false, errors.NewPhaseError("implementation", "requirements request is empty", errors.ErrArtifactEmpty)
	}

	style := ""
	if styleGuidePath != "" {
		if data, err := os.ReadFile(styleGuidePath); err == nil {
			style = "\nFollow this style guide:\n" + string(data)
		}
	}
	target := ""
	if targetFile != "" {
		if data, err := os.ReadFile(targetFile); err == nil {
			target = fmt.Sprintf("\nCurrent contents of %s:\n%s", targetFile, data)
		}
	}

	out := c.pipeline.Generate(ctx, gen.Request{
		System: implementSystem,
		Prompt: fmt.Sprintf(implementTemplate, requirements, style, target),
	})
	if out == "" {
		return "", false, errors.NewPhaseError("implementation", "no backend produced a patch", errors.ErrGenerationExhausted)
	}

	diff := extractDiff(out)
	if diff == "" {
		// Keep whatever came back so the rejection is inspectable.
		diff = out
	}
	path, err := writeArtifact(c.artifactsDir, PatchFile, diff)
	if err != nil {
		return "", false, errors.NewPhaseError("implementation", "failed to persist patch", err)
	}

	applied := c.gate.Apply(ctx, path, c.dryRun)
	c.logger.Info("implementation patch produced", "path", path, "applied", applied)
	return path, applied, nil
}

// Refine judges a review and applies the corrective patch when the
// judgement calls for one. A corrective patch that fails to apply turns the
// round's judgement into FAILED.
func (c *Codex) Refine(ctx context.Context, reviewPath string) (string, review.Status, error) {
	content, err := os.ReadFile(reviewPath)
	if err != nil {
		return "", review.StatusFailed, fmt.Errorf("failed to read review: %w", err)
	}

	out := c.pipeline.Generate(ctx, gen.Request{
		System: refineSystem,
		Prompt: fmt.Sprintf(refineTemplate, content),
	})
	if out == "" {
		return "", review.StatusFailed, errors.NewPhaseError("review", "no backend produced a judgement", errors.ErrGenerationExhausted)
	}

	judgementPath, err := writeArtifact(c.artifactsDir, JudgementFile, out)
	if err != nil {
		return "", review.StatusFailed, err
	}

	status := review.ParseStatus(out)
	if status == review.StatusChangesNeeded {
		if diff := extractDiff(out); diff != "" {
			fixPath, err := writeArtifact(c.artifactsDir, ReviewFixFile, diff)
			if err != nil {
				return judgementPath, review.StatusFailed, err
			}
			if !c.gate.Apply(ctx, fixPath, c.dryRun) {
				c.reporter.Error("Refinement patch did not apply")
				c.logger.Error("refinement patch rejected", "path", fixPath)
				return judgementPath, review.StatusFailed, nil
			}
		}
	}

	return judgementPath, status, nil
}

// diffStartRegex locates the beginning of a unified diff inside mixed
// output.
var diffStartRegex = regexp.MustCompile(`(?m)^(diff --git |--- )`)

// extractDiff returns the unified-diff portion of generated output, or ""
// when none is recognizable.
func extractDiff(out string) string {
	loc := diffStartRegex.FindStringIndex(out)
	if loc == nil {
		return ""
	}
	candidate := strings.TrimSpace(out[loc[0]:])
	if !strings.Contains(candidate, "+++ ") || !strings.Contains(candidate, "@@") {
		return ""
	}
	if !strings.HasSuffix(candidate, "\n") {
		candidate += "\n"
	}
	return candidate
}
