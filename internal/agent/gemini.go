package agent

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/naoko-ai/naoko/internal/console"
	"github.com/naoko-ai/naoko/internal/docparse"
	"github.com/naoko-ai/naoko/internal/errors"
	"github.com/naoko-ai/naoko/internal/gen"
	"github.com/naoko-ai/naoko/internal/logging"
	"github.com/naoko-ai/naoko/internal/navigator"
	"github.com/naoko-ai/naoko/internal/util"
)

// maxStyleContext caps how much related source is folded into the style
// analysis prompt.
const maxStyleContext = 64 * 1024

// Generator is the slice of the generation pipeline the agents need.
type Generator interface {
	Generate(ctx context.Context, req gen.Request) string
}

// Gemini is the planner/reviewer agent.
type Gemini struct {
	pipeline     Generator
	parser       docparse.Parser
	nav          *navigator.Navigator
	artifactsDir string
	reporter     console.Reporter
	logger       *logging.Logger
}

// NewGemini wires the planner/reviewer over a generation pipeline.
func NewGemini(pipeline Generator, parser docparse.Parser, nav *navigator.Navigator, artifactsDir string, reporter console.Reporter, logger *logging.Logger) *Gemini {
	if reporter == nil {
		reporter = console.Nop{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Gemini{
		pipeline:     pipeline,
		parser:       parser,
		nav:          nav,
		artifactsDir: artifactsDir,
		reporter:     reporter,
		logger:       logger,
	}
}

// Plan turns a planning document into a requirements request artifact and
// returns its path.
func (g *Gemini) Plan(ctx context.Context, docPath string) (string, error) {
	text, err := g.parser.Parse(docPath)
	if err != nil {
		return "", errors.NewPhaseError("planning", "failed to read planning document", err)
	}
	if text == "" {
		g.reporter.Warn("Document yielded no extractable text, planning from the file name alone")
		g.logger.Warn("document text empty", "path", docPath)
	}

	out := g.pipeline.Generate(ctx, gen.Request{
		System: planSystem,
		Prompt: fmt.Sprintf(planTemplate, docPath, text),
	})
	if out == "" {
		return "", errors.NewPhaseError("planning", "no backend produced a requirements request", errors.ErrGenerationExhausted)
	}

	path, err := writeArtifact(g.artifactsDir, RequirementsFile, out)
	if err != nil {
		return "", errors.NewPhaseError("planning", "failed to persist requirements request", err)
	}
	g.logger.Info("requirements request written", "path", path, "bytes", len(out))
	return path, nil
}

// Analyze produces a style guide from the entry point and its related files.
// Style analysis is optional context: an empty entry point, no discoverable
// sources, or generation failure all yield "" without an error.
func (g *Gemini) Analyze(ctx context.Context, entryPoint string) (string, error) {
	if entryPoint == "" || g.nav == nil {
		return "", nil
	}

	related := g.nav.FindRelated(entryPoint)
	if len(related) == 0 {
		g.reporter.Warn("No sources found around %s, skipping style analysis", entryPoint)
		return "", nil
	}

	var sb strings.Builder
	for _, path := range related {
		data, err := os.ReadFile(path)
		if err != nil {
			g.logger.Warn("skipping unreadable related file", "path", path, "error", err)
			continue
		}
		if sb.Len()+len(data) > maxStyleContext {
			g.logger.Debug("style context budget reached", "stopped_at", path)
			break
		}
		fmt.Fprintf(&sb, "// file: %s\n%s\n\n", path, data)
	}

	out := g.pipeline.Generate(ctx, gen.Request{
		System: styleSystem,
		Prompt: sb.String(),
	})
	if out == "" {
		g.reporter.Warn("Style analysis produced nothing, continuing without it")
		return "", nil
	}

	path, err := writeArtifact(g.artifactsDir, StyleGuideFile, out)
	if err != nil {
		return "", err
	}
	g.logger.Info("style guide written", "path", path, "sources", len(related))
	return path, nil
}

// Review reviews the patch against the requirements for one round and
// returns the review artifact path.
func (g *Gemini) Review(ctx context.Context, patchPath, reqPath string, round int, targetPath string) (string, error) {
	requirements, err := os.ReadFile(reqPath)
	if err != nil {
		return "", fmt.Errorf("failed to read requirements: %w", err)
	}
	diff, err := os.ReadFile(patchPath)
	if err != nil {
		return "", fmt.Errorf("failed to read patch: %w", err)
	}

	target := ""
	if targetPath != "" {
		if data, err := os.ReadFile(targetPath); err == nil {
			target = fmt.Sprintf("\nEntry point %s after the patch:\n%s\n", targetPath, util.TruncateString(string(data), maxStyleContext))
		}
	}

	out := g.pipeline.Generate(ctx, gen.Request{
		System: reviewSystem,
		Prompt: fmt.Sprintf(reviewTemplate, round, requirements, diff, target),
	})
	if out == "" {
		return "", errors.NewPhaseError("review", "no backend produced a review", errors.ErrGenerationExhausted)
	}

	path, err := writeArtifact(g.artifactsDir, ReviewFile, out)
	if err != nil {
		return "", err
	}
	g.logger.Info("review written", "path", path, "round", round)
	return path, nil
}
