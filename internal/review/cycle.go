package review

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/naoko-ai/naoko/internal/console"
	"github.com/naoko-ai/naoko/internal/errors"
	"github.com/naoko-ai/naoko/internal/logging"
	"github.com/naoko-ai/naoko/internal/prompt"
)

// Reviewer produces a review artifact for the current patch against the
// requirements and returns its path.
type Reviewer interface {
	Review(ctx context.Context, patchPath, reqPath string, round int, targetPath string) (string, error)
}

// Refiner consumes a review artifact, attempts a fix, and reports the
// round's judgement together with the judgement artifact path.
type Refiner interface {
	Refine(ctx context.Context, reviewPath string) (string, Status, error)
}

// Cycle runs review→refine rounds until a terminal judgement or the round
// budget runs out.
type Cycle struct {
	reviewer Reviewer
	refiner  Refiner
	asker    prompt.Asker
	reporter console.Reporter
	logger   *logging.Logger

	// targetPath is the optional entry point handed to the reviewer for
	// context. Empty when no entry point was given.
	targetPath string

	questionTimeout time.Duration
	holdTimeout     time.Duration
}

// Result is the outcome of a full cycle: the last judgement seen and how
// many rounds ran.
type Result struct {
	Status Status
	Rounds int
}

// Resolved reports whether the cycle ended in success.
func (r Result) Resolved() bool {
	return r.Status == StatusSuitable
}

// NewCycle wires a review cycle. Nil reporter and logger fall back to
// no-op implementations.
func NewCycle(reviewer Reviewer, refiner Refiner, asker prompt.Asker, reporter console.Reporter, logger *logging.Logger, targetPath string, questionTimeout, holdTimeout time.Duration) *Cycle {
	if reporter == nil {
		reporter = console.Nop{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Cycle{
		reviewer:        reviewer,
		refiner:         refiner,
		asker:           asker,
		reporter:        reporter,
		logger:          logger,
		targetPath:      targetPath,
		questionTimeout: questionTimeout,
		holdTimeout:     holdTimeout,
	}
}

// Run executes up to maxRounds rounds against the given requirements and
// patch artifacts. SUITABLE and FAILED stop the loop; CHANGES_NEEDED and
// UNNECESSARY consume a round and continue; HOLD pauses for human
// confirmation and aborts the whole run when declined. Exhausting the budget
// without a terminal judgement is reported as an unresolved end, carried in
// the Result rather than an error.
func (c *Cycle) Run(ctx context.Context, reqPath, patchPath string, maxRounds int) (Result, error) {
	var last Status

	for round := 1; round <= maxRounds; round++ {
		c.reporter.Phase(fmt.Sprintf("Review round %d of %d", round, maxRounds))
		c.logger.Info("review round started", "round", round)

		reviewPath, err := c.reviewer.Review(ctx, patchPath, reqPath, round, c.targetPath)
		if err != nil {
			return Result{Status: StatusFailed, Rounds: round}, errors.NewPhaseError("review", fmt.Sprintf("round %d review failed", round), err)
		}

		if err := c.collectAnswers(reviewPath); err != nil {
			c.logger.Warn("failed to append answers to review", "path", reviewPath, "error", err)
		}

		judgementPath, status, err := c.refiner.Refine(ctx, reviewPath)
		if err != nil {
			return Result{Status: StatusFailed, Rounds: round}, errors.NewPhaseError("review", fmt.Sprintf("round %d refine failed", round), err)
		}
		last = status
		c.logger.Info("round judgement",
			"round", round, "status", string(status), "judgement", judgementPath)

		switch status {
		case StatusSuitable:
			c.reporter.Success("Review passed after %d round(s)", round)
			return Result{Status: status, Rounds: round}, nil
		case StatusFailed:
			c.reporter.Error("Review round %d failed terminally", round)
			return Result{Status: status, Rounds: round}, nil
		case StatusHold:
			if !c.asker.Confirm("The refiner requests manual review before continuing. Continue the run?", true, c.holdTimeout) {
				c.reporter.Warn("Run aborted at operator request")
				return Result{Status: status, Rounds: round}, errors.ErrRunAborted
			}
			c.reporter.Info("Continuing after hold")
		case StatusUnnecessary:
			c.reporter.Info("Round %d judged unnecessary, continuing", round)
		case StatusChangesNeeded:
			c.reporter.Info("Changes still needed after round %d", round)
		}
	}

	c.reporter.Warn("Review ended without resolution after %d round(s)", maxRounds)
	c.logger.Warn("review budget exhausted", "rounds", maxRounds, "last_status", string(last))
	return Result{Status: last, Rounds: maxRounds}, nil
}

// collectAnswers surfaces reviewer questions to the operator and appends
// the answers to the review artifact so the refiner sees them.
func (c *Cycle) collectAnswers(reviewPath string) error {
	content, err := os.ReadFile(reviewPath)
	if err != nil {
		return err
	}
	questions := ExtractQuestions(string(content))
	if len(questions) == 0 {
		return nil
	}

	answered := make([]AnsweredQuestion, 0, len(questions))
	for _, q := range questions {
		answer := c.asker.Ask(q.Text, q.Example, c.questionTimeout)
		answered = append(answered, AnsweredQuestion{Question: q, Answer: answer})
	}

	f, err := os.OpenFile(reviewPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(FormatAnswers(answered))
	return err
}
