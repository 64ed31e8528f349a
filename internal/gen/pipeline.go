package gen

import (
	"context"
	"fmt"
	"time"

	"github.com/naoko-ai/naoko/internal/console"
	"github.com/naoko-ai/naoko/internal/errors"
	"github.com/naoko-ai/naoko/internal/logging"
	"github.com/naoko-ai/naoko/internal/prompt"
)

// Pipeline tries an ordered list of backends until one produces usable
// output. It owns output cleaning, expected-marker validation, the
// keep-waiting prompt on timeouts, and the advisory progress ticker.
//
// Generate never returns an error: total failure is the empty string, and
// callers must treat empty as "no usable output".
type Pipeline struct {
	backends []Backend
	asker    prompt.Asker
	reporter console.Reporter
	logger   *logging.Logger
	errlog   *logging.ErrorLog

	progressInterval time.Duration
	waitPrompt       time.Duration
}

// NewPipeline assembles a pipeline over the given backend chain.
func NewPipeline(
	backends []Backend,
	asker prompt.Asker,
	reporter console.Reporter,
	logger *logging.Logger,
	errlog *logging.ErrorLog,
	progressInterval, waitPrompt time.Duration,
) *Pipeline {
	if reporter == nil {
		reporter = console.Nop{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	if progressInterval <= 0 {
		progressInterval = 10 * time.Second
	}
	return &Pipeline{
		backends:         backends,
		asker:            asker,
		reporter:         reporter,
		logger:           logger,
		errlog:           errlog,
		progressInterval: progressInterval,
		waitPrompt:       waitPrompt,
	}
}

// Generate runs the backend chain for the request. When the request carries
// an expected marker and every tier fails to satisfy it, the whole chain is
// retried once more without the marker as an explicit relaxation step; the
// relaxed output must still clear the baseline structural bar or the whole
// generation fails with "".
func (p *Pipeline) Generate(ctx context.Context, req Request) string {
	if out := p.runChain(ctx, req); out != "" {
		return out
	}

	if req.Marker != "" {
		p.reporter.Warn("All backends failed with expected marker %q, retrying without it", req.Marker)
		p.logger.Warn("relaxing expected marker", "marker", req.Marker)

		relaxed := req
		relaxed.Marker = ""
		out := p.runChain(ctx, relaxed)
		if out == "" {
			return ""
		}
		if !HasStructuralMarker(out) {
			p.recordFailure("pipeline", "relaxed output lacks any declaration-like content")
			return ""
		}
		return out
	}

	return ""
}

// runChain tries each backend in strict order; first success wins.
func (p *Pipeline) runChain(ctx context.Context, req Request) string {
	for _, b := range p.backends {
		if !b.Available() {
			// Zero attempts consumed: an unavailable backend is not a failure.
			p.logger.Info("skipping unavailable backend", "backend", b.Name())
			continue
		}

		raw, err := p.runBackend(ctx, b, req)
		if err != nil {
			continue
		}

		cleaned := Clean(raw)
		if cleaned == "" {
			p.recordFailure(b.Name(), "output empty after cleaning")
			continue
		}
		if req.Marker != "" && !ContainsDefinition(cleaned, req.Marker) {
			p.recordFailure(b.Name(), fmt.Sprintf("expected marker %q not defined in output", req.Marker))
			continue
		}

		p.logger.Info("generation succeeded", "backend", b.Name(), "bytes", len(cleaned))
		return cleaned
	}
	return ""
}

// runBackend drives one backend through its attempt budget.
func (p *Pipeline) runBackend(ctx context.Context, b Backend, req Request) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= b.Attempts(); attempt++ {
		out, err := p.callOnce(ctx, b, req)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if errors.Is(err, errors.ErrNoCredentials) {
			p.logger.Info("backend has no credentials, skipping", "backend", b.Name())
			return "", err
		}
		if errors.Is(err, errors.ErrBackendAbandoned) {
			p.recordFailure(b.Name(), "abandoned after timeout")
			return "", err
		}

		p.recordFailure(b.Name(), err.Error())

		if attempt < b.Attempts() {
			p.logger.Debug("retrying backend",
				"backend", b.Name(), "attempt", attempt+1, "of", b.Attempts())
			select {
			case <-time.After(b.Backoff()):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}

// callOnce performs a single bounded call, surfacing a timeout as a
// keep-waiting decision. Accepting retries the same call; declining
// converts the timeout into abandonment of this backend.
func (p *Pipeline) callOnce(ctx context.Context, b Backend, req Request) (string, error) {
	for {
		out, err := p.boundedGenerate(ctx, b, req)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		question := fmt.Sprintf("%s has been running longer than %s. Keep waiting?",
			b.Name(), b.Timeout())
		if p.asker != nil && p.asker.Confirm(question, true, p.waitPrompt) {
			p.logger.Info("user chose to keep waiting", "backend", b.Name())
			continue
		}
		return "", fmt.Errorf("%w: %s", errors.ErrBackendAbandoned, b.Name())
	}
}

// boundedGenerate runs one backend call under its timeout with the progress
// ticker active. The ticker is advisory, carries nothing back into the
// control path, and is stopped unconditionally before this returns.
func (p *Pipeline) boundedGenerate(ctx context.Context, b Backend, req Request) (out string, err error) {
	callCtx, cancel := context.WithTimeout(ctx, b.Timeout())
	defer cancel()

	stop := p.startTicker(b.Name())
	defer stop()

	return b.Generate(callCtx, req)
}

// startTicker reports waiting status on a fixed interval until stopped.
func (p *Pipeline) startTicker(backend string) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(p.progressInterval)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-ticker.C:
				elapsed := time.Since(start).Round(time.Second)
				p.reporter.Tick(fmt.Sprintf("waiting on %s (%s elapsed)", backend, elapsed))
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// recordFailure logs a structured error entry for post-mortem analysis and
// mirrors it to the debug log.
func (p *Pipeline) recordFailure(backend, reason string) {
	p.logger.Error("generation failure", "backend", backend, "reason", reason)
	if p.errlog != nil {
		if err := p.errlog.Append(backend, reason); err != nil {
			p.logger.Warn("failed to record error log entry", "error", err)
		}
	}
}
