package gen

import (
	"context"
	"testing"
	"time"

	"github.com/naoko-ai/naoko/internal/console"
	"github.com/naoko-ai/naoko/internal/errors"
	"github.com/naoko-ai/naoko/internal/prompt"
)

// fakeBackend plays back scripted outputs and errors, one pair per call.
type fakeBackend struct {
	name        string
	attempts    int
	unavailable bool
	outputs     []string
	errs        []error
	calls       int
}

func (f *fakeBackend) Name() string           { return f.name }
func (f *fakeBackend) Backoff() time.Duration { return 0 }
func (f *fakeBackend) Timeout() time.Duration { return 50 * time.Millisecond }
func (f *fakeBackend) Available() bool        { return !f.unavailable }

func (f *fakeBackend) Attempts() int {
	if f.attempts == 0 {
		return 1
	}
	return f.attempts
}

func (f *fakeBackend) Generate(ctx context.Context, req Request) (string, error) {
	i := f.calls
	f.calls++
	var out string
	var err error
	if i < len(f.outputs) {
		out = f.outputs[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return out, err
}

func newTestPipeline(t *testing.T, backends ...Backend) *Pipeline {
	t.Helper()
	return NewPipeline(backends, &prompt.Scripted{}, console.Nop{}, nil, nil,
		time.Hour, time.Millisecond)
}

const codeOutput = "```go\nfunc Handler() {}\n```"

func TestPipeline_FirstSuccessWins(t *testing.T) {
	first := &fakeBackend{name: "primary", outputs: []string{codeOutput}}
	second := &fakeBackend{name: "fallback", outputs: []string{codeOutput}}
	p := newTestPipeline(t, first, second)

	got := p.Generate(context.Background(), Request{Prompt: "implement"})

	if got != "func Handler() {}" {
		t.Fatalf("Generate = %q", got)
	}
	if second.calls != 0 {
		t.Fatal("fallback backend was called despite primary success")
	}
}

func TestPipeline_FailureFallsThroughInOrder(t *testing.T) {
	first := &fakeBackend{name: "primary", errs: []error{errors.NewBackendError("primary", "exit 1", nil)}}
	second := &fakeBackend{name: "fallback", outputs: []string{codeOutput}}
	p := newTestPipeline(t, first, second)

	got := p.Generate(context.Background(), Request{Prompt: "implement"})

	if got == "" {
		t.Fatal("Generate failed despite working fallback")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestPipeline_MarkerMissingDiscardsAndAdvances(t *testing.T) {
	// Primary returns valid-looking code without the required marker; the
	// pipeline must discard it and use the next tier.
	first := &fakeBackend{name: "primary", outputs: []string{"```\nfunc Wrong() {}\n```"}}
	second := &fakeBackend{name: "fallback", outputs: []string{"```\nfunc Handler() {}\n```"}}
	p := newTestPipeline(t, first, second)

	got := p.Generate(context.Background(), Request{Prompt: "implement", Marker: "Handler"})

	if got != "func Handler() {}" {
		t.Fatalf("Generate = %q", got)
	}
	if !ContainsDefinition(got, "Handler") {
		t.Fatal("returned output does not define the required marker")
	}
}

func TestPipeline_NonEmptyOutputAlwaysContainsMarker(t *testing.T) {
	// No backend ever defines the marker and the relaxed outputs carry no
	// structural content: the pipeline must return "".
	b := &fakeBackend{name: "only", outputs: []string{"just prose", "just prose"}}
	p := newTestPipeline(t, b)

	got := p.Generate(context.Background(), Request{Prompt: "x", Marker: "Handler"})

	if got != "" {
		t.Fatalf("Generate = %q, want empty", got)
	}
}

func TestPipeline_RelaxationAcceptsStructuralOutput(t *testing.T) {
	// First pass (with marker) fails; relaxation pass without the marker
	// returns declaration-like output, which is accepted.
	b := &fakeBackend{name: "only", outputs: []string{
		"```\nfunc Other() {}\n```",
		"```\nfunc Other() {}\n```",
	}}
	p := newTestPipeline(t, b)

	got := p.Generate(context.Background(), Request{Prompt: "x", Marker: "Handler"})

	if got != "func Other() {}" {
		t.Fatalf("Generate = %q", got)
	}
	if b.calls != 2 {
		t.Fatalf("backend calls = %d, want 2 (marker pass + relaxation)", b.calls)
	}
}

func TestPipeline_UnavailableBackendConsumesNoAttempts(t *testing.T) {
	skipped := &fakeBackend{name: "hosted", unavailable: true, attempts: 3}
	working := &fakeBackend{name: "fallback", outputs: []string{codeOutput}}
	p := newTestPipeline(t, skipped, working)

	got := p.Generate(context.Background(), Request{Prompt: "x"})

	if got == "" {
		t.Fatal("Generate failed")
	}
	if skipped.calls != 0 {
		t.Fatalf("unavailable backend was called %d times", skipped.calls)
	}
}

func TestPipeline_RetryBudgetHonored(t *testing.T) {
	b := &fakeBackend{
		name:     "hosted",
		attempts: 3,
		outputs:  []string{"", "", codeOutput},
		errs: []error{
			errors.NewBackendError("hosted", "status 500", nil),
			errors.NewBackendError("hosted", "status 500", nil),
			nil,
		},
	}
	p := newTestPipeline(t, b)

	got := p.Generate(context.Background(), Request{Prompt: "x"})

	if got == "" {
		t.Fatal("Generate failed despite success on final attempt")
	}
	if b.calls != 3 {
		t.Fatalf("backend calls = %d, want 3", b.calls)
	}
}

func TestPipeline_TimeoutDeclinedAbandonsBackend(t *testing.T) {
	slow := &fakeBackend{name: "slow", errs: []error{context.DeadlineExceeded}}
	fallback := &fakeBackend{name: "fallback", outputs: []string{codeOutput}}
	asker := &prompt.Scripted{Decisions: []bool{false}}
	p := NewPipeline([]Backend{slow, fallback}, asker, console.Nop{}, nil, nil,
		time.Hour, time.Millisecond)

	got := p.Generate(context.Background(), Request{Prompt: "x"})

	if got == "" {
		t.Fatal("Generate failed despite working fallback")
	}
	if slow.calls != 1 {
		t.Fatalf("abandoned backend called %d times, want 1", slow.calls)
	}
}

func TestPipeline_TimeoutAcceptedRetriesSameBackend(t *testing.T) {
	slow := &fakeBackend{
		name:    "slow",
		outputs: []string{"", codeOutput},
		errs:    []error{context.DeadlineExceeded, nil},
	}
	asker := &prompt.Scripted{Decisions: []bool{true}}
	p := NewPipeline([]Backend{slow}, asker, console.Nop{}, nil, nil,
		time.Hour, time.Millisecond)

	got := p.Generate(context.Background(), Request{Prompt: "x"})

	if got == "" {
		t.Fatal("Generate failed after keep-waiting retry")
	}
	if slow.calls != 2 {
		t.Fatalf("backend calls = %d, want 2", slow.calls)
	}
}

func TestPipeline_TotalFailureReturnsEmpty(t *testing.T) {
	b := &fakeBackend{name: "broken", errs: []error{errors.NewBackendError("broken", "exit 1", nil)}}
	p := newTestPipeline(t, b)

	if got := p.Generate(context.Background(), Request{Prompt: "x"}); got != "" {
		t.Fatalf("Generate = %q, want empty", got)
	}
}
