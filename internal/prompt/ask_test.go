package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/naoko-ai/naoko/internal/console"
)

func TestAsk_ReturnsTypedAnswer(t *testing.T) {
	r := NewReader(strings.NewReader("forty-two\n"), console.Nop{})

	if got := r.Ask("answer?", "default", time.Second); got != "forty-two" {
		t.Errorf("Ask = %q, want %q", got, "forty-two")
	}
}

func TestAsk_EmptyLineYieldsDefault(t *testing.T) {
	r := NewReader(strings.NewReader("\n"), console.Nop{})

	if got := r.Ask("answer?", "fallback", time.Second); got != "fallback" {
		t.Errorf("Ask = %q, want %q", got, "fallback")
	}
}

func TestAsk_ClosedInputYieldsDefault(t *testing.T) {
	r := NewReader(strings.NewReader(""), console.Nop{})

	if got := r.Ask("answer?", "fallback", time.Second); got != "fallback" {
		t.Errorf("Ask = %q, want %q", got, "fallback")
	}
}

func TestAsk_TimeoutYieldsDefault(t *testing.T) {
	// A reader that never produces a line forces the timer path.
	r := NewReader(blockingReader{}, console.Nop{})

	start := time.Now()
	got := r.Ask("answer?", "fallback", 20*time.Millisecond)
	if got != "fallback" {
		t.Errorf("Ask = %q, want %q", got, "fallback")
	}
	if time.Since(start) > time.Second {
		t.Error("Ask did not respect its wait bound")
	}
}

// blockingReader never returns data and never reaches EOF.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}

func TestConfirm_ParsesAnswers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"yes", "y\n", false, true},
		{"yes word", "yes\n", false, true},
		{"no", "n\n", true, false},
		{"no word", "no\n", true, false},
		{"garbage falls back to default true", "maybe\n", true, true},
		{"garbage falls back to default false", "maybe\n", false, false},
		{"empty falls back to default", "\n", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input), console.Nop{})
			if got := r.Confirm("sure?", tt.def, time.Second); got != tt.want {
				t.Errorf("Confirm = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScripted_ReplaysThenDefaults(t *testing.T) {
	s := &Scripted{Answers: []string{"first"}, Decisions: []bool{false}}

	if got := s.Ask("q1", "def", time.Second); got != "first" {
		t.Errorf("first Ask = %q, want %q", got, "first")
	}
	if got := s.Ask("q2", "def", time.Second); got != "def" {
		t.Errorf("exhausted Ask = %q, want %q", got, "def")
	}
	if got := s.Confirm("c1", true, time.Second); got {
		t.Error("first Confirm should replay false")
	}
	if got := s.Confirm("c2", true, time.Second); !got {
		t.Error("exhausted Confirm should fall back to default")
	}
	if len(s.Questions) != 4 {
		t.Errorf("recorded %d questions, want 4", len(s.Questions))
	}
}
