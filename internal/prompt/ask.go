// Package prompt implements interactive questions with a bounded wait and a
// default answer, so an unattended run can never hang on a prompt that has a
// fallback. All interactive decisions in the codebase go through Asker.
package prompt

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/naoko-ai/naoko/internal/console"
)

// Asker solicits answers from a human with a bounded wait.
type Asker interface {
	// Ask poses a free-form question and returns the entered line, or def
	// if no answer arrives within wait.
	Ask(question, def string, wait time.Duration) string
	// Confirm poses a yes/no question and returns the decision, or def if
	// no answer arrives within wait.
	Confirm(question string, def bool, wait time.Duration) bool
}

// Reader is an Asker backed by a line-oriented input stream, normally stdin.
// A single goroutine owns the stream so consecutive questions never race for
// input.
type Reader struct {
	reporter console.Reporter
	lines    chan string
}

// NewReader creates an Asker reading answers from in.
func NewReader(in io.Reader, reporter console.Reporter) *Reader {
	r := &Reader{
		reporter: reporter,
		lines:    make(chan string),
	}
	go r.pump(in)
	return r
}

func (r *Reader) pump(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		r.lines <- scanner.Text()
	}
	close(r.lines)
}

func (r *Reader) Ask(question, def string, wait time.Duration) string {
	if def != "" {
		r.reporter.Info("%s [default: %s]", question, def)
	} else {
		r.reporter.Info("%s", question)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case line, ok := <-r.lines:
		if !ok {
			return def
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			return def
		}
		return answer
	case <-timer.C:
		r.reporter.Warn("No answer within %s, using default", wait)
		return def
	}
}

func (r *Reader) Confirm(question string, def bool, wait time.Duration) bool {
	suffix := "[y/N]"
	if def {
		suffix = "[Y/n]"
	}

	answer := r.Ask(question+" "+suffix, "", wait)
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// Scripted is an Asker for tests that replays canned answers in order and
// falls back to defaults once the script is exhausted.
type Scripted struct {
	Answers   []string
	Decisions []bool

	answerIdx   int
	decisionIdx int
	Questions   []string
}

func (s *Scripted) Ask(question, def string, wait time.Duration) string {
	s.Questions = append(s.Questions, question)
	if s.answerIdx < len(s.Answers) {
		a := s.Answers[s.answerIdx]
		s.answerIdx++
		if a == "" {
			return def
		}
		return a
	}
	return def
}

func (s *Scripted) Confirm(question string, def bool, wait time.Duration) bool {
	s.Questions = append(s.Questions, question)
	if s.decisionIdx < len(s.Decisions) {
		d := s.Decisions[s.decisionIdx]
		s.decisionIdx++
		return d
	}
	return def
}
