// Package session persists run progress so an interrupted run can resume
// without redoing completed phases. On disk a session is a directory holding
// a flat "key: value" progress record (kept textual for human inspection),
// an append-only run log, and a debug log.
package session

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Phase names used as progress record key prefixes.
const (
	PhasePlanning       = "planning"
	PhaseStyleAnalysis  = "style_analysis"
	PhaseImplementation = "implementation"
	PhaseReview         = "review"
	PhaseCompletion     = "completion"
)

// Well-known progress record keys.
const (
	KeyDocument        = "document"
	KeyCreatedAt       = "created_at"
	KeyLastFailedPhase = "last_failed_phase"
)

const (
	suffixArtifact = ".artifact"
	suffixComplete = ".complete"
)

// State is the in-memory form of a session's progress record. The on-disk
// format stays a flat string map; State layers typed phase accessors on top.
type State struct {
	id   string
	keys map[string]string
}

// NewState creates an empty State for the given session id.
func NewState(id string) *State {
	return &State{
		id:   id,
		keys: make(map[string]string),
	}
}

// ID returns the session identifier.
func (s *State) ID() string { return s.id }

// Get returns the raw value for a key, or "" when absent.
func (s *State) Get(key string) string { return s.keys[key] }

// Set stores a raw key-value pair.
func (s *State) Set(key, value string) { s.keys[key] = value }

// SetArtifact records the artifact path produced by a phase.
func (s *State) SetArtifact(phase, path string) {
	s.keys[phase+suffixArtifact] = path
}

// Artifact returns the recorded artifact path for a phase, or "".
func (s *State) Artifact(phase string) string {
	return s.keys[phase+suffixArtifact]
}

// MarkComplete flags a phase as durably finished.
func (s *State) MarkComplete(phase string) {
	s.keys[phase+suffixComplete] = "true"
}

// Complete reports whether a phase carries an explicit complete flag.
func (s *State) Complete(phase string) bool {
	return s.keys[phase+suffixComplete] == "true"
}

// SetLastFailedPhase records where the run aborted so a human can diagnose
// and resume.
func (s *State) SetLastFailedPhase(phase string) {
	s.keys[KeyLastFailedPhase] = phase
}

// LastFailedPhase returns the recorded failure point, or "".
func (s *State) LastFailedPhase() string {
	return s.keys[KeyLastFailedPhase]
}

// ClearLastFailedPhase removes the failure marker after a phase succeeds
// on a resumed run.
func (s *State) ClearLastFailedPhase() {
	delete(s.keys, KeyLastFailedPhase)
}

// Reusable reports whether a phase can be skipped on resume: it needs a
// cached artifact path, an explicit complete flag, and the artifact must
// still exist on disk. Missing any of the three forces re-execution.
func (s *State) Reusable(phase string) (string, bool) {
	path := s.Artifact(phase)
	if path == "" || !s.Complete(phase) {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Touch stamps the creation time on a fresh state.
func (s *State) Touch(now time.Time) {
	if s.keys[KeyCreatedAt] == "" {
		s.keys[KeyCreatedAt] = now.UTC().Format(time.RFC3339)
	}
}

// Encode renders the progress record as "key: value" lines in sorted key
// order. Sorted output makes load-then-save byte-equivalent.
func (s *State) Encode() []byte {
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, s.keys[k])
	}
	return []byte(sb.String())
}

// DecodeState parses a progress record. Lines without a separator are
// ignored rather than rejected; the format is tolerant of hand annotation.
func DecodeState(id string, data []byte) *State {
	s := NewState(id)
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		s.keys[key] = strings.TrimSpace(value)
	}
	return s
}
