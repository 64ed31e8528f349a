package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/naoko-ai/naoko/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestStore_CreateAssignsID(t *testing.T) {
	store := newTestStore(t)

	state, err := store.Create("")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if state.ID() == "" {
		t.Fatal("Create returned state without an ID")
	}

	// A fresh session must be durably recorded immediately.
	if _, err := os.Stat(filepath.Join(store.Dir(state.ID()), ProgressFileName)); err != nil {
		t.Fatalf("progress record not written on create: %v", err)
	}
}

func TestStore_LoadUnknownIDFailsFast(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("no-such-session")
	if !errors.Is(err, errors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	// Failing fast must not leave a fresh session behind.
	if _, statErr := os.Stat(filepath.Join(store.Dir("no-such-session"), ProgressFileName)); !os.IsNotExist(statErr) {
		t.Fatal("Load created session state for an unknown id")
	}
}

func TestStore_LoadThenSaveIsByteEquivalent(t *testing.T) {
	store := newTestStore(t)

	state, err := store.Create("idempotence")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	state.Set(KeyDocument, "specs/feature.md")
	state.SetArtifact(PhasePlanning, "artifacts/requirements_request.md")
	state.MarkComplete(PhasePlanning)
	state.SetLastFailedPhase(PhaseImplementation)
	if err := store.Save(state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(store.Dir("idempotence"), ProgressFileName)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read progress record: %v", err)
	}

	loaded, err := store.Load("idempotence")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := store.Save(loaded); err != nil {
		t.Fatalf("Save after Load failed: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read progress record: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("load-then-save changed the record:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestDecodeState_IgnoresLinesWithoutSeparator(t *testing.T) {
	data := []byte("document: specs/a.md\njust a note without separator\n\nplanning.complete: true\n")

	state := DecodeState("s1", data)

	if got := state.Get(KeyDocument); got != "specs/a.md" {
		t.Errorf("document = %q, want %q", got, "specs/a.md")
	}
	if !state.Complete(PhasePlanning) {
		t.Error("planning.complete not parsed")
	}
	if got := state.Get("just a note without separator"); got != "" {
		t.Errorf("separator-less line leaked into state: %q", got)
	}
}

func TestState_ReusableRequiresFlagAndArtifactOnDisk(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "requirements_request.md")
	if err := os.WriteFile(artifact, []byte("# Requirements"), 0644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	tests := []struct {
		name     string
		setup    func(*State)
		wantSkip bool
	}{
		{
			name: "artifact and flag present",
			setup: func(s *State) {
				s.SetArtifact(PhasePlanning, artifact)
				s.MarkComplete(PhasePlanning)
			},
			wantSkip: true,
		},
		{
			name: "missing complete flag",
			setup: func(s *State) {
				s.SetArtifact(PhasePlanning, artifact)
			},
			wantSkip: false,
		},
		{
			name: "artifact gone from disk",
			setup: func(s *State) {
				s.SetArtifact(PhasePlanning, filepath.Join(dir, "deleted.md"))
				s.MarkComplete(PhasePlanning)
			},
			wantSkip: false,
		},
		{
			name:     "nothing recorded",
			setup:    func(s *State) {},
			wantSkip: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewState("s")
			tt.setup(state)
			_, ok := state.Reusable(PhasePlanning)
			if ok != tt.wantSkip {
				t.Errorf("Reusable = %v, want %v", ok, tt.wantSkip)
			}
		})
	}
}

func TestStore_AppendLogAccumulates(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create("logged"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.AppendLog("logged", "phase planning complete"); err != nil {
		t.Fatalf("AppendLog failed: %v", err)
	}
	if err := store.AppendLog("logged", "phase implementation complete"); err != nil {
		t.Fatalf("AppendLog failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir("logged"), RunLogFileName))
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("run log has %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "planning") || !strings.Contains(lines[1], "implementation") {
		t.Fatalf("run log entries out of order or missing: %q", lines)
	}
}

func TestStore_ListReportsPersistedSessions(t *testing.T) {
	store := newTestStore(t)

	state, err := store.Create("list-me")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	state.Set(KeyDocument, "specs/doc.md")
	if err := store.Save(state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	infos, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("List returned %d sessions, want 1", len(infos))
	}
	if infos[0].ID != "list-me" || infos[0].Document != "specs/doc.md" {
		t.Errorf("unexpected session info: %+v", infos[0])
	}
}
