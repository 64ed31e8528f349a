package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naoko-ai/naoko/internal/errors"
)

// Progress record and run log file names within a session directory.
const (
	ProgressFileName = "progress.txt"
	RunLogFileName   = "run.log"
)

// Store persists sessions under a base directory, one subdirectory per
// session id. A single orchestrating process owns the store; no cross-process
// locking is provided.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// NewStore creates a Store rooted at baseDir, creating it if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// NewID returns a fresh opaque session identifier.
func NewID() string {
	return uuid.NewString()
}

// Dir returns the directory for a session id.
func (st *Store) Dir(id string) string {
	return filepath.Join(st.baseDir, id)
}

// Create initializes a fresh session. The progress record is written
// immediately so the session is resumable from the first phase onward.
func (st *Store) Create(id string) (*State, error) {
	if id == "" {
		id = NewID()
	}
	state := NewState(id)
	state.Touch(time.Now())
	if err := st.Save(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Load restores a session's progress record. A missing record is a hard
// error: resuming an explicit id must find prior state, never silently start
// fresh under a reused identifier.
func (st *Store) Load(id string) (*State, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	path := filepath.Join(st.Dir(id), ProgressFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to read progress record: %w", err)
	}
	return DecodeState(id, data), nil
}

// Save writes the progress record atomically. Called after every phase
// transition, not batched at run end, so a crash after phase k leaves
// phase k's result durably recorded.
func (st *Store) Save(state *State) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	dir := st.Dir(state.ID())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return atomicWriteFile(filepath.Join(dir, ProgressFileName), state.Encode(), 0644)
}

// AppendLog appends a timestamped event to the session's run log.
func (st *Store) AppendLog(id, event string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	dir := st.Dir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, RunLogFileName),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s\n", time.Now().UTC().Format(time.RFC3339), event)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append run log entry: %w", err)
	}
	return nil
}

// Info summarizes a persisted session for listing.
type Info struct {
	ID              string
	CreatedAt       string
	Document        string
	LastFailedPhase string
}

// List returns summaries of all persisted sessions, newest first by
// creation stamp.
func (st *Store) List() ([]Info, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	entries, err := os.ReadDir(st.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		data, err := os.ReadFile(filepath.Join(st.baseDir, id, ProgressFileName))
		if err != nil {
			continue
		}
		state := DecodeState(id, data)
		infos = append(infos, Info{
			ID:              id,
			CreatedAt:       state.Get(KeyCreatedAt),
			Document:        state.Get(KeyDocument),
			LastFailedPhase: state.LastFailedPhase(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt != infos[j].CreatedAt {
			return infos[i].CreatedAt > infos[j].CreatedAt
		}
		return strings.Compare(infos[i].ID, infos[j].ID) < 0
	})
	return infos, nil
}

// atomicWriteFile writes data to a file atomically by writing to a temporary
// file first, then renaming, so the target is never partially written.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
