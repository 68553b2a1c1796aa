package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bartekus/intellidb/internal/filewriter"
)

// StateStore handles reading and writing runner state. A nil store keeps no
// state: reads find nothing and writes are dropped.
type StateStore struct {
	baseDir string
}

// NewStateStore creates a store at the given base directory (e.g. .intellidb/run).
func NewStateStore(baseDir string) *StateStore {
	return &StateStore{baseDir: baseDir}
}

// Dir is the state directory, or "" for a nil store.
func (s *StateStore) Dir() string {
	if s == nil {
		return ""
	}
	return s.baseDir
}

func (s *StateStore) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

// ReadLastRun loads the last execution summary. It returns nil, nil when no
// run has been recorded.
func (s *StateStore) ReadLastRun() (*LastRun, error) {
	if s == nil {
		return nil, nil
	}
	f, err := os.Open(s.lastRunPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening last run file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var last LastRun
	if err := json.NewDecoder(f).Decode(&last); err != nil {
		return nil, fmt.Errorf("decoding last run: %w", err)
	}
	return &last, nil
}

// WriteLastRun saves the execution summary.
func (s *StateStore) WriteLastRun(last LastRun) error {
	if s == nil {
		return nil
	}
	data, err := json.MarshalIndent(last, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding last run: %w", err)
	}
	if err := filewriter.AtomicWrite(s.lastRunPath(), append(data, '\n')); err != nil {
		return fmt.Errorf("writing last run: %w", err)
	}
	return nil
}

// Reset clears the state directory.
func (s *StateStore) Reset() error {
	if s == nil {
		return nil
	}
	return os.RemoveAll(s.baseDir)
}
