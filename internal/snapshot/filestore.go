package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openshelf/openshelf/internal/entities"
)

// FileStore keeps the snapshot as a single JSON file. The layout is
// the same as the backup export, so a backup file can be dropped in as
// the data file directly.
type FileStore struct {
	Path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the snapshot file. A missing file yields an empty
// snapshot, not an error: first launch starts from nothing.
func (s *FileStore) Load() (*entities.Snapshot, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return entities.EmptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	snap := entities.EmptySnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	return snap, nil
}

// Save replaces the snapshot file. The write goes through a temp file
// and rename so a crash mid-write cannot truncate the previous state.
func (s *FileStore) Save(snap *entities.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}
