package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists PostingState. Save is called after every mutation, never
// batched, so a crash loses at most the latest unpersisted change.
type Store interface {
	Load(ctx context.Context) (PostingState, error)
	Save(ctx context.Context, st PostingState) error
}

// FileStore keeps the state in a JSON file. This is the default backend.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. A missing file yields an empty state. A corrupted
// file is shelved as .broken for diagnosis and replaced by an empty state, so
// the bot keeps running.
func (s *FileStore) Load(ctx context.Context) (PostingState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return PostingState{}, nil
		}
		return PostingState{}, fmt.Errorf("read state file: %w", err)
	}

	var st PostingState
	if err := json.Unmarshal(data, &st); err != nil {
		_ = os.WriteFile(s.path+".broken", data, 0644)
		return PostingState{}, nil
	}
	return st, nil
}

// Save writes the state atomically via a temp file and rename.
func (s *FileStore) Save(ctx context.Context, st PostingState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp state file: %w", err)
	}
	return nil
}
