package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore keeps the replied-to set in a flat JSON file. The file is read
// once at startup and rewritten on every Add, so the durable state always
// reflects the last completed cycle.
type FileStore struct {
	path string

	mu  sync.RWMutex
	ids map[string]struct{}
}

type fileState struct {
	RepliedPosts []string `json:"replied_posts"`
}

// NewFileStore loads (or initializes) the history file at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		ids:  make(map[string]struct{}),
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing history file: %w", err)
	}
	for _, id := range state.RepliedPosts {
		s.ids[id] = struct{}{}
	}
	return s, nil
}

func (s *FileStore) Contains(_ context.Context, postID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[postID]
	return ok, nil
}

// Add records a post identifier and flushes the file. Adding an identifier
// that is already present leaves the set, and the file, unchanged.
func (s *FileStore) Add(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[postID]; ok {
		return nil
	}
	s.ids[postID] = struct{}{}
	return s.flushLocked()
}

func (s *FileStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids), nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) flushLocked() error {
	state := fileState{RepliedPosts: make([]string, 0, len(s.ids))}
	for id := range s.ids {
		state.RepliedPosts = append(state.RepliedPosts, id)
	}
	sort.Strings(state.RepliedPosts)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
