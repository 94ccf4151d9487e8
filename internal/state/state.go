// Package state holds the application state the node answers root queries
// with. The protocol core never mutates it; the host applies validated
// changes itself.
package state

import (
	"encoding/json"
	"sync"
)

// Change is the shape gossiped state updates are expected to take.
type Change struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type Store struct {
	mu   sync.Mutex
	docs map[string]any
}

func NewStore() *Store {
	return &Store{docs: make(map[string]any)}
}

func (s *Store) Apply(path string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = value
}

// Snapshot returns a full copy of the state, suitable for a state commitment
// reply. No chunking: the whole document goes out in one frame.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.docs))
	for k, v := range s.docs {
		out[k] = v
	}
	return out
}

func (s *Store) SnapshotJSON() (string, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
