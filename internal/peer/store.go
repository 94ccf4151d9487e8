package peer

import (
	"encoding/hex"
	"sort"
	"sync"
)

// Peer is the minimal record kept for a remote node that answered an ident
// request. Nothing here persists across restarts.
type Peer struct {
	NodeID [32]byte
}

// Store is the known-peers table, keyed by node ID. Connection read loops run
// on their own goroutines, so every access goes through the mutex.
type Store struct {
	mu    sync.Mutex
	peers map[[32]byte]Peer
}

func NewStore() *Store {
	return &Store{peers: make(map[[32]byte]Peer)}
}

// Add registers id and reports whether it was unseen. Re-adding a known id is
// a no-op.
func (s *Store) Add(id [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.peers[id]; ok {
		return false
	}
	s.peers[id] = Peer{NodeID: id}
	return true
}

func (s *Store) Has(id [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.peers[id]
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

func (s *Store) List() []Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Peer, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return hex.EncodeToString(out[i].NodeID[:]) < hex.EncodeToString(out[j].NodeID[:])
	})
	return out
}
