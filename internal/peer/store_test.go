package peer

import (
	"sync"
	"testing"
)

func TestAddIdempotent(t *testing.T) {
	s := NewStore()
	id := [32]byte{1, 2, 3}
	if !s.Add(id) {
		t.Fatalf("first add should report unseen")
	}
	if s.Add(id) {
		t.Fatalf("second add should be a no-op")
	}
	if s.Len() != 1 {
		t.Fatalf("unexpected store size: %d", s.Len())
	}
	if !s.Has(id) {
		t.Fatalf("id missing after add")
	}
}

func TestListSortedAndCopied(t *testing.T) {
	s := NewStore()
	s.Add([32]byte{9})
	s.Add([32]byte{1})
	s.Add([32]byte{5})
	got := s.List()
	if len(got) != 3 {
		t.Fatalf("unexpected list size: %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].NodeID[0] > got[i].NodeID[0] {
			t.Fatalf("list not sorted")
		}
	}
}

func TestConcurrentAdd(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(b byte) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Add([32]byte{b, byte(j)})
			}
		}(byte(i))
	}
	wg.Wait()
	if s.Len() != 1600 {
		t.Fatalf("unexpected store size: %d", s.Len())
	}
}
