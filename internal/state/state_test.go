package state

import (
	"encoding/json"
	"testing"
)

func TestApplySnapshot(t *testing.T) {
	s := NewStore()
	s.Apply("/a", float64(1))
	s.Apply("/b", "x")
	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("unexpected snapshot size: %d", len(snap))
	}
	if snap["/a"] != float64(1) || snap["/b"] != "x" {
		t.Fatalf("snapshot content mismatch: %+v", snap)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := NewStore()
	s.Apply("/a", 1)
	snap := s.Snapshot()
	snap["/a"] = 2
	if s.Snapshot()["/a"] != 1 {
		t.Fatalf("snapshot aliases internal state")
	}
}

func TestSnapshotJSON(t *testing.T) {
	s := NewStore()
	s.Apply("/a", float64(1))
	raw, err := s.SnapshotJSON()
	if err != nil {
		t.Fatalf("snapshot json: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("snapshot not valid json: %v", err)
	}
	if got["/a"] != float64(1) {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}
