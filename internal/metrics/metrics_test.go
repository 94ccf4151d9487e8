package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotCounts(t *testing.T) {
	m := New()
	m.IncFrameDecoded()
	m.IncFrameDecoded()
	m.IncDecodeFailed()
	m.IncBroadcast()
	m.IncFanOut()
	m.IncFanOut()
	m.IncFanOut()
	snap := m.Snapshot()
	if snap.Frames.Decoded != 2 {
		t.Fatalf("decoded: got %d want 2", snap.Frames.Decoded)
	}
	if snap.Frames.DecodeFailed != 1 {
		t.Fatalf("decode_failed: got %d want 1", snap.Frames.DecodeFailed)
	}
	if snap.Gossip.Broadcasts != 1 || snap.Gossip.FramesFanedOut != 3 {
		t.Fatalf("gossip counts: %+v", snap.Gossip)
	}
}

func TestWriteSnapshot(t *testing.T) {
	m := New()
	m.IncConnAccepted()
	path := filepath.Join(t.TempDir(), "metrics.json")
	if err := m.WriteSnapshot(path); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot not valid json: %v", err)
	}
	if snap.Connections.Accepted != 1 {
		t.Fatalf("accepted: got %d want 1", snap.Connections.Accepted)
	}
}

func TestWriteSnapshotEmptyPathNoop(t *testing.T) {
	if err := New().WriteSnapshot(""); err != nil {
		t.Fatalf("empty path should be a no-op: %v", err)
	}
}
