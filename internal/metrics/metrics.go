package metrics

import (
	"encoding/json"
	"os"
	"sync/atomic"
	"time"
)

type Snapshot struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Frames      FrameMetrics      `json:"frames"`
	Connections ConnectionMetrics `json:"connections"`
	Gossip      GossipMetrics     `json:"gossip"`
	Events      EventMetrics      `json:"events"`
}

type FrameMetrics struct {
	Decoded       uint64 `json:"decoded"`
	DecodeFailed  uint64 `json:"decode_failed"`
	RepliesSent   uint64 `json:"replies_sent"`
	WriteFailed   uint64 `json:"write_failed"`
	UnknownType   uint64 `json:"unknown_type"`
	DroppedChange uint64 `json:"dropped_change"`
}

type ConnectionMetrics struct {
	Dialed   uint64 `json:"dialed"`
	Accepted uint64 `json:"accepted"`
	DialFail uint64 `json:"dial_fail"`
}

type GossipMetrics struct {
	Broadcasts     uint64 `json:"broadcasts"`
	FramesFanedOut uint64 `json:"frames_faned_out"`
}

type EventMetrics struct {
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
}

type Metrics struct {
	framesDecoded  atomic.Uint64
	decodeFailed   atomic.Uint64
	repliesSent    atomic.Uint64
	writeFailed    atomic.Uint64
	unknownType    atomic.Uint64
	droppedChange  atomic.Uint64
	connsDialed    atomic.Uint64
	connsAccepted  atomic.Uint64
	dialFailed     atomic.Uint64
	broadcasts     atomic.Uint64
	framesFanedOut atomic.Uint64
	eventsOut      atomic.Uint64
	eventsDropped  atomic.Uint64
}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncFrameDecoded()  { m.framesDecoded.Add(1) }
func (m *Metrics) IncDecodeFailed()  { m.decodeFailed.Add(1) }
func (m *Metrics) IncReplySent()     { m.repliesSent.Add(1) }
func (m *Metrics) IncWriteFailed()   { m.writeFailed.Add(1) }
func (m *Metrics) IncUnknownType()   { m.unknownType.Add(1) }
func (m *Metrics) IncDroppedChange() { m.droppedChange.Add(1) }
func (m *Metrics) IncConnDialed()    { m.connsDialed.Add(1) }
func (m *Metrics) IncConnAccepted()  { m.connsAccepted.Add(1) }
func (m *Metrics) IncDialFailed()    { m.dialFailed.Add(1) }
func (m *Metrics) IncBroadcast()     { m.broadcasts.Add(1) }
func (m *Metrics) IncFanOut()        { m.framesFanedOut.Add(1) }
func (m *Metrics) IncEventOut()      { m.eventsOut.Add(1) }
func (m *Metrics) IncEventDropped()  { m.eventsDropped.Add(1) }

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		GeneratedAt: time.Now().UTC(),
		Frames: FrameMetrics{
			Decoded:       m.framesDecoded.Load(),
			DecodeFailed:  m.decodeFailed.Load(),
			RepliesSent:   m.repliesSent.Load(),
			WriteFailed:   m.writeFailed.Load(),
			UnknownType:   m.unknownType.Load(),
			DroppedChange: m.droppedChange.Load(),
		},
		Connections: ConnectionMetrics{
			Dialed:   m.connsDialed.Load(),
			Accepted: m.connsAccepted.Load(),
			DialFail: m.dialFailed.Load(),
		},
		Gossip: GossipMetrics{
			Broadcasts:     m.broadcasts.Load(),
			FramesFanedOut: m.framesFanedOut.Load(),
		},
		Events: EventMetrics{
			Delivered: m.eventsOut.Load(),
			Dropped:   m.eventsDropped.Load(),
		},
	}
}

func (m *Metrics) WriteSnapshot(path string) error {
	if path == "" {
		return nil
	}
	snap := m.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
