package daemon

import (
	"encoding/hex"
	"encoding/json"

	"meshnode/internal/debuglog"
	"meshnode/internal/node"
	"meshnode/internal/peer"
	"meshnode/internal/proto"
	"meshnode/internal/script"
)

// Snapshotter supplies the full application state for root queries. The
// daemon never validates or mutates that state.
type Snapshotter interface {
	SnapshotJSON() (string, error)
}

// Dispatch maps one decoded message to at most one reply and at most one
// event. It carries no per-connection phase: any type is accepted from any
// sender at any time, and a misbehaving message degrades to a logged no-op,
// never an error to the caller.
func Dispatch(self *node.Node, peers *peer.Store, st Snapshotter, msg proto.Message) (*proto.Message, *Event) {
	switch msg.Type {
	case proto.MsgIdentRequest:
		return &proto.Message{Type: proto.MsgIdentResponse, Data: self.IDHex()}, nil

	case proto.MsgIdentResponse:
		raw, err := hex.DecodeString(msg.Data)
		if err != nil || len(raw) != 32 {
			debuglog.Logf("dispatch: bad ident response payload")
			return nil, nil
		}
		var id [32]byte
		copy(id[:], raw)
		if !peers.Add(id) {
			return nil, nil
		}
		return nil, &Event{Kind: EventPeer, PeerID: id}

	case proto.MsgRoot:
		snap, err := st.SnapshotJSON()
		if err != nil {
			debuglog.Logf("dispatch: state snapshot failed: %v", err)
			return nil, nil
		}
		return &proto.Message{Type: proto.MsgStateCommitment, Data: snap}, nil

	case proto.MsgPing:
		return &proto.Message{Type: proto.MsgPong, ID: msg.ID}, nil

	case proto.MsgInstruction:
		ins, err := script.Parse(msg.Data)
		if err != nil {
			debuglog.Logf("dispatch: bad instruction: %v", err)
			return nil, nil
		}
		out, err := script.Run(ins, self)
		if err != nil {
			debuglog.Logf("dispatch: instruction failed: %v", err)
			return nil, nil
		}
		return &proto.Message{Type: proto.MsgInstruction, Data: out}, nil

	case proto.MsgStateChange:
		var value any
		if err := json.Unmarshal([]byte(msg.Data), &value); err != nil {
			debuglog.Logf("dispatch: state change payload not json, dropped")
			return nil, nil
		}
		return nil, &Event{Kind: EventChanges, Value: value}

	default:
		debuglog.Logf("dispatch: no handler for message type %s, ignored", proto.TypeName(msg.Type))
		return nil, nil
	}
}
