package proto

import (
	"encoding/json"
	"fmt"
	"io"
)

// Message type codes. Unknown codes still decode; routing them is the
// dispatcher's problem, not the codec's.
const (
	MsgIdentRequest    = 1
	MsgIdentResponse   = 2
	MsgRoot            = 3
	MsgStateCommitment = 4
	MsgPing            = 5
	MsgPong            = 6
	MsgInstruction     = 7
	MsgStateChange     = 8
)

// Message is one protocol frame body. ID is a correlation token (ping/pong),
// Data carries UTF-8 text; JSON values are serialized into it before wrapping.
type Message struct {
	Type int    `json:"type"`
	ID   string `json:"id,omitempty"`
	Data string `json:"data,omitempty"`
}

func EncodeMessage(m Message) ([]byte, error) {
	if m.Type <= 0 {
		return nil, fmt.Errorf("missing message type")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(payload)
}

func DecodeMessage(payload []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, err
	}
	if m.Type <= 0 {
		return Message{}, fmt.Errorf("missing message type")
	}
	return m, nil
}

func ReadMessage(r io.Reader) (Message, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return Message{}, err
	}
	return DecodeMessage(payload)
}

func WriteMessage(w io.Writer, m Message) error {
	frame, err := EncodeMessage(m)
	if err != nil {
		return err
	}
	total := 0
	for total < len(frame) {
		n, err := w.Write(frame[total:])
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("short write")
		}
		total += n
	}
	return nil
}

func TypeName(t int) string {
	switch t {
	case MsgIdentRequest:
		return "ident_request"
	case MsgIdentResponse:
		return "ident_response"
	case MsgRoot:
		return "root"
	case MsgStateCommitment:
		return "state_commitment"
	case MsgPing:
		return "ping"
	case MsgPong:
		return "pong"
	case MsgInstruction:
		return "instruction"
	case MsgStateChange:
		return "state_change"
	}
	return fmt.Sprintf("unknown(%d)", t)
}
