package daemon

// Event kinds observable by the host application. These are the only
// side-channel outputs of the protocol core; nothing is returned through the
// dial/broadcast call paths.
type EventKind string

const (
	EventReady      EventKind = "ready"
	EventConnection EventKind = "connection"
	EventPeer       EventKind = "peer"
	EventPart       EventKind = "part"
	EventChanges    EventKind = "changes"
)

const (
	StatusConnected = "connected"
	StatusHandshake = "handshake"
)

type Event struct {
	Kind      EventKind
	Addr      string   // connection, part
	Status    string   // connection only
	Initiator bool     // connection only
	PeerID    [32]byte // peer only
	Value     any      // changes only
}
