package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"meshnode/internal/debuglog"
	"meshnode/internal/metrics"
	"meshnode/internal/network"
	"meshnode/internal/node"
	"meshnode/internal/peer"
	"meshnode/internal/proto"
)

const DefaultListenAddr = "0.0.0.0:7777"

const defaultEventBuffer = 256

// Conn is one entry in the connection table. Status flags are written under
// the owning Peer's mutex and consulted only by broadcast; everything else
// learns about connection status through emitted events.
type Conn struct {
	addr       string
	tc         network.Conn // nil until an outbound connect completes
	initiator  bool
	connecting bool
	errored    bool
	wmu        sync.Mutex // serializes reply and broadcast frames
}

func (c *Conn) Addr() string {
	return c.addr
}

func (c *Conn) Initiator() bool {
	return c.initiator
}

type Options struct {
	Addr        string
	Transport   network.Transport
	State       Snapshotter
	Metrics     *metrics.Metrics
	EventBuffer int
}

// Peer owns the listener, the connection table and the known-peers table.
// Read loops run one goroutine per connection, so both tables sit behind the
// mutex to keep the single-writer discipline.
type Peer struct {
	self    *node.Node
	peers   *peer.Store
	state   Snapshotter
	tr      network.Transport
	addr    string
	metrics *metrics.Metrics

	mu       sync.Mutex
	conns    map[string]*Conn
	listener network.Listener

	events chan Event

	// Reserved scratch state; unused by the protocol logic.
	clock uint64
	stack []string
	known map[string]struct{}
}

func New(self *node.Node, opts Options) *Peer {
	addr := opts.Addr
	if addr == "" {
		addr = DefaultListenAddr
	}
	tr := opts.Transport
	if tr == nil {
		tr = network.TCP{}
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	buf := opts.EventBuffer
	if buf <= 0 {
		buf = defaultEventBuffer
	}
	return &Peer{
		self:    self,
		peers:   peer.NewStore(),
		state:   opts.State,
		tr:      tr,
		addr:    addr,
		metrics: m,
		conns:   make(map[string]*Conn),
		events:  make(chan Event, buf),
		known:   make(map[string]struct{}),
	}
}

func (p *Peer) Events() <-chan Event {
	return p.events
}

func (p *Peer) LocalID() [32]byte {
	return p.self.ID
}

func (p *Peer) Peers() *peer.Store {
	return p.peers
}

// ListenAddr reports the bound address once Start succeeded, else the
// configured one.
func (p *Peer) ListenAddr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener != nil {
		return p.listener.Addr()
	}
	return p.addr
}

// Start binds the listener and begins accepting. Calling it again while the
// listener is up is a no-op.
func (p *Peer) Start() error {
	p.mu.Lock()
	if p.listener != nil {
		p.mu.Unlock()
		return nil
	}
	l, err := p.tr.Listen(p.addr)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.listener = l
	p.mu.Unlock()
	p.emit(Event{Kind: EventReady})
	go p.acceptLoop(l)
	return nil
}

// Stop closes only the listening socket. Existing connections stay up: this
// is a minimal shutdown, not a graceful drain.
func (p *Peer) Stop() {
	p.mu.Lock()
	l := p.listener
	p.listener = nil
	p.mu.Unlock()
	if l != nil {
		_ = l.Close()
	}
}

func (p *Peer) acceptLoop(l network.Listener) {
	for {
		tc, err := l.Accept()
		if err != nil {
			debuglog.Debugf("accept loop done: %v", err)
			return
		}
		addr := tc.RemoteAddr()
		c := &Conn{addr: addr, tc: tc, initiator: false}
		p.mu.Lock()
		// A prior entry for the same address is overwritten silently.
		p.conns[addr] = c
		p.mu.Unlock()
		p.metrics.IncConnAccepted()
		p.emit(Event{Kind: EventConnection, Addr: addr, Status: StatusConnected, Initiator: false})
		go p.readLoop(c)
	}
}

// Dial connects to a "host:port" address. The table entry is registered
// before the connect completes; dialing an address already present returns
// the existing entry untouched. An invalid address logs and returns nil with
// no side effects.
func (p *Peer) Dial(addr string) *Conn {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		debuglog.Logf("dial: invalid address %q", addr)
		return nil
	}
	p.mu.Lock()
	if c, ok := p.conns[addr]; ok {
		p.mu.Unlock()
		return c
	}
	c := &Conn{addr: addr, initiator: true, connecting: true}
	p.conns[addr] = c
	p.mu.Unlock()
	go p.connect(c)
	return c
}

func (p *Peer) connect(c *Conn) {
	tc, err := p.tr.Dial(context.Background(), c.addr)
	p.mu.Lock()
	c.connecting = false
	if err != nil {
		// No retry, no backoff, no removal from the table.
		c.errored = true
		p.mu.Unlock()
		p.metrics.IncDialFailed()
		debuglog.Logf("dial %s failed: %v", c.addr, err)
		return
	}
	c.tc = tc
	p.mu.Unlock()
	p.metrics.IncConnDialed()
	p.emit(Event{Kind: EventConnection, Addr: c.addr, Status: StatusHandshake, Initiator: true})
	// The entire handshake: announce our id, expect an ident response back.
	p.write(c, proto.Message{Type: proto.MsgIdentRequest, Data: p.self.IDHex()})
	p.readLoop(c)
}

// readLoop drains one connection: decode, dispatch, write back the reply if
// any. A single malformed frame destroys the connection; a clean end of
// stream on an accepted connection emits part. The table entry is never
// removed either way.
func (p *Peer) readLoop(c *Conn) {
	for {
		msg, err := proto.ReadMessage(c.tc)
		if err != nil {
			if errors.Is(err, io.EOF) {
				debuglog.Debugf("conn %s: end of stream", c.addr)
				if !c.initiator {
					p.emit(Event{Kind: EventPart, Addr: c.addr})
				}
				return
			}
			p.metrics.IncDecodeFailed()
			debuglog.Logf("conn %s: decode failed, destroying connection: %v", c.addr, err)
			_ = c.tc.Close()
			return
		}
		p.metrics.IncFrameDecoded()
		reply, evt := Dispatch(p.self, p.peers, p.state, msg)
		if reply == nil && evt == nil {
			switch msg.Type {
			case proto.MsgStateChange:
				p.metrics.IncDroppedChange()
			case proto.MsgIdentRequest, proto.MsgIdentResponse, proto.MsgRoot,
				proto.MsgPing, proto.MsgInstruction:
			default:
				p.metrics.IncUnknownType()
			}
		}
		if evt != nil {
			p.emit(*evt)
		}
		if reply != nil {
			if p.write(c, *reply) {
				p.metrics.IncReplySent()
			}
		}
	}
}

// Broadcast wraps payload as a state change and writes it once to every
// connection present in the table right now that is neither mid-connect nor
// errored. Fire and forget: no ack, no retry, no relay. Returns the number
// of frames written.
func (p *Peer) Broadcast(payload any) int {
	data, ok := payload.(string)
	if !ok {
		raw, err := json.Marshal(payload)
		if err != nil {
			debuglog.Logf("broadcast: payload not serializable: %v", err)
			return 0
		}
		data = string(raw)
	}
	msg := proto.Message{Type: proto.MsgStateChange, Data: data}

	p.mu.Lock()
	targets := make([]*Conn, 0, len(p.conns))
	for _, c := range p.conns {
		if c.connecting || c.errored || c.tc == nil {
			continue
		}
		targets = append(targets, c)
	}
	p.mu.Unlock()

	p.metrics.IncBroadcast()
	sent := 0
	for _, c := range targets {
		if p.write(c, msg) {
			p.metrics.IncFanOut()
			sent++
		}
	}
	return sent
}

// write sends one frame, serialized per connection. Transport errors degrade
// to a log line and exclude the connection from future broadcasts; the table
// entry stays.
func (p *Peer) write(c *Conn, msg proto.Message) bool {
	c.wmu.Lock()
	err := proto.WriteMessage(c.tc, msg)
	c.wmu.Unlock()
	if err != nil {
		p.metrics.IncWriteFailed()
		debuglog.Logf("conn %s: write failed: %v", c.addr, err)
		p.mu.Lock()
		c.errored = true
		p.mu.Unlock()
		return false
	}
	return true
}

func (p *Peer) emit(ev Event) {
	select {
	case p.events <- ev:
		p.metrics.IncEventOut()
	default:
		p.metrics.IncEventDropped()
		debuglog.RateLimitedf("event_drop", time.Second, "event channel saturated, dropping %s", ev.Kind)
	}
}

// ConnAddrs lists the table keys, mostly for status output and tests.
func (p *Peer) ConnAddrs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.conns))
	for addr := range p.conns {
		out = append(out, addr)
	}
	return out
}
