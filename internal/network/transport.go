// Package network provides the duplex stream transports the daemon runs the
// wire protocol over. TCP is the default; QUIC is available behind the same
// interface for dev setups.
package network

import (
	"context"
	"fmt"
	"io"
)

// Conn is one duplex transport endpoint. The protocol layer only ever needs
// the byte stream and the remote "host:port" key.
type Conn interface {
	io.Reader
	io.Writer
	Close() error
	RemoteAddr() string
}

type Listener interface {
	Accept() (Conn, error)
	Close() error
	Addr() string
}

type Transport interface {
	Listen(addr string) (Listener, error)
	Dial(ctx context.Context, addr string) (Conn, error)
}

func ByName(name string) (Transport, error) {
	switch name {
	case "", "tcp":
		return TCP{}, nil
	case "quic":
		return QUIC{}, nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", name)
	}
}
