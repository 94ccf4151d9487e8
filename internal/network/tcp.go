package network

import (
	"context"
	"net"
)

// TCP is the default transport: raw streams, no transport-level encryption.
type TCP struct{}

func (TCP) Listen(addr string) (Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &tcpListener{l: l}, nil
}

func (TCP) Dial(ctx context.Context, addr string) (Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &tcpConn{Conn: c}, nil
}

type tcpListener struct {
	l net.Listener
}

func (t *tcpListener) Accept() (Conn, error) {
	c, err := t.l.Accept()
	if err != nil {
		return nil, err
	}
	return &tcpConn{Conn: c}, nil
}

func (t *tcpListener) Close() error {
	return t.l.Close()
}

func (t *tcpListener) Addr() string {
	return t.l.Addr().String()
}

type tcpConn struct {
	net.Conn
}

func (c *tcpConn) RemoteAddr() string {
	return c.Conn.RemoteAddr().String()
}
