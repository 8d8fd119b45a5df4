package cansim

import (
	"context"
	"fmt"
	"net"
	"time"
)

func init() {
	if err := RegisterTransport(&TransportInfo{
		Name:               "tcp",
		Description:        "WiFi attached simulator (TCP)",
		RequiresSerialPort: false,
		New:                NewTCPTransport,
	}); err != nil {
		panic(err)
	}
}

// TCPTransport talks to a simulator bridged onto the network. The wire
// protocol is identical to the serial one; read deadlines stand in for
// the serial driver's read timeout so Read keeps the same polling
// semantics.
type TCPTransport struct {
	cfg  *Config
	conn net.Conn
}

func NewTCPTransport(cfg *Config) (Transport, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("tcp transport requires an address")
	}
	return &TCPTransport{cfg: cfg}, nil
}

func (tt *TCPTransport) Name() string { return "tcp" }

func (tt *TCPTransport) Open(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", tt.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to dial %q: %w", tt.cfg.Address, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	tt.conn = conn
	return nil
}

func (tt *TCPTransport) Read(p []byte) (int, error) {
	if tt.conn == nil {
		return 0, ErrNotConnected
	}
	tt.conn.SetReadDeadline(time.Now().Add(tt.cfg.ReadTimeout))
	n, err := tt.conn.Read(p)
	if err != nil {
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

func (tt *TCPTransport) Write(p []byte) (int, error) {
	if tt.conn == nil {
		return 0, ErrNotConnected
	}
	tt.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return tt.conn.Write(p)
}

func (tt *TCPTransport) Flush() error { return nil }

// Discard drains whatever the simulator sent before we were ready.
func (tt *TCPTransport) Discard() error {
	if tt.conn == nil {
		return ErrNotConnected
	}
	scratch := make([]byte, 1024)
	for {
		tt.conn.SetReadDeadline(time.Now().Add(tt.cfg.ReadTimeout))
		n, err := tt.conn.Read(scratch)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (tt *TCPTransport) Close() error {
	if tt.conn == nil {
		return nil
	}
	err := tt.conn.Close()
	tt.conn = nil
	return err
}
