// Package tls wraps an already-connected byte transport.Channel with
// TLS 1.3, exposing the negotiated SNI/ALPN and supporting hot
// certificate reload (spec §4.4 "TLS transport").
package tls

import (
	"context"
	"crypto/tls"
	"net"
	"sync/atomic"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/transport"
)

// Acceptor performs server-side TLS handshakes over already-accepted
// transport.Channels, supporting atomic config hot-reload so a
// certificate rotation never disturbs connections already mid-
// handshake or established.
type Acceptor struct {
	config atomic.Pointer[tls.Config]
}

// NewAcceptor builds an Acceptor from an initial *tls.Config.
func NewAcceptor(config *tls.Config) *Acceptor {
	a := &Acceptor{}
	a.config.Store(config.Clone())

	return a
}

// ReplaceConfig atomically swaps the handshake configuration; in-flight
// handshakes keep using the config snapshot they started with.
func (a *Acceptor) ReplaceConfig(config *tls.Config) {
	a.config.Store(config.Clone())
}

// ConfigSnapshot returns the config currently in effect.
func (a *Acceptor) ConfigSnapshot() *tls.Config {
	return a.config.Load()
}

// Accept performs the server-side handshake over an already-connected
// channel (typically a tcp.Channel), honoring call's deadline.
func (a *Acceptor) Accept(call *kernel.CallContext, conn net.Conn) (*Channel, error) {
	cfg := a.config.Load()

	tlsConn := tls.Server(conn, cfg)
	if err := handshake(call, tlsConn); err != nil {
		return nil, err
	}

	return NewChannel(tlsConn), nil
}

// Dial performs the client-side handshake to addr.
func Dial(call *kernel.CallContext, addr string, cfg *tls.Config) (*Channel, error) {
	rawConn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, transport.CategorizeError("transport.tls.dial_failed", err)
	}

	tlsConn := tls.Client(rawConn, cfg)
	if err := handshake(call, tlsConn); err != nil {
		_ = rawConn.Close()

		return nil, err
	}

	return NewChannel(tlsConn), nil
}

func handshake(call *kernel.CallContext, conn *tls.Conn) error {
	if call.Cancellation().IsCancelled() {
		return transport.CategorizeError("transport.cancelled", context.Canceled)
	}

	ctx := context.Background()

	if call.Deadline().IsSet() {
		remaining := call.Deadline().Remaining(kernel.NewSystemClock().Now())

		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, remaining)
		defer cancel()
	}

	if err := conn.HandshakeContext(ctx); err != nil {
		return transport.CategorizeError("transport.tls.handshake_failed", err)
	}

	return nil
}

// Channel wraps an established *tls.Conn as a transport.Channel,
// exposing the negotiated SNI and ALPN protocol.
type Channel struct {
	conn *tls.Conn
}

// NewChannel wraps an already-handshaken *tls.Conn.
func NewChannel(conn *tls.Conn) *Channel {
	return &Channel{conn: conn}
}

// ServerName returns the SNI the peer presented during the handshake.
func (c *Channel) ServerName() string {
	return c.conn.ConnectionState().ServerName
}

// NegotiatedProtocol returns the ALPN protocol selected during the
// handshake, or "" if none was negotiated.
func (c *Channel) NegotiatedProtocol() string {
	return c.conn.ConnectionState().NegotiatedProtocol
}

func (c *Channel) Read(call *kernel.CallContext, buf []byte) (int, error) {
	if err := applyDeadline(call, c.conn.SetReadDeadline); err != nil {
		return 0, err
	}

	n, err := c.conn.Read(buf)
	if err != nil {
		return n, transport.CategorizeError("transport.tls.read_failed", err)
	}

	return n, nil
}

func (c *Channel) Write(call *kernel.CallContext, buf []byte) (int, error) {
	if err := applyDeadline(call, c.conn.SetWriteDeadline); err != nil {
		return 0, err
	}

	n, err := c.conn.Write(buf)
	if err != nil {
		return n, transport.CategorizeError("transport.tls.write_failed", err)
	}

	return n, nil
}

func (c *Channel) Flush() error { return nil }

func (c *Channel) HalfClose(_ transport.Direction) error {
	return c.conn.Close()
}

func (c *Channel) PollReady() kernel.ReadyState { return kernel.Ready() }

func (c *Channel) LocalAddr() net.Addr { return c.conn.LocalAddr() }
func (c *Channel) PeerAddr() net.Addr  { return c.conn.RemoteAddr() }
