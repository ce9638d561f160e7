// Package quic implements the transport.Listener/transport.Channel
// contract over quic-go, multiplexing each QUIC connection's bidi
// streams as independent Channels (spec §4.4 "QUIC transport").
package quic

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/transport"
)

// Endpoint binds a UDP socket and speaks QUIC over it, accepting
// connections and, per connection, bidirectional streams.
type Endpoint struct {
	ln *quic.Listener
}

// Listen binds addr and begins accepting QUIC connections using
// tlsConf for the handshake (QUIC mandates TLS 1.3).
func Listen(addr string, tlsConf *tls.Config, quicConf *quic.Config) (*Endpoint, error) {
	ln, err := quic.ListenAddr(addr, tlsConf, quicConf)
	if err != nil {
		return nil, transport.CategorizeError("transport.quic.bind_failed", err)
	}

	return &Endpoint{ln: ln}, nil
}

// Addr returns the bound UDP address.
func (e *Endpoint) Addr() net.Addr { return e.ln.Addr() }

// Shutdown closes the endpoint, tearing down all connections accepted
// from it.
func (e *Endpoint) Shutdown(_ *kernel.CallContext, _ transport.Direction) error {
	return e.ln.Close()
}

// AcceptConnection blocks until a peer opens a QUIC connection, honoring
// call's cancellation/deadline.
func (e *Endpoint) AcceptConnection(call *kernel.CallContext) (*Connection, error) {
	ctx, cancel := contextFromCall(call)
	defer cancel()

	conn, err := e.ln.Accept(ctx)
	if err != nil {
		return nil, transport.CategorizeError("transport.quic.accept_failed", err)
	}

	return &Connection{conn: conn}, nil
}

// Connection wraps one negotiated QUIC connection, multiplexing
// independent bidirectional streams as transport.Channels.
type Connection struct {
	conn quic.Connection
}

// DialAddr opens a QUIC connection to addr.
func DialAddr(call *kernel.CallContext, addr string, tlsConf *tls.Config, quicConf *quic.Config) (*Connection, error) {
	ctx, cancel := contextFromCall(call)
	defer cancel()

	conn, err := quic.DialAddr(ctx, addr, tlsConf, quicConf)
	if err != nil {
		return nil, transport.CategorizeError("transport.quic.dial_failed", err)
	}

	return &Connection{conn: conn}, nil
}

// OpenStream opens a new bidirectional stream, exposed as a
// transport.Channel.
func (c *Connection) OpenStream(call *kernel.CallContext) (*Channel, error) {
	ctx, cancel := contextFromCall(call)
	defer cancel()

	stream, err := c.conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, transport.CategorizeError("transport.quic.open_stream_failed", err)
	}

	return newChannel(stream, c.conn), nil
}

// AcceptStream blocks for the peer to open a bidirectional stream.
func (c *Connection) AcceptStream(call *kernel.CallContext) (*Channel, error) {
	ctx, cancel := contextFromCall(call)
	defer cancel()

	stream, err := c.conn.AcceptStream(ctx)
	if err != nil {
		return nil, transport.CategorizeError("transport.quic.accept_stream_failed", err)
	}

	return newChannel(stream, c.conn), nil
}

// Close tears down the connection and every stream multiplexed over it.
func (c *Connection) Close() error {
	return c.conn.CloseWithError(0, "")
}

// Channel wraps one QUIC stream as a transport.Channel. poll_ready
// tracks would-block streaks the same way tcp.Channel does, since
// quic-go surfaces flow-control stalls as ordinary write errors/blocking
// rather than a distinct backpressure signal.
type Channel struct {
	stream  quic.Stream
	conn    quic.Connection
	tracker *transport.WouldBlockTracker
}

func newChannel(stream quic.Stream, conn quic.Connection) *Channel {
	return &Channel{stream: stream, conn: conn, tracker: transport.NewWouldBlockTracker(kernel.NewSystemClock())}
}

func (c *Channel) Read(call *kernel.CallContext, buf []byte) (int, error) {
	if err := c.applyDeadline(call, c.stream.SetReadDeadline); err != nil {
		return 0, err
	}

	n, err := c.stream.Read(buf)
	if err != nil {
		return n, transport.CategorizeError("transport.quic.read_failed", err)
	}

	return n, nil
}

func (c *Channel) Write(call *kernel.CallContext, buf []byte) (int, error) {
	if err := c.applyDeadline(call, c.stream.SetWriteDeadline); err != nil {
		return 0, err
	}

	n, err := c.stream.Write(buf)
	if err != nil {
		c.tracker.Observe()

		return n, transport.CategorizeError("transport.quic.write_failed", err)
	}

	c.tracker.Reset()

	return n, nil
}

// Flush is a no-op: quic-go streams are written directly to the
// connection's packet scheduler.
func (c *Channel) Flush() error { return nil }

// HalfClose closes the stream's read or write side independently, the
// one piece of BSD-socket-style half-close QUIC streams natively
// support.
func (c *Channel) HalfClose(direction transport.Direction) error {
	switch direction {
	case transport.DirectionRead:
		c.stream.CancelRead(0)

		return nil
	case transport.DirectionWrite:
		return c.stream.Close()
	default:
		c.stream.CancelRead(0)

		return c.stream.Close()
	}
}

// PollReady is always Ready: quic-go streams admit concurrent writers
// internally, so there is no local lock to report Busy on. Sustained
// congestion surfaces as ordinary Write errors instead, tracked by
// c.tracker for future backpressure-advice use.
func (c *Channel) PollReady() kernel.ReadyState {
	return kernel.Ready()
}

func (c *Channel) LocalAddr() net.Addr { return c.conn.LocalAddr() }
func (c *Channel) PeerAddr() net.Addr  { return c.conn.RemoteAddr() }

func (c *Channel) applyDeadline(call *kernel.CallContext, set func(time.Time) error) error {
	if call.Cancellation().IsCancelled() {
		return transport.CategorizeError("transport.cancelled", context.Canceled)
	}

	if !call.Deadline().IsSet() {
		return set(time.Time{})
	}

	remaining := call.Deadline().Remaining(kernel.NewSystemClock().Now())
	if remaining <= 0 {
		return transport.CategorizeError("transport.timeout", context.DeadlineExceeded)
	}

	return set(time.Now().Add(remaining))
}

func contextFromCall(call *kernel.CallContext) (context.Context, context.CancelFunc) {
	ctx := context.Background()
	if call.Cancellation().IsCancelled() {
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		return ctx, cancel
	}

	if !call.Deadline().IsSet() {
		return context.WithCancel(ctx)
	}

	remaining := call.Deadline().Remaining(kernel.NewSystemClock().Now())

	return context.WithTimeout(ctx, remaining)
}
