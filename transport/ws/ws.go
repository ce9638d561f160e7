// Package ws implements the transport.Channel contract over a
// gorilla/websocket connection, aggregating WebSocket data frames into
// whole SIP messages per RFC 7118 (spec §4.4 "WebSocket transport for
// SIP").
package ws

import (
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/transport"
)

// DefaultMaxMessageBytes is the default aggregation limit for incoming
// fragments before they are handed to the SIP parser (spec §4.4: "a
// size limit (implementation-defined, default 65536 bytes)").
const DefaultMaxMessageBytes = 65536

// Channel wraps a *websocket.Conn, presenting SIP's byte-stream
// transport.Channel contract over WebSocket's framed one: each Read
// returns bytes from one aggregated data frame (a whole SIP message, by
// RFC 7118 convention), and each Write sends one frame.
type Channel struct {
	conn            *websocket.Conn
	maxMessageBytes int

	pending []byte
}

// ChannelOption configures a Channel at construction time.
type ChannelOption func(*Channel)

// WithMaxMessageBytes overrides DefaultMaxMessageBytes.
func WithMaxMessageBytes(n int) ChannelOption {
	return func(c *Channel) { c.maxMessageBytes = n }
}

// NewChannel wraps an already-established WebSocket connection (client
// or server side).
func NewChannel(conn *websocket.Conn, opts ...ChannelOption) *Channel {
	c := &Channel{conn: conn, maxMessageBytes: DefaultMaxMessageBytes}
	for _, opt := range opts {
		opt(c)
	}

	c.conn.SetReadLimit(int64(c.maxMessageBytes))

	return c
}

// Read copies bytes from the most recently aggregated data frame into
// buf, reading a new frame from the socket when the previous one has
// been fully drained.
func (c *Channel) Read(call *kernel.CallContext, buf []byte) (int, error) {
	if len(c.pending) == 0 {
		if err := c.fillPending(call); err != nil {
			return 0, err
		}
	}

	n := copy(buf, c.pending)
	c.pending = c.pending[n:]

	return n, nil
}

func (c *Channel) fillPending(call *kernel.CallContext) error {
	if err := applyDeadline(call, c.conn.SetReadDeadline); err != nil {
		return err
	}

	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		return transport.CategorizeError("transport.ws.read_failed", err)
	}

	if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
		return transport.CategorizeError("transport.ws.unsupported_frame", errUnsupportedFrame)
	}

	c.pending = data

	return nil
}

// Write sends buf as a single text data frame (SIP is wire-compatible
// text, so RFC 7118 data frames are sent as TextMessage).
func (c *Channel) Write(call *kernel.CallContext, buf []byte) (int, error) {
	if err := applyDeadline(call, c.conn.SetWriteDeadline); err != nil {
		return 0, err
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, buf); err != nil {
		return 0, transport.CategorizeError("transport.ws.write_failed", err)
	}

	return len(buf), nil
}

// Flush is a no-op: gorilla/websocket writes each message directly to
// the underlying connection.
func (c *Channel) Flush() error { return nil }

// HalfClose sends a WebSocket close frame. WebSocket has no
// half-duplex close distinct from the protocol-level close handshake,
// so any Direction closes the whole connection.
func (c *Channel) HalfClose(_ transport.Direction) error {
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	return c.conn.Close()
}

// PollReady is always Ready: gorilla/websocket serializes writes
// internally and returns an ordinary error rather than a distinct
// backpressure signal when the connection can't keep up.
func (c *Channel) PollReady() kernel.ReadyState { return kernel.Ready() }

func (c *Channel) LocalAddr() net.Addr { return c.conn.LocalAddr() }
func (c *Channel) PeerAddr() net.Addr  { return c.conn.RemoteAddr() }

func applyDeadline(call *kernel.CallContext, set func(time.Time) error) error {
	if !call.Deadline().IsSet() {
		return set(time.Time{})
	}

	remaining := call.Deadline().Remaining(kernel.NewSystemClock().Now())
	if remaining <= 0 {
		return transport.CategorizeError("transport.timeout", errDeadlineElapsed)
	}

	return set(time.Now().Add(remaining))
}
