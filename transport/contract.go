// Package transport defines the Listener/Channel contract every concrete
// transport (tcp, udp, ws, tls, quic) implements, plus the shared error
// categorization and poll_ready backpressure mapping rules common to all
// of them (spec §4.4).
package transport

import (
	"net"

	"github.com/ezex-io/spark/kernel"
)

// Direction selects which half of a duplex stream a shutdown applies to.
type Direction int

const (
	DirectionRead Direction = iota
	DirectionWrite
	DirectionBoth
)

// Listener binds to a local address and accepts inbound channels,
// honoring the supplied CallContext on every accept wait.
type Listener interface {
	// Accept blocks until a peer connects, the CallContext is cancelled,
	// or its deadline passes. On cancellation it fails with
	// "transport.cancelled"; on deadline it fails with "transport.timeout".
	Accept(call *kernel.CallContext) (Channel, net.Addr, error)

	// Addr returns the address this listener is bound to.
	Addr() net.Addr

	// Shutdown closes the given direction(s) of the listener.
	Shutdown(call *kernel.CallContext, direction Direction) error
}

// Channel is a duplex byte stream abstraction over a single connection.
type Channel interface {
	// Read honors the CallContext's cancellation/deadline at the I/O wait
	// boundary.
	Read(call *kernel.CallContext, buf []byte) (int, error)

	// Write honors the CallContext the same way Read does.
	Write(call *kernel.CallContext, buf []byte) (int, error)

	// Flush forces any buffered writes out to the wire, if the
	// implementation buffers at all.
	Flush() error

	// HalfClose closes one or both directions without destroying the
	// underlying file descriptor until both directions are closed.
	HalfClose(direction Direction) error

	// PollReady maps this channel's current backpressure state into a
	// kernel.ReadyState per the §4.4 poll_ready rules.
	PollReady() kernel.ReadyState

	LocalAddr() net.Addr
	PeerAddr() net.Addr
}
