// Package udp implements the connectionless transport.Channel-adjacent
// contract over net.UDPConn, plus the RFC 3581 rport rewrite SIP needs
// to survive NAT (spec §4.4 "UDP / SIP-over-UDP specifics").
package udp

import (
	"net"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/transport"
)

// InboundMeta describes where a datagram came from.
type InboundMeta struct {
	PeerAddr *net.UDPAddr
}

// OutboundMeta describes where a datagram should go and how its SIP
// payload's rport parameter should be rewritten before sending.
type OutboundMeta struct {
	PeerAddr *net.UDPAddr

	// RewriteRPort, when true, fills a bare "rport" parameter in the
	// first Via header with ObservedPort.
	RewriteRPort bool
	ObservedPort int
}

// Endpoint wraps a *net.UDPConn, exposing recv_from/send_to per spec
// §4.4 rather than the stream-oriented Read/Write transport.Channel
// shape: datagrams have no connection lifecycle to half-close.
type Endpoint struct {
	conn *net.UDPConn
}

// Listen binds a UDP socket at addr.
func Listen(addr string) (*Endpoint, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, transport.CategorizeError("transport.udp.bind_failed", err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, transport.CategorizeError("transport.udp.bind_failed", err)
	}

	return &Endpoint{conn: conn}, nil
}

// Addr returns the endpoint's bound address.
func (e *Endpoint) Addr() net.Addr { return e.conn.LocalAddr() }

// Shutdown closes the socket. UDP has no read/write half-close at the
// kernel level, so any Direction closes the whole endpoint.
func (e *Endpoint) Shutdown(_ *kernel.CallContext, _ transport.Direction) error {
	return e.conn.Close()
}

// RecvFrom reads one datagram, applying call's deadline to the read
// wait, and reports the peer address the response path needs for
// rport rewriting.
func (e *Endpoint) RecvFrom(call *kernel.CallContext, buf []byte) (int, InboundMeta, error) {
	if call.Cancellation().IsCancelled() {
		return 0, InboundMeta{}, transport.CategorizeError("transport.cancelled", errCancelled)
	}

	if err := applyReadDeadline(call, e.conn); err != nil {
		return 0, InboundMeta{}, err
	}

	n, peer, err := e.conn.ReadFromUDP(buf)
	if err != nil {
		return n, InboundMeta{}, transport.CategorizeError("transport.udp.recv_failed", err)
	}

	return n, InboundMeta{PeerAddr: peer}, nil
}

// SendTo writes payload to meta.PeerAddr, rewriting a bare rport
// parameter in the first Via header first when meta.RewriteRPort is
// set.
func (e *Endpoint) SendTo(call *kernel.CallContext, payload []byte, meta OutboundMeta) (int, error) {
	if call.Cancellation().IsCancelled() {
		return 0, transport.CategorizeError("transport.cancelled", errCancelled)
	}

	if err := applyWriteDeadline(call, e.conn); err != nil {
		return 0, err
	}

	out := payload
	if meta.RewriteRPort {
		out = RewriteBareRPort(payload, meta.ObservedPort)
	}

	n, err := e.conn.WriteToUDP(out, meta.PeerAddr)
	if err != nil {
		return n, transport.CategorizeError("transport.udp.send_failed", err)
	}

	return n, nil
}

// PollReady is always Ready: UDP sends never block the caller past the
// kernel's own send-buffer admission, which surfaces as a normal error
// from SendTo rather than a distinct backpressure signal.
func (e *Endpoint) PollReady() kernel.ReadyState { return kernel.Ready() }
