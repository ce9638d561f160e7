// Package tcp implements transport.Listener/transport.Channel over
// net.TCPListener/net.TCPConn (spec §4.4).
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/retry"
	"github.com/ezex-io/spark/transport"
)

const dialMaxAttempts = 3

var dialRetryBackoff = retry.FixedBackoff(10 * time.Millisecond)

var errUnexpectedConnType = errors.New("tcp: dialer returned a non-TCP connection")

const cancellationPollInterval = 5 * time.Millisecond

// Listener wraps a *net.TCPListener, honoring CallContext cancellation
// and deadlines on Accept.
type Listener struct {
	ln *net.TCPListener
}

// Listen binds addr (host:port) as a TCP listener.
func Listen(addr string) (*Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, transport.CategorizeError("transport.tcp.bind_failed", err)
	}

	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, transport.CategorizeError("transport.tcp.bind_failed", err)
	}

	return &Listener{ln: ln}, nil
}

// Accept blocks until a peer connects, call is cancelled, or its
// deadline elapses. A cancellation or timeout abandons (but does not
// close) the in-flight accept; it is discarded when it eventually
// resolves.
func (l *Listener) Accept(call *kernel.CallContext) (transport.Channel, net.Addr, error) {
	type result struct {
		conn *net.TCPConn
		err  error
	}

	resultCh := make(chan result, 1)

	go func() {
		conn, err := l.ln.AcceptTCP()
		resultCh <- result{conn: conn, err: err}
	}()

	ticker := time.NewTicker(cancellationPollInterval)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			if res.err != nil {
				return nil, nil, transport.CategorizeError("transport.tcp.accept_failed", res.err)
			}

			return NewChannel(res.conn), res.conn.RemoteAddr(), nil
		case <-ticker.C:
			if call.Cancellation().IsCancelled() {
				return nil, nil, transport.CategorizeError("transport.cancelled", context.Canceled)
			}

			if call.Deadline().IsSet() && call.Deadline().IsExpired(kernel.NewSystemClock().Now()) {
				return nil, nil, transport.CategorizeError("transport.timeout", context.DeadlineExceeded)
			}
		}
	}
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Shutdown closes the listening socket. TCP listeners have no meaningful
// half-close, so any Direction closes the whole listener.
func (l *Listener) Shutdown(_ *kernel.CallContext, _ transport.Direction) error {
	return l.ln.Close()
}

// Channel wraps a *net.TCPConn as a transport.Channel, tracking
// WouldBlock streaks and write-lock contention per the spec's poll_ready
// rules.
type Channel struct {
	conn *net.TCPConn

	writeMu   sync.Mutex
	tracker   *transport.WouldBlockTracker
	lastReady atomic.Pointer[kernel.ReadyState]
}

// NewChannel wraps an already-accepted/dialed *net.TCPConn.
func NewChannel(conn *net.TCPConn) *Channel {
	return &Channel{conn: conn, tracker: transport.NewWouldBlockTracker(kernel.NewSystemClock())}
}

// Dial connects to addr and wraps the resulting connection, honoring
// call's deadline. A dial attempt categorized Retryable (e.g. transient
// EADDRINUSE under rapid reconnect churn) is retried up to
// dialMaxAttempts times within the remaining deadline before giving up.
func Dial(call *kernel.CallContext, addr string) (*Channel, error) {
	ctx := context.Background()

	if call.Deadline().IsSet() {
		remaining := call.Deadline().Remaining(kernel.NewSystemClock().Now())

		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, remaining)
		defer cancel()
	}

	var channel *Channel

	attempt := func() error {
		conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return transport.CategorizeError("transport.tcp.dial_failed", err)
		}

		tcpConn, ok := conn.(*net.TCPConn)
		if !ok {
			_ = conn.Close()

			return transport.CategorizeError("transport.tcp.dial_failed", errUnexpectedConnType)
		}

		channel = NewChannel(tcpConn)

		return nil
	}

	err := retry.ExecuteSyncWithPredicate(ctx, attempt, retry.RetryableSparkError,
		retry.WithMaxAttempts(dialMaxAttempts), retry.WithBackoffStrategy(dialRetryBackoff))
	if err != nil {
		return nil, err
	}

	return channel, nil
}

// Read honors call's cancellation/deadline at the I/O wait boundary.
func (c *Channel) Read(call *kernel.CallContext, buf []byte) (int, error) {
	if err := c.applyDeadline(call, c.conn.SetReadDeadline); err != nil {
		return 0, err
	}

	n, err := c.conn.Read(buf)
	if err != nil {
		return n, transport.CategorizeError("transport.tcp.read_failed", err)
	}

	return n, nil
}

// Write honors call the same way Read does, tracking WouldBlock streaks
// for PollReady. Returns (0, nil) if another write is already in flight,
// matching poll_ready's "Busy(writer_held)" signal rather than blocking.
func (c *Channel) Write(call *kernel.CallContext, buf []byte) (int, error) {
	if !c.writeMu.TryLock() {
		return 0, nil
	}
	defer c.writeMu.Unlock()

	if err := c.applyDeadline(call, c.conn.SetWriteDeadline); err != nil {
		return 0, err
	}

	n, err := c.conn.Write(buf)
	if err != nil {
		state := c.tracker.Observe()
		c.lastReady.Store(&state)

		return n, transport.CategorizeError("transport.tcp.write_failed", err)
	}

	c.tracker.Reset()
	c.lastReady.Store(nil)

	return n, nil
}

// Flush is a no-op: net.TCPConn has no userspace write buffer.
func (c *Channel) Flush() error { return nil }

// HalfClose closes one or both directions of the connection.
func (c *Channel) HalfClose(direction transport.Direction) error {
	switch direction {
	case transport.DirectionRead:
		return c.conn.CloseRead()
	case transport.DirectionWrite:
		return c.conn.CloseWrite()
	default:
		return c.conn.Close()
	}
}

// PollReady reports Busy(writer_held) if a write is in flight, the last
// WouldBlock escalation the tracker computed if one is outstanding
// (spec §4.4), otherwise Ready.
func (c *Channel) PollReady() kernel.ReadyState {
	if !c.writeMu.TryLock() {
		return transport.WriterLockBusy()
	}
	defer c.writeMu.Unlock()

	if state := c.lastReady.Load(); state != nil {
		return *state
	}

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
