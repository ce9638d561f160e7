package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/ezex-io/spark/buffer"
	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/logger"
)

// Channel owns one connection's handler chain, extensions map, and
// lifecycle state, and is the unit hot-swap/hot-reload operates on (spec
// §4.3). It does not itself own a socket; transport implementations embed
// or wrap a Channel to drive its Fire*/Write entrypoints.
type Channel struct {
	name       string
	chain      *Chain
	extensions *Extensions
	state      channelStateBox
	call       *kernel.CallContext
	clock      kernel.Clock

	inbox           Queue[buffer.PipelineMessage]
	inboxBufferSize int

	mu            sync.Mutex
	flowControlOn bool
}

// ChannelOption configures Channel construction.
type ChannelOption func(*Channel)

// WithChannelName sets the channel's identifier for logging.
func WithChannelName(name string) ChannelOption {
	return func(c *Channel) { c.name = name }
}

// WithClock overrides the Clock used to resolve CloseGraceful deadlines;
// deadlines passed to this channel must originate from the same clock
// domain. Defaults to a fresh kernel.SystemClock.
func WithClock(clock kernel.Clock) ChannelOption {
	return func(c *Channel) { c.clock = clock }
}

// WithInboxBufferSize overrides the inbound queue's buffer capacity
// (defaultBufferSize otherwise). A smaller capacity makes PollReady
// escalate to Busy(QueueFull) sooner under a slow handler chain.
func WithInboxBufferSize(size int) ChannelOption {
	return func(c *Channel) { c.inboxBufferSize = size }
}

// NewChannel builds a Channel bound to call for budget/cancellation
// tracking, with an empty handler chain ready for AddInbound/AddOutbound.
func NewChannel(ctx context.Context, call *kernel.CallContext, opts ...ChannelOption) *Channel {
	c := &Channel{
		chain:           NewChain(),
		extensions:      NewExtensions(),
		call:            call,
		clock:           kernel.NewSystemClock(),
		inboxBufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.inbox = NewQueue[buffer.PipelineMessage](ctx, WithName(c.name+".inbox"), WithBufferSize(c.inboxBufferSize))
	c.inbox.RegisterReceiver(func(msg buffer.PipelineMessage) {
		c.dispatchRead(msg)
	})

	return c
}

// Name returns the channel's identifier.
func (c *Channel) Name() string { return c.name }

// State returns the current lifecycle state.
func (c *Channel) State() ChannelState { return c.state.load() }

// CallContext returns the channel's bound CallContext.
func (c *Channel) CallContext() *kernel.CallContext { return c.call }

// Extensions returns the channel's shared cross-handler state store.
func (c *Channel) Extensions() *Extensions { return c.extensions }

// AddInboundLast appends an inbound handler at the tail position,
// publishing a new chain snapshot (hot-swap safe).
func (c *Channel) AddInboundLast(name string, handler InboundHandler) {
	c.chain.AddLastInbound(name, handler)
}

// AddOutboundLast appends an outbound handler, publishing a new chain
// snapshot (hot-swap safe).
func (c *Channel) AddOutboundLast(name string, handler OutboundHandler) {
	c.chain.AddLastOutbound(name, handler)
}

// RemoveHandler removes the inbound and/or outbound handler registered
// under name, publishing a new chain snapshot. Reports whether anything
// was removed.
func (c *Channel) RemoveHandler(name string) bool {
	removedIn := c.chain.RemoveInbound(name)
	removedOut := c.chain.RemoveOutbound(name)

	return removedIn || removedOut
}

// ReplaceInboundHandler swaps the handler at name for replacement
// (hot-swap), leaving every other position untouched.
func (c *Channel) ReplaceInboundHandler(name string, replacement InboundHandler) bool {
	return c.chain.ReplaceInbound(name, replacement)
}

// FireChannelActive begins inbound dispatch of channel activation from
// the head of the live chain snapshot.
func (c *Channel) FireChannelActive() {
	snap := c.chain.Snapshot()
	if len(snap.inbound) == 0 {
		return
	}

	snap.inbound[0].handler.OnChannelActive(&HandlerContext{channel: c, index: 0, chain: snap})
}

// FireRead enqueues msg for asynchronous inbound dispatch via the
// channel's internal inbox, decoupling the transport's read loop from
// handler processing time.
func (c *Channel) FireRead(msg buffer.PipelineMessage) {
	c.inbox.Send(msg)
}

func (c *Channel) dispatchRead(msg buffer.PipelineMessage) {
	snap := c.chain.Snapshot()
	if len(snap.inbound) == 0 {
		return
	}

	snap.inbound[0].handler.OnRead(&HandlerContext{channel: c, index: 0, chain: snap}, msg)
}

// FireReadComplete signals the end of one batch of reads.
func (c *Channel) FireReadComplete() {
	snap := c.chain.Snapshot()
	if len(snap.inbound) == 0 {
		return
	}

	snap.inbound[0].handler.OnReadComplete(&HandlerContext{channel: c, index: 0, chain: snap})
}

// FireWritabilityChanged notifies the chain that the transport's
// writability flipped, re-enabling flow when writable becomes true (spec
// §4.3 "Backpressure propagation").
func (c *Channel) FireWritabilityChanged(writable bool) {
	c.mu.Lock()
	c.flowControlOn = !writable
	c.mu.Unlock()

	snap := c.chain.Snapshot()
	if len(snap.inbound) == 0 {
		return
	}

	snap.inbound[0].handler.OnWritabilityChanged(&HandlerContext{channel: c, index: 0, chain: snap}, writable)
}

// FireUserEvent propagates an implementation-defined event through the
// inbound chain.
func (c *Channel) FireUserEvent(event any) {
	snap := c.chain.Snapshot()
	if len(snap.inbound) == 0 {
		return
	}

	snap.inbound[0].handler.OnUserEvent(&HandlerContext{channel: c, index: 0, chain: snap}, event)
}

// FireExceptionCaught propagates an error through the inbound chain.
func (c *Channel) FireExceptionCaught(err error) {
	snap := c.chain.Snapshot()
	if len(snap.inbound) == 0 {
		logger.Error("unhandled channel exception", "name", c.name, "error", err)

		return
	}

	snap.inbound[0].handler.OnExceptionCaught(&HandlerContext{channel: c, index: 0, chain: snap}, err)
}

// FireChannelInactive propagates channel deactivation through the
// inbound chain.
func (c *Channel) FireChannelInactive() {
	snap := c.chain.Snapshot()
	if len(snap.inbound) == 0 {
		return
	}

	snap.inbound[0].handler.OnChannelInactive(&HandlerContext{channel: c, index: 0, chain: snap})
}

// Write dispatches msg through the outbound chain from its first
// position, returning the last non-Accepted-and-unflushed signal any
// handler reported. A FlowControlApplied result from any handler marks
// the channel as flow-controlled until the next FireWritabilityChanged(true).
func (c *Channel) Write(msg buffer.PipelineMessage) WriteSignal {
	snap := c.chain.Snapshot()
	if len(snap.outbound) == 0 {
		return Accepted
	}

	signal := snap.outbound[0].handler.OnWrite(&HandlerContext{channel: c, index: 0, chain: snap}, msg)
	if signal == FlowControlApplied {
		c.mu.Lock()
		c.flowControlOn = true
		c.mu.Unlock()
	}

	return signal
}

// Flush dispatches an explicit flush through the outbound chain.
func (c *Channel) Flush() {
	snap := c.chain.Snapshot()
	if len(snap.outbound) == 0 {
		return
	}

	snap.outbound[0].handler.OnFlush(&HandlerContext{channel: c, index: 0, chain: snap})
}

// PollReady reports the channel's current backpressure state, combining
// explicit flow-control signals from Write with the inbox queue's own
// depth (spec §4.3 "Backpressure propagation"): a full inbox means
// inbound reads are outpacing the handler chain, which the transport's
// read loop must throttle on just as it would a downstream Write signal.
func (c *Channel) PollReady() kernel.ReadyState {
	if c.State() == StateClosed {
		return kernel.Busy(kernel.BusyCustom("closed"))
	}

	c.mu.Lock()
	flowOn := c.flowControlOn
	c.mu.Unlock()

	if flowOn {
		return kernel.Busy(kernel.BusyDownstream())
	}

	if depth, capacity := c.inbox.Len(), c.inbox.Cap(); capacity > 0 && depth >= capacity {
		return kernel.Busy(kernel.QueueFull(depth, capacity))
	}

	return kernel.Ready()
}

// CloseGraceful transitions Active→Draining, asks every outbound handler
// to drain within deadline (tail-to-head, each handler propagating via
// HandlerContext.FireCloseGraceful), and falls through to an immediate
// Close if the deadline elapses before draining completes (spec §4.3
// "Graceful shutdown").
func (c *Channel) CloseGraceful(deadline kernel.Deadline) {
	if !c.state.advanceTo(StateDraining) {
		return
	}

	snap := c.chain.Snapshot()

	done := make(chan struct{})

	go func() {
		defer close(done)

		if len(snap.outbound) == 0 {
			return
		}

		snap.outbound[0].handler.OnCloseGraceful(&HandlerContext{channel: c, index: 0, chain: snap}, deadline)
	}()

	wait := drainTimeout(deadline, c.clock)

	select {
	case <-done:
	case <-time.After(wait):
		logger.Warn("graceful close deadline elapsed, closing immediately", "name", c.name)
	}

	c.Close()
}

func drainTimeout(deadline kernel.Deadline, clock kernel.Clock) time.Duration {
	if !deadline.IsSet() {
		return 24 * time.Hour
	}

	return deadline.Remaining(clock.Now())
}

// Close transitions the channel to Closed immediately, idempotently. The
// transition is monotonic: once Closed, further calls are no-ops.
func (c *Channel) Close() {
	if !c.state.advanceTo(StateClosed) {
		return
	}

	c.inbox.Close()
	c.FireChannelInactive()
}
