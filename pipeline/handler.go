package pipeline

import (
	"github.com/ezex-io/spark/buffer"
	"github.com/ezex-io/spark/kernel"
)

// InboundHandler reacts to events flowing head-to-tail through a
// channel's handler chain: activation, reads, read-complete batching
// boundaries, writability changes, user events, exceptions, and
// deactivation (spec §4.3).
type InboundHandler interface {
	OnChannelActive(ctx *HandlerContext)
	OnRead(ctx *HandlerContext, msg buffer.PipelineMessage)
	OnReadComplete(ctx *HandlerContext)
	OnWritabilityChanged(ctx *HandlerContext, writable bool)
	OnUserEvent(ctx *HandlerContext, event any)
	OnExceptionCaught(ctx *HandlerContext, err error)
	OnChannelInactive(ctx *HandlerContext)
}

// OutboundHandler reacts to outbound operations flowing tail-to-head:
// writes, flushes, and graceful-close requests (spec §4.3).
type OutboundHandler interface {
	OnWrite(ctx *HandlerContext, msg buffer.PipelineMessage) WriteSignal
	OnFlush(ctx *HandlerContext)
	OnCloseGraceful(ctx *HandlerContext, deadline kernel.Deadline)
}

// HandlerContext is the per-event handle a handler uses to propagate an
// event further along the chain, or to reach the channel's shared
// extensions map.
type HandlerContext struct {
	channel *Channel
	index   int
	chain   *chainSnapshot
}

// FireChannelActive propagates OnChannelActive to the next inbound
// handler in the chain, if any.
func (c *HandlerContext) FireChannelActive() {
	if h, next, ok := c.chain.nextInbound(c.index); ok {
		h.OnChannelActive(&HandlerContext{channel: c.channel, index: next, chain: c.chain})
	}
}

// FireRead propagates OnRead to the next inbound handler.
func (c *HandlerContext) FireRead(msg buffer.PipelineMessage) {
	if h, next, ok := c.chain.nextInbound(c.index); ok {
		h.OnRead(&HandlerContext{channel: c.channel, index: next, chain: c.chain}, msg)
	}
}

// FireReadComplete propagates OnReadComplete to the next inbound handler.
func (c *HandlerContext) FireReadComplete() {
	if h, next, ok := c.chain.nextInbound(c.index); ok {
		h.OnReadComplete(&HandlerContext{channel: c.channel, index: next, chain: c.chain})
	}
}

// FireWritabilityChanged propagates OnWritabilityChanged to the next
// inbound handler.
func (c *HandlerContext) FireWritabilityChanged(writable bool) {
	if h, next, ok := c.chain.nextInbound(c.index); ok {
		h.OnWritabilityChanged(&HandlerContext{channel: c.channel, index: next, chain: c.chain}, writable)
	}
}

// FireUserEvent propagates OnUserEvent to the next inbound handler.
func (c *HandlerContext) FireUserEvent(event any) {
	if h, next, ok := c.chain.nextInbound(c.index); ok {
		h.OnUserEvent(&HandlerContext{channel: c.channel, index: next, chain: c.chain}, event)
	}
}

// FireExceptionCaught propagates OnExceptionCaught to the next inbound
// handler.
func (c *HandlerContext) FireExceptionCaught(err error) {
	if h, next, ok := c.chain.nextInbound(c.index); ok {
		h.OnExceptionCaught(&HandlerContext{channel: c.channel, index: next, chain: c.chain}, err)
	}
}

// FireChannelInactive propagates OnChannelInactive to the next inbound
// handler.
func (c *HandlerContext) FireChannelInactive() {
	if h, next, ok := c.chain.nextInbound(c.index); ok {
		h.OnChannelInactive(&HandlerContext{channel: c.channel, index: next, chain: c.chain})
	}
}

// FireWrite propagates OnWrite to the next outbound handler in the
// chain, returning Accepted if there is none (the write reached the
// head uneventfully).
func (c *HandlerContext) FireWrite(msg buffer.PipelineMessage) WriteSignal {
	if h, next, ok := c.chain.nextOutbound(c.index); ok {
		return h.OnWrite(&HandlerContext{channel: c.channel, index: next, chain: c.chain}, msg)
	}

	return Accepted
}

// FireFlush propagates OnFlush to the next outbound handler.
func (c *HandlerContext) FireFlush() {
	if h, next, ok := c.chain.nextOutbound(c.index); ok {
		h.OnFlush(&HandlerContext{channel: c.channel, index: next, chain: c.chain})
	}
}

// FireCloseGraceful propagates OnCloseGraceful to the next outbound
// handler.
func (c *HandlerContext) FireCloseGraceful(deadline kernel.Deadline) {
	if h, next, ok := c.chain.nextOutbound(c.index); ok {
		h.OnCloseGraceful(&HandlerContext{channel: c.channel, index: next, chain: c.chain}, deadline)
	}
}

// Extensions returns the channel's shared cross-handler state store.
func (c *HandlerContext) Extensions() *Extensions {
	return c.channel.extensions
}

// Channel returns the owning channel, e.g. to call WriteAndFlush from a
// handler reacting to an inbound event.
func (c *HandlerContext) Channel() *Channel {
	return c.channel
}
