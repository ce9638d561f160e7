package pipeline

import "sync/atomic"

// namedInbound and namedOutbound pair a handler with the name it was
// registered under, so AddBefore/AddAfter/Replace/Remove can address
// positions by name.
type namedInbound struct {
	name    string
	handler InboundHandler
}

type namedOutbound struct {
	name    string
	handler OutboundHandler
}

// chainSnapshot is an immutable handler-chain view. Dispatching one event
// against a snapshot guarantees it observes a single consistent chain for
// the duration of that event, even if a concurrent mutation publishes a
// new snapshot mid-dispatch (spec §4.3 "events in flight complete against
// the snapshot they started with").
type chainSnapshot struct {
	epoch    uint64
	inbound  []namedInbound
	outbound []namedOutbound // tail-to-head order: index 0 is the tail
}

func (s *chainSnapshot) nextInbound(afterIndex int) (InboundHandler, int, bool) {
	next := afterIndex + 1
	if next >= len(s.inbound) {
		return nil, 0, false
	}

	return s.inbound[next].handler, next, true
}

func (s *chainSnapshot) nextOutbound(afterIndex int) (OutboundHandler, int, bool) {
	next := afterIndex + 1
	if next >= len(s.outbound) {
		return nil, 0, false
	}

	return s.outbound[next].handler, next, true
}

func (s *chainSnapshot) clone() *chainSnapshot {
	cp := &chainSnapshot{epoch: s.epoch}
	cp.inbound = append(cp.inbound, s.inbound...)
	cp.outbound = append(cp.outbound, s.outbound...)

	return cp
}

// Chain owns the atomically-swapped pointer to the live chainSnapshot,
// the ArcSwap-style mechanism backing hot-swap and hot-reload (spec
// §4.3). Every mutation method publishes a brand new snapshot with an
// incremented epoch rather than mutating the live one in place.
type Chain struct {
	ptr atomic.Pointer[chainSnapshot]
}

// NewChain builds an empty Chain at epoch 0.
func NewChain() *Chain {
	c := &Chain{}
	c.ptr.Store(&chainSnapshot{})

	return c
}

// Snapshot returns the currently live chain snapshot.
func (c *Chain) Snapshot() *chainSnapshot { return c.ptr.Load() }

// Epoch returns the live snapshot's mutation epoch.
func (c *Chain) Epoch() uint64 { return c.ptr.Load().epoch }

// AddLastInbound appends an inbound handler at the tail of the inbound
// order (the position an event reaches last), publishing a new snapshot.
func (c *Chain) AddLastInbound(name string, handler InboundHandler) {
	c.mutate(func(next *chainSnapshot) {
		next.inbound = append(next.inbound, namedInbound{name: name, handler: handler})
	})
}

// AddLastOutbound appends an outbound handler at the head of the
// tail-to-head outbound order (the position a write reaches last on its
// way out), publishing a new snapshot.
func (c *Chain) AddLastOutbound(name string, handler OutboundHandler) {
	c.mutate(func(next *chainSnapshot) {
		next.outbound = append(next.outbound, namedOutbound{name: name, handler: handler})
	})
}

// RemoveInbound removes the inbound handler registered under name, if
// any, publishing a new snapshot. Reports whether a handler was removed.
func (c *Chain) RemoveInbound(name string) bool {
	removed := false

	c.mutate(func(next *chainSnapshot) {
		out := next.inbound[:0]

		for _, h := range next.inbound {
			if h.name == name {
				removed = true

				continue
			}

			out = append(out, h)
		}

		next.inbound = out
	})

	return removed
}

// RemoveOutbound removes the outbound handler registered under name, if
// any, publishing a new snapshot. Reports whether a handler was removed.
func (c *Chain) RemoveOutbound(name string) bool {
	removed := false

	c.mutate(func(next *chainSnapshot) {
		out := next.outbound[:0]

		for _, h := range next.outbound {
			if h.name == name {
				removed = true

				continue
			}

			out = append(out, h)
		}

		next.outbound = out
	})

	return removed
}

// ReplaceInbound swaps the handler registered under name for replacement,
// publishing a new snapshot. Reports whether a handler was replaced.
func (c *Chain) ReplaceInbound(name string, replacement InboundHandler) bool {
	replaced := false

	c.mutate(func(next *chainSnapshot) {
		for i, h := range next.inbound {
			if h.name == name {
				next.inbound[i].handler = replacement
				replaced = true

				break
			}
		}
	})

	return replaced
}

// mutate clones the live snapshot, applies fn, increments the epoch, and
// atomically publishes the result. Mutations are serialized by CAS retry
// rather than a mutex, matching the lock-free ArcSwap pattern the spec
// calls for.
func (c *Chain) mutate(fn func(next *chainSnapshot)) {
	for {
		cur := c.ptr.Load()
		next := cur.clone()
		fn(next)
		next.epoch = cur.epoch + 1

		if c.ptr.CompareAndSwap(cur, next) {
			return
		}
	}
}
