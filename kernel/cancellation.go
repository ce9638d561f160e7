package kernel

import "sync/atomic"

// Cancellation is an idempotent, shareable cancel flag. Child tokens created
// via Child observe the parent's cancellation without polling it: both
// tokens point at the same underlying flag once cancelled, child tokens also
// carry their own flag so a child can be cancelled without affecting its
// parent or siblings.
type Cancellation struct {
	state  *atomic.Bool
	parent *Cancellation
}

// NewCancellation returns a fresh, uncancelled root token.
func NewCancellation() *Cancellation {
	return &Cancellation{state: new(atomic.Bool)}
}

// Cancel marks the token cancelled. It uses compare-and-swap so the first
// caller to win the race receives true; every subsequent call (on this
// token, and implicitly via IsCancelled on every child) returns false.
func (c *Cancellation) Cancel() bool {
	return c.state.CompareAndSwap(false, true)
}

// IsCancelled reports whether this token or any ancestor has been
// cancelled.
func (c *Cancellation) IsCancelled() bool {
	if c.state.Load() {
		return true
	}

	if c.parent != nil {
		return c.parent.IsCancelled()
	}

	return false
}

// Child derives a token that observes this token's cancellation (and that
// of its own ancestors) in addition to its own. Cancelling a child never
// cancels the parent; cancelling the parent is observed by every
// descendant's IsCancelled.
func (c *Cancellation) Child() *Cancellation {
	return &Cancellation{state: new(atomic.Bool), parent: c}
}
