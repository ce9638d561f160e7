package codec

import (
	"strconv"

	"github.com/ezex-io/spark/errors"
	"github.com/ezex-io/spark/kernel"
)

// FrameLimits bounds the size and nesting depth a single Encode/Decode
// call is allowed to consume, independent of the caller's BudgetSet. They
// exist so one malformed or adversarial frame cannot blow the whole
// connection's budget in a single call.
type FrameLimits struct {
	MaxFrameBytes int
	MaxDepth      int
}

// DefaultFrameLimits mirrors the conservative defaults used across the
// codec test corpus: a generous single-frame ceiling and a shallow nesting
// bound, since SIP/SDP messages are not recursive by nature.
func DefaultFrameLimits() FrameLimits {
	return FrameLimits{MaxFrameBytes: 1 << 20, MaxDepth: 8}
}

func (l FrameLimits) checkSize(n int) error {
	if n > l.MaxFrameBytes {
		return errors.New("protocol.frame_too_large",
			"decoded frame exceeds the configured maximum size",
			errors.ProtocolViolation).
			AddMeta("frame_bytes", strconv.Itoa(n), "max_frame_bytes", strconv.Itoa(l.MaxFrameBytes))
	}

	return nil
}

// EncodeContext threads budget accounting and frame limits through a
// single Encoder.Encode call.
type EncodeContext struct {
	call   *kernel.CallContext
	limits FrameLimits
	depth  int
}

// NewEncodeContext builds an EncodeContext bound to call for budget
// lookups, enforcing limits on every frame the encoder produces.
func NewEncodeContext(call *kernel.CallContext, limits FrameLimits) *EncodeContext {
	return &EncodeContext{call: call, limits: limits}
}

// Call exposes the underlying CallContext, e.g. for cancellation checks.
func (c *EncodeContext) Call() *kernel.CallContext { return c.call }

// CheckFrameConstraints validates a produced frame's size against the
// configured limits before it is handed back to the caller.
func (c *EncodeContext) CheckFrameConstraints(frameBytes int) error {
	return c.limits.checkSize(frameBytes)
}

// EnterFrame returns a scoped guard incrementing the nesting depth for the
// duration of encoding one nested structure; Exit must be called (usually
// via defer) to pop the frame again.
func (c *EncodeContext) EnterFrame() (*FrameGuard, error) {
	if c.depth >= c.limits.MaxDepth {
		return nil, errors.New("protocol.nesting_too_deep",
			"encoder exceeded the configured nesting depth",
			errors.ProtocolViolation).
			AddMeta("max_depth", strconv.Itoa(c.limits.MaxDepth))
	}

	c.depth++

	return &FrameGuard{pop: func() { c.depth-- }}, nil
}

// ConsumeBudget withdraws n units from kind's budget, returning the
// resulting ReadyState so callers can react to backpressure instead of
// failing outright.
func (c *EncodeContext) ConsumeBudget(kind kernel.BudgetKind, n int64) kernel.ReadyState {
	outcome := c.call.Budgets().TryConsume(kind, n)
	if outcome.Ok {
		return kernel.Ready()
	}

	return kernel.BudgetExhaustedState(outcome.Snapshot)
}

// RefundBudget returns n units to kind's budget, e.g. after discarding a
// partially-built frame.
func (c *EncodeContext) RefundBudget(kind kernel.BudgetKind, n int64) {
	c.call.Budgets().Refund(kind, n)
}

// DecodeContext threads budget accounting and frame limits through a
// single Decoder.Decode call.
type DecodeContext struct {
	call   *kernel.CallContext
	limits FrameLimits
	depth  int
}

// NewDecodeContext builds a DecodeContext bound to call for budget
// lookups, enforcing limits on every frame the decoder consumes.
func NewDecodeContext(call *kernel.CallContext, limits FrameLimits) *DecodeContext {
	return &DecodeContext{call: call, limits: limits}
}

// Call exposes the underlying CallContext, e.g. for cancellation checks.
func (c *DecodeContext) Call() *kernel.CallContext { return c.call }

// CheckFrameConstraints validates a candidate frame's size against the
// configured limits before any further parsing work is spent on it.
func (c *DecodeContext) CheckFrameConstraints(frameBytes int) error {
	return c.limits.checkSize(frameBytes)
}

// EnterFrame returns a scoped guard incrementing the nesting depth for the
// duration of decoding one nested structure; Exit must be called (usually
// via defer) to pop the frame again.
func (c *DecodeContext) EnterFrame() (*FrameGuard, error) {
	if c.depth >= c.limits.MaxDepth {
		return nil, errors.New("protocol.nesting_too_deep",
			"decoder exceeded the configured nesting depth",
			errors.ProtocolViolation).
			AddMeta("max_depth", strconv.Itoa(c.limits.MaxDepth))
	}

	c.depth++

	return &FrameGuard{pop: func() { c.depth-- }}, nil
}

// ConsumeBudget withdraws n units from kind's budget, returning the
// resulting ReadyState so callers can react to backpressure instead of
// failing outright.
func (c *DecodeContext) ConsumeBudget(kind kernel.BudgetKind, n int64) kernel.ReadyState {
	outcome := c.call.Budgets().TryConsume(kind, n)
	if outcome.Ok {
		return kernel.Ready()
	}

	return kernel.BudgetExhaustedState(outcome.Snapshot)
}

// RefundBudget returns n units to kind's budget, e.g. after discovering a
// decoded frame was incomplete and the consumed bytes must be re-read.
func (c *DecodeContext) RefundBudget(kind kernel.BudgetKind, n int64) {
	c.call.Budgets().Refund(kind, n)
}

// FrameGuard pops a nesting-depth increment when closed. Always call Exit,
// typically via defer, immediately after a successful EnterFrame.
type FrameGuard struct {
	pop  func()
	done bool
}

// Exit pops the frame. Calling Exit more than once is a no-op.
func (g *FrameGuard) Exit() {
	if g.done {
		return
	}

	g.done = true
	g.pop()
}
