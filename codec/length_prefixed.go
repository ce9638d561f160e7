package codec

import (
	"encoding/binary"

	"github.com/ezex-io/spark/errors"
	"github.com/ezex-io/spark/kernel"
)

var (
	errBudgetExhausted = errors.New("resource.budget_exhausted",
		"frame encode/decode exceeded the available budget", errors.ResourceExhausted)
	errNotReady = errors.NewRetryable("transport.not_ready",
		"frame encode/decode is backpressured", errors.RetryAdvice{Reason: "awaiting downstream drain"})
)

// LengthPrefixed is a Codec[[]byte, []byte] framing payloads with a
// 4-byte big-endian length prefix, the simplest possible grounding for
// the Codec contract and the baseline every transport-level stream codec
// in this module builds on.
type LengthPrefixed struct {
	descriptor Descriptor
}

// NewLengthPrefixed builds a length-prefixed byte codec under the given
// descriptor name.
func NewLengthPrefixed(name string) *LengthPrefixed {
	return &LengthPrefixed{descriptor: Descriptor{Name: name, ContentType: "application/octet-stream"}}
}

// Descriptor implements Codec.
func (c *LengthPrefixed) Descriptor() Descriptor { return c.descriptor }

// Encode implements Encoder[[]byte]: prefix the payload with its 4-byte
// big-endian length and apply EncodeContext's frame constraints to the
// resulting wire size.
func (c *LengthPrefixed) Encode(item []byte, ctx *EncodeContext) (EncodedPayload, error) {
	total := 4 + len(item)
	if err := ctx.CheckFrameConstraints(total); err != nil {
		return EncodedPayload{}, err
	}

	ready := ctx.ConsumeBudget(kernel.BudgetFlow, int64(total))
	if !ready.IsReady() {
		return EncodedPayload{}, readyStateError(ready)
	}

	out := make([]byte, total)
	binary.BigEndian.PutUint32(out, uint32(len(item)))
	copy(out[4:], item)

	return EncodedPayload{Bytes: out, Descriptor: c.descriptor}, nil
}

// Decode implements Decoder[[]byte]: consumes a complete length-prefixed
// frame from src, or reports Incomplete if src does not yet hold one.
func (c *LengthPrefixed) Decode(src []byte, ctx *DecodeContext) (DecodeOutcome[[]byte], error) {
	if len(src) < 4 {
		return Incomplete[[]byte](), nil
	}

	length := int(binary.BigEndian.Uint32(src))
	if err := ctx.CheckFrameConstraints(4 + length); err != nil {
		return DecodeOutcome[[]byte]{}, err
	}

	if len(src) < 4+length {
		return Incomplete[[]byte](), nil
	}

	ready := ctx.ConsumeBudget(kernel.BudgetDecode, int64(length))
	if !ready.IsReady() {
		return DecodeOutcome[[]byte]{}, readyStateError(ready)
	}

	payload := make([]byte, length)
	copy(payload, src[4:4+length])

	return Complete(payload), nil
}

func readyStateError(state kernel.ReadyState) error {
	if snapshot, ok := state.IsBudgetExhausted(); ok {
		_ = snapshot

		return errBudgetExhausted
	}

	return errNotReady
}
