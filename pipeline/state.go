package pipeline

import "sync/atomic"

// ChannelState is the channel's lifecycle state. Transitions are
// monotonic: Active → Draining → Closed. Closed is terminal (spec §4.3
// "graceful shutdown").
type ChannelState int32

const (
	StateActive ChannelState = iota
	StateDraining
	StateClosed
)

func (s ChannelState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// channelStateBox guards the monotonic Active→Draining→Closed transition
// with CAS so concurrent callers racing to drain or close cannot move the
// state backward.
type channelStateBox struct {
	value atomic.Int32
}

func (b *channelStateBox) load() ChannelState {
	return ChannelState(b.value.Load())
}

// advanceTo attempts to move the state forward to target, refusing any
// transition that would not strictly increase the state ordinal. Returns
// true if this call performed the transition.
func (b *channelStateBox) advanceTo(target ChannelState) bool {
	for {
		cur := ChannelState(b.value.Load())
		if target <= cur {
			return false
		}

		if b.value.CompareAndSwap(int32(cur), int32(target)) {
			return true
		}
	}
}
