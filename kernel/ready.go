package kernel

import "time"

// BusyReason explains why a component reported ReadyState Busy.
type BusyReason struct {
	tag   string
	depth int
	cap_  int
}

// QueueFull reports that an internal queue has filled to capacity.
func QueueFull(depth, capacity int) BusyReason {
	return BusyReason{tag: "queue_full", depth: depth, cap_: capacity}
}

// BusyDownstream reports that a downstream collaborator is applying
// backpressure.
func BusyDownstream() BusyReason { return BusyReason{tag: "downstream"} }

// BusyUpstream reports that an upstream collaborator has not yet supplied
// enough data or demand.
func BusyUpstream() BusyReason { return BusyReason{tag: "upstream"} }

// BusyCustom reports an implementation-defined busy reason, tagged for
// observability.
func BusyCustom(tag string) BusyReason { return BusyReason{tag: tag} }

// Tag returns the reason's stable label.
func (r BusyReason) Tag() string { return r.tag }

// QueueDepth returns the observed depth/capacity pair for a QueueFull
// reason; both are zero for any other reason.
func (r BusyReason) QueueDepth() (depth, capacity int) { return r.depth, r.cap_ }

// RetryAdvice suggests a minimum wait before the next poll_ready, with an
// optional human-readable reason.
type RetryAdvice struct {
	After  time.Duration
	Reason string
}

// readyKind discriminates the ReadyState sum type.
type readyKind int

const (
	readyKindReady readyKind = iota
	readyKindBusy
	readyKindBudgetExhausted
	readyKindRetryAfter
)

// ReadyState is the backpressure signal returned by poll_ready: Ready, Busy,
// BudgetExhausted, or RetryAfter (spec §3, §5).
type ReadyState struct {
	kind     readyKind
	busy     BusyReason
	budget   BudgetSnapshot
	retry    RetryAdvice
}

// Ready is the signal that the caller may proceed.
func Ready() ReadyState { return ReadyState{kind: readyKindReady} }

// Busy signals transient backpressure for the given reason.
func Busy(reason BusyReason) ReadyState { return ReadyState{kind: readyKindBusy, busy: reason} }

// BudgetExhaustedState signals that a budget must be refunded before
// proceeding (distinguished from Busy per spec §9: "budgets are a subset of
// backpressure").
func BudgetExhaustedState(snapshot BudgetSnapshot) ReadyState {
	return ReadyState{kind: readyKindBudgetExhausted, budget: snapshot}
}

// RetryAfterState signals the caller should wait at least advice.After
// before polling again.
func RetryAfterState(advice RetryAdvice) ReadyState {
	return ReadyState{kind: readyKindRetryAfter, retry: advice}
}

// IsReady reports whether the state is Ready.
func (s ReadyState) IsReady() bool { return s.kind == readyKindReady }

// IsBusy reports whether the state is Busy, returning the reason.
func (s ReadyState) IsBusy() (BusyReason, bool) {
	return s.busy, s.kind == readyKindBusy
}

// IsBudgetExhausted reports whether the state is BudgetExhausted, returning
// the snapshot.
func (s ReadyState) IsBudgetExhausted() (BudgetSnapshot, bool) {
	return s.budget, s.kind == readyKindBudgetExhausted
}

// IsRetryAfter reports whether the state is RetryAfter, returning the
// advice.
func (s ReadyState) IsRetryAfter() (RetryAdvice, bool) {
	return s.retry, s.kind == readyKindRetryAfter
}

func (s ReadyState) String() string {
	switch s.kind {
	case readyKindReady:
		return "ready"
	case readyKindBusy:
		return "busy(" + s.busy.tag + ")"
	case readyKindBudgetExhausted:
		return "budget_exhausted(" + s.budget.Kind.String() + ")"
	case readyKindRetryAfter:
		return "retry_after(" + s.retry.After.String() + ")"
	default:
		return "unknown"
	}
}

// ReadyCheck is the outcome of a poll_ready call: either a resolved
// ReadyState, or Pending (the caller must wait for a wakeup).
type ReadyCheck struct {
	state   ReadyState
	pending bool
}

// ReadyNow wraps a resolved ReadyState.
func ReadyNow(state ReadyState) ReadyCheck { return ReadyCheck{state: state} }

// Pending reports that no state is available yet; the implementation must
// have registered a waker before returning this (spec §4.1 poll_ready
// contract).
func Pending() ReadyCheck { return ReadyCheck{pending: true} }

// IsPending reports whether the check resolved to Pending.
func (c ReadyCheck) IsPending() bool { return c.pending }

// State returns the resolved ReadyState; only valid when IsPending is
// false.
func (c ReadyCheck) State() ReadyState { return c.state }
