package kernel

import (
	"sync"
	"sync/atomic"
)

// BudgetKind names a consumable resource tracked by a CallContext. Flow and
// Decode are well-known kinds; Custom kinds share a single name reference
// across every snapshot derived from the same Budget so equality can be
// checked cheaply.
type BudgetKind struct {
	name string
}

// Well-known budget kinds.
var (
	BudgetFlow   = BudgetKind{name: "flow"}
	BudgetDecode = BudgetKind{name: "decode"}
)

// CustomBudgetKind returns a BudgetKind for an application-defined resource.
func CustomBudgetKind(name string) BudgetKind {
	return BudgetKind{name: name}
}

// String returns the kind's stable name, suitable for log fields and
// observability labels.
func (k BudgetKind) String() string {
	return k.name
}

// Unbounded marks a limit with no enforced ceiling.
const Unbounded int64 = -1

// BudgetSnapshot is a point-in-time read of a budget's accounting state.
type BudgetSnapshot struct {
	Kind      BudgetKind
	Remaining int64
	Limit     int64
}

// Unlimited reports whether this snapshot's budget has no ceiling.
func (s BudgetSnapshot) Unlimited() bool {
	return s.Limit == Unbounded
}

// ConsumeOutcome is the result of Budget.TryConsume: exactly one of Granted
// or Exhausted is populated (distinguished by Ok).
type ConsumeOutcome struct {
	Ok       bool
	Snapshot BudgetSnapshot
}

// Budget is an atomic, keyed counter. try_consume and refund are
// linearizable on the individual counter (spec §5 ordering guarantees).
type Budget struct {
	kind      BudgetKind
	limit     int64
	remaining int64 // atomic
	mu        sync.Mutex
}

// NewBudget creates a budget of the given kind with the given limit. Pass
// Unbounded for a limit that is never exhausted.
func NewBudget(kind BudgetKind, limit int64) *Budget {
	b := &Budget{kind: kind, limit: limit}
	if limit == Unbounded {
		b.remaining = Unbounded
	} else {
		b.remaining = limit
	}

	return b
}

// Kind returns the budget's kind.
func (b *Budget) Kind() BudgetKind {
	return b.kind
}

// Snapshot returns the current accounting state without mutating it.
func (b *Budget) Snapshot() BudgetSnapshot {
	return BudgetSnapshot{
		Kind:      b.kind,
		Remaining: atomic.LoadInt64(&b.remaining),
		Limit:     b.limit,
	}
}

// TryConsume atomically subtracts n from remaining iff remaining >= n (or
// the budget is unbounded). On failure, remaining is left untouched
// (spec §4.2: "On failure the budget is NOT consumed"), so repeated calls
// with the same n are idempotent until a refund makes room.
func (b *Budget) TryConsume(n int64) ConsumeOutcome {
	if b.limit == Unbounded {
		return ConsumeOutcome{Ok: true, Snapshot: b.Snapshot()}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := atomic.LoadInt64(&b.remaining)
	if remaining < n {
		return ConsumeOutcome{Ok: false, Snapshot: b.Snapshot()}
	}

	atomic.StoreInt64(&b.remaining, remaining-n)

	return ConsumeOutcome{Ok: true, Snapshot: b.Snapshot()}
}

// Refund returns n units to the budget, saturating at the configured limit
// so a buggy double-refund cannot manufacture headroom beyond the original
// grant.
func (b *Budget) Refund(n int64) BudgetSnapshot {
	if b.limit == Unbounded {
		return b.Snapshot()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := atomic.LoadInt64(&b.remaining) + n
	if remaining > b.limit {
		remaining = b.limit
	}

	atomic.StoreInt64(&b.remaining, remaining)

	return b.Snapshot()
}

// BudgetSet is a keyed mapping from BudgetKind to Budget. Lookups are
// read-mostly so a plain RWMutex-guarded map is enough; CallContext never
// mutates a BudgetSet concurrently with a lookup inside the same request.
type BudgetSet struct {
	mu      sync.RWMutex
	budgets map[BudgetKind]*Budget
}

// NewBudgetSet returns an empty BudgetSet.
func NewBudgetSet() *BudgetSet {
	return &BudgetSet{budgets: make(map[BudgetKind]*Budget)}
}

// Add registers a budget under its own kind, replacing any existing budget
// of the same kind.
func (s *BudgetSet) Add(b *Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.Kind()] = b
}

// Get returns the budget for kind, if any.
func (s *BudgetSet) Get(kind BudgetKind) (*Budget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[kind]

	return b, ok
}

// TryConsume looks up the budget for kind and consumes n from it. A kind
// with no registered budget is treated as unbounded: the caller gets an
// always-granted snapshot with Limit == Unbounded rather than a hard error,
// matching the "default injects an unbounded Flow budget" builder rule for
// kinds the caller never configured.
func (s *BudgetSet) TryConsume(kind BudgetKind, n int64) ConsumeOutcome {
	b, ok := s.Get(kind)
	if !ok {
		return ConsumeOutcome{Ok: true, Snapshot: BudgetSnapshot{Kind: kind, Remaining: Unbounded, Limit: Unbounded}}
	}

	return b.TryConsume(n)
}

// Refund looks up the budget for kind and refunds n to it; a no-op for
// unregistered kinds.
func (s *BudgetSet) Refund(kind BudgetKind, n int64) BudgetSnapshot {
	b, ok := s.Get(kind)
	if !ok {
		return BudgetSnapshot{Kind: kind, Remaining: Unbounded, Limit: Unbounded}
	}

	return b.Refund(n)
}
