package kernel

// SecuritySnapshot is an opaque, read-only view of the security context
// (principal, scopes, transport assurance level) attached to a CallContext.
// spark-core treats its contents as external collaborator data; only its
// presence/absence matters to the kernel itself.
type SecuritySnapshot struct {
	Principal string
	Scopes    []string
}

// ObservabilityContract is an opaque handle to the metrics/log/trace
// exporters an operation should report through. Like SecuritySnapshot, its
// concrete implementation lives outside this module (spec §1 "observability
// backends ... are external collaborators"); the kernel only propagates it.
type ObservabilityContract interface {
	// Labels returns the stable key/value pairs this contract attaches to
	// every metric/log line emitted for the call.
	Labels() map[string]string
}

// CallContext is the immutable triple propagated through every operation:
// cancellation, deadline, and budget-set, plus optional security and
// observability attachments (spec §3).
type CallContext struct {
	cancellation  *Cancellation
	deadline      Deadline
	budgets       *BudgetSet
	security      *SecuritySnapshot
	observability ObservabilityContract
}

// ExecutionContext is a read-only view of a CallContext, handed to code that
// must observe cancellation/deadline/budget state but must not be able to
// construct a child context or otherwise mutate propagation (spec §3:
// "read-only views ... are derived without copying").
type ExecutionContext struct {
	inner CallContext
}

// Cancellation returns the token; callers must never type-assert it back
// into a builder.
func (e ExecutionContext) Cancellation() *Cancellation { return e.inner.cancellation }

// Deadline returns the deadline.
func (e ExecutionContext) Deadline() Deadline { return e.inner.deadline }

// Budgets returns the budget set.
func (e ExecutionContext) Budgets() *BudgetSet { return e.inner.budgets }

// Security returns the security snapshot, if any.
func (e ExecutionContext) Security() (SecuritySnapshot, bool) {
	if e.inner.security == nil {
		return SecuritySnapshot{}, false
	}

	return *e.inner.security, true
}

// Observability returns the observability contract, if any.
func (e ExecutionContext) Observability() (ObservabilityContract, bool) {
	return e.inner.observability, e.inner.observability != nil
}

// Builder constructs a CallContext. The zero value is usable directly via
// Builder{}.
type Builder struct {
	cancellation  *Cancellation
	deadline      Deadline
	budgets       *BudgetSet
	security      *SecuritySnapshot
	observability ObservabilityContract
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithCancellation attaches a cancellation token.
func (b *Builder) WithCancellation(c *Cancellation) *Builder {
	b.cancellation = c

	return b
}

// WithDeadline attaches a deadline.
func (b *Builder) WithDeadline(d Deadline) *Builder {
	b.deadline = d

	return b
}

// AddBudget registers a budget, creating the underlying BudgetSet on first
// use.
func (b *Builder) AddBudget(budget *Budget) *Builder {
	if b.budgets == nil {
		b.budgets = NewBudgetSet()
	}

	b.budgets.Add(budget)

	return b
}

// WithSecurity attaches a security snapshot.
func (b *Builder) WithSecurity(s SecuritySnapshot) *Builder {
	b.security = &s

	return b
}

// WithObservability attaches an observability contract.
func (b *Builder) WithObservability(o ObservabilityContract) *Builder {
	b.observability = o

	return b
}

// Build finalizes the CallContext. If no budget was ever added, an
// unbounded Flow budget is injected (spec §4.1).
func (b *Builder) Build() *CallContext {
	cancellation := b.cancellation
	if cancellation == nil {
		cancellation = NewCancellation()
	}

	budgets := b.budgets
	if budgets == nil {
		budgets = NewBudgetSet()
	}

	if _, ok := budgets.Get(BudgetFlow); !ok {
		budgets.Add(NewBudget(BudgetFlow, Unbounded))
	}

	return &CallContext{
		cancellation:  cancellation,
		deadline:      b.deadline,
		budgets:       budgets,
		security:      b.security,
		observability: b.observability,
	}
}

// Cancellation returns the context's cancellation token.
func (c *CallContext) Cancellation() *Cancellation { return c.cancellation }

// Deadline returns the context's deadline.
func (c *CallContext) Deadline() Deadline { return c.deadline }

// Budgets returns the context's budget set.
func (c *CallContext) Budgets() *BudgetSet { return c.budgets }

// Security returns the security snapshot, if any.
func (c *CallContext) Security() (SecuritySnapshot, bool) {
	if c.security == nil {
		return SecuritySnapshot{}, false
	}

	return *c.security, true
}

// Observability returns the observability contract, if any.
func (c *CallContext) Observability() (ObservabilityContract, bool) {
	return c.observability, c.observability != nil
}

// Child derives a new CallContext sharing this context's budgets and
// observability contract, with a child cancellation token and the given
// deadline (typically tighter than the parent's).
func (c *CallContext) Child(deadline Deadline) *CallContext {
	return &CallContext{
		cancellation:  c.cancellation.Child(),
		deadline:      deadline,
		budgets:       c.budgets,
		security:      c.security,
		observability: c.observability,
	}
}

// View returns a read-only ExecutionContext over this CallContext.
func (c *CallContext) View() ExecutionContext {
	return ExecutionContext{inner: *c}
}

// CheckCancelledOrExpired implements the cancel-vs-timeout priority rule
// (spec §4.1, §5): a caller observing both a past deadline and an active
// cancellation must treat the cancellation as having happened first. It
// returns (cancelled=true) if the token is already cancelled, regardless of
// deadline state; otherwise (expired=true) if now is at or after the
// deadline.
func (c *CallContext) CheckCancelledOrExpired(now MonotonicTimePoint) (cancelled, expired bool) {
	if c.cancellation.IsCancelled() {
		return true, false
	}

	return false, c.deadline.IsExpired(now)
}
