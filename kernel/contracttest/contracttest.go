// Package contracttest provides reusable property assertions any
// Cancellation/Budget/CallContext/Channel in this repo (or a downstream
// one) can be run against, mirroring the original Rust workspace's
// spark-contract-tests "TCK" (test compatibility kit) crate
// (original_source/crates/spark-contract-tests). Each exported
// function takes the live *testing.T plus the value under test and
// asserts the invariant that crate's suites encode, ported idiom for
// idiom rather than translated line for line.
package contracttest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/transport"
)

// CancellationContract asserts the idempotency and parent/child
// propagation contract every kernel.Cancellation token must satisfy,
// ported from cancellation.rs's
// cancellation_idempotency_and_propagation. token must be freshly
// constructed (not yet cancelled).
func CancellationContract(t *testing.T, token *kernel.Cancellation) {
	t.Helper()

	require.False(t, token.IsCancelled(), "CancellationContract requires a fresh, uncancelled token")

	assert.True(t, token.Cancel(), "first cancel must win")
	assert.False(t, token.Cancel(), "repeated cancel must stay idempotent")

	child := token.Child()
	assert.True(t, child.IsCancelled(), "child must immediately observe parent cancellation")
	assert.False(t, child.Cancel(), "cancelling an already-cancelled child stays idempotent")
}

// BudgetContract asserts the consume/exhaust/idempotent-exhaust/refund
// contract every kernel.Budget must satisfy, ported from
// backpressure.rs's budget_try_consume_and_refund_contract. Builds its
// own budget of kind with limit 10, matching the deltas the original
// test encodes.
func BudgetContract(t *testing.T, kind kernel.BudgetKind) {
	t.Helper()

	const limit = 10

	budget := kernel.NewBudget(kind, limit)

	first := budget.TryConsume(4)
	assert.True(t, first.Ok)
	assert.EqualValues(t, 6, first.Snapshot.Remaining)

	exhausted := budget.TryConsume(7)
	assert.False(t, exhausted.Ok)
	assert.EqualValues(t, 6, exhausted.Snapshot.Remaining, "rejected consume must not mutate remaining")

	exhaustedAgain := budget.TryConsume(7)
	assert.False(t, exhaustedAgain.Ok)
	assert.Equal(t, exhausted.Snapshot.Remaining, exhaustedAgain.Snapshot.Remaining, "repeated rejection must stay idempotent")

	snap := budget.Refund(2)
	assert.EqualValues(t, 8, snap.Remaining)

	resumed := budget.TryConsume(3)
	assert.True(t, resumed.Ok)
	assert.EqualValues(t, 5, resumed.Snapshot.Remaining)
}

// ReadyStateContract asserts ReadyState's Busy(QueueFull) and
// BudgetExhausted variants preserve the structured context their
// constructors were given, ported from backpressure.rs's
// ready_state_busy_and_budget_conversions.
func ReadyStateContract(t *testing.T) {
	t.Helper()

	queueFull := kernel.Busy(kernel.QueueFull(5, 5))

	reason, busy := queueFull.IsBusy()
	require.True(t, busy)

	depth, capacity := reason.QueueDepth()
	assert.Equal(t, 5, depth)
	assert.Equal(t, 5, capacity)

	budget := kernel.NewBudget(kernel.CustomBudgetKind("alloc.segment"), 10)
	budget.TryConsume(10)

	exhausted := budget.TryConsume(1)
	require.False(t, exhausted.Ok, "budget must already be fully consumed")

	state := kernel.BudgetExhaustedState(exhausted.Snapshot)

	snap, isExhausted := state.IsBudgetExhausted()
	require.True(t, isExhausted)
	assert.EqualValues(t, 10, snap.Limit)
	assert.EqualValues(t, 0, snap.Remaining)
}

// CallContextDefaultBudgetContract asserts that a CallContext built
// without an explicit budget still carries an unbounded Flow budget,
// ported from state_machine.rs's
// call_context_injects_default_flow_budget.
func CallContextDefaultBudgetContract(t *testing.T) {
	t.Helper()

	call := kernel.NewBuilder().Build()

	flowBudget, ok := call.Budgets().Get(kernel.BudgetFlow)
	require.True(t, ok, "builder must inject a default Flow budget")

	snap := flowBudget.Snapshot()
	assert.True(t, snap.Unlimited())
}

// CallContextExecutionViewContract asserts that CallContext.View
// reflects cancellation, deadline, and budget state identically to the
// context it was derived from, ported from state_machine.rs's
// call_context_preserves_inputs_and_execution_view.
func CallContextExecutionViewContract(t *testing.T, call *kernel.CallContext) {
	t.Helper()

	view := call.View()

	assert.Equal(t, call.Cancellation().IsCancelled(), view.Cancellation().IsCancelled())
	assert.Equal(t, call.Deadline(), view.Deadline())

	call.Cancellation().Cancel()
	assert.True(t, view.Cancellation().IsCancelled(), "execution view must observe cancellation applied after View was taken")
}

// ChannelPollReadyContract asserts a transport.Channel's PollReady
// never reports BudgetExhausted: channels signal backpressure via Busy
// or RetryAfter (spec §4.4); BudgetExhausted is reserved for
// budget-owning components (kernel.BudgetSet), not transport channels.
// This is a Go-specific addition alongside the ported suites above,
// exercising the "any Channel/Pipeline implementation ... can run
// against its own type" part of the original crate's stated intent.
func ChannelPollReadyContract(t *testing.T, ch transport.Channel) {
	t.Helper()

	state := ch.PollReady()

	_, budgetExhausted := state.IsBudgetExhausted()
	assert.False(t, budgetExhausted, "transport.Channel.PollReady reported BudgetExhausted: %s", state)
}
