package sip

// InviteServerTransactionState is the state of an INVITE server
// transaction (spec §4.6: "Proceeding→Completed→Confirmed→Terminated").
// StateTrying is the implicit initial state before the first
// provisional response is sent; it precedes Proceeding in the wire
// protocol but isn't itself named in the spec's state list.
type InviteServerTransactionState int

const (
	StateTrying InviteServerTransactionState = iota
	StateProceeding
	StateCompleted
	StateConfirmed
	StateTerminated
)

// FinalResponseDispositionKind discriminates FinalResponseDisposition's
// two variants.
type FinalResponseDispositionKind int

const (
	FinalResponseGenerated FinalResponseDispositionKind = iota
	FinalResponseAlreadySent
)

// FinalResponseDisposition describes what happened to the INVITE's
// final response as a side effect of handling a CANCEL.
type FinalResponseDisposition struct {
	Kind       FinalResponseDispositionKind
	StatusCode int
}

// CancelOutcome is the result of InviteServerTransaction.HandleCancel.
type CancelOutcome struct {
	CancelResponse  int
	FinalResponse   *FinalResponseDisposition
	CancelledInvite bool
	State           InviteServerTransactionState
}

// InviteServerTransaction models RFC 3261 §9's INVITE server
// transaction FSM together with CANCEL race resolution (spec §4.6),
// grounded directly on the five CANCEL-race scenarios this module is
// tested against: CANCEL preempting an unsent final response generates
// 487 and marks the transaction cancelled; CANCEL arriving after a
// final response leaves that response untouched; a final response
// written after a CANCEL-generated 487 conflicts; CANCEL against a
// terminated transaction fails; all of the above categorize as
// Cancelled except unmatched/parse errors, which categorize as
// ProtocolViolation.
//
// InviteServerTransaction is not safe for concurrent use; callers
// serialize access to a single transaction (one INVITE dialog leg at a
// time), matching the teacher's CallContext-per-operation concurrency
// model rather than adding internal locking the original never needed.
type InviteServerTransaction struct {
	state         InviteServerTransactionState
	finalResponse *int
	cancelApplied bool
}

// NewInviteServerTransaction returns a transaction in its initial
// (pre-Proceeding) state.
func NewInviteServerTransaction() *InviteServerTransaction {
	return &InviteServerTransaction{state: StateTrying}
}

// AdvanceToProceeding transitions Trying -> Proceeding, as happens when
// the first 1xx provisional response is sent.
func (t *InviteServerTransaction) AdvanceToProceeding() {
	if t.state == StateTrying {
		t.state = StateProceeding
	}
}

// State returns the transaction's current state.
func (t *InviteServerTransaction) State() InviteServerTransactionState { return t.state }

// FinalResponse returns the recorded final response status code, if
// any has been recorded yet (by RecordFinalResponse or HandleCancel).
func (t *InviteServerTransaction) FinalResponse() (int, bool) {
	if t.finalResponse == nil {
		return 0, false
	}

	return *t.finalResponse, true
}

// CancelApplied reports whether a CANCEL actually preempted this
// transaction's final response (as opposed to arriving after one was
// already sent).
func (t *InviteServerTransaction) CancelApplied() bool { return t.cancelApplied }

// RecordFinalResponse records code as the transaction's final
// response, transitioning Trying/Proceeding -> Completed. Recording a
// second, different code once one is already set returns
// *FinalResponseConflict (spec: a CANCEL-generated 487 followed by a
// business-logic 200 conflicts). Recording against a Terminated
// transaction returns ErrTransactionTerminated.
func (t *InviteServerTransaction) RecordFinalResponse(code int) error {
	if t.state == StateTerminated {
		return ErrTransactionTerminated
	}

	if t.finalResponse != nil {
		if *t.finalResponse != code {
			return &FinalResponseConflict{Existing: *t.finalResponse, Attempted: code}
		}

		return nil
	}

	t.finalResponse = &code
	if code/100 == 2 {
		t.state = StateTerminated
	} else {
		t.state = StateCompleted
	}

	return nil
}

// HandleCancel applies a CANCEL to the transaction (spec §4.6). If no
// final response has been sent yet, it generates 487 Request
// Terminated, marks the INVITE cancelled, and moves the transaction to
// Completed. If a final response was already sent, it is left
// untouched and the CANCEL is reported as already-sent. Against a
// Terminated transaction it returns ErrTransactionTerminated.
func (t *InviteServerTransaction) HandleCancel() (CancelOutcome, error) {
	if t.state == StateTerminated {
		return CancelOutcome{}, ErrTransactionTerminated
	}

	if t.finalResponse != nil {
		return CancelOutcome{
			CancelResponse:  200,
			FinalResponse:   &FinalResponseDisposition{Kind: FinalResponseAlreadySent, StatusCode: *t.finalResponse},
			CancelledInvite: false,
			State:           t.state,
		}, nil
	}

	const requestTerminated = 487

	t.finalResponse = intPtr(requestTerminated)
	t.cancelApplied = true
	t.state = StateCompleted

	return CancelOutcome{
		CancelResponse:  200,
		FinalResponse:   &FinalResponseDisposition{Kind: FinalResponseGenerated, StatusCode: requestTerminated},
		CancelledInvite: true,
		State:           t.state,
	}, nil
}

// HandleAck transitions Completed -> Confirmed on receipt of the
// ACK that acknowledges a non-2xx final response.
func (t *InviteServerTransaction) HandleAck() {
	if t.state == StateCompleted {
		t.state = StateConfirmed
	}
}

// Terminate forces the transaction into its terminal state from any
// other state, e.g. once Timer I (non-INVITE) or the transport layer
// reports the dialog is gone.
func (t *InviteServerTransaction) Terminate() {
	t.state = StateTerminated
}

func intPtr(n int) *int { return &n }
