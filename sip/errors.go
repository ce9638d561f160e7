package sip

import (
	"strconv"

	sparkerrors "github.com/ezex-io/spark/errors"
)

// Parse failure codes (spec §4.5 "Failure modes"). All map to
// errors.ProtocolViolation.
const (
	ErrInvalidRequestLine = "sip.invalid_request_line"
	ErrInvalidStatusLine  = "sip.invalid_status_line"
	ErrUnsupportedVersion = "sip.unsupported_version"
	ErrMalformedHeader    = "sip.malformed_header"
	ErrInvalidURI         = "sip.invalid_uri"
)

func parseError(code, message string) *sparkerrors.Error {
	return sparkerrors.New(code, message, sparkerrors.ProtocolViolation)
}

// FinalResponseConflict is returned by
// InviteServerTransaction.RecordFinalResponse when a final response was
// already recorded with a different code (spec §4.6).
type FinalResponseConflict struct {
	Existing  int
	Attempted int
}

func (e *FinalResponseConflict) Error() string {
	return "sip: final response already recorded as " + strconv.Itoa(e.Existing) +
		", cannot record " + strconv.Itoa(e.Attempted)
}

// ErrTransactionTerminated is returned when an operation is attempted
// against a transaction already in the Terminated state.
var ErrTransactionTerminated = transactionTerminatedError{}

type transactionTerminatedError struct{}

func (transactionTerminatedError) Error() string {
	return "sip: transaction is terminated"
}

// ErrNoMatchingInvite is returned when a CANCEL arrives with no
// correlated INVITE transaction (spec: "unmatched CANCEL").
var ErrNoMatchingInvite = noMatchingInviteError{}

type noMatchingInviteError struct{}

func (noMatchingInviteError) Error() string {
	return "sip: CANCEL matched no INVITE transaction"
}

// ToErrorCategory maps a transaction/race error to the kernel error
// taxonomy (spec §4.6 "Error categorization"): CANCEL race errors and
// transaction-terminated errors map to Cancelled (signalling the
// attempted write should be suppressed), an unmatched CANCEL maps to
// ProtocolViolation.
func ToErrorCategory(err error) sparkerrors.Category {
	switch err.(type) {
	case *FinalResponseConflict:
		return sparkerrors.Cancelled
	case transactionTerminatedError:
		return sparkerrors.Cancelled
	case noMatchingInviteError:
		return sparkerrors.ProtocolViolation
	default:
		return sparkerrors.ProtocolViolation
	}
}
