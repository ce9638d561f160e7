package sip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sparkerrors "github.com/ezex-io/spark/errors"
)

func TestCancelBeforeFinalResponseGenerates487AndMarksCancelled(t *testing.T) {
	transaction := NewInviteServerTransaction()
	transaction.AdvanceToProceeding()

	outcome, err := transaction.HandleCancel()
	require.NoError(t, err)

	assert.Equal(t, 200, outcome.CancelResponse)
	assert.Equal(t, &FinalResponseDisposition{Kind: FinalResponseGenerated, StatusCode: 487}, outcome.FinalResponse)
	assert.True(t, outcome.CancelledInvite)
	assert.Equal(t, StateCompleted, outcome.State)

	code, ok := transaction.FinalResponse()
	assert.True(t, ok)
	assert.Equal(t, 487, code)
	assert.True(t, transaction.CancelApplied())
}

func TestCancelAfterFinalResponsePreservesExistingState(t *testing.T) {
	transaction := NewInviteServerTransaction()
	require.NoError(t, transaction.RecordFinalResponse(200))
	assert.Equal(t, StateTerminated, transaction.State())

	outcome, err := transaction.HandleCancel()
	require.NoError(t, err)

	assert.Equal(t, 200, outcome.CancelResponse)
	assert.Equal(t, &FinalResponseDisposition{Kind: FinalResponseAlreadySent, StatusCode: 200}, outcome.FinalResponse)
	assert.False(t, outcome.CancelledInvite)

	code, ok := transaction.FinalResponse()
	assert.True(t, ok)
	assert.Equal(t, 200, code)
	assert.False(t, transaction.CancelApplied())
}

func TestCancelThenConflictingFinalResponseReturnsError(t *testing.T) {
	transaction := NewInviteServerTransaction()
	transaction.AdvanceToProceeding()

	outcome, err := transaction.HandleCancel()
	require.NoError(t, err)
	require.Equal(t, &FinalResponseDisposition{Kind: FinalResponseGenerated, StatusCode: 487}, outcome.FinalResponse)

	err = transaction.RecordFinalResponse(200)
	require.Error(t, err)

	var conflict *FinalResponseConflict

	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 487, conflict.Existing)
	assert.Equal(t, 200, conflict.Attempted)
	assert.Equal(t, sparkerrors.Cancelled, ToErrorCategory(err))
}

func TestCancelAfterTerminationIsCategorizedAsCancelled(t *testing.T) {
	transaction := NewInviteServerTransaction()
	transaction.Terminate()

	_, err := transaction.HandleCancel()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionTerminated)
	assert.Equal(t, sparkerrors.Cancelled, ToErrorCategory(err))
}

func TestParseErrorsMapToProtocolViolation(t *testing.T) {
	_, err := ParseRequest("not a sip message")
	require.Error(t, err)
	assert.Equal(t, sparkerrors.ProtocolViolation, ToErrorCategory(err))
}

func TestUnmatchedCancelMapsToProtocolViolation(t *testing.T) {
	assert.Equal(t, sparkerrors.ProtocolViolation, ToErrorCategory(ErrNoMatchingInvite))
}
