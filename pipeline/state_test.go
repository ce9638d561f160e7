package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelStateAdvancesMonotonically(t *testing.T) {
	var box channelStateBox

	assert.Equal(t, StateActive, box.load())
	assert.True(t, box.advanceTo(StateDraining))
	assert.True(t, box.advanceTo(StateClosed))
	assert.Equal(t, StateClosed, box.load())
}

func TestChannelStateRejectsBackwardOrRepeatedTransition(t *testing.T) {
	var box channelStateBox

	box.advanceTo(StateClosed)

	assert.False(t, box.advanceTo(StateDraining), "cannot move backward from Closed")
	assert.False(t, box.advanceTo(StateClosed), "re-advancing to the same state is a no-op")
}
