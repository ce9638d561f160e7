package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainMutationIncrementsEpoch(t *testing.T) {
	c := NewChain()
	before := c.Epoch()

	c.AddLastInbound("a", nil)

	assert.Equal(t, before+1, c.Epoch())
}

func TestChainSnapshotIsImmutableAcrossMutation(t *testing.T) {
	c := NewChain()
	c.AddLastInbound("a", nil)

	snap := c.Snapshot()
	assert.Len(t, snap.inbound, 1)

	c.AddLastInbound("b", nil)

	assert.Len(t, snap.inbound, 1, "previously taken snapshot must not observe later mutations")
	assert.Len(t, c.Snapshot().inbound, 2)
}

func TestChainRemoveInboundReportsWhetherRemoved(t *testing.T) {
	c := NewChain()
	c.AddLastInbound("a", nil)

	assert.True(t, c.RemoveInbound("a"))
	assert.False(t, c.RemoveInbound("a"))
}

func TestChainReplaceInboundSwapsHandler(t *testing.T) {
	c := NewChain()
	c.AddLastInbound("a", nil)

	ok := c.ReplaceInbound("a", nil)
	assert.True(t, ok)
	assert.False(t, c.ReplaceInbound("missing", nil))
}
