package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezex-io/spark/codec"
	"github.com/ezex-io/spark/kernel"
)

func newCall() *kernel.CallContext {
	return kernel.NewBuilder().
		AddBudget(kernel.NewBudget(kernel.BudgetFlow, 1<<20)).
		AddBudget(kernel.NewBudget(kernel.BudgetDecode, 1<<20)).
		Build()
}

func TestLengthPrefixedRoundTrip(t *testing.T) {
	c := codec.NewLengthPrefixed("test/lp")
	encCtx := codec.NewEncodeContext(newCall(), codec.DefaultFrameLimits())

	payload, err := c.Encode([]byte("hello"), encCtx)
	require.NoError(t, err)
	assert.Equal(t, "test/lp", payload.Descriptor.Name)

	decCtx := codec.NewDecodeContext(newCall(), codec.DefaultFrameLimits())
	outcome, err := c.Decode(payload.Bytes, decCtx)
	require.NoError(t, err)

	value, ok := outcome.IsComplete()
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), value)
}

func TestLengthPrefixedDecodeReportsIncompleteOnShortBuffer(t *testing.T) {
	c := codec.NewLengthPrefixed("test/lp")
	encCtx := codec.NewEncodeContext(newCall(), codec.DefaultFrameLimits())

	payload, err := c.Encode([]byte("hello world"), encCtx)
	require.NoError(t, err)

	decCtx := codec.NewDecodeContext(newCall(), codec.DefaultFrameLimits())
	outcome, err := c.Decode(payload.Bytes[:len(payload.Bytes)-2], decCtx)
	require.NoError(t, err)
	assert.True(t, outcome.IsIncomplete())
}

func TestLengthPrefixedRejectsOversizedFrame(t *testing.T) {
	c := codec.NewLengthPrefixed("test/lp")
	tiny := codec.FrameLimits{MaxFrameBytes: 4, MaxDepth: 8}
	encCtx := codec.NewEncodeContext(newCall(), tiny)

	_, err := c.Encode([]byte("too long for the limit"), encCtx)
	require.Error(t, err)
}

func TestEnterFrameEnforcesMaxDepth(t *testing.T) {
	limits := codec.FrameLimits{MaxFrameBytes: 1 << 20, MaxDepth: 1}
	encCtx := codec.NewEncodeContext(newCall(), limits)

	guard, err := encCtx.EnterFrame()
	require.NoError(t, err)

	_, err = encCtx.EnterFrame()
	assert.Error(t, err, "exceeding max depth must fail")

	guard.Exit()

	_, err = encCtx.EnterFrame()
	assert.NoError(t, err, "popping the first frame must free up depth again")
}

func TestTypedAdapterEncodeDynRejectsWrongType(t *testing.T) {
	lp := codec.NewLengthPrefixed("test/lp")
	adapter := codec.NewTypedAdapter[[]byte, []byte](lp)

	encCtx := codec.NewEncodeContext(newCall(), codec.DefaultFrameLimits())
	_, err := adapter.EncodeDyn(42, encCtx)
	require.Error(t, err)
}

func TestTypedAdapterRoundTripsThroughDyn(t *testing.T) {
	lp := codec.NewLengthPrefixed("test/lp")
	adapter := codec.NewTypedAdapter[[]byte, []byte](lp)

	encCtx := codec.NewEncodeContext(newCall(), codec.DefaultFrameLimits())
	payload, err := adapter.EncodeDyn([]byte("dyn"), encCtx)
	require.NoError(t, err)

	decCtx := codec.NewDecodeContext(newCall(), codec.DefaultFrameLimits())
	outcome, err := adapter.DecodeDyn(payload.Bytes, decCtx)
	require.NoError(t, err)

	value, ok := outcome.IsComplete()
	require.True(t, ok)
	assert.Equal(t, []byte("dyn"), value)
}

func TestRegistryLookup(t *testing.T) {
	reg := codec.NewRegistry()
	reg.Register(codec.NewTypedAdapter[[]byte, []byte](codec.NewLengthPrefixed("test/lp")))

	found, ok := reg.Lookup("test/lp")
	require.True(t, ok)
	assert.Equal(t, "test/lp", found.Descriptor().Name)

	_, ok = reg.Lookup("nonexistent")
	assert.False(t, ok)
}
