package buffer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezex-io/spark/buffer"
)

func TestPoolAcquireMeetsMinimumCapacity(t *testing.T) {
	pool := buffer.NewPool(t.Context())

	wb := pool.Acquire(100)
	assert.GreaterOrEqual(t, wb.Capacity(), 100)

	wb.PutSlice([]byte("some bytes"))
	pool.Release(wb)

	again := pool.Acquire(100)
	assert.GreaterOrEqual(t, again.Capacity(), 100)
	assert.Equal(t, 0, again.Written(), "released buffers must come back cleared")
}

func TestPoolSweepDoesNotPanicOnEmptyPool(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	pool := buffer.NewPool(ctx, buffer.WithSweepInterval(1))
	_ = pool.Acquire(64)
}
