package buffer

import (
	"context"
	"sync"
	"time"

	"github.com/ezex-io/spark/scheduler"
)

// Pool lends WritableBuffers meeting a minimum-capacity guarantee and
// recycles their backing storage on return (spec §3 "A buffer pool lends
// writable buffers meeting a minimum-capacity guarantee; returned buffers
// recycle capacity on drop").
//
// The free-list itself is adapted from the teacher's cache.BasicCache
// (sync.Map plus a scheduler.Every-driven background sweep): instead of
// expiring entries by TTL, the sweep here trims buffers whose capacity has
// grown far beyond what callers have been requesting, so one oversized
// buffer does not pin excess memory in the pool forever.
type Pool struct {
	buckets   sync.Map // minCapacityBucket(int) -> *sync.Pool
	maxIdle   int
	highWater int
}

// Option configures a Pool.
type Option func(*poolOptions)

type poolOptions struct {
	sweepInterval time.Duration
	highWaterMul  int
}

var defaultPoolOptions = poolOptions{
	sweepInterval: 30 * time.Second,
	highWaterMul:  4,
}

// WithSweepInterval overrides how often the oversized-buffer sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(o *poolOptions) { o.sweepInterval = d }
}

// WithHighWaterMultiplier sets how many times a bucket's minimum capacity a
// lent buffer may grow to before the sweep discards it instead of
// recycling it.
func WithHighWaterMultiplier(mul int) Option {
	return func(o *poolOptions) { o.highWaterMul = mul }
}

// NewPool creates a buffer pool and starts its background sweep against
// ctx; the sweep goroutine exits once ctx is done, mirroring the teacher's
// cache.NewBasic lifecycle.
func NewPool(ctx context.Context, opts ...Option) *Pool {
	cfg := defaultPoolOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Pool{highWater: cfg.highWaterMul}

	scheduler.Every(ctx, cfg.sweepInterval).Do(func(context.Context) {
		p.sweepOversized()
	})

	return p
}

// bucketFor rounds a requested minimum capacity up to a power-of-two-ish
// bucket so a modest range of request sizes share one sync.Pool.
func bucketFor(minCapacity int) int {
	bucket := 64
	for bucket < minCapacity {
		bucket *= 2
	}

	return bucket
}

func (p *Pool) poolFor(bucket int) *sync.Pool {
	v, _ := p.buckets.LoadOrStore(bucket, &sync.Pool{
		New: func() any {
			return NewWritable(bucket)
		},
	})

	return v.(*sync.Pool)
}

// Acquire lends a WritableBuffer with at least minCapacity bytes of
// capacity. Acquisition never waits on external I/O (spec §5 "acquisition
// blocks no longer than one pool-internal operation").
func (p *Pool) Acquire(minCapacity int) WritableBuffer {
	bucket := bucketFor(minCapacity)
	wb := p.poolFor(bucket).Get().(WritableBuffer)
	wb.Clear()
	wb.Reserve(minCapacity)

	return wb
}

// Release returns a buffer to the pool for reuse. Callers must not touch
// the buffer afterwards.
func (p *Pool) Release(wb WritableBuffer) {
	bucket := bucketFor(wb.Capacity())
	wb.Clear()
	p.poolFor(bucket).Put(wb)
}

// sweepOversized drops any pooled buffer whose capacity has drifted past
// highWater times its bucket's nominal size, replacing it with nothing
// (sync.Pool will simply allocate fresh on next Get). This is the adapted
// analogue of cache.BasicCache.cleanupExpiredEntries: periodic, cheap, and
// safe to run concurrently with Acquire/Release.
func (p *Pool) sweepOversized() {
	p.buckets.Range(func(key, value any) bool {
		bucket := key.(int)
		pool := value.(*sync.Pool)

		candidate := pool.Get().(WritableBuffer)
		if candidate.Capacity() > bucket*p.highWater {
			// Oversized: let it be garbage collected instead of returning
			// it to the pool.
			return true
		}

		pool.Put(candidate)

		return true
	})
}
