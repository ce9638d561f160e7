// Package pipeline implements the controller that owns a channel's
// inbound/outbound handler chain: dispatch, hot-swap, extensions, and
// graceful shutdown (spec §4.3 "Pipeline Controller").
package pipeline

import (
	"context"
	"sync"

	"github.com/ezex-io/spark/logger"
)

var _ Queue[int] = &queue[int]{}

// Queue is a managed, type-safe channel: one producer fans out to many
// registered receivers, with context-aware cancellation and a guarded,
// idempotent Close. The Controller uses a Queue[buffer.PipelineMessage]
// internally to decouple a transport's read loop from handler dispatch,
// so a slow handler chain backs up the queue rather than blocking the
// socket read.
type Queue[T any] interface {
	// Name returns the identifier for this queue instance.
	Name() string

	// Close initiates a graceful shutdown of the queue.
	Close()

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool

	// Send publishes a message to the queue (non-blocking).
	Send(T)

	// RegisterReceiver sets the handler function for incoming messages.
	RegisterReceiver(func(T))

	// UnsafeGetChannel provides direct read access to the underlying channel.
	// WARNING: This bypasses queue management and should be used with caution.
	UnsafeGetChannel() <-chan T

	// Len reports how many messages are currently buffered, not yet
	// fanned out to a receiver. The Controller reads this to surface
	// inbound backpressure through PollReady (spec §4.3 "Backpressure
	// propagation") without needing its own duplicate depth counter.
	Len() int

	// Cap reports the channel's buffer capacity (0 for unbuffered).
	Cap() int
}

// queue implements the Queue interface with proper synchronization and
// lifecycle management.
type queue[T any] struct {
	sync.RWMutex

	ctx       context.Context
	cancel    context.CancelFunc
	name      string
	closed    bool
	ch        chan T
	receivers []func(T)
}

const defaultBufferSize = 16

type queueOptions struct {
	name       string
	bufferSize int
}

// QueueOption configures queue creation.
type QueueOption func(*queueOptions)

// WithName sets the queue identifier used for logging and introspection.
func WithName(name string) QueueOption {
	return func(opt *queueOptions) {
		opt.name = name
	}
}

// WithBufferSize sets the channel buffer size (0 for unbuffered).
func WithBufferSize(size int) QueueOption {
	return func(opt *queueOptions) {
		if size < 0 {
			size = 0
		}
		opt.bufferSize = size
	}
}

// NewQueue creates and initializes a new queue instance.
func NewQueue[T any](parentCtx context.Context, opts ...QueueOption) Queue[T] {
	cfg := queueOptions{
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(parentCtx)

	q := &queue[T]{
		ctx:    ctx,
		cancel: cancel,
		name:   cfg.name,
		ch:     make(chan T, cfg.bufferSize),
	}

	return q
}

// Name returns the identifier name of the queue.
func (q *queue[T]) Name() string {
	return q.name
}

// Send writes data to the queue's channel in a thread-safe manner,
// dropping the message with a log line if the queue is closed or its
// context has already ended.
func (q *queue[T]) Send(data T) {
	q.RLock()
	defer q.RUnlock()

	if q.closed {
		logger.Debug("send on closed queue", "name", q.name)

		return
	}

	select {
	case <-q.ctx.Done():
		switch q.ctx.Err() {
		case context.Canceled:
			logger.Debug("queue draining", "name", q.name)
		case context.DeadlineExceeded:
			logger.Warn("queue timeout", "name", q.name)
		default:
			logger.Error("queue error", "name", q.name, "error", q.ctx.Err())
		}
	case q.ch <- data:
	}
}

// RegisterReceiver registers a callback to receive every message
// (one-to-many fan-out).
//
// Note: This method is NOT thread-safe; register receivers before sending.
func (q *queue[T]) RegisterReceiver(receiver func(T)) {
	if len(q.receivers) == 0 {
		go q.receiveLoop()
	}

	q.receivers = append(q.receivers, receiver)
}

// receiveLoop continuously listens for incoming data and fans out to all
// registered receivers until the queue is closed.
func (q *queue[T]) receiveLoop() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case data, ok := <-q.ch:
			if !ok {
				logger.Warn("channel is closed", "name", q.name)

				return
			}

			for _, handler := range q.receivers {
				handler(data)
			}
		}
	}
}

// Close shuts down the queue gracefully. It cancels the context, closes
// the channel, and marks the queue as closed. Idempotent.
func (q *queue[T]) Close() {
	q.Lock()
	defer q.Unlock()

	if !q.closed {
		q.cancel()
		close(q.ch)
		q.closed = true
	}
}

// IsClosed reports whether the queue has been closed.
func (q *queue[T]) IsClosed() bool {
	q.RLock()
	defer q.RUnlock()

	return q.closed
}

// UnsafeGetChannel provides direct read access to the underlying channel.
// WARNING: Bypasses all queue safeguards.
func (q *queue[T]) UnsafeGetChannel() <-chan T {
	return q.ch
}

// Len reports the number of messages currently buffered. Safe without
// holding q's lock: len() on a channel is a lock-free, race-detector-safe
// read regardless of concurrent sends/receives.
func (q *queue[T]) Len() int { return len(q.ch) }

// Cap reports the channel's buffer capacity.
func (q *queue[T]) Cap() int { return cap(q.ch) }
