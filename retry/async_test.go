package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteAsyncSucceedsWithoutCallingOnFailure(t *testing.T) {
	called := int32(0)
	failureCalled := make(chan error, 1)

	ExecuteAsync(context.Background(), func() error {
		if atomic.AddInt32(&called, 1) < 2 {
			return errors.New("fail")
		}

		return nil
	}, func(err error) {
		failureCalled <- err
	}, WithAsyncMaxRetries(3), WithAsyncRetryDelay(time.Millisecond))

	select {
	case err := <-failureCalled:
		t.Fatalf("onFailure should not be called on eventual success, got %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&called))
}

func TestExecuteAsyncCallsOnFailureAfterExhaustingRetries(t *testing.T) {
	called := int32(0)
	done := make(chan error, 1)

	ExecuteAsync(context.Background(), func() error {
		atomic.AddInt32(&called, 1)

		return errors.New("permanent failure")
	}, func(err error) {
		done <- err
	}, WithAsyncMaxRetries(2), WithAsyncRetryDelay(time.Millisecond))

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, "permanent failure", err.Error())
	case <-time.After(time.Second):
		t.Fatal("onFailure was never called")
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&called))
}

func TestExecuteAsyncStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	ExecuteAsync(ctx, func() error {
		return errors.New("fail")
	}, func(err error) {
		done <- err
	}, WithAsyncMaxRetries(5), WithAsyncRetryDelay(50*time.Millisecond))

	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("onFailure was never called after cancellation")
	}
}
