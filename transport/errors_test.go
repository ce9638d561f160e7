package transport_test

import (
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sparkerrors "github.com/ezex-io/spark/errors"
	"github.com/ezex-io/spark/transport"
)

type fakeTimeoutError struct{}

func (fakeTimeoutError) Error() string   { return "i/o timeout" }
func (fakeTimeoutError) Timeout() bool   { return true }
func (fakeTimeoutError) Temporary() bool { return true }

var _ net.Error = fakeTimeoutError{}

func TestCategorizeErrorMapsTimeout(t *testing.T) {
	e := transport.CategorizeError("transport.tcp.read_failed", fakeTimeoutError{})
	require.NotNil(t, e)
	assert.Equal(t, sparkerrors.Timeout, e.Category())
}

func TestCategorizeErrorMapsConnectionResetToRetryable(t *testing.T) {
	e := transport.CategorizeError("transport.tcp.write_failed", syscall.ECONNRESET)
	require.NotNil(t, e)
	assert.Equal(t, sparkerrors.Retryable, e.Category())
}

func TestCategorizeErrorMapsWouldBlockToRetryable(t *testing.T) {
	e := transport.CategorizeError("transport.tcp.write_failed", syscall.EWOULDBLOCK)
	require.NotNil(t, e)
	assert.Equal(t, sparkerrors.Retryable, e.Category())
}

func TestCategorizeErrorMapsPermissionDeniedToNonRetryable(t *testing.T) {
	e := transport.CategorizeError("transport.tcp.bind_failed", fmt.Errorf("wrap: %w", syscall.EACCES))
	require.NotNil(t, e)
	assert.NotEqual(t, sparkerrors.Retryable, e.Category())
}

func TestCategorizeErrorReturnsNilForNilInput(t *testing.T) {
	assert.Nil(t, transport.CategorizeError("transport.tcp.read_failed", nil))
}
