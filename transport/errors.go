package transport

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	sparkerrors "github.com/ezex-io/spark/errors"
)

// CategorizeError maps a raw net/os-level error into spark's stable error
// taxonomy per spec §4.4:
//
//	TimedOut                      -> Timeout
//	WouldBlock | Interrupted      -> Retryable(5ms)
//	ConnectionReset | BrokenPipe | AddrInUse -> Retryable(50ms)
//	PermissionDenied | Unsupported -> NonRetryable
//
// Any error not recognized by the rules above is wrapped NonRetryable so
// callers always receive a *errors.Error with a stable code.
func CategorizeError(code string, err error) *sparkerrors.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return sparkerrors.New(code, "peer closed the connection", sparkerrors.NonRetryable)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return sparkerrors.New(code, err.Error(), sparkerrors.Timeout)
	}

	if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR) {
		return sparkerrors.NewRetryable(code, err.Error(),
			sparkerrors.RetryAdvice{Reason: "transient non-blocking I/O condition"}).
			AddMeta("retry_after", (5 * time.Millisecond).String())
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.EADDRINUSE) {
		return sparkerrors.NewRetryable(code, err.Error(),
			sparkerrors.RetryAdvice{Reason: "peer reset, broken pipe, or address contention"}).
			AddMeta("retry_after", (50 * time.Millisecond).String())
	}

	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EOPNOTSUPP) {
		return sparkerrors.New(code, err.Error(), sparkerrors.NonRetryable)
	}

	return sparkerrors.New(code, err.Error(), sparkerrors.NonRetryable)
}
