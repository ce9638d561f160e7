package tls

import (
	"errors"
	"time"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/transport"
)

var (
	errCancelled = errors.New("tls: call was cancelled")
	errTimedOut  = errors.New("tls: deadline elapsed before read/write")
)

func applyDeadline(call *kernel.CallContext, set func(time.Time) error) error {
	if call.Cancellation().IsCancelled() {
		return transport.CategorizeError("transport.cancelled", errCancelled)
	}

	if !call.Deadline().IsSet() {
		return set(time.Time{})
	}

	remaining := call.Deadline().Remaining(kernel.NewSystemClock().Now())
	if remaining <= 0 {
		return transport.CategorizeError("transport.timeout", errTimedOut)
	}

	return set(time.Now().Add(remaining))
}
