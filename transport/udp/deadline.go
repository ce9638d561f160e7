package udp

import (
	"errors"
	"net"
	"time"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/transport"
)

var errCancelled = errors.New("udp: call was cancelled")

func applyReadDeadline(call *kernel.CallContext, conn *net.UDPConn) error {
	return applyDeadline(call, conn.SetReadDeadline)
}

func applyWriteDeadline(call *kernel.CallContext, conn *net.UDPConn) error {
	return applyDeadline(call, conn.SetWriteDeadline)
}

func applyDeadline(call *kernel.CallContext, set func(time.Time) error) error {
	if !call.Deadline().IsSet() {
		return set(time.Time{})
	}

	remaining := call.Deadline().Remaining(kernel.NewSystemClock().Now())
	if remaining <= 0 {
		return transport.CategorizeError("transport.timeout", errTimedOut)
	}

	return set(time.Now().Add(remaining))
}

var errTimedOut = errors.New("udp: deadline elapsed before send/recv")
