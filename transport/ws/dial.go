package ws

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/transport"
)

// Dial connects to a "ws://" or "wss://" URL and wraps the resulting
// connection, honoring call's deadline for the handshake.
func Dial(call *kernel.CallContext, url string) (*Channel, error) {
	ctx := context.Background()

	if call.Deadline().IsSet() {
		remaining := call.Deadline().Remaining(kernel.NewSystemClock().Now())

		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, remaining)
		defer cancel()
	}

	dialer := websocket.Dialer{Subprotocols: []string{"sip"}}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, transport.CategorizeError("transport.ws.dial_failed", err)
	}

	return NewChannel(conn), nil
}
