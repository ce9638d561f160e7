package ws

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ezex-io/spark/kernel"
	middleware "github.com/ezex-io/spark/middleware/http-mdl"
	"github.com/ezex-io/spark/transport"
)

var (
	errUnsupportedFrame = errors.New("ws: received a non-text/binary data frame")
	errDeadlineElapsed  = errors.New("ws: call deadline elapsed before read/write")
)

const cancellationPollInterval = 5 * time.Millisecond

// upgrader is shared across all accepted connections; gorilla's
// Upgrader is safe for concurrent use once configured.
var upgrader = websocket.Upgrader{
	Subprotocols: []string{"sip"},
	CheckOrigin:  func(*http.Request) bool { return true },
}

// Listener accepts WebSocket upgrades arriving on an http.Server,
// handing each accepted connection to Accept as a transport.Channel.
type Listener struct {
	addr     net.Addr
	acceptCh chan acceptResult
	server   *http.Server
	ln       net.Listener
}

type acceptResult struct {
	channel *Channel
	err     error
}

// Listen starts an HTTP server on addr whose only route is the
// WebSocket upgrade handshake, per RFC 7118's "SIP over WebSocket"
// profile.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, transport.CategorizeError("transport.ws.bind_failed", err)
	}

	l := &Listener{
		addr:     ln.Addr(),
		acceptCh: make(chan acceptResult, 16),
		ln:       ln,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handleUpgrade)

	chain := middleware.Chain(
		middleware.Recover(),
		middleware.Logging(),
		middleware.CORS(middleware.DefaultCORSConfig()),
	)
	l.server = &http.Server{Handler: chain(mux)}

	go func() { _ = l.server.Serve(ln) }()

	return l, nil
}

func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.acceptCh <- acceptResult{err: transport.CategorizeError("transport.ws.upgrade_failed", err)}

		return
	}

	l.acceptCh <- acceptResult{channel: NewChannel(conn)}
}

// Accept blocks until a peer completes the WebSocket upgrade handshake
// or call is cancelled/its deadline elapses.
func (l *Listener) Accept(call *kernel.CallContext) (transport.Channel, net.Addr, error) {
	ticker := time.NewTicker(cancellationPollInterval)
	defer ticker.Stop()

	for {
		select {
		case res := <-l.acceptCh:
			if res.err != nil {
				return nil, nil, res.err
			}

			return res.channel, res.channel.PeerAddr(), nil
		case <-ticker.C:
			if call.Cancellation().IsCancelled() {
				return nil, nil, transport.CategorizeError("transport.cancelled", errDeadlineElapsed)
			}

			if call.Deadline().IsSet() && call.Deadline().IsExpired(kernel.NewSystemClock().Now()) {
				return nil, nil, transport.CategorizeError("transport.timeout", errDeadlineElapsed)
			}
		}
	}
}

// Addr returns the bound HTTP listener address.
func (l *Listener) Addr() net.Addr { return l.addr }

// Shutdown stops accepting new upgrades and closes the HTTP server.
func (l *Listener) Shutdown(_ *kernel.CallContext, _ transport.Direction) error {
	return l.server.Close()
}
