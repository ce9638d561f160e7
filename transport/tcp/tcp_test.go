package tcp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/kernel/contracttest"
	"github.com/ezex-io/spark/transport"
	"github.com/ezex-io/spark/transport/tcp"
)

func newCall(t *testing.T) *kernel.CallContext {
	t.Helper()

	return kernel.NewBuilder().Build()
}

func TestDialAndAcceptRoundTripBytes(t *testing.T) {
	ln, err := tcp.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Shutdown(newCall(t), transport.DirectionBoth)

	acceptCh := make(chan struct {
		ch  transport.Channel
		err error
	}, 1)

	go func() {
		ch, _, err := ln.Accept(newCall(t))
		acceptCh <- struct {
			ch  transport.Channel
			err error
		}{ch, err}
	}()

	client, err := tcp.Dial(newCall(t), ln.Addr().String())
	require.NoError(t, err)
	defer client.HalfClose(transport.DirectionBoth)

	res := <-acceptCh
	require.NoError(t, res.err)
	server := res.ch
	defer server.HalfClose(transport.DirectionBoth)

	call := newCall(t)
	n, err := client.Write(call, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 16)
	n, err = server.Read(call, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestAcceptHonorsCancellation(t *testing.T) {
	ln, err := tcp.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Shutdown(newCall(t), transport.DirectionBoth)

	call := kernel.NewBuilder().Build()

	done := make(chan error, 1)
	go func() {
		_, _, err := ln.Accept(call)
		done <- err
	}()

	call.Cancellation().Cancel()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Accept did not observe cancellation in time")
	}
}

func TestWriteReturnsZeroWhenAlreadyInFlight(t *testing.T) {
	ln, err := tcp.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Shutdown(newCall(t), transport.DirectionBoth)

	acceptCh := make(chan transport.Channel, 1)
	go func() {
		ch, _, _ := ln.Accept(newCall(t))
		acceptCh <- ch
	}()

	client, err := tcp.Dial(newCall(t), ln.Addr().String())
	require.NoError(t, err)
	server := <-acceptCh
	defer server.HalfClose(transport.DirectionBoth)
	defer client.HalfClose(transport.DirectionBoth)

	ready := client.PollReady()
	assert.True(t, ready.IsReady())
}

func TestChannelSatisfiesPollReadyContract(t *testing.T) {
	ln, err := tcp.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Shutdown(newCall(t), transport.DirectionBoth)

	client, err := tcp.Dial(newCall(t), ln.Addr().String())
	require.NoError(t, err)
	defer client.HalfClose(transport.DirectionBoth)

	contracttest.ChannelPollReadyContract(t, client)
}
