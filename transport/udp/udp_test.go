package udp_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/transport/udp"
)

func newCall() *kernel.CallContext {
	return kernel.NewBuilder().Build()
}

func TestSendToAndRecvFromRoundTrip(t *testing.T) {
	server, err := udp.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer server.Shutdown(newCall(), 0)

	client, err := udp.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer client.Shutdown(newCall(), 0)

	serverAddr := server.Addr().(*net.UDPAddr)

	n, err := client.SendTo(newCall(), []byte("ping"), udp.OutboundMeta{PeerAddr: serverAddr})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	buf := make([]byte, 16)
	read, meta, err := server.RecvFrom(newCall(), buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:read]))
	assert.NotNil(t, meta.PeerAddr)
}

func TestRewriteBareRPortFillsObservedPort(t *testing.T) {
	msg := []byte("REGISTER sip:example.com SIP/2.0\r\n" +
		"Via: SIP/2.0/UDP 10.0.0.5:5060;branch=z9hG4bK776a;rport\r\n" +
		"\r\n")

	out := udp.RewriteBareRPort(msg, 34567)

	assert.Contains(t, string(out), "rport=34567")
	assert.NotContains(t, string(out), ";rport\r\n")
}

func TestRewriteBareRPortIsCaseInsensitiveOnViaAndNoOpWhenValued(t *testing.T) {
	msg := []byte("REGISTER sip:example.com SIP/2.0\r\n" +
		"v: SIP/2.0/UDP 10.0.0.5:5060;branch=z9hG4bK776a;rport=9999\r\n" +
		"\r\n")

	out := udp.RewriteBareRPort(msg, 34567)

	assert.Equal(t, string(msg), string(out), "an already-valued rport must not be touched")
}

func TestRewriteBareRPortNoOpWithoutViaHeader(t *testing.T) {
	msg := []byte("REGISTER sip:example.com SIP/2.0\r\n\r\n")

	out := udp.RewriteBareRPort(msg, 34567)

	assert.Equal(t, string(msg), string(out))
}
