package sip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvite = "INVITE sip:bob@example.com SIP/2.0\r\n" +
	"Via: SIP/2.0/UDP pc33.example.com:5060;branch=z9hG4bK776asdhds;rport\r\n" +
	"Max-Forwards: 70\r\n" +
	"Contact: <sip:alice@pc33.example.com:5060>\r\n" +
	"CSeq: 1 INVITE\r\n" +
	"\r\n" +
	"v=0\r\n"

func TestParseRequestParsesStartLineAndTypedHeaders(t *testing.T) {
	msg, err := ParseRequest(sampleInvite)
	require.NoError(t, err)

	assert.True(t, msg.StartLine.IsRequest())
	assert.True(t, msg.StartLine.Request.Method.Is(MethodInvite))
	assert.Equal(t, "SIP/2.0", msg.StartLine.Request.Version)
	assert.Equal(t, "example.com", msg.StartLine.Request.URI.Host)

	via, ok := msg.Via()
	require.True(t, ok)
	assert.Equal(t, "SIP/2.0/UDP", via.Protocol)
	assert.Equal(t, "pc33.example.com", via.Host)
	assert.Equal(t, 5060, via.Port)
	assert.Equal(t, "z9hG4bK776asdhds", via.Branch)
	assert.True(t, via.RPortRequested)
	assert.False(t, via.HasRPortValue)

	maxForwards, ok := msg.MaxForwards()
	require.True(t, ok)
	assert.Equal(t, 70, maxForwards)

	contact, ok := msg.Contact()
	require.True(t, ok)
	assert.Equal(t, "alice", contact.URI.UserInfo)

	cseq, ok := msg.CSeq()
	require.True(t, ok)
	assert.Equal(t, uint32(1), cseq.Sequence)
	assert.True(t, cseq.Method.Is(MethodInvite))

	assert.Equal(t, []byte("v=0\r\n"), msg.Body)
}

func TestParseRequestRejectsUnsupportedVersion(t *testing.T) {
	_, err := ParseRequest("INVITE sip:bob@example.com SIP/3.0\r\n\r\n")
	require.Error(t, err)
}

func TestParseRequestRejectsMissingStartLine(t *testing.T) {
	_, err := ParseRequest("no crlf anywhere here")
	require.Error(t, err)
}

func TestParseResponseParsesStatusLineAndToleratesEmptyReason(t *testing.T) {
	msg, err := ParseResponse("SIP/2.0 100 \r\n\r\n")
	require.NoError(t, err)

	assert.False(t, msg.StartLine.IsRequest())
	assert.Equal(t, 100, msg.StartLine.Response.StatusCode)
	assert.Equal(t, "", msg.StartLine.Response.Reason)
}

func TestParseResponseRejectsNonThreeDigitStatus(t *testing.T) {
	_, err := ParseResponse("SIP/2.0 20 OK\r\n\r\n")
	require.Error(t, err)
}

func TestUnfoldLinesJoinsContinuationLines(t *testing.T) {
	input := "INVITE sip:bob@example.com SIP/2.0\r\n" +
		"Subject: a very\r\n" +
		" long subject line\r\n" +
		"\r\n"

	line, rest, err := splitFirstLine(input)
	require.NoError(t, err)
	assert.Equal(t, "INVITE sip:bob@example.com SIP/2.0", line)

	headerBlock, _, err := splitHeadersBody(rest)
	require.NoError(t, err)

	headers, err := parseHeaders(headerBlock)
	require.NoError(t, err)
	require.Len(t, headers, 1)
	assert.Equal(t, "a very long subject line", headers[0].ExtensionValue)
}

func TestParseSipUriWithParamsAndHeaders(t *testing.T) {
	uri, err := parseSipUri("sip:alice@example.com:5061;transport=tcp?subject=project")
	require.NoError(t, err)

	assert.Equal(t, SchemeSip, uri.Scheme)
	assert.Equal(t, "alice", uri.UserInfo)
	assert.Equal(t, "example.com", uri.Host)
	assert.Equal(t, 5061, uri.Port)
	assert.True(t, uri.HasPort)
	assert.Equal(t, "tcp", uri.ParamValues["transport"])
	assert.Equal(t, "project", uri.HeaderValues["subject"])
}
