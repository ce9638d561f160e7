package sdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOfferAnswerPrefersPcmuWhenBothOffered(t *testing.T) {
	offer, err := Parse([]byte("v=0\r\n" +
		"o=- 0 0 IN IP4 192.0.2.1\r\n" +
		"s=Test\r\n" +
		"t=0 0\r\n" +
		"m=audio 49170 RTP/AVP 0 8\r\n" +
		"a=rtpmap:0 PCMU/8000\r\n" +
		"a=rtpmap:8 PCMA/8000\r\n"))
	require.NoError(t, err)

	caps := AudioOnly(NewAudioCaps(AudioCodecPcmu, true, true, false))

	plan := ApplyOfferAnswer(offer, caps)
	require.NotNil(t, plan.Audio, "audio m-line must exist")
	require.Equal(t, AudioAnswerAccepted, plan.Audio.Kind)

	accept := plan.Audio.Accept
	assert.Equal(t, AudioCodecPcmu, accept.Codec)
	assert.Equal(t, 0, accept.PayloadType)
	assert.Equal(t, "PCMU", accept.Rtpmap.Encoding)
	assert.Equal(t, 8000, accept.Rtpmap.ClockRate)
	assert.Nil(t, accept.TelephoneEvent)
}

func TestApplyOfferAnswerNegotiatesDtmf(t *testing.T) {
	offer, err := Parse([]byte("v=0\r\n" +
		"o=- 0 0 IN IP4 198.51.100.1\r\n" +
		"s=DTMF\r\n" +
		"t=0 0\r\n" +
		"m=audio 5004 RTP/AVP 0 101\r\n" +
		"a=rtpmap:0 PCMU/8000\r\n" +
		"a=rtpmap:101 telephone-event/8000\r\n" +
		"a=fmtp:101 0-15\r\n"))
	require.NoError(t, err)

	caps := AudioOnly(NewAudioCaps(AudioCodecPcmu, true, false, true))

	plan := ApplyOfferAnswer(offer, caps)
	require.NotNil(t, plan.Audio, "audio m-line must exist")
	require.Equal(t, AudioAnswerAccepted, plan.Audio.Kind)

	accept := plan.Audio.Accept
	assert.Equal(t, AudioCodecPcmu, accept.Codec)
	assert.Equal(t, 0, accept.PayloadType)

	require.NotNil(t, accept.TelephoneEvent)
	assert.Equal(t, 101, accept.TelephoneEvent.PayloadType)
	assert.Equal(t, 8000, accept.TelephoneEvent.ClockRate)
	assert.Equal(t, "0-15", accept.TelephoneEvent.Events)
}

func TestApplyOfferAnswerRejectsWhenNoCodecMatches(t *testing.T) {
	offer, err := Parse([]byte("v=0\r\n" +
		"o=- 0 0 IN IP4 192.0.2.1\r\n" +
		"s=Test\r\n" +
		"t=0 0\r\n" +
		"m=audio 49170 RTP/AVP 8\r\n" +
		"a=rtpmap:8 PCMA/8000\r\n"))
	require.NoError(t, err)

	caps := AudioOnly(NewAudioCaps(AudioCodecPcmu, true, false, false))

	plan := ApplyOfferAnswer(offer, caps)
	require.NotNil(t, plan.Audio)
	assert.Equal(t, AudioAnswerRejected, plan.Audio.Kind)
}

func TestApplyOfferAnswerFallsBackToWellKnownPayloadTypesWithoutRtpmap(t *testing.T) {
	offer, err := Parse([]byte("v=0\r\n" +
		"o=- 0 0 IN IP4 192.0.2.1\r\n" +
		"s=Test\r\n" +
		"t=0 0\r\n" +
		"m=audio 49170 RTP/AVP 0\r\n"))
	require.NoError(t, err)

	caps := AudioOnly(NewAudioCaps(AudioCodecPcmu, true, true, false))

	plan := ApplyOfferAnswer(offer, caps)
	require.NotNil(t, plan.Audio)
	require.Equal(t, AudioAnswerAccepted, plan.Audio.Kind)
	assert.Equal(t, AudioCodecPcmu, plan.Audio.Accept.Codec)
	assert.Equal(t, "PCMU", plan.Audio.Accept.Rtpmap.Encoding)
}

func TestApplyOfferAnswerNoAudioMLineYieldsNoPlan(t *testing.T) {
	offer, err := Parse([]byte("v=0\r\n" +
		"o=- 0 0 IN IP4 192.0.2.1\r\n" +
		"s=Test\r\n" +
		"t=0 0\r\n"))
	require.NoError(t, err)

	caps := AudioOnly(NewAudioCaps(AudioCodecPcmu, true, true, false))

	plan := ApplyOfferAnswer(offer, caps)
	assert.Nil(t, plan.Audio)
}
