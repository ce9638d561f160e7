// Package sdp implements RFC 4566 SDP parsing (delegated to pion/sdp,
// the ecosystem's SDP codec) and the audio offer/answer negotiation
// for PCMU/PCMA/telephone-event described in spec §4.7.
package sdp

// AudioCodec is a negotiable audio codec.
type AudioCodec int

const (
	AudioCodecPcmu AudioCodec = iota
	AudioCodecPcma
)

func (c AudioCodec) String() string {
	if c == AudioCodecPcma {
		return "PCMA"
	}

	return "PCMU"
}

// RtpMap is a parsed `a=rtpmap:<pt> <encoding>/<clock-rate>` attribute.
type RtpMap struct {
	Encoding  string
	ClockRate int
}

// TelephoneEvent is a negotiated RFC 4733 DTMF payload: its own
// payload type, clock rate, and the event range from `a=fmtp`.
type TelephoneEvent struct {
	PayloadType int
	ClockRate   int
	Events      string
}

// AudioCaps describes this side's audio negotiation capabilities
// (spec §4.7: "AudioCaps{preferred_codec, accept_pcmu, accept_pcma,
// accept_dtmf}").
type AudioCaps struct {
	Preferred  AudioCodec
	AcceptPcmu bool
	AcceptPcma bool
	AcceptDtmf bool
}

// NewAudioCaps constructs an AudioCaps.
func NewAudioCaps(preferred AudioCodec, acceptPcmu, acceptPcma, acceptDtmf bool) AudioCaps {
	return AudioCaps{
		Preferred:  preferred,
		AcceptPcmu: acceptPcmu,
		AcceptPcma: acceptPcma,
		AcceptDtmf: acceptDtmf,
	}
}

// AnswerCapabilities is the full set of per-media capabilities this
// side brings to the negotiation. Only audio is modelled (spec's
// Non-goals exclude a media-plane codec implementation beyond this
// negotiation surface).
type AnswerCapabilities struct {
	Audio *AudioCaps
}

// AudioOnly builds an AnswerCapabilities offering only audio.
func AudioOnly(caps AudioCaps) AnswerCapabilities {
	return AnswerCapabilities{Audio: &caps}
}

// AudioAnswerKind discriminates AudioAnswer's two variants.
type AudioAnswerKind int

const (
	AudioAnswerRejected AudioAnswerKind = iota
	AudioAnswerAccepted
)

// AudioAccept is the negotiated result for an accepted audio m-line.
type AudioAccept struct {
	Codec          AudioCodec
	PayloadType    int
	Rtpmap         RtpMap
	TelephoneEvent *TelephoneEvent
}

// AudioAnswer is the sum type {Accepted(AudioAccept) | Rejected} (spec
// §3 "SDP Answer Plan").
type AudioAnswer struct {
	Kind   AudioAnswerKind
	Accept AudioAccept
}

// AnswerPlan is the outcome of negotiating an offer against local
// capabilities. Audio is nil when the offer carried no audio m-line.
type AnswerPlan struct {
	Audio *AudioAnswer
}
