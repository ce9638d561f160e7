package sdp

import (
	"strconv"
	"strings"

	psdp "github.com/pion/sdp/v3"
)

// wellKnownRtpmap returns the RFC 3551 static payload-type assignment
// for pt when the offer omits an explicit a=rtpmap (spec §4.7 edge
// case: "payload type 0/8 are the canonical PCMU/PCMA ... falling back
// to the well-known assignments otherwise").
func wellKnownRtpmap(pt int) (RtpMap, bool) {
	switch pt {
	case 0:
		return RtpMap{Encoding: "PCMU", ClockRate: 8000}, true
	case 8:
		return RtpMap{Encoding: "PCMA", ClockRate: 8000}, true
	default:
		return RtpMap{}, false
	}
}

// rtpAttributes collects the rtpmap/fmtp attributes of media, keyed by
// payload type.
func rtpAttributes(media *psdp.MediaDescription) (rtpmaps map[int]RtpMap, fmtps map[int]string) {
	rtpmaps = make(map[int]RtpMap)
	fmtps = make(map[int]string)

	for _, attr := range media.Attributes {
		switch attr.Key {
		case "rtpmap":
			pt, rtpmap, ok := parseRtpmapValue(attr.Value)
			if ok {
				rtpmaps[pt] = rtpmap
			}
		case "fmtp":
			pt, params, ok := parseFmtpValue(attr.Value)
			if ok {
				fmtps[pt] = params
			}
		}
	}

	return rtpmaps, fmtps
}

// parseRtpmapValue parses "<pt> <encoding>/<clock-rate>[/channels]".
func parseRtpmapValue(value string) (pt int, rtpmap RtpMap, ok bool) {
	ptText, encodingSpec, found := strings.Cut(value, " ")
	if !found {
		return 0, RtpMap{}, false
	}

	pt, err := strconv.Atoi(ptText)
	if err != nil {
		return 0, RtpMap{}, false
	}

	encoding, rateText, _ := strings.Cut(encodingSpec, "/")
	if idx := strings.IndexByte(rateText, '/'); idx >= 0 {
		rateText = rateText[:idx]
	}

	clockRate, err := strconv.Atoi(rateText)
	if err != nil {
		return 0, RtpMap{}, false
	}

	return pt, RtpMap{Encoding: encoding, ClockRate: clockRate}, true
}

// parseFmtpValue parses "<pt> <params...>".
func parseFmtpValue(value string) (pt int, params string, ok bool) {
	ptText, rest, found := strings.Cut(value, " ")
	if !found {
		return 0, "", false
	}

	pt, err := strconv.Atoi(ptText)
	if err != nil {
		return 0, "", false
	}

	return pt, rest, true
}

type audioCandidate struct {
	codec       AudioCodec
	payloadType int
	rtpmap      RtpMap
}

// ApplyOfferAnswer negotiates offer against caps, implementing spec
// §4.7's selection algorithm: iterate the offer's payload types in
// order, collect the audio codecs this side accepts plus at most one
// DTMF candidate, then prefer the candidate matching caps.Preferred
// and fall back to the first acceptable one.
func ApplyOfferAnswer(offer *psdp.SessionDescription, caps AnswerCapabilities) AnswerPlan {
	if caps.Audio == nil {
		return AnswerPlan{}
	}

	media := findAudioMedia(offer)
	if media == nil {
		return AnswerPlan{}
	}

	rtpmaps, fmtps := rtpAttributes(media)

	var (
		candidates []audioCandidate
		dtmf       *TelephoneEvent
	)

	for _, formatText := range media.MediaName.Formats {
		pt, err := strconv.Atoi(formatText)
		if err != nil {
			continue
		}

		rtpmap, ok := rtpmaps[pt]
		if !ok {
			rtpmap, ok = wellKnownRtpmap(pt)
		}

		if !ok {
			continue
		}

		switch {
		case strings.EqualFold(rtpmap.Encoding, "PCMU") && caps.Audio.AcceptPcmu:
			candidates = append(candidates, audioCandidate{codec: AudioCodecPcmu, payloadType: pt, rtpmap: rtpmap})
		case strings.EqualFold(rtpmap.Encoding, "PCMA") && caps.Audio.AcceptPcma:
			candidates = append(candidates, audioCandidate{codec: AudioCodecPcma, payloadType: pt, rtpmap: rtpmap})
		case strings.EqualFold(rtpmap.Encoding, "telephone-event") && caps.Audio.AcceptDtmf && dtmf == nil:
			dtmf = &TelephoneEvent{PayloadType: pt, ClockRate: rtpmap.ClockRate, Events: fmtps[pt]}
		}
	}

	chosen := pickPreferred(candidates, caps.Audio.Preferred)
	if chosen == nil {
		return AnswerPlan{Audio: &AudioAnswer{Kind: AudioAnswerRejected}}
	}

	return AnswerPlan{
		Audio: &AudioAnswer{
			Kind: AudioAnswerAccepted,
			Accept: AudioAccept{
				Codec:          chosen.codec,
				PayloadType:    chosen.payloadType,
				Rtpmap:         chosen.rtpmap,
				TelephoneEvent: dtmf,
			},
		},
	}
}

func pickPreferred(candidates []audioCandidate, preferred AudioCodec) *audioCandidate {
	for i := range candidates {
		if candidates[i].codec == preferred {
			return &candidates[i]
		}
	}

	if len(candidates) > 0 {
		return &candidates[0]
	}

	return nil
}
