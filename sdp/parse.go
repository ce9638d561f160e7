package sdp

import (
	psdp "github.com/pion/sdp/v3"

	sparkerrors "github.com/ezex-io/spark/errors"
)

// ErrInvalidSDP is the error code for a malformed SDP body.
const ErrInvalidSDP = "sdp.invalid_body"

// Parse parses a complete SDP session description (RFC 4566), the
// same pion/sdp codec this module's example pack reaches for at its
// own SIP<->media boundary.
func Parse(raw []byte) (*psdp.SessionDescription, error) {
	msg := &psdp.SessionDescription{}
	if err := msg.Unmarshal(raw); err != nil {
		return nil, sparkerrors.New(ErrInvalidSDP, "sdp: "+err.Error(), sparkerrors.ProtocolViolation)
	}

	return msg, nil
}

// findAudioMedia returns the first audio m-line in offer, if any.
func findAudioMedia(offer *psdp.SessionDescription) *psdp.MediaDescription {
	for _, media := range offer.MediaDescriptions {
		if media.MediaName.Media == "audio" {
			return media
		}
	}

	return nil
}
