package transport

import (
	"math/bits"

	sparkerrors "github.com/ezex-io/spark/errors"
)

// CapabilityBitmap is a peer's advertised set of supported protocol
// versions and feature flags, each represented as one set bit so
// intersection and highest-common-version selection are plain bitwise
// operations (spec §4.4 "Handshake capability negotiation").
type CapabilityBitmap struct {
	Versions uint32
	Features uint32
}

// DowngradeReport records that negotiation settled on a version or
// feature set lower than at least one peer advertised, for audit
// logging.
type DowngradeReport struct {
	LocalVersions, RemoteVersions uint32
	NegotiatedVersion             uint32
	DroppedFeatures               uint32
}

// Negotiated is the outcome of a successful handshake negotiation.
type Negotiated struct {
	Version  uint32
	Features uint32
	Downgrade *DowngradeReport
}

// Negotiate picks the highest common version bit between local and
// remote, intersects their feature bitmaps, and reports any downgrade
// from the caller's own advertised capabilities. Returns
// "handshake.incompatible" if the two peers share no version bit at all.
func Negotiate(local, remote CapabilityBitmap) (Negotiated, error) {
	common := local.Versions & remote.Versions
	if common == 0 {
		return Negotiated{}, sparkerrors.New("handshake.incompatible",
			"no overlapping protocol version between peers", sparkerrors.NonRetryable)
	}

	negotiatedVersion := uint32(1) << (bits.Len32(common) - 1)
	negotiatedFeatures := local.Features & remote.Features

	result := Negotiated{Version: negotiatedVersion, Features: negotiatedFeatures}

	localBestVersion := uint32(1) << (bits.Len32(local.Versions) - 1)
	if negotiatedVersion < localBestVersion || negotiatedFeatures != local.Features {
		result.Downgrade = &DowngradeReport{
			LocalVersions:     local.Versions,
			RemoteVersions:    remote.Versions,
			NegotiatedVersion: negotiatedVersion,
			DroppedFeatures:   local.Features &^ negotiatedFeatures,
		}
	}

	return result, nil
}
