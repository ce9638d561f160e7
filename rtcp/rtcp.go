// Package rtcp parses RFC 3550 compound RTCP packets (SR/RR/SDES/BYE),
// decoding the 32-bit-aligned, report-count-driven wire format via
// pion/rtcp and re-expressing the result as this module's own,
// narrower CompoundPacket shape (spec §6 "RTCP compound packets").
package rtcp

import (
	"github.com/pion/rtcp"

	sparkerrors "github.com/ezex-io/spark/errors"
)

// ErrInvalidCompoundPacket is the error code for a malformed RTCP
// compound packet.
const ErrInvalidCompoundPacket = "rtcp.invalid_compound_packet"

// ReceptionReport is one SR/RR reception-report block.
type ReceptionReport struct {
	SSRC               uint32
	FractionLost       uint8
	TotalLost          uint32
	LastSequenceNumber uint32
	Jitter             uint32
}

// SenderReport is an RTCP SR packet.
type SenderReport struct {
	SSRC        uint32
	NTPTime     uint64
	RTPTime     uint32
	PacketCount uint32
	OctetCount  uint32
	Reports     []ReceptionReport
}

// ReceiverReport is an RTCP RR packet.
type ReceiverReport struct {
	SSRC    uint32
	Reports []ReceptionReport
}

// SourceDescription is an RTCP SDES packet, flattened to CNAME-style
// (ssrc, text) pairs; richer SDES item types are not modelled since
// call control in this module only ever needs CNAME correlation.
type SourceDescription struct {
	Items []SourceDescriptionItem
}

// SourceDescriptionItem is one SDES chunk's CNAME text.
type SourceDescriptionItem struct {
	SSRC  uint32
	CNAME string
}

// Goodbye is an RTCP BYE packet.
type Goodbye struct {
	Sources []uint32
	Reason  string
}

// CompoundPacket is a parsed RTCP compound packet: zero or more of
// each recognized packet type, in wire order. Packet types this
// module doesn't model (APP, RTPFB, PSFB, XR, ...) are silently
// skipped; pion/rtcp still validates their framing as part of
// Unmarshal, so a malformed trailing packet still fails parsing.
type CompoundPacket struct {
	SenderReports      []SenderReport
	ReceiverReports    []ReceiverReport
	SourceDescriptions []SourceDescription
	Goodbyes           []Goodbye
}

// Parse decodes a compound RTCP packet from raw. 32-bit alignment,
// the report-count field, and the padding flag are all honored by
// pion/rtcp's own Unmarshal; this function narrows the result to the
// SR/RR/SDES/BYE shape spec §6 asks for.
func Parse(raw []byte) (CompoundPacket, error) {
	packets, err := rtcp.Unmarshal(raw)
	if err != nil {
		return CompoundPacket{}, sparkerrors.New(ErrInvalidCompoundPacket, "rtcp: "+err.Error(), sparkerrors.ProtocolViolation)
	}

	var compound CompoundPacket

	for _, packet := range packets {
		switch p := packet.(type) {
		case *rtcp.SenderReport:
			compound.SenderReports = append(compound.SenderReports, convertSenderReport(p))
		case *rtcp.ReceiverReport:
			compound.ReceiverReports = append(compound.ReceiverReports, convertReceiverReport(p))
		case *rtcp.SourceDescription:
			compound.SourceDescriptions = append(compound.SourceDescriptions, convertSourceDescription(p))
		case *rtcp.Goodbye:
			compound.Goodbyes = append(compound.Goodbyes, Goodbye{Sources: p.Sources, Reason: p.Reason})
		}
	}

	return compound, nil
}

func convertReceptionReports(reports []rtcp.ReceptionReport) []ReceptionReport {
	out := make([]ReceptionReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, ReceptionReport{
			SSRC:               r.SSRC,
			FractionLost:       r.FractionLost,
			TotalLost:          r.TotalLost,
			LastSequenceNumber: r.LastSequenceNumber,
			Jitter:             r.Jitter,
		})
	}

	return out
}

func convertSenderReport(p *rtcp.SenderReport) SenderReport {
	return SenderReport{
		SSRC:        p.SSRC,
		NTPTime:     p.NTPTime,
		RTPTime:     p.RTPTime,
		PacketCount: p.PacketCount,
		OctetCount:  p.OctetCount,
		Reports:     convertReceptionReports(p.Reports),
	}
}

func convertReceiverReport(p *rtcp.ReceiverReport) ReceiverReport {
	return ReceiverReport{SSRC: p.SSRC, Reports: convertReceptionReports(p.Reports)}
}

func convertSourceDescription(p *rtcp.SourceDescription) SourceDescription {
	var desc SourceDescription

	for _, chunk := range p.Chunks {
		for _, item := range chunk.Items {
			if item.Type == rtcp.SDESCNAME {
				desc.Items = append(desc.Items, SourceDescriptionItem{SSRC: chunk.Source, CNAME: item.Text})
			}
		}
	}

	return desc
}
