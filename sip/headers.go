package sip

import "strconv"

// HeaderKind discriminates Header's typed-vs-extension variants.
type HeaderKind int

const (
	HeaderExtension HeaderKind = iota
	HeaderVia
	HeaderCSeq
	HeaderContact
	HeaderMaxForwards
)

// Header is a parsed SIP header. Name preserves the original casing as
// received, per spec §4.5 formatting rule ("preserves header name
// casing as received"). Exactly one of the typed fields is populated
// per Kind; unrecognized headers carry Kind == HeaderExtension and
// their text in ExtensionValue.
type Header struct {
	Kind HeaderKind
	Name string

	Via         *ViaHeader
	CSeq        *CSeqHeader
	Contact     *ContactHeader
	MaxForwards *int

	ExtensionValue string
}

// CanonicalName returns the header's canonical wire casing for typed
// headers, or Name unchanged for extensions (spec §4.5: "uses
// canonical casing for typed headers when synthesizing").
func (h Header) CanonicalName() string {
	switch h.Kind {
	case HeaderVia:
		return "Via"
	case HeaderCSeq:
		return "CSeq"
	case HeaderContact:
		return "Contact"
	case HeaderMaxForwards:
		return "Max-Forwards"
	default:
		return h.Name
	}
}

// ViaHeader models RFC 3261's Via header, including RFC 3581's rport
// extension parameter.
type ViaHeader struct {
	Protocol string // e.g. "SIP/2.0/UDP"
	Host     string
	Port     int
	HasPort  bool
	Branch   string

	// RPortRequested is true when the rport parameter is present. RPort
	// is its value once filled in by the receiving transport (spec §4.4
	// "UDP / SIP-over-UDP specifics"); HasRPortValue distinguishes a
	// bare "rport" from an already-filled "rport=<port>".
	RPortRequested bool
	RPort          int
	HasRPortValue  bool

	// Params preserves every parameter (including branch/rport) in
	// encounter order for round-trip formatting; ParamOrder holds the
	// keys in that order, ParamValues the (possibly empty) values.
	ParamOrder  []string
	ParamValues map[string]string
}

// WithRPort returns a copy of v with rport filled to port (RFC 3581).
// It is a no-op if rport was not requested bare.
func (v ViaHeader) WithRPort(port int) ViaHeader {
	if !v.RPortRequested || v.HasRPortValue {
		return v
	}

	out := v
	out.RPort = port
	out.HasRPortValue = true
	out.ParamValues = cloneParamValues(v.ParamValues)
	out.ParamValues["rport"] = strconv.Itoa(port)

	return out
}

func cloneParamValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

// CSeqHeader models RFC 3261's CSeq header.
type CSeqHeader struct {
	Sequence uint32
	Method   Method
}

// ContactHeader models a single Contact header entry.
type ContactHeader struct {
	DisplayName string
	URI         SipUri
	ParamOrder  []string
	ParamValues map[string]string
}
