// Package sip implements the zero-copy SIP request/response
// parser/formatter, the INVITE server transaction FSM with CANCEL race
// handling, and the in-memory registrar location store (spec §4.5,
// §4.6).
package sip

// Method is a SIP request method. Extension tokens not in RFC 3261's
// core set are preserved verbatim via Token.
type Method struct {
	known Method_
	token string
}

// Method_ discriminates the core RFC 3261 method set; MethodExtension
// means Token carries the literal method name instead.
type Method_ int

const (
	MethodExtension Method_ = iota
	MethodInvite
	MethodAck
	MethodBye
	MethodCancel
	MethodOptions
	MethodRegister
	MethodPrack
	MethodSubscribe
	MethodNotify
	MethodPublish
	MethodInfo
	MethodRefer
	MethodMessage
	MethodUpdate
)

var methodTokens = map[Method_]string{
	MethodInvite:    "INVITE",
	MethodAck:       "ACK",
	MethodBye:       "BYE",
	MethodCancel:    "CANCEL",
	MethodOptions:   "OPTIONS",
	MethodRegister:  "REGISTER",
	MethodPrack:     "PRACK",
	MethodSubscribe: "SUBSCRIBE",
	MethodNotify:    "NOTIFY",
	MethodPublish:   "PUBLISH",
	MethodInfo:      "INFO",
	MethodRefer:     "REFER",
	MethodMessage:   "MESSAGE",
	MethodUpdate:    "UPDATE",
}

// MethodFromToken maps a request-line method token to a Method,
// case-sensitively (RFC 3261 method tokens are case-sensitive unlike
// header names), falling back to MethodExtension for anything outside
// the core set.
func MethodFromToken(token string) Method {
	for known, text := range methodTokens {
		if text == token {
			return Method{known: known}
		}
	}

	return Method{known: MethodExtension, token: token}
}

// NewMethod constructs a Method from one of the core constants.
func NewMethod(known Method_) Method {
	return Method{known: known}
}

// String returns the wire token for m.
func (m Method) String() string {
	if m.known == MethodExtension {
		return m.token
	}

	return methodTokens[m.known]
}

// Is reports whether m is the given core method.
func (m Method) Is(known Method_) bool { return m.known == known }

// RequestLine is a SIP request's start line.
type RequestLine struct {
	Method  Method
	URI     SipUri
	Version string
}

// StatusLine is a SIP response's start line.
type StatusLine struct {
	Version    string
	StatusCode int
	Reason     string
}

// StartLineKind discriminates StartLine's two variants.
type StartLineKind int

const (
	StartLineRequest StartLineKind = iota
	StartLineResponse
)

// StartLine is the sum type {Request(RequestLine) | Response(StatusLine)}.
type StartLine struct {
	Kind     StartLineKind
	Request  RequestLine
	Response StatusLine
}

// IsRequest reports whether this is a request start line.
func (s StartLine) IsRequest() bool { return s.Kind == StartLineRequest }

// SipMessage is a parsed SIP request or response. Header and body
// slices reference the original input buffer; no header text is
// copied during parsing.
type SipMessage struct {
	StartLine StartLine
	Headers   []Header
	Body      []byte
}

// Via returns the first Via header, if any.
func (m SipMessage) Via() (ViaHeader, bool) {
	for _, h := range m.Headers {
		if h.Kind == HeaderVia {
			return *h.Via, true
		}
	}

	return ViaHeader{}, false
}

// CSeq returns the CSeq header, if present.
func (m SipMessage) CSeq() (CSeqHeader, bool) {
	for _, h := range m.Headers {
		if h.Kind == HeaderCSeq {
			return *h.CSeq, true
		}
	}

	return CSeqHeader{}, false
}

// Contact returns the first Contact header, if present.
func (m SipMessage) Contact() (ContactHeader, bool) {
	for _, h := range m.Headers {
		if h.Kind == HeaderContact {
			return *h.Contact, true
		}
	}

	return ContactHeader{}, false
}

// MaxForwards returns the Max-Forwards header's value, if present.
func (m SipMessage) MaxForwards() (int, bool) {
	for _, h := range m.Headers {
		if h.Kind == HeaderMaxForwards {
			return *h.MaxForwards, true
		}
	}

	return 0, false
}
