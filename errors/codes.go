package errors

// knownCode pairs a human summary with an optional remediation hint for a
// stable error code. Changing an entry here is a public-contract change
// (spec §9 "error code stability").
type knownCode struct {
	human string
	hint  string
}

var knownCodes = map[string]knownCode{
	"transport.timeout": {
		human: "the transport operation did not complete before its deadline",
		hint:  "increase the CallContext deadline or investigate peer latency",
	},
	"transport.cancelled": {
		human: "the transport operation was cancelled",
	},
	"transport.connection_reset": {
		human: "the peer reset the connection",
		hint:  "safe to retry after the advised backoff",
	},
	"transport.broken_pipe": {
		human: "the connection's write side is gone",
		hint:  "safe to retry after the advised backoff",
	},
	"transport.would_block": {
		human: "the operation would have blocked",
		hint:  "retry shortly; this is not a failure",
	},
	"transport.unsupported": {
		human: "the requested operation is not supported by this transport",
	},
	"transport.permission_denied": {
		human: "the operating system denied the requested transport operation",
	},
	"handshake.incompatible": {
		human: "no overlapping protocol version or feature set was found",
		hint:  "check both peers' advertised capability bitmaps",
	},
	"protocol.budget_exceeded": {
		human: "the frame exceeded the configured size or depth budget",
		hint:  "raise max_frame_size/max_depth or reject the oversized input earlier",
	},
	"protocol.type_mismatch": {
		human: "a type-erased codec received a value of the wrong concrete type",
	},
	"router.not_found": {
		human: "no route matched the request",
	},
	"sip.invalid_request_line": {
		human: "the SIP request line could not be parsed",
	},
	"sip.invalid_status_line": {
		human: "the SIP status line could not be parsed",
	},
	"sip.unsupported_version": {
		human: "the SIP message declared an unsupported protocol version",
		hint:  "only SIP/2.0 is accepted",
	},
	"sip.malformed_header": {
		human: "a SIP header could not be parsed",
	},
	"sip.invalid_uri": {
		human: "a SIP URI could not be parsed",
	},
	"sip.transaction.final_response_conflict": {
		human: "a final response was already recorded for this transaction",
		hint:  "do not attempt to send a second final response for the same INVITE",
	},
	"sip.transaction.terminated": {
		human: "the transaction has already terminated",
	},
	"sip.transaction.no_matching_invite": {
		human: "the CANCEL did not match any pending INVITE transaction",
	},
}
