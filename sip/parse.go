package sip

import "strings"

// ParseRequest parses a complete SIP request message (spec §4.5 step
// 1-4). input must be a CRLF-terminated request with a blank line
// separating headers from body; the returned SipMessage's Headers and
// Body slice into input, no copy is made.
func ParseRequest(input string) (SipMessage, error) {
	line, rest, err := splitFirstLine(input)
	if err != nil {
		return SipMessage{}, err
	}

	requestLine, err := parseRequestLine(line)
	if err != nil {
		return SipMessage{}, err
	}

	headerBlock, bodyBlock, err := splitHeadersBody(rest)
	if err != nil {
		return SipMessage{}, err
	}

	headers, err := parseHeaders(headerBlock)
	if err != nil {
		return SipMessage{}, err
	}

	return SipMessage{
		StartLine: StartLine{Kind: StartLineRequest, Request: requestLine},
		Headers:   headers,
		Body:      []byte(bodyBlock),
	}, nil
}

func parseRequestLine(line string) (RequestLine, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return RequestLine{}, parseError(ErrInvalidRequestLine, "request line must be \"<method> <uri> <version>\"")
	}

	method, uriText, version := fields[0], fields[1], fields[2]

	if !strings.EqualFold(version, "SIP/2.0") {
		return RequestLine{}, parseError(ErrUnsupportedVersion, "unsupported SIP version: "+version)
	}

	uri, err := parseSipUri(uriText)
	if err != nil {
		return RequestLine{}, err
	}

	return RequestLine{Method: MethodFromToken(method), URI: uri, Version: version}, nil
}

// ParseResponse parses a complete SIP response message (spec §4.5
// step 1-4, mirroring ParseRequest for status lines).
func ParseResponse(input string) (SipMessage, error) {
	line, rest, err := splitFirstLine(input)
	if err != nil {
		return SipMessage{}, err
	}

	statusLine, err := parseStatusLine(line)
	if err != nil {
		return SipMessage{}, err
	}

	headerBlock, bodyBlock, err := splitHeadersBody(rest)
	if err != nil {
		return SipMessage{}, err
	}

	headers, err := parseHeaders(headerBlock)
	if err != nil {
		return SipMessage{}, err
	}

	return SipMessage{
		StartLine: StartLine{Kind: StartLineResponse, Response: statusLine},
		Headers:   headers,
		Body:      []byte(bodyBlock),
	}, nil
}

func parseStatusLine(line string) (StatusLine, error) {
	firstSpace := strings.IndexByte(line, ' ')
	if firstSpace < 0 {
		return StatusLine{}, parseError(ErrInvalidStatusLine, "status line missing version/status-code separator")
	}

	version := line[:firstSpace]
	if !strings.EqualFold(version, "SIP/2.0") {
		return StatusLine{}, parseError(ErrUnsupportedVersion, "unsupported SIP version: "+version)
	}

	rest := strings.TrimLeft(line[firstSpace+1:], " ")

	statusText, reason := rest, ""
	if idx := strings.IndexByte(rest, ' '); idx >= 0 {
		statusText = rest[:idx]
		reason = strings.TrimLeft(rest[idx+1:], " ")
	}

	if len(statusText) != 3 || !isThreeDigits(statusText) {
		return StatusLine{}, parseError(ErrInvalidStatusLine, "status code must be exactly 3 digits")
	}

	statusCode, ok := parsePositiveInt(statusText)
	if !ok {
		return StatusLine{}, parseError(ErrInvalidStatusLine, "status code is not numeric")
	}

	return StatusLine{Version: version, StatusCode: statusCode, Reason: reason}, nil
}

func isThreeDigits(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}

	return true
}
