package sip

import (
	"strconv"
	"strings"
)

// parseHeaders splits headerBlock into unfolded header lines (a
// continuation line begins with SP/HTAB, spec §4.5 step 4) and
// dispatches each by ASCII-case-insensitive name to a typed parser or
// HeaderExtension.
func parseHeaders(headerBlock string) ([]Header, error) {
	lines := unfoldLines(headerBlock)

	headers := make([]Header, 0, len(lines))

	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, parseError(ErrMalformedHeader, "header line has no ':' separator")
		}

		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		header, err := dispatchHeader(name, value)
		if err != nil {
			return nil, err
		}

		headers = append(headers, header)
	}

	return headers, nil
}

// unfoldLines splits a CRLF-delimited header block into logical
// headers, joining any continuation line (leading SP/HTAB) onto the
// previous one with a single space, per RFC 3261's LWS folding rule.
func unfoldLines(block string) []string {
	rawLines := strings.Split(strings.TrimSuffix(block, "\r\n"), "\r\n")

	var logical []string

	for _, raw := range rawLines {
		if raw == "" {
			continue
		}

		if (raw[0] == ' ' || raw[0] == '\t') && len(logical) > 0 {
			logical[len(logical)-1] += " " + strings.TrimSpace(raw)

			continue
		}

		logical = append(logical, raw)
	}

	return logical
}

func dispatchHeader(name, value string) (Header, error) {
	switch {
	case strings.EqualFold(name, "Via") || strings.EqualFold(name, "v"):
		via, err := parseVia(value)
		if err != nil {
			return Header{}, err
		}

		return Header{Kind: HeaderVia, Name: name, Via: &via}, nil
	case strings.EqualFold(name, "CSeq"):
		cseq, err := parseCSeq(value)
		if err != nil {
			return Header{}, err
		}

		return Header{Kind: HeaderCSeq, Name: name, CSeq: &cseq}, nil
	case strings.EqualFold(name, "Contact") || strings.EqualFold(name, "m"):
		contact, err := parseContact(value)
		if err != nil {
			return Header{}, err
		}

		return Header{Kind: HeaderContact, Name: name, Contact: &contact}, nil
	case strings.EqualFold(name, "Max-Forwards"):
		n, ok := parsePositiveInt(strings.TrimSpace(value))
		if !ok {
			return Header{}, parseError(ErrMalformedHeader, "Max-Forwards value is not a non-negative integer")
		}

		return Header{Kind: HeaderMaxForwards, Name: name, MaxForwards: &n}, nil
	default:
		return Header{Kind: HeaderExtension, Name: name, ExtensionValue: value}, nil
	}
}

// parseVia parses a Via header value: "<protocol> <host>[:port][;params]".
func parseVia(value string) (ViaHeader, error) {
	sentBy, paramBlock, _ := strings.Cut(value, ";")

	fields := strings.Fields(sentBy)
	if len(fields) != 2 {
		return ViaHeader{}, parseError(ErrMalformedHeader, "Via header missing protocol/sent-by")
	}

	via := ViaHeader{Protocol: fields[0]}

	hostPort := fields[1]
	if colonIdx := strings.LastIndexByte(hostPort, ':'); colonIdx >= 0 {
		if port, ok := parsePositiveInt(hostPort[colonIdx+1:]); ok {
			via.Host = hostPort[:colonIdx]
			via.Port = port
			via.HasPort = true
		} else {
			via.Host = hostPort
		}
	} else {
		via.Host = hostPort
	}

	order, values := parseParamLikeList(paramBlock, ';')
	via.ParamOrder = order
	via.ParamValues = values
	via.Branch = values["branch"]

	if rportValue, ok := values["rport"]; ok {
		via.RPortRequested = true

		if rportValue != "" {
			if port, ok := parsePositiveInt(rportValue); ok {
				via.RPort = port
				via.HasRPortValue = true
			}
		}
	}

	return via, nil
}

// parseCSeq parses a CSeq header value: "<sequence> <method>".
func parseCSeq(value string) (CSeqHeader, error) {
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return CSeqHeader{}, parseError(ErrMalformedHeader, "CSeq header must be \"<seq> <method>\"")
	}

	seq, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return CSeqHeader{}, parseError(ErrMalformedHeader, "CSeq sequence number is not a valid integer")
	}

	return CSeqHeader{Sequence: uint32(seq), Method: MethodFromToken(fields[1])}, nil
}

// parseContact parses a Contact header value: optional display name,
// "<" URI ">" (or a bare URI), then optional parameters.
func parseContact(value string) (ContactHeader, error) {
	value = strings.TrimSpace(value)

	var displayName, uriText, paramBlock string

	if openIdx := strings.IndexByte(value, '<'); openIdx >= 0 {
		closeIdx := strings.IndexByte(value, '>')
		if closeIdx < 0 || closeIdx < openIdx {
			return ContactHeader{}, parseError(ErrMalformedHeader, "Contact header has unmatched '<'")
		}

		displayName = strings.Trim(strings.TrimSpace(value[:openIdx]), "\"")
		uriText = value[openIdx+1 : closeIdx]
		paramBlock = strings.TrimPrefix(value[closeIdx+1:], ";")
	} else {
		uriText, paramBlock, _ = strings.Cut(value, ";")
		uriText = strings.TrimSpace(uriText)
	}

	uri, err := parseSipUri(uriText)
	if err != nil {
		return ContactHeader{}, err
	}

	order, values := parseParamLikeList(paramBlock, ';')

	return ContactHeader{DisplayName: displayName, URI: uri, ParamOrder: order, ParamValues: values}, nil
}
