package sip

import (
	"strconv"
	"strings"
)

// WriteMessage serializes msg back to its CRLF wire form (inverse of
// ParseRequest/ParseResponse, spec §4.5 "Formatting"). Header name
// casing is preserved as received for extension headers and
// canonicalized for typed headers; the body is written verbatim.
func WriteMessage(msg SipMessage) string {
	var b strings.Builder

	if msg.StartLine.IsRequest() {
		writeRequestLine(&b, msg.StartLine.Request)
	} else {
		writeStatusLine(&b, msg.StartLine.Response)
	}

	writeHeaders(&b, msg.Headers)
	b.WriteString("\r\n")
	b.Write(msg.Body)

	return b.String()
}

// WriteRequest serializes a request-shaped SipMessage.
func WriteRequest(msg SipMessage) string { return WriteMessage(msg) }

// WriteResponse serializes a response-shaped SipMessage, tolerating an
// empty reason phrase (spec §4.5: write_response tolerates empty
// reason phrase), writing just the trailing space with nothing after.
func WriteResponse(msg SipMessage) string { return WriteMessage(msg) }

func writeRequestLine(b *strings.Builder, line RequestLine) {
	b.WriteString(line.Method.String())
	b.WriteByte(' ')
	b.WriteString(WriteURI(line.URI))
	b.WriteByte(' ')
	b.WriteString(line.Version)
	b.WriteString("\r\n")
}

func writeStatusLine(b *strings.Builder, line StatusLine) {
	b.WriteString(line.Version)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(line.StatusCode))
	b.WriteByte(' ')
	b.WriteString(line.Reason)
	b.WriteString("\r\n")
}

func writeHeaders(b *strings.Builder, headers []Header) {
	for _, h := range headers {
		b.WriteString(h.CanonicalName())
		b.WriteString(": ")
		b.WriteString(writeHeaderValue(h))
		b.WriteString("\r\n")
	}
}

func writeHeaderValue(h Header) string {
	switch h.Kind {
	case HeaderVia:
		return writeVia(*h.Via)
	case HeaderCSeq:
		return strconv.FormatUint(uint64(h.CSeq.Sequence), 10) + " " + h.CSeq.Method.String()
	case HeaderContact:
		return writeContact(*h.Contact)
	case HeaderMaxForwards:
		return strconv.Itoa(*h.MaxForwards)
	default:
		return h.ExtensionValue
	}
}

func writeVia(v ViaHeader) string {
	var b strings.Builder

	b.WriteString(v.Protocol)
	b.WriteByte(' ')
	b.WriteString(v.Host)

	if v.HasPort {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(v.Port))
	}

	writeParams(&b, v.ParamOrder, v.ParamValues)

	return b.String()
}

func writeContact(c ContactHeader) string {
	var b strings.Builder

	if c.DisplayName != "" {
		b.WriteByte('"')
		b.WriteString(c.DisplayName)
		b.WriteString("\" ")
	}

	b.WriteByte('<')
	b.WriteString(WriteURI(c.URI))
	b.WriteByte('>')

	writeParams(&b, c.ParamOrder, c.ParamValues)

	return b.String()
}

func writeParams(b *strings.Builder, order []string, values map[string]string) {
	for _, key := range order {
		b.WriteByte(';')
		b.WriteString(key)

		if value := values[key]; value != "" {
			b.WriteByte('=')
			b.WriteString(value)
		}
	}
}

// WriteURI serializes a SipUri back to its wire form.
func WriteURI(uri SipUri) string {
	var b strings.Builder

	b.WriteString(uri.Scheme.String())
	b.WriteByte(':')

	if uri.HasUser {
		b.WriteString(uri.UserInfo)
		b.WriteByte('@')
	}

	b.WriteString(uri.Host)

	if uri.HasPort {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(uri.Port))
	}

	writeParams(&b, uri.ParamOrder, uri.ParamValues)
	writeParams2(&b, uri.HeaderOrder, uri.HeaderValues, '?', '&')

	return b.String()
}

func writeParams2(b *strings.Builder, order []string, values map[string]string, first, sep byte) {
	for i, key := range order {
		if i == 0 {
			b.WriteByte(first)
		} else {
			b.WriteByte(sep)
		}

		b.WriteString(key)

		if value := values[key]; value != "" {
			b.WriteByte('=')
			b.WriteString(value)
		}
	}
}
