package udp

import (
	"bytes"
	"strconv"
)

// RewriteBareRPort scans msg for the first Via header and, if its
// rport parameter carries no value ("rport" or "rport" followed
// immediately by ';', ',', or end-of-line), rewrites it to
// "rport=<port>". Matching is a pure byte scan — no regexp, no full SIP
// parse — mirroring the approach spark's own UDP transport takes so the
// NAT traversal fast path never waits on a higher-level parser. If no
// such header or parameter is found, msg is returned unmodified.
func RewriteBareRPort(msg []byte, port int) []byte {
	viaStart, viaEnd, ok := findViaHeader(msg)
	if !ok {
		return msg
	}

	paramStart, ok := findBareRPortParam(msg[viaStart:viaEnd])
	if !ok {
		return msg
	}

	absolute := viaStart + paramStart

	rewritten := make([]byte, 0, len(msg)+8)
	rewritten = append(rewritten, msg[:absolute]...)
	rewritten = append(rewritten, []byte("rport=")...)
	rewritten = append(rewritten, []byte(strconv.Itoa(port))...)
	rewritten = append(rewritten, msg[absolute+len("rport"):]...)

	return rewritten
}

// findViaHeader locates the first "Via:" or "v:" header line
// (case-insensitive per RFC 3261), returning the byte range of its
// value (after the colon, up to but excluding the line's CRLF).
func findViaHeader(msg []byte) (start, end int, ok bool) {
	lineStart := 0
	for lineStart < len(msg) {
		lineEnd := bytes.IndexByte(msg[lineStart:], '\n')

		var line []byte
		if lineEnd < 0 {
			line = msg[lineStart:]
		} else {
			line = msg[lineStart : lineStart+lineEnd]
		}

		trimmed := bytes.TrimRight(line, "\r")
		if len(trimmed) == 0 {
			// Blank line: end of headers, Via not found.
			return 0, 0, false
		}

		colon := bytes.IndexByte(trimmed, ':')
		if colon > 0 {
			name := trimmed[:colon]
			if isViaHeaderName(name) {
				valueStart := lineStart + colon + 1
				valueEnd := lineStart + len(trimmed)

				return valueStart, valueEnd, true
			}
		}

		if lineEnd < 0 {
			break
		}

		lineStart += lineEnd + 1
	}

	return 0, 0, false
}

func isViaHeaderName(name []byte) bool {
	trimmed := bytes.TrimSpace(name)

	return equalFoldASCII(trimmed, []byte("Via")) || equalFoldASCII(trimmed, []byte("v"))
}

// findBareRPortParam returns the byte offset (relative to viaValue) of
// a value-less "rport" parameter's "rport" token, so the caller can
// splice in "rport=<port>" at that offset.
func findBareRPortParam(viaValue []byte) (offset int, ok bool) {
	idx := 0
	for idx < len(viaValue) {
		rel := indexFoldASCII(viaValue[idx:], []byte("rport"))
		if rel < 0 {
			return 0, false
		}

		candidate := idx + rel

		precededByBoundary := candidate == 0 || viaValue[candidate-1] == ';' || viaValue[candidate-1] == ',' ||
			viaValue[candidate-1] == ' ' || viaValue[candidate-1] == '\t'

		after := candidate + len("rport")
		bareValue := after >= len(viaValue) || viaValue[after] == ';' || viaValue[after] == ',' ||
			viaValue[after] == ' ' || viaValue[after] == '\t'

		if precededByBoundary && bareValue {
			return candidate, true
		}

		idx = candidate + len("rport")
	}

	return 0, false
}

func equalFoldASCII(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if toLowerASCII(a[i]) != toLowerASCII(b[i]) {
			return false
		}
	}

	return true
}

func indexFoldASCII(haystack, needle []byte) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}

	for i := 0; i+len(needle) <= len(haystack); i++ {
		if equalFoldASCII(haystack[i:i+len(needle)], needle) {
			return i
		}
	}

	return -1
}

func toLowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}

	return b
}

