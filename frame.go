package nadavr

import (
	"strconv"
	"strings"
)

// Frame is one decoded, trimmed line of text from the device, in Key=Value
// form for replies and events, or a bare key for anything else.
type Frame struct {
	Raw   string
	Key   string
	Value string
}

// ParseFrame splits a line at the first '='. Lines without '=' carry the
// whole (trimmed) line in Key; malformed input never fails, it is simply
// left for the consumer to ignore.
func ParseFrame(line string) Frame {
	if k, v, ok := strings.Cut(line, "="); ok {
		return Frame{
			Raw:   line,
			Key:   strings.TrimSpace(k),
			Value: strings.TrimSpace(v),
		}
	}
	return Frame{Raw: line, Key: strings.TrimSpace(line)}
}

// HasValue reports whether the frame carried a '='.
func (f Frame) HasValue() bool {
	return strings.Contains(f.Raw, "=")
}

// ParseSourceKey extracts the source id and attribute from keys of the
// shape "Source3.Enabled" or "Source3.Name". The id must be numeric.
func ParseSourceKey(key string) (id, attr string, ok bool) {
	rest, found := strings.CutPrefix(key, "Source")
	if !found {
		return "", "", false
	}
	id, attr, ok = strings.Cut(rest, ".")
	if !ok || id == "" || attr == "" {
		return "", "", false
	}
	if _, err := strconv.Atoi(id); err != nil {
		return "", "", false
	}
	return id, attr, true
}

// sanitizeLine decodes a raw frame permissively: invalid UTF-8 sequences
// are dropped rather than surfaced, and surrounding whitespace (including
// the carriage return of a CRLF terminator) is stripped. An empty result
// means the frame should be discarded.
func sanitizeLine(data []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(data), ""))
}
