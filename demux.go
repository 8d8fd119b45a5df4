package cansim

import (
	"regexp"
	"strings"
)

// ansiEscape matches the color sequences the firmware's logger wraps
// around its console output. They have to go before framing, a split
// escape sequence would otherwise end up inside a JSON span.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Demuxer reassembles discrete messages from the raw serial byte
// stream. The firmware interleaves free-form console lines with JSON
// objects (sometimes pretty-printed over several lines) and the serial
// driver hands us arbitrary chunks, so framing is done by brace depth
// over an accumulation buffer.
//
// Feed is not safe for concurrent use; the session's read loop is the
// only caller.
type Demuxer struct {
	buf       string
	onMessage func(string)
}

func NewDemuxer(onMessage func(string)) *Demuxer {
	if onMessage == nil {
		onMessage = func(string) {}
	}
	return &Demuxer{onMessage: onMessage}
}

// Feed appends a chunk to the buffer and returns every message that
// became complete, in arrival order. Feeding the same byte sequence in
// different chunk sizes yields the same messages.
func (d *Demuxer) Feed(chunk []byte) []Message {
	// Stripping runs over the whole buffer so an escape sequence cut
	// in two by a chunk boundary still goes away once completed.
	d.buf = ansiEscape.ReplaceAllString(d.buf+string(chunk), "")

	var out []Message
	for {
		start := strings.IndexByte(d.buf, '{')
		if start == -1 {
			// No object in sight. Emit finished console lines and
			// keep the trailing fragment for the next chunk.
			lines := strings.Split(d.buf, "\n")
			for _, line := range lines[:len(lines)-1] {
				if line = strings.TrimSpace(line); line != "" {
					out = append(out, &LogLine{Text: line})
				}
			}
			d.buf = lines[len(lines)-1]
			return out
		}
		if start > 0 {
			for _, line := range strings.Split(d.buf[:start], "\n") {
				if line = strings.TrimSpace(line); line != "" {
					out = append(out, &LogLine{Text: line})
				}
			}
			d.buf = d.buf[start:]
		}
		end := balancedEnd(d.buf)
		if end == -1 {
			// Object still incomplete, wait for more data.
			return out
		}
		raw := flatten(d.buf[:end+1])
		d.buf = d.buf[end+1:]

		msg, echo, err := parseObject(raw)
		if err != nil {
			// Skip the whole failed span so a persistently malformed
			// object can never stall the stream.
			d.onMessage("dropping malformed message: " + raw)
			continue
		}
		if echo {
			continue
		}
		out = append(out, msg)
	}
}

// balancedEnd returns the index where brace depth returns to zero, or
// -1 if the object is still open. Assumes well-escaped JSON strings;
// an unescaped literal brace in a string desyncs the counter.
func balancedEnd(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// flatten collapses a pretty-printed object onto one line.
func flatten(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return s
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(strings.TrimSpace(line))
	}
	return sb.String()
}
