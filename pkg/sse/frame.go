// Package sse decodes the "data:" frames of a Server-Sent Events stream.
//
// Upstream agents deliver their SSE body in arbitrary chunks, so a line may
// be split anywhere. Decoder keeps the incomplete trailing line between
// chunks and only ever yields whole lines, which makes decoding independent
// of where the chunk boundaries fall.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// Done is the sentinel payload some servers send as the last frame.
const Done = "[DONE]"

// Frame is the payload of a single "data:" line with the field prefix
// removed and surrounding whitespace trimmed.
type Frame struct {
	Data string
}

// IsDone reports whether the frame is the end-of-stream sentinel.
func (f Frame) IsDone() bool {
	return f.Data == Done
}

// ParseLine extracts a frame from one complete line. Both "data:" and
// "data: " are accepted. ok is false for every other field, comments and
// lines whose trimmed payload is empty.
func ParseLine(line string) (Frame, bool) {
	line = strings.TrimSuffix(line, "\r")
	payload, found := strings.CutPrefix(line, "data:")
	if !found {
		return Frame{}, false
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Frame{}, false
	}

	return Frame{Data: payload}, true
}
