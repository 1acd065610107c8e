package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ExtractFinalText returns the reply text from a /run response body.
//
// An event array is scanned from the last event backwards; within an event
// parts are scanned in order and the first non-empty text or string
// function result wins. A top-level object is either an error, reported as
// a *ProtocolError, or a single event.
func ExtractFinalText(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", ErrNotEventArray
	}

	switch trimmed[0] {
	case '[':
		var events []*Event
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return "", fmt.Errorf("decoding agent events: %w", err)
		}
		for i := len(events) - 1; i >= 0; i-- {
			if events[i] == nil {
				continue
			}
			if text, ok := events[i].FinalText(); ok {
				return text, nil
			}
		}
		return "", ErrNoTextInResponse

	case '{':
		ev := &Event{}
		if err := json.Unmarshal(trimmed, ev); err != nil {
			return "", fmt.Errorf("decoding agent response: %w", err)
		}
		if msg, failed := ev.Failure(); failed {
			return "", &ProtocolError{Message: msg}
		}
		if ev.Content == nil {
			return "", ErrNotEventArray
		}
		if text, ok := ev.FinalText(); ok {
			return text, nil
		}
		return "", ErrNoTextInResponse

	default:
		return "", ErrNotEventArray
	}
}
