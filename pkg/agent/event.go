package agent

import (
	"google.golang.org/genai"
)

// Event is one agent event as delivered by /run (array element) and
// /run_sse (one per data frame). Only the fields the client reads are
// decoded.
type Event struct {
	ID           string         `json:"id,omitempty"`
	Author       string         `json:"author,omitempty"`
	Partial      bool           `json:"partial,omitempty"`
	Content      *genai.Content `json:"content,omitempty"`
	Error        string         `json:"error,omitempty"`
	ErrorCode    string         `json:"errorCode,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

// Failure returns the agent-reported error message, if any.
func (e *Event) Failure() (string, bool) {
	switch {
	case e.Error != "":
		return e.Error, true
	case e.ErrorMessage != "":
		return e.ErrorMessage, true
	case e.ErrorCode != "":
		return e.ErrorCode, true
	}
	return "", false
}

// Parts returns the event's content parts as tagged variants.
func (e *Event) Parts() []Part {
	return ParseParts(e.Content)
}

// SnapshotText is the first non-empty text part of the event. Streaming
// snapshots carry the full response so far, never a delta.
func (e *Event) SnapshotText() (string, bool) {
	for _, p := range e.Parts() {
		if t, ok := p.(TextPart); ok && t.Text != "" {
			return t.Text, true
		}
	}
	return "", false
}

// FinalText scans the parts in order and returns the first non-empty text,
// or failing that the first non-empty string function result.
func (e *Event) FinalText() (string, bool) {
	for _, p := range e.Parts() {
		switch v := p.(type) {
		case TextPart:
			if v.Text != "" {
				return v.Text, true
			}
		case FunctionResponsePart:
			if r, ok := v.Result(); ok {
				return r, true
			}
		}
	}
	return "", false
}
