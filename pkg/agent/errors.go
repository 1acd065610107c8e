package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTextReceived is returned by the streaming reader when the stream
	// ends without a single non-empty text snapshot.
	ErrNoTextReceived = errors.New("no text content received")

	// ErrNoTextInResponse is returned by the non-streaming extractor when no
	// event in the response carries text or a function result.
	ErrNoTextInResponse = errors.New("no text content in response")

	// ErrNotEventArray is returned when a /run body is neither an event
	// array, an error object nor a single event.
	ErrNotEventArray = errors.New("agent response is not an event array")
)

// TransportError is a non-success HTTP status or a failed request to the
// agent server. Status is zero when no response was received.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("agent request failed: %v", e.Err)
	}
	return fmt.Sprintf("API error: %d - %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is an error reported by the agent inside an otherwise
// successful response.
type ProtocolError struct {
	Message string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return e.Message
}

// IsNoContent reports whether err means the agent produced no text.
func IsNoContent(err error) bool {
	return errors.Is(err, ErrNoTextReceived) || errors.Is(err, ErrNoTextInResponse)
}
