package eventstream

import "errors"

var (
	// ErrNilPlanEvent indicates a nil plan event payload was provided to a publisher.
	ErrNilPlanEvent = errors.New("nil plan event")

	// ErrPublisherClosed is returned when publishing after Close.
	ErrPublisherClosed = errors.New("publisher closed")
)
