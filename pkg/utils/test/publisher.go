package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/mealprep/pkg/eventstream"
)

// ErrPublishFailed is returned by MockPublisher when FailPublish is set.
var ErrPublishFailed = errors.New("mock publish failure")

// MockPublisher is a test eventstream publisher that records events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.PlanGeneratedEvent

	// FailPublish causes PublishPlan to return ErrPublishFailed.
	FailPublish bool
	Closed      bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishPlan(_ context.Context, event *eventstream.PlanGeneratedEvent) error {
	if event == nil {
		return eventstream.ErrNilPlanEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPublish {
		return ErrPublishFailed
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns a snapshot of the published events.
func (m *MockPublisher) Events() []*eventstream.PlanGeneratedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.PlanGeneratedEvent(nil), m.events...)
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
