// Package nop discards plan events. It backs the event stream when no Kafka
// brokers are configured.
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/mealprep/pkg/eventstream"
)

// Publisher accepts plan events and drops them, counting what it saw.
type Publisher struct {
	published atomic.Int64
	closed    atomic.Bool
}

var _ eventstream.Publisher = (*Publisher)(nil)

func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishPlan rejects nil events and events sent after Close.
func (p *Publisher) PublishPlan(_ context.Context, event *eventstream.PlanGeneratedEvent) error {
	if event == nil {
		return eventstream.ErrNilPlanEvent
	}
	if p.closed.Load() {
		return eventstream.ErrPublisherClosed
	}

	p.published.Add(1)
	return nil
}

// Published reports how many events were accepted.
func (p *Publisher) Published() int64 {
	return p.published.Load()
}

func (p *Publisher) Close() error {
	p.closed.Store(true)
	return nil
}
