package eventstream

import "context"

// Publisher publishes plan events to an event stream backend.
type Publisher interface {
	PublishPlan(ctx context.Context, event *PlanGeneratedEvent) error
	Close() error
}
