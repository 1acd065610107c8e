package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypePlanGenerated is emitted after the agent returns a meal plan.
	EventTypePlanGenerated = "mealprep.plan.generated"
)

// PlanGeneratedEvent is a transport-neutral event payload for a new plan.
type PlanGeneratedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	Source        Source    `json:"source"`
	PlanID        int64     `json:"plan_id,omitempty"`
	Markdown      string    `json:"markdown"`
}

// Source identifies the conversation the plan came from.
type Source struct {
	AppName   string `json:"app_name"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Streaming bool   `json:"streaming"`
}

// NewPlanGeneratedEvent fills the envelope fields for a plan.
func NewPlanGeneratedEvent(src Source, planID int64, markdown string) *PlanGeneratedEvent {
	return &PlanGeneratedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypePlanGenerated,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        src,
		PlanID:        planID,
		Markdown:      markdown,
	}
}
