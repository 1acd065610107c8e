// Package storage persists chat messages and generated meal plans.
package storage

import (
	"context"
	"time"
)

// Message is one line of a chat transcript.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	CreatedAt time.Time `json:"created_at"`
}

// Plan is an agent reply recognized as a meal plan.
type Plan struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"created_at"`
}

// Driver defines the interface for persisting and retrieving transcripts
// and plans in a storage backend. Save methods assign ID and, when zero,
// CreatedAt.
type Driver interface {
	// SaveMessage appends a message to its session transcript.
	SaveMessage(ctx context.Context, msg *Message) error

	// Messages returns a session transcript, oldest first.
	Messages(ctx context.Context, sessionID string) ([]*Message, error)

	// SavePlan stores a generated plan.
	SavePlan(ctx context.Context, plan *Plan) error

	// LatestPlan returns the most recent plan of a session, or of any
	// session when sessionID is empty. Returns NotFoundError if none exists.
	LatestPlan(ctx context.Context, sessionID string) (*Plan, error)

	// ListPlans returns up to limit plans, newest first. limit <= 0 means all.
	ListPlans(ctx context.Context, limit int) ([]*Plan, error)

	// Close closes the store and releases any resources.
	Close() error
}
