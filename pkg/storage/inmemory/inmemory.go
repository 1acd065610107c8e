// Package inmemory is a map-backed storage driver for tests and for running
// without a database.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/papercomputeco/mealprep/pkg/storage"
)

// Driver implements storage.Driver in memory.
type Driver struct {
	// mu guards every field below.
	mu sync.RWMutex

	// messages is keyed by session id, each slice in insertion order.
	messages map[string][]*storage.Message
	plans    []*storage.Plan
	nextID   int64
}

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{
		messages: make(map[string][]*storage.Message),
	}
}

func (s *Driver) SaveMessage(_ context.Context, msg *storage.Message) error {
	if msg == nil {
		return errors.New("cannot store nil message")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg.ID = s.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	stored := *msg
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], &stored)
	return nil
}

func (s *Driver) Messages(_ context.Context, sessionID string) ([]*storage.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.messages[sessionID]
	out := make([]*storage.Message, 0, len(src))
	for _, m := range src {
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (s *Driver) SavePlan(_ context.Context, plan *storage.Plan) error {
	if plan == nil {
		return errors.New("cannot store nil plan")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	plan.ID = s.nextID
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}

	stored := *plan
	s.plans = append(s.plans, &stored)
	return nil
}

func (s *Driver) LatestPlan(_ context.Context, sessionID string) (*storage.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.plans) - 1; i >= 0; i-- {
		p := s.plans[i]
		if sessionID == "" || p.SessionID == sessionID {
			c := *p
			return &c, nil
		}
	}
	return nil, storage.NotFoundError{What: "plan", Key: sessionID}
}

func (s *Driver) ListPlans(_ context.Context, limit int) ([]*storage.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		c := *p
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored plans.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plans)
}

// Close is a no-op for the in-memory store.
func (s *Driver) Close() error {
	return nil
}
