// Package chat runs conversations with the meal-prep agent: one exchange at a
// time, with the transcript persisted and meal plans handed off for storage.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/mealprep/pkg/agent"
	"github.com/papercomputeco/mealprep/pkg/eventstream"
	"github.com/papercomputeco/mealprep/pkg/storage"
	"github.com/papercomputeco/mealprep/pkg/worker"
)

// ErrBusy is returned by Send while another exchange is in flight.
var ErrBusy = errors.New("a message is already being sent")

// Agent is the subset of *agent.Client a Session drives.
type Agent interface {
	AppName() string
	CreateSession(ctx context.Context, sessionID string) (*agent.Session, error)
	Run(ctx context.Context, sess *agent.Session, message string) (string, error)
	RelaySSE(ctx context.Context, sess *agent.Session, message string, tee io.Writer, onSnapshot agent.SnapshotFunc) (string, error)
}

// PlanSink receives detected meal plans. *worker.Pool implements it.
type PlanSink interface {
	Enqueue(job worker.Job) bool
}

// Config configures a Session.
type Config struct {
	Agent Agent

	// Driver persists the transcript. Optional.
	Driver storage.Driver

	// Plans receives meal plans. Optional.
	Plans PlanSink

	// Streaming selects /run_sse over /run.
	Streaming bool

	// Resume continues an existing agent session instead of creating one.
	Resume *agent.Session

	Logger *slog.Logger
}

// Session is a conversation with the agent. Send may be called from any
// goroutine; concurrent sends fail with ErrBusy.
type Session struct {
	cfg     Config
	machine *Machine
	logger  *slog.Logger

	mu       sync.Mutex
	sess     *agent.Session
	messages []storage.Message
	lastPlan string
}

// NewSession creates a Session. The agent session is created lazily on the
// first Send.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Agent == nil {
		return nil, errors.New("chat session requires an agent")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		cfg:     cfg,
		machine: NewMachine(),
		logger:  logger,
		sess:    cfg.Resume,
	}, nil
}

// State returns the state of the current exchange.
func (s *Session) State() State {
	return s.machine.State()
}

// AgentSession returns the agent session, or nil before the first Send.
func (s *Session) AgentSession() *agent.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil
	}
	cp := *s.sess
	return &cp
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []storage.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.Message(nil), s.messages...)
}

// LastPlan returns the most recent meal plan reply, or "".
func (s *Session) LastPlan() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPlan
}

// Send delivers text to the agent and returns the reply. Blank text is
// ignored. In streaming mode onSnapshot receives each full-text snapshot.
// On failure an "Error: ..." reply is recorded and the error returned.
func (s *Session) Send(ctx context.Context, text string, onSnapshot agent.SnapshotFunc) (string, error) {
	return s.exchange(ctx, text, s.cfg.Streaming, nil, onSnapshot)
}

// Relay is Send over the streaming endpoint regardless of configuration,
// copying the raw event stream to tee as it arrives.
func (s *Session) Relay(ctx context.Context, text string, tee io.Writer, onSnapshot agent.SnapshotFunc) (string, error) {
	return s.exchange(ctx, text, true, tee, onSnapshot)
}

// Open creates the agent session if there is none yet and returns it.
func (s *Session) Open(ctx context.Context) (*agent.Session, error) {
	sess, err := s.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	cp := *sess
	return &cp, nil
}

func (s *Session) exchange(ctx context.Context, text string, streaming bool, tee io.Writer, onSnapshot agent.SnapshotFunc) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	if _, err := s.machine.Fire(EventSend); err != nil {
		return "", ErrBusy
	}

	sess, err := s.ensureSession(ctx)
	s.record(ctx, text, true)
	if err != nil {
		return "", s.fail(ctx, err)
	}
	if _, err := s.machine.Fire(EventSessionReady); err != nil {
		return "", s.fail(ctx, err)
	}

	var reply string
	if streaming {
		reply, err = s.cfg.Agent.RelaySSE(ctx, sess, text, tee, func(snapshot string) {
			if _, ferr := s.machine.Fire(EventSnapshot); ferr != nil {
				s.logger.Debug("ignoring snapshot", "error", ferr)
				return
			}
			if onSnapshot != nil {
				onSnapshot(snapshot)
			}
		})
	} else {
		reply, err = s.cfg.Agent.Run(ctx, sess, text)
	}
	if err != nil {
		return "", s.fail(ctx, err)
	}

	s.record(ctx, reply, false)
	if _, err := s.machine.Fire(EventComplete); err != nil {
		return "", err
	}

	if IsMealPlan(reply) {
		s.handlePlan(sess, reply, streaming)
	}

	return reply, nil
}

// Reset forgets the agent session and transcript.
func (s *Session) Reset() {
	s.mu.Lock()
	s.sess = nil
	s.messages = nil
	s.lastPlan = ""
	s.mu.Unlock()
	_, _ = s.machine.Fire(EventReset)
}

func (s *Session) ensureSession(ctx context.Context) (*agent.Session, error) {
	s.mu.Lock()
	sess := s.sess
	s.mu.Unlock()
	if sess != nil {
		return sess, nil
	}

	sess, err := s.cfg.Agent.CreateSession(ctx, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("creating agent session: %w", err)
	}
	s.logger.Debug("agent session created", "session_id", sess.ID, "user_id", sess.UserID)

	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *Session) fail(ctx context.Context, err error) error {
	s.logger.Warn("chat exchange failed", "error", err)
	s.record(ctx, "Error: "+err.Error(), false)
	_, _ = s.machine.Fire(EventFail)
	return err
}

// record appends to the transcript. Storage failures are logged; the
// conversation continues without them.
func (s *Session) record(ctx context.Context, text string, isUser bool) {
	msg := storage.Message{Text: text, IsUser: isUser, CreatedAt: time.Now().UTC()}

	s.mu.Lock()
	if s.sess != nil {
		msg.SessionID = s.sess.ID
	}
	s.mu.Unlock()

	if s.cfg.Driver != nil && msg.SessionID != "" {
		if err := s.cfg.Driver.SaveMessage(context.WithoutCancel(ctx), &msg); err != nil {
			s.logger.Warn("storing message failed", "error", err)
		}
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

func (s *Session) handlePlan(sess *agent.Session, reply string, streaming bool) {
	s.mu.Lock()
	s.lastPlan = reply
	s.mu.Unlock()

	if s.cfg.Plans == nil {
		return
	}
	ok := s.cfg.Plans.Enqueue(worker.Job{
		Source: eventstream.Source{
			AppName:   s.cfg.Agent.AppName(),
			UserID:    sess.UserID,
			SessionID: sess.ID,
			Streaming: streaming,
		},
		Markdown: reply,
	})
	if !ok {
		s.logger.Warn("meal plan dropped", "session_id", sess.ID)
	}
}
