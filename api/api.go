package api

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/papercomputeco/mealprep/pkg/chat"
	"github.com/papercomputeco/mealprep/pkg/pdf"
	"github.com/papercomputeco/mealprep/pkg/storage"
)

// Server is the API server for the mealprep web client.
type Server struct {
	config  Config
	agent   chat.Agent
	storer  storage.Driver
	plans   chat.PlanSink
	metrics pdf.Metrics
	logger  *slog.Logger
	app     *fiber.App

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	now      func() time.Time
}

// sessionEntry is a chat session held in memory between requests.
type sessionEntry struct {
	chat     *chat.Session
	lastUsed time.Time
}

// NewServer creates a new API server. plans may be nil, in which case
// detected meal plans are not stored.
func NewServer(config Config, agent chat.Agent, storer storage.Driver, plans chat.PlanSink, logger *slog.Logger) (*Server, error) {
	if agent == nil {
		return nil, errors.New("api server requires an agent")
	}
	if storer == nil {
		return nil, errors.New("api server requires a storage driver")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = defaultSessionTTL
	}
	if config.KeepAlive <= 0 {
		config.KeepAlive = defaultKeepAlive
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		agent:    agent,
		storer:   storer,
		plans:    plans,
		metrics:  pdf.NewCoreMetrics(),
		logger:   logger,
		app:      app,
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
	}

	if len(config.AllowedOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(config.AllowedOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept",
		}))
	}

	app.Get("/ping", s.handlePing)
	app.Post("/api/sessions", s.handleCreateSession)
	app.Get("/api/sessions/:id/messages", s.handleMessages)
	app.Post("/api/chat", s.handleChat)
	app.Post("/api/chat/stream", s.handleChatStream)
	app.Get("/api/plan", s.handleLatestPlan)
	app.Get("/api/plan.pdf", s.handlePlanPDF)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// lookup returns the in-memory chat session id and marks it used.
func (s *Server) lookup(id string) (*chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictIdle(now)
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = now
	return e.chat, true
}

func (s *Server) remember(id string, cs *chat.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictIdle(now)
	s.sessions[id] = &sessionEntry{chat: cs, lastUsed: now}
}

// evictIdle drops sessions unused for longer than the TTL. A session with a
// request in flight is kept. Callers hold s.mu.
func (s *Server) evictIdle(now time.Time) {
	for id, e := range s.sessions {
		if e.chat.State().InFlight() || now.Sub(e.lastUsed) <= s.config.SessionTTL {
			continue
		}
		delete(s.sessions, id)
		s.logger.Debug("chat session evicted", "session_id", id)
	}
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
