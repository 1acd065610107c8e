package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/mealprep/pkg/agent"
	"github.com/papercomputeco/mealprep/pkg/chat"
	"github.com/papercomputeco/mealprep/pkg/pdf"
	"github.com/papercomputeco/mealprep/pkg/storage"
)

// planFilename is the attachment name of exported plans.
const planFilename = "meal-plan.pdf"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatRequest is the body of the chat endpoints. An empty SessionID starts
// a new agent session.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is returned by POST /api/chat.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	IsPlan    bool   `json:"is_plan"`
}

// MessagesResponse is returned by GET /api/sessions/:id/messages.
type MessagesResponse struct {
	SessionID string             `json:"session_id"`
	Messages  []*storage.Message `json:"messages"`
}

var errUnknownSession = errors.New("unknown session")

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleCreateSession opens a new agent session.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	_, sess, err := s.session(c.UserContext(), "")
	if err != nil {
		return s.agentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// handleMessages returns the stored transcript of a session.
func (s *Server) handleMessages(c *fiber.Ctx) error {
	id := c.Params("id")
	msgs, err := s.storer.Messages(c.UserContext(), id)
	if err != nil {
		s.logger.Error("listing messages", "session_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list messages"})
	}
	if msgs == nil {
		msgs = []*storage.Message{}
	}
	return c.JSON(MessagesResponse{SessionID: id, Messages: msgs})
}

// handleChat sends one message and waits for the complete reply.
func (s *Server) handleChat(c *fiber.Ctx) error {
	req, err := parseChatRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	cs, sess, err := s.session(c.UserContext(), req.SessionID)
	if err != nil {
		return s.agentError(c, err)
	}

	reply, err := cs.Send(c.UserContext(), req.Message, nil)
	if err != nil {
		return s.agentError(c, err)
	}

	return c.JSON(ChatResponse{
		SessionID: sess.ID,
		Reply:     reply,
		IsPlan:    chat.IsMealPlan(reply),
	})
}

// handleChatStream relays the agent's event stream to the client verbatim.
// The session is opened before the response starts so that failures there
// still get a proper status code; later failures become an error event.
func (s *Server) handleChatStream(c *fiber.Ctx) error {
	req, err := parseChatRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	cs, sess, err := s.session(c.UserContext(), req.SessionID)
	if err != nil {
		return s.agentError(c, err)
	}
	if cs.State().InFlight() {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: chat.ErrBusy.Error()})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Session-Id", sess.ID)

	message := req.Message
	keepAlive := s.config.KeepAlive
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// Cancelled by the first failed write to the client.
		ctx, cancel := context.WithCancel(context.Background())
		fw := newFlushWriter(w, cancel)
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			fw.keepAlive(ctx, keepAlive)
		}()
		defer func() {
			cancel()
			<-stopped
		}()

		_, err := cs.Relay(ctx, message, fw, nil)
		if err == nil {
			return
		}

		s.logger.Warn("chat stream failed", "session_id", sess.ID, "error", err)
		var perr *agent.ProtocolError
		if errors.As(err, &perr) {
			// The agent's own error event was already relayed.
			return
		}
		writeErrorEvent(fw, err)
	})
	return nil
}

// handleLatestPlan returns the newest plan, optionally limited to one session.
func (s *Server) handleLatestPlan(c *fiber.Ctx) error {
	plan, err := s.storer.LatestPlan(c.UserContext(), c.Query("session"))
	if err != nil {
		return s.planError(c, err)
	}
	return c.JSON(plan)
}

// handlePlanPDF exports the newest plan as a PDF attachment.
func (s *Server) handlePlanPDF(c *fiber.Ctx) error {
	plan, err := s.storer.LatestPlan(c.UserContext(), c.Query("session"))
	if err != nil {
		return s.planError(c, err)
	}

	var buf bytes.Buffer
	err = pdf.Render(pdf.RenderRequest{
		Reader:  strings.NewReader(plan.Markdown),
		Writer:  &buf,
		Config:  s.config.PDF,
		Metrics: s.metrics,
	})
	if err != nil {
		s.logger.Error("exporting plan", "plan_id", plan.ID, "error", err)
		var eerr *pdf.ExportError
		if errors.As(err, &eerr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to export plan"})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(planFilename)
	return c.Send(buf.Bytes())
}

// session returns the chat session for id, creating a new one when id is
// empty.
func (s *Server) session(ctx context.Context, id string) (*chat.Session, *agent.Session, error) {
	if id != "" {
		cs, ok := s.lookup(id)
		if !ok {
			return nil, nil, errUnknownSession
		}
		sess, err := cs.Open(ctx)
		return cs, sess, err
	}

	cs, err := chat.NewSession(chat.Config{
		Agent:     s.agent,
		Driver:    s.storer,
		Plans:     s.plans,
		Streaming: s.config.Streaming,
		Logger:    s.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	sess, err := cs.Open(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.remember(sess.ID, cs)

	s.logger.Debug("chat session opened", "session_id", sess.ID)
	return cs, sess, nil
}

// agentError maps chat and agent failures to responses.
func (s *Server) agentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errUnknownSession):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, chat.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(ErrorResponse{Error: err.Error()})
	default:
		s.logger.Warn("agent request failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
}

func (s *Server) planError(c *fiber.Ctx, err error) error {
	if storage.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "no meal plan yet"})
	}
	s.logger.Error("loading plan", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load plan"})
}

func parseChatRequest(c *fiber.Ctx) (*ChatRequest, error) {
	req := &ChatRequest{}
	if err := c.BodyParser(req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return nil, errors.New("message is required")
	}
	return req, nil
}

// keepAliveLine is an SSE comment; clients ignore it.
const keepAliveLine = ": keep-alive\n"

// flushWriter flushes after every write so relayed events reach the client
// as they arrive. The first failed write calls cancel.
type flushWriter struct {
	mu     sync.Mutex
	w      *bufio.Writer
	cancel context.CancelFunc

	// atLineStart is true when the last byte written ended a line.
	atLineStart bool
}

func newFlushWriter(w *bufio.Writer, cancel context.CancelFunc) *flushWriter {
	return &flushWriter{w: w, cancel: cancel, atLineStart: true}
}

func (f *flushWriter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(p)
}

func (f *flushWriter) write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err == nil {
		err = f.w.Flush()
	}
	if n > 0 {
		f.atLineStart = p[n-1] == '\n'
	}
	if err != nil {
		f.cancel()
	}
	return n, err
}

// ping writes a keep-alive comment unless a relayed line is half written.
func (f *flushWriter) ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.atLineStart {
		return nil
	}
	_, err := f.write([]byte(keepAliveLine))
	return err
}

// keepAlive pings every interval until ctx is done or a write fails.
func (f *flushWriter) keepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.ping(); err != nil {
				return
			}
		}
	}
}

func writeErrorEvent(w *flushWriter, err error) {
	b, _ := json.Marshal(ErrorResponse{Error: err.Error()})
	_, _ = fmt.Fprintf(w, "data: %s\n\n", b)
}
