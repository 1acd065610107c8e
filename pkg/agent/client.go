// Package agent is a client for the meal-prep agent server.
//
// The server exposes the ADK HTTP surface: sessions are created per user,
// /run returns the complete event list for one turn and /run_sse streams
// the same events as Server-Sent Events.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultAppName = "app"
	DefaultUserID  = "u_999"

	// DefaultTimeout covers a full plan generation, which can take several
	// minutes.
	DefaultTimeout = 10 * time.Minute

	maxErrorBody = 4 * 1024
)

// Config configures a Client. Zero values fall back to the defaults above.
type Config struct {
	BaseURL    string
	AppName    string
	UserID     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one agent server.
type Client struct {
	baseURL    string
	appName    string
	userID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Session identifies a conversation on the agent server. The server's
// response is authoritative for both ids.
type Session struct {
	ID      string `json:"id"`
	AppName string `json:"appName"`
	UserID  string `json:"userId"`
}

// RunRequest is the body of /run and /run_sse.
type RunRequest struct {
	AppName    string         `json:"appName"`
	UserID     string         `json:"userId"`
	SessionID  string         `json:"sessionId"`
	NewMessage *genai.Content `json:"newMessage"`
	Streaming  bool           `json:"streaming,omitempty"`
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appName:    cfg.AppName,
		userID:     cfg.UserID,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.appName == "" {
		c.appName = DefaultAppName
	}
	if c.userID == "" {
		c.userID = DefaultUserID
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// AppName returns the app name sent with every run.
func (c *Client) AppName() string {
	return c.appName
}

// CreateSession creates (or re-creates) the session with the given id for
// the configured user.
func (c *Client) CreateSession(ctx context.Context, sessionID string) (*Session, error) {
	endpoint := fmt.Sprintf("%s/apps/%s/users/%s/sessions/%s",
		c.baseURL,
		url.PathEscape(c.appName),
		url.PathEscape(c.userID),
		url.PathEscape(sessionID),
	)

	resp, err := c.post(ctx, endpoint, nil, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	sess := &Session{}
	if err := json.NewDecoder(resp.Body).Decode(sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if sess.ID == "" {
		sess.ID = sessionID
	}
	if sess.UserID == "" {
		sess.UserID = c.userID
	}
	if sess.AppName == "" {
		sess.AppName = c.appName
	}

	c.logger.Debug("created agent session", "session_id", sess.ID, "user_id", sess.UserID)
	return sess, nil
}

// Run sends message and returns the reply extracted from the complete
// event list.
func (c *Client) Run(ctx context.Context, sess *Session, message string) (string, error) {
	resp, err := c.post(ctx, c.baseURL+"/run", c.runRequest(sess, message, false), "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.readErr(ctx, err)
	}

	text, err := ExtractFinalText(body)
	if err != nil {
		c.logger.Warn("no reply in agent response", "error", err, "body", string(truncate(body)))
		return "", err
	}
	return text, nil
}

// RunSSE sends message to the streaming endpoint and reports each text
// snapshot to onSnapshot. It returns the final snapshot.
func (c *Client) RunSSE(ctx context.Context, sess *Session, message string, onSnapshot SnapshotFunc) (string, error) {
	return c.RelaySSE(ctx, sess, message, nil, onSnapshot)
}

// RelaySSE is RunSSE that also copies the raw stream to tee as it arrives.
func (c *Client) RelaySSE(ctx context.Context, sess *Session, message string, tee io.Writer, onSnapshot SnapshotFunc) (string, error) {
	body, err := c.OpenStream(ctx, sess, message)
	if err != nil {
		return "", err
	}
	defer body.Close()

	text, err := ReadSnapshots(body, tee, onSnapshot, c.logger)
	if err != nil {
		return "", c.readErr(ctx, err)
	}
	return text, nil
}

// OpenStream starts a streaming run and returns the raw SSE body. The
// caller must close it.
func (c *Client) OpenStream(ctx context.Context, sess *Session, message string) (io.ReadCloser, error) {
	resp, err := c.post(ctx, c.baseURL+"/run_sse", c.runRequest(sess, message, true), "text/event-stream")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) runRequest(sess *Session, message string, streaming bool) *RunRequest {
	return &RunRequest{
		AppName:   c.appName,
		UserID:    sess.UserID,
		SessionID: sess.ID,
		NewMessage: &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: message}},
		},
		Streaming: streaming,
	}
}

// post sends a JSON body and returns the response when the status is 2xx.
func (c *Client) post(ctx context.Context, endpoint string, payload any, accept string) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	c.logger.Debug("agent request", "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	return resp, nil
}

// readErr prefers the context error when a body read failed because the
// caller cancelled.
func (c *Client) readErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func truncate(b []byte) []byte {
	if len(b) > maxErrorBody {
		return b[:maxErrorBody]
	}
	return b
}
