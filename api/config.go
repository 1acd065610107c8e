// Package api provides the HTTP service behind the mealprep web client:
// chatting with the agent, reading transcripts, and exporting plans.
package api

import (
	"time"

	"github.com/papercomputeco/mealprep/pkg/pdf"
)

const (
	defaultSessionTTL = 30 * time.Minute
	defaultKeepAlive  = 15 * time.Second
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// AllowedOrigins lists the browser origins allowed by CORS. Empty
	// disables the CORS middleware.
	AllowedOrigins []string

	// Streaming makes POST /api/chat read the agent's event stream
	// instead of the single /run response.
	Streaming bool

	// PDF configures plan exports. Zero fields take pdf.DefaultConfig values.
	PDF pdf.Config

	// SessionTTL is how long an idle chat session is kept in memory
	// (defaults to 30m). Its transcript stays in storage after eviction.
	SessionTTL time.Duration

	// KeepAlive is the interval of SSE comment lines sent on a quiet
	// /api/chat/stream response (defaults to 15s). A failed write cancels
	// the upstream agent request.
	KeepAlive time.Duration
}
