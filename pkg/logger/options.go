package logger

import (
	"io"
	"log/slog"
)

// Option configures a logger built by New or OpenFile.
type Option func(*config)

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithDebug lowers the level to Debug when debug is true.
func WithDebug(debug bool) Option {
	if debug {
		return WithLevel(slog.LevelDebug)
	}
	return WithLevel(slog.LevelInfo)
}

// WithPretty selects the charmbracelet/log handler for terminal output.
// It takes precedence over WithJSON.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON selects slog's JSON handler.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithWriter replaces the output writers with w.
func WithWriter(w io.Writer) Option {
	return WithWriters(w)
}

// WithWriters writes every record to all of ws.
func WithWriters(ws ...io.Writer) Option {
	return func(c *config) { c.writers = ws }
}

// WithSource adds the caller's file:line to each record.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}

// WithComponent tags records with the emitting component, e.g. the command
// name ("chat", "serve").
func WithComponent(name string) Option {
	return func(c *config) { c.component = name }
}
