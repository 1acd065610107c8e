package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent mealprep configuration stored as
// config.toml in the .mealprep/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Agent       AgentConfig       `toml:"agent"`
	Export      ExportConfig      `toml:"export"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Serve       ServeConfig       `toml:"serve"`
}

// AgentConfig locates the meal-prep agent server.
type AgentConfig struct {
	BaseURL   string `toml:"base_url,omitempty"`
	AppName   string `toml:"app_name,omitempty"`
	UserID    string `toml:"user_id,omitempty"`
	Streaming bool   `toml:"streaming"`

	// Timeout is a Go duration string, e.g. "10m".
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (a AgentConfig) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid agent.timeout: %w", err)
	}
	return d, nil
}

// ExportConfig holds PDF export settings.
type ExportConfig struct {
	Output               string `toml:"output,omitempty"`
	PageSize             string `toml:"page_size,omitempty"`
	PaginateWrappedLines bool   `toml:"paginate_wrapped_lines"`
}

// StorageConfig selects where transcripts and plans are kept.
type StorageConfig struct {
	// Driver is "memory", "sqlite" or "postgres". Empty picks sqlite when
	// SQLitePath is set, memory otherwise.
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig configures plan event publishing. No brokers disables it.
type EventStreamConfig struct {
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// ServeConfig holds HTTP service settings.
type ServeConfig struct {
	Listen         string   `toml:"listen,omitempty"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

func listKey(field func(c *Config) *[]string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strings.Join(*field(c), ",") },
		set: func(c *Config, v string) error { *field(c) = splitList(v); return nil },
	}
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"agent.base_url": {
		get: func(c *Config) string { return c.Agent.BaseURL },
		set: func(c *Config, v string) error { c.Agent.BaseURL = v; return nil },
	},
	"agent.app_name": {
		get: func(c *Config) string { return c.Agent.AppName },
		set: func(c *Config, v string) error { c.Agent.AppName = v; return nil },
	},
	"agent.user_id": {
		get: func(c *Config) string { return c.Agent.UserID },
		set: func(c *Config, v string) error { c.Agent.UserID = v; return nil },
	},
	"agent.streaming": boolKey("agent.streaming", func(c *Config) *bool { return &c.Agent.Streaming }),
	"agent.timeout": {
		get: func(c *Config) string { return c.Agent.Timeout },
		set: func(c *Config, v string) error {
			if _, err := (AgentConfig{Timeout: v}).TimeoutDuration(); err != nil {
				return err
			}
			c.Agent.Timeout = v
			return nil
		},
	},
	"export.output": {
		get: func(c *Config) string { return c.Export.Output },
		set: func(c *Config, v string) error { c.Export.Output = v; return nil },
	},
	"export.page_size": {
		get: func(c *Config) string { return c.Export.PageSize },
		set: func(c *Config, v string) error { c.Export.PageSize = v; return nil },
	},
	"export.paginate_wrapped_lines": boolKey("export.paginate_wrapped_lines", func(c *Config) *bool {
		return &c.Export.PaginateWrappedLines
	}),
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			switch v {
			case "", "memory", "sqlite", "postgres":
				c.Storage.Driver = v
				return nil
			default:
				return fmt.Errorf("invalid value for storage.driver: %q (available: memory, sqlite, postgres)", v)
			}
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"eventstream.brokers": listKey(func(c *Config) *[]string { return &c.EventStream.Brokers }),
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"serve.listen": {
		get: func(c *Config) string { return c.Serve.Listen },
		set: func(c *Config, v string) error { c.Serve.Listen = v; return nil },
	},
	"serve.allowed_origins": listKey(func(c *Config) *[]string { return &c.Serve.AllowedOrigins }),
}
