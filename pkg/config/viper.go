package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/papercomputeco/mealprep/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable read by InitViper.
const EnvPrefix = "MEALPREP"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), loads a .env file from the working
// directory when present, and binds environment variables with the
// MEALPREP_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MEALPREP_AGENT_BASE_URL, MEALPREP_SERVE_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. A missing .env is the common case. godotenv never overrides
	// variables already set in the environment.
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Resolve builds a Config from v, so flags, environment and file values are
// all reflected. List values given as one comma-separated string (the usual
// form in environment variables) are split.
func Resolve(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Agent: AgentConfig{
			BaseURL:   v.GetString("agent.base_url"),
			AppName:   v.GetString("agent.app_name"),
			UserID:    v.GetString("agent.user_id"),
			Streaming: v.GetBool("agent.streaming"),
			Timeout:   v.GetString("agent.timeout"),
		},
		Export: ExportConfig{
			Output:               v.GetString("export.output"),
			PageSize:             v.GetString("export.page_size"),
			PaginateWrappedLines: v.GetBool("export.paginate_wrapped_lines"),
		},
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		EventStream: EventStreamConfig{
			Brokers: resolveList(v, "eventstream.brokers"),
			Topic:   v.GetString("eventstream.topic"),
		},
		Serve: ServeConfig{
			Listen:         v.GetString("serve.listen"),
			AllowedOrigins: resolveList(v, "serve.allowed_origins"),
		},
	}
}

func resolveList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		out = append(out, splitList(item)...)
	}
	return out
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Agent
	v.SetDefault("agent.base_url", d.Agent.BaseURL)
	v.SetDefault("agent.app_name", d.Agent.AppName)
	v.SetDefault("agent.user_id", d.Agent.UserID)
	v.SetDefault("agent.streaming", d.Agent.Streaming)
	v.SetDefault("agent.timeout", d.Agent.Timeout)

	// Export
	v.SetDefault("export.output", d.Export.Output)
	v.SetDefault("export.page_size", d.Export.PageSize)
	v.SetDefault("export.paginate_wrapped_lines", d.Export.PaginateWrappedLines)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Event stream
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)

	// Serve
	v.SetDefault("serve.listen", d.Serve.Listen)
	v.SetDefault("serve.allowed_origins", d.Serve.AllowedOrigins)
}
