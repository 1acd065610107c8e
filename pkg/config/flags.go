package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --agent-url
// on both "mealprep chat" and "mealprep serve").
type Flag struct {
	// Name is the long flag name (e.g. "agent-url").
	Name string

	// Shorthand is the one-letter short flag (e.g. "o"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "agent.base_url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAgentURL    = "agent-url"
	FlagStreaming   = "streaming"
	FlagStorage     = "storage"
	FlagSQLite      = "sqlite"
	FlagPostgresDSN = "postgres-dsn"
	FlagBrokers     = "kafka-brokers"
	FlagTopic       = "kafka-topic"
	FlagListen      = "listen"
	FlagOutput      = "output"
	FlagPageSize    = "page-size"
	FlagPaginate    = "paginate-wrapped-lines"
	FlagOrigins     = "allowed-origins"
)

// Flags is the flag registry shared by all mealprep commands.
var Flags = FlagSet{
	FlagAgentURL:    {Name: "agent-url", ViperKey: "agent.base_url", Description: "Meal-prep agent server URL"},
	FlagStreaming:   {Name: "streaming", ViperKey: "agent.streaming", Description: "Stream replies from the agent as they are generated"},
	FlagStorage:     {Name: "storage", ViperKey: "storage.driver", Description: "Storage driver (memory, sqlite, postgres)"},
	FlagSQLite:      {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database"},
	FlagPostgresDSN: {Name: "postgres-dsn", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagBrokers:     {Name: "kafka-brokers", ViperKey: "eventstream.brokers", Description: "Kafka brokers for plan events (empty disables publishing)"},
	FlagTopic:       {Name: "kafka-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for plan events"},
	FlagListen:      {Name: "listen", Shorthand: "l", ViperKey: "serve.listen", Description: "Address for the HTTP service to listen on"},
	FlagOrigins:     {Name: "allowed-origins", ViperKey: "serve.allowed_origins", Description: "Browser origins allowed by CORS"},
	FlagOutput:      {Name: "output", Shorthand: "o", ViperKey: "export.output", Description: "PDF output path"},
	FlagPageSize:    {Name: "page-size", ViperKey: "export.page_size", Description: "PDF page size (A4, Letter, ...)"},
	FlagPaginate:    {Name: "paginate-wrapped-lines", ViperKey: "export.paginate_wrapped_lines", Description: "Check for page breaks before every wrapped sub-line"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddStringSliceFlag registers a comma-separated list flag on cmd from the
// given FlagSet.
func AddStringSliceFlag(cmd *cobra.Command, fs FlagSet, key string, target *[]string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetStringSlice(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringSliceVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringSliceVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper instance holding only NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
