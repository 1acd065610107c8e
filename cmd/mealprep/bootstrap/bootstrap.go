// Package bootstrap resolves configuration and builds the shared
// dependencies (logger, agent client, storage, event publisher) of mealprep
// commands.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mealprep/pkg/agent"
	"github.com/papercomputeco/mealprep/pkg/config"
	"github.com/papercomputeco/mealprep/pkg/eventstream"
	"github.com/papercomputeco/mealprep/pkg/eventstream/kafka"
	"github.com/papercomputeco/mealprep/pkg/eventstream/nop"
	"github.com/papercomputeco/mealprep/pkg/logger"
	"github.com/papercomputeco/mealprep/pkg/pdf"
	"github.com/papercomputeco/mealprep/pkg/storage"
	storageutils "github.com/papercomputeco/mealprep/pkg/storage/utils"
)

// Runtime is the resolved configuration of one command invocation.
type Runtime struct {
	ConfigDir string
	Debug     bool
	Config    *config.Config
	Logger    *slog.Logger

	logFile io.Closer
}

// Options tweak Load.
type Options struct {
	// JSONLogs selects structured JSON logs over the pretty handler.
	JSONLogs bool

	// LogFile, when set, also appends JSON records to this file.
	LogFile string
}

// Load resolves configuration for cmd, binding the registry flags named by
// flagKeys so they take precedence over environment and file values.
func Load(cmd *cobra.Command, opts Options, flagKeys ...string) (*Runtime, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	rt := &Runtime{
		ConfigDir: configDir,
		Debug:     debug,
		Config:    config.Resolve(v),
		Logger: logger.New(
			logger.WithDebug(debug),
			logger.WithPretty(!opts.JSONLogs),
			logger.WithJSON(opts.JSONLogs),
			logger.WithWriter(cmd.ErrOrStderr()),
			logger.WithComponent(cmd.Name()),
		),
	}

	if opts.LogFile != "" {
		fileLog, closer, err := logger.OpenFile(opts.LogFile,
			logger.WithDebug(debug),
			logger.WithComponent(cmd.Name()),
		)
		if err != nil {
			return nil, err
		}
		rt.Logger = logger.Multi(rt.Logger, fileLog)
		rt.logFile = closer
	}

	return rt, nil
}

// Close releases the log file opened for Options.LogFile.
func (r *Runtime) Close() error {
	if r.logFile == nil {
		return nil
	}
	return r.logFile.Close()
}

// AgentClient builds the agent client from the [agent] section.
func (r *Runtime) AgentClient() (*agent.Client, error) {
	timeout, err := r.Config.Agent.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return agent.NewClient(agent.Config{
		BaseURL: strings.TrimRight(r.Config.Agent.BaseURL, "/"),
		AppName: r.Config.Agent.AppName,
		UserID:  r.Config.Agent.UserID,
		Timeout: timeout,
		Logger:  r.Logger,
	}), nil
}

// OpenStorage opens the storage driver from the [storage] section.
func (r *Runtime) OpenStorage(ctx context.Context) (storage.Driver, error) {
	driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		Driver:      r.Config.Storage.Driver,
		SQLitePath:  r.Config.Storage.SQLitePath,
		PostgresDSN: r.Config.Storage.PostgresDSN,
	})
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	r.Logger.Debug("storage opened",
		"driver", r.Config.Storage.Driver,
		"sqlite_path", r.Config.Storage.SQLitePath,
	)
	return driver, nil
}

// OpenPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func (r *Runtime) OpenPublisher() (eventstream.Publisher, error) {
	es := r.Config.EventStream
	if len(es.Brokers) == 0 {
		return nop.NewPublisher(), nil
	}
	p, err := kafka.NewPublisher(kafka.Config{Brokers: es.Brokers, Topic: es.Topic})
	if err != nil {
		return nil, fmt.Errorf("creating plan event publisher: %w", err)
	}
	r.Logger.Info("publishing plan events", "brokers", strings.Join(es.Brokers, ","), "topic", es.Topic)
	return p, nil
}

// PDFConfig returns the export layout from the [export] section.
func (r *Runtime) PDFConfig() pdf.Config {
	cfg := pdf.DefaultConfig()
	if r.Config.Export.PageSize != "" {
		cfg.PageSize = r.Config.Export.PageSize
	}
	cfg.PaginateWrappedLines = r.Config.Export.PaginateWrappedLines
	return cfg
}
