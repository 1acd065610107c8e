// Package servecmder provides the serve command, which runs the HTTP service
// used by the mealprep web client.
package servecmder

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mealprep/api"
	"github.com/papercomputeco/mealprep/cmd/mealprep/bootstrap"
	"github.com/papercomputeco/mealprep/pkg/config"
	"github.com/papercomputeco/mealprep/pkg/worker"
)

type ServeCommander struct {
	agentURL    string
	streaming   bool
	listen      string
	origins     []string
	storage     string
	sqlitePath  string
	postgresDSN string
	brokers     []string
	topic       string
	pageSize    string
	paginate    bool

	jsonLogs bool
	logFile  string
	workers  uint
}

var serveFlags = []string{
	config.FlagAgentURL,
	config.FlagStreaming,
	config.FlagListen,
	config.FlagOrigins,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagBrokers,
	config.FlagTopic,
	config.FlagPageSize,
	config.FlagPaginate,
}

const serveLongDesc string = `Run the mealprep HTTP service.

The service relays chat messages from the web client to the meal-prep agent,
stores transcripts and generated plans, publishes plan events to Kafka when
brokers are configured, and exports the latest plan as a PDF.

Endpoints:
  POST /api/sessions                Open an agent session
  GET  /api/sessions/:id/messages   Read a session transcript
  POST /api/chat                    Send a message and wait for the reply
  POST /api/chat/stream             Send a message and relay the event stream
  GET  /api/plan                    Latest stored plan as JSON
  GET  /api/plan.pdf                Latest stored plan as a PDF

Examples:
  mealprep serve
  mealprep serve --listen :9090 --sqlite ./mealprep.db
  mealprep serve --kafka-brokers localhost:9092 --json-logs
  mealprep serve --log-file /var/log/mealprep.log`

const serveShortDesc string = "Run the mealprep HTTP service"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap.Load(cmd, bootstrap.Options{
				JSONLogs: cmder.jsonLogs,
				LogFile:  cmder.logFile,
			}, serveFlags...)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return cmder.run(ctx, rt)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAgentURL, &cmder.agentURL)
	config.AddBoolFlag(cmd, config.Flags, config.FlagStreaming, &cmder.streaming)
	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagOrigins, &cmder.origins)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagTopic, &cmder.topic)
	config.AddStringFlag(cmd, config.Flags, config.FlagPageSize, &cmder.pageSize)
	config.AddBoolFlag(cmd, config.Flags, config.FlagPaginate, &cmder.paginate)

	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Write logs as JSON")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")
	cmd.Flags().UintVar(&cmder.workers, "workers", 2, "Number of background workers storing and publishing plans")

	return cmd
}

func (c *ServeCommander) run(ctx context.Context, rt *bootstrap.Runtime) error {
	log := rt.Logger

	client, err := rt.AgentClient()
	if err != nil {
		return err
	}

	driver, err := rt.OpenStorage(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := rt.OpenPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Driver:     driver,
		Publisher:  publisher,
		NumWorkers: c.workers,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	server, err := api.NewServer(api.Config{
		ListenAddr:     rt.Config.Serve.Listen,
		AllowedOrigins: rt.Config.Serve.AllowedOrigins,
		Streaming:      rt.Config.Agent.Streaming,
		PDF:            rt.PDFConfig(),
	}, client, driver, pool, log)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	log.Info("agent configured",
		"agent_url", rt.Config.Agent.BaseURL,
		"app", rt.Config.Agent.AppName,
		"streaming", rt.Config.Agent.Streaming,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return server.Shutdown()
	}
}
