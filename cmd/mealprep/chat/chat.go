// Package chatcmder provides the chat command for talking to the meal-prep
// agent from the terminal.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/mealprep/cmd/mealprep/bootstrap"
	"github.com/papercomputeco/mealprep/pkg/agent"
	"github.com/papercomputeco/mealprep/pkg/chat"
	"github.com/papercomputeco/mealprep/pkg/cliui"
	"github.com/papercomputeco/mealprep/pkg/config"
	"github.com/papercomputeco/mealprep/pkg/dotdir"
	"github.com/papercomputeco/mealprep/pkg/pdf"
	"github.com/papercomputeco/mealprep/pkg/storage"
	"github.com/papercomputeco/mealprep/pkg/worker"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("agent> ")
)

type chatCommander struct {
	agentURL    string
	streaming   bool
	storage     string
	sqlitePath  string
	postgresDSN string
	brokers     []string
	topic       string
	output      string
	pageSize    string

	export     bool
	newSession bool
	raw        bool

	rt  *bootstrap.Runtime
	in  io.Reader
	out io.Writer
	err io.Writer
}

var chatFlags = []string{
	config.FlagAgentURL,
	config.FlagStreaming,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagBrokers,
	config.FlagTopic,
	config.FlagOutput,
	config.FlagPageSize,
}

const chatLongDesc string = `Start an interactive chat session with the meal-prep agent.

Messages are sent to the configured agent server. With streaming enabled the
reply is printed as it is generated; otherwise the finished reply is rendered
as markdown once it arrives.

The agent session is remembered in the .mealprep/ directory so the next
"mealprep chat" continues the same conversation. Use --new to start over.

When the agent answers with a meal plan, the plan is stored and, with
--export, written to a PDF.

Commands inside the chat:
  /new     Start a new agent session
  /exit    Quit (Ctrl+D works too)

Examples:
  mealprep chat
  mealprep chat --agent-url http://localhost:8000 --streaming=false
  mealprep chat --export -o week.pdf`

const chatShortDesc string = "Chat with the meal-prep agent"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap.Load(cmd, bootstrap.Options{}, chatFlags...)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.rt = rt
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.err = cmd.ErrOrStderr()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAgentURL, &cmder.agentURL)
	config.AddBoolFlag(cmd, config.Flags, config.FlagStreaming, &cmder.streaming)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagTopic, &cmder.topic)
	config.AddStringFlag(cmd, config.Flags, config.FlagOutput, &cmder.output)
	config.AddStringFlag(cmd, config.Flags, config.FlagPageSize, &cmder.pageSize)

	cmd.Flags().BoolVar(&cmder.export, "export", false, "Write meal plans to the --output PDF as they arrive")
	cmd.Flags().BoolVar(&cmder.newSession, "new", false, "Start a new agent session instead of resuming")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print replies as plain text instead of rendered markdown")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	log := c.rt.Logger

	client, err := c.rt.AgentClient()
	if err != nil {
		return err
	}

	driver, err := c.rt.OpenStorage(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := c.rt.OpenPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: publisher,
		Logger:    log,
		OnStored: func(p *storage.Plan) {
			log.Debug("plan stored", "plan_id", p.ID, "session_id", p.SessionID)
		},
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	resume, err := c.resume(client)
	if err != nil {
		return err
	}

	session, err := chat.NewSession(chat.Config{
		Agent:     client,
		Driver:    driver,
		Plans:     pool,
		Streaming: c.rt.Config.Agent.Streaming,
		Resume:    resume,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	if resume != nil {
		fmt.Fprintf(c.out, "  %s Resuming session %s\n", cliui.SuccessMark, cliui.NameStyle.Render(resume.ID))
	} else {
		fmt.Fprintf(c.out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}
	fmt.Fprintf(c.out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Agent:"),
		cliui.ValueStyle.Render(c.rt.Config.Agent.BaseURL),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /new for a new session, /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(c.out)
			return nil
		case "/new":
			session.Reset()
			if err := dotdir.NewManager().ClearSessionState(c.rt.ConfigDir); err != nil {
				log.Warn("clearing session state failed", "error", err)
			}
			fmt.Fprintf(c.out, "  %s New conversation\n\n", cliui.DimStyle.Render("●"))
			continue
		}

		reply, err := c.exchange(ctx, session, input)
		if err != nil {
			fmt.Fprintf(c.err, "  %s %v\n\n", cliui.FailMark, err)
			continue
		}

		c.saveSession(session, log)

		if chat.IsMealPlan(reply) && c.export {
			if err := cliui.Step(c.out, "Exporting plan to "+c.rt.Config.Export.Output, func() error {
				return pdf.WriteFile(c.rt.Config.Export.Output, reply, c.rt.PDFConfig())
			}); err != nil {
				fmt.Fprintf(c.err, "  %s %v\n", cliui.FailMark, err)
			}
			fmt.Fprintln(c.out)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// exchange sends one message and prints the reply.
func (c *chatCommander) exchange(ctx context.Context, session *chat.Session, input string) (string, error) {
	if !c.rt.Config.Agent.Streaming {
		var reply string
		err := cliui.Step(c.out, "Waiting for the agent", func() error {
			var err error
			reply, err = session.Send(ctx, input, nil)
			return err
		})
		if err != nil {
			return "", err
		}
		fmt.Fprintln(c.out, assistantPrompt)
		fmt.Fprintln(c.out, c.render(reply))
		return reply, nil
	}

	fmt.Fprint(c.out, assistantPrompt)
	p := &snapshotPrinter{w: c.out}
	reply, err := session.Send(ctx, input, p.print)
	if err != nil {
		if p.printed != "" {
			fmt.Fprintln(c.out)
		}
		return "", err
	}
	p.print(reply)
	fmt.Fprint(c.out, "\n\n")
	return reply, nil
}

func (c *chatCommander) render(reply string) string {
	width := cliui.DefaultWidth
	if f, ok := c.out.(*os.File); ok {
		width = cliui.Width(f)
	}
	if c.raw {
		return cliui.Wrap(reply, width)
	}
	rendered, err := cliui.RenderMarkdown(reply, width)
	if err != nil {
		c.rt.Logger.Debug("rendering markdown failed", "error", err)
	}
	return rendered
}

// resume returns the saved agent session unless --new was given or the
// saved session belongs to another app or user.
func (c *chatCommander) resume(client *agent.Client) (*agent.Session, error) {
	manager := dotdir.NewManager()
	if c.newSession {
		return nil, manager.ClearSessionState(c.rt.ConfigDir)
	}

	state, err := manager.LoadSessionState(c.rt.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading session state: %w", err)
	}
	if state == nil || state.SessionID == "" {
		return nil, nil
	}
	if state.AppName != client.AppName() || state.UserID != c.rt.Config.Agent.UserID {
		return nil, nil
	}

	return &agent.Session{ID: state.SessionID, AppName: state.AppName, UserID: state.UserID}, nil
}

func (c *chatCommander) saveSession(session *chat.Session, log *slog.Logger) {
	sess := session.AgentSession()
	if sess == nil {
		return
	}
	err := dotdir.NewManager().SaveSessionState(&dotdir.SessionState{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		AppName:   sess.AppName,
		UpdatedAt: time.Now(),
	}, c.rt.ConfigDir)
	if err != nil {
		log.Warn("saving session state failed", "error", err)
	}
}

// snapshotPrinter prints streamed snapshots. A snapshot extending what is
// already on screen prints only the new suffix; anything else replaces it
// on a fresh line.
type snapshotPrinter struct {
	w       io.Writer
	printed string
}

func (p *snapshotPrinter) print(snapshot string) {
	if snapshot == p.printed {
		return
	}
	if strings.HasPrefix(snapshot, p.printed) {
		fmt.Fprint(p.w, snapshot[len(p.printed):])
	} else {
		fmt.Fprintf(p.w, "\n%s%s", assistantPrompt, snapshot)
	}
	p.printed = snapshot
}
