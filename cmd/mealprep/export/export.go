// Package exportcmder provides the export command, which renders a markdown
// meal plan to PDF.
package exportcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/mealprep/cmd/mealprep/bootstrap"
	"github.com/papercomputeco/mealprep/pkg/cliui"
	"github.com/papercomputeco/mealprep/pkg/config"
	"github.com/papercomputeco/mealprep/pkg/pdf"
	"github.com/papercomputeco/mealprep/pkg/storage"
)

// stdoutTarget selects standard output as the PDF destination.
const stdoutTarget = "-"

type exportCommander struct {
	output      string
	pageSize    string
	paginate    bool
	storage     string
	sqlitePath  string
	postgresDSN string

	watch     bool
	fromStore bool
	sessionID string

	rt  *bootstrap.Runtime
	cmd *cobra.Command
}

var exportFlags = []string{
	config.FlagOutput,
	config.FlagPageSize,
	config.FlagPaginate,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgresDSN,
}

const exportLongDesc string = `Render a markdown meal plan to PDF.

The plan is read from the given file, from standard input when no file is
given, or with --from-store from the most recent stored plan. Headings, list
items, links and **bold** runs are laid out on A4 pages by default.

Use "-o -" to write the PDF to standard output. With --watch the file is
re-rendered every time it changes until interrupted.

Examples:
  mealprep export plan.md
  mealprep export plan.md -o week.pdf --page-size Letter
  cat plan.md | mealprep export -o - > week.pdf
  mealprep export --from-store --session 3f9c...
  mealprep export plan.md --watch`

const exportShortDesc string = "Render a markdown meal plan to PDF"

func NewExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: exportShortDesc,
		Long:  exportLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap.Load(cmd, bootstrap.Options{}, exportFlags...)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.rt = rt
			cmder.cmd = cmd

			var file string
			if len(args) > 0 {
				file = args[0]
			}
			return cmder.run(cmd.Context(), file)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagOutput, &cmder.output)
	config.AddStringFlag(cmd, config.Flags, config.FlagPageSize, &cmder.pageSize)
	config.AddBoolFlag(cmd, config.Flags, config.FlagPaginate, &cmder.paginate)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)

	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Re-render whenever the markdown file changes")
	cmd.Flags().BoolVar(&cmder.fromStore, "from-store", false, "Export the latest stored plan instead of a file")
	cmd.Flags().StringVar(&cmder.sessionID, "session", "", "With --from-store, export the latest plan of this session")

	return cmd
}

func (c *exportCommander) run(ctx context.Context, file string) error {
	output := c.rt.Config.Export.Output

	switch {
	case c.fromStore && file != "":
		return errors.New("--from-store does not take a file argument")
	case c.watch && file == "":
		return errors.New("--watch requires a file argument")
	case c.watch && output == stdoutTarget:
		return errors.New("--watch cannot write to standard output")
	case output == stdoutTarget && isTerminal(c.cmd.OutOrStdout()):
		return errors.New("refusing to write PDF data to a terminal; redirect standard output or pass -o <file>")
	}

	if c.fromStore {
		plan, err := c.latestPlan(ctx)
		if err != nil {
			return err
		}
		return c.export("stored plan", plan.Markdown, output)
	}

	if c.watch {
		return c.watchFile(ctx, file, output)
	}

	src := "standard input"
	var (
		data []byte
		err  error
	)
	if file == "" {
		data, err = io.ReadAll(c.cmd.InOrStdin())
	} else {
		src = file
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return fmt.Errorf("reading markdown: %w", err)
	}

	return c.export(src, string(data), output)
}

func (c *exportCommander) export(src, markdown, output string) error {
	cfg := c.rt.PDFConfig()

	if output == stdoutTarget {
		return pdf.Render(pdf.RenderRequest{
			Reader: strings.NewReader(markdown),
			Writer: c.cmd.OutOrStdout(),
			Config: cfg,
		})
	}

	return cliui.Step(c.cmd.ErrOrStderr(), fmt.Sprintf("Exporting %s to %s", src, output), func() error {
		return pdf.WriteFile(output, markdown, cfg)
	})
}

func (c *exportCommander) latestPlan(ctx context.Context) (*storage.Plan, error) {
	driver, err := c.rt.OpenStorage(ctx)
	if err != nil {
		return nil, err
	}
	defer driver.Close()

	plan, err := driver.LatestPlan(ctx, c.sessionID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, errors.New("no stored meal plan found")
		}
		return nil, fmt.Errorf("loading stored plan: %w", err)
	}
	return plan, nil
}

// watchFile renders file once, then again after every write until ctx is
// done. Editors that replace the file on save are handled by watching the
// parent directory.
func (c *exportCommander) watchFile(ctx context.Context, file, output string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", file, err)
	}

	render := func() {
		data, err := os.ReadFile(abs)
		if err != nil {
			c.rt.Logger.Warn("reading markdown failed", "file", file, "error", err)
			return
		}
		if err := c.export(file, string(data), output); err != nil {
			c.rt.Logger.Warn("export failed", "file", file, "error", err)
		}
	}

	render()
	c.rt.Logger.Info("watching for changes", "file", file, "output", output)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.rt.Logger.Warn("file watcher error", "error", err)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && cliui.IsTerminal(f)
}
