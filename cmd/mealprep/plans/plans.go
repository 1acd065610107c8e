// Package planscmder provides the plans command for browsing stored meal
// plans.
package planscmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mealprep/cmd/mealprep/bootstrap"
	"github.com/papercomputeco/mealprep/pkg/cliui"
	"github.com/papercomputeco/mealprep/pkg/config"
	"github.com/papercomputeco/mealprep/pkg/storage"
	"github.com/papercomputeco/mealprep/pkg/utils"
)

type plansCommander struct {
	storage     string
	sqlitePath  string
	postgresDSN string

	limit     int
	show      bool
	sessionID string

	rt  *bootstrap.Runtime
	out io.Writer
}

var plansFlags = []string{
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgresDSN,
}

const plansLongDesc string = `List meal plans stored by "mealprep chat" and "mealprep serve".

Plans are listed newest first. Use --show to render the latest plan in the
terminal, or --session to pick the latest plan of one agent session.

Examples:
  mealprep plans
  mealprep plans --limit 5
  mealprep plans --show
  mealprep plans --show --session 3f9c...`

const plansShortDesc string = "List stored meal plans"

func NewPlansCmd() *cobra.Command {
	cmder := &plansCommander{}

	cmd := &cobra.Command{
		Use:   "plans",
		Short: plansShortDesc,
		Long:  plansLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap.Load(cmd, bootstrap.Options{}, plansFlags...)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.rt = rt
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Maximum number of plans to list (0 for all)")
	cmd.Flags().BoolVar(&cmder.show, "show", false, "Render the latest plan instead of listing")
	cmd.Flags().StringVar(&cmder.sessionID, "session", "", "With --show, render the latest plan of this session")

	return cmd
}

func (c *plansCommander) run(ctx context.Context) error {
	driver, err := c.rt.OpenStorage(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	if c.show {
		return c.showLatest(ctx, driver)
	}

	plans, err := driver.ListPlans(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("listing plans: %w", err)
	}

	if len(plans) == 0 {
		fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("No meal plans stored yet."))
		return nil
	}

	fmt.Fprintln(c.out)
	for _, p := range plans {
		fmt.Fprintf(c.out, "  %s  %s  %s  %s\n",
			cliui.KeyStyle.Render(fmt.Sprintf("#%d", p.ID)),
			cliui.DimStyle.Render(p.CreatedAt.Local().Format("2006-01-02 15:04")),
			cliui.NameStyle.Render(utils.Truncate(p.SessionID, 8)),
			cliui.ValueStyle.Render(utils.Truncate(Title(p.Markdown), 60)),
		)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *plansCommander) showLatest(ctx context.Context, driver storage.Driver) error {
	plan, err := driver.LatestPlan(ctx, c.sessionID)
	if err != nil {
		if storage.IsNotFound(err) {
			return errors.New("no stored meal plan found")
		}
		return fmt.Errorf("loading plan: %w", err)
	}

	width := cliui.DefaultWidth
	if f, ok := c.out.(*os.File); ok {
		width = cliui.Width(f)
	}
	rendered, err := cliui.RenderMarkdown(plan.Markdown, width)
	if err != nil {
		c.rt.Logger.Debug("rendering markdown failed", "error", err)
	}
	fmt.Fprintln(c.out, rendered)
	return nil
}

// Title returns the first non-blank line of a plan with heading and
// emphasis markers removed.
func Title(markdown string) string {
	for line := range strings.Lines(markdown) {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#")
		line = strings.ReplaceAll(line, "**", "")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
