// Package versioncmder prints build information.
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mealprep/pkg/cliui"
	"github.com/papercomputeco/mealprep/pkg/utils"
)

type VersionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version, commit and build time of mealprep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().BoolVarP(&cmder.short, "short", "s", false, "Print only the version and short commit")

	return cmd
}

func (c *VersionCommander) run(cmd *cobra.Command) error {
	w := cmd.OutOrStdout()
	if c.short {
		fmt.Fprintln(w, utils.VersionString())
		return nil
	}

	rows := [][2]string{
		{"Version", utils.Version},
		{"Sha", utils.Sha},
		{"Built at", utils.Buildtime},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", cliui.KeyStyle.Render(r[0]+":"), r[1])
	}
	return nil
}
