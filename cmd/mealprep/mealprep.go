// Package mealprepcmder
package mealprepcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/mealprep/cmd/mealprep/chat"
	configcmder "github.com/papercomputeco/mealprep/cmd/mealprep/config"
	exportcmder "github.com/papercomputeco/mealprep/cmd/mealprep/export"
	planscmder "github.com/papercomputeco/mealprep/cmd/mealprep/plans"
	servecmder "github.com/papercomputeco/mealprep/cmd/mealprep/serve"
	versioncmder "github.com/papercomputeco/mealprep/cmd/version"
)

const mealprepLongDesc string = `Mealprep talks to a meal-prep planning agent and turns the
plans it writes into printable PDFs.

  mealprep chat        Chat with the agent from the terminal
  mealprep export      Render a markdown plan to PDF
  mealprep plans       List stored plans
  mealprep serve       Run the HTTP service for the web frontend
  mealprep config      Manage persistent configuration`

const mealprepShortDesc string = "Mealprep - meal-prep agent client and plan exporter"

func NewMealprepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mealprep",
		Short:        mealprepShortDesc,
		Long:         mealprepLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .mealprep/ config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(exportcmder.NewExportCmd())
	cmd.AddCommand(planscmder.NewPlansCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
