// Package configcmder provides the config command for managing persistent
// mealprep configuration stored in the .mealprep/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mealprep/pkg/cliui"
	"github.com/papercomputeco/mealprep/pkg/config"
)

const configLongDesc string = `Manage persistent mealprep configuration.

Configuration is stored as config.toml in the .mealprep/ directory and provides
default values for command flags. CLI flags and MEALPREP_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  agent.base_url, agent.app_name, agent.user_id, agent.streaming, agent.timeout,
  export.output, export.page_size, export.paginate_wrapped_lines,
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  eventstream.brokers, eventstream.topic,
  serve.listen, serve.allowed_origins

Use subcommands to get, set, or list configuration values:
  mealprep config set <key> <value>    Set a configuration value
  mealprep config get <key>            Get a configuration value
  mealprep config list                 List all configuration values

Examples:
  mealprep config set agent.base_url http://localhost:8000
  mealprep config set eventstream.brokers kafka-1:9092,kafka-2:9092
  mealprep config get export.output
  mealprep config list`

const configShortDesc string = "Manage persistent mealprep configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

// printTarget reports which config file a command reads or writes.
func printTarget(w io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
