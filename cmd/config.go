package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/cli/handlers"
	"github.com/xolan/haven/internal/config"
	"github.com/xolan/haven/internal/service"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display or manage configuration settings",
	Long: `Display the current effective configuration settings for haven.

haven works without any configuration file. Settings are merged from the
config file, the environment (HAVEN_* and GEMINI_API_KEY, also read from a
.env file) and defaults:
  - week_start_day: sunday
  - timezone: Local (system timezone)
  - trend_window: 14
  - storage.backend: jsonl

Examples:
  haven config              Show all current settings
  haven config init         Write a commented sample config file
  haven config path         Print the config file location

Configuration file location:
  ~/.config/haven/config.toml          Linux/macOS
  %APPDATA%\haven\config.toml          Windows`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handlers.ShowConfig(cli.GetDeps())
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Create a sample config file",
	Args:        cobra.NoArgs,
	Annotations: offline(),
	Run: func(cmd *cobra.Command, args []string) {
		if d, ok := configOnlyDeps(); ok {
			handlers.InitConfig(d)
		}
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file location",
	Args:        cobra.NoArgs,
	Annotations: offline(),
	Run: func(cmd *cobra.Command, args []string) {
		if d, ok := configOnlyDeps(); ok {
			handlers.ShowConfigPath(d)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configPathCmd)
}

// configOnlyDeps returns deps whose services only manage the config file, so
// init and path work while the config itself is broken.
func configOnlyDeps() (*cli.Deps, bool) {
	deps := cli.GetDeps()
	if deps.Services != nil {
		return deps, true
	}
	path, err := config.GetConfigPath()
	if err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to determine config file location")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Check that your home directory is accessible")
		deps.Exit(1)
		return nil, false
	}
	d := *deps
	d.Services = &service.Services{Config: service.NewConfigService(path, config.DefaultConfig())}
	return &d, true
}
