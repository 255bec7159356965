package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand. Empty values leave the config
// file and environment in charge.
type globalFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	catalog     string
	fixturePath string
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package globals.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "cinemabot",
		Short: "A chat bot that finds where to watch movies and shows",
		Long: `cinemabot searches a movie and TV catalog and answers with a title card:
poster, ratings, description and buttons linking to the streaming services
that offer the title.

Run it as a Telegram bot with "serve", try it locally with "console", or
print a single result with "search".`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to the config file (default ~/.cinemabot/config.json)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")
	root.PersistentFlags().StringVar(&flags.catalog, "catalog", "", "Catalog backend: justwatch or fixture")
	root.PersistentFlags().StringVar(&flags.fixturePath, "fixture", "", "Fixture file for the fixture catalog")

	root.AddCommand(
		newServeCmd(flags),
		newSearchCmd(flags),
		newConsoleCmd(flags),
		newConfigCmd(flags),
	)
	return root
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
