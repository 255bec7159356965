package cmd

import (
	"fmt"
	"io"

	"github.com/Digital-Shane/cinemabot/internal/tui"
	"github.com/Digital-Shane/cinemabot/internal/tui/theme"

	"github.com/spf13/cobra"
)

func newConsoleCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot in the terminal",
		Long: `Open an interactive chat with the bot. Messages and button presses go
through the same handler as Telegram, so commands like /wait work as well.
Logs are discarded while the console owns the screen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, handler, err := setup(cmd.Context(), flags, io.Discard)
			if err != nil {
				return err
			}
			defer handler.Close()

			if err := tui.Run(cmd.Context(), handler, theme.Default()); err != nil {
				return fmt.Errorf("console: %w", err)
			}
			return nil
		},
	}
}
