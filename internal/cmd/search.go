package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Digital-Shane/cinemabot/internal/bot"
	"github.com/Digital-Shane/cinemabot/internal/tui"
	"github.com/Digital-Shane/cinemabot/internal/tui/theme"

	"github.com/spf13/cobra"
)

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Print the answer the bot would give for a query",
		Example: `  cinemabot search the matrix
  cinemabot search --list star wars
  cinemabot --fixture catalog.json search matrix`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, handler, err := setup(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer handler.Close()

			query := strings.Join(args, " ")
			var reply bot.Reply
			if list {
				reply = handler.List(cmd.Context(), query)
			} else {
				reply = handler.Search(cmd.Context(), query)
			}
			return printReply(cmd.OutOrStdout(), reply, theme.New(theme.WithIconSet(theme.ASCIIIcons())))
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "Show the numbered result list instead of the first title")
	return cmd
}

// printReply writes a reply as plain terminal text.
func printReply(w io.Writer, reply bot.Reply, th theme.Theme) error {
	var b strings.Builder
	if reply.PhotoURL != "" {
		fmt.Fprintf(&b, "%s %s\n", th.Icon("poster"), reply.PhotoURL)
	}
	b.WriteString(strings.TrimRight(tui.RenderHTML(reply.Text, th), "\n"))
	b.WriteString("\n")

	for _, row := range reply.Keyboard {
		labels := make([]string, 0, len(row))
		for _, button := range row {
			switch {
			case button.URL != "":
				labels = append(labels, fmt.Sprintf("[%s](%s)", button.Text, button.URL))
			default:
				labels = append(labels, fmt.Sprintf("[%s]", button.Text))
			}
		}
		fmt.Fprintf(&b, "%s %s\n", th.Icon("button"), strings.Join(labels, " "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
