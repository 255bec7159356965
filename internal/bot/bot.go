// Package bot turns chat input into replies. It knows nothing about the
// transport: Telegram and the terminal console both drive the same Handler.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Digital-Shane/cinemabot/internal/catalog"
	"github.com/Digital-Shane/cinemabot/internal/keyboard"
	"github.com/Digital-Shane/cinemabot/internal/metrics"
	"github.com/Digital-Shane/cinemabot/internal/present"
)

// Reply is one outgoing chat message. Text is HTML. When PhotoURL is set the
// message is a photo and Text is its caption.
type Reply struct {
	PhotoURL string
	Text     string
	Keyboard [][]keyboard.Button
}

const (
	helpText = "This is Cinemabot, a bot that finds movies and shows to watch.\n" +
		"Send a title to get the best match with links to watch it. " +
		"Press \"more\" to pick from the other results.\n\n" +
		"/wait N query runs the search after N seconds\n" +
		"/cancel drops a pending /wait\n" +
		"/start, /help show this message again"

	unavailableText = "The catalog is unavailable right now, please try again later."
	goneText        = "This title is no longer available."
	expiredText     = "This button has expired, please search again."
	badButtonText   = "Sorry, I don't understand this button."
	emptyQueryText  = "Send me the title of a movie or a show."

	// MoreLabel is the button that opens the full results list.
	MoreLabel = "more"

	// WatchLabel stands in for providers missing from the directory.
	WatchLabel = "Watch"

	DefaultListLimit   = 10
	DefaultCallbackTTL = 24 * time.Hour
	DefaultMaxWait     = 10 * time.Minute
)

// Options configures a Handler. Only Catalog is required.
type Options struct {
	Catalog       catalog.Catalog
	Logger        *slog.Logger
	PosterProfile string
	ListLimit     int
	WatchLayout   keyboard.Layout
	ResultsLayout keyboard.Layout
	CallbackTTL   time.Duration
	MaxWait       time.Duration
}

// Handler answers messages and button presses. It is safe for concurrent use;
// every update runs on its own goroutine.
type Handler struct {
	catalog       catalog.Catalog
	logger        *slog.Logger
	posterProfile string
	listLimit     int
	watchLayout   keyboard.Layout
	resultsLayout keyboard.Layout
	maxWait       time.Duration

	tokens  *TokenStore
	pending *pendingSearches
}

// New creates a handler, filling unset options with defaults.
func New(opts Options) (*Handler, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("bot requires a catalog")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = DefaultListLimit
	}
	if opts.WatchLayout == (keyboard.Layout{}) {
		opts.WatchLayout = keyboard.WatchLayout
	}
	if opts.ResultsLayout == (keyboard.Layout{}) {
		opts.ResultsLayout = keyboard.ResultsLayout
	}
	if err := opts.WatchLayout.Validate(); err != nil {
		return nil, fmt.Errorf("watch layout: %w", err)
	}
	if err := opts.ResultsLayout.Validate(); err != nil {
		return nil, fmt.Errorf("results layout: %w", err)
	}
	if opts.CallbackTTL <= 0 {
		opts.CallbackTTL = DefaultCallbackTTL
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}

	return &Handler{
		catalog:       opts.Catalog,
		logger:        opts.Logger,
		posterProfile: opts.PosterProfile,
		listLimit:     opts.ListLimit,
		watchLayout:   opts.WatchLayout,
		resultsLayout: opts.ResultsLayout,
		maxWait:       opts.MaxWait,
		tokens:        NewTokenStore(opts.CallbackTTL),
		pending:       newPendingSearches(),
	}, nil
}

// Help returns the usage message.
func (h *Handler) Help() Reply {
	record("help", "ok")
	return Reply{Text: helpText}
}

// Message routes a text message: commands go to their handlers and anything
// else is searched for. deliver receives replies produced later, such as the
// result of /wait.
func (h *Handler) Message(ctx context.Context, chatID int64, text string, deliver func(Reply)) Reply {
	command, args, ok := splitCommand(text)
	if !ok {
		return h.Search(ctx, text)
	}

	switch command {
	case "start", "help":
		return h.Help()
	case "wait":
		return h.Wait(ctx, chatID, args, deliver)
	case "cancel":
		return h.Cancel(chatID)
	default:
		record("command", "unknown")
		return Reply{Text: fmt.Sprintf("Unknown command /%s.\n\n%s", command, helpText)}
	}
}

// splitCommand breaks "/cmd@bot args" into its parts. ok is false for plain
// text.
func splitCommand(text string) (command, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// Close releases the pending delayed searches.
func (h *Handler) Close() {
	h.pending.cancelAll()
}

func (h *Handler) unavailable(kind string, err error, attrs ...slog.Attr) Reply {
	args := []any{slog.String("error", err.Error())}
	for _, a := range attrs {
		args = append(args, a)
	}
	h.logger.Error(kind+" failed", args...)
	record(kind, "error")
	return Reply{Text: unavailableText}
}

func record(kind, outcome string) {
	metrics.UpdatesTotal.WithLabelValues(kind, outcome).Inc()
}

// nothingFound keeps the reply text in one place for every path that comes up
// empty.
func nothingFound(kind, query string) Reply {
	record(kind, "empty")
	return Reply{Text: present.NothingFound(query)}
}
