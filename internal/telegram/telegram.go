// Package telegram connects the bot handler to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Digital-Shane/cinemabot/internal/bot"
	"github.com/Digital-Shane/cinemabot/internal/keyboard"
	"github.com/Digital-Shane/cinemabot/internal/metrics"
	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"
)

// MaxCaptionLen is the Telegram limit on photo captions, in characters.
const MaxCaptionLen = 1024

// Config holds the transport settings. Webhook mode is used when
// WebhookHost is set, long polling otherwise.
type Config struct {
	Token         string
	WebhookHost   string
	WebhookPath   string
	WebhookSecret string
	ListenAddr    string
	MaxRoutines   int
	Logger        *slog.Logger
}

// Transport receives updates from Telegram and answers them through a
// bot.Handler.
type Transport struct {
	cfg     Config
	bot     *gotgbot.Bot
	handler *bot.Handler
	logger  *slog.Logger

	// ctx is the lifetime of Run; gotgbot callbacks carry no context.
	ctx context.Context
}

// New logs in with the bot token.
func New(cfg Config, handler *bot.Handler) (*Transport, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("telegram transport requires an API token")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxRoutines <= 0 {
		cfg.MaxRoutines = ext.DefaultMaxRoutines
	}

	b, err := gotgbot.NewBot(cfg.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Transport{
		cfg:     cfg,
		bot:     b,
		handler: handler,
		logger:  cfg.Logger.With(slog.String("bot", b.User.Username)),
		ctx:     context.Background(),
	}, nil
}

// Run serves updates until ctx is cancelled.
func (t *Transport) Run(ctx context.Context) error {
	t.ctx = ctx

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(_ *gotgbot.Bot, _ *ext.Context, err error) ext.DispatcherAction {
			t.logger.Error("update handling failed", slog.String("error", err.Error()))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: t.cfg.MaxRoutines,
	})
	t.register(dispatcher)

	updater := ext.NewUpdater(dispatcher, nil)
	if err := t.start(updater); err != nil {
		return err
	}

	<-ctx.Done()
	t.logger.Info("stopping telegram transport")
	if err := updater.Stop(); err != nil {
		return fmt.Errorf("failed to stop updater: %w", err)
	}
	return nil
}

func (t *Transport) start(updater *ext.Updater) error {
	if t.cfg.WebhookHost == "" {
		err := updater.StartPolling(t.bot, &ext.PollingOpts{
			DropPendingUpdates: true,
			GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
				Timeout: 9,
				RequestOpts: &gotgbot.RequestOpts{
					Timeout: 10 * time.Second,
				},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to start polling: %w", err)
		}
		t.logger.Info("polling for updates")
		return nil
	}

	urlPath := strings.TrimPrefix(t.cfg.WebhookPath, "/")
	err := updater.StartWebhook(t.bot, urlPath, ext.WebhookOpts{
		ListenAddr:  t.cfg.ListenAddr,
		SecretToken: t.cfg.WebhookSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to start webhook: %w", err)
	}
	err = updater.SetAllBotWebhooks(strings.TrimSuffix(t.cfg.WebhookHost, "/"), &gotgbot.SetWebhookOpts{
		DropPendingUpdates: true,
		SecretToken:        t.cfg.WebhookSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	t.logger.Info("webhook registered",
		slog.String("host", t.cfg.WebhookHost),
		slog.String("path", "/"+urlPath),
		slog.String("listen", t.cfg.ListenAddr),
	)
	return nil
}

// register wires commands before the catch-all text handler; gotgbot runs
// the first matching handler of a group.
func (t *Transport) register(d *ext.Dispatcher) {
	d.AddHandler(handlers.NewCommand("start", t.onHelp))
	d.AddHandler(handlers.NewCommand("help", t.onHelp))
	d.AddHandler(handlers.NewCommand("wait", t.onWait))
	d.AddHandler(handlers.NewCommand("cancel", t.onCancel))
	d.AddHandler(handlers.NewMessage(message.Text, t.onText))
	d.AddHandler(handlers.NewCallback(callbackquery.All, t.onCallback))
}

func (t *Transport) onHelp(b *gotgbot.Bot, ctx *ext.Context) error {
	return t.send(b, ctx.EffectiveChat.Id, t.handler.Help())
}

func (t *Transport) onWait(b *gotgbot.Bot, ctx *ext.Context) error {
	chatID := ctx.EffectiveChat.Id
	args := strings.Join(ctx.Args()[1:], " ")
	reply := t.handler.Wait(t.ctx, chatID, args, t.deliverTo(b, chatID))
	return t.send(b, chatID, reply)
}

func (t *Transport) onCancel(b *gotgbot.Bot, ctx *ext.Context) error {
	chatID := ctx.EffectiveChat.Id
	return t.send(b, chatID, t.handler.Cancel(chatID))
}

func (t *Transport) onText(b *gotgbot.Bot, ctx *ext.Context) error {
	chatID := ctx.EffectiveChat.Id
	reply := t.handler.Message(t.ctx, chatID, ctx.EffectiveMessage.Text, t.deliverTo(b, chatID))
	return t.send(b, chatID, reply)
}

func (t *Transport) onCallback(b *gotgbot.Bot, ctx *ext.Context) error {
	cb := ctx.CallbackQuery
	if _, err := cb.Answer(b, nil); err != nil {
		t.logger.Warn("failed to answer callback", slog.String("error", err.Error()))
	}

	chatID := cb.From.Id
	if ctx.EffectiveChat != nil {
		chatID = ctx.EffectiveChat.Id
	}
	return t.send(b, chatID, t.handler.Callback(t.ctx, cb.Data))
}

// deliverTo returns a sink for replies produced after the update was handled.
func (t *Transport) deliverTo(b *gotgbot.Bot, chatID int64) func(bot.Reply) {
	return func(reply bot.Reply) {
		if err := t.send(b, chatID, reply); err != nil {
			t.logger.Error("failed to deliver delayed reply",
				slog.Int64("chatID", chatID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// send posts reply to chatID. A photo that Telegram rejects is replaced by
// a text message so the user still gets the card.
func (t *Transport) send(b *gotgbot.Bot, chatID int64, reply bot.Reply) error {
	markup := Markup(reply.Keyboard)

	if reply.PhotoURL != "" && CaptionFits(reply.Text) {
		opts := &gotgbot.SendPhotoOpts{
			Caption:   reply.Text,
			ParseMode: gotgbot.ParseModeHTML,
		}
		if markup != nil {
			opts.ReplyMarkup = *markup
		}
		_, err := b.SendPhoto(chatID, gotgbot.InputFileByURL(reply.PhotoURL), opts)
		if err == nil {
			metrics.UpdatesTotal.WithLabelValues("send", "photo").Inc()
			return nil
		}
		t.logger.Warn("photo rejected, sending text",
			slog.String("photo", reply.PhotoURL),
			slog.String("error", err.Error()),
		)
	}

	opts := &gotgbot.SendMessageOpts{ParseMode: gotgbot.ParseModeHTML}
	if markup != nil {
		opts.ReplyMarkup = *markup
	}
	if _, err := b.SendMessage(chatID, reply.Text, opts); err != nil {
		metrics.UpdatesTotal.WithLabelValues("send", "error").Inc()
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	metrics.UpdatesTotal.WithLabelValues("send", "text").Inc()
	return nil
}

// Markup converts keyboard rows into an inline keyboard. No rows yields nil
// so no empty keyboard is sent.
func Markup(rows [][]keyboard.Button) *gotgbot.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]gotgbot.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]gotgbot.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			line = append(line, gotgbot.InlineKeyboardButton{
				Text:         button.Text,
				Url:          button.URL,
				CallbackData: button.CallbackData,
			})
		}
		out = append(out, line)
	}
	return &gotgbot.InlineKeyboardMarkup{InlineKeyboard: out}
}

// CaptionFits reports whether text can be sent as a photo caption.
func CaptionFits(text string) bool {
	return utf8.RuneCountInString(text) <= MaxCaptionLen
}
