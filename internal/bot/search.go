package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Digital-Shane/cinemabot/internal/catalog"
	"github.com/Digital-Shane/cinemabot/internal/keyboard"
	"github.com/Digital-Shane/cinemabot/internal/present"
)

const (
	// MaxCallbackData is the Telegram limit on callback payloads, in bytes.
	MaxCallbackData = 64

	listPrefix = "list:"
	tokenMark  = "#"
)

// ErrBadPayload marks callback data that no button of this bot produces.
var ErrBadPayload = errors.New("malformed callback payload")

// Search answers a plain text query with the card of its first hit.
func (h *Handler) Search(ctx context.Context, query string) Reply {
	query = strings.TrimSpace(query)
	if query == "" {
		record("search", "invalid")
		return Reply{Text: emptyQueryText}
	}

	movie, err := catalog.SearchForItem(ctx, h.catalog, query)
	if err != nil {
		return h.unavailable("search", err, slog.String("query", query))
	}
	if movie == nil {
		return nothingFound("search", query)
	}

	record("search", "ok")
	return h.card(movie, h.listPayload(query))
}

// Details answers a title button with the card of that title.
func (h *Handler) Details(ctx context.Context, kind string, id int) Reply {
	movie, err := h.catalog.MovieDetails(ctx, id, kind)
	switch {
	case errors.Is(err, catalog.ErrMissingField) || catalog.IsNotFound(err):
		h.logger.Info("title not available",
			slog.String("kind", kind),
			slog.Int("id", id),
			slog.String("reason", err.Error()),
		)
		record("details", "empty")
		return Reply{Text: goneText}
	case err != nil:
		return h.unavailable("details", err, slog.String("kind", kind), slog.Int("id", id))
	}

	record("details", "ok")
	return h.card(movie, "")
}

// List answers the "more" button with the numbered results for query.
func (h *Handler) List(ctx context.Context, query string) Reply {
	movies, err := catalog.Take(h.catalog.BaseSearch(ctx, query), h.listLimit)
	if err != nil {
		return h.unavailable("list", err, slog.String("query", query))
	}
	if len(movies) == 0 {
		return nothingFound("list", query)
	}

	buttons := make([]keyboard.Button, 0, len(movies))
	for i, m := range movies {
		buttons = append(buttons, keyboard.Button{
			Text:         strconv.Itoa(i + 1),
			CallbackData: TitlePayload(m.Kind, m.ID),
		})
	}

	record("list", "ok")
	return Reply{
		Text:     present.ResultsList(query, movies),
		Keyboard: h.resultsLayout.Pack(buttons),
	}
}

// Callback answers a button press carrying data.
func (h *Handler) Callback(ctx context.Context, data string) Reply {
	if rest, ok := strings.CutPrefix(data, listPrefix); ok {
		token, isToken := strings.CutPrefix(rest, tokenMark)
		if !isToken {
			return h.List(ctx, rest)
		}
		query, found := h.tokens.Get(token)
		if !found {
			record("list", "expired")
			return Reply{Text: expiredText}
		}
		return h.List(ctx, query)
	}

	kind, id, err := ParseTitlePayload(data)
	if err != nil {
		h.logger.Warn("unexpected callback data",
			slog.String("data", data),
			slog.String("error", err.Error()),
		)
		record("callback", "invalid")
		return Reply{Text: badButtonText}
	}
	return h.Details(ctx, kind, id)
}

// card renders a title with its watch buttons. A non-empty more payload adds
// the button that opens the results list.
func (h *Handler) card(movie *catalog.Movie, more string) Reply {
	buttons := make([]keyboard.Button, 0, len(movie.Offers)+1)
	for _, offer := range movie.Offers {
		name, ok := h.catalog.ProviderName(offer.ProviderID)
		if !ok {
			name = WatchLabel
		}
		buttons = append(buttons, keyboard.Button{Text: name, URL: offer.URL})
	}
	if more != "" {
		buttons = append(buttons, keyboard.Button{Text: MoreLabel, CallbackData: more})
	}

	return Reply{
		PhotoURL: present.PosterURL(movie, h.posterProfile),
		Text:     present.DetailBlock(movie),
		Keyboard: h.watchLayout.Pack(buttons),
	}
}

// listPayload builds the "more" payload for query. Queries that would not
// fit the callback limit, or that could be read as a token, are stored and
// replaced by a token.
func (h *Handler) listPayload(query string) string {
	payload := listPrefix + query
	if len(payload) <= MaxCallbackData && !strings.HasPrefix(query, tokenMark) {
		return payload
	}
	return listPrefix + tokenMark + h.tokens.Put(query)
}

// TitlePayload encodes the callback data of a title button.
func TitlePayload(kind string, id int) string {
	return kind + ":" + strconv.Itoa(id)
}

// ParseTitlePayload decodes data produced by TitlePayload.
func ParseTitlePayload(data string) (kind string, id int, err error) {
	kind, rawID, ok := strings.Cut(data, ":")
	if !ok || kind == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrBadPayload, data)
	}
	id, err = strconv.Atoi(rawID)
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad id in %q", ErrBadPayload, data)
	}
	return kind, id, nil
}
