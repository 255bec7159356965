package bot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Digital-Shane/cinemabot/internal/metrics"
	csmap "github.com/mhmtszr/concurrent-swiss-map"
)

const waitUsage = "Usage: /wait N query, where N is the delay in seconds."

type pendingSearch struct {
	id     uint64
	query  string
	cancel context.CancelFunc
}

// pendingSearches holds at most one delayed search per chat.
type pendingSearches struct {
	byChat *csmap.CsMap[int64, pendingSearch]
	seq    atomic.Uint64
}

func newPendingSearches() *pendingSearches {
	return &pendingSearches{byChat: csmap.Create[int64, pendingSearch]()}
}

// add registers a search for chatID, cancelling the one it replaces.
func (p *pendingSearches) add(chatID int64, query string, cancel context.CancelFunc) uint64 {
	id := p.seq.Add(1)
	prev, replaced := p.byChat.Load(chatID)
	p.byChat.Store(chatID, pendingSearch{id: id, query: query, cancel: cancel})
	if replaced {
		prev.cancel()
	}
	p.report()
	return id
}

// finish removes search id of chatID. It reports false when the search was
// cancelled or replaced in the meantime.
func (p *pendingSearches) finish(chatID int64, id uint64) bool {
	removed := p.byChat.DeleteIf(chatID, func(s pendingSearch) bool { return s.id == id })
	p.report()
	return removed
}

// cancel stops the pending search of chatID, if any.
func (p *pendingSearches) cancel(chatID int64) (string, bool) {
	current, ok := p.byChat.Load(chatID)
	if !ok {
		return "", false
	}
	if !p.byChat.DeleteIf(chatID, func(s pendingSearch) bool { return s.id == current.id }) {
		return "", false
	}
	current.cancel()
	p.report()
	return current.query, true
}

func (p *pendingSearches) cancelAll() {
	var chats []int64
	p.byChat.Range(func(chatID int64, _ pendingSearch) bool {
		chats = append(chats, chatID)
		return false
	})
	for _, chatID := range chats {
		p.cancel(chatID)
	}
}

func (p *pendingSearches) len() int {
	return p.byChat.Count()
}

func (p *pendingSearches) report() {
	metrics.PendingSearches.Set(float64(p.byChat.Count()))
}

// Wait schedules a search of "N query" after N seconds. The result goes to
// deliver unless the search is cancelled or replaced by a newer /wait in the
// same chat first.
func (h *Handler) Wait(ctx context.Context, chatID int64, args string, deliver func(Reply)) Reply {
	delay, query, problem := parseWait(args, h.maxWait)
	if problem != "" {
		record("wait", "invalid")
		return Reply{Text: problem + "\n" + waitUsage}
	}
	if deliver == nil {
		return Reply{Text: "Delayed search is not supported here."}
	}

	waitCtx, cancel := context.WithCancel(ctx)
	id := h.pending.add(chatID, query, cancel)
	h.logger.Debug("delayed search scheduled",
		slog.Int64("chatID", chatID),
		slog.String("query", query),
		slog.Duration("delay", delay),
	)

	go func() {
		defer cancel()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-waitCtx.Done():
			h.pending.finish(chatID, id)
			return
		case <-timer.C:
		}

		reply := h.Search(waitCtx, query)
		if h.pending.finish(chatID, id) {
			deliver(reply)
		}
	}()

	record("wait", "ok")
	return Reply{Text: fmt.Sprintf("Searching for \"%s\" in %s.", html.EscapeString(query), delay)}
}

// Cancel drops the pending delayed search of chatID.
func (h *Handler) Cancel(chatID int64) Reply {
	query, ok := h.pending.cancel(chatID)
	if !ok {
		record("cancel", "empty")
		return Reply{Text: "There is no pending search."}
	}
	record("cancel", "ok")
	return Reply{Text: fmt.Sprintf("Cancelled the search for \"%s\".", html.EscapeString(query))}
}

// parseWait splits "N query". problem is the user facing reason when the
// arguments are unusable.
func parseWait(args string, maxWait time.Duration) (delay time.Duration, query, problem string) {
	rawDelay, query, _ := strings.Cut(strings.TrimSpace(args), " ")
	query = strings.TrimSpace(query)
	if rawDelay == "" || query == "" {
		return 0, "", "Both a delay and a query are needed."
	}

	seconds, err := strconv.Atoi(rawDelay)
	if err != nil || seconds < 0 {
		return 0, "", "The delay must be a whole number of seconds."
	}
	delay = time.Duration(seconds) * time.Second
	if delay > maxWait {
		return 0, "", fmt.Sprintf("The delay can be at most %s.", maxWait)
	}
	return delay, query, ""
}
