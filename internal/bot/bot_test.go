package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Digital-Shane/cinemabot/internal/catalog"
	"github.com/Digital-Shane/cinemabot/internal/keyboard"
	"github.com/Digital-Shane/cinemabot/internal/present"
	"github.com/google/go-cmp/cmp"
)

type stubCatalog struct {
	names     map[int]string
	results   []catalog.BaseMovie
	searchErr error
	details   map[string]*catalog.Movie
	detailErr error
	searches  atomic.Int32
}

func (s *stubCatalog) ProviderName(id int) (string, bool) {
	name, ok := s.names[id]
	return name, ok
}

func (s *stubCatalog) BaseSearch(_ context.Context, _ string) iter.Seq2[catalog.BaseMovie, error] {
	return func(yield func(catalog.BaseMovie, error) bool) {
		s.searches.Add(1)
		if s.searchErr != nil {
			yield(catalog.BaseMovie{}, s.searchErr)
			return
		}
		for _, m := range s.results {
			if !yield(m, nil) {
				return
			}
		}
	}
}

func (s *stubCatalog) MovieDetails(_ context.Context, id int, kind string) (*catalog.Movie, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	m, ok := s.details[TitlePayload(kind, id)]
	if !ok {
		return nil, &catalog.CatalogError{Catalog: "stub", Code: catalog.CodeNotFound, Message: "missing"}
	}
	return m, nil
}

func intPtr(v int) *int { return &v }

func matrix() *catalog.Movie {
	return &catalog.Movie{
		BaseMovie: catalog.BaseMovie{
			ID:          101,
			Title:       "The Matrix",
			Kind:        "movie",
			ReleaseYear: intPtr(1999),
		},
		ShortDescription: "A hacker learns the truth.",
		PosterTemplate:   "/poster/101/{profile}/the-matrix.jpg",
		Ratings:          []catalog.Rating{{Name: "imdb", Score: 8.7}},
		Offers: []catalog.Offer{
			{ProviderID: 8, URL: "https://netflix.example/matrix"},
			{ProviderID: 999, URL: "https://unknown.example/matrix"},
		},
	}
}

func newStub() *stubCatalog {
	m := matrix()
	return &stubCatalog{
		names:   map[int]string{8: "Netflix"},
		results: []catalog.BaseMovie{m.Base(), {ID: 102, Title: "The Matrix Reloaded", Kind: "movie"}},
		details: map[string]*catalog.Movie{"movie:101": m},
	}
}

func newTestHandler(t *testing.T, c catalog.Catalog) *Handler {
	t.Helper()
	h, err := New(Options{
		Catalog: c,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

func TestNewRequiresCatalog(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("New() without catalog should fail")
	}
}

func TestNewRejectsBadLayout(t *testing.T) {
	_, err := New(Options{Catalog: newStub(), WatchLayout: keyboard.Layout{SymbolsLimit: 5}})
	if err == nil || !strings.Contains(err.Error(), "watch layout") {
		t.Fatalf("New() error = %v, want watch layout error", err)
	}
}

func TestSearchFirstHitCard(t *testing.T) {
	h := newTestHandler(t, newStub())

	got := h.Search(context.Background(), "  matrix ")

	want := Reply{
		PhotoURL: present.ImageOrigin + "/poster/101/s592/the-matrix.jpg",
		Text:     present.DetailBlock(matrix()),
		Keyboard: [][]keyboard.Button{{
			{Text: "Netflix", URL: "https://netflix.example/matrix"},
			{Text: WatchLabel, URL: "https://unknown.example/matrix"},
			{Text: MoreLabel, CallbackData: "list:matrix"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchNothingFound(t *testing.T) {
	stub := newStub()
	stub.results = nil
	h := newTestHandler(t, stub)

	got := h.Search(context.Background(), "zzz")
	if diff := cmp.Diff(Reply{Text: `Nothing found for "zzz"`}, got); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchFirstCandidateIncompleteIsNothingFound(t *testing.T) {
	stub := newStub()
	stub.detailErr = fmt.Errorf("title 101: %w", catalog.ErrMissingField)
	h := newTestHandler(t, stub)

	got := h.Search(context.Background(), "matrix")
	if got.Text != `Nothing found for "matrix"` {
		t.Errorf("Search() text = %q, want nothing found", got.Text)
	}
}

func TestSearchCatalogFailureIsNotNothingFound(t *testing.T) {
	stub := newStub()
	stub.searchErr = &catalog.CatalogError{Catalog: "stub", Code: catalog.CodeUnavailable, Message: "down"}
	h := newTestHandler(t, stub)

	got := h.Search(context.Background(), "matrix")
	if got.Text != unavailableText {
		t.Errorf("Search() text = %q, want %q", got.Text, unavailableText)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	stub := newStub()
	h := newTestHandler(t, stub)

	got := h.Search(context.Background(), "   ")
	if got.Text != emptyQueryText {
		t.Errorf("Search() text = %q, want %q", got.Text, emptyQueryText)
	}
	if stub.searches.Load() != 0 {
		t.Errorf("empty query should not reach the catalog")
	}
}

func TestSearchLongQueryUsesToken(t *testing.T) {
	stub := newStub()
	h := newTestHandler(t, stub)
	query := "matrix " + strings.Repeat("x", MaxCallbackData)

	got := h.Search(context.Background(), query)
	more := got.Keyboard[len(got.Keyboard)-1]
	payload := more[len(more)-1].CallbackData

	if len(payload) > MaxCallbackData {
		t.Fatalf("payload %q exceeds %d bytes", payload, MaxCallbackData)
	}
	if !strings.HasPrefix(payload, "list:#") {
		t.Fatalf("payload = %q, want list:# token", payload)
	}

	list := h.Callback(context.Background(), payload)
	if !strings.HasPrefix(list.Text, "Search results for") {
		t.Errorf("token callback text = %q, want results list", list.Text)
	}
	if !strings.Contains(list.Text, strings.Repeat("x", MaxCallbackData)) {
		t.Errorf("results list should echo the original query, got %q", list.Text)
	}
}

func TestListPayloadTokenizesHashQueries(t *testing.T) {
	h := newTestHandler(t, newStub())

	payload := h.listPayload("#1")
	if !strings.HasPrefix(payload, "list:#") || payload == "list:#1" {
		t.Fatalf("listPayload(#1) = %q, want a token", payload)
	}
	query, ok := h.tokens.Get(strings.TrimPrefix(payload, "list:#"))
	if !ok || query != "#1" {
		t.Errorf("token resolves to %q, %v; want #1, true", query, ok)
	}
}

func TestCallbackDetailsHasNoMoreButton(t *testing.T) {
	h := newTestHandler(t, newStub())

	got := h.Callback(context.Background(), "movie:101")
	for _, row := range got.Keyboard {
		for _, b := range row {
			if b.Text == MoreLabel {
				t.Fatalf("details card should not carry a more button: %+v", got.Keyboard)
			}
		}
	}
	if got.PhotoURL == "" || !strings.HasPrefix(got.Text, "<b>The Matrix</b> (1999)") {
		t.Errorf("unexpected details reply: %+v", got)
	}
}

func TestCallbackDetailsUnknownTitle(t *testing.T) {
	h := newTestHandler(t, newStub())

	got := h.Callback(context.Background(), "show:7")
	if got.Text != goneText {
		t.Errorf("Callback() text = %q, want %q", got.Text, goneText)
	}
}

func TestCallbackDetailsTransportError(t *testing.T) {
	stub := newStub()
	stub.detailErr = context.DeadlineExceeded
	h := newTestHandler(t, stub)

	got := h.Callback(context.Background(), "movie:101")
	if got.Text != unavailableText {
		t.Errorf("Callback() text = %q, want %q", got.Text, unavailableText)
	}
}

func TestCallbackMalformed(t *testing.T) {
	h := newTestHandler(t, newStub())

	for _, data := range []string{"", "movie", "movie:abc", ":12"} {
		t.Run(data, func(t *testing.T) {
			got := h.Callback(context.Background(), data)
			if got.Text != badButtonText {
				t.Errorf("Callback(%q) text = %q, want %q", data, got.Text, badButtonText)
			}
		})
	}
}

func TestCallbackExpiredToken(t *testing.T) {
	h := newTestHandler(t, newStub())

	got := h.Callback(context.Background(), "list:#6b1f0b5e-0000-4000-8000-000000000000")
	if got.Text != expiredText {
		t.Errorf("Callback() text = %q, want %q", got.Text, expiredText)
	}
}

func TestListNumbersResults(t *testing.T) {
	stub := newStub()
	stub.results = nil
	for i := 1; i <= 12; i++ {
		stub.results = append(stub.results, catalog.BaseMovie{ID: i, Title: fmt.Sprintf("Title %d", i), Kind: "show"})
	}
	h := newTestHandler(t, stub)

	got := h.Callback(context.Background(), "list:title")

	var labels [][]string
	for _, row := range got.Keyboard {
		var line []string
		for _, b := range row {
			line = append(line, b.Text)
		}
		labels = append(labels, line)
	}
	wantLabels := [][]string{{"1", "2", "3", "4", "5"}, {"6", "7", "8", "9", "10"}}
	if diff := cmp.Diff(wantLabels, labels); diff != "" {
		t.Errorf("keyboard labels mismatch (-want +got):\n%s", diff)
	}
	if data := got.Keyboard[1][4].CallbackData; data != "show:10" {
		t.Errorf("tenth button data = %q, want show:10", data)
	}
	if strings.Contains(got.Text, "Title 11") {
		t.Errorf("results list should stop at %d entries:\n%s", DefaultListLimit, got.Text)
	}
	if !strings.HasPrefix(got.Text, `Search results for "title":`) {
		t.Errorf("unexpected header: %q", got.Text)
	}
}

func TestListEmpty(t *testing.T) {
	stub := newStub()
	stub.results = nil
	h := newTestHandler(t, stub)

	got := h.List(context.Background(), "nothing")
	if got.Text != `Nothing found for "nothing"` {
		t.Errorf("List() text = %q", got.Text)
	}
}

func TestMessageRouting(t *testing.T) {
	h := newTestHandler(t, newStub())
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"start", "/start", helpText},
		{"help with bot name", "/help@cinemabot", helpText},
		{"cancel without pending", "/cancel", "There is no pending search."},
		{"unknown command", "/todo", "Unknown command /todo.\n\n" + helpText},
		{"wait usage", "/wait", "Both a delay and a query are needed.\n" + waitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Message(ctx, 1, tt.text, func(Reply) {})
			if got.Text != tt.want {
				t.Errorf("Message(%q) = %q, want %q", tt.text, got.Text, tt.want)
			}
		})
	}

	if got := h.Message(ctx, 1, "matrix", nil); got.PhotoURL == "" {
		t.Errorf("plain text should produce a title card, got %+v", got)
	}
}

func TestParseTitlePayload(t *testing.T) {
	kind, id, err := ParseTitlePayload(TitlePayload("show", 42))
	if err != nil || kind != "show" || id != 42 {
		t.Fatalf("ParseTitlePayload() = %q, %d, %v", kind, id, err)
	}
	if _, _, err := ParseTitlePayload("show:x"); !errors.Is(err, ErrBadPayload) {
		t.Errorf("ParseTitlePayload(show:x) error = %v, want ErrBadPayload", err)
	}
}

func TestTokenStoreExpiry(t *testing.T) {
	store := NewTokenStore(20 * time.Millisecond)

	token := store.Put("long query")
	if got, ok := store.Get(token); !ok || got != "long query" {
		t.Fatalf("Get() = %q, %v; want long query, true", got, ok)
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := store.Get(token); ok {
		t.Error("token should have expired")
	}
}
