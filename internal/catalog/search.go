package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"sync/atomic"
)

// SearchFunc performs the single request behind a candidate sequence and
// returns the raw result items in catalog order.
type SearchFunc func(ctx context.Context) ([]json.RawMessage, error)

// Candidates wraps a search request into a lazy, non-restartable sequence.
// The request is issued when iteration starts; items are decoded one at a
// time, so a consumer that stops early never decodes the rest. Malformed
// items are skipped. A request failure is yielded once with a zero movie.
func Candidates(ctx context.Context, search SearchFunc) iter.Seq2[BaseMovie, error] {
	var started atomic.Bool
	return func(yield func(BaseMovie, error) bool) {
		if started.Swap(true) {
			yield(BaseMovie{}, ErrConsumed)
			return
		}

		items, err := search(ctx)
		if err != nil {
			yield(BaseMovie{}, err)
			return
		}

		for _, item := range items {
			movie, err := ParseBaseMovie(item)
			if err != nil {
				continue
			}
			if !yield(movie, nil) {
				return
			}
		}
	}
}

// SearchForItem resolves query to the detail record of its first candidate.
//
// Only the first candidate is tried. When it has no detail record with the
// required fields the result is nil with no error, the same as when nothing
// matches at all; the next candidate is not consulted. Transport and decode
// failures are returned as errors so callers can tell them apart from an
// empty result.
func SearchForItem(ctx context.Context, c Catalog, query string) (*Movie, error) {
	for candidate, err := range c.BaseSearch(ctx, query) {
		if err != nil {
			return nil, err
		}
		movie, err := c.MovieDetails(ctx, candidate.ID, candidate.Kind)
		if errors.Is(err, ErrMissingField) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return movie, nil
	}
	return nil, nil
}

// Take collects at most n candidates from seq and stops consuming it after
// that. The first error ends collection and is returned.
func Take(seq iter.Seq2[BaseMovie, error], n int) ([]BaseMovie, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]BaseMovie, 0, n)
	for movie, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, movie)
		if len(out) == n {
			break
		}
	}
	return out, nil
}
