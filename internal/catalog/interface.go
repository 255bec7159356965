package catalog

import (
	"context"
	"iter"
)

// Catalog is the contract every catalog backend implements. The rest of the
// bot only ever talks to a catalog through this interface.
type Catalog interface {
	// ProviderName returns the display name of a streaming provider. Unknown
	// ids report false and are logged, never returned as an error.
	ProviderName(providerID int) (string, bool)

	// BaseSearch issues one search request when iteration starts and yields
	// the candidates in catalog order. The sequence can be ranged only once.
	BaseSearch(ctx context.Context, query string) iter.Seq2[BaseMovie, error]

	// MovieDetails fetches and parses the full record for id and kind.
	MovieDetails(ctx context.Context, id int, kind string) (*Movie, error)
}

// Rating is a single normalized score from a scoring provider.
type Rating struct {
	Name  string
	Score float64
}

// Offer points at a page where the title can be watched.
type Offer struct {
	ProviderID int
	URL        string
}

// BaseMovie identifies a search hit before detail resolution.
type BaseMovie struct {
	ID          int
	Title       string
	Kind        string // catalog object type, e.g. "movie" or "show"
	ReleaseYear *int
}

// Movie is the fully resolved record of a title.
type Movie struct {
	BaseMovie

	ShortDescription string
	PosterTemplate   string // contains a {profile} placeholder
	Ratings          []Rating
	Offers           []Offer // one per provider id
}

// Base returns the identity part of the movie.
func (m *Movie) Base() BaseMovie {
	return m.BaseMovie
}

// Year returns the release year and whether it is known.
func (b BaseMovie) Year() (int, bool) {
	if b.ReleaseYear == nil {
		return 0, false
	}
	return *b.ReleaseYear, true
}
