// Package fixture implements a catalog served from a local JSON file. The
// file uses the same record shapes as the JustWatch API, which makes it a
// convenient offline backend and a stand-in for the real catalog in tests.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/Digital-Shane/cinemabot/internal/catalog"
)

const catalogName = "fixture"

type file struct {
	Providers []json.RawMessage `json:"providers"`
	Titles    []json.RawMessage `json:"titles"`
}

// key identifies a title by the pair the catalog hands out.
type key struct {
	id   int
	kind string
}

type entry struct {
	title string // lower-cased for matching
	raw   json.RawMessage
}

// Catalog serves canned titles. It is immutable after Load.
type Catalog struct {
	providers *catalog.Directory
	entries   []entry
	byKey     map[key]json.RawMessage
	logger    *slog.Logger
}

var _ catalog.Catalog = (*Catalog)(nil)

// Load reads a fixture file from path.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data, logger)
}

// Parse builds a catalog from fixture file contents.
func Parse(data []byte, logger *slog.Logger) (*Catalog, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fixture: %w: %v", catalog.ErrMalformed, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Catalog{
		providers: catalog.NewDirectory(f.Providers),
		entries:   make([]entry, 0, len(f.Titles)),
		byKey:     make(map[key]json.RawMessage, len(f.Titles)),
		logger:    logger.With(slog.String("catalog", catalogName)),
	}

	for _, raw := range f.Titles {
		var head struct {
			ID         *int    `json:"id"`
			Title      *string `json:"title"`
			ObjectType *string `json:"object_type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			continue
		}
		title := ""
		if head.Title != nil {
			title = strings.ToLower(*head.Title)
		}
		c.entries = append(c.entries, entry{title: title, raw: raw})
		if head.ID != nil && head.ObjectType != nil {
			c.byKey[key{id: *head.ID, kind: *head.ObjectType}] = raw
		}
	}

	c.logger.Info("fixture catalog loaded",
		slog.Int("titles", len(c.entries)),
		slog.Int("providers", c.providers.Len()),
	)
	return c, nil
}

// Factory opens a fixture catalog from registry options. The "path"
// setting is required.
func Factory(_ context.Context, opts catalog.Options) (catalog.Catalog, error) {
	path := opts.String("path", "")
	if path == "" {
		return nil, fmt.Errorf("fixture catalog requires a path")
	}
	return Load(path, opts.Logger)
}

// ProviderName returns the display name of a streaming provider.
func (c *Catalog) ProviderName(providerID int) (string, bool) {
	return c.providers.Name(c.logger, providerID)
}

// BaseSearch yields titles whose name contains query, case-insensitively,
// in file order.
func (c *Catalog) BaseSearch(ctx context.Context, query string) iter.Seq2[catalog.BaseMovie, error] {
	return catalog.Candidates(ctx, func(ctx context.Context) ([]json.RawMessage, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		needle := strings.ToLower(strings.TrimSpace(query))
		var items []json.RawMessage
		for _, e := range c.entries {
			if needle != "" && strings.Contains(e.title, needle) {
				items = append(items, e.raw)
			}
		}
		return items, nil
	})
}

// MovieDetails returns the title stored under id and kind.
func (c *Catalog) MovieDetails(ctx context.Context, id int, kind string) (*catalog.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, ok := c.byKey[key{id: id, kind: kind}]
	if !ok {
		return nil, &catalog.CatalogError{
			Catalog: catalogName,
			Code:    catalog.CodeNotFound,
			Message: fmt.Sprintf("no %s with id %d", kind, id),
		}
	}
	return catalog.ParseMovie(raw, id)
}
