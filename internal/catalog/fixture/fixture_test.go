package fixture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Digital-Shane/cinemabot/internal/catalog"

	"github.com/google/go-cmp/cmp"
)

func loadTestdata(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(filepath.Join("testdata", "catalog.json"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func TestBaseSearch(t *testing.T) {
	c := loadTestdata(t)

	tests := []struct {
		query string
		want  []int
	}{
		{"matrix", []int{101, 102}},
		{"  MATRIX reloaded ", []int{102}},
		{"broken record", []int{201, 202}},
		{"zzz", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := catalog.Take(c.BaseSearch(context.Background(), tt.query), 10)
			if err != nil {
				t.Fatalf("Take() error = %v", err)
			}
			var ids []int
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchForItem(t *testing.T) {
	c := loadTestdata(t)

	movie, err := catalog.SearchForItem(context.Background(), c, "matrix")
	if err != nil || movie == nil {
		t.Fatalf("SearchForItem(matrix) = %v, %v", movie, err)
	}
	if movie.ID != 101 || movie.PosterTemplate != "/poster/101/{profile}" {
		t.Errorf("SearchForItem(matrix) = %+v", movie)
	}
	wantOffers := []catalog.Offer{
		{ProviderID: 8, URL: "https://netflix.example/matrix-hd"},
		{ProviderID: 119, URL: "https://prime.example/matrix"},
	}
	if diff := cmp.Diff(wantOffers, movie.Offers); diff != "" {
		t.Errorf("offers mismatch (-want +got):\n%s", diff)
	}

	// The first "broken record" hit lacks a description; the complete second
	// hit is not consulted.
	movie, err = catalog.SearchForItem(context.Background(), c, "broken record")
	if err != nil || movie != nil {
		t.Errorf("SearchForItem(broken record) = %v, %v; want nil, nil", movie, err)
	}
}

func TestMovieDetailsNotFound(t *testing.T) {
	c := loadTestdata(t)

	_, err := c.MovieDetails(context.Background(), 101, "show")
	if !catalog.IsNotFound(err) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestMovieDetailsCancelled(t *testing.T) {
	c := loadTestdata(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.MovieDetails(ctx, 101, "movie"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestProviderName(t *testing.T) {
	c := loadTestdata(t)

	if name, ok := c.ProviderName(119); !ok || name != "Amazon Prime Video" {
		t.Errorf("ProviderName(119) = %q, %v", name, ok)
	}
	if _, ok := c.ProviderName(501); ok {
		t.Error("nameless provider should report false")
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte(`{"titles": 3}`), nil); !errors.Is(err, catalog.ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestFactory(t *testing.T) {
	if _, err := Factory(context.Background(), catalog.Options{}); err == nil {
		t.Error("Factory() without a path should fail")
	}

	c, err := Factory(context.Background(), catalog.Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Settings: map[string]interface{}{"path": filepath.Join("testdata", "catalog.json")},
	})
	if err != nil {
		t.Fatalf("Factory() error = %v", err)
	}
	if _, ok := c.ProviderName(8); !ok {
		t.Error("factory catalog lacks providers")
	}
}
