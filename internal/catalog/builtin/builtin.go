// Package builtin handles catalog registration to avoid import cycles
package builtin

import (
	"fmt"

	"github.com/Digital-Shane/cinemabot/internal/catalog"
	"github.com/Digital-Shane/cinemabot/internal/catalog/fixture"
	"github.com/Digital-Shane/cinemabot/internal/catalog/justwatch"
)

// Names of the bundled catalogs
const (
	JustWatch = "justwatch"
	Fixture   = "fixture"
)

// LoadBuiltinCatalogs registers all bundled catalogs into r. Catalogs that
// are already registered are left alone so repeated calls are harmless.
func LoadBuiltinCatalogs(r *catalog.Registry) error {
	builtins := []struct {
		name    string
		factory catalog.Factory
	}{
		{JustWatch, justwatch.Factory},
		{Fixture, fixture.Factory},
	}

	for _, b := range builtins {
		if r.Has(b.name) {
			continue
		}
		if err := r.Register(b.name, b.factory); err != nil {
			return fmt.Errorf("failed to register %s catalog: %w", b.name, err)
		}
	}
	return nil
}
