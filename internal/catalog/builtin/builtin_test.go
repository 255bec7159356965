package builtin

import (
	"testing"

	"github.com/Digital-Shane/cinemabot/internal/catalog"

	"github.com/google/go-cmp/cmp"
)

func TestLoadBuiltinCatalogs(t *testing.T) {
	r := catalog.NewRegistry()

	if err := LoadBuiltinCatalogs(r); err != nil {
		t.Fatalf("LoadBuiltinCatalogs() error = %v", err)
	}
	if err := LoadBuiltinCatalogs(r); err != nil {
		t.Fatalf("second LoadBuiltinCatalogs() error = %v", err)
	}

	if diff := cmp.Diff([]string{Fixture, JustWatch}, r.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}
