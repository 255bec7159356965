package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
)

// Directory maps provider ids to display names. It is built once and never
// mutated, so concurrent reads need no locking.
type Directory struct {
	names map[int]string
	named map[int]bool
}

// NewDirectory builds a directory from raw provider entries. Entries without
// an id are skipped; entries without a clear_name are known but nameless.
func NewDirectory(entries []json.RawMessage) *Directory {
	d := &Directory{
		names: make(map[int]string, len(entries)),
		named: make(map[int]bool, len(entries)),
	}
	for _, entry := range entries {
		var raw rawProvider
		if err := json.Unmarshal(entry, &raw); err != nil || raw.ID == nil {
			continue
		}
		if raw.ClearName != nil {
			d.names[*raw.ID] = *raw.ClearName
			d.named[*raw.ID] = true
		} else if _, exists := d.names[*raw.ID]; !exists {
			d.names[*raw.ID] = ""
		}
	}
	return d
}

// ParseDirectory decodes a JSON array of provider entries.
func ParseDirectory(data []byte) (*Directory, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("providers: %w: %v", ErrMalformed, err)
	}
	return NewDirectory(entries), nil
}

// Lookup returns the display name for id. It reports false both for
// unknown ids and for known providers that have no name; use Has to tell
// them apart.
func (d *Directory) Lookup(id int) (string, bool) {
	if !d.named[id] {
		return "", false
	}
	return d.names[id], true
}

// Has reports whether id is in the directory.
func (d *Directory) Has(id int) bool {
	_, ok := d.names[id]
	return ok
}

// Len returns the number of known providers.
func (d *Directory) Len() int {
	return len(d.names)
}

// IDs returns the known provider ids in ascending order.
func (d *Directory) IDs() []int {
	ids := make([]int, 0, len(d.names))
	for id := range d.names {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Name resolves id like Lookup and logs unknown ids together with the list of
// known providers, which is usually enough to spot a stale provider mapping.
func (d *Directory) Name(logger *slog.Logger, id int) (string, bool) {
	if !d.Has(id) {
		if logger == nil {
			logger = slog.Default()
		}
		known := make([]string, 0, len(d.names))
		for _, knownID := range d.IDs() {
			known = append(known, strconv.Itoa(knownID)+"="+strconv.Quote(d.names[knownID]))
		}
		logger.Error("no provider with id was found",
			slog.Int("providerID", id),
			slog.Any("knownProviders", known),
		)
		return "", false
	}
	return d.Lookup(id)
}
