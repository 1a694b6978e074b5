// Package decode turns raw firewall log entries into typed records.
//
// Both decoders are pure: they read only their input and the event catalog,
// so the same page always decodes to the same records.
package decode

import (
	"errors"
	"fmt"

	"github.com/hejijunhao/fwdigest/internal/catalog"
	"github.com/hejijunhao/fwdigest/internal/model"
)

// Decoder dispatches raw entries to the decoder for their category.
type Decoder struct {
	catalog catalog.Lookuper
}

// New returns a Decoder that resolves event ids through cat. A nil cat
// resolves every id to the placeholder name.
func New(cat catalog.Lookuper) *Decoder {
	if cat == nil {
		cat = catalog.Empty()
	}
	return &Decoder{catalog: cat}
}

// Decode decodes raw as a record of the given category.
func (d *Decoder) Decode(category model.Category, raw model.RawEntry) (model.Record, error) {
	switch category {
	case model.Threat:
		rec, err := Threat(raw)
		if err != nil {
			return nil, err
		}
		return rec, nil
	case model.Event:
		rec, err := Event(raw, d.catalog)
		if err != nil {
			return nil, err
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("decode: unsupported category %v", category)
	}
}

// Result is the outcome of decoding a whole page.
type Result struct {
	Records []model.Record
	Dropped []error // one per malformed entry, in page order
	Skipped int
}

// Page decodes every entry in entries, preserving order. Malformed entries are
// collected in Dropped and filtered entries counted in Skipped; neither stops
// the remaining entries from decoding.
func (d *Decoder) Page(category model.Category, entries []model.RawEntry) Result {
	res := Result{Records: make([]model.Record, 0, len(entries))}
	for _, raw := range entries {
		rec, err := d.Decode(category, raw)
		switch {
		case err == nil:
			res.Records = append(res.Records, rec)
		case errors.Is(err, ErrNoAction):
			res.Skipped++
		default:
			res.Dropped = append(res.Dropped, err)
		}
	}
	return res
}
