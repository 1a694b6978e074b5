package fwdigest

import (
	"encoding/json"
	"fmt"

	"github.com/hejijunhao/fwdigest/internal/catalog"
	"github.com/hejijunhao/fwdigest/internal/decode"
	"github.com/hejijunhao/fwdigest/internal/model"
)

// Record types re-exported for callers outside the module.
type (
	Category     = model.Category
	Severity     = model.Severity
	Action       = model.Action
	RawEntry     = model.RawEntry
	Record       = model.Record
	ThreatRecord = model.ThreatRecord
	EventRecord  = model.EventRecord
)

const (
	Threat = model.Threat
	Event  = model.Event
)

// ErrSkipped is returned for event lines that carry no recognised action.
var ErrSkipped = decode.ErrNoAction

// Decoder decodes log lines. Safe for concurrent use.
type Decoder struct {
	dec *decode.Decoder
}

// New creates a Decoder.
func New(opts ...Option) (*Decoder, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cat := catalog.New(o.catalog)
	if o.catalogFile != "" {
		loaded, err := catalog.Load(o.catalogFile)
		if err != nil {
			return nil, fmt.Errorf("fwdigest: %w", err)
		}
		cat = loaded
	}
	return &Decoder{dec: decode.New(cat)}, nil
}

// DecodeThreat decodes a single threat log message.
func (d *Decoder) DecodeThreat(message string) (ThreatRecord, error) {
	return decode.Threat(RawEntry{Message: message})
}

// DecodeEvent decodes a single event log message. Lines without a
// recognised action return ErrSkipped.
func (d *Decoder) DecodeEvent(message string) (EventRecord, error) {
	rec, err := d.dec.Decode(Event, RawEntry{Message: message})
	if err != nil {
		return EventRecord{}, err
	}
	return rec.(EventRecord), nil
}

// Decode decodes a raw entry of the given category.
func (d *Decoder) Decode(category Category, entry RawEntry) (Record, error) {
	return d.dec.Decode(category, entry)
}

// Page is a decoded log page.
type Page struct {
	Records []Record
	Dropped []error
	Skipped int
}

// DecodePage decodes a JSON page as returned by the appliance log API:
// {"content": [{"message": ..., "time": ..., "timezone": ...}, ...]}.
// Malformed lines are collected in Dropped; only a malformed page fails.
func (d *Decoder) DecodePage(category Category, data []byte) (Page, error) {
	var page model.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return Page{}, fmt.Errorf("fwdigest: decode page: %w", err)
	}
	res := d.dec.Page(category, page.Content)
	return Page{Records: res.Records, Dropped: res.Dropped, Skipped: res.Skipped}, nil
}
