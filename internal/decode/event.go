package decode

import (
	"github.com/hejijunhao/fwdigest/internal/catalog"
	"github.com/hejijunhao/fwdigest/internal/model"
)

// eventGrammar is the pipe-delimited payload inside the last parenthesized
// group of a box event line. Only the positions below are read; missing
// positions decode to "".
var eventGrammar = Grammar{
	Name: "event",
	Sep:  "|",
	Fields: []Field{
		{Name: "layer", Index: 2},
		{Name: "class", Index: 4},
		{Name: "event_id", Index: 5},
		{Name: "description", Index: 6},
		{Name: "message", Index: 9},
	},
}

// Event decodes one event log entry, resolving the event id through cat.
// Lines without a recognised action return ErrNoAction; lines with an action
// but no parenthesized payload return a *DecodeError wrapping ErrNoPayload.
func Event(raw model.RawEntry, cat catalog.Lookuper) (model.EventRecord, error) {
	action, ok := model.DetectAction(raw.Message)
	if !ok {
		return model.EventRecord{}, ErrNoAction
	}

	payload, ok := lastGroup(raw.Message)
	if !ok {
		return model.EventRecord{}, &DecodeError{
			Category: eventGrammar.Name,
			Err:      ErrNoPayload,
			Detail:   truncate(raw.Message, 120),
		}
	}
	f, err := eventGrammar.Split(payload)
	if err != nil {
		return model.EventRecord{}, err
	}

	entry := cat.Lookup(f["event_id"])
	rec := model.EventRecord{
		Time:        raw.Time,
		Zone:        raw.Timezone,
		Action:      action,
		LayerName:   f["layer"],
		ClassName:   f["class"],
		EventID:     entry.ID,
		EventName:   entry.Name,
		Description: f["description"],
	}
	if action == model.ActionInsert {
		rec.Message = f["message"]
	}
	return rec, nil
}
