package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/hejijunhao/fwdigest/internal/model"
)

// FormatThreat renders a threat record as one fixed-width line.
func FormatThreat(r model.ThreatRecord) string {
	line := fmt.Sprintf("@ [%-19s (%-6s)] - [%-7s] %-5s %-50s   %-16s ->   %-21s %-30s",
		r.Time, r.Zone, r.Severity, r.Threat, r.Description, r.Src, r.Dst, r.Target)
	if r.Username != "" {
		line += " @" + r.Username
	}
	return line
}

// FormatEvent renders an event record as one fixed-width line.
func FormatEvent(r model.EventRecord) string {
	return fmt.Sprintf("@ [%-19s (%-6s)] - %-30s %-15s - %s %s",
		r.Time, r.Zone, r.LayerName, r.ClassName, r.Description, r.Message)
}

// FormatRecord dispatches on the record kind.
func FormatRecord(r model.Record) string {
	switch rec := r.(type) {
	case model.ThreatRecord:
		return FormatThreat(rec)
	case model.EventRecord:
		return FormatEvent(rec)
	default:
		return fmt.Sprintf("%+v", r)
	}
}

// WriteOutcome writes one appliance block: a header line, one line per record
// (or the failure cause), then a blank separator.
func WriteOutcome(w io.Writer, o model.Outcome) error {
	var b strings.Builder
	if o.OK() {
		fmt.Fprintf(&b, "%s - %s logs:\n", o.Appliance, o.Category.Title())
		for _, rec := range o.Records {
			b.WriteString(FormatRecord(rec))
			b.WriteByte('\n')
		}
	} else {
		fmt.Fprintf(&b, "%s - FAILED:\n%v\n", o.Appliance, o.Err)
	}
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteBatch writes every outcome of batch in order.
func WriteBatch(w io.Writer, batch model.Batch) error {
	for _, o := range batch.Outcomes {
		if err := WriteOutcome(w, o); err != nil {
			return err
		}
	}
	return nil
}

// OutcomeView is the JSON shape of an outcome. Err is flattened to a string.
type OutcomeView struct {
	Appliance string         `json:"appliance"`
	Category  model.Category `json:"category"`
	OK        bool           `json:"ok"`
	Error     string         `json:"error,omitempty"`
	Received  int            `json:"received"`
	Dropped   int            `json:"dropped"`
	Skipped   int            `json:"skipped"`
	Records   []model.Record `json:"records"`
}

// View converts o to its JSON shape. Records is never nil.
func View(o model.Outcome) OutcomeView {
	v := OutcomeView{
		Appliance: o.Appliance,
		Category:  o.Category,
		OK:        o.OK(),
		Received:  o.Received,
		Dropped:   o.Dropped,
		Skipped:   o.Skipped,
		Records:   o.Records,
	}
	if o.Err != nil {
		v.Error = o.Err.Error()
	}
	if v.Records == nil {
		v.Records = []model.Record{}
	}
	return v
}
