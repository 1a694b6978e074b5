package decode

import (
	"github.com/hejijunhao/fwdigest/internal/model"
)

// threatGrammar is the pipe-delimited threat message:
// core|description|username|severity|category
var threatGrammar = Grammar{
	Name:  "threat",
	Sep:   "|",
	Exact: 5,
	Fields: []Field{
		{Name: "core", Index: 0},
		{Name: "description", Index: 1},
		{Name: "username", Index: 2},
		{Name: "severity", Index: 3},
		{Name: "category", Index: 4, Default: "Unknown"},
	},
}

// threatAddr is a dotted IPv4 address with an optional port, or an IPv6 literal.
// Hex digits are only admitted in the colon form so that bare hex words
// like "beef" do not pass for addresses.
const threatAddr = `(?:[\d.:]+|[0-9A-Fa-f.]*:[0-9A-Fa-f.:]*)`

// threatCore matches "ID: [TAG] WORD: THREAT PROTO SRC -> DST [TARGET]".
var threatCore = MustPattern("threat", "core",
	`^(?P<id>\S+): \[(?P<tag>\S+)\] (?P<verdict>\S+): (?P<threat>\S+) (?P<proto>\S+) `+
		`(?P<src>`+threatAddr+`) -> (?P<dst>`+threatAddr+`)(?: (?P<target>\S+))? ?$`)

// Threat decodes one threat log entry. It returns a *DecodeError when the
// message has the wrong number of fields or the core does not match.
// Unrecognised severities are not errors; they decode to SeverityUnknown.
func Threat(raw model.RawEntry) (model.ThreatRecord, error) {
	f, err := threatGrammar.Split(raw.Message)
	if err != nil {
		return model.ThreatRecord{}, err
	}
	if err := threatCore.Match(f["core"], f); err != nil {
		return model.ThreatRecord{}, err
	}

	return model.ThreatRecord{
		Time:        raw.Time,
		Zone:        raw.Timezone,
		Severity:    model.ParseSeverity(f["severity"]),
		Threat:      f["threat"],
		Proto:       f["proto"],
		Src:         f["src"],
		Dst:         f["dst"],
		Target:      f["target"],
		Description: f["description"],
		Username:    f["username"],
		Category:    f["category"],
	}, nil
}
