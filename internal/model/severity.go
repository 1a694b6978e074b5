package model

import (
	"strconv"
	"strings"
)

// Severity is the threat severity reported by the appliance.
// INFO < LOW < MEDIUM < HIGH; SeverityUnknown sits outside that order.
type Severity int

const (
	SeverityUnknown Severity = -1
	SeverityInfo    Severity = 0
	SeverityLow     Severity = 1
	SeverityMedium  Severity = 2
	SeverityHigh    Severity = 3
)

var severityNames = map[Severity]string{
	SeverityUnknown: "UNKNOWN",
	SeverityInfo:    "INFO",
	SeverityLow:     "LOW",
	SeverityMedium:  "MEDIUM",
	SeverityHigh:    "HIGH",
}

// ParseSeverity accepts a level name in any case or the decimal ordinal of a
// level. Anything else is SeverityUnknown.
func ParseSeverity(s string) Severity {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	for sev, name := range severityNames {
		if name == upper {
			return sev
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return SeverityUnknown
	}
	return SeverityFromInt(n)
}

// SeverityFromInt maps an ordinal to its level.
func SeverityFromInt(n int) Severity {
	sev := Severity(n)
	if sev >= SeverityInfo && sev <= SeverityHigh {
		return sev
	}
	return SeverityUnknown
}

// Known reports whether s is one of the ordered levels.
func (s Severity) Known() bool {
	return s >= SeverityInfo && s <= SeverityHigh
}

// Less reports whether s ranks below other. Always false when either is unknown.
func (s Severity) Less(other Severity) bool {
	return s.Known() && other.Known() && s < other
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return severityNames[SeverityUnknown]
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (s *Severity) UnmarshalText(b []byte) error {
	*s = ParseSeverity(string(b))
	return nil
}
