package model

import (
	"fmt"
	"strings"
)

// Category is one of the two log kinds pulled from an appliance.
type Category int

const (
	Threat Category = iota
	Event
)

// Categories lists every category in run order.
var Categories = []Category{Threat, Event}

// String returns the lowercase identifier used in metrics labels and file names.
func (c Category) String() string {
	switch c {
	case Threat:
		return "threat"
	case Event:
		return "events"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Title returns the label used in artifact headers ("Threat", "Events").
func (c Category) Title() string {
	switch c {
	case Threat:
		return "Threat"
	case Event:
		return "Events"
	default:
		return c.String()
	}
}

// ParseCategory accepts "threat", "event" or "events" in any case.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "threat", "threats":
		return Threat, nil
	case "event", "events":
		return Event, nil
	default:
		return 0, fmt.Errorf("unknown category %q (want threat or event)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
