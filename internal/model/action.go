package model

import "strings"

// Action is what the event log line says happened to an event.
type Action int

const (
	ActionUnknown Action = -1
	ActionInsert  Action = 0
	ActionSend    Action = 1
	ActionDrop    Action = 2
	ActionAck     Action = 3
)

// actionProbes are tested in order; the first substring found wins.
var actionProbes = []struct {
	probe  string
	action Action
}{
	{"Insert Event from", ActionInsert},
	{"Drop Event from", ActionDrop},
	{"Get ACK from", ActionAck},
	{"Send Event", ActionSend},
}

// DetectAction returns the action named by msg. ok is false when no probe
// matches, meaning the line carries no reportable event.
func DetectAction(msg string) (Action, bool) {
	for _, p := range actionProbes {
		if strings.Contains(msg, p.probe) {
			return p.action, true
		}
	}
	return ActionUnknown, false
}

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "INSERT"
	case ActionSend:
		return "SEND"
	case ActionDrop:
		return "DROP"
	case ActionAck:
		return "ACK"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
