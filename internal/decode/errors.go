package decode

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldCount means the message split into the wrong number of fields.
	ErrFieldCount = errors.New("wrong field count")
	// ErrPattern means a field did not match its pattern.
	ErrPattern = errors.New("pattern mismatch")
	// ErrNoPayload means an event line had no parenthesized payload.
	ErrNoPayload = errors.New("missing payload")
	// ErrNoAction means an event line names no reportable action. Lines
	// rejected with it are filtered, not malformed.
	ErrNoAction = errors.New("no recognised action")
)

// DecodeError describes a single malformed log line.
type DecodeError struct {
	Category string
	Field    string // grammar field that failed, if any
	Err      error
	Detail   string
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode %s: %v", e.Category, e.Err)
	if e.Field != "" {
		msg += " in " + e.Field
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }
