package model

import "time"

// WindowLayout is the fixed-width timestamp format the log API expects.
const WindowLayout = "2006-01-02 15:04:05"

// TimeWindow is the [From, To] interval requested from every appliance in a run.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// NewTimeWindow returns the window ending at now and spanning delta.
// A negative delta is treated as zero so From never exceeds To.
func NewTimeWindow(delta time.Duration, now time.Time) TimeWindow {
	if delta < 0 {
		delta = 0
	}
	return TimeWindow{From: now.Add(-delta), To: now}
}

// FromString returns From in WindowLayout.
func (w TimeWindow) FromString() string { return w.From.Format(WindowLayout) }

// ToString returns To in WindowLayout.
func (w TimeWindow) ToString() string { return w.To.Format(WindowLayout) }

// Duration returns the length of the window.
func (w TimeWindow) Duration() time.Duration { return w.To.Sub(w.From) }
