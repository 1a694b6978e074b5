package model

import "time"

// Outcome is the result of one category batch for one appliance.
// Err is nil on success; on failure Records is empty and Err holds the cause.
type Outcome struct {
	Appliance string
	Category  Category
	Records   []Record
	Err       error

	Received int // raw entries in the page
	Dropped  int // entries that failed to decode
	Skipped  int // entries intentionally filtered (no recognised action)
}

// OK reports whether the appliance returned a page.
func (o Outcome) OK() bool { return o.Err == nil }

// Batch is everything one category produced across all appliances in a run.
type Batch struct {
	RunID    string
	Category Category
	Window   TimeWindow
	Outcomes []Outcome
}

// Failed returns the number of outcomes that carry an error.
func (b Batch) Failed() int {
	n := 0
	for _, o := range b.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// Report summarises a complete run.
type Report struct {
	RunID   string
	Started time.Time
	Window  TimeWindow
	Batches []Batch
}
