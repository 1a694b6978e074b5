// Package notify delivers a run digest to people or systems once the
// artifacts are written.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hejijunhao/fwdigest/internal/model"
)

// DefaultSubject is the subject line of every digest.
const DefaultSubject = "Daily Firewall Log Digest"

// Attachment is one named artifact.
type Attachment struct {
	Name string
	Data []byte
}

// Digest is what a Notifier delivers.
type Digest struct {
	RunID       string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Notifier sends a digest somewhere.
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
	Close() error
}

// NewDigest builds a digest for report, attaching the files at paths.
func NewDigest(report model.Report, paths []string) (Digest, error) {
	d := Digest{
		RunID:   report.RunID,
		Subject: DefaultSubject,
		Body:    Body(report),
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return Digest{}, fmt.Errorf("notify: read attachment: %w", err)
		}
		d.Attachments = append(d.Attachments, Attachment{Name: filepath.Base(p), Data: data})
	}
	return d, nil
}

// Body renders the plain-text digest body: the window, then one line per
// category with the failed appliances, if any.
func Body(report model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Delivery of the threat and event logs for the firewalls from %s to %s.\n",
		report.Window.FromString(), report.Window.ToString())
	for _, batch := range report.Batches {
		records := 0
		var failed []string
		for _, o := range batch.Outcomes {
			records += len(o.Records)
			if !o.OK() {
				failed = append(failed, o.Appliance)
			}
		}
		fmt.Fprintf(&b, "\n%s: %d records from %d appliances", batch.Category.Title(), records, len(batch.Outcomes))
		if len(failed) > 0 {
			fmt.Fprintf(&b, ", failed: %s", strings.Join(failed, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// SendAll delivers d to every notifier. A failing notifier does not stop the
// others; errors are joined.
func SendAll(ctx context.Context, d Digest, notifiers ...Notifier) error {
	var errs []error
	for _, n := range notifiers {
		if err := n.Notify(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CloseAll closes every notifier, collecting errors.
func CloseAll(notifiers ...Notifier) error {
	var errs []error
	for _, n := range notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
