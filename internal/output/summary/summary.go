// Package summary prints a short per-appliance run summary for operators.
package summary

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hejijunhao/fwdigest/internal/model"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // green
	styleFailed = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleFaint  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Output renders one block per batch: a header with the window, then one row
// per appliance.
type Output struct {
	w io.Writer
}

// New writes the summary to stderr so it never mixes with JSON on stdout.
func New() *Output {
	return NewWriter(os.Stderr)
}

// NewWriter is New for an arbitrary writer.
func NewWriter(w io.Writer) *Output {
	return &Output{w: w}
}

func (o *Output) Write(_ context.Context, batch model.Batch) error {
	var b strings.Builder
	header := fmt.Sprintf("%s logs  %s -> %s", batch.Category.Title(), batch.Window.FromString(), batch.Window.ToString())
	b.WriteString(styleHeader.Render(header))
	b.WriteByte('\n')

	width := 0
	for _, oc := range batch.Outcomes {
		width = max(width, len(oc.Appliance))
	}
	for _, oc := range batch.Outcomes {
		b.WriteString("  ")
		b.WriteString(fmt.Sprintf("%-*s  ", width, oc.Appliance))
		b.WriteString(row(oc))
		b.WriteByte('\n')
	}
	if n := batch.Failed(); n > 0 {
		b.WriteString(styleFailed.Render(fmt.Sprintf("  %d of %d appliances failed", n, len(batch.Outcomes))))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(o.w, b.String())
	return err
}

func row(oc model.Outcome) string {
	if !oc.OK() {
		return styleFailed.Render("FAILED") + " " + styleFaint.Render(oc.Err.Error())
	}
	s := styleOK.Render("OK    ") + fmt.Sprintf(" %d records", len(oc.Records))
	if oc.Dropped > 0 {
		s += " " + styleWarn.Render(fmt.Sprintf("%d dropped", oc.Dropped))
	}
	if oc.Skipped > 0 {
		s += " " + styleFaint.Render(fmt.Sprintf("%d skipped", oc.Skipped))
	}
	return s
}

func (o *Output) Close() error { return nil }
