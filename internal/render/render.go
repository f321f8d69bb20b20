// Package render projects a status report onto plain terminal output. The
// interactive view reuses Heading and the badge helpers so both front ends
// agree on what is shown.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/addonindex/idxstat/internal/domain"
	"github.com/addonindex/idxstat/internal/service"
	"github.com/addonindex/idxstat/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	// LoadingText is shown until the fetch resolves
	LoadingText = "Loading..."

	// HeadingText precedes the summary badges
	HeadingText = "Indexing Status"

	// LegacyBadgeNote flags that pending rows are badged Okay
	LegacyBadgeNote = "note: %d pending row(s) shown with the Okay badge (ui.row_badges=legacy)"
)

// Loading returns the placeholder shown before the status arrives
func Loading() string {
	return LoadingText
}

// Failure returns the message shown when the status could not be loaded
func Failure(err error) string {
	if err == nil {
		return "Error loading status"
	}
	kind := domain.FailureKindOf(err)
	msg := "Error loading status (" + kind.String() + "): " + err.Error()
	if errors.Is(err, domain.ErrAuthFailed) {
		msg += "\nhint: set server.token or server.username/server.password"
	}
	return msg
}

// Badge renders a single styled badge
func Badge(b domain.Badge) string {
	return styles.BadgeStyle(b.State).Render(b.Label())
}

// RowBadge renders the per-row badge, which carries no count
func RowBadge(state domain.ItemState) string {
	return styles.BadgeStyle(state).Render(state.String())
}

// Heading renders the title followed by the non-zero counters
func Heading(counts domain.Counts) string {
	parts := []string{styles.TitleStyle.Render(HeadingText)}
	for _, b := range counts.Badges() {
		parts = append(parts, Badge(b))
	}
	return strings.Join(parts, " ")
}

// Rule renders a horizontal separator of width cells
func Rule(width int) string {
	if width < 1 {
		width = 1
	}
	return styles.RuleStyle.Render(strings.Repeat("─", width))
}

// Table renders one row per report row, in report order. A non-positive
// width lets the table size itself.
func Table(rows []service.Row, width int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.RuleStyle).
		Headers("UID", "STATUS", "RECORD").
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(styles.LightGray)
			}
			return style
		})

	for _, r := range rows {
		t.Row(r.UID, RowBadge(r.Badge), r.RecordJSON)
	}
	if width > 0 {
		t.Width(width)
	}
	return t.Render()
}

// Options tunes the plain report output
type Options struct {
	Width int
	// Rows overrides the report rows, e.g. after filtering
	Rows []service.Row
	// Filtered marks that Rows is a subset of the report
	Filtered bool
}

// Report writes heading, separator, table and the legacy badge note
func Report(w io.Writer, report service.Report, opts Options) error {
	rows := report.Rows
	if opts.Filtered {
		rows = opts.Rows
	}

	ruleWidth := opts.Width
	if ruleWidth <= 0 {
		ruleWidth = lipgloss.Width(HeadingText) + 24
	}

	var b strings.Builder
	b.WriteString(Heading(report.Counts))
	b.WriteString("\n")
	b.WriteString(Rule(ruleWidth))
	b.WriteString("\n")
	b.WriteString(Table(rows, opts.Width))
	b.WriteString("\n")
	if opts.Filtered && len(rows) == 0 {
		b.WriteString(styles.DimStyle.Render("No matching items"))
		b.WriteString("\n")
	}
	if opts.Filtered {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d of %d items", len(rows), len(report.Rows))))
		b.WriteString("\n")
	}
	if report.LegacyPendingRows > 0 {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf(LegacyBadgeNote, report.LegacyPendingRows)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
