// Package report renders the end-of-run summary block.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/listmirror/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	colorGreen = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorRed   = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorGray  = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
)

// headerStyle is used for the summary's first line.
var headerStyle = lipgloss.NewStyle().Bold(true)

// listNameStyle renders the per-list name column.
var listNameStyle = lipgloss.NewStyle().Bold(true).PaddingLeft(2)

var (
	rebuiltStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	upToDateStyle = lipgloss.NewStyle().Foreground(colorGray)
	failedStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// Render formats the per-list results into a human-readable summary.
func Render(results []model.ListResult) string {
	var (
		b        strings.Builder
		fetched  int
		changed  int
		rebuilds int
	)
	for _, r := range results {
		fetched += r.UnitsFetched
		changed += r.UnitsChanged
		if r.Rebuilt {
			rebuilds++
		}
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"synced %d lists: %d fetched, %d changed, %d rebuilt",
		len(results), fetched, changed, rebuilds,
	)))
	b.WriteString("\n")

	for _, r := range results {
		b.WriteString(listNameStyle.Render(r.List))
		b.WriteString(" ")
		b.WriteString(renderOutcome(r))
		b.WriteString("\n")
	}

	return b.String()
}

// renderOutcome formats the status column for one list.
func renderOutcome(r model.ListResult) string {
	if r.Err != nil {
		return failedStyle.Render(fmt.Sprintf("failed: %s", r.Err))
	}

	counts := fmt.Sprintf(
		"%d fetched, %d changed", r.UnitsFetched, r.UnitsChanged,
	)
	if !r.Rebuilt {
		return counts + " " + upToDateStyle.Render("(up to date)")
	}

	status := "(rebuilt)"
	if r.ArtifactPath != "" {
		status = fmt.Sprintf("(rebuilt %s)", r.ArtifactPath)
	}
	return counts + " " + rebuiltStyle.Render(status)
}
