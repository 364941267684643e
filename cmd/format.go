package cmd

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/search"
	"github.com/rubiojr/pocketdiary/pkg/settings"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	dateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	entryTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1).
			Margin(0, 0, 1, 0)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

const snippetLength = 100

// renderResults prints a search result list. Scores are shown when sorting by
// relevance and come from s.
func renderResults(w io.Writer, s *search.Searcher, q core.SearchQuery, entries []*core.Entry) {
	header := fmt.Sprintf("%d %s for %q", len(entries), plural(len(entries), "entry", "entries"), q.Text)
	fmt.Fprintln(w, titleStyle.Render(header))
	fmt.Fprintln(w, metaStyle.Render(describeQuery(q)))
	fmt.Fprintln(w)

	if len(entries) == 0 {
		fmt.Fprintln(w, noDataStyle.Render("No matching entries."))
		return
	}

	for _, e := range entries {
		line := dateStyle.Render(e.Key()) + "  " + entryTitleStyle.Render(displayTitle(e))
		if q.SortMode == core.Relevance {
			line += "  " + metaStyle.Render(fmt.Sprintf("score %d", s.Score(e, q)))
		}
		fmt.Fprintln(w, line)
		if text := snippet(e.Content, snippetLength); text != "" {
			fmt.Fprintln(w, "    "+text)
		}
	}
}

// renderList prints entries one per line, without content.
func renderList(w io.Writer, entries []*core.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, noDataStyle.Render("The diary is empty."))
		return
	}
	for _, e := range entries {
		fmt.Fprintln(w, dateStyle.Render(e.Key())+"  "+displayTitle(e))
	}
}

// renderEntry prints a single entry in full.
func renderEntry(w io.Writer, e *core.Entry) {
	var content strings.Builder
	content.WriteString(entryTitleStyle.Render(displayTitle(e)))
	content.WriteString("\n\n")
	content.WriteString(e.Content)

	var meta []string
	if e.BackgroundColor != "" {
		meta = append(meta, "background "+e.BackgroundColor)
	}
	if len(e.Image) > 0 {
		position := "bottom"
		if e.ImagePositionTop {
			position = "top"
		}
		meta = append(meta, fmt.Sprintf("image %s (%s)", formatBytes(len(e.Image)), position))
	}
	if len(meta) > 0 {
		content.WriteString("\n\n")
		content.WriteString(metaStyle.Render(strings.Join(meta, " · ")))
	}

	fmt.Fprintln(w, dateStyle.Render(e.Key()))
	fmt.Fprintln(w, blockStyle.Render(content.String()))
}

// renderSettings prints the persisted search settings.
func renderSettings(w io.Writer, snap settings.Snapshot) {
	fmt.Fprintln(w, titleStyle.Render("Search settings"))
	rows := [][2]string{
		{"exact match", fmt.Sprintf("%v", snap.ExactMatch)},
		{"scope", fmt.Sprintf("%s (%s)", snap.Scope, snap.Scope.Description())},
		{"time range", fmt.Sprintf("%s (%s)", snap.TimeRange, snap.TimeRange.Description())},
		{"sort", fmt.Sprintf("%s (%s)", snap.SortMode, snap.SortMode.Description())},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-12s %s\n", r[0]+":", r[1])
	}
}

func describeQuery(q core.SearchQuery) string {
	mode := "keywords"
	if q.ExactMatch {
		mode = "exact"
	}
	rng := q.TimeRange.Description()
	if q.TimeRange == core.Custom && q.CustomRange != nil {
		rng = q.CustomRange.String()
	}
	return fmt.Sprintf("%s · %s · %s · %s", mode, q.Scope.Description(), rng, q.SortMode.Description())
}

func displayTitle(e *core.Entry) string {
	if t := strings.TrimSpace(e.Title); t != "" {
		return t
	}
	return "(untitled)"
}

// snippet flattens whitespace and cuts s to at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// formatBytes formats a size with K/M suffixes for readability
func formatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	} else if n < 1024*1024 {
		return fmt.Sprintf("%.1fK", float64(n)/1024)
	}
	return fmt.Sprintf("%.1fM", float64(n)/(1024*1024))
}
