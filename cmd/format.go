package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/search"
	"github.com/tbourn/go-console-navigator/internal/services"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("32"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// renderSpans joins spans, emphasizing the matched ones.
func renderSpans(spans []search.Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.IsMatch {
			b.WriteString(matchStyle.Render(s.Text))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// renderHits prints one line per hit followed by its URL. A separator closes
// the page group.
func renderHits(w io.Writer, query string, hits []services.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, noDataStyle.Render(fmt.Sprintf("No results for %q", query)))
		return
	}
	for _, h := range hits {
		switch h.Entity.Kind {
		case domain.KindPage:
			fmt.Fprintf(w, "%s %s\n", typeStyle.Render("page"), renderSpans(h.Spans))
		case domain.KindResource:
			r := h.Entity.Resource
			fmt.Fprintf(w, "%s %s %s\n",
				typeStyle.Render(r.Type),
				renderSpans(h.Spans),
				metaStyle.Render(strings.TrimSpace(r.Profile+" "+r.Region)),
			)
		}
		fmt.Fprintf(w, "  %s\n", metaStyle.Render(h.URL))
		if h.Entity.Page != nil && h.Entity.Page.IsGroupEnd {
			fmt.Fprintln(w, separatorStyle.Render(strings.Repeat("─", 40)))
		}
	}
}

// statusStyle colors a load status.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case domain.LoadStatusReady:
		return typeStyle
	case domain.LoadStatusFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	}
	return metaStyle
}
