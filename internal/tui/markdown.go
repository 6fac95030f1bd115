package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// helpRenderer renders the markdown help overlay, rebuilding the glamour
// renderer only when the wrap width changes.
type helpRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func (r *helpRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := width
	if wrapWidth < 30 {
		wrapWidth = 30
	}

	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
