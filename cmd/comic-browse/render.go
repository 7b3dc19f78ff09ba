package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/comic-catalog/pkg/catalog"
	"github.com/charmbracelet/lipgloss"
)

// styles renders views for one output.
type styles struct {
	heading  lipgloss.Style
	title    lipgloss.Style
	badge    lipgloss.Style
	muted    lipgloss.Style
	errTitle lipgloss.Style
	control  lipgloss.Style
	disabled lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		heading:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		title:    r.NewStyle().Bold(true),
		badge:    r.NewStyle().Foreground(lipgloss.Color("#04B575")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("#626262")),
		errTitle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87")),
		control:  r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
		disabled: r.NewStyle().Foreground(lipgloss.Color("#3C3C3C")).Strikethrough(true),
	}
}

// renderView writes the catalog section as plain lines.
func (s styles) renderView(w io.Writer, v catalog.View) {
	fmt.Fprintln(w, s.heading.Render(v.Heading))

	switch {
	case v.Error != nil:
		fmt.Fprintln(w, s.errTitle.Render(v.Error.Title))
		fmt.Fprintln(w, s.muted.Render(v.Error.Message))
		return
	case v.Loading:
		fmt.Fprintln(w, s.muted.Render("Loading..."))
		return
	case v.Empty:
		fmt.Fprintln(w, s.muted.Render(v.Message))
	}

	for i, card := range v.Cards {
		fmt.Fprintf(w, "%3d. %s  %s  %s  %s\n",
			i+1,
			s.title.Render(card.Title),
			s.badge.Render(card.Badge),
			s.muted.Render(card.Source),
			card.Popularity,
		)
	}

	fmt.Fprintln(w, s.renderControls(v))
}

func (s styles) renderControls(v catalog.View) string {
	controls := []string{
		s.renderControl("[p] "+v.Prev.Label, v.Prev.Enabled),
		s.muted.Render(fmt.Sprintf("Page %d", v.Page)),
		s.renderControl("[n] "+v.Next.Label, v.Next.Enabled),
	}
	return strings.Join(controls, "  ")
}

func (s styles) renderControl(label string, enabled bool) string {
	if enabled {
		return s.control.Render(label)
	}
	return s.disabled.Render(label)
}
