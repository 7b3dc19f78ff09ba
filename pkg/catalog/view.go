package catalog

import (
	"fmt"

	"github.com/Sternrassler/comic-catalog/pkg/comic"
)

// Display strings.
const (
	HeadingLatest      = "Latest Comics"
	HeadingTrending    = "Trending Today"
	MessageNoMore      = "No more comics found."
	ErrorTitleLibrary  = "Failed to load the comic library"
	ErrorTitleTrending = "Failed to load trending comics"
	labelPrev          = "Previous"
	labelNext          = "Next"
	labelLoading       = "Loading..."
)

// Card is the display model of one comic.
type Card struct {
	Key        string            `json:"key"`
	Title      string            `json:"title"`
	Image      string            `json:"image"`
	Badge      string            `json:"badge"`
	Source     string            `json:"source"`
	Popularity string            `json:"popularity"`
	Detail     comic.DetailRoute `json:"detail"`
}

// NewCard builds the card for c.
func NewCard(c comic.Comic) Card {
	return Card{
		Key:        c.Key,
		Title:      c.Title,
		Image:      c.Image,
		Badge:      "Ch. " + c.Chapter,
		Source:     c.Source,
		Popularity: c.Popularity(),
		Detail:     c.Route(),
	}
}

// Cards builds cards for comics, preserving order.
func Cards(comics []comic.Comic) []Card {
	cards := make([]Card, 0, len(comics))
	for _, c := range comics {
		cards = append(cards, NewCard(c))
	}
	return cards
}

// ErrorView is the static error block shown instead of a grid.
type ErrorView struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NavControl is one navigation button.
type NavControl struct {
	Enabled bool   `json:"enabled"`
	Page    int    `json:"page,omitempty"`
	Label   string `json:"label"`
}

// View is the display model of the catalog section.
type View struct {
	Page    int        `json:"page"`
	Heading string     `json:"heading"`
	Loading bool       `json:"loading"`
	Cards   []Card     `json:"cards"`
	Empty   bool       `json:"empty"`
	Message string     `json:"message,omitempty"`
	Error   *ErrorView `json:"error,omitempty"`
	Prev    NavControl `json:"prev"`
	Next    NavControl `json:"next"`
}

// Heading returns the catalog heading for a page.
func Heading(page int) string {
	if page <= 1 {
		return HeadingLatest
	}
	return fmt.Sprintf("Comic Library (Page %d)", page)
}

// NewView renders a navigator state. An error suppresses the grid and the
// controls; a finished load without comics shows the empty message with forward
// navigation forced off.
func NewView(s State) View {
	v := View{
		Page:    s.Page,
		Heading: Heading(s.Page),
		Loading: s.Loading,
		Cards:   []Card{},
		Prev:    NavControl{Label: labelPrev},
		Next:    NavControl{Label: labelNext},
	}

	if s.Err != nil {
		v.Error = &ErrorView{Title: ErrorTitleLibrary, Message: s.Err.Error()}
		return v
	}

	if s.Loading {
		v.Prev.Label = labelLoading
		v.Next.Label = labelLoading
		return v
	}

	if s.CanPrev() {
		v.Prev.Enabled = true
		v.Prev.Page = s.Page - 1
	}

	if len(s.Comics) == 0 {
		v.Empty = true
		v.Message = MessageNoMore
		return v
	}

	v.Cards = Cards(s.Comics)
	if s.CanNext() {
		v.Next.Enabled = true
		v.Next.Page = s.Page + 1
	}
	return v
}

// BuildView renders the outcome of a single page load.
func BuildView(number int, page *Page, err error) View {
	return NewView(PageState(number, page, err))
}

// Section is the display model of the trending list.
type Section struct {
	Heading string     `json:"heading"`
	Cards   []Card     `json:"cards"`
	Error   *ErrorView `json:"error,omitempty"`
}

// NewTrendingSection renders a trending load.
func NewTrendingSection(comics []comic.Comic, err error) Section {
	s := Section{Heading: HeadingTrending, Cards: []Card{}}
	if err != nil {
		s.Error = &ErrorView{Title: ErrorTitleTrending, Message: err.Error()}
		return s
	}
	s.Cards = Cards(comics)
	return s
}
