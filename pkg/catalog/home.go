package catalog

import (
	"context"
	"sync"

	"github.com/Sternrassler/comic-catalog/pkg/comic"
)

// HomeView is the home page: the trending list on the first page only, followed
// by the catalog section.
type HomeView struct {
	Page     int      `json:"page"`
	Trending *Section `json:"trending,omitempty"`
	Catalog  View     `json:"catalog"`
}

// TrendingLoader loads the trending list. *TrendingFetcher implements it.
type TrendingLoader interface {
	Load(ctx context.Context) ([]comic.Comic, error)
}

// Home composes the trending and catalog sections. The sections share no state
// and each reports its own failure.
type Home struct {
	library  PageLoader
	trending TrendingLoader
}

// NewHome creates the home page composer.
func NewHome(library PageLoader, trending TrendingLoader) *Home {
	return &Home{library: library, trending: trending}
}

// Load builds the home view for a catalog page. Section failures end up in the
// view, never in the returned error.
func (h *Home) Load(ctx context.Context, page int) HomeView {
	page = max(page, 1)

	var (
		catalogPage *Page
		catalogErr  error
		trending    []comic.Comic
		trendingErr error
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		catalogPage, catalogErr = h.library.Load(ctx, page)
	}()
	if page == 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trending, trendingErr = h.trending.Load(ctx)
		}()
	}
	wg.Wait()

	view := HomeView{
		Page:    page,
		Catalog: BuildView(page, catalogPage, catalogErr),
	}
	if page == 1 {
		section := NewTrendingSection(trending, trendingErr)
		view.Trending = &section
	}
	return view
}
