package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/Sternrassler/comic-catalog/pkg/comic"
	"github.com/Sternrassler/comic-catalog/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var staleResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "comic_pager_stale_results_total",
	Help: "Catalog page results discarded because a newer page was requested",
})

var (
	// ErrNavigationDisabled is returned by Next and Prev when the control is disabled.
	ErrNavigationDisabled = errors.New("navigation disabled")

	// ErrSuperseded is returned by a fetch whose result was discarded because a
	// newer page change happened while it was in flight.
	ErrSuperseded = errors.New("page load superseded")
)

// PageLoader loads a catalog page. *LibraryFetcher implements it.
type PageLoader interface {
	Load(ctx context.Context, page int) (*Page, error)
}

// State is a snapshot of the catalog navigator.
type State struct {
	Page     int
	Loading  bool
	Err      error
	HasNext  bool
	NotFound bool
	Comics   []comic.Comic
}

// CanNext reports whether forward navigation is enabled. A failed load hides
// the controls, so only Goto leaves an error state.
func (s State) CanNext() bool {
	return !s.Loading && s.Err == nil && s.HasNext
}

// CanPrev reports whether backward navigation is enabled.
func (s State) CanPrev() bool {
	return !s.Loading && s.Err == nil && s.Page > 1
}

// PageState builds the state a finished load of page leaves behind, for callers
// that do not keep a Pager between requests.
func PageState(number int, page *Page, err error) State {
	s := State{Page: max(number, 1), Err: err}
	if err != nil || page == nil {
		return s
	}
	s.HasNext = page.HasNext
	s.NotFound = page.NotFound
	s.Comics = page.Comics
	return s
}

// Pager is the stateful catalog navigator. Every page change runs exactly one
// fetch cycle; nothing is cached, so returning to a page fetches it again.
//
// Each cycle carries a generation number. Starting a cycle cancels the one in
// flight, and a result whose generation is no longer current is dropped.
type Pager struct {
	loader PageLoader
	logger zerolog.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
}

// NewPager creates a navigator positioned on page 1. Call Load to fetch it.
func NewPager(loader PageLoader) *Pager {
	return &Pager{
		loader: loader,
		logger: logging.NewLogger(logging.ComponentPager),
		state: State{
			Page:    1,
			HasNext: true,
		},
	}
}

// State returns a snapshot of the navigator.
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.state
	s.Comics = append([]comic.Comic(nil), p.state.Comics...)
	return s
}

// Load fetches the current page.
func (p *Pager) Load(ctx context.Context) error {
	p.mu.Lock()
	gen, fctx, page := p.beginLocked(ctx)
	p.mu.Unlock()

	return p.run(fctx, gen, page)
}

// Next advances one page. It is disabled while loading and after the end of the
// catalog has been detected.
func (p *Pager) Next(ctx context.Context) error {
	p.mu.Lock()
	if !p.state.CanNext() {
		p.mu.Unlock()
		return ErrNavigationDisabled
	}
	p.state.Page++
	gen, fctx, page := p.beginLocked(ctx)
	p.mu.Unlock()

	return p.run(fctx, gen, page)
}

// Prev goes back one page. It is disabled on page 1 and while loading. Going
// back always lands on a page that loaded before, so forward navigation is
// re-enabled.
func (p *Pager) Prev(ctx context.Context) error {
	p.mu.Lock()
	if !p.state.CanPrev() {
		p.mu.Unlock()
		return ErrNavigationDisabled
	}
	p.state.Page = max(p.state.Page-1, 1)
	p.state.HasNext = true
	gen, fctx, page := p.beginLocked(ctx)
	p.mu.Unlock()

	return p.run(fctx, gen, page)
}

// Goto jumps to page, cancelling any load in flight. It is the page setter
// handed to the page owner and is never disabled.
func (p *Pager) Goto(ctx context.Context, page int) error {
	p.mu.Lock()
	p.state.Page = max(page, 1)
	gen, fctx, target := p.beginLocked(ctx)
	p.mu.Unlock()

	return p.run(fctx, gen, target)
}

func (p *Pager) beginLocked(ctx context.Context) (uint64, context.Context, int) {
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++

	fctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state.Loading = true
	p.state.Err = nil

	return p.generation, fctx, p.state.Page
}

func (p *Pager) run(ctx context.Context, gen uint64, page int) error {
	result, err := p.loader.Load(ctx, page)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		staleResultsTotal.Inc()
		p.logger.Debug().
			Int("page", page).
			Uint64("generation", gen).
			Uint64("current", p.generation).
			Msg("Discarding stale page result")
		return ErrSuperseded
	}

	p.cancel()
	p.cancel = nil
	p.state.Loading = false
	p.state.NotFound = false

	if err != nil {
		p.state.Err = err
		return err
	}

	if result.NotFound {
		p.state.NotFound = true
		p.state.HasNext = false
		if page > 1 {
			p.state.Comics = nil
		}
		return nil
	}

	p.state.Comics = result.Comics
	p.state.HasNext = result.HasNext
	return nil
}
