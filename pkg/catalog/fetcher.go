// Package catalog implements the comic listings shown to readers: the paginated
// library, the trending list, page navigation and the home page composition.
package catalog

import (
	"context"
	"fmt"

	"github.com/Sternrassler/comic-catalog/pkg/client"
	"github.com/Sternrassler/comic-catalog/pkg/comic"
	"github.com/Sternrassler/comic-catalog/pkg/logging"
	"github.com/Sternrassler/comic-catalog/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	filteredRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comic_filtered_records_total",
		Help: "Raw records dropped by normalization by origin and reason",
	}, []string{"origin", "reason"})

	catalogLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comic_catalog_loads_total",
		Help: "Listing loads by origin and outcome",
	}, []string{"origin", "outcome"}) // "ok", "empty", "not_found", "error"
)

// BatchSource returns the merged upstream batch behind a catalog page.
type BatchSource interface {
	FetchBatch(ctx context.Context, page int) (*pagination.Batch, error)
}

// TrendingSource returns the raw trending list.
type TrendingSource interface {
	FetchTrending(ctx context.Context) ([]comic.TrendingRecord, error)
}

// Page is one loaded catalog page.
type Page struct {
	Number   int           `json:"page"`
	Upstream []int         `json:"upstream"`
	Comics   []comic.Comic `json:"comics"`

	// HasNext is false once a batch came back without any raw record.
	HasNext bool `json:"hasNext"`

	// NotFound is set when an upstream page answered 404. Such a page has no
	// comics and no successor, and is not an error.
	NotFound bool `json:"notFound"`
}

// LibraryFetcher loads catalog pages from the library endpoint.
type LibraryFetcher struct {
	batches BatchSource
	logger  zerolog.Logger
}

// NewLibraryFetcher creates a library fetcher over a batch source.
func NewLibraryFetcher(batches BatchSource) *LibraryFetcher {
	return &LibraryFetcher{
		batches: batches,
		logger:  logging.NewLogger(logging.ComponentLibrary),
	}
}

// Load fetches, merges, filters and normalizes a catalog page. An upstream 404
// on any request of the batch yields a NotFound page instead of an error.
func (f *LibraryFetcher) Load(ctx context.Context, page int) (*Page, error) {
	page = max(page, 1)
	logger := logging.ForPage(f.logger, page, pagination.PlanPages(page))

	batch, err := f.batches.FetchBatch(ctx, page)
	if err != nil {
		if client.IsNotFound(err) {
			catalogLoadsTotal.WithLabelValues(string(comic.OriginLibrary), "not_found").Inc()
			logger.Info().Msg("Upstream page not found - end of catalog")
			return &Page{
				Number:   page,
				Upstream: pagination.PlanPages(page),
				NotFound: true,
			}, nil
		}

		catalogLoadsTotal.WithLabelValues(string(comic.OriginLibrary), "error").Inc()
		logger.Error().Err(err).Msg("Catalog page load failed")
		return nil, fmt.Errorf("load catalog page %d: %w", page, err)
	}

	comics, stats := comic.NormalizeLibrary(batch.Records)
	recordFiltered(comic.OriginLibrary, stats)

	outcome := "ok"
	if len(comics) == 0 {
		outcome = "empty"
	}
	catalogLoadsTotal.WithLabelValues(string(comic.OriginLibrary), outcome).Inc()

	logger.Debug().
		Int("raw", stats.Input).
		Int("kept", stats.Kept).
		Bool("has_next", batch.AnyData).
		Msg("Catalog page loaded")

	return &Page{
		Number:   batch.Page,
		Upstream: batch.Upstream,
		Comics:   comics,
		HasNext:  batch.AnyData,
	}, nil
}

// TrendingFetcher loads the trending list. It issues a single request and
// never paginates.
type TrendingFetcher struct {
	source TrendingSource
	logger zerolog.Logger
}

// NewTrendingFetcher creates a trending fetcher.
func NewTrendingFetcher(source TrendingSource) *TrendingFetcher {
	return &TrendingFetcher{
		source: source,
		logger: logging.NewLogger(logging.ComponentTrending),
	}
}

// Load fetches and normalizes the trending list.
func (f *TrendingFetcher) Load(ctx context.Context) ([]comic.Comic, error) {
	records, err := f.source.FetchTrending(ctx)
	if err != nil {
		catalogLoadsTotal.WithLabelValues(string(comic.OriginTrending), "error").Inc()
		f.logger.Error().Err(err).Msg("Trending load failed")
		return nil, fmt.Errorf("load trending: %w", err)
	}

	comics, stats := comic.NormalizeTrending(records)
	recordFiltered(comic.OriginTrending, stats)

	outcome := "ok"
	if len(comics) == 0 {
		outcome = "empty"
	}
	catalogLoadsTotal.WithLabelValues(string(comic.OriginTrending), outcome).Inc()

	return comics, nil
}

func recordFiltered(origin comic.Origin, stats comic.Stats) {
	for reason, n := range stats.Filtered {
		filteredRecordsTotal.WithLabelValues(string(origin), string(reason)).Add(float64(n))
	}
}
