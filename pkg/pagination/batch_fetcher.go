package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/comic-catalog/pkg/comic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "comic_batch_duration_seconds",
		Help:    "Duration of a catalog page batch, all upstream requests included",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	batchPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comic_batch_pages_total",
		Help: "Upstream pages fetched as part of catalog batches by outcome",
	}, []string{"outcome"}) // "data", "empty", "error"
)

// PagesPerBatch is the number of upstream pages behind every catalog page after the first.
const PagesPerBatch = 2

// Config holds batch fetcher configuration
type Config struct {
	// Timeout per upstream page fetch; 0 leaves it to the caller's context.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 15 * time.Second,
	}
}

// PageFetcher fetches a single upstream library page.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) ([]comic.LibraryRecord, error)
}

// Batch is the merged result of one catalog page turn.
type Batch struct {
	// Page is the catalog page number.
	Page int

	// Upstream lists the upstream pages requested, in request order.
	Upstream []int

	// Records holds every returned record, concatenated in request order.
	Records []comic.LibraryRecord

	// AnyData is false when no upstream page returned a record.
	AnyData bool
}

// PlanPages returns the upstream pages backing a catalog page. Pages below 1
// are treated as 1.
func PlanPages(page int) []int {
	if page <= 1 {
		return []int{1}
	}

	start := (page-2)*PagesPerBatch + 2
	pages := make([]int, 0, PagesPerBatch)
	for i := 0; i < PagesPerBatch; i++ {
		pages = append(pages, start+i)
	}
	return pages
}

// BatchFetcher fetches the upstream pages of a catalog page in parallel.
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.Timeout < 0 {
		config.Timeout = 0
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchBatch fetches every upstream page behind the catalog page. The returned
// error wraps the first failing request's error unchanged, so callers can still
// match upstream 404s with errors.Is.
func (bf *BatchFetcher) FetchBatch(ctx context.Context, page int) (*Batch, error) {
	start := time.Now()
	defer func() {
		batchDuration.Observe(time.Since(start).Seconds())
	}()

	upstream := PlanPages(page)
	results := make([][]comic.LibraryRecord, len(upstream))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range upstream {
		g.Go(func() error {
			pageCtx := gctx
			if bf.config.Timeout > 0 {
				var cancel context.CancelFunc
				pageCtx, cancel = context.WithTimeout(gctx, bf.config.Timeout)
				defer cancel()
			}

			records, err := bf.fetcher.FetchPage(pageCtx, p)
			if err != nil {
				batchPagesTotal.WithLabelValues("error").Inc()
				log.Debug().
					Err(err).
					Int("page", page).
					Int("upstream_page", p).
					Msg("Upstream page fetch failed")
				return fmt.Errorf("fetch upstream page %d: %w", p, err)
			}

			outcome := "data"
			if len(records) == 0 {
				outcome = "empty"
			}
			batchPagesTotal.WithLabelValues(outcome).Inc()

			results[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &Batch{
		Page:     max(page, 1),
		Upstream: upstream,
	}
	for _, records := range results {
		if len(records) > 0 {
			batch.AnyData = true
		}
		batch.Records = append(batch.Records, records...)
	}

	log.Debug().
		Int("page", batch.Page).
		Ints("upstream", upstream).
		Int("records", len(batch.Records)).
		Bool("any_data", batch.AnyData).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return batch, nil
}
