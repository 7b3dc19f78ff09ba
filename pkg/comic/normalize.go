package comic

import (
	"fmt"
	"strings"
)

// FilterReason names why a raw record was excluded from normalized output.
type FilterReason string

const (
	// FilterNone means the record is kept.
	FilterNone FilterReason = ""

	// FilterAPKTitle excludes app download listings posing as comics.
	FilterAPKTitle FilterReason = "apk_title"

	// FilterDownloadChapter excludes records whose chapter label advertises a download.
	FilterDownloadChapter FilterReason = "download_chapter"
)

// Classify reports whether a record with the given title and chapter label is a
// promotional entry rather than a comic. Matching is case-insensitive.
func Classify(title, chapter string) FilterReason {
	if strings.Contains(strings.ToLower(title), "apk") {
		return FilterAPKTitle
	}
	if strings.Contains(strings.ToLower(chapter), "download") {
		return FilterDownloadChapter
	}
	return FilterNone
}

// IsPromotional is Classify(title, chapter) != FilterNone.
func IsPromotional(title, chapter string) bool {
	return Classify(title, chapter) != FilterNone
}

// ChapterLabel extracts the chapter number from a descriptor such as "Chapter 123",
// taking the last whitespace-delimited token. Empty descriptors yield NotAvailable.
func ChapterLabel(descriptor string) string {
	fields := strings.Fields(descriptor)
	if len(fields) == 0 {
		return NotAvailable
	}
	return fields[len(fields)-1]
}

// ResolveImage returns url unless it is empty or the upstream lazy-load
// placeholder, in which case fallback is returned.
func ResolveImage(url, fallback string) string {
	url = strings.TrimSpace(url)
	if url == "" || strings.Contains(url, lazyImageToken) {
		return fallback
	}
	return url
}

// LibraryLink rewrites a library detail URL into the path used for detail fetches.
func LibraryLink(detailURL string) string {
	return strings.Replace(detailURL, "/detail-komik/", "", 1)
}

// TrendingLink rewrites a trending link into the path used for detail fetches.
func TrendingLink(link string) string {
	link = strings.Replace(link, "/manga/", "/", 1)
	return strings.Replace(link, "/plus/", "/", 1)
}

// Stats counts what a normalization pass dropped.
type Stats struct {
	Input    int
	Kept     int
	Filtered map[FilterReason]int
}

func (s *Stats) drop(reason FilterReason) {
	if s.Filtered == nil {
		s.Filtered = make(map[FilterReason]int)
	}
	s.Filtered[reason]++
}

// NormalizeLibrary filters and reshapes library records in input order.
func NormalizeLibrary(records []LibraryRecord) ([]Comic, Stats) {
	stats := Stats{Input: len(records)}
	out := make([]Comic, 0, len(records))

	for _, r := range records {
		descriptor := ""
		if r.LatestChapter != nil {
			descriptor = r.LatestChapter.Title
		}
		if reason := Classify(r.Title, descriptor); reason != FilterNone {
			stats.drop(reason)
			continue
		}

		slug := Slugify(r.Title)
		out = append(out, Comic{
			Title:         r.Title,
			Image:         ResolveImage(r.Thumbnail, CoverFallback),
			Chapter:       ChapterLabel(descriptor),
			Source:        orDefault(r.Type, NotAvailable),
			Genre:         orDefault(r.Genre, NotAvailable),
			ProcessedLink: LibraryLink(r.DetailURL),
			Slug:          slug,
			Key:           fmt.Sprintf("%s-%d", slug, len(out)),
			Origin:        OriginLibrary,
		})
	}

	stats.Kept = len(out)
	return out, stats
}

// NormalizeTrending filters and reshapes trending records in input order.
func NormalizeTrending(records []TrendingRecord) ([]Comic, Stats) {
	stats := Stats{Input: len(records)}
	out := make([]Comic, 0, len(records))

	for _, r := range records {
		if reason := Classify(r.Title, r.Chapter); reason != FilterNone {
			stats.drop(reason)
			continue
		}

		slug := Slugify(r.Title)
		out = append(out, Comic{
			Title:         r.Title,
			Image:         ResolveImage(r.Image, TrendingCover),
			Chapter:       ChapterLabel(r.Chapter),
			Source:        orDefault(r.Timeframe, NoTimeframe),
			TrendingScore: float64(r.TrendingScore),
			ProcessedLink: TrendingLink(r.Link),
			Slug:          slug,
			Key:           fmt.Sprintf("%s-%d", slug, len(out)),
			Origin:        OriginTrending,
		})
	}

	stats.Kept = len(out)
	return out, stats
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
