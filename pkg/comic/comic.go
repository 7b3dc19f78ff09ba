// Package comic defines the raw records returned by the upstream comic API and the
// normalized, display-ready records derived from them.
package comic

// Origin identifies which listing a normalized record came from.
type Origin string

const (
	// OriginLibrary marks records from the paginated library endpoint.
	OriginLibrary Origin = "library"

	// OriginTrending marks records from the trending endpoint.
	OriginTrending Origin = "trending"
)

// Sentinel values used when the upstream record leaves a field empty.
const (
	NotAvailable   = "N/A"
	NoTimeframe    = "-"
	CoverFallback  = "https://via.placeholder.com/300x450?text=Comic+Cover"
	TrendingCover  = "https://via.placeholder.com/300x450?text=Trending+Cover"
	lazyImageToken = "lazy.jpg"
)

// ChapterRef is the latest-chapter descriptor attached to library records.
type ChapterRef struct {
	Title string `json:"title"`
}

// LibraryRecord is a raw record from GET /comic/pustaka/{page}.
type LibraryRecord struct {
	Title         string      `json:"title"`
	Thumbnail     string      `json:"thumbnail"`
	LatestChapter *ChapterRef `json:"latestChapter"`
	DetailURL     string      `json:"detailUrl"`
	Type          string      `json:"type"`
	Genre         string      `json:"genre"`
}

// LibraryResponse is the envelope of the library endpoint.
type LibraryResponse struct {
	Results []LibraryRecord `json:"results"`
}

// TrendingRecord is a raw record from GET /comic/trending.
type TrendingRecord struct {
	Title         string `json:"title"`
	Image         string `json:"image"`
	Chapter       string `json:"chapter"`
	Link          string `json:"link"`
	Timeframe     string `json:"timeframe"`
	TrendingScore Score  `json:"trending_score"`
}

// TrendingResponse is the envelope of the trending endpoint.
type TrendingResponse struct {
	Trending []TrendingRecord `json:"trending"`
}

// Comic is a normalized record ready for rendering and for the detail handoff.
//
// Genre is only set for library records and TrendingScore only for trending
// records; use Popularity for the display label.
type Comic struct {
	Title         string  `json:"title"`
	Image         string  `json:"image"`
	Chapter       string  `json:"chapter"`
	Source        string  `json:"source"`
	Genre         string  `json:"genre,omitempty"`
	TrendingScore float64 `json:"trendingScore,omitempty"`
	ProcessedLink string  `json:"processedLink"`
	Slug          string  `json:"slug"`
	Key           string  `json:"key"`
	Origin        Origin  `json:"origin"`
}

// Popularity returns the popularity indicator shown on a card.
func (c Comic) Popularity() string {
	if c.Origin == OriginTrending {
		return "🔥 " + formatScore(c.TrendingScore)
	}
	return "★ " + c.Genre
}
