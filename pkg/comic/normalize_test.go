package comic

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		chapter string
		want    FilterReason
	}{
		{name: "comic", title: "Solo Leveling", chapter: "Chapter 200", want: FilterNone},
		{name: "apk lower", title: "komik apk terbaru", chapter: "Chapter 1", want: FilterAPKTitle},
		{name: "apk upper", title: "Comic APK Free", chapter: "Chapter 1", want: FilterAPKTitle},
		{name: "apk inside word", title: "Grapkin", chapter: "Chapter 1", want: FilterAPKTitle},
		{name: "download chapter", title: "Some Comic", chapter: "DOWNLOAD now", want: FilterDownloadChapter},
		{name: "download in title only", title: "Download Hero", chapter: "Chapter 3", want: FilterNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.title, tt.chapter); got != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.title, tt.chapter, got, tt.want)
			}
		})
	}
}

func TestChapterLabel(t *testing.T) {
	tests := map[string]string{
		"Chapter 123":    "123",
		"Chapter  45.5 ": "45.5",
		"Ch.\t7":         "7",
		"End":            "End",
		"":               NotAvailable,
		"   ":            NotAvailable,
	}

	for in, want := range tests {
		if got := ChapterLabel(in); got != want {
			t.Errorf("ChapterLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveImage(t *testing.T) {
	if got := ResolveImage("", CoverFallback); got != CoverFallback {
		t.Errorf("empty image = %q, want fallback", got)
	}
	if got := ResolveImage("https://cdn.example.com/wp-content/lazy.jpg", TrendingCover); got != TrendingCover {
		t.Errorf("lazy image = %q, want fallback", got)
	}
	if got := ResolveImage("https://cdn.example.com/cover.webp", CoverFallback); got != "https://cdn.example.com/cover.webp" {
		t.Errorf("valid image replaced: %q", got)
	}
}

func TestLinks(t *testing.T) {
	if got := LibraryLink("/detail-komik/solo-leveling/"); got != "solo-leveling/" {
		t.Errorf("LibraryLink = %q", got)
	}
	if got := TrendingLink("/manga/one-piece/"); got != "/one-piece/" {
		t.Errorf("TrendingLink manga = %q", got)
	}
	if got := TrendingLink("/plus/blue-lock/"); got != "/blue-lock/" {
		t.Errorf("TrendingLink plus = %q", got)
	}
}

func TestNormalizeLibrary(t *testing.T) {
	records := []LibraryRecord{
		{
			Title:         "One Piece!!",
			Thumbnail:     "https://img.example.com/op.jpg",
			LatestChapter: &ChapterRef{Title: "Chapter 1100"},
			DetailURL:     "/detail-komik/one-piece/",
			Type:          "Manga",
			Genre:         "Adventure",
		},
		{
			Title:         "Komik APK Gratis",
			LatestChapter: &ChapterRef{Title: "Chapter 1"},
		},
		{
			Title:         "Another Comic",
			LatestChapter: &ChapterRef{Title: "Download here"},
		},
		{
			Title:     "One Piece",
			DetailURL: "/detail-komik/one-piece-2/",
		},
	}

	got, stats := NormalizeLibrary(records)

	want := []Comic{
		{
			Title:         "One Piece!!",
			Image:         "https://img.example.com/op.jpg",
			Chapter:       "1100",
			Source:        "Manga",
			Genre:         "Adventure",
			ProcessedLink: "one-piece/",
			Slug:          "one-piece",
			Key:           "one-piece-0",
			Origin:        OriginLibrary,
		},
		{
			Title:         "One Piece",
			Image:         CoverFallback,
			Chapter:       NotAvailable,
			Source:        NotAvailable,
			Genre:         NotAvailable,
			ProcessedLink: "one-piece-2/",
			Slug:          "one-piece",
			Key:           "one-piece-1",
			Origin:        OriginLibrary,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeLibrary mismatch (-want +got):\n%s", diff)
	}

	if stats.Input != 4 || stats.Kept != 2 {
		t.Errorf("stats = %+v, want input 4 kept 2", stats)
	}
	if stats.Filtered[FilterAPKTitle] != 1 || stats.Filtered[FilterDownloadChapter] != 1 {
		t.Errorf("filtered = %v", stats.Filtered)
	}
}

func TestNormalizeTrending(t *testing.T) {
	records := []TrendingRecord{
		{
			Title:         "Blue Lock",
			Image:         "https://img.example.com/lazy.jpg",
			Chapter:       "Chapter 290",
			Link:          "/manga/blue-lock/",
			Timeframe:     "daily",
			TrendingScore: 98.5,
		},
		{
			Title:   "Kagurabachi",
			Image:   "https://img.example.com/kb.jpg",
			Chapter: "Chapter 60",
			Link:    "/plus/kagurabachi/",
		},
	}

	got, stats := NormalizeTrending(records)

	want := []Comic{
		{
			Title:         "Blue Lock",
			Image:         TrendingCover,
			Chapter:       "290",
			Source:        "daily",
			TrendingScore: 98.5,
			ProcessedLink: "/blue-lock/",
			Slug:          "blue-lock",
			Key:           "blue-lock-0",
			Origin:        OriginTrending,
		},
		{
			Title:         "Kagurabachi",
			Image:         "https://img.example.com/kb.jpg",
			Chapter:       "60",
			Source:        NoTimeframe,
			ProcessedLink: "/kagurabachi/",
			Slug:          "kagurabachi",
			Key:           "kagurabachi-1",
			Origin:        OriginTrending,
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeTrending mismatch (-want +got):\n%s", diff)
	}
	if stats.Kept != 2 {
		t.Errorf("kept = %d, want 2", stats.Kept)
	}
}

func TestNormalizeTrending_PromotionalOnly(t *testing.T) {
	records := []TrendingRecord{
		{Title: "Comic APK Free Download", Chapter: "Chapter 1"},
		{Title: "Mod Reader", Chapter: "Free Download"},
	}

	got, stats := NormalizeTrending(records)
	if len(got) != 0 {
		t.Fatalf("expected no comics, got %d: %+v", len(got), got)
	}
	if stats.Input != 2 || stats.Kept != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestScore_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Score
	}{
		{name: "number", body: `{"trending_score": 42.5}`, want: 42.5},
		{name: "string", body: `{"trending_score": "17"}`, want: 17},
		{name: "bad string", body: `{"trending_score": "hot"}`, want: 0},
		{name: "null", body: `{"trending_score": null}`, want: 0},
		{name: "missing", body: `{}`, want: 0},
		{name: "bool", body: `{"trending_score": true}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec TrendingRecord
			if err := json.Unmarshal([]byte(tt.body), &rec); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if rec.TrendingScore != tt.want {
				t.Errorf("score = %v, want %v", rec.TrendingScore, tt.want)
			}
		})
	}
}

func TestPopularity(t *testing.T) {
	lib := Comic{Origin: OriginLibrary, Genre: "Action"}
	if got := lib.Popularity(); got != "★ Action" {
		t.Errorf("library popularity = %q", got)
	}

	tr := Comic{Origin: OriginTrending, TrendingScore: 12}
	if got := tr.Popularity(); got != "🔥 12" {
		t.Errorf("trending popularity = %q", got)
	}
}

func TestRoute(t *testing.T) {
	c := Comic{Title: "One Piece", Slug: "one-piece", ProcessedLink: "one-piece/"}
	r := c.Route()

	if r.Path != "/detail-comic/one-piece" {
		t.Errorf("path = %q", r.Path)
	}
	if r.State.ProcessedLink != "one-piece/" || r.State.Comic.Title != "One Piece" {
		t.Errorf("state = %+v", r.State)
	}
}
