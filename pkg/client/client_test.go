package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/comic-catalog/internal/testutil"
	"github.com/Sternrassler/comic-catalog/pkg/comic"
	"github.com/Sternrassler/comic-catalog/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := DefaultConfig("TestApp/1.0.0 (test@example.com)")
	cfg.BaseURL = baseURL
	cfg.RateLimit = 0

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid config",
			config: Config{
				BaseURL:   "https://comics.example.com",
				UserAgent: "TestApp/1.0.0",
			},
			expectError: false,
		},
		{
			name: "empty user agent",
			config: Config{
				BaseURL: "https://comics.example.com",
			},
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name: "relative base url",
			config: Config{
				BaseURL:   "/comic",
				UserAgent: "TestApp/1.0.0",
			},
			expectError: true,
			errorMsg:    `invalid base url "/comic"`,
		},
		{
			name: "negative rate",
			config: Config{
				BaseURL:   "https://comics.example.com",
				UserAgent: "TestApp/1.0.0",
				RateLimit: -1,
			},
			expectError: true,
			errorMsg:    "rate_limit must be >= 0 (got -1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("TestApp/1.0.0")

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.UserAgent != "TestApp/1.0.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.Timeout <= 0 {
		t.Errorf("Timeout = %v, should be > 0", cfg.Timeout)
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst <= 0 {
		t.Errorf("RateLimit = %v burst %d, should be > 0", cfg.RateLimit, cfg.RateBurst)
	}
}

func TestFetchLibraryPage(t *testing.T) {
	mock := testutil.NewMockComicAPI()
	defer mock.Close()

	records := testutil.LibraryRecords("Solo Leveling", 3)
	mock.SetLibraryPage(2, records)

	c := newTestClient(t, mock.URL())
	got, err := c.FetchLibraryPage(context.Background(), 2)
	if err != nil {
		t.Fatalf("FetchLibraryPage() error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	if got[0].Title != "Solo Leveling 1" || got[0].LatestChapter == nil || got[0].LatestChapter.Title != "Chapter 10" {
		t.Errorf("first record = %+v", got[0])
	}

	header := mock.LastRequestHeader()
	if header.Get("User-Agent") != "TestApp/1.0.0 (test@example.com)" {
		t.Errorf("User-Agent = %q", header.Get("User-Agent"))
	}
	if header.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", header.Get("Accept"))
	}
	if pages := mock.LibraryPagesRequested(); len(pages) != 1 || pages[0] != 2 {
		t.Errorf("pages requested = %v, want [2]", pages)
	}
}

func TestFetchLibraryPage_MissingResults(t *testing.T) {
	mock := testutil.NewMockComicAPI()
	defer mock.Close()

	mock.SetLibraryPageResponse(1, testutil.NewJSONResponse(map[string]string{"status": "ok"}))

	c := newTestClient(t, mock.URL())
	got, err := c.FetchLibraryPage(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchLibraryPage() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want 0", len(got))
	}
}

func TestFetchLibraryPage_InvalidPage(t *testing.T) {
	c := newTestClient(t, "https://comics.example.com")
	if _, err := c.FetchLibraryPage(context.Background(), 0); err == nil {
		t.Error("expected error for page 0")
	}
}

func TestFetchLibraryPage_Errors(t *testing.T) {
	tests := []struct {
		name      string
		response  testutil.MockResponse
		wantClass ErrorClass
		wantNotFd bool
	}{
		{
			name:      "not found",
			response:  testutil.NewNotFoundResponse(),
			wantClass: ErrorClassNotFound,
			wantNotFd: true,
		},
		{
			name:      "server error",
			response:  testutil.NewServerErrorResponse(),
			wantClass: ErrorClassServer,
		},
		{
			name: "forbidden",
			response: testutil.MockResponse{
				StatusCode: http.StatusForbidden,
			},
			wantClass: ErrorClassClient,
		},
		{
			name:      "malformed body",
			response:  testutil.NewMalformedResponse(),
			wantClass: ErrorClassDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockComicAPI()
			defer mock.Close()
			mock.SetLibraryPageResponse(3, tt.response)

			c := newTestClient(t, mock.URL())
			_, err := c.FetchLibraryPage(context.Background(), 3)
			if err == nil {
				t.Fatal("expected error")
			}

			if got := ClassOf(err); got != tt.wantClass {
				t.Errorf("ClassOf() = %q, want %q", got, tt.wantClass)
			}
			if got := IsNotFound(err); got != tt.wantNotFd {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.wantNotFd)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %T is not *APIError", err)
			}
			if apiErr.Endpoint != EndpointLibrary {
				t.Errorf("Endpoint = %q, want %q", apiErr.Endpoint, EndpointLibrary)
			}
		})
	}
}

func TestFetchTrending(t *testing.T) {
	mock := testutil.NewMockComicAPI()
	defer mock.Close()

	mock.SetResponse("/comic/trending", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body: `{"trending": [
			{"title": "Blue Lock", "image": "https://img.example.com/bl.jpg", "chapter": "Chapter 290",
			 "link": "/manga/blue-lock/", "timeframe": "daily", "trending_score": "97"},
			{"title": "Kagurabachi", "chapter": "Chapter 60", "link": "/plus/kagurabachi/", "trending_score": 88.5}
		]}`,
	})

	c := newTestClient(t, mock.URL())
	got, err := c.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("FetchTrending() error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].TrendingScore != 97 || got[1].TrendingScore != 88.5 {
		t.Errorf("scores = %v, %v", got[0].TrendingScore, got[1].TrendingScore)
	}
}

func TestDo_RateLimitCooldown(t *testing.T) {
	mock := testutil.NewMockComicAPI()
	defer mock.Close()

	mock.SetLibraryPageResponse(1, testutil.NewRateLimitResponse(60))
	mock.SetLibraryPage(2, testutil.LibraryRecords("Comic", 1))

	c := newTestClient(t, mock.URL())
	ctx := context.Background()

	_, err := c.FetchLibraryPage(ctx, 1)
	if ClassOf(err) != ErrorClassRateLimit {
		t.Fatalf("first error class = %q, want rate_limit (err: %v)", ClassOf(err), err)
	}

	before := mock.GetRequestCount()
	_, err = c.FetchLibraryPage(ctx, 2)
	if !errors.Is(err, ratelimit.ErrCoolingDown) {
		t.Fatalf("second error = %v, want ErrCoolingDown", err)
	}
	if mock.GetRequestCount() != before {
		t.Error("request during cooldown must not reach the upstream")
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	mock := testutil.NewMockComicAPI()
	defer mock.Close()

	mock.SetLibraryPageResponse(1, testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"results": []}`,
		Delay:      2 * time.Second,
	})

	c := newTestClient(t, mock.URL())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchLibraryPage(ctx, 1)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if ClassOf(err) != ErrorClassNetwork {
		t.Errorf("ClassOf() = %q, want network", ClassOf(err))
	}
}

func TestDo_CancelledBeforeSend(t *testing.T) {
	mock := testutil.NewMockComicAPI()
	defer mock.Close()
	mock.SetLibraryPage(1, testutil.LibraryRecords("Comic", 1))

	cfg := DefaultConfig("TestApp/1.0.0 (test@example.com)")
	cfg.BaseURL = mock.URL()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.FetchLibraryPage(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if got := ClassOf(err); got != ErrorClassNetwork {
		t.Errorf("ClassOf() = %q, want network", got)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("cancelled request returned APIError %+v", apiErr)
	}
	if n := mock.GetRequestCount(); n != 0 {
		t.Errorf("upstream requests = %d, want 0", n)
	}
}

func TestDo_StateErrorIsNotRateLimit(t *testing.T) {
	mock := testutil.NewMockComicAPI()
	defer mock.Close()
	mock.SetLibraryPage(1, testutil.LibraryRecords("Comic", 1))

	// Nothing listens on this address, so reading the shared state fails.
	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer unreachable.Close()

	cfg := DefaultConfig("TestApp/1.0.0 (test@example.com)")
	cfg.BaseURL = mock.URL()
	cfg.RateLimit = 0
	cfg.Redis = unreachable
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	_, err = c.FetchLibraryPage(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error with unreachable redis")
	}
	if got := ClassOf(err); got != ErrorClassNetwork {
		t.Errorf("ClassOf() = %q, want network (err %v)", got, err)
	}
	if errors.Is(err, ratelimit.ErrCoolingDown) {
		t.Errorf("error %v must not match ErrCoolingDown", err)
	}
}

func TestFetchPage_ImplementsPageFetcher(t *testing.T) {
	mock := testutil.NewMockComicAPI()
	defer mock.Close()
	mock.SetLibraryPage(4, []comic.LibraryRecord{{Title: "A"}})

	c := newTestClient(t, mock.URL())
	got, err := c.FetchPage(context.Background(), 4)
	if err != nil || len(got) != 1 {
		t.Fatalf("FetchPage() = %v, %v", got, err)
	}
}
