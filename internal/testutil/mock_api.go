// Package testutil provides testing utilities for the comic catalog.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/comic-catalog/pkg/comic"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockComicAPI is a configurable stand-in for the upstream comic API.
// Library pages without a configured response answer 404.
type MockComicAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	requests          []string
	lastRequestHeader http.Header
}

// NewMockComicAPI creates a new mock comic API server.
func NewMockComicAPI() *MockComicAPI {
	mock := &MockComicAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, r.URL.Path)
		mock.lastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[strings.TrimSuffix(r.URL.Path, "/")]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "not found"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockComicAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockComicAPI) Close() {
	m.server.Close()
}

// Reset clears request tracking.
func (m *MockComicAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.lastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockComicAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[strings.TrimSuffix(path, "/")] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockComicAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetLibraryPage serves records on /comic/pustaka/{page}.
func (m *MockComicAPI) SetLibraryPage(page int, records []comic.LibraryRecord) {
	m.SetResponse(LibraryPath(page), NewJSONResponse(comic.LibraryResponse{Results: records}))
}

// SetLibraryPageResponse configures an arbitrary response for a library page.
func (m *MockComicAPI) SetLibraryPageResponse(page int, resp MockResponse) {
	m.SetResponse(LibraryPath(page), resp)
}

// SetTrending serves records on /comic/trending.
func (m *MockComicAPI) SetTrending(records []comic.TrendingRecord) {
	m.SetResponse("/comic/trending", NewJSONResponse(comic.TrendingResponse{Trending: records}))
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockComicAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockComicAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// LibraryPagesRequested returns the upstream library pages requested so far,
// sorted ascending.
func (m *MockComicAPI) LibraryPagesRequested() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pages []int
	for _, p := range m.requests {
		rest, ok := strings.CutPrefix(strings.TrimSuffix(p, "/"), "/comic/pustaka/")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil {
			pages = append(pages, n)
		}
	}
	sort.Ints(pages)
	return pages
}

// LibraryPath returns the upstream path of a library page.
func LibraryPath(page int) string {
	return fmt.Sprintf("/comic/pustaka/%d", page)
}

// NewJSONResponse creates a 200 OK response with v encoded as JSON.
func NewJSONResponse(v interface{}) MockResponse {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal mock body: %v", err))
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"message": "not found"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"Retry-After":  strconv.Itoa(retryAfter),
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>maintenance</html>`,
		Headers: map[string]string{
			"Content-Type": "text/html",
		},
	}
}

// LibraryRecords builds n well-formed library records titled "<prefix> <i>".
func LibraryRecords(prefix string, n int) []comic.LibraryRecord {
	records := make([]comic.LibraryRecord, 0, n)
	for i := 1; i <= n; i++ {
		title := fmt.Sprintf("%s %d", prefix, i)
		slug := comic.Slugify(title)
		records = append(records, comic.LibraryRecord{
			Title:         title,
			Thumbnail:     "https://img.example.com/" + slug + ".jpg",
			LatestChapter: &comic.ChapterRef{Title: fmt.Sprintf("Chapter %d", i*10)},
			DetailURL:     "/detail-komik/" + slug + "/",
			Type:          "Manhwa",
			Genre:         "Action",
		})
	}
	return records
}
