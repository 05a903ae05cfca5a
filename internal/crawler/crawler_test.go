package crawler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cerrors "carwatcher/pkg/errors"
	"carwatcher/services/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBaseCrawler(cacheSvc cache.CacheService) *BaseCrawler {
	return &BaseCrawler{
		CacheKey:  "test_rate_limited",
		CacheSvc:  cacheSvc,
		BlockTime: 2 * time.Second,
		BaseURL:   "https://example.com",
		Provider:  "TestProvider",
	}
}

// TestFetchWithCacheSuccess tests a plain fetch through the cooldown layer
func TestFetchWithCacheSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	crawler := newTestBaseCrawler(NewMockCacheService())

	body, err := crawler.fetchWithCache(server.URL)
	require.NoError(t, err)

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ok")
}

// TestFetchWithCacheCooldown tests that an active cooldown fails fast
// without touching the network
func TestFetchWithCacheCooldown(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	mockCache.Set("test_rate_limited", []byte("2"), 2*time.Second)

	crawler := newTestBaseCrawler(mockCache)

	_, err := crawler.fetchWithCache(server.URL)
	require.Error(t, err)

	var watchErr *cerrors.WatchError
	require.ErrorAs(t, err, &watchErr)
	assert.Equal(t, cerrors.ErrorTypeRateLimit, watchErr.Type)
	assert.Equal(t, 0, requests, "cooldown should short-circuit before the request")
}

// TestFetchWithCacheSetsCooldown tests that a throttled response starts
// the cooldown
func TestFetchWithCacheSetsCooldown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	crawler := newTestBaseCrawler(mockCache)

	_, err := crawler.fetchWithCache(server.URL)
	require.Error(t, err)

	var watchErr *cerrors.WatchError
	require.ErrorAs(t, err, &watchErr)
	assert.Equal(t, cerrors.ErrorTypeRateLimit, watchErr.Type)

	val, cacheErr := mockCache.Get("test_rate_limited")
	require.NoError(t, cacheErr, "cooldown key should be set after a throttled response")
	assert.Equal(t, "2", string(val))
}

// TestFetchWithCacheFetchError tests that server errors surface as fetch
// errors, not rate limits
func TestFetchWithCacheFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	crawler := newTestBaseCrawler(mockCache)

	_, err := crawler.fetchWithCache(server.URL)
	require.Error(t, err)

	var watchErr *cerrors.WatchError
	require.ErrorAs(t, err, &watchErr)
	assert.Equal(t, cerrors.ErrorTypeFetch, watchErr.Type)

	_, cacheErr := mockCache.Get("test_rate_limited")
	assert.Error(t, cacheErr, "a plain server error should not start a cooldown")
}

// TestResolveURL tests link resolution against the base URL
func TestResolveURL(t *testing.T) {
	crawler := newTestBaseCrawler(nil)

	testCases := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"https://other.com/car/1", "https://other.com/car/1"},
		{"http://other.com/car/1", "http://other.com/car/1"},
		{"//cdn.example.com/img.jpg", "https://cdn.example.com/img.jpg"},
		{"/car-details/123", "https://example.com/car-details/123"},
		{"car-details/123", "https://example.com/car-details/123"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, crawler.resolveURL(tc.input), "input: "+tc.input)
	}
}
