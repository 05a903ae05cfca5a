package crawler

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"carwatcher/helpers"
	cerrors "carwatcher/pkg/errors"
	"carwatcher/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// BaseCrawler provides common functionality for crawlers
type BaseCrawler struct {
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	BaseURL   string
	Provider  string
}

// fetchWithCache fetches a URL honoring the rate-limit cooldown. While a
// cooldown from an earlier throttled response is active, the call fails
// without touching the network.
func (c *BaseCrawler) fetchWithCache(pageURL string) (io.Reader, error) {
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return nil, cerrors.NewRateLimit(c.Provider, c.BlockTime)
		}
	}

	utf8Body, err := helpers.FetchWithRandomHeaders(pageURL)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			if c.CacheSvc != nil && c.CacheKey != "" {
				seconds := strconv.Itoa(int(c.BlockTime / time.Second))
				if setErr := c.CacheSvc.Set(c.CacheKey, []byte(seconds), c.BlockTime); setErr != nil {
					return nil, setErr
				}
			}
			return nil, cerrors.NewRateLimit(c.Provider, c.BlockTime)
		}
		return nil, cerrors.NewFetch(c.Provider, fmt.Sprintf("fetching %s", pageURL), err)
	}

	return utf8Body, nil
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, cerrors.NewParse(c.Provider, "parsing HTML document", err)
	}
	return doc, nil
}

// resolveURL makes relative listing links absolute
func (c *BaseCrawler) resolveURL(link string) string {
	if link == "" || strings.HasPrefix(link, "http") {
		return link
	}
	if strings.HasPrefix(link, "//") {
		return "https:" + link
	}
	if strings.HasPrefix(link, "/") {
		return c.BaseURL + link
	}
	return c.BaseURL + "/" + link
}

// GetProvider returns the provider name for the crawler
func (c *BaseCrawler) GetProvider() string {
	return c.Provider
}
