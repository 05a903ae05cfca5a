package crawler

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"testing"

	"carwatcher/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Crawler = (*AutoTraderCrawler)(nil)

func newTestAutoTraderCrawler() *AutoTraderCrawler {
	cfg := &config.Config{
		Make:     "BMW",
		Model:    "3 Series",
		Postcode: "E15 4EQ",
		Radius:   150000,
		BaseURL:  "https://www.autotrader.co.uk",
		MaxPages: 5,
	}
	return NewAutoTraderCrawler(cfg, NewMockCacheService())
}

// resultPage builds a search result page with the given pagination text
// and listing fragments
func resultPage(pagination string, listings ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if pagination != "" {
		b.WriteString(`<ul><li class="paginationMini__count">` + pagination + `</li></ul>`)
	}
	b.WriteString(`<ul class="search-page__results">`)
	for _, l := range listings {
		b.WriteString(l)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

func listingHTML(id, title string) string {
	return fmt.Sprintf(`<li class="search-page__result">
		<h2 class="listing-title"><a href="/car-details/%s">%s</a></h2>
		<p class="listing-attention-grabber">Just arrived</p>
		<ul class="listing-key-specs">
			<li>2021 (21 reg)</li>
			<li>30,000 miles</li>
			<li>Automatic</li>
			<li>Petrol</li>
		</ul>
		<p class="listing-description">Tidy example with full service history.</p>
		<div class="vehicle-price">£12,000</div>
	</li>`, id, title)
}

// pageParam pulls the page number off the end of a fetched URL
func pageParam(pageURL string) string {
	return pageURL[strings.LastIndex(pageURL, "=")+1:]
}

// TestSearchURL tests that the search URL carries every filter and ends
// with the page parameter
func TestSearchURL(t *testing.T) {
	crawler := newTestAutoTraderCrawler()

	searchURL := crawler.SearchURL()
	assert.True(t, strings.HasSuffix(searchURL, "&page="), "page parameter should come last")

	parsed, err := url.Parse(crawler.pageURL(3))
	require.NoError(t, err)
	assert.Equal(t, "www.autotrader.co.uk", parsed.Host)
	assert.Equal(t, "/car-search", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "sponsored", query.Get("sort"))
	assert.Equal(t, "150000", query.Get("radius"))
	assert.Equal(t, "E15 4EQ", query.Get("postcode"))
	assert.Equal(t, []string{"Used", "Nearly New", "New"}, query["onesearchad"])
	assert.Equal(t, "BMW", query.Get("make"))
	assert.Equal(t, "3 Series", query.Get("model"))
	assert.Equal(t, "2020", query.Get("year-from"))
	assert.Equal(t, "15000", query.Get("price-to"))
	assert.Equal(t, "80000", query.Get("maximum-mileage"))
	assert.Equal(t, "Automatic", query.Get("transmission"))
	assert.Equal(t, "on", query.Get("exclude-writeoff-categories"))
	assert.Equal(t, "3", query.Get("page"))
}

// TestPageCount tests reading the page total from the pagination widget
func TestPageCount(t *testing.T) {
	crawler := newTestAutoTraderCrawler()

	testCases := []struct {
		name     string
		html     string
		expected int
	}{
		{"page x of y", `<ul><li class="paginationMini__count">Page 1 of 7</li></ul>`, 7},
		{"bare number", `<li class="paginationMini__count">4</li>`, 4},
		{"missing element", `<div>no results</div>`, 1},
		{"no digits", `<li class="paginationMini__count">Page ? of ?</li>`, 1},
	}

	for _, tc := range testCases {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(tc.html))
		require.NoError(t, err)
		assert.Equal(t, tc.expected, crawler.pageCount(doc), tc.name)
	}
}

// TestFetchListingsPagination tests fetching across multiple result pages
func TestFetchListingsPagination(t *testing.T) {
	crawler := newTestAutoTraderCrawler()

	var fetched []string
	crawler.fetchFunc = func(pageURL string) (io.Reader, error) {
		fetched = append(fetched, pageParam(pageURL))
		switch pageParam(pageURL) {
		case "1":
			return strings.NewReader(resultPage("Page 1 of 2",
				listingHTML("101", "2021 BMW 3 Series 320i M Sport"),
				listingHTML("102", "2022 BMW 3 Series 318d Sport"),
			)), nil
		case "2":
			return strings.NewReader(resultPage("Page 2 of 2",
				listingHTML("103", "2020 BMW 3 Series 330e SE"),
			)), nil
		}
		return nil, errors.New("unexpected page " + pageParam(pageURL))
	}

	listings, err := crawler.FetchListings()
	require.NoError(t, err)
	require.Len(t, listings, 3)

	ids := []string{listings[0].ID, listings[1].ID, listings[2].ID}
	assert.Equal(t, []string{"101", "102", "103"}, ids, "source page order should be preserved")
	assert.Equal(t, []string{"1", "2"}, fetched)
}

// TestFetchListingsPartialBatch tests that a later-page failure keeps the
// listings collected so far
func TestFetchListingsPartialBatch(t *testing.T) {
	crawler := newTestAutoTraderCrawler()

	crawler.fetchFunc = func(pageURL string) (io.Reader, error) {
		if pageParam(pageURL) == "1" {
			return strings.NewReader(resultPage("Page 1 of 3",
				listingHTML("201", "2021 BMW 3 Series 320d M Sport"),
			)), nil
		}
		return nil, errors.New("connection reset")
	}

	listings, err := crawler.FetchListings()
	require.NoError(t, err, "a later-page failure should not fail the run")
	require.Len(t, listings, 1)
	assert.Equal(t, "201", listings[0].ID)
}

// TestFetchListingsFirstPageError tests that a first-page failure aborts
// the run
func TestFetchListingsFirstPageError(t *testing.T) {
	crawler := newTestAutoTraderCrawler()

	crawler.fetchFunc = func(pageURL string) (io.Reader, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	listings, err := crawler.FetchListings()
	assert.Error(t, err)
	assert.Nil(t, listings)
}

// TestFetchListingsCapsPages tests that MaxPages bounds the fetch even
// when the site reports more pages
func TestFetchListingsCapsPages(t *testing.T) {
	crawler := newTestAutoTraderCrawler()
	crawler.MaxPages = 2

	var fetched []string
	crawler.fetchFunc = func(pageURL string) (io.Reader, error) {
		fetched = append(fetched, pageParam(pageURL))
		return strings.NewReader(resultPage("Page 1 of 9",
			listingHTML("301", "2022 BMW 3 Series 320i Sport"),
		)), nil
	}

	_, err := crawler.FetchListings()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, fetched)
}

func TestAutoTraderCrawlerIdentity(t *testing.T) {
	crawler := newTestAutoTraderCrawler()
	assert.Equal(t, "AutoTrader", crawler.GetName())
	assert.Equal(t, "AutoTrader", crawler.GetProvider())
}
