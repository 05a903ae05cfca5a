package crawler

import (
	"io"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"carwatcher/config"
	"carwatcher/logger"
	"carwatcher/services/cache"

	"github.com/PuerkitoBio/goquery"
)

const (
	searchPath = "/car-search"

	// Fixed search filters. Make, model, postcode and radius come from
	// configuration; the rest define the watch itself.
	filterSort         = "sponsored"
	filterYearFrom     = "2020"
	filterPriceTo      = "15000"
	filterMaxMileage   = "80000"
	filterTransmission = "Automatic"

	autoTraderCacheKey  = "autotrader_rate_limited"
	autoTraderBlockTime = 500 * time.Second
)

// adConditions lists the listing conditions included in the search.
var adConditions = []string{"Used", "Nearly New", "New"}

var digitRuns = regexp.MustCompile(`\d+`)

// AutoTraderCrawler crawls AutoTrader UK search results for a single
// make and model watch
type AutoTraderCrawler struct {
	BaseCrawler
	Make     string
	Model    string
	Postcode string
	Radius   int
	MaxPages int

	log       *logger.Logger
	fetchFunc func(pageURL string) (io.Reader, error)
}

// NewAutoTraderCrawler creates a new AutoTrader crawler from the configuration
func NewAutoTraderCrawler(cfg *config.Config, cacheSvc cache.CacheService) *AutoTraderCrawler {
	c := &AutoTraderCrawler{
		BaseCrawler: BaseCrawler{
			CacheKey:  autoTraderCacheKey,
			CacheSvc:  cacheSvc,
			BlockTime: autoTraderBlockTime,
			BaseURL:   cfg.BaseURL,
			Provider:  "AutoTrader",
		},
		Make:     cfg.Make,
		Model:    cfg.Model,
		Postcode: cfg.Postcode,
		Radius:   cfg.Radius,
		MaxPages: cfg.MaxPages,
		log:      logger.ForCrawler("autotrader"),
	}
	c.fetchFunc = c.fetchWithCache
	return c
}

// SearchURL builds the search URL with every filter applied. The page
// parameter comes last with an empty value so page numbers can be
// concatenated onto the returned string.
func (c *AutoTraderCrawler) SearchURL() string {
	params := url.Values{}
	params.Set("sort", filterSort)
	params.Set("radius", strconv.Itoa(c.Radius))
	params.Set("postcode", c.Postcode)
	for _, condition := range adConditions {
		params.Add("onesearchad", condition)
	}
	params.Set("make", c.Make)
	params.Set("model", c.Model)
	params.Set("year-from", filterYearFrom)
	params.Set("price-to", filterPriceTo)
	params.Set("maximum-mileage", filterMaxMileage)
	params.Set("transmission", filterTransmission)
	params.Set("exclude-writeoff-categories", "on")

	// Encode sorts keys alphabetically, so the page parameter is appended
	// after encoding to keep it last.
	return c.BaseURL + searchPath + "?" + params.Encode() + "&page="
}

func (c *AutoTraderCrawler) pageURL(page int) string {
	return c.SearchURL() + strconv.Itoa(page)
}

// pageCount reads the total result page count from the pagination widget.
// The widget reads "Page 1 of N"; the last number in its text is the total.
// Missing pagination means a single page of results.
func (c *AutoTraderCrawler) pageCount(doc *goquery.Document) int {
	text := doc.Find("li.paginationMini__count").First().Text()
	numbers := digitRuns.FindAllString(text, -1)
	if len(numbers) == 0 {
		return 1
	}
	count, err := strconv.Atoi(numbers[len(numbers)-1])
	if err != nil || count < 1 {
		return 1
	}
	return count
}

// FetchListings fetches every result page up to MaxPages and returns the
// parsed listings. A failure on the first page aborts the run; a failure
// on a later page returns the listings collected so far.
func (c *AutoTraderCrawler) FetchListings() ([]Listing, error) {
	firstPageURL := c.pageURL(1)
	c.log.Debug().Str("url", firstPageURL).Msg("Fetching first result page")

	body, err := c.fetchFunc(firstPageURL)
	if err != nil {
		return nil, err
	}

	doc, err := c.createDocument(body)
	if err != nil {
		return nil, err
	}

	pages := c.pageCount(doc)
	if pages > c.MaxPages {
		c.log.Info().Int("pages", pages).Int("max_pages", c.MaxPages).Msg("Capping result pages")
		pages = c.MaxPages
	}

	listings := c.parsePage(doc)

	for page := 2; page <= pages; page++ {
		body, err := c.fetchFunc(c.pageURL(page))
		if err != nil {
			c.log.Warn().Err(err).Int("page", page).Msg("Skipping remaining pages")
			break
		}

		pageDoc, err := c.createDocument(body)
		if err != nil {
			c.log.Warn().Err(err).Int("page", page).Msg("Skipping remaining pages")
			break
		}

		listings = append(listings, c.parsePage(pageDoc)...)
	}

	c.log.Info().Int("pages", pages).Int("listings", len(listings)).Msg("Fetched search results")
	return listings, nil
}

// GetName returns the crawler name
func (c *AutoTraderCrawler) GetName() string {
	return "AutoTrader"
}
