package crawler

import (
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"carwatcher/helpers"
	cerrors "carwatcher/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// yearSpec matches key-spec entries like "2021" or "2021 (21 reg)".
var yearSpec = regexp.MustCompile(`^(19|20)\d{2}( \(\d+ reg\))?$`)

// fuelWords are the fuel types AutoTrader shows in the key specs.
var fuelWords = []string{"petrol", "diesel", "electric", "hybrid", "bi fuel", "plug-in"}

// parsePage extracts the listings from one result page. A malformed entry
// is skipped so the rest of the page still parses.
func (c *AutoTraderCrawler) parsePage(doc *goquery.Document) []Listing {
	var listings []Listing

	doc.Find("li.search-page__result").Each(func(_ int, s *goquery.Selection) {
		listing, err := c.parseListing(s)
		if err != nil {
			c.log.Warn().Err(err).Msg("Skipping malformed listing")
			return
		}
		listings = append(listings, listing)
	})

	return listings
}

// parseListing builds a Listing from one result container. A listing
// without a title is malformed; any other missing field falls back to a
// placeholder so one sparse advert cannot sink the page.
func (c *AutoTraderCrawler) parseListing(s *goquery.Selection) (Listing, error) {
	titleSel := s.Find("h2.listing-title")
	title := strings.TrimSpace(titleSel.Text())
	if title == "" {
		return Listing{}, cerrors.NewParse(c.Provider, "listing has no title", nil)
	}

	var link string
	if href, ok := titleSel.Find("a").Attr("href"); ok {
		link = c.resolveURL(strings.TrimSpace(href))
	}

	listing := Listing{
		ID:               listingID(link, title),
		Title:            title,
		Price:            textOr(s.Find("div.vehicle-price"), Placeholder),
		Year:             Placeholder,
		Mileage:          Placeholder,
		Transmission:     Placeholder,
		FuelType:         Placeholder,
		Description:      textOr(s.Find("p.listing-description"), Placeholder),
		AttentionGrabber: strings.TrimSpace(s.Find("p.listing-attention-grabber").Text()),
		Link:             link,
		Provider:         c.Provider,
	}

	s.Find("ul.listing-key-specs li").Each(func(_ int, spec *goquery.Selection) {
		classifySpec(strings.TrimSpace(spec.Text()), &listing)
	})

	return listing, nil
}

// classifySpec assigns one key-spec entry to the field it describes.
// Entries that match nothing are left alone.
func classifySpec(text string, l *Listing) {
	lower := strings.ToLower(text)

	switch {
	case yearSpec.MatchString(text):
		l.Year = text
	case strings.Contains(lower, "miles"):
		l.Mileage = text
	case lower == "automatic" || lower == "manual":
		l.Transmission = text
	default:
		for _, fuel := range fuelWords {
			if strings.Contains(lower, fuel) {
				l.FuelType = text
				return
			}
		}
	}
}

// listingID derives a stable identifier for a listing. AutoTrader links
// carry the advert id as a path segment (/car-details/<id>?...); when the
// link gives nothing usable the title is hashed instead.
func listingID(link, title string) string {
	if link != "" {
		base := link
		if i := strings.Index(base, "?"); i >= 0 {
			base = base[:i]
		}
		base = strings.TrimSuffix(base, "/")
		if id, err := helpers.GetSplitPart(base, "/", 4); err == nil && id != "" {
			return id
		}
	}

	h := fnv.New64a()
	h.Write([]byte(title))
	return strconv.FormatUint(h.Sum64(), 16)
}

// textOr returns the trimmed text of a selection, or the fallback when
// the selection holds nothing.
func textOr(s *goquery.Selection, fallback string) string {
	if text := strings.TrimSpace(s.Text()); text != "" {
		return text
	}
	return fallback
}
