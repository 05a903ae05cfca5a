package notifier

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"carwatcher/config"
	"carwatcher/helpers"
	"carwatcher/internal/crawler"
)

const (
	maxDescriptionRunes = 500

	// Telegram rejects messages over 4096 characters; stay under it with
	// room to spare.
	maxMessageRunes = 4000
)

// Formatter renders one listing into alert text
type Formatter struct {
	Make  string
	Model string
}

// NewFormatter creates a formatter for the configured search
func NewFormatter(cfg *config.Config) Formatter {
	return Formatter{
		Make:  cfg.Make,
		Model: cfg.Model,
	}
}

// Format renders the alert for one listing
func (f Formatter) Format(listing crawler.Listing, stats BatchStats) string {
	var b strings.Builder

	b.WriteString("🚗 New AutoTrader Alert!\n\n")
	b.WriteString(fmt.Sprintf("📍 %s\n", listing.Title))
	b.WriteString(fmt.Sprintf("   %s · %s · %s · %s\n", listing.Year, listing.Mileage, listing.Transmission, listing.FuelType))
	b.WriteString(fmt.Sprintf("   💰 %s\n", listing.Price))

	if listing.Description != "" && listing.Description != crawler.Placeholder {
		b.WriteString(fmt.Sprintf("   📝 %s\n", helpers.TruncateRunes(listing.Description, maxDescriptionRunes)))
	}

	if attention := f.attentionLine(listing, stats); attention != "" {
		b.WriteString(fmt.Sprintf("   ⭐ %s\n", attention))
	}

	if listing.Link != "" {
		b.WriteString(fmt.Sprintf("   🔗 %s\n", listing.Link))
	}

	b.WriteString(f.footer())

	return helpers.TruncateRunes(b.String(), maxMessageRunes)
}

// attentionLine prefers the page's own grabber, falling back to a batch
// price comparison.
func (f Formatter) attentionLine(listing crawler.Listing, stats BatchStats) string {
	if listing.AttentionGrabber != "" {
		return listing.AttentionGrabber
	}
	if price, ok := ParsePrice(listing.Price); ok && stats.MedianPrice > 0 && price < stats.MedianPrice {
		return "Priced below the median for this search"
	}
	return ""
}

// footer repeats the active search criteria under every alert
func (f Formatter) footer() string {
	var b strings.Builder
	b.WriteString("\n📋 Search Criteria:\n")
	b.WriteString(fmt.Sprintf("• Make/Model: %s %s\n", f.Make, f.Model))
	b.WriteString("• Year: 2020 and newer\n")
	b.WriteString("• Price: Under £15,000\n")
	b.WriteString("• Mileage: Under 80,000 miles\n")
	b.WriteString("• Transmission: Automatic only\n")
	b.WriteString("• Condition: No write-offs\n")
	return b.String()
}

// ParsePrice reads the whole pounds out of a price string like "£14,250".
// Pence are ignored.
func ParsePrice(price string) (int, bool) {
	var digits strings.Builder
	for _, r := range price {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else if r == '.' {
			break
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}

	value, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return value, true
}

// ComputeBatchStats derives batch-level price figures from the current
// listings. Listings without a parseable price are left out.
func ComputeBatchStats(listings []crawler.Listing) BatchStats {
	var prices []int
	for _, l := range listings {
		if value, ok := ParsePrice(l.Price); ok {
			prices = append(prices, value)
		}
	}
	if len(prices) == 0 {
		return BatchStats{}
	}

	sort.Ints(prices)
	return BatchStats{MedianPrice: prices[len(prices)/2]}
}
