// Package notifier formats new-listing alerts and delivers them through
// the Telegram Bot API.
package notifier

import (
	"context"

	"carwatcher/internal/crawler"
)

// Notifier delivers one new-listing alert
type Notifier interface {
	Notify(ctx context.Context, listing crawler.Listing, stats BatchStats) error
}

// BatchStats carries batch-level figures the formatter uses for its
// annotations. Zero values mean the batch had nothing to measure.
type BatchStats struct {
	MedianPrice int
}
