package worker

import (
	"context"
	"encoding/json"

	"carwatcher/internal/crawler"
	"carwatcher/logger"
	cerrors "carwatcher/pkg/errors"
	"carwatcher/services/notifier"
	"carwatcher/services/publisher"
	"carwatcher/services/state"
)

// Worker drives one watch run from fetch to state save
type Worker struct {
	ctx       context.Context
	crawler   crawler.Crawler
	store     state.Store
	notifier  notifier.Notifier
	publisher publisher.Publisher
	log       *logger.Logger
}

// NewWorker creates a new worker. The publisher may be nil when stream
// publishing is disabled.
func NewWorker(
	ctx context.Context,
	c crawler.Crawler,
	store state.Store,
	n notifier.Notifier,
	pub publisher.Publisher,
) *Worker {
	return &Worker{
		ctx:       ctx,
		crawler:   c,
		store:     store,
		notifier:  n,
		publisher: pub,
		log:       logger.ForWorker(),
	}
}

// RunReport summarizes one watch run
type RunReport struct {
	PreviouslySeen int
	Current        int
	New            int
	Notified       int
	NotifyFailures int
	Published      int
	StateSaved     bool
}

// Run executes one watch cycle: fetch, filter write-offs, diff against
// the seen state, notify and publish the new listings, save the state.
func (w *Worker) Run() (RunReport, error) {
	var report RunReport

	seen, err := w.store.Load()
	if err != nil {
		w.log.Warn().Err(err).Msg("Could not load seen state, treating all listings as new")
	}
	report.PreviouslySeen = len(seen)

	listings, err := w.crawler.FetchListings()
	if err != nil {
		return report, err
	}

	var current []crawler.Listing
	for _, l := range listings {
		if keyword, found := crawler.WriteOffKeyword(l); found {
			w.log.Debug().Str("listing_id", l.ID).Str("keyword", keyword).Msg("Excluding write-off listing")
			continue
		}
		current = append(current, l)
	}
	report.Current = len(current)

	// Novelty is id membership alone; page order is preserved for the
	// notifications.
	nextSeen := state.NewSeenSet()
	var newListings []crawler.Listing
	for _, l := range current {
		nextSeen.Add(l.ID)
		if !seen.Has(l.ID) {
			newListings = append(newListings, l)
		}
	}
	report.New = len(newListings)

	stats := notifier.ComputeBatchStats(current)

	for _, l := range newListings {
		if err := w.ctx.Err(); err != nil {
			return report, err
		}

		if err := w.notifier.Notify(w.ctx, l, stats); err != nil {
			report.NotifyFailures++
			w.log.Error().Err(err).Str("listing_id", l.ID).Msg("Notification failed")
		} else {
			report.Notified++
		}

		if w.publishListing(l) {
			report.Published++
		}
	}

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(); err != nil {
			w.log.Error().Err(err).Msg("Stream trimming failed")
		}
	}

	// An empty batch keeps the previous state in place rather than
	// erasing history on a bad scrape.
	if len(current) == 0 {
		w.log.Info().Msg("Empty batch, keeping previous seen state")
	} else if err := w.store.Save(nextSeen); err != nil {
		w.log.Error().Err(err).Msg("Could not save seen state, next run will re-notify")
	} else {
		report.StateSaved = true
	}

	if report.New > 0 && report.Notified == 0 {
		return report, cerrors.NewNotification("Telegram", "all notifications failed", nil)
	}

	w.log.Info().
		Int("previously_seen", report.PreviouslySeen).
		Int("current", report.Current).
		Int("new", report.New).
		Int("notified", report.Notified).
		Msg("Run complete")

	return report, nil
}

// publishListing pushes one listing to the stream publisher when one is
// configured. Publish failures never affect the run result.
func (w *Worker) publishListing(l crawler.Listing) bool {
	if w.publisher == nil {
		return false
	}

	payload, err := json.Marshal(l)
	if err != nil {
		w.log.Error().Err(err).Str("listing_id", l.ID).Msg("Could not marshal listing")
		return false
	}

	if err := w.publisher.Publish(l.ID, payload); err != nil {
		w.log.Error().Err(err).Str("listing_id", l.ID).Msg("Publish failed")
		return false
	}

	return true
}
