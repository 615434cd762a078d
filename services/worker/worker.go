package worker

import (
	"context"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"sjsage522/rafflemonitor/config"
	"sjsage522/rafflemonitor/internal/crawler"
	"sjsage522/rafflemonitor/internal/fetch"
	"sjsage522/rafflemonitor/logger"
	"sjsage522/rafflemonitor/pkg/errors"
	"sjsage522/rafflemonitor/services/notifier"
	"sjsage522/rafflemonitor/services/seen"
)

// Fetcher retrieves one document
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Document, error)
}

// Extractor turns fetched documents into raffle data
type Extractor interface {
	ListOpenRaffles(doc *fetch.Document) ([]string, error)
	ParseRecord(doc *fetch.Document) (*crawler.RaffleItem, error)
}

// Options controls the poll loop
type Options struct {
	ListingURL    string
	PollInterval  time.Duration
	DetailWorkers int

	RetryAttempts uint
	RetryDelay    time.Duration
	RetryMaxDelay time.Duration
}

// OptionsFromConfig reads the poll loop options from cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ListingURL:    cfg.ListingURL,
		PollInterval:  cfg.PollInterval,
		DetailWorkers: cfg.DetailWorkers,
		RetryAttempts: cfg.FetchRetryAttempts,
		RetryDelay:    cfg.FetchRetryDelay,
		RetryMaxDelay: cfg.FetchRetryMaxDelay,
	}
}

// CycleStats counts what one cycle did with the listed URLs
type CycleStats struct {
	Listed   int
	Skipped  int
	Notified int
	Failed   int
}

// Worker polls the listing page and notifies every raffle it has not seen yet
type Worker struct {
	fetcher   Fetcher
	extractor Extractor
	store     seen.Store
	notifier  notifier.Notifier
	opts      Options
	log       *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	f Fetcher,
	e Extractor,
	s seen.Store,
	n notifier.Notifier,
	opts Options,
) *Worker {
	if opts.DetailWorkers < 1 {
		opts.DetailWorkers = 1
	}
	// zero attempts would make retry.Do loop forever
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	return &Worker{
		fetcher:   f,
		extractor: e,
		store:     s,
		notifier:  n,
		opts:      opts,
		log:       logger.ForWorker(),
	}
}

// Start runs cycles until ctx is cancelled and then returns ctx.Err(). A
// failed cycle is logged and the loop carries on after the usual sleep.
func (w *Worker) Start(ctx context.Context) error {
	for {
		start := time.Now()
		stats, err := w.RunOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		event := w.log.Info()
		if err != nil {
			event = w.log.Error().Err(err)
		}
		event.
			Int("listed", stats.Listed).
			Int("skipped", stats.Skipped).
			Int("notified", stats.Notified).
			Int("failed", stats.Failed).
			Dur("duration", time.Since(start)).
			Msg("Cycle finished")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.opts.PollInterval):
		}
	}
}

// RunOnce runs a single cycle. The returned error is set when the cycle was
// aborted: listing unavailable, seen store failing or ctx cancelled. Per-item
// failures only show up in stats.Failed.
func (w *Worker) RunOnce(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	listing, err := w.fetchWithRetry(ctx, w.opts.ListingURL)
	if err != nil {
		return stats, err
	}

	urls, err := w.extractor.ListOpenRaffles(listing)
	if err != nil {
		w.log.Warn().Err(err).Int("resolved", len(urls)).Msg("Some listing entries could not be resolved")
	}
	stats.Listed = len(urls)

	if w.opts.DetailWorkers > 1 {
		err = w.runPool(ctx, urls, &stats)
	} else {
		err = w.runSequential(ctx, urls, &stats)
	}
	return stats, err
}

// runSequential handles one url at a time, in listing order
func (w *Worker) runSequential(ctx context.Context, urls []string, stats *CycleStats) error {
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}

		claimed, err := w.claim(ctx, url)
		if err != nil {
			return err
		}
		if !claimed {
			stats.Skipped++
			continue
		}

		item, err := w.collect(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.Failed++
			continue
		}

		if err := w.deliver(ctx, item); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.Failed++
			continue
		}
		stats.Notified++
	}
	return nil
}

// claim marks url as seen before any detail request is made. It returns
// false when url was already in the set.
func (w *Worker) claim(ctx context.Context, url string) (bool, error) {
	known, err := w.store.Has(ctx, url)
	if err != nil {
		return false, err
	}
	if known {
		return false, nil
	}
	if err := w.store.Add(ctx, url); err != nil {
		return false, err
	}
	return true, nil
}

// collect fetches and extracts the detail page of url. Failures are logged
// here; the caller only counts them.
func (w *Worker) collect(ctx context.Context, url string) (*crawler.RaffleItem, error) {
	doc, err := w.fetchWithRetry(ctx, url)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn().Err(err).Str("url", url).Msg("Skipping raffle, detail page unavailable")
		}
		return nil, err
	}

	item, err := w.extractor.ParseRecord(doc)
	if err != nil {
		w.log.Warn().
			Err(err).
			Str("url", url).
			Str("error_type", string(errors.TypeOf(err))).
			Msg("Skipping raffle, detail page could not be extracted")
		return nil, err
	}
	return item, nil
}

// deliver builds and sends the message for item. A webhook answering 429 or
// 5xx is retried with the fetch policy since item is already marked seen.
func (w *Worker) deliver(ctx context.Context, item *crawler.RaffleItem) error {
	msg := notifier.BuildMessage(item)
	err := w.withRetry(ctx, "notify", item.URL, func() error {
		return w.notifier.Notify(ctx, msg)
	})
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn().Err(err).Str("url", item.URL).Msg("Notification failed")
		}
		return err
	}

	w.log.Info().
		Str("url", item.URL).
		Str("brand", item.Brand).
		Str("model", item.Model).
		Msg("New raffle notified")
	return nil
}

// fetchWithRetry fetches url, retrying network failures and retryable
// statuses with exponential backoff.
func (w *Worker) fetchWithRetry(ctx context.Context, url string) (*fetch.Document, error) {
	var doc *fetch.Document
	err := w.withRetry(ctx, "fetch", url, func() error {
		d, err := w.fetcher.Fetch(ctx, url)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// withRetry runs op under the configured backoff policy while its error is
// retryable. The last attempt's error is returned.
func (w *Worker) withRetry(ctx context.Context, action, url string, op func() error) error {
	var lastErr error

	jitter := w.opts.RetryDelay / 2
	if jitter <= 0 {
		jitter = time.Millisecond
	}

	log := w.log.WithFields(logger.Fields{"action": action, "url": url})
	err := retry.Do(
		func() error {
			err := op()
			if err != nil {
				lastErr = err
			}
			return err
		},
		retry.Attempts(w.opts.RetryAttempts),
		retry.Delay(w.opts.RetryDelay),
		retry.MaxDelay(w.opts.RetryMaxDelay),
		retry.MaxJitter(jitter),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Uint("attempt", n+1).Err(err).Msg("Retrying")
		}),
		retry.RetryIf(errors.IsRetryable),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}
