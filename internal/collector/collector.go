package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"RSLScreener/internal/model"
)

// Options tunes how the universe is fetched.
type Options struct {
	HistoryDays       int     // closes requested per symbol
	Concurrency       int     // parallel requests
	RequestsPerSecond float64 // shared across workers; <= 0 disables the limiter
}

// Result is the materialized price universe of one run.
type Result struct {
	Series   model.PriceSeries
	Failures []model.Skipped
}

// Collector fetches daily closes for a whole universe.
type Collector struct {
	Fetcher Fetcher
	opts    Options
	limiter *rate.Limiter
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, opts Options) *Collector {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	c := &Collector{Fetcher: fetcher, opts: opts}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// Collect fetches every instrument. A failing symbol is reported in
// Result.Failures and never aborts the run; only context cancellation does.
func (c *Collector) Collect(ctx context.Context, instruments []model.Instrument) (*Result, error) {
	started := time.Now()
	res := &Result{Series: make(model.PriceSeries, len(instruments))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)

	for _, inst := range instruments {
		inst := inst
		g.Go(func() error {
			if c.limiter != nil {
				if err := c.limiter.Wait(gctx); err != nil {
					return fmt.Errorf("rate limit wait: %w", err)
				}
			}
			points, err := c.Fetcher.FetchDailyCloses(gctx, inst.Symbol, c.opts.HistoryDays)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				reason := model.SkipFetchError
				if errors.Is(err, ErrNoData) {
					reason = model.SkipNoPriceData
				}
				log.Warn().Err(err).Str("symbol", inst.Symbol).Msg("price fetch failed")
				res.Failures = append(res.Failures, model.Skipped{
					Symbol: inst.Symbol,
					Name:   inst.Name,
					Reason: reason,
					Detail: err.Error(),
				})
			case len(points) == 0:
				res.Failures = append(res.Failures, model.Skipped{
					Symbol: inst.Symbol,
					Name:   inst.Name,
					Reason: model.SkipNoPriceData,
				})
			default:
				res.Series[inst.Symbol] = points
				log.Debug().Str("symbol", inst.Symbol).Int("days", len(points)).Msg("prices fetched")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().
		Str("source", c.Fetcher.Name()).
		Int("requested", len(instruments)).
		Int("fetched", len(res.Series)).
		Int("failed", len(res.Failures)).
		Dur("elapsed", time.Since(started)).
		Msg("price collection finished")
	return res, nil
}
