package screener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"RSLScreener/internal/collector"
	"RSLScreener/internal/model"
	"RSLScreener/internal/notifier"
	"RSLScreener/internal/ranking"
	"RSLScreener/internal/recorder"
	"RSLScreener/internal/store"
	"RSLScreener/internal/universe"
)

var (
	// ErrNoPriceData means no symbol in the universe returned any prices.
	ErrNoPriceData = errors.New("no price data for any symbol")
	// ErrRunInProgress is returned when a run is requested while one is active.
	ErrRunInProgress = errors.New("a ranking run is already in progress")
)

// Notifier delivers run reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Runner executes one acquisition + ranking + publish cycle.
type Runner struct {
	Universe  universe.Source
	Collector *collector.Collector
	Engine    *ranking.Engine
	Ranks     *store.RankStore
	Publisher *store.Publisher
	Recorder  recorder.Recorder
	Notifier  Notifier // optional
	Now       func() time.Time

	mu sync.Mutex
}

// Run performs a full run. Either both the snapshot and the rank mapping
// are replaced, or neither is.
func (r *Runner) Run(ctx context.Context) (*model.Snapshot, error) {
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	started := now()
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	logger.Info().Msg("ranking run started")

	snap, err := r.run(ctx, started)
	rec := &recorder.RunRecord{
		ID:        runID,
		StartedAt: started,
		Duration:  now().Sub(started),
		Status:    recorder.RunSucceeded,
		Snapshot:  snap,
	}
	if err != nil {
		rec.Status = recorder.RunFailed
		rec.Error = err.Error()
	}
	if recErr := r.Recorder.RecordRun(rec); recErr != nil {
		logger.Error().Err(recErr).Msg("record run failed")
	}

	if err != nil {
		logger.Error().Err(err).Msg("ranking run failed")
		r.notify(ctx, notifier.FormatRunFailure(err))
		return nil, err
	}

	logger.Info().
		Int("attempted", snap.TotalAttempted).
		Int("screened", snap.StocksScreened).
		Int("skipped", snap.SkippedCount).
		Int("published", len(snap.Entries)).
		Dur("elapsed", rec.Duration).
		Msg("ranking run finished")
	r.notify(ctx, notifier.FormatRankingReport(snap))
	return snap, nil
}

func (r *Runner) run(ctx context.Context, generatedAt time.Time) (*model.Snapshot, error) {
	instruments, err := r.Universe.Instruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve universe (%s): %w", r.Universe.Name(), err)
	}
	log.Info().Str("source", r.Universe.Name()).Int("instruments", len(instruments)).Msg("universe resolved")

	prev, err := r.Ranks.Load()
	if err != nil {
		// The file is fully rewritten at the end of the run.
		log.Warn().Err(err).Msg("previous ranks unreadable, treating all entries as new")
		prev = model.RankMap{}
	}

	collected, err := r.Collector.Collect(ctx, instruments)
	if err != nil {
		return nil, fmt.Errorf("collect prices: %w", err)
	}
	if len(collected.Series) == 0 {
		return nil, ErrNoPriceData
	}

	result := r.Engine.Run(collected.Series, prev, generatedAt)
	snap := result.Snapshot
	snap.TotalAttempted = len(instruments)
	snap.Skipped = append(snap.Skipped, collected.Failures...)
	snap.SortSkipped()
	snap.ApplyNames(universe.Names(instruments))

	if err := r.Publisher.Publish(snap, result.Ranks); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	return snap, nil
}

func (r *Runner) notify(ctx context.Context, text string) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification failed")
	}
}
