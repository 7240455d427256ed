package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"RSLScreener/internal/model"
	"RSLScreener/internal/notifier"
	"RSLScreener/internal/recorder"
	"RSLScreener/internal/screener"
)

// Runner is the run-once entry point triggered by the schedule.
type Runner interface {
	Run(ctx context.Context) (*model.Snapshot, error)
}

// SnapshotLoader reads the last published snapshot.
type SnapshotLoader interface {
	Load() (*model.Snapshot, error)
}

// Scheduler manages the weekly ranking job.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    Runner
	Snapshots SnapshotLoader
	Recorder  recorder.Recorder
	Ctx       context.Context

	manual sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, snapshots SnapshotLoader, rec recorder.Recorder) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Runner:    runner,
		Snapshots: snapshots,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// Register registers the weekly ranking task.
func (s *Scheduler) Register(weeklyCron string) error {
	if _, err := s.Cron.AddFunc(weeklyCron, s.weeklyTask); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	for _, e := range s.Cron.Entries() {
		log.Info().Time("next_run", e.Next).Msg("scheduler started")
	}
}

// Stop stops the cron scheduler and waits for running scheduled and
// triggered jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.manual.Wait()
	log.Info().Msg("scheduler stopped")
}

// RunNow runs the ranking task on the calling goroutine.
func (s *Scheduler) RunNow() {
	s.weeklyTask()
}

// Trigger starts a run in the background. Stop waits for it.
func (s *Scheduler) Trigger() {
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		s.RunNow()
	}()
}

func (s *Scheduler) weeklyTask() {
	log.Info().Msg("running weekly ranking task")
	if _, err := s.Runner.Run(s.Ctx); err != nil {
		if errors.Is(err, screener.ErrRunInProgress) {
			log.Warn().Msg("weekly ranking skipped, previous run still active")
			return
		}
		log.Error().Err(err).Msg("weekly ranking task failed")
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	var name string
	if fields := strings.Fields(command); len(fields) > 0 {
		// Group chats address commands as /top@botname.
		name = strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	}
	switch name {
	case "/top":
		snap, err := s.Snapshots.Load()
		if err != nil {
			return notifier.FormatRunFailure(err)
		}
		if snap == nil {
			return "No ranking has been published yet."
		}
		return notifier.FormatRankingReport(snap)
	case "/run":
		s.Trigger()
		return "Ranking run started."
	case "/history":
		runs, err := s.Recorder.RecentRuns(5)
		if err != nil {
			return notifier.FormatRunFailure(err)
		}
		return FormatHistory(runs)
	default:
		return notifier.FormatHelp()
	}
}

// FormatHistory renders recent runs, newest first.
func FormatHistory(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s  %-9s  screened %d  skipped %d",
			r.StartedAt.UTC().Format("2006-01-02 15:04"), r.Status, r.StocksScreened, r.SkippedCount))
		if r.TopSymbol != "" {
			b.WriteString(fmt.Sprintf("  #1 %s (%.4f)", r.TopSymbol, r.TopRSL))
		}
		if r.Error != "" {
			b.WriteString("  " + html.EscapeString(r.Error))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
