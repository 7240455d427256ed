package recorder

import (
	"time"

	"RSLScreener/internal/model"
)

// RunStatus is the outcome of a ranking run.
type RunStatus string

const (
	RunSucceeded RunStatus = "SUCCEEDED"
	RunFailed    RunStatus = "FAILED"
)

// RunRecord holds everything stored about one run.
type RunRecord struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Status    RunStatus
	Error     string
	Snapshot  *model.Snapshot // nil for failed runs
}

// RunSummary is one row of run history.
type RunSummary struct {
	ID             string
	StartedAt      time.Time
	Duration       time.Duration
	Status         RunStatus
	Error          string
	TotalAttempted int
	StocksScreened int
	SkippedCount   int
	TopSymbol      string
	TopRSL         float64
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
