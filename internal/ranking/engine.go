package ranking

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"RSLScreener/internal/calculator"
	"RSLScreener/internal/model"
)

// Config holds the ranking parameters.
type Config struct {
	Window int // trading days in the SMA
	TopN   int // size of the published list
}

// DefaultConfig returns a 130 trading day (~26 week) window and a top 20.
func DefaultConfig() Config {
	return Config{Window: 130, TopN: 20}
}

// Validate checks that both parameters are positive.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %d", c.Window)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	return nil
}

// Score is the RSL of one scoreable symbol.
type Score struct {
	Symbol string
	Price  float64
	SMA    float64
	RSL    float64
}

// Result is the output of a full ranking pass.
type Result struct {
	Snapshot *model.Snapshot
	// Ranks covers every scored symbol, not only the top N.
	Ranks model.RankMap
}

// Engine scores, ranks and annotates a price universe. It performs no I/O.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine parameters.
func (e *Engine) Config() Config { return e.cfg }

// Run executes score, rank and annotate over the series.
func (e *Engine) Run(series model.PriceSeries, prev model.RankMap, generatedAt time.Time) *Result {
	scores, skipped := e.Score(series)
	ranked := Rank(scores)

	ranks := make(model.RankMap, len(ranked))
	for _, r := range ranked {
		ranks[r.Symbol] = r.Rank
	}

	top := ranked
	if len(top) > e.cfg.TopN {
		top = top[:e.cfg.TopN]
	}
	top = append([]model.RankedEntry(nil), top...)
	Annotate(top, prev)

	snap := &model.Snapshot{
		GeneratedAt:    generatedAt,
		Window:         e.cfg.Window,
		TopN:           e.cfg.TopN,
		TotalAttempted: len(series),
		StocksScreened: len(scores),
		Entries:        top,
		Skipped:        skipped,
	}
	snap.SortSkipped()
	return &Result{Snapshot: snap, Ranks: ranks}
}

// Score computes the RSL of every symbol with enough valid history.
// Symbols that cannot be scored are returned as skipped, never as errors.
func (e *Engine) Score(series model.PriceSeries) ([]Score, []model.Skipped) {
	symbols := make([]string, 0, len(series))
	for s := range series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	scores := make([]Score, 0, len(symbols))
	var skipped []model.Skipped
	for _, sym := range symbols {
		closes := model.Closes(series[sym])
		rsl, err := calculator.CalculateRSL(closes, e.cfg.Window)
		if err != nil {
			skipped = append(skipped, model.Skipped{
				Symbol:        sym,
				Reason:        skipReason(err),
				Detail:        skipDetail(err, len(closes), e.cfg.Window),
				DaysAvailable: len(closes),
			})
			continue
		}
		scores = append(scores, Score{Symbol: sym, Price: rsl.Current, SMA: rsl.SMA, RSL: rsl.Ratio})
	}
	return scores, skipped
}

// Rank sorts scores by descending RSL, breaking ties by symbol, and assigns
// 1-based ranks over the whole sequence.
func Rank(scores []Score) []model.RankedEntry {
	sorted := append([]Score(nil), scores...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RSL != sorted[j].RSL {
			return sorted[i].RSL > sorted[j].RSL
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	entries := make([]model.RankedEntry, len(sorted))
	for i, s := range sorted {
		entries[i] = model.RankedEntry{
			Symbol: s.Symbol,
			Price:  s.Price,
			SMA:    s.SMA,
			RSL:    s.RSL,
			Rank:   i + 1,
		}
	}
	return entries
}

// Annotate attaches the previous rank to each entry, or marks it new.
func Annotate(entries []model.RankedEntry, prev model.RankMap) {
	for i := range entries {
		if r, ok := prev[entries[i].Symbol]; ok {
			r := r
			entries[i].PrevRank = &r
			entries[i].IsNew = false
		} else {
			entries[i].PrevRank = nil
			entries[i].IsNew = true
		}
	}
}

func skipReason(err error) model.SkipReason {
	switch {
	case errors.Is(err, calculator.ErrInsufficientData):
		return model.SkipInsufficientHistory
	case errors.Is(err, calculator.ErrZeroAverage):
		return model.SkipZeroAverage
	default:
		return model.SkipInvalidPrice
	}
}

func skipDetail(err error, days, window int) string {
	if errors.Is(err, calculator.ErrInsufficientData) {
		return fmt.Sprintf("needs %d days, only %d available", window, days)
	}
	return err.Error()
}
