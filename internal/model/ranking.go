package model

import (
	"sort"
	"time"
)

// RankMap maps a symbol to its rank in a full ranking pass.
type RankMap map[string]int

// RankedEntry is one scored instrument in the published ranking.
type RankedEntry struct {
	Symbol   string  `json:"ticker"`
	Name     string  `json:"name,omitempty"`
	Price    float64 `json:"price"`
	SMA      float64 `json:"sma"`
	RSL      float64 `json:"rsl"`
	Rank     int     `json:"rank"`
	PrevRank *int    `json:"prev_rank"` // nil when the symbol was not ranked last run
	IsNew    bool    `json:"is_new"`
}

// Delta returns how many places the entry moved since the previous run.
// Positive means it climbed. ok is false for new entries.
func (e RankedEntry) Delta() (delta int, ok bool) {
	if e.PrevRank == nil {
		return 0, false
	}
	return *e.PrevRank - e.Rank, true
}

// SkipReason classifies why a symbol was left out of the ranking.
type SkipReason string

const (
	SkipNoPriceData         SkipReason = "no_price_data"
	SkipFetchError          SkipReason = "fetch_error"
	SkipInsufficientHistory SkipReason = "insufficient_history"
	SkipInvalidPrice        SkipReason = "invalid_price"
	SkipZeroAverage         SkipReason = "zero_average"
)

// Skipped records an instrument that could not be scored.
type Skipped struct {
	Symbol        string     `json:"ticker"`
	Name          string     `json:"name,omitempty"`
	Reason        SkipReason `json:"reason"`
	Detail        string     `json:"detail,omitempty"`
	DaysAvailable int        `json:"days_available"`
}

// Snapshot is the published result of one ranking run.
type Snapshot struct {
	GeneratedAt    time.Time     `json:"generated_at"`
	Window         int           `json:"period_days"`
	TopN           int           `json:"top_n"`
	TotalAttempted int           `json:"total_attempted"`
	StocksScreened int           `json:"stocks_screened"`
	SkippedCount   int           `json:"skipped_count"`
	Entries        []RankedEntry `json:"top"`
	Skipped        []Skipped     `json:"skipped"`
}

// SortSkipped orders the skip list by available history, then symbol.
func (s *Snapshot) SortSkipped() {
	sort.Slice(s.Skipped, func(i, j int) bool {
		a, b := s.Skipped[i], s.Skipped[j]
		if a.DaysAvailable != b.DaysAvailable {
			return a.DaysAvailable < b.DaysAvailable
		}
		return a.Symbol < b.Symbol
	})
	s.SkippedCount = len(s.Skipped)
}

// ApplyNames fills in instrument names for entries and skipped symbols.
func (s *Snapshot) ApplyNames(names map[string]string) {
	for i := range s.Entries {
		if n, ok := names[s.Entries[i].Symbol]; ok {
			s.Entries[i].Name = n
		}
	}
	for i := range s.Skipped {
		if n, ok := names[s.Skipped[i].Symbol]; ok && s.Skipped[i].Name == "" {
			s.Skipped[i].Name = n
		}
	}
}
