package universe

import (
	"context"
	"strings"

	"RSLScreener/internal/model"
)

// Source resolves the list of instruments to screen.
type Source interface {
	Instruments(ctx context.Context) ([]model.Instrument, error)
	Name() string
}

// Static is a fixed symbol list from configuration.
type Static struct {
	Symbols []string
}

func (s *Static) Name() string { return "static" }

// Instruments returns the configured symbols, deduplicated, in order.
func (s *Static) Instruments(_ context.Context) ([]model.Instrument, error) {
	seen := make(map[string]bool, len(s.Symbols))
	out := make([]model.Instrument, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, model.Instrument{Name: sym, Symbol: sym})
	}
	return out, nil
}

// Names indexes instrument names by symbol.
func Names(instruments []model.Instrument) map[string]string {
	names := make(map[string]string, len(instruments))
	for _, in := range instruments {
		names[in.Symbol] = in.Name
	}
	return names
}
