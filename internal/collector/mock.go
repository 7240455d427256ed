package collector

import (
	"context"
	"fmt"
	"time"

	"RSLScreener/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Closes map[string][]float64
	Errors map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyCloses(_ context.Context, symbol string, days int) ([]model.PricePoint, error) {
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	closes, ok := m.Closes[symbol]
	if !ok {
		return nil, fmt.Errorf("mock: %s: %w", symbol, ErrNoData)
	}
	return trimToLast(generateMockPoints(closes), days), nil
}

func generateMockPoints(closes []float64) []model.PricePoint {
	end := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{
			Time:  end.AddDate(0, 0, -(len(closes) - 1 - i)),
			Close: c,
		}
	}
	return points
}
