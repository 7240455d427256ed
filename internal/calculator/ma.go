package calculator

import (
	"errors"
	"math"
)

var (
	ErrInsufficientData = errors.New("not enough data for SMA calculation")
	ErrInvalidPrice     = errors.New("price is not a positive finite number")
	// ErrZeroAverage guards the division. Positive window prices never
	// produce it.
	ErrZeroAverage = errors.New("moving average is zero")
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RSL is the Levy relative strength of one price series.
type RSL struct {
	Current float64
	SMA     float64
	Ratio   float64
}

// CalculateRSL returns the last close divided by the SMA of the last period closes.
// Every close inside the window must be positive and finite.
func CalculateRSL(prices []float64, period int) (RSL, error) {
	if period > 0 && len(prices) >= period {
		for _, p := range prices[len(prices)-period:] {
			if !validPrice(p) {
				return RSL{}, ErrInvalidPrice
			}
		}
	}
	sma, err := CalculateSMA(prices, period)
	if err != nil {
		return RSL{}, err
	}
	if math.IsInf(sma, 0) || math.IsNaN(sma) {
		// Finite closes near MaxFloat64 overflow the window sum.
		return RSL{}, ErrInvalidPrice
	}
	if sma == 0 {
		return RSL{}, ErrZeroAverage
	}
	current := prices[len(prices)-1]
	ratio := current / sma
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return RSL{}, ErrInvalidPrice
	}
	return RSL{Current: current, SMA: sma, Ratio: ratio}, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
