package model

import "time"

// PricePoint is a single daily closing price.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// PriceSeries maps a symbol to its daily closes, ascending by date.
type PriceSeries map[string][]PricePoint

// Instrument is one member of the screened universe.
type Instrument struct {
	Name   string `json:"name"`
	Symbol string `json:"ticker"`
}

// Closes returns the closing prices of the given points in order.
func Closes(points []PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
