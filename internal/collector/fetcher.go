package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"RSLScreener/internal/model"
)

// ErrNoData is returned when a source has no closes for a symbol.
var ErrNoData = errors.New("no price data returned")

// Fetcher defines the interface for fetching daily closing prices.
type Fetcher interface {
	// FetchDailyCloses returns up to days most recent closes, ascending by date.
	FetchDailyCloses(ctx context.Context, symbol string, days int) ([]model.PricePoint, error)
	Name() string
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func trimToLast(points []model.PricePoint, n int) []model.PricePoint {
	if n > 0 && len(points) > n {
		return points[len(points)-n:]
	}
	return points
}
