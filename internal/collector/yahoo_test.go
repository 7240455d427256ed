package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSLScreener/internal/model"
)

const chartJSON = `{"chart":{"result":[{
  "timestamp":[1700000000,1700086400,1700172800,1700259200],
  "indicators":{
    "quote":[{"close":[100.0,null,102.0,103.0]}],
    "adjclose":[{"adjclose":[50.0,null,51.0,51.5]}]
  }}],"error":null}}`

func newYahooTestServer(t *testing.T, status int, body string) *YahooFetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/VOLV-B.ST", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	return f
}

func TestYahooFetcher_FetchDailyCloses(t *testing.T) {
	f := newYahooTestServer(t, http.StatusOK, chartJSON)

	points, err := f.FetchDailyCloses(context.Background(), "VOLV-B.ST", 130)
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 51, 51.5}, model.Closes(points))
	assert.True(t, points[0].Time.Before(points[1].Time))

	points, err = f.FetchDailyCloses(context.Background(), "VOLV-B.ST", 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{51, 51.5}, model.Closes(points))
}

func TestYahooFetcher_FallsBackToClose(t *testing.T) {
	body := `{"chart":{"result":[{"timestamp":[1700000000,1700086400],
	  "indicators":{"quote":[{"close":[10.5,11.0]}]}}],"error":null}}`
	f := newYahooTestServer(t, http.StatusOK, body)

	points, err := f.FetchDailyCloses(context.Background(), "VOLV-B.ST", 130)
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 11.0}, model.Closes(points))
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		noData bool
	}{
		{"not found", http.StatusNotFound, `{}`, true},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, true},
		{"all null", http.StatusOK, `{"chart":{"result":[{"timestamp":[1],"indicators":{"quote":[{"close":[null]}]}}]}}`, true},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"x","description":"bad"}}}`, false},
		{"server error", http.StatusInternalServerError, `oops`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newYahooTestServer(t, tt.status, tt.body)
			_, err := f.FetchDailyCloses(context.Background(), "VOLV-B.ST", 10)
			require.Error(t, err)
			assert.Equal(t, tt.noData, errors.Is(err, ErrNoData))
		})
	}
}

func TestRESTFetcher_FetchDailyCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "ABB.ST", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`[{"timestamp":1700086400,"close":2},{"timestamp":1700000000,"close":1}]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	points, err := f.FetchDailyCloses(context.Background(), "ABB.ST", 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, model.Closes(points))
}
