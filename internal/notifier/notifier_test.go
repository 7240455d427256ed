package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSLScreener/internal/model"
)

func intPtr(v int) *int { return &v }

func TestFormatRankingReport(t *testing.T) {
	snap := &model.Snapshot{
		GeneratedAt:    time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC),
		Window:         130,
		TopN:           3,
		StocksScreened: 250,
		SkippedCount:   12,
		Entries: []model.RankedEntry{
			{Symbol: "ABB.ST", Name: "ABB <Ltd>", RSL: 1.2345, Rank: 1, PrevRank: intPtr(4)},
			{Symbol: "SAAB-B.ST", RSL: 1.2, Rank: 2, PrevRank: intPtr(1)},
			{Symbol: "ERIC-B.ST", RSL: 1.1, Rank: 3, PrevRank: intPtr(3)},
			{Symbol: "NEW.ST", RSL: 1.05, Rank: 4, IsNew: true},
		},
	}
	out := FormatRankingReport(snap)

	assert.Contains(t, out, "RSL Top 3</b> | 2026-10-16")
	assert.Contains(t, out, "SMA130 · 250 screened · 12 skipped")
	assert.Contains(t, out, "ABB &lt;Ltd&gt;  RSL 1.2345  ▲3")
	assert.Contains(t, out, "SAAB-B.ST  RSL 1.2000  ▼1")
	assert.Contains(t, out, "ERIC-B.ST  RSL 1.1000  =")
	assert.Contains(t, out, "NEW.ST  RSL 1.0500  🆕")
}

func TestFormatRankingReport_Empty(t *testing.T) {
	out := FormatRankingReport(&model.Snapshot{TopN: 20})
	assert.Contains(t, out, "No symbol could be ranked")
}

func TestFormatRankingPlain(t *testing.T) {
	out := FormatRankingPlain(&model.Snapshot{
		TopN:           2,
		Window:         130,
		TotalAttempted: 3,
		StocksScreened: 2,
		SkippedCount:   1,
		Entries: []model.RankedEntry{
			{Symbol: "ABB.ST", Price: 512.4, SMA: 470.1, RSL: 1.09, Rank: 1, PrevRank: intPtr(3)},
			{Symbol: "VOLV-B.ST", Price: 250, SMA: 240, RSL: 1.0417, Rank: 2, IsNew: true},
		},
	})
	assert.Contains(t, out, "ABB.ST")
	assert.Contains(t, out, "+2")
	assert.Contains(t, out, "new")
	assert.Contains(t, out, "2 of 3 screened, 1 skipped")
}

func TestFormatRunFailure(t *testing.T) {
	assert.Contains(t, FormatRunFailure(errors.New("a < b")), "a &lt; b")
}

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	require.NoError(t, tn.Send(context.Background(), "hello"))
	assert.Equal(t, map[string]string{"chat_id": "42", "text": "hello", "parse_mode": "HTML"}, got)
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	require.NoError(t, tn.SendWithRetry(context.Background(), "hello", 2))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTelegramNotifier_SendWithRetryCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.Error(t, tn.SendWithRetry(ctx, "hello", 5))
}

func TestTelegramNotifier_StartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var polls int32
	replies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if atomic.AddInt32(&polls, 1) == 1 {
				_, _ = w.Write([]byte(`{"ok":true,"result":[
					{"update_id":10,"message":{"text":"/top","chat":{"id":999}}},
					{"update_id":11,"message":{"text":" /top ","chat":{"id":42}}}]}`))
				return
			}
			assert.Equal(t, "12", r.URL.Query().Get("offset"))
			<-r.Context().Done()
		case "/botTOKEN/sendMessage":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL

	var handled []string
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(cmd string) string {
			handled = append(handled, cmd)
			return "reply to " + cmd
		})
		close(done)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "reply to /top", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	<-done
	assert.Equal(t, []string{"/top"}, handled)
}
