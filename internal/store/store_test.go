package store

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSLScreener/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	prev := 3
	return &model.Snapshot{
		GeneratedAt:    time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC),
		Window:         130,
		TopN:           20,
		TotalAttempted: 3,
		StocksScreened: 2,
		SkippedCount:   1,
		Entries: []model.RankedEntry{
			{Symbol: "ABB.ST", Name: "ABB Ltd", Price: 512.3456, SMA: 480.00499, RSL: 1.067358123, Rank: 1, PrevRank: &prev},
			{Symbol: "SAAB-B.ST", Name: "Saab AB", Price: 201.1, SMA: 199.9, RSL: 1.006003, Rank: 2, IsNew: true},
		},
		Skipped: []model.Skipped{
			{Symbol: "NEW.ST", Reason: model.SkipInsufficientHistory, DaysAvailable: 40},
		},
	}
}

func TestRankStore_RoundTrip(t *testing.T) {
	s := NewRankStore(filepath.Join(t.TempDir(), "data", "prev_ranks.json"))

	ranks, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, ranks)

	require.NoError(t, s.Save(model.RankMap{"ABB.ST": 1, "SAAB-B.ST": 2, "VOLV-B.ST": 57}))
	ranks, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, model.RankMap{"ABB.ST": 1, "SAAB-B.ST": 2, "VOLV-B.ST": 57}, ranks)
}

func TestRankStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prev_ranks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := NewRankStore(path).Load()
	assert.Error(t, err)
}

func TestSnapshotStore_SaveRoundsAndLoads(t *testing.T) {
	s := NewSnapshotStore(filepath.Join(t.TempDir(), "screener_data.json"))

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, s.Save(sampleSnapshot()))

	raw, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"updated": "2026-10-16 18:00 UTC"`)
	assert.Contains(t, string(raw), `"prev_rank": null`)

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, 512.35, got.Entries[0].Price)
	assert.Equal(t, 480.0, got.Entries[0].SMA)
	assert.Equal(t, 1.0674, got.Entries[0].RSL)
	require.NotNil(t, got.Entries[0].PrevRank)
	assert.Equal(t, 3, *got.Entries[0].PrevRank)
	assert.Nil(t, got.Entries[1].PrevRank)
	assert.True(t, got.Entries[1].IsNew)
	assert.Equal(t, 130, got.Window)
	assert.Equal(t, model.SkipInsufficientHistory, got.Skipped[0].Reason)
}

func TestSnapshotStore_NonFiniteValueIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener_data.json")
	snap := sampleSnapshot()
	snap.Entries[0].SMA = math.Inf(1)

	assert.NotPanics(t, func() {
		assert.Error(t, NewSnapshotStore(path).Save(snap))
	})
	assert.NoFileExists(t, path)
}

func TestRounded_DoesNotMutateInput(t *testing.T) {
	snap := sampleSnapshot()
	_ = Rounded(snap)
	assert.Equal(t, 512.3456, snap.Entries[0].Price)
}

func TestPublisher_Publish(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(
		NewSnapshotStore(filepath.Join(dir, "screener_data.json")),
		NewRankStore(filepath.Join(dir, "prev_ranks.json")),
	)
	require.NoError(t, p.Publish(sampleSnapshot(), model.RankMap{"ABB.ST": 1}))

	ranks, err := p.Ranks.Load()
	require.NoError(t, err)
	assert.Equal(t, model.RankMap{"ABB.ST": 1}, ranks)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestPublisher_RollsBackSnapshotWhenRanksFail(t *testing.T) {
	dir := t.TempDir()
	snapshots := NewSnapshotStore(filepath.Join(dir, "screener_data.json"))
	require.NoError(t, snapshots.Save(sampleSnapshot()))
	before, err := os.ReadFile(snapshots.Path)
	require.NoError(t, err)

	// A directory where the rank file should be makes the rename fail.
	ranksPath := filepath.Join(dir, "prev_ranks.json")
	require.NoError(t, os.MkdirAll(filepath.Join(ranksPath, "blocker"), 0755))

	next := sampleSnapshot()
	next.Entries = next.Entries[:1]
	err = NewPublisher(snapshots, NewRankStore(ranksPath)).Publish(next, model.RankMap{"ABB.ST": 1})
	require.Error(t, err)

	after, err := os.ReadFile(snapshots.Path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestPublisher_RemovesSnapshotWhenNoneExistedBefore(t *testing.T) {
	dir := t.TempDir()
	ranksPath := filepath.Join(dir, "prev_ranks.json")
	require.NoError(t, os.MkdirAll(filepath.Join(ranksPath, "blocker"), 0755))

	snapshots := NewSnapshotStore(filepath.Join(dir, "screener_data.json"))
	err := NewPublisher(snapshots, NewRankStore(ranksPath)).Publish(sampleSnapshot(), model.RankMap{})
	require.Error(t, err)

	_, statErr := os.Stat(snapshots.Path)
	assert.True(t, os.IsNotExist(statErr))
}
