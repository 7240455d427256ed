package store

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/shopspring/decimal"

	"RSLScreener/internal/model"
)

// SnapshotStore persists the published top-N snapshot.
type SnapshotStore struct {
	Path string
}

// NewSnapshotStore creates a SnapshotStore backed by a JSON file.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{Path: path}
}

// published wraps the snapshot with a display timestamp.
type published struct {
	Updated string `json:"updated"`
	*model.Snapshot
}

// Load reads the last published snapshot. Returns nil, nil if none exists.
func (s *SnapshotStore) Load() (*model.Snapshot, error) {
	data, err := s.raw()
	if err != nil || data == nil {
		return nil, err
	}
	var p published
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return p.Snapshot, nil
}

// Save writes the snapshot with display rounding applied.
func (s *SnapshotStore) Save(snap *model.Snapshot) error {
	out := Rounded(snap)
	return writeJSON(s.Path, published{
		Updated:  out.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"),
		Snapshot: out,
	})
}

func (s *SnapshotStore) raw() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Rounded returns a copy with prices and SMAs at 2 decimals and RSL at 4.
func Rounded(snap *model.Snapshot) *model.Snapshot {
	out := *snap
	out.Entries = make([]model.RankedEntry, len(snap.Entries))
	for i, e := range snap.Entries {
		e.Price = round(e.Price, 2)
		e.SMA = round(e.SMA, 2)
		e.RSL = round(e.RSL, 4)
		out.Entries[i] = e
	}
	if out.Entries == nil {
		out.Entries = []model.RankedEntry{}
	}
	if out.Skipped == nil {
		out.Skipped = []model.Skipped{}
	}
	return &out
}

func round(v float64, places int32) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		// Left for json.Marshal to reject.
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
