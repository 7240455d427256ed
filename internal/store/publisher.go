package store

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"RSLScreener/internal/model"
)

// Publisher writes a run's outputs as a unit: the snapshot and the rank
// mapping are either both replaced or both left as they were.
type Publisher struct {
	Snapshots *SnapshotStore
	Ranks     *RankStore
}

// NewPublisher creates a Publisher.
func NewPublisher(snapshots *SnapshotStore, ranks *RankStore) *Publisher {
	return &Publisher{Snapshots: snapshots, Ranks: ranks}
}

// Publish writes the snapshot, then the ranks. If the ranks cannot be
// written the previous snapshot is restored.
func (p *Publisher) Publish(snap *model.Snapshot, ranks model.RankMap) error {
	previous, err := p.Snapshots.raw()
	if err != nil {
		return err
	}
	if err := p.Snapshots.Save(snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := p.Ranks.Save(ranks); err != nil {
		if rbErr := p.restore(previous); rbErr != nil {
			log.Error().Err(rbErr).Str("path", p.Snapshots.Path).Msg("snapshot rollback failed")
		}
		return fmt.Errorf("write ranks: %w", err)
	}
	return nil
}

func (p *Publisher) restore(previous []byte) error {
	if previous == nil {
		if err := os.Remove(p.Snapshots.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return writeFileAtomic(p.Snapshots.Path, previous)
}
