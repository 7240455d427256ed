package store

import (
	"encoding/json"
	"fmt"
	"os"

	"RSLScreener/internal/model"
)

// RankStore persists the full-universe rank mapping between runs.
type RankStore struct {
	Path string
}

// NewRankStore creates a RankStore backed by a JSON file.
func NewRankStore(path string) *RankStore {
	return &RankStore{Path: path}
}

// Load reads the previous ranks. Returns an empty mapping if the file doesn't exist.
func (s *RankStore) Load() (model.RankMap, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RankMap{}, nil
		}
		return nil, fmt.Errorf("read ranks: %w", err)
	}
	ranks := model.RankMap{}
	if err := json.Unmarshal(data, &ranks); err != nil {
		return nil, fmt.Errorf("decode ranks: %w", err)
	}
	return ranks, nil
}

// Save replaces the stored mapping.
func (s *RankStore) Save(ranks model.RankMap) error {
	if ranks == nil {
		ranks = model.RankMap{}
	}
	return writeJSON(s.Path, ranks)
}
