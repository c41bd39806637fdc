package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"menu-optimizer/internal/catalog"
)

// FoodStore provides file-based storage for food lists and price snapshots.
type FoodStore struct {
	basePath string
}

// NewFoodStore creates a new FoodStore and ensures the base directory exists.
func NewFoodStore(basePath string) (*FoodStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FoodStore{basePath: basePath}, nil
}

// PriceSnapshot is the result of one price refresh: food id to source to
// price per 100 grams.
type PriceSnapshot struct {
	TakenAt time.Time                     `json:"taken_at"`
	Prices  map[string]map[string]float64 `json:"prices"`
}

// sanitizeTimestamp makes the timestamp safe for filenames.
func sanitizeTimestamp(ts string) string {
	return strings.ReplaceAll(ts, ":", "-")
}

func (s *FoodStore) snapshotPath(name string, at time.Time) string {
	filename := fmt.Sprintf("%s_%s.json", name, sanitizeTimestamp(at.UTC().Format(time.RFC3339)))
	return filepath.Join(s.basePath, filename)
}

// ExportFoods writes a food list as indented JSON.
func ExportFoods(path string, foods []catalog.RawFood) error {
	if foods == nil {
		foods = []catalog.RawFood{}
	}
	data, err := json.MarshalIndent(foods, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal foods: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write foods file: %w", err)
	}
	return nil
}

// ImportFoods reads a food list written by ExportFoods. Records without an
// id or a name are rejected.
func ImportFoods(path string) ([]catalog.RawFood, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read foods file: %w", err)
	}

	var foods []catalog.RawFood
	if err := json.Unmarshal(data, &foods); err != nil {
		return nil, fmt.Errorf("failed to unmarshal foods: %w", err)
	}
	for i, f := range foods {
		if f.Key() == "" {
			return nil, fmt.Errorf("food record %d has neither id nor name", i)
		}
	}
	return foods, nil
}

// SaveSnapshot stores a price snapshot under name, versioned by its time.
func (s *FoodStore) SaveSnapshot(name string, snap PriceSnapshot) (string, error) {
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now()
	}
	snap.TakenAt = snap.TakenAt.UTC().Truncate(time.Second)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal price snapshot: %w", err)
	}

	filePath := s.snapshotPath(name, snap.TakenAt)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write price snapshot: %w", err)
	}
	return filePath, nil
}

// Versions lists the snapshot files stored under name, oldest first.
func (s *FoodStore) Versions(name string) ([]string, error) {
	pattern := filepath.Join(s.basePath, fmt.Sprintf("%s_*.json", name))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob snapshot files: %w", err)
	}
	// RFC 3339 UTC timestamps sort lexically.
	sort.Strings(matches)
	return matches, nil
}

// LatestSnapshot loads the newest snapshot stored under name. It returns
// nil if there is none.
func (s *FoodStore) LatestSnapshot(name string) (*PriceSnapshot, error) {
	versions, err := s.Versions(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, nil
	}

	data, err := os.ReadFile(versions[len(versions)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to read price snapshot: %w", err)
	}
	var snap PriceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price snapshot: %w", err)
	}
	return &snap, nil
}

// RemoveStaleVersions keeps the newest keep snapshots under name and removes
// the rest. It returns the number of files removed.
func (s *FoodStore) RemoveStaleVersions(name string, keep int) (int, error) {
	versions, err := s.Versions(name)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(versions) <= keep {
		return 0, nil
	}

	stale := versions[:len(versions)-keep]
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("failed to remove stale file %s: %w", path, err)
		}
	}
	return len(stale), nil
}
