package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"settlement-compare/internal/model"
)

// Snapshot is a saved upstream response for one endpoint and settlement date.
type Snapshot struct {
	Endpoint  string            `json:"endpoint"`
	Date      string            `json:"date"`
	FetchedAt string            `json:"fetched_at"` // ISO 8601 timestamp
	Records   []model.RawRecord `json:"records"`
}

// SnapshotPath returns <dir>/<endpoint>_<date>.json.
func SnapshotPath(dir, endpoint, date string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.json", endpoint, date))
}

// LoadSnapshot loads a snapshot from a JSON file
func LoadSnapshot(filePath string) (*Snapshot, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	return &snap, nil
}

// SaveSnapshot saves a snapshot to a JSON file
func SaveSnapshot(snap *Snapshot, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return nil
}

// FileSource replays snapshots saved under Dir instead of calling the API.
type FileSource struct {
	Dir string
}

func (s *FileSource) IndicatedImbalance(_ context.Context, date string, periods []model.SettlementPeriod) ([]model.RawRecord, error) {
	want := make(map[model.SettlementPeriod]bool, len(periods))
	for _, p := range periods {
		want[p] = true
	}
	return s.load(EndpointImbalance, date, func(p model.SettlementPeriod) bool { return want[p] })
}

func (s *FileSource) GenerationForecast(_ context.Context, date string, from, to model.SettlementPeriod) ([]model.RawRecord, error) {
	return s.load(EndpointForecast, date, func(p model.SettlementPeriod) bool { return p >= from && p <= to })
}

func (s *FileSource) GenerationActual(_ context.Context, date string, from, to model.SettlementPeriod) ([]model.RawRecord, error) {
	return s.load(EndpointActual, date, func(p model.SettlementPeriod) bool { return p >= from && p <= to })
}

func (s *FileSource) load(endpoint, date string, keep func(model.SettlementPeriod) bool) ([]model.RawRecord, error) {
	snap, err := LoadSnapshot(SnapshotPath(s.Dir, endpoint, date))
	if err != nil {
		return nil, err
	}
	out := make([]model.RawRecord, 0, len(snap.Records))
	for _, r := range snap.Records {
		if keep(r.SettlementPeriod) {
			out = append(out, r)
		}
	}
	return out, nil
}
