package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"oceanview-go/internal/market"
)

// featureRow is one dataset line: either a scored feature snapshot or a
// later outcome attachment referencing it by id. The file stays append-only;
// the retraining pipeline joins the two row kinds offline.
type featureRow struct {
	Kind     string                `json:"kind"` // "features" or "outcome"
	ID       int64                 `json:"id"`
	Ts       time.Time             `json:"ts"`
	Features *market.FeatureVector `json:"features,omitempty"`
	Score    *float64              `json:"score,omitempty"`
	Pnl      *float64              `json:"pnl,omitempty"`
}

// FeatureStore persists gatekeeper feature rows with monotonically
// increasing dataset ids.
type FeatureStore struct {
	mu     sync.Mutex
	file   *os.File
	enc    *json.Encoder
	nextID int64
}

// NewFeatureStore creates/opens the dataset file and resumes the id sequence
// from the highest id already present.
func NewFeatureStore(path string) (*FeatureStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dataset dir: %w", err)
	}
	maxID, err := scanMaxID(path)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return &FeatureStore{file: file, enc: json.NewEncoder(file), nextID: maxID}, nil
}

// LogFeatures appends a scored feature row and returns its dataset id.
func (f *FeatureStore) LogFeatures(fv market.FeatureVector, score float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return 0, fmt.Errorf("feature store closed")
	}
	f.nextID++
	row := featureRow{Kind: "features", ID: f.nextID, Ts: time.Now().UTC(), Features: &fv, Score: &score}
	if err := f.enc.Encode(row); err != nil {
		return 0, fmt.Errorf("append features: %w", err)
	}
	return f.nextID, nil
}

// UpdateOutcome appends the realized pnl for a previously logged row.
func (f *FeatureStore) UpdateOutcome(datasetID int64, pnl float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return fmt.Errorf("feature store closed")
	}
	if datasetID <= 0 || datasetID > f.nextID {
		return fmt.Errorf("unknown dataset id %d", datasetID)
	}
	row := featureRow{Kind: "outcome", ID: datasetID, Ts: time.Now().UTC(), Pnl: &pnl}
	if err := f.enc.Encode(row); err != nil {
		return fmt.Errorf("append outcome: %w", err)
	}
	return nil
}

// Close flushes and closes the dataset file.
func (f *FeatureStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

func scanMaxID(path string) (int64, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	var maxID int64
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var row featureRow
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			continue
		}
		if row.ID > maxID {
			maxID = row.ID
		}
	}
	return maxID, scanner.Err()
}
