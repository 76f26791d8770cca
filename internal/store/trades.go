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

// TradeStore appends completed trades as JSON lines and reads windows of
// them back for the evolution loop.
type TradeStore struct {
	mu   sync.Mutex
	path string
	file *os.File
	enc  *json.Encoder
}

// NewTradeStore creates/opens the target file in append mode.
func NewTradeStore(path string) (*TradeStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create trades dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trades: %w", err)
	}
	return &TradeStore{path: path, file: file, enc: json.NewEncoder(file)}, nil
}

// Append writes one trade record.
func (t *TradeStore) Append(rec market.TradeRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return fmt.Errorf("trade store closed")
	}
	return t.enc.Encode(rec)
}

// LoadSince returns trades closed at or after the cutoff, in file order.
// Unparseable lines are skipped rather than failing the whole window.
func (t *TradeStore) LoadSince(cutoff time.Time) ([]market.TradeRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	file, err := os.Open(t.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open trades: %w", err)
	}
	defer file.Close()

	var out []market.TradeRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var rec market.TradeRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if rec.CloseTs.Before(cutoff) {
			continue
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("scan trades: %w", err)
	}
	return out, nil
}

// Close flushes and closes the underlying file.
func (t *TradeStore) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
