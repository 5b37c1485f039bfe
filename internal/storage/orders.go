package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thetechguyfromvietnam/lolibub/internal/order"
)

// OrderLog writes one JSON file per accepted order into a local directory.
// Strictly observability: callers log a write failure and move on.
type OrderLog struct {
	dir string
}

// NewOrderLog creates an OrderLog rooted at dir.
func NewOrderLog(dir string) *OrderLog {
	return &OrderLog{dir: dir}
}

// Write persists the record as order_<unix-ms>.json, keyed by the
// acceptance timestamp.
func (l *OrderLog) Write(rec *order.Record) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create orders dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	name := fmt.Sprintf("order_%d.json", rec.Timestamp.UnixMilli())
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write order file: %w", err)
	}
	return nil
}
