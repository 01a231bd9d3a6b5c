// Package report writes the run artifacts: the failed-items file that
// feeds the retry-failed mode, and the console summary tables.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sahamkita/idxref/pkg/models"
)

// FailedFileName is the well-known name of the failure report inside the
// data directory.
const FailedFileName = "failed_data.json"

// WriteFailed persists the permanently failed items of a run. An empty
// list still writes the file so a later retry run sees a clean slate.
func WriteFailed(dir string, items []models.FailedItem) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	if items == nil {
		items = []models.FailedItem{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode failure report: %w", err)
	}
	path := filepath.Join(dir, FailedFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write failure report: %w", err)
	}
	return path, nil
}

// ReadFailed loads a previously written failure report. A missing file is
// an empty report, not an error.
func ReadFailed(dir string) ([]models.FailedItem, error) {
	data, err := os.ReadFile(filepath.Join(dir, FailedFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read failure report: %w", err)
	}

	var items []models.FailedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse failure report: %w", err)
	}
	return items, nil
}
