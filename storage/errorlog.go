package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dealer-scraper/models"
)

// ErrorLog is the append-only scrape error log. One entry per page that
// exhausted its retry attempts, with enough context to re-scrape by hand.
type ErrorLog struct {
	path string
}

// NewErrorLog prepares the log file at path.
func NewErrorLog(path string) (*ErrorLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("errorlog: create dir: %w", err)
	}
	return &ErrorLog{path: path}, nil
}

// Append writes one entry to the log.
func (e *ErrorLog) Append(entry models.ErrorEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("errorlog: open %q: %w", e.path, err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "[%s]\nDealer: %s\nVehicle: %s %s %s\nURL: %s\nError: %s\n\n",
		entry.Timestamp.Format(time.RFC3339),
		entry.Dealer, entry.Brand, entry.Model, entry.Version,
		entry.URL, entry.Err)
	if err != nil {
		return fmt.Errorf("errorlog: append: %w", err)
	}
	return nil
}
