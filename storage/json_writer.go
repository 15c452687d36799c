package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dealer-scraper/models"
)

// JSONWriter keeps a timestamped JSON backup of a run's listings next to the
// CSV output, so a bad CSV consumer never loses a scrape.
type JSONWriter struct {
	dir string
}

// NewJSONWriter prepares a writer rooted at dir.
func NewJSONWriter(dir string) (*JSONWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{dir: dir}, nil
}

// Write serializes the listings to results_<date>.json and returns the path.
func (j *JSONWriter) Write(dealer string, listings []*models.VehicleListing) (string, error) {
	date := time.Now().Format("2006-01-02")
	path := filepath.Join(j.dir, fmt.Sprintf("results_%s_%s.json", dealer, date))

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json: marshal listings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("json: write %q: %w", path, err)
	}
	return path, nil
}
