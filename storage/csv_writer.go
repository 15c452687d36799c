package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"dealer-scraper/models"
)

// header is the fixed column order for every CSV artifact. Consumers join
// per-dealer files against the consolidated file by position, so the order
// never changes.
var header = []string{
	"brand", "model", "version",
	"listPrice", "brandBonus", "financingBonus",
	"allPaymentPrice", "financedPrice",
	"sourceUrl", "dealerName",
}

func row(l *models.VehicleListing) []string {
	return []string{
		l.Brand, l.Model, l.Version,
		l.ListPrice, l.BrandBonus, l.FinancingBonus,
		l.AllPaymentPrice, l.FinancedPrice,
		l.SourceURL, l.DealerName,
	}
}

// CSVWriter writes one run's accepted listings to a per-dealer CSV file,
// truncating any previous run's output.
type CSVWriter struct {
	path string
}

// NewCSVWriter prepares a writer for the given path. Intermediate
// directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// Write creates the file, writes the header row and all listings.
func (c *CSVWriter) Write(listings []*models.VehicleListing) error {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, l := range listings {
		if err := w.Write(row(l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Close is a no-op; the file handle only lives inside Write.
func (c *CSVWriter) Close() error { return nil }

// ConsolidatedWriter appends accepted listings to the one global CSV shared
// by all dealer runs. The header is written exactly once, when the file is
// first created; later runs only append rows.
type ConsolidatedWriter struct {
	path string
}

// NewConsolidatedWriter prepares an appender for the consolidated file.
func NewConsolidatedWriter(path string) (*ConsolidatedWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &ConsolidatedWriter{path: path}, nil
}

// Append adds the listings to the consolidated file, creating it with a
// header if needed.
func (c *ConsolidatedWriter) Append(listings []*models.VehicleListing) error {
	if len(listings) == 0 {
		return nil
	}

	_, statErr := os.Stat(c.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("csv: open consolidated file %q: %w", c.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
	}
	for _, l := range listings {
		if err := w.Write(row(l)); err != nil {
			return fmt.Errorf("csv: append row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
