package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"dealer-scraper/models"
)

func sampleListings(dealer string, names ...string) []*models.VehicleListing {
	out := make([]*models.VehicleListing, 0, len(names))
	for _, m := range names {
		out = append(out, &models.VehicleListing{
			Brand:      "JEEP",
			Model:      m,
			ListPrice:  "20000000",
			DealerName: dealer,
		})
	}
	return out
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCSVWriterHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "astara.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	if err := w.Write(sampleListings("Astara", "AVENGER", "COMPASS")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}
	if rows[0][0] != "brand" || rows[0][9] != "dealerName" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "AVENGER" || rows[1][3] != "20000000" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
}

func TestCSVWriterTruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astara.csv")
	w, _ := NewCSVWriter(path)

	if err := w.Write(sampleListings("Astara", "A", "B", "C")); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(sampleListings("Astara", "D")); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Errorf("second run should truncate: got %d rows, want header + 1", len(rows))
	}
}

func TestConsolidatedWriterAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global.csv")
	w, err := NewConsolidatedWriter(path)
	if err != nil {
		t.Fatalf("NewConsolidatedWriter: %v", err)
	}

	if err := w.Append(sampleListings("Astara", "AVENGER", "COMPASS")); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := w.Append(sampleListings("CIDEF", "RICH 6")); err != nil {
		t.Fatalf("second append: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows after two runs, got %d", len(rows))
	}

	headers := 0
	for _, r := range rows {
		if r[0] == "brand" {
			headers++
		}
	}
	if headers != 1 {
		t.Errorf("header should appear exactly once, found %d", headers)
	}
	if rows[3][9] != "CIDEF" {
		t.Errorf("second run's rows should follow the first: %v", rows[3])
	}
}

func TestConsolidatedWriterEmptyRunWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global.csv")
	w, _ := NewConsolidatedWriter(path)

	if err := w.Append(nil); err != nil {
		t.Fatalf("Append(nil): %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty run should not create the consolidated file")
	}
}
