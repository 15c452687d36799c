package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"dealer-scraper/models"
)

// PostgresWriter persists accepted listings to PostgreSQL. Rows accumulate
// across runs; re-scraping the same dealer replaces only that dealer's rows.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, ensures the schema
// exists, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS vehicle_listings (
			id                SERIAL PRIMARY KEY,
			brand             TEXT NOT NULL DEFAULT '',
			model             TEXT NOT NULL DEFAULT '',
			version           TEXT NOT NULL DEFAULT '',
			list_price        BIGINT,
			brand_bonus       BIGINT,
			financing_bonus   BIGINT,
			all_payment_price BIGINT,
			financed_price    BIGINT,
			source_url        TEXT NOT NULL DEFAULT '',
			dealer_name       TEXT NOT NULL,
			scraped_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_vehicle_listings_dealer ON vehicle_listings(dealer_name);
		CREATE INDEX IF NOT EXISTS idx_vehicle_listings_brand  ON vehicle_listings(brand);
		CREATE INDEX IF NOT EXISTS idx_vehicle_listings_model  ON vehicle_listings(model);
	`)
	return err
}

// ClearDealer deletes a dealer's rows ahead of a fresh scrape.
func (pw *PostgresWriter) ClearDealer(dealer string) error {
	_, err := pw.db.Exec("DELETE FROM vehicle_listings WHERE dealer_name = $1", dealer)
	if err != nil {
		return fmt.Errorf("postgres: clear dealer %q: %w", dealer, err)
	}
	return nil
}

// Write batch-inserts a run's listings, replacing the dealer's old rows.
// All listings in one call belong to the same dealer run.
func (pw *PostgresWriter) Write(listings []*models.VehicleListing) error {
	if len(listings) == 0 {
		return nil
	}

	if err := pw.ClearDealer(listings[0].DealerName); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.VehicleListing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*10)

	for idx, l := range batch {
		base := idx * 10
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5,
				base+6, base+7, base+8, base+9, base+10))
		valueArgs = append(valueArgs,
			l.Brand, l.Model, l.Version,
			nullablePrice(l.ListPrice), nullablePrice(l.BrandBonus),
			nullablePrice(l.FinancingBonus), nullablePrice(l.AllPaymentPrice),
			nullablePrice(l.FinancedPrice),
			l.SourceURL, l.DealerName)
	}

	query := fmt.Sprintf(`
		INSERT INTO vehicle_listings
			(brand, model, version, list_price, brand_bonus, financing_bonus,
			 all_payment_price, financed_price, source_url, dealer_name)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// nullablePrice maps the absent sentinel to SQL NULL so aggregate queries
// never mistake missing prices for zero.
func nullablePrice(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// CountByDealer returns stored row counts per dealer — used for the run
// report.
func (pw *PostgresWriter) CountByDealer() (map[string]int, error) {
	rows, err := pw.db.Query(`
		SELECT dealer_name, COUNT(*)
		FROM vehicle_listings
		GROUP BY dealer_name
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: count by dealer: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var dealer string
		var n int
		if err := rows.Scan(&dealer, &n); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		counts[dealer] = n
	}
	return counts, rows.Err()
}
