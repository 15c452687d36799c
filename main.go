package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dealer-scraper/config"
	"dealer-scraper/scraper"
	"dealer-scraper/services"
	"dealer-scraper/storage"
	"dealer-scraper/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Verbose)

	if len(os.Args) < 2 || os.Args[1] == "list" {
		printDealers()
		return
	}
	dealerKey := strings.ToLower(os.Args[1])

	logger.Info("=== Dealer Price Scraper starting ===")
	logger.Info("Config — dealer: %s | retries: %d | page delay: %dms | output: %s",
		dealerKey, cfg.MaxRetries, cfg.PageDelayMs, cfg.OutputDir)

	profiles, err := config.LoadProfiles(cfg.ProfilesPath)
	if err != nil {
		logger.Error("Failed to load dealer profiles: %v", err)
		os.Exit(1)
	}
	profile, err := profiles.Get(dealerKey)
	if err != nil {
		logger.Error("%v", err)
		printDealers()
		os.Exit(1)
	}

	factory, err := scraper.Lookup(dealerKey)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	// Output artifacts are prepared before scraping so an unwritable output
	// directory fails the run immediately, not after an hour of page visits.
	csvWriter, err := storage.NewCSVWriter(filepath.Join(cfg.OutputDir, dealerKey+".csv"))
	if err != nil {
		logger.Error("Failed to prepare dealer CSV: %v", err)
		os.Exit(1)
	}
	globalWriter, err := storage.NewConsolidatedWriter(filepath.Join(cfg.OutputDir, cfg.GlobalCSVName))
	if err != nil {
		logger.Error("Failed to prepare consolidated CSV: %v", err)
		os.Exit(1)
	}
	jsonWriter, err := storage.NewJSONWriter(cfg.OutputDir)
	if err != nil {
		logger.Error("Failed to prepare JSON backup dir: %v", err)
		os.Exit(1)
	}
	errlog, err := storage.NewErrorLog(filepath.Join(cfg.OutputDir, cfg.ErrorLogName))
	if err != nil {
		logger.Error("Failed to prepare error log: %v", err)
		os.Exit(1)
	}

	site := factory(cfg, profile, logger, errlog)
	rawRecords, err := site.Scrape()
	if err != nil {
		logger.Error("Scrape failed: %v", err)
		os.Exit(1)
	}
	if len(rawRecords) == 0 {
		logger.Error("No records were scraped. Exiting.")
		os.Exit(1)
	}
	logger.Info("Scraped %d raw records — processing...", len(rawRecords))

	processor := services.NewProcessor(profile, logger)
	processor.ProcessAll(rawRecords)
	accepted := processor.Accepted()

	// Persistence is best-effort from here on: one failing sink must not
	// discard what the others can still flush.
	if err := csvWriter.Write(accepted); err != nil {
		logger.Error("Dealer CSV write failed: %v", err)
	} else {
		logger.Info("Dealer CSV saved: %s", filepath.Join(cfg.OutputDir, dealerKey+".csv"))
	}
	if err := globalWriter.Append(accepted); err != nil {
		logger.Error("Consolidated CSV append failed: %v", err)
	} else if len(accepted) > 0 {
		logger.Info("Appended %d rows to %s", len(accepted), cfg.GlobalCSVName)
	}
	if path, err := jsonWriter.Write(dealerKey, accepted); err != nil {
		logger.Error("JSON backup failed: %v", err)
	} else {
		logger.Info("JSON backup saved: %s", path)
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			defer pgWriter.Close()
			if err := pgWriter.Write(accepted); err != nil {
				logger.Error("PostgreSQL write failed: %v", err)
			} else {
				logger.Info("Listings stored in PostgreSQL (table: vehicle_listings)")
				if counts, err := pgWriter.CountByDealer(); err != nil {
					logger.Error("PostgreSQL count query failed: %v", err)
				} else {
					for dealer, n := range counts {
						logger.Info("  stored rows — %s: %d", dealer, n)
					}
				}
			}
		}
	}

	printSummary(processor.Summary())
}

func printDealers() {
	fmt.Println("\nAvailable dealers:")
	for _, name := range scraper.Names() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nUsage: dealer-scraper <dealer> | list")
}

func printSummary(s services.Summary) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("  RUN SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("  Attempted:  %d\n", s.Attempted)
	fmt.Printf("  Accepted:   %d\n", s.Accepted)
	fmt.Printf("  Rejected:   %d\n", s.Rejected)
	fmt.Printf("  Duplicates: %d\n", s.Duplicates)
	fmt.Printf("  Rate:       %.1f%%\n", s.Rate*100)
	for reason, n := range s.ByReason {
		fmt.Printf("    %-28s %d\n", reason, n)
	}
	fmt.Println(strings.Repeat("=", 50))
}
