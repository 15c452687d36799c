package models

import "time"

// RawRecord holds unprocessed extracted data exactly as it came off a dealer
// page — selector text or LLM JSON output. Keys vary by source (Spanish and
// English aliases both occur); values may be strings, numbers or nil.
type RawRecord map[string]any

// VehicleListing is the canonical pricing record for one vehicle version at
// one dealer. Monetary fields hold plain ASCII-digit strings; the empty
// string means the value is absent (never zero).
type VehicleListing struct {
	Brand           string
	Model           string
	Version         string
	ListPrice       string
	BrandBonus      string
	FinancingBonus  string
	AllPaymentPrice string
	FinancedPrice   string
	SourceURL       string
	DealerName      string
}

// Placeholder returns a listing with identity fields set and every price
// absent. Scrapers append one of these when a page fails all retry attempts,
// so run counts stay aligned with the input list.
func Placeholder(brand, model, version, url, dealer string) *VehicleListing {
	return &VehicleListing{
		Brand:      brand,
		Model:      model,
		Version:    version,
		SourceURL:  url,
		DealerName: dealer,
	}
}

// ErrorEntry is one line of the scrape error log, written when a page is
// given up on after exhausting retries.
type ErrorEntry struct {
	Dealer    string
	Brand     string
	Model     string
	Version   string
	URL       string
	Err       string
	Timestamp time.Time
}
