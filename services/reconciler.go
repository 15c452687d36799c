package services

import (
	"strconv"

	"dealer-scraper/config"
	"dealer-scraper/models"
)

// Reconcile fills derivable price fields in place and returns the listing.
// Extracted values are never overwritten — only gaps are filled, and only
// when both operands are present. With no bonus there is no guessing.
func Reconcile(l *models.VehicleListing, profile config.DealerProfile) *models.VehicleListing {
	list, hasList := parsePrice(l.ListPrice)
	if !hasList {
		return l
	}

	if l.AllPaymentPrice == "" {
		if bonus, ok := parsePrice(l.BrandBonus); ok {
			l.AllPaymentPrice = strconv.FormatInt(list-bonus, 10)
		}
	}

	if l.FinancedPrice == "" {
		if bonus, ok := parsePrice(l.FinancingBonus); ok {
			switch profile.FinancedFormula {
			case config.FinancedAdd:
				l.FinancedPrice = strconv.FormatInt(list+bonus, 10)
			case config.FinancedSubtract:
				l.FinancedPrice = strconv.FormatInt(list-bonus, 10)
			}
		}
	}

	return l
}

// parsePrice converts a normalized digit string to an integer. The second
// return is false when the field is absent or unparseable.
func parsePrice(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
