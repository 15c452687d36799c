package services

import (
	"dealer-scraper/config"
	"dealer-scraper/models"
)

// RejectReason identifies why a listing failed plausibility checks.
type RejectReason string

const (
	ReasonNone                       RejectReason = ""
	ReasonMissingListPrice           RejectReason = "MissingListPrice"
	ReasonBrandBonusImplausible      RejectReason = "BrandBonusImplausible"
	ReasonFinancingBonusImplausible  RejectReason = "FinancingBonusImplausible"
	ReasonAllPaymentPriceExceedsList RejectReason = "AllPaymentPriceExceedsList"
	ReasonFinancedPriceExceedsList   RejectReason = "FinancedPriceExceedsList"
)

// Outcome is the terminal validation result for one listing.
type Outcome struct {
	Accepted bool
	Reason   RejectReason
}

// Validate runs the plausibility checks in fixed order; the first failing
// check decides the rejection reason. A rejection is an expected outcome,
// not an error.
func Validate(l *models.VehicleListing, profile config.DealerProfile) Outcome {
	list, hasList := parsePrice(l.ListPrice)
	if !hasList || list <= 0 {
		return Outcome{Reason: ReasonMissingListPrice}
	}

	limit := profile.BonusThreshold * float64(list)

	if bonus, ok := parsePrice(l.BrandBonus); ok && float64(bonus) > limit {
		return Outcome{Reason: ReasonBrandBonusImplausible}
	}
	if bonus, ok := parsePrice(l.FinancingBonus); ok && float64(bonus) > limit {
		return Outcome{Reason: ReasonFinancingBonusImplausible}
	}
	if price, ok := parsePrice(l.AllPaymentPrice); ok && price > list {
		return Outcome{Reason: ReasonAllPaymentPriceExceedsList}
	}
	// Add-formula dealers quote the financed price above list by
	// construction, so the exceeds-list check only holds where the bonus is
	// a discount.
	if profile.FinancedFormula != config.FinancedAdd {
		if price, ok := parsePrice(l.FinancedPrice); ok && price > list {
			return Outcome{Reason: ReasonFinancedPriceExceedsList}
		}
	}

	return Outcome{Accepted: true}
}
