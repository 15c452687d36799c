package services

import (
	"testing"

	"dealer-scraper/models"
)

func TestValidateMissingListPrice(t *testing.T) {
	tests := []struct {
		name    string
		listing models.VehicleListing
	}{
		{"absent", models.VehicleListing{Model: "YARIS", BrandBonus: "1000000"}},
		{"zero", models.VehicleListing{Model: "YARIS", ListPrice: "0"}},
		{"garbage", models.VehicleListing{Model: "YARIS", ListPrice: "n/a"}},
	}

	for _, tt := range tests {
		outcome := Validate(&tt.listing, subtractProfile())
		if outcome.Accepted {
			t.Errorf("%s: expected rejection", tt.name)
		}
		if outcome.Reason != ReasonMissingListPrice {
			t.Errorf("%s: reason = %q; want MissingListPrice", tt.name, outcome.Reason)
		}
	}
}

func TestValidateBrandBonusImplausible(t *testing.T) {
	l := &models.VehicleListing{
		ListPrice:  "10000000",
		BrandBonus: "6000000", // 60% of list
	}

	outcome := Validate(l, subtractProfile())
	if outcome.Reason != ReasonBrandBonusImplausible {
		t.Errorf("reason = %q; want BrandBonusImplausible", outcome.Reason)
	}
}

func TestValidateThresholdIsPerDealer(t *testing.T) {
	// 40% bonus: fine under the 0.5 profile, implausible under 0.3.
	l := models.VehicleListing{
		ListPrice:  "10000000",
		BrandBonus: "4000000",
	}

	loose := subtractProfile()
	strict := subtractProfile()
	strict.BonusThreshold = 0.3

	if outcome := Validate(&l, loose); !outcome.Accepted {
		t.Errorf("0.5 profile should accept 40%% bonus, got %q", outcome.Reason)
	}
	if outcome := Validate(&l, strict); outcome.Reason != ReasonBrandBonusImplausible {
		t.Errorf("0.3 profile should reject 40%% bonus, got %q", outcome.Reason)
	}
}

func TestValidateFinancingBonusImplausible(t *testing.T) {
	l := &models.VehicleListing{
		ListPrice:      "10000000",
		FinancingBonus: "5000001",
	}

	outcome := Validate(l, subtractProfile())
	if outcome.Reason != ReasonFinancingBonusImplausible {
		t.Errorf("reason = %q; want FinancingBonusImplausible", outcome.Reason)
	}
}

func TestValidateDerivedPricesMustNotExceedList(t *testing.T) {
	tests := []struct {
		name    string
		listing models.VehicleListing
		want    RejectReason
	}{
		{
			"all-payment above list",
			models.VehicleListing{ListPrice: "10000000", AllPaymentPrice: "11000000"},
			ReasonAllPaymentPriceExceedsList,
		},
		{
			"financed above list",
			models.VehicleListing{ListPrice: "10000000", FinancedPrice: "10000001"},
			ReasonFinancedPriceExceedsList,
		},
	}

	for _, tt := range tests {
		outcome := Validate(&tt.listing, subtractProfile())
		if outcome.Reason != tt.want {
			t.Errorf("%s: reason = %q; want %q", tt.name, outcome.Reason, tt.want)
		}
	}
}

func TestValidateFinancedAboveListAllowedOnAddFormula(t *testing.T) {
	// An add-formula dealer's financed price sits above list whenever a
	// financing bonus exists; that must not count against the listing.
	l := models.VehicleListing{
		ListPrice:      "20000000",
		FinancingBonus: "2000000",
		FinancedPrice:  "22000000",
	}

	if outcome := Validate(&l, addProfile()); !outcome.Accepted {
		t.Errorf("add profile should accept financed > list, got %q", outcome.Reason)
	}
	if outcome := Validate(&l, subtractProfile()); outcome.Reason != ReasonFinancedPriceExceedsList {
		t.Errorf("subtract profile should reject financed > list, got %q", outcome.Reason)
	}
}

func TestValidateCheckOrderFirstMatchWins(t *testing.T) {
	// Both the brand bonus and the financed price are implausible; the brand
	// bonus check runs first.
	l := &models.VehicleListing{
		ListPrice:     "10000000",
		BrandBonus:    "9000000",
		FinancedPrice: "12000000",
	}

	outcome := Validate(l, subtractProfile())
	if outcome.Reason != ReasonBrandBonusImplausible {
		t.Errorf("reason = %q; want first failing check (BrandBonusImplausible)", outcome.Reason)
	}
}

func TestValidateAcceptsPlausibleListing(t *testing.T) {
	l := &models.VehicleListing{
		Brand:           "MAZDA",
		Model:           "CX-3",
		ListPrice:       "15000000",
		BrandBonus:      "1000000",
		AllPaymentPrice: "14000000",
	}

	outcome := Validate(l, subtractProfile())
	if !outcome.Accepted {
		t.Errorf("expected acceptance, got %q", outcome.Reason)
	}
	if outcome.Reason != ReasonNone {
		t.Errorf("accepted listing should carry no reason, got %q", outcome.Reason)
	}
}

func TestValidateBonusExactlyAtThresholdAccepted(t *testing.T) {
	l := &models.VehicleListing{
		ListPrice:  "10000000",
		BrandBonus: "5000000",
	}

	if outcome := Validate(l, subtractProfile()); !outcome.Accepted {
		t.Errorf("bonus at exactly 50%% should pass, got %q", outcome.Reason)
	}
}
