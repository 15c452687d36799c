package services

import (
	"testing"

	"dealer-scraper/models"
)

func TestAccumulatorCountsAndRate(t *testing.T) {
	acc := NewAccumulator()

	acc.Record(&models.VehicleListing{Model: "A"}, Outcome{Accepted: true})
	acc.Record(&models.VehicleListing{Model: "B"}, Outcome{Accepted: true})
	acc.Record(&models.VehicleListing{Model: "C"}, Outcome{Reason: ReasonMissingListPrice})
	acc.Record(&models.VehicleListing{Model: "D"}, Outcome{Reason: ReasonBrandBonusImplausible})

	s := acc.Summary()
	if s.Attempted != 4 {
		t.Errorf("Attempted = %d; want 4", s.Attempted)
	}
	if s.Accepted != 2 {
		t.Errorf("Accepted = %d; want 2", s.Accepted)
	}
	if s.Rejected != 2 {
		t.Errorf("Rejected = %d; want 2", s.Rejected)
	}
	if s.Rate != 0.5 {
		t.Errorf("Rate = %v; want 0.5", s.Rate)
	}
	if s.ByReason[ReasonMissingListPrice] != 1 || s.ByReason[ReasonBrandBonusImplausible] != 1 {
		t.Errorf("ByReason = %v; want one of each", s.ByReason)
	}
}

func TestAccumulatorEmptyRunRateZero(t *testing.T) {
	s := NewAccumulator().Summary()
	if s.Attempted != 0 || s.Rate != 0 {
		t.Errorf("empty run: %+v; want zero counts and rate", s)
	}
}

func TestAccumulatorDedupByModelVersion(t *testing.T) {
	acc := NewAccumulator()

	a := &models.VehicleListing{Model: "AVENGER", Version: "ALTITUDE 1.2T MT"}
	b := &models.VehicleListing{Model: "AVENGER", Version: "ALTITUDE 1.2T MT"}
	c := &models.VehicleListing{Model: "AVENGER", Version: "SUMMIT 1.2T AT"}
	d := &models.VehicleListing{Model: "COMPASS", Version: "ALTITUDE 1.2T MT"}

	if acc.Seen(a) {
		t.Error("first occurrence should not be seen")
	}
	if !acc.Seen(b) {
		t.Error("same (model, version) should be seen")
	}
	if acc.Seen(c) {
		t.Error("different version should not be seen")
	}
	if acc.Seen(d) {
		t.Error("different model should not be seen")
	}
	if s := acc.Summary(); s.Duplicates != 1 {
		t.Errorf("Duplicates = %d; want 1", s.Duplicates)
	}
}

func TestAccumulatorAcceptedOrderPreserved(t *testing.T) {
	acc := NewAccumulator()
	acc.Record(&models.VehicleListing{Model: "FIRST"}, Outcome{Accepted: true})
	acc.Record(&models.VehicleListing{Model: "SECOND"}, Outcome{Accepted: true})

	got := acc.Accepted()
	if len(got) != 2 || got[0].Model != "FIRST" || got[1].Model != "SECOND" {
		t.Errorf("accepted order not preserved: %+v", got)
	}
}
