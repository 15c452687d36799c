package services

import (
	"dealer-scraper/models"
)

// Accumulator keeps per-run bookkeeping: the accepted set for serialization
// plus attempted/accepted/rejected counts. It lives for one scrape
// invocation only.
type Accumulator struct {
	attempted  int
	duplicates int
	accepted   []*models.VehicleListing
	rejected   map[RejectReason]int
	seen       map[string]struct{}
}

// Summary is the final report of one run.
type Summary struct {
	Attempted  int
	Accepted   int
	Rejected   int
	Duplicates int
	Rate       float64
	ByReason   map[RejectReason]int
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		rejected: make(map[RejectReason]int),
		seen:     make(map[string]struct{}),
	}
}

// Seen reports whether a listing with the same normalized (model, version)
// pair was already recorded this run, and marks the pair as seen. Duplicate
// suppression is exact textual equality, applied before validation.
func (a *Accumulator) Seen(l *models.VehicleListing) bool {
	key := l.Model + "\x00" + l.Version
	if _, dup := a.seen[key]; dup {
		a.duplicates++
		return true
	}
	a.seen[key] = struct{}{}
	return false
}

// Record counts one processed listing and retains it when accepted.
func (a *Accumulator) Record(l *models.VehicleListing, outcome Outcome) {
	a.attempted++
	if outcome.Accepted {
		a.accepted = append(a.accepted, l)
		return
	}
	a.rejected[outcome.Reason]++
}

// Accepted returns the accepted listings in processing order.
func (a *Accumulator) Accepted() []*models.VehicleListing {
	return a.accepted
}

// Summary computes the final counts and acceptance rate.
func (a *Accumulator) Summary() Summary {
	rejected := 0
	byReason := make(map[RejectReason]int, len(a.rejected))
	for reason, n := range a.rejected {
		rejected += n
		byReason[reason] = n
	}

	rate := 0.0
	if a.attempted > 0 {
		rate = float64(len(a.accepted)) / float64(a.attempted)
	}

	return Summary{
		Attempted:  a.attempted,
		Accepted:   len(a.accepted),
		Rejected:   rejected,
		Duplicates: a.duplicates,
		Rate:       rate,
		ByReason:   byReason,
	}
}
