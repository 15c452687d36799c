package services

import (
	"dealer-scraper/config"
	"dealer-scraper/models"
	"dealer-scraper/utils"
)

// Processor runs raw records through the normalize → reconcile → dedup →
// validate pipeline for one dealer and accumulates the results. Records are
// processed strictly one at a time; nothing is shared between them.
type Processor struct {
	profile config.DealerProfile
	logger  *utils.Logger
	acc     *Accumulator
}

// NewProcessor creates a Processor for one dealer run.
func NewProcessor(profile config.DealerProfile, logger *utils.Logger) *Processor {
	return &Processor{
		profile: profile,
		logger:  logger,
		acc:     NewAccumulator(),
	}
}

// Process takes one raw record through the full pipeline. It returns the
// canonical listing and its terminal outcome; duplicates return a nil
// outcome-accepted=false listing pair untouched by validation.
func (p *Processor) Process(raw models.RawRecord) (*models.VehicleListing, Outcome) {
	listing := Normalize(raw, p.profile.Name)
	Reconcile(listing, p.profile)

	if p.acc.Seen(listing) {
		p.logger.Debug("[pipeline] duplicate skipped: %s %s %s",
			listing.Brand, listing.Model, listing.Version)
		return listing, Outcome{Reason: ReasonNone}
	}

	outcome := Validate(listing, p.profile)
	if !outcome.Accepted {
		p.logger.Warn("[pipeline] rejected (%s): dealer=%s model=%q version=%q url=%s",
			outcome.Reason, listing.DealerName, listing.Model, listing.Version, listing.SourceURL)
	}
	p.acc.Record(listing, outcome)
	return listing, outcome
}

// ProcessAll runs a batch of raw records sequentially.
func (p *Processor) ProcessAll(raws []models.RawRecord) {
	for _, raw := range raws {
		p.Process(raw)
	}
}

// Accepted returns the accepted listings so far.
func (p *Processor) Accepted() []*models.VehicleListing {
	return p.acc.Accepted()
}

// Summary returns the run counts so far.
func (p *Processor) Summary() Summary {
	return p.acc.Summary()
}
