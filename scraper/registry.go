// Package scraper registers the site-specific dealer scrapers and exposes
// them by name to the CLI.
package scraper

import (
	"fmt"
	"sort"

	"dealer-scraper/config"
	"dealer-scraper/models"
	"dealer-scraper/scraper/abilbao"
	"dealer-scraper/scraper/astara"
	"dealer-scraper/scraper/callegari"
	"dealer-scraper/scraper/cidef"
	"dealer-scraper/scraper/guillermomorales"
	"dealer-scraper/storage"
	"dealer-scraper/utils"
)

// Site is one dealer scraper: a single sequential pass over the dealer's
// pages producing raw records for the pipeline.
type Site interface {
	Scrape() ([]models.RawRecord, error)
}

// Factory builds a Site wired with per-run collaborators.
type Factory func(cfg *config.Config, profile config.DealerProfile, logger *utils.Logger, errlog *storage.ErrorLog) Site

var registry = map[string]Factory{
	"astara": func(cfg *config.Config, p config.DealerProfile, l *utils.Logger, e *storage.ErrorLog) Site {
		return astara.New(cfg, p, l, e)
	},
	"cidef": func(cfg *config.Config, p config.DealerProfile, l *utils.Logger, e *storage.ErrorLog) Site {
		return cidef.New(cfg, p, l, e)
	},
	"callegari": func(cfg *config.Config, p config.DealerProfile, l *utils.Logger, e *storage.ErrorLog) Site {
		return callegari.New(cfg, p, l, e)
	},
	"guillermomorales": func(cfg *config.Config, p config.DealerProfile, l *utils.Logger, e *storage.ErrorLog) Site {
		return guillermomorales.New(cfg, p, l, e)
	},
	"abilbao": func(cfg *config.Config, p config.DealerProfile, l *utils.Logger, e *storage.ErrorLog) Site {
		return abilbao.New(cfg, p, l, e)
	},
}

// Lookup returns the factory for a dealer key.
func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("scraper: no scraper registered for %q (try: %v)", name, Names())
	}
	return f, nil
}

// Names lists the registered dealer keys in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
