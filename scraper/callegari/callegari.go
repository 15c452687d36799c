package callegari

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"dealer-scraper/config"
	"dealer-scraper/models"
	"dealer-scraper/storage"
	"dealer-scraper/utils"
)

// Scraper extracts vehicle pricing from the Callegari new-vehicles catalog.
// The catalog is served as static HTML, so a plain crawl with CSS selectors
// is enough — no browser needed.
type Scraper struct {
	cfg     *config.Config
	profile config.DealerProfile
	logger  *utils.Logger
	retry   *utils.AttemptPolicy
	errlog  *storage.ErrorLog

	records []models.RawRecord
}

// New creates a ready-to-use Callegari Scraper.
func New(cfg *config.Config, profile config.DealerProfile, logger *utils.Logger, errlog *storage.ErrorLog) *Scraper {
	return &Scraper{
		cfg:     cfg,
		profile: profile,
		logger:  logger,
		retry: &utils.AttemptPolicy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Duration(cfg.RetryDelayMs) * time.Millisecond,
			Logger:      logger,
		},
		errlog: errlog,
	}
}

// Scrape crawls the catalog page and parses every vehicle card.
func (s *Scraper) Scrape() ([]models.RawRecord, error) {
	catalogURL := s.profile.BaseURL + "/nuevos/"
	s.logger.Info("[callegari] Starting scrape — %s", catalogURL)

	err := s.retry.Do("catalog", func() error {
		return s.crawl(catalogURL)
	})
	if err != nil {
		s.logger.Error("[callegari] Giving up on catalog: %v", err)
		if logErr := s.errlog.Append(models.ErrorEntry{
			Dealer: s.profile.Name,
			URL:    catalogURL,
			Err:    err.Error(),
		}); logErr != nil {
			s.logger.Error("[callegari] Error log write failed: %v", logErr)
		}
		s.records = append(s.records, models.RawRecord{"url": catalogURL})
	}

	s.logger.Info("[callegari] Scrape complete — %d raw records", len(s.records))
	return s.records, nil
}

func (s *Scraper) crawl(catalogURL string) error {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	c.SetRequestTimeout(30 * time.Second)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       time.Duration(s.cfg.PageDelayMs) * time.Millisecond,
	}); err != nil {
		return fmt.Errorf("colly limit rule: %w", err)
	}

	var crawlErr error
	c.OnError(func(r *colly.Response, err error) {
		crawlErr = fmt.Errorf("fetch %s: %w", r.Request.URL, err)
	})

	cards := 0
	c.OnHTML("div.auto-block", func(e *colly.HTMLElement) {
		if record, ok := s.parseCard(e.DOM); ok {
			s.records = append(s.records, record)
			cards++
		}
	})

	if err := c.Visit(catalogURL); err != nil {
		return fmt.Errorf("visit catalog: %w", err)
	}
	c.Wait()

	if crawlErr != nil {
		return crawlErr
	}
	if cards == 0 {
		return fmt.Errorf("no vehicle cards on %s", catalogURL)
	}
	s.logger.Info("[callegari] Parsed %d cards", cards)
	return nil
}

// parseCard reads one catalog card. The red "Desde" price is the list
// price; the struck-through price is the all-payment price; bonuses are
// labeled spans inside div.subprecios.
func (s *Scraper) parseCard(card *goquery.Selection) (models.RawRecord, bool) {
	datos := card.Find("div.datos")
	if datos.Length() == 0 {
		return nil, false
	}

	record := models.RawRecord{
		"marca":  strings.TrimSpace(datos.Find("span.marca").Text()),
		"modelo": strings.TrimSpace(datos.Find("h3").First().Text()),
	}

	if href, ok := datos.Find(`a[href*="/nuevos/"]`).Attr("href"); ok {
		if strings.HasPrefix(href, "http") {
			record["url"] = href
		} else {
			record["url"] = s.profile.BaseURL + href
		}
	}

	if text := datos.Find("span.precio-desde").Text(); strings.TrimSpace(text) != "" {
		record["precio_lista"] = strings.TrimSpace(text)
	}
	if text := datos.Find("div.subprecios del").Text(); strings.TrimSpace(text) != "" {
		record["precio_todo_medio_pago"] = strings.TrimSpace(text)
	}

	datos.Find("div.subprecios span").Each(func(i int, span *goquery.Selection) {
		text := span.Text()
		switch {
		case strings.Contains(text, "Bono Marca:"):
			record["bono_marca"] = strings.TrimSpace(text)
		case strings.Contains(text, "Bono financiamiento:"):
			record["bono_financiamiento"] = strings.TrimSpace(text)
		}
	})

	return record, true
}
