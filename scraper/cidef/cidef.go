package cidef

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"dealer-scraper/config"
	"dealer-scraper/models"
	"dealer-scraper/scraper/browser"
	"dealer-scraper/storage"
	"dealer-scraper/utils"
)

// Scraper extracts vehicle pricing from the CIDEF brand catalog pages. The
// catalog renders client-side, so each brand page is loaded in headless
// Chrome, scrolled to force lazy content, and the settled HTML is parsed
// with stable CSS selectors.
type Scraper struct {
	cfg     *config.Config
	profile config.DealerProfile
	logger  *utils.Logger
	pacer   *utils.Pacer
	retry   *utils.AttemptPolicy
	errlog  *storage.ErrorLog

	records []models.RawRecord
}

// New creates a ready-to-use CIDEF Scraper.
func New(cfg *config.Config, profile config.DealerProfile, logger *utils.Logger, errlog *storage.ErrorLog) *Scraper {
	return &Scraper{
		cfg:     cfg,
		profile: profile,
		logger:  logger,
		pacer:   utils.NewPacer(time.Duration(cfg.PageDelayMs) * time.Millisecond),
		retry: &utils.AttemptPolicy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Duration(cfg.RetryDelayMs) * time.Millisecond,
			Logger:      logger,
		},
		errlog: errlog,
	}
}

// Scrape walks each configured brand catalog page in sequence.
func (s *Scraper) Scrape() ([]models.RawRecord, error) {
	s.logger.Info("[cidef] Starting scrape — brands: %s", strings.Join(s.profile.Brands, ", "))

	allocCtx, cancel := browser.NewAllocator(context.Background(), s.cfg.ChromeBin)
	defer cancel()

	for _, brand := range s.profile.Brands {
		s.pacer.Wait()
		s.scrapeBrand(allocCtx, brand)
	}

	s.logger.Info("[cidef] Scrape complete — %d raw records", len(s.records))
	return s.records, nil
}

func (s *Scraper) scrapeBrand(allocCtx context.Context, brand string) {
	brandURL := fmt.Sprintf("%s/marca/%s/", s.profile.BaseURL, brand)

	err := s.retry.Do("brand-catalog "+brand, func() error {
		html, err := s.renderBrandPage(allocCtx, brandURL)
		if err != nil {
			return err
		}

		records, err := s.parseCards(html, brand, brandURL)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no vehicle cards on %s", brandURL)
		}

		s.logger.Info("[cidef] Brand %s — %d cards", brand, len(records))
		s.records = append(s.records, records...)
		return nil
	})

	if err != nil {
		s.logger.Error("[cidef] Giving up on brand %s: %v", brand, err)
		if logErr := s.errlog.Append(models.ErrorEntry{
			Dealer: s.profile.Name,
			Brand:  strings.ToUpper(brand),
			URL:    brandURL,
			Err:    err.Error(),
		}); logErr != nil {
			s.logger.Error("[cidef] Error log write failed: %v", logErr)
		}
		s.records = append(s.records, models.RawRecord{
			"marca": brand,
			"url":   brandURL,
		})
	}
}

// renderBrandPage loads the catalog, scrolls it so every card is rendered,
// and returns the final HTML.
func (s *Scraper) renderBrandPage(allocCtx context.Context, brandURL string) (string, error) {
	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()
	ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(ctx,
		chromedp.Navigate(brandURL),
		chromedp.Sleep(5*time.Second),
		chromedp.Evaluate(`
			(async function() {
				for (var i = 0; i < 10; i++) {
					window.scrollBy(0, 500);
					await new Promise(function(r) { setTimeout(r, 300); });
				}
				window.scrollTo(0, 0);
			})()
		`, nil),
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp render %s: %w", brandURL, err)
	}
	return html, nil
}

// parseCards pulls one raw record per vehicle card. Price cells keep their
// display text; the normalizer strips symbols later.
func (s *Scraper) parseCards(html, brand, brandURL string) ([]models.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse brand page: %w", err)
	}

	var records []models.RawRecord
	doc.Find("div.card.card-auto").Each(func(i int, card *goquery.Selection) {
		info := card.Find("div.info-auto-card")
		if info.Length() == 0 {
			return
		}

		marca := strings.TrimSpace(info.Find("div.title-marca small").Text())
		if marca == "" {
			marca = brand
		}
		modelo := strings.TrimSpace(info.Find("div.card-title p").Text())

		url := brandURL
		if href, ok := info.Find(`a[href*="/modelo/"]`).Attr("href"); ok {
			if strings.HasPrefix(href, "http") {
				url = href
			} else {
				url = s.profile.BaseURL + href
			}
		}

		record := models.RawRecord{
			"marca":  marca,
			"modelo": modelo,
			"url":    url,
		}
		putPrice(record, "precio_lista", info.Find("div.card-price.price-one h3").Text())
		putPrice(record, "bono_marca", info.Find("div.card-price.price-two h3").Text())
		putPrice(record, "bono_financiamiento", info.Find("div.card-price.price-three h3").Text())
		putPrice(record, "precio_con_financiamiento", info.Find("div.card-price.price-four h3").Text())

		records = append(records, record)
	})

	return records, nil
}

// putPrice stores display text only when the cell held something — a "$0"
// bonus cell counts as absent, matching how the site marks "no bonus".
func putPrice(record models.RawRecord, key, text string) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" || digits == "0" {
		return
	}
	record[key] = strings.TrimSpace(text)
}
