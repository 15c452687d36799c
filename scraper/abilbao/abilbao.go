package abilbao

import (
	"context"
	"fmt"
	"regexp"
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

// Scraper extracts vehicle pricing from the Automotora Bilbao site. Brand
// catalogs link to per-model ficha pages; each ficha renders one card per
// version with the struck-through normal price as the list price and the
// starred main price as the financed price.
type Scraper struct {
	cfg       *config.Config
	profile   config.DealerProfile
	logger    *utils.Logger
	pacer     *utils.Pacer
	retry     *utils.AttemptPolicy
	modelURLs *utils.URLSet
	errlog    *storage.ErrorLog

	records []models.RawRecord
}

// New creates a ready-to-use ABilbao Scraper.
func New(cfg *config.Config, profile config.DealerProfile, logger *utils.Logger, errlog *storage.ErrorLog) *Scraper {
	return &Scraper{
		cfg:       cfg,
		profile:   profile,
		logger:    logger,
		pacer:     utils.NewPacer(time.Duration(cfg.PageDelayMs) * time.Millisecond),
		modelURLs: utils.NewURLSet(),
		retry: &utils.AttemptPolicy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Duration(cfg.RetryDelayMs) * time.Millisecond,
			Logger:      logger,
		},
		errlog: errlog,
	}
}

// fichaPath matches a model ficha link: /ficha/<brand>/<model>/.
var fichaPath = regexp.MustCompile(`/ficha/[^/]+/[^/]+/?$`)

// Scrape walks each brand catalog, then visits every model ficha in
// sequence.
func (s *Scraper) Scrape() ([]models.RawRecord, error) {
	s.logger.Info("[abilbao] Starting scrape — brands: %s", strings.Join(s.profile.Brands, ", "))

	allocCtx, cancel := browser.NewAllocator(context.Background(), s.cfg.ChromeBin)
	defer cancel()

	for _, brand := range s.profile.Brands {
		urls, err := s.collectModelURLs(allocCtx, brand)
		if err != nil {
			s.logger.Error("[abilbao] Brand %s failed: %v", brand, err)
			continue
		}
		s.logger.Info("[abilbao] Brand %s — %d models", brand, len(urls))

		for i, modelURL := range urls {
			s.pacer.Wait()
			s.logger.Info("[abilbao] [%d/%d] %s", i+1, len(urls), modelName(modelURL))
			s.scrapeModel(allocCtx, brand, modelURL)
		}
	}

	s.logger.Info("[abilbao] Scrape complete — %d raw records", len(s.records))
	return s.records, nil
}

// collectModelURLs loads a brand catalog page and gathers ficha links.
func (s *Scraper) collectModelURLs(allocCtx context.Context, brand string) ([]string, error) {
	brandURL := fmt.Sprintf("%s/ficha/modelos-%s/", s.profile.BaseURL, brand)
	var found []string

	err := s.retry.Do("brand-catalog "+brand, func() error {
		html, err := s.render(allocCtx, brandURL)
		if err != nil {
			return err
		}
		found, err = s.parseFichaLinks(html)
		return err
	})

	return found, err
}

// parseFichaLinks gathers model ficha URLs from a brand catalog page,
// skipping catalog and service links and dropping duplicates.
func (s *Scraper) parseFichaLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse brand page: %w", err)
	}

	var found []string
	doc.Find(`a[href*="/ficha/"]`).Each(func(i int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || !fichaPath.MatchString(href) {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = s.profile.BaseURL + href
		}
		href = strings.TrimRight(href, "/")
		if s.modelURLs.Add(href) {
			found = append(found, href)
		}
	})
	return found, nil
}

// scrapeModel renders one ficha page and parses its version cards. A page
// that fails every attempt yields a placeholder record and an error log
// entry.
func (s *Scraper) scrapeModel(allocCtx context.Context, brand, modelURL string) {
	name := modelName(modelURL)

	err := s.retry.Do("model-page "+name, func() error {
		html, err := s.render(allocCtx, modelURL)
		if err != nil {
			return err
		}

		records, err := s.parseVersionCards(html, brand, name, modelURL)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no version cards on %s", modelURL)
		}

		s.logger.Info("[abilbao]   %d version(s) extracted", len(records))
		s.records = append(s.records, records...)
		return nil
	})

	if err != nil {
		s.logger.Error("[abilbao] Giving up on %s: %v", name, err)
		if logErr := s.errlog.Append(models.ErrorEntry{
			Dealer: s.profile.Name,
			Brand:  strings.ToUpper(brand),
			Model:  name,
			URL:    modelURL,
			Err:    err.Error(),
		}); logErr != nil {
			s.logger.Error("[abilbao] Error log write failed: %v", logErr)
		}
		s.records = append(s.records, models.RawRecord{
			"marca":  brand,
			"modelo": name,
			"url":    modelURL,
		})
	}
}

// render loads a page, scrolls it so every card is rendered, and returns the
// settled HTML.
func (s *Scraper) render(allocCtx context.Context, pageURL string) (string, error) {
	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()
	ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(`
			(async function() {
				for (var i = 0; i < 8; i++) {
					window.scrollBy(0, 500);
					await new Promise(function(r) { setTimeout(r, 300); });
				}
				window.scrollTo(0, 0);
			})()
		`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp render %s: %w", pageURL, err)
	}
	return html, nil
}

// parseVersionCards pulls one raw record per version card. The struck
// price-normal value is the list price; the main price is the financed
// price; bonus lines are labeled divs inside .bonus-price.
func (s *Scraper) parseVersionCards(html, brand, model, pageURL string) ([]models.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse model page: %w", err)
	}

	var records []models.RawRecord
	doc.Find("div.item-card").Each(func(i int, card *goquery.Selection) {
		marca := strings.TrimSpace(card.Find(".titulo--marca img").AttrOr("alt", ""))
		if marca == "" {
			marca = brand
		}
		modelo := strings.TrimSpace(card.Find(".modelo--titulo").First().Text())
		if modelo == "" {
			modelo = model
		}

		url := pageURL
		if href, ok := card.Find(`a[href*="/ficha/"]`).First().Attr("href"); ok {
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
		if version := strings.TrimSpace(card.Find(".modelo--caracteristica").First().Text()); version != "" {
			record["version"] = version
		}
		putPrice(record, "precio_lista", card.Find(".price-normal .price-value").First().Text())
		putPrice(record, "precio_con_financiamiento", card.Find(".main-price .price-value").First().Text())

		card.Find(".bonus-price div").Each(func(j int, bonus *goquery.Selection) {
			class := bonus.AttrOr("class", "")
			if !strings.Contains(class, "t12") || !strings.Contains(class, "bonus") {
				return
			}
			text := strings.ToLower(bonus.Text())
			value := bonus.Find("span.price-value").First().Text()
			switch {
			case strings.Contains(text, "marca"):
				putPrice(record, "bono_marca", value)
			case strings.Contains(text, "financiamiento"):
				putPrice(record, "bono_financiamiento", value)
			}
		})

		records = append(records, record)
	})

	return records, nil
}

// putPrice stores display text only when the cell held something — a "$0"
// bonus counts as absent, matching how the site marks "no bonus".
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

// modelName derives a readable model name from the ficha URL's last segment.
func modelName(modelURL string) string {
	parts := strings.Split(strings.Trim(modelURL, "/"), "/")
	if len(parts) == 0 {
		return "unknown"
	}
	return parts[len(parts)-1]
}
