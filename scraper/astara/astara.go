package astara

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"dealer-scraper/config"
	"dealer-scraper/extract"
	"dealer-scraper/models"
	"dealer-scraper/scraper/browser"
	"dealer-scraper/storage"
	"dealer-scraper/utils"
)

// Scraper pulls vehicle pricing from the Astara retail site. Astara lays
// version pricing out as free-form marketing copy with no stable selectors,
// so after rendering each model page the visible text is handed to the LLM
// extraction client.
type Scraper struct {
	cfg       *config.Config
	profile   config.DealerProfile
	logger    *utils.Logger
	pacer     *utils.Pacer
	retry     *utils.AttemptPolicy
	modelURLs *utils.URLSet
	extractor *extract.Client
	errlog    *storage.ErrorLog

	records []models.RawRecord
}

// New creates a ready-to-use Astara Scraper.
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
		extractor: extract.NewClient(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel, logger),
		errlog:    errlog,
	}
}

// Scrape walks each brand's landing page, collects model page URLs, and
// extracts version pricing from every model page in sequence.
func (s *Scraper) Scrape() ([]models.RawRecord, error) {
	s.logger.Info("[astara] Starting scrape — brands: %s", strings.Join(s.profile.Brands, ", "))

	allocCtx, cancel := browser.NewAllocator(context.Background(), s.cfg.ChromeBin)
	defer cancel()

	for _, brand := range s.profile.Brands {
		urls, err := s.collectModelURLs(allocCtx, brand)
		if err != nil {
			s.logger.Error("[astara] Brand %s failed: %v", brand, err)
			continue
		}
		s.logger.Info("[astara] Brand %s — %d model pages", brand, len(urls))

		for i, modelURL := range urls {
			s.pacer.Wait()
			s.logger.Info("[astara] [%d/%d] %s", i+1, len(urls), modelName(modelURL))
			s.scrapeModel(allocCtx, brand, modelURL)
		}
	}

	s.logger.Info("[astara] Scrape complete — %d raw records", len(s.records))
	return s.records, nil
}

// collectModelURLs loads a brand landing page and gathers links to model
// pages, skipping service and listing chrome.
func (s *Scraper) collectModelURLs(allocCtx context.Context, brand string) ([]string, error) {
	brandURL := fmt.Sprintf("%s/%s/", s.profile.BaseURL, brand)
	var found []string

	err := s.retry.Do("brand-page "+brand, func() error {
		ctx, cancelCtx := chromedp.NewContext(allocCtx)
		defer cancelCtx()
		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		var hrefs []string
		err := chromedp.Run(ctx,
			chromedp.Navigate(brandURL),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`
				(function() {
					var skip = ['seminuevos', 'liquidacion', 'ofertas', 'servicio',
						'flotas', 'sucursales', 'politicas', 'cookies', 'buscador'];
					var urls = [];
					var links = document.querySelectorAll('a[href]');
					for (var i = 0; i < links.length; i++) {
						var href = links[i].href;
						if (href.indexOf(location.hostname + '/') === -1) continue;
						var path = new URL(href).pathname;
						var skipped = false;
						for (var j = 0; j < skip.length; j++) {
							if (path.indexOf(skip[j]) !== -1) { skipped = true; break; }
						}
						if (skipped) continue;
						var parts = path.split('/').filter(Boolean);
						if (parts.length === 1 && parts[0].indexOf('-') !== -1) {
							urls.push(href.replace(/\/+$/, ''));
						}
					}
					return urls;
				})()
			`, &hrefs),
		)
		if err != nil {
			return fmt.Errorf("chromedp brand page: %w", err)
		}

		for _, u := range hrefs {
			if s.modelURLs.Add(u) {
				found = append(found, u)
			}
		}
		return nil
	})

	return found, err
}

// scrapeModel renders one model page, extracts versions through the LLM
// client, and records them. A page that fails every attempt yields a
// placeholder record so the run counts stay aligned with the model list.
func (s *Scraper) scrapeModel(allocCtx context.Context, brand, modelURL string) {
	name := modelName(modelURL)

	err := s.retry.Do("model-page "+name, func() error {
		ctx, cancelCtx := chromedp.NewContext(allocCtx)
		defer cancelCtx()
		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		var pageText string
		err := chromedp.Run(ctx,
			chromedp.Navigate(modelURL),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`document.body.innerText`, &pageText),
		)
		if err != nil {
			return fmt.Errorf("chromedp model page: %w", err)
		}

		records, err := s.extractor.ExtractVersions(ctx, s.instruction(brand, name), pageText)
		if err != nil {
			return err
		}

		s.logger.Info("[astara]   %d version(s) extracted", len(records))
		for _, r := range records {
			raw := r.Raw(modelURL)
			if _, ok := raw["brand"]; !ok {
				raw["marca"] = brand
			}
			s.records = append(s.records, raw)
		}
		return nil
	})

	if err != nil {
		s.logger.Error("[astara] Giving up on %s: %v", name, err)
		if logErr := s.errlog.Append(models.ErrorEntry{
			Dealer: s.profile.Name,
			Brand:  strings.ToUpper(brand),
			Model:  name,
			URL:    modelURL,
			Err:    err.Error(),
		}); logErr != nil {
			s.logger.Error("[astara] Error log write failed: %v", logErr)
		}
		s.records = append(s.records, models.RawRecord{
			"marca":  brand,
			"modelo": name,
			"url":    modelURL,
		})
	}
}

func (s *Scraper) instruction(brand, model string) string {
	return fmt.Sprintf(`Extract every version offered for the %s %s shown in the
"Elige una versión" section (the one with vehicle images). Ignore the plain
text section further down the page. For each version report the version
label, the "Precio lista" amount, the "Bono todo medio de pago" amount and
the "Bono Financiamiento" amount.`, strings.ToUpper(brand), strings.ToUpper(model))
}

// modelName derives a readable model name from the page URL's last segment.
func modelName(modelURL string) string {
	parts := strings.Split(strings.Trim(modelURL, "/"), "/")
	if len(parts) == 0 {
		return "unknown"
	}
	return parts[len(parts)-1]
}
