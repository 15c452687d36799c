package guillermomorales

import (
	"context"
	"fmt"
	"strconv"
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

// Scraper extracts vehicle pricing from the Guillermo Morales multi-brand
// site. Each model page carries a comparison table: one version dropdown per
// column, with labeled price rows ("Precio Lista", "Bono Financiamiento",
// "Bono de Fidelización") holding one cell per column.
type Scraper struct {
	cfg     *config.Config
	profile config.DealerProfile
	logger  *utils.Logger
	pacer   *utils.Pacer
	retry   *utils.AttemptPolicy
	errlog  *storage.ErrorLog

	records []models.RawRecord
}

// New creates a ready-to-use Guillermo Morales Scraper.
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

type modelRef struct {
	name string
	url  string
}

// Scrape walks each brand catalog, then visits every model page in sequence.
func (s *Scraper) Scrape() ([]models.RawRecord, error) {
	s.logger.Info("[guillermomorales] Starting scrape — brands: %s", strings.Join(s.profile.Brands, ", "))

	allocCtx, cancel := browser.NewAllocator(context.Background(), s.cfg.ChromeBin)
	defer cancel()

	for _, brand := range s.profile.Brands {
		refs, err := s.collectModels(allocCtx, brand)
		if err != nil {
			s.logger.Error("[guillermomorales] Brand %s failed: %v", brand, err)
			continue
		}
		s.logger.Info("[guillermomorales] Brand %s — %d models", brand, len(refs))

		for i, ref := range refs {
			s.pacer.Wait()
			s.logger.Info("[guillermomorales] [%d/%d] %s", i+1, len(refs), ref.name)
			s.scrapeModel(allocCtx, brand, ref)
		}
	}

	s.logger.Info("[guillermomorales] Scrape complete — %d raw records", len(s.records))
	return s.records, nil
}

// collectModels loads one brand catalog page and gathers model cards.
func (s *Scraper) collectModels(allocCtx context.Context, brand string) ([]modelRef, error) {
	brandURL := fmt.Sprintf("%s/autos-nuevos/%s", s.profile.BaseURL, brand)
	var refs []modelRef

	err := s.retry.Do("brand-catalog "+brand, func() error {
		html, err := s.render(allocCtx, brandURL)
		if err != nil {
			return err
		}
		refs, err = s.parseModelCards(html)
		return err
	})

	return refs, err
}

// scrapeModel renders one model page and parses its version table. A page
// that fails every attempt yields a placeholder record and an error log
// entry.
func (s *Scraper) scrapeModel(allocCtx context.Context, brand string, ref modelRef) {
	err := s.retry.Do("model-page "+ref.name, func() error {
		html, err := s.render(allocCtx, ref.url)
		if err != nil {
			return err
		}

		records, err := parseVersionTable(html, brand, ref.name, ref.url)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no priced versions on %s", ref.url)
		}

		s.logger.Info("[guillermomorales]   %d version(s) extracted", len(records))
		s.records = append(s.records, records...)
		return nil
	})

	if err != nil {
		s.logger.Error("[guillermomorales] Giving up on %s: %v", ref.name, err)
		if logErr := s.errlog.Append(models.ErrorEntry{
			Dealer: s.profile.Name,
			Brand:  strings.ToUpper(brand),
			Model:  ref.name,
			URL:    ref.url,
			Err:    err.Error(),
		}); logErr != nil {
			s.logger.Error("[guillermomorales] Error log write failed: %v", logErr)
		}
		s.records = append(s.records, models.RawRecord{
			"marca":  brand,
			"modelo": ref.name,
			"url":    ref.url,
		})
	}
}

// render loads a page, scrolls to force lazy content, and returns the
// settled HTML.
func (s *Scraper) render(allocCtx context.Context, pageURL string) (string, error) {
	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()
	ctx, cancelTimeout := context.WithTimeout(ctx, 120*time.Second)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(5*time.Second),
		chromedp.Evaluate(`
			(function() {
				window.scrollTo(0, 800);
				var table = document.querySelector('table');
				if (table) table.scrollIntoView({block: 'center'});
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

// parseModelCards pulls model name and page URL from each catalog card.
func (s *Scraper) parseModelCards(html string) ([]modelRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse brand page: %w", err)
	}

	var refs []modelRef
	doc.Find("div.card-autos").Each(func(i int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("p.modelo").First().Text())
		href, ok := card.Find(`a[href*="/autos-nuevos/"]`).First().Attr("href")
		if name == "" || !ok {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = s.profile.BaseURL + href
		}
		refs = append(refs, modelRef{name: name, url: href})
	})

	return refs, nil
}

// parseVersionTable reads the comparison table: one select[name=version] per
// column, and labeled rows carrying one td.center cell per column. Both
// bonuses are discounts; when either is present their sum is subtracted to
// give the financed price, as the site quotes it.
func parseVersionTable(html, brand, model, pageURL string) ([]models.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse model page: %w", err)
	}

	prices := rowCells(doc, "Precio Lista")
	finBonuses := rowCells(doc, "Bono Financiamiento")
	fidBonuses := rowCells(doc, "Fidelización")
	if fidBonuses == nil {
		fidBonuses = rowCells(doc, "Bono Todo Medio")
	}

	var records []models.RawRecord
	doc.Find(`select[name="version"]`).Each(func(col int, sel *goquery.Selection) {
		version := strings.TrimSpace(sel.Find("option[selected]").First().Text())
		if version == "" {
			return
		}
		price := cellDigits(prices, col)
		if price == "" {
			return
		}

		record := models.RawRecord{
			"marca":        brand,
			"modelo":       model,
			"version":      version,
			"precio_lista": price,
			"url":          pageURL,
		}

		fin := cellDigits(finBonuses, col)
		fid := cellDigits(fidBonuses, col)
		if fin != "" {
			record["bono_financiamiento"] = fin
		}
		if fid != "" {
			record["bono_todo_medio_pago"] = fid
		}
		if financed, ok := financedPrice(price, fin, fid); ok {
			record["precio_con_financiamiento"] = financed
		}

		records = append(records, record)
	})

	return records, nil
}

// rowCells returns the td.center cells of the first table row whose text
// contains the label, or nil when no such row exists.
func rowCells(doc *goquery.Document, label string) *goquery.Selection {
	var cells *goquery.Selection
	doc.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if !strings.Contains(row.Text(), label) {
			return true
		}
		cells = row.Find("td.center")
		return false
	})
	return cells
}

// cellDigits extracts the digit content of one column's cell.
func cellDigits(cells *goquery.Selection, col int) string {
	if cells == nil || col >= cells.Length() {
		return ""
	}
	return digits(cells.Eq(col).Text())
}

func digits(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
}

// financedPrice subtracts the combined bonuses from the list price.
func financedPrice(list, fin, fid string) (string, bool) {
	if fin == "" && fid == "" {
		return "", false
	}
	listN, err := strconv.ParseInt(list, 10, 64)
	if err != nil {
		return "", false
	}
	var total int64
	for _, b := range []string{fin, fid} {
		if b == "" {
			continue
		}
		n, err := strconv.ParseInt(b, 10, 64)
		if err != nil {
			return "", false
		}
		total += n
	}
	return strconv.FormatInt(listN-total, 10), true
}
