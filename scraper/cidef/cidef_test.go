package cidef

import (
	"testing"

	"dealer-scraper/config"
	"dealer-scraper/utils"
)

const brandPageHTML = `
<html><body>
<div class="card card-auto">
  <div class="info-auto-card">
    <div class="title-marca"><small>Dongfeng</small></div>
    <div class="card-title"><p>RICH 6 4X4 DIESEL</p></div>
    <a href="/modelo/rich-6/">Ver modelo</a>
    <div class="card-price price-one"><h3>$18.990.000</h3></div>
    <div class="card-price price-two"><h3>$1.500.000</h3></div>
    <div class="card-price price-three"><h3>$500.000</h3></div>
    <div class="card-price price-four"><h3>$16.990.000</h3></div>
  </div>
</div>
<div class="card card-auto">
  <div class="info-auto-card">
    <div class="title-marca"><small></small></div>
    <div class="card-title"><p>T5 EVO</p></div>
    <div class="card-price price-one"><h3>$15.490.000</h3></div>
    <div class="card-price price-two"><h3>$0</h3></div>
  </div>
</div>
<div class="card card-auto"><div class="other"></div></div>
</body></html>`

func newTestScraper() *Scraper {
	return New(
		&config.Config{MaxRetries: 1, RetryDelayMs: 1, PageDelayMs: 1},
		config.DealerProfile{Name: "CIDEF", BaseURL: "https://cidef.cl", BonusThreshold: 0.5},
		utils.NewLogger(false),
		nil,
	)
}

func TestParseCards(t *testing.T) {
	s := newTestScraper()

	records, err := s.parseCards(brandPageHTML, "dongfeng", "https://cidef.cl/marca/dongfeng/")
	if err != nil {
		t.Fatalf("parseCards: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first["marca"] != "Dongfeng" || first["modelo"] != "RICH 6 4X4 DIESEL" {
		t.Errorf("unexpected identity fields: %v", first)
	}
	if first["precio_lista"] != "$18.990.000" {
		t.Errorf("precio_lista = %v", first["precio_lista"])
	}
	if first["precio_con_financiamiento"] != "$16.990.000" {
		t.Errorf("precio_con_financiamiento = %v", first["precio_con_financiamiento"])
	}
	if first["url"] != "https://cidef.cl/modelo/rich-6/" {
		t.Errorf("url = %v", first["url"])
	}
}

func TestParseCardsBrandFallbackAndZeroBonus(t *testing.T) {
	s := newTestScraper()

	records, _ := s.parseCards(brandPageHTML, "dongfeng", "https://cidef.cl/marca/dongfeng/")
	second := records[1]

	if second["marca"] != "dongfeng" {
		t.Errorf("empty brand cell should fall back to the page brand, got %v", second["marca"])
	}
	if _, ok := second["bono_marca"]; ok {
		t.Error("a $0 bonus cell should be treated as absent")
	}
	if second["url"] != "https://cidef.cl/marca/dongfeng/" {
		t.Errorf("cards without a model link keep the brand page url, got %v", second["url"])
	}
}

func TestParseCardsNoCards(t *testing.T) {
	s := newTestScraper()

	records, err := s.parseCards("<html><body></body></html>", "foton", "https://cidef.cl/marca/foton/")
	if err != nil {
		t.Fatalf("parseCards: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}
