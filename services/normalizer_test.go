package services

import (
	"reflect"
	"testing"

	"dealer-scraper/models"
)

func TestNormalizePriceStrings(t *testing.T) {
	tests := []struct {
		raw  any
		want string
	}{
		{"$12.345.678", "12345678"},
		{"12345678", "12345678"},
		{12345678, "12345678"},
		{12345678.0, "12345678"},
		{"$ 2.000.000", "2000000"},
		{"24.990.000 CLP", "24990000"},
		{"", ""},
		{"N/A", ""},
		{nil, ""},
		{0, ""},
	}

	for _, tt := range tests {
		got := normalizePrice(tt.raw)
		if got != tt.want {
			t.Errorf("normalizePrice(%v) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeTextFields(t *testing.T) {
	raw := models.RawRecord{
		"marca":  "toyota",
		"modelo": "  yaris\n  sport ",
	}

	l := Normalize(raw, "Astara")
	if l.Brand != "TOYOTA" {
		t.Errorf("Brand = %q; want TOYOTA", l.Brand)
	}
	if l.Model != "YARIS SPORT" {
		t.Errorf("Model = %q; want collapsed uppercase", l.Model)
	}
	if l.DealerName != "Astara" {
		t.Errorf("DealerName = %q; want Astara", l.DealerName)
	}
}

func TestNormalizeAliasKeys(t *testing.T) {
	english := models.RawRecord{
		"brand":           "Mazda",
		"model":           "CX-3",
		"price_cash":      "15000000",
		"bonus":           "1000000",
		"bonus_financing": "500000",
	}
	spanish := models.RawRecord{
		"marca":               "Mazda",
		"modelo":              "CX-3",
		"precio_lista":        "15000000",
		"bono_marca":          "1000000",
		"bono_financiamiento": "500000",
	}

	a := Normalize(english, "ABilbao")
	b := Normalize(spanish, "ABilbao")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("alias keys should normalize identically:\n%+v\n%+v", a, b)
	}
}

func TestNormalizeEmptyAliasFallsThrough(t *testing.T) {
	// A present-but-empty precio_lista must not shadow price_cash.
	raw := models.RawRecord{
		"modelo":       "CX-3",
		"precio_lista": "",
		"price_cash":   "15000000",
	}

	l := Normalize(raw, "ABilbao")
	if l.ListPrice != "15000000" {
		t.Errorf("ListPrice = %q; empty alias should fall through to price_cash", l.ListPrice)
	}
}

func TestNormalizeBrandInference(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"JEEP AVENGER", "JEEP"},
		{"ram 700", "RAM"},
		{"Peugeot 208", "PEUGEOT"},
		{"Yaris", ""},
	}

	for _, tt := range tests {
		l := Normalize(models.RawRecord{"modelo": tt.model}, "Astara")
		if l.Brand != tt.want {
			t.Errorf("inferred brand for %q = %q; want %q", tt.model, l.Brand, tt.want)
		}
	}
}

func TestNormalizeExplicitBrandWinsOverInference(t *testing.T) {
	l := Normalize(models.RawRecord{"marca": "fiat", "modelo": "JEEP AVENGER"}, "Astara")
	if l.Brand != "FIAT" {
		t.Errorf("Brand = %q; explicit brand should win over inference", l.Brand)
	}
}

func TestNormalizeMissingFieldsDegradeToAbsent(t *testing.T) {
	l := Normalize(models.RawRecord{}, "CIDEF")
	if l.Brand != "" || l.Model != "" || l.ListPrice != "" || l.BrandBonus != "" {
		t.Errorf("empty record should normalize to all-absent fields: %+v", l)
	}
}

func TestNormalizeIdempotentAndNonMutating(t *testing.T) {
	raw := models.RawRecord{
		"marca":        "toyota",
		"modelo":       "yaris",
		"precio_lista": "$10.000.000",
	}
	snapshot := models.RawRecord{
		"marca":        "toyota",
		"modelo":       "yaris",
		"precio_lista": "$10.000.000",
	}

	first := Normalize(raw, "Astara")
	second := Normalize(raw, "Astara")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization not idempotent:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(raw, snapshot) {
		t.Errorf("normalization mutated its input: %+v", raw)
	}
}
