package services

import (
	"fmt"
	"strings"
	"unicode"

	"dealer-scraper/models"
)

// knownBrands is the catalog used to infer a brand from model text when the
// page never states one. First substring match wins.
var knownBrands = []string{
	"JEEP", "RAM", "FIAT", "MITSUBISHI", "SSANGYONG",
	"CHERY", "EXEED", "JMC", "GAC", "BYD", "PEUGEOT",
}

// Field aliases as they occur across dealer pages and LLM extractions. The
// first alias with a usable value wins.
var (
	brandKeys           = []string{"brand", "marca"}
	modelKeys           = []string{"model", "modelo"}
	versionKeys         = []string{"version"}
	listPriceKeys       = []string{"precio_lista", "price_cash"}
	brandBonusKeys      = []string{"bono_marca", "bono_todo_medio_pago", "bonus"}
	financingBonusKeys  = []string{"bono_financiamiento", "bonus_financing"}
	allPaymentPriceKeys = []string{"precio_todo_medio_pago"}
	financedPriceKeys   = []string{"precio_con_financiamiento"}
	urlKeys             = []string{"url"}
)

// Normalize maps a raw extracted record onto the canonical listing schema.
// Every field degrades independently to absent (empty string); no input
// shape is an error. The raw record is never mutated.
func Normalize(raw models.RawRecord, dealer string) *models.VehicleListing {
	model := normalizeText(firstString(raw, modelKeys))

	brand := normalizeText(firstString(raw, brandKeys))
	if brand == "" {
		brand = inferBrand(model)
	}

	return &models.VehicleListing{
		Brand:           brand,
		Model:           model,
		Version:         normalizeText(firstString(raw, versionKeys)),
		ListPrice:       normalizePrice(firstValue(raw, listPriceKeys)),
		BrandBonus:      normalizePrice(firstValue(raw, brandBonusKeys)),
		FinancingBonus:  normalizePrice(firstValue(raw, financingBonusKeys)),
		AllPaymentPrice: normalizePrice(firstValue(raw, allPaymentPriceKeys)),
		FinancedPrice:   normalizePrice(firstValue(raw, financedPriceKeys)),
		SourceURL:       strings.TrimSpace(firstString(raw, urlKeys)),
		DealerName:      dealer,
	}
}

// normalizeText uppercases and collapses all internal whitespace (including
// newlines) to single spaces.
func normalizeText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.ToUpper(strings.Join(fields, " "))
}

// normalizePrice reduces any raw price value to an ASCII-digit string.
// Numbers are stringified with decimal cents truncated; strings lose every
// non-digit rune, which drops currency symbols and thousands separators.
func normalizePrice(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case int:
		if n == 0 {
			return ""
		}
		return fmt.Sprintf("%d", n)
	case int64:
		if n == 0 {
			return ""
		}
		return fmt.Sprintf("%d", n)
	case float64:
		if n == 0 {
			return ""
		}
		return fmt.Sprintf("%d", int64(n))
	case string:
		var b strings.Builder
		for _, r := range n {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String()
	default:
		return ""
	}
}

// inferBrand scans model text for a known brand name. Best effort only; the
// caller treats an empty result as absent.
func inferBrand(model string) string {
	if model == "" {
		return ""
	}
	upper := strings.ToUpper(model)
	for _, brand := range knownBrands {
		if strings.Contains(upper, brand) {
			return brand
		}
	}
	return ""
}

// firstValue returns the first alias carrying a usable value. An empty or
// blank string does not stop the fallback.
func firstValue(raw models.RawRecord, keys []string) any {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func firstString(raw models.RawRecord, keys []string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
