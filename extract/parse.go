package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"dealer-scraper/models"
)

// Record is the exact shape the extraction model is required to return for
// each vehicle version. Unknown fields are a schema violation.
type Record struct {
	Brand          *string `json:"brand"`
	Model          *string `json:"model"`
	Version        *string `json:"version"`
	ListPrice      *string `json:"precio_lista"`
	BrandBonus     *string `json:"bono_marca"`
	FinancingBonus *string `json:"bono_financiamiento"`
}

// ParseRecords decodes the model's reply under a strict contract: the whole
// reply must be a single JSON array of Record objects, with no unknown
// fields and no trailing content. Anything else is rejected and logged by
// the caller — no substring scanning for the first bracketed blob.
func ParseRecords(reply string) ([]Record, error) {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return nil, fmt.Errorf("parse: empty reply")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.DisallowUnknownFields()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("parse: reply is not a record array: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parse: trailing content after record array")
	}
	return records, nil
}

// Raw converts a Record to the loosely-typed shape the normalizer consumes,
// attaching provenance. Nil fields are simply omitted.
func (r Record) Raw(url string) models.RawRecord {
	raw := models.RawRecord{}
	put := func(key string, v *string) {
		if v != nil && *v != "" {
			raw[key] = *v
		}
	}
	put("brand", r.Brand)
	put("model", r.Model)
	put("version", r.Version)
	put("precio_lista", r.ListPrice)
	put("bono_marca", r.BrandBonus)
	put("bono_financiamiento", r.FinancingBonus)
	if url != "" {
		raw["url"] = url
	}
	return raw
}
