package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"fairlens/domain/schema"
)

// Record is one cleaned observation. Every record carries a non-null binary
// label and a non-null protected group value; the cleaner drops rows that
// cannot satisfy that.
type Record struct {
	Numeric     map[string]float64 `json:"numeric"`
	Categorical map[string]string  `json:"categorical"`
	// Group is the protected attribute value, duplicated out of Categorical
	// for the audit decomposition.
	Group string `json:"group"`
	// Label is 1 for the positive income bracket, 0 otherwise.
	Label int `json:"label"`
}

// Validate checks the record against its schema declaration.
func (r Record) Validate(table schema.Table) error {
	if r.Label != 0 && r.Label != 1 {
		return fmt.Errorf("label must be 0 or 1, got %d", r.Label)
	}
	if r.Group == "" {
		return fmt.Errorf("protected attribute %s is empty", table.Protected)
	}
	for _, col := range table.Columns {
		if col.Name == table.Target {
			continue
		}
		switch col.Kind {
		case schema.KindNumeric:
			if _, ok := r.Numeric[col.Name]; !ok {
				return fmt.Errorf("missing numeric value for %s", col.Name)
			}
		case schema.KindCategorical:
			if r.Categorical[col.Name] == "" {
				return fmt.Errorf("missing categorical value for %s", col.Name)
			}
		}
	}
	return nil
}

// Canonical serializes the record in schema column order. Equal records yield
// equal strings, which is what duplicate detection and the dataset
// fingerprint key on.
func (r Record) Canonical(table schema.Table) string {
	var b strings.Builder
	for i, col := range table.Columns {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if col.Name == table.Target {
			b.WriteString(strconv.Itoa(r.Label))
			continue
		}
		switch col.Kind {
		case schema.KindNumeric:
			b.WriteString(strconv.FormatFloat(r.Numeric[col.Name], 'g', -1, 64))
		case schema.KindCategorical:
			b.WriteString(r.Categorical[col.Name])
		}
	}
	return b.String()
}
