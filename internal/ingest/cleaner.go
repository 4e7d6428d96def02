package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"fairlens/domain/core"
	"fairlens/domain/dataset"
	"fairlens/domain/schema"
)

// UnknownCategory is the sentinel imputed for missing non-critical
// categorical cells. Rows are only dropped when the target, the protected
// attribute, or a numeric cell is unusable.
const UnknownCategory = "Unknown"

// minFenceRows guards the IQR fence: below this there is not enough mass to
// estimate quartiles.
const minFenceRows = 8

// Config defines the cleaning thresholds
type Config struct {
	// MinRows is the minimum viable dataset size after cleaning.
	MinRows int
	// TrimOutliers enables the 1.5 IQR fence on the schema's fenced columns.
	TrimOutliers bool
}

// DefaultConfig returns the production cleaning policy
func DefaultConfig() Config {
	return Config{
		MinRows:      10,
		TrimOutliers: true,
	}
}

// Report counts what cleaning did to the raw rows, so every dropped row is
// accounted for.
type Report struct {
	RowsIn           int            `json:"rows_in"`
	Malformed        int            `json:"malformed"`
	MissingTarget    int            `json:"missing_target"`
	MissingProtected int            `json:"missing_protected"`
	BadNumeric       int            `json:"bad_numeric"`
	ImputedCells     int            `json:"imputed_cells"`
	Duplicates       int            `json:"duplicates"`
	Outliers         int            `json:"outliers"`
	RowsOut          int            `json:"rows_out"`
	Origin           dataset.Origin `json:"origin"`
}

// Dropped returns the total rows removed.
func (r Report) Dropped() int {
	return r.RowsIn - r.RowsOut
}

// Cleaner normalizes raw rows into a sealed dataset against a fixed schema
// declaration. The output schema never varies by source origin.
type Cleaner struct {
	table  schema.Table
	config Config
}

// NewCleaner creates a cleaner for one schema declaration
func NewCleaner(table schema.Table, config Config) (*Cleaner, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("cleaner schema: %w", err)
	}
	if config.MinRows < 2 {
		return nil, core.NewInvalidParameterError("minRows", "must be at least 2")
	}
	return &Cleaner{table: table, config: config}, nil
}

// Clean normalizes rows in order: trim, null the missing sentinel, drop rows
// without a usable target or protected value, impute the Unknown category for
// other missing categoricals, binarize the target, then dedup and fence.
func (c *Cleaner) Clean(rows [][]string, origin dataset.Origin) (*dataset.Dataset, Report, error) {
	report := Report{RowsIn: len(rows), Origin: origin}

	targetIdx := c.table.Index(c.table.Target)
	protectedIdx := c.table.Index(c.table.Protected)

	records := make([]dataset.Record, 0, len(rows))
	for _, row := range rows {
		if len(row) != c.table.Width() {
			report.Malformed++
			continue
		}

		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = c.normalize(cell)
		}

		label, ok := c.binarize(cells[targetIdx])
		if !ok {
			report.MissingTarget++
			continue
		}
		if cells[protectedIdx] == "" {
			report.MissingProtected++
			continue
		}

		rec, imputed, err := c.buildRecord(cells, label)
		if err != nil {
			report.BadNumeric++
			continue
		}
		report.ImputedCells += imputed
		records = append(records, rec)
	}

	records = c.dedupe(records, &report)
	if c.config.TrimOutliers {
		records = c.fence(records, &report)
	}

	report.RowsOut = len(records)
	if len(records) < c.config.MinRows {
		return nil, report, core.NewInsufficientDataError(len(records), c.config.MinRows)
	}

	ds, err := dataset.New(c.table, records, origin)
	if err != nil {
		return nil, report, fmt.Errorf("sealing dataset: %w", err)
	}
	return ds, report, nil
}

// normalize trims whitespace and maps the missing sentinel to empty.
func (c *Cleaner) normalize(cell string) string {
	cell = strings.TrimSpace(cell)
	if cell == c.table.MissingSentinel {
		return ""
	}
	return cell
}

// binarize maps the raw target to {0,1}. Only the exact positive value counts
// as 1; an absent target makes the row unusable.
func (c *Cleaner) binarize(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	if raw == c.table.PositiveTarget {
		return 1, true
	}
	return 0, true
}

func (c *Cleaner) buildRecord(cells []string, label int) (dataset.Record, int, error) {
	rec := dataset.Record{
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
		Label:       label,
	}
	imputed := 0

	for i, col := range c.table.Columns {
		if col.Name == c.table.Target {
			continue
		}
		cell := cells[i]
		switch col.Kind {
		case schema.KindNumeric:
			if cell == "" {
				return dataset.Record{}, 0, fmt.Errorf("missing numeric %s", col.Name)
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return dataset.Record{}, 0, fmt.Errorf("numeric %s: %w", col.Name, err)
			}
			rec.Numeric[col.Name] = v
		case schema.KindCategorical:
			if cell == "" {
				cell = UnknownCategory
				imputed++
			}
			rec.Categorical[col.Name] = cell
		}
	}

	rec.Group = rec.Categorical[c.table.Protected]
	return rec, imputed, nil
}

// dedupe drops exact duplicates after normalization, keeping first
// occurrence order.
func (c *Cleaner) dedupe(records []dataset.Record, report *Report) []dataset.Record {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, rec := range records {
		key := rec.Canonical(c.table)
		if seen[key] {
			report.Duplicates++
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out
}

// fence applies the 1.5 IQR rule to each fenced column in turn, recomputing
// quartiles over the rows that survived the previous column.
func (c *Cleaner) fence(records []dataset.Record, report *Report) []dataset.Record {
	for _, name := range c.table.OutlierColumns() {
		if len(records) < minFenceRows {
			return records
		}

		values := make([]float64, len(records))
		for i, rec := range records {
			values[i] = rec.Numeric[name]
		}
		q25, err := stats.Percentile(values, 25)
		if err != nil {
			continue
		}
		q75, err := stats.Percentile(values, 75)
		if err != nil {
			continue
		}
		iqr := q75 - q25
		lower := q25 - 1.5*iqr
		upper := q75 + 1.5*iqr

		out := records[:0]
		for _, rec := range records {
			v := rec.Numeric[name]
			if v < lower || v > upper {
				report.Outliers++
				continue
			}
			out = append(out, rec)
		}
		records = out
	}
	return records
}
