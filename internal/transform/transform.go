package transform

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"fairlens/domain/core"
	"fairlens/domain/dataset"
	"fairlens/domain/schema"
)

// NumericStats holds the frozen scaling parameters for one numeric feature.
type NumericStats struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Vocabulary holds the frozen one-hot dictionary for one categorical
// feature. Values are sorted so column order is independent of row order.
type Vocabulary struct {
	Column string   `json:"column"`
	Values []string `json:"values"`

	index map[string]int
}

func (v *Vocabulary) position(value string) (int, bool) {
	if v.index == nil {
		v.index = make(map[string]int, len(v.Values))
		for i, val := range v.Values {
			v.index[val] = i
		}
	}
	i, ok := v.index[value]
	return i, ok
}

// Fitted is a feature encoding learned once from training data and frozen.
// Applying it is a pure function of these parameters: the output width and
// column order are identical for every input sharing the schema, and the
// parameters are never refit.
type Fitted struct {
	SchemaVersion int            `json:"schema_version"`
	Numeric       []NumericStats `json:"numeric"`
	Categorical   []Vocabulary   `json:"categorical"`

	names []string
}

// Fit learns scaling parameters and one-hot vocabularies from the training
// subset only. Numeric features use mean and population standard deviation;
// a zero-variance column freezes stddev 1 so application never divides by
// zero.
func Fit(table schema.Table, records []dataset.Record) (*Fitted, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("transform schema: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: cannot fit a transform on an empty training subset", core.ErrInsufficientData)
	}

	f := &Fitted{SchemaVersion: table.Version}

	for _, name := range table.NumericFeatures() {
		values := make([]float64, len(records))
		for i, rec := range records {
			v, ok := rec.Numeric[name]
			if !ok {
				return nil, fmt.Errorf("record %d missing numeric column %s", i, name)
			}
			values[i] = v
		}
		mean := stat.Mean(values, nil)
		sd := stat.PopStdDev(values, nil)
		if sd == 0 {
			sd = 1
		}
		f.Numeric = append(f.Numeric, NumericStats{Column: name, Mean: mean, StdDev: sd})
	}

	for _, name := range table.CategoricalFeatures() {
		distinct := make(map[string]bool)
		for i, rec := range records {
			v, ok := rec.Categorical[name]
			if !ok || v == "" {
				return nil, fmt.Errorf("record %d missing categorical column %s", i, name)
			}
			distinct[v] = true
		}
		values := make([]string, 0, len(distinct))
		for v := range distinct {
			values = append(values, v)
		}
		sort.Strings(values)
		f.Categorical = append(f.Categorical, Vocabulary{Column: name, Values: values})
	}

	f.names = buildNames(f)
	return f, nil
}

func buildNames(f *Fitted) []string {
	names := make([]string, 0, f.Width())
	for _, ns := range f.Numeric {
		names = append(names, ns.Column)
	}
	for _, vocab := range f.Categorical {
		for _, value := range vocab.Values {
			names = append(names, vocab.Column+"="+value)
		}
	}
	return names
}

// Width returns the feature vector length: one column per numeric feature,
// one per known category.
func (f *Fitted) Width() int {
	w := len(f.Numeric)
	for _, vocab := range f.Categorical {
		w += len(vocab.Values)
	}
	return w
}

// FeatureNames returns the matrix column names in exact output order.
// Numeric columns keep their schema name; one-hot columns are "column=value".
func (f *Fitted) FeatureNames() []string {
	if f.names == nil {
		f.names = buildNames(f)
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Apply encodes records into a dense feature matrix using only the frozen
// parameters. Categories unseen at fit time produce an all-zero block for
// their column, never an error and never a new column.
func (f *Fitted) Apply(records []dataset.Record) ([][]float64, error) {
	width := f.Width()
	matrix := make([][]float64, len(records))

	for i, rec := range records {
		row := make([]float64, width)
		pos := 0

		for _, ns := range f.Numeric {
			v, ok := rec.Numeric[ns.Column]
			if !ok {
				return nil, fmt.Errorf("record %d missing numeric column %s", i, ns.Column)
			}
			row[pos] = (v - ns.Mean) / ns.StdDev
			pos++
		}

		for c := range f.Categorical {
			vocab := &f.Categorical[c]
			v, ok := rec.Categorical[vocab.Column]
			if !ok {
				return nil, fmt.Errorf("record %d missing categorical column %s", i, vocab.Column)
			}
			if offset, known := vocab.position(v); known {
				row[pos+offset] = 1
			}
			pos += len(vocab.Values)
		}

		matrix[i] = row
	}
	return matrix, nil
}

// DecodeCategorical inverts one record's one-hot block back to the category
// it encoded. Returns false for a column with no hot position, which is what
// an unseen category encodes to.
func (f *Fitted) DecodeCategorical(row []float64, column string) (string, bool) {
	if len(row) != f.Width() {
		return "", false
	}
	offset := len(f.Numeric)
	for _, vocab := range f.Categorical {
		if vocab.Column != column {
			offset += len(vocab.Values)
			continue
		}
		for i, value := range vocab.Values {
			if row[offset+i] == 1 {
				return value, true
			}
		}
		return "", false
	}
	return "", false
}
