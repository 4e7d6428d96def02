package schema

import (
	"fmt"
)

// Kind classifies how a column is cleaned and encoded.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// Column describes a single source column.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	// Excluded marks columns carried through cleaning but left out of the
	// model feature matrix.
	Excluded bool `json:"excluded,omitempty"`
	// OutlierFenced marks numeric columns subject to the IQR fence during
	// cleaning.
	OutlierFenced bool `json:"outlier_fenced,omitempty"`
}

// Table is an explicit, versioned schema declaration. The cleaner and the
// feature transform consume it instead of inferring column types at runtime,
// so behavior cannot drift when the upstream file changes shape.
type Table struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	// Columns in source file order. The target is one of them.
	Columns []Column `json:"columns"`
	// Protected is the categorical column whose per-group disparity is audited.
	Protected string `json:"protected"`
	// Target is the label column; PositiveTarget maps to label 1.
	Target         string `json:"target"`
	PositiveTarget string `json:"positive_target"`
	// MissingSentinel is the literal the source uses for absent values.
	MissingSentinel string `json:"missing_sentinel"`
}

// Adult returns version 1 of the UCI Adult census schema. The fnlwgt sampling
// weight is cleaned but never used as a model feature.
func Adult() Table {
	return Table{
		Version: 1,
		Name:    "adult",
		Columns: []Column{
			{Name: "age", Kind: KindNumeric, OutlierFenced: true},
			{Name: "workclass", Kind: KindCategorical},
			{Name: "fnlwgt", Kind: KindNumeric, Excluded: true},
			{Name: "education", Kind: KindCategorical},
			{Name: "education-num", Kind: KindNumeric},
			{Name: "marital-status", Kind: KindCategorical},
			{Name: "occupation", Kind: KindCategorical},
			{Name: "relationship", Kind: KindCategorical},
			{Name: "race", Kind: KindCategorical},
			{Name: "sex", Kind: KindCategorical},
			{Name: "capital-gain", Kind: KindNumeric},
			{Name: "capital-loss", Kind: KindNumeric},
			{Name: "hours-per-week", Kind: KindNumeric, OutlierFenced: true},
			{Name: "native-country", Kind: KindCategorical},
			{Name: "income", Kind: KindCategorical},
		},
		Protected:       "sex",
		Target:          "income",
		PositiveTarget:  ">50K",
		MissingSentinel: "?",
	}
}

// Validate checks internal consistency of the declaration.
func (t Table) Validate() error {
	if t.Version < 1 {
		return fmt.Errorf("schema version must be >= 1, got %d", t.Version)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("schema %s has no columns", t.Name)
	}

	seen := make(map[string]Kind, len(t.Columns))
	for _, col := range t.Columns {
		if col.Name == "" {
			return fmt.Errorf("schema %s has an unnamed column", t.Name)
		}
		if col.Kind != KindNumeric && col.Kind != KindCategorical {
			return fmt.Errorf("column %s has unknown kind %q", col.Name, col.Kind)
		}
		if col.OutlierFenced && col.Kind != KindNumeric {
			return fmt.Errorf("column %s is outlier-fenced but not numeric", col.Name)
		}
		if _, dup := seen[col.Name]; dup {
			return fmt.Errorf("duplicate column %s", col.Name)
		}
		seen[col.Name] = col.Kind
	}

	if kind, ok := seen[t.Target]; !ok {
		return fmt.Errorf("target column %s not declared", t.Target)
	} else if kind != KindCategorical {
		return fmt.Errorf("target column %s must be categorical", t.Target)
	}
	if kind, ok := seen[t.Protected]; !ok {
		return fmt.Errorf("protected column %s not declared", t.Protected)
	} else if kind != KindCategorical {
		return fmt.Errorf("protected column %s must be categorical", t.Protected)
	}
	if t.Protected == t.Target {
		return fmt.Errorf("protected column cannot be the target")
	}
	if t.PositiveTarget == "" {
		return fmt.Errorf("positive target value is required")
	}
	if t.MissingSentinel == "" {
		return fmt.Errorf("missing sentinel is required")
	}
	return nil
}

// Width returns the expected cell count per source row.
func (t Table) Width() int {
	return len(t.Columns)
}

// Index returns the position of a column, -1 when absent.
func (t Table) Index(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the declaration for name.
func (t Table) Column(name string) (Column, bool) {
	i := t.Index(name)
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// NumericFeatures returns numeric model-feature columns in declaration order.
func (t Table) NumericFeatures() []string {
	return t.features(KindNumeric)
}

// CategoricalFeatures returns categorical model-feature columns in declaration
// order. The protected column stays in: the audit measures outcomes, it does
// not blind the models.
func (t Table) CategoricalFeatures() []string {
	return t.features(KindCategorical)
}

// OutlierColumns returns the numeric columns subject to the IQR fence.
func (t Table) OutlierColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if col.OutlierFenced {
			names = append(names, col.Name)
		}
	}
	return names
}

func (t Table) features(kind Kind) []string {
	var names []string
	for _, col := range t.Columns {
		if col.Kind != kind || col.Excluded || col.Name == t.Target {
			continue
		}
		names = append(names, col.Name)
	}
	return names
}
