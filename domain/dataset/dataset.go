package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"fairlens/domain/core"
	"fairlens/domain/schema"
)

// OriginKind records which source produced the rows.
type OriginKind string

const (
	OriginRemote   OriginKind = "remote"
	OriginFallback OriginKind = "fallback"
)

// Origin identifies where the raw table came from.
type Origin struct {
	Kind     OriginKind `json:"kind"`
	Location string     `json:"location"`
}

// Dataset is an ordered sequence of cleaned records plus the schema they were
// cleaned against. Immutable once built; the fingerprint covers schema
// version and record content and keys the orchestration result cache.
type Dataset struct {
	table       schema.Table
	records     []Record
	origin      Origin
	fingerprint core.Fingerprint
	createdAt   core.Timestamp
}

// New validates every record against the schema and seals the dataset.
func New(table schema.Table, records []Record, origin Origin) (*Dataset, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	for i, rec := range records {
		if err := rec.Validate(table); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return &Dataset{
		table:       table,
		records:     records,
		origin:      origin,
		fingerprint: fingerprint(table, records),
		createdAt:   core.Now(),
	}, nil
}

// fingerprint hashes schema identity plus every record's canonical form. The
// origin is deliberately excluded: the same rows from remote and fallback
// must hit the same cache entry.
func fingerprint(table schema.Table, records []Record) core.Fingerprint {
	var b strings.Builder
	b.WriteString(table.Name)
	b.WriteByte('\x1e')
	b.WriteString(strconv.Itoa(table.Version))
	for _, rec := range records {
		b.WriteByte('\x1e')
		b.WriteString(rec.Canonical(table))
	}
	return core.NewFingerprint([]byte(b.String()))
}

// Schema returns the declaration the records were cleaned against.
func (d *Dataset) Schema() schema.Table {
	return d.table
}

// Records returns the cleaned rows in ingestion order. Callers must not
// modify the slice.
func (d *Dataset) Records() []Record {
	return d.records
}

// Len returns the row count.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Origin returns where the raw rows came from.
func (d *Dataset) Origin() Origin {
	return d.origin
}

// Fingerprint identifies the dataset content for caching and persistence.
func (d *Dataset) Fingerprint() core.Fingerprint {
	return d.fingerprint
}

// CreatedAt returns when the dataset was sealed.
func (d *Dataset) CreatedAt() core.Timestamp {
	return d.createdAt
}

// Labels returns the label vector in row order.
func (d *Dataset) Labels() []int {
	labels := make([]int, len(d.records))
	for i, rec := range d.records {
		labels[i] = rec.Label
	}
	return labels
}

// Groups returns the protected attribute vector in row order.
func (d *Dataset) Groups() []string {
	groups := make([]string, len(d.records))
	for i, rec := range d.records {
		groups[i] = rec.Group
	}
	return groups
}

// Subset materializes the records at the given indices, in the given order.
func (d *Dataset) Subset(indices []int) ([]Record, error) {
	out := make([]Record, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(d.records) {
			return nil, fmt.Errorf("index %d out of range [0,%d)", idx, len(d.records))
		}
		out[i] = d.records[idx]
	}
	return out, nil
}
