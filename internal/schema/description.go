// Package schema reads live Postgres metadata and renders it into the
// deterministic text description embedded in generation prompts.
package schema

import (
	"github.com/rthomason/storelens/internal/errors"
)

// Column describes a single column of a table
type Column struct {
	Name         string
	DataType     string
	Nullable     bool
	IsPrimaryKey bool
	Default      string
}

// Table describes a table with its ordered columns and a small data sample
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	RowCount   int64
	// SampleRows holds up to two rows in column order, values already
	// rendered as strings
	SampleRows [][]string
}

// ForeignKey is one referential edge between two tables
type ForeignKey struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

// Description is a point-in-time snapshot of the public schema.
// Tables are sorted by name so renderings are reproducible.
type Description struct {
	Tables      []Table
	ForeignKeys []ForeignKey
}

// Table returns the named table, or nil when absent
func (d *Description) Table(name string) *Table {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return &d.Tables[i]
		}
	}

	return nil
}

// HasTable reports whether the named table exists in the snapshot
func (d *Description) HasTable(name string) bool {
	return d.Table(name) != nil
}

// Column returns the named column of a table, or nil when absent
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}

	return nil
}

// Validate checks that every foreign-key edge points at tables present in
// the snapshot
func (d *Description) Validate() error {
	for _, fk := range d.ForeignKeys {
		if !d.HasTable(fk.SourceTable) {
			return errors.Newf(errors.ErrTypeSchemaLoad,
				"foreign key references unknown source table %q", fk.SourceTable)
		}

		if !d.HasTable(fk.TargetTable) {
			return errors.Newf(errors.ErrTypeSchemaLoad,
				"foreign key references unknown target table %q", fk.TargetTable)
		}
	}

	return nil
}
