package schema

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rthomason/storelens/internal/errors"
	"github.com/rthomason/storelens/internal/logging"
)

const sampleRowLimit = 2

// Introspector reads table, column and constraint metadata from the
// public schema of a live database
type Introspector struct {
	pool *pgxpool.Pool
}

// NewIntrospector creates an introspector over an open connection pool
func NewIntrospector(pool *pgxpool.Pool) *Introspector {
	return &Introspector{pool: pool}
}

// Describe builds a full snapshot of the public schema. Metadata query
// failures are fatal; row counts and sample rows are best effort and leave
// the affected table with zero count or an empty sample.
func (in *Introspector) Describe(ctx context.Context) (*Description, error) {
	logger := logging.GetLogger()

	names, err := in.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	desc := &Description{Tables: make([]Table, 0, len(names))}

	for _, name := range names {
		table := Table{Name: name}

		table.Columns, err = in.columns(ctx, name)
		if err != nil {
			return nil, err
		}

		table.PrimaryKey, err = in.primaryKey(ctx, name)
		if err != nil {
			return nil, err
		}

		for _, pk := range table.PrimaryKey {
			if col := table.Column(pk); col != nil {
				col.IsPrimaryKey = true
			}
		}

		if table.RowCount, err = in.rowCount(ctx, name); err != nil {
			logger.WithField("table", name).WithError(err).Warn("row count unavailable")
			table.RowCount = 0
		}

		if table.SampleRows, err = in.sampleRows(ctx, &table); err != nil {
			logger.WithField("table", name).WithError(err).Warn("sample rows unavailable")
			table.SampleRows = nil
		}

		desc.Tables = append(desc.Tables, table)
	}

	if desc.ForeignKeys, err = in.foreignKeys(ctx); err != nil {
		return nil, err
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}

	return desc, nil
}

func (in *Introspector) tableNames(ctx context.Context) ([]string, error) {
	rows, err := in.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeSchemaLoad, "failed to list tables")
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeSchemaLoad, "failed to scan table name")
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeSchemaLoad, "failed to read table list")
	}

	sort.Strings(names)

	return names, nil
}

func (in *Introspector) columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := in.pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable, COALESCE(column_default, '')
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeSchemaLoad, "failed to read columns of %s", table)
	}
	defer rows.Close()

	var cols []Column

	for rows.Next() {
		var (
			col      Column
			nullable string
		)

		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.Default); err != nil {
			return nil, errors.Wrapf(err, errors.ErrTypeSchemaLoad, "failed to scan column of %s", table)
		}

		col.Nullable = nullable == "YES"
		cols = append(cols, col)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeSchemaLoad, "failed to read columns of %s", table)
	}

	return cols, nil
}

func (in *Introspector) primaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := in.pool.Query(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = 'public'
			AND tc.table_name = $1
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position`, table)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeSchemaLoad, "failed to read primary key of %s", table)
	}
	defer rows.Close()

	var cols []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrapf(err, errors.ErrTypeSchemaLoad, "failed to scan primary key of %s", table)
		}

		cols = append(cols, name)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeSchemaLoad, "failed to read primary key of %s", table)
	}

	return cols, nil
}

func (in *Introspector) foreignKeys(ctx context.Context) ([]ForeignKey, error) {
	rows, err := in.pool.Query(ctx, `
		SELECT tc.table_name, kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.table_schema = 'public' AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY tc.table_name, kcu.column_name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeSchemaLoad, "failed to read foreign keys")
	}
	defer rows.Close()

	var fks []ForeignKey

	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.SourceTable, &fk.SourceColumn, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeSchemaLoad, "failed to scan foreign key")
		}

		fks = append(fks, fk)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeSchemaLoad, "failed to read foreign keys")
	}

	return fks, nil
}

func (in *Introspector) rowCount(ctx context.Context, table string) (int64, error) {
	var count int64

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{table}.Sanitize())
	if err := in.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (in *Introspector) sampleRows(ctx context.Context, table *Table) ([][]string, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", pgx.Identifier{table.Name}.Sanitize(), sampleRowLimit)

	rows, err := in.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples [][]string

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		rendered := make([]string, len(values))
		for i, v := range values {
			rendered[i] = renderValue(v)
		}

		samples = append(samples, rendered)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

func renderValue(v any) string {
	if v == nil {
		return "NULL"
	}

	s := fmt.Sprint(v)
	if len(s) > 60 {
		s = s[:57] + "..."
	}

	return s
}
