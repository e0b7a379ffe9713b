package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rthomason/storelens/internal/config"
	"github.com/rthomason/storelens/internal/errors"
	"github.com/rthomason/storelens/internal/logging"
)

// DB wraps a pgx connection pool with query execution scoped to a
// configured timeout
type DB struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// Connect opens a connection pool against the configured database and
// verifies it with a ping
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "invalid database configuration")
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to connect to database")
	}

	timeout := 30 * time.Second
	if cfg.QueryTimeout != "" {
		if parsed, err := time.ParseDuration(cfg.QueryTimeout); err == nil {
			timeout = parsed
		}
	}

	logging.GetLogger().WithFields(map[string]interface{}{
		"max_conns":     cfg.MaxConns,
		"query_timeout": timeout.String(),
	}).Info("Connected to database")

	return &DB{pool: pool, queryTimeout: timeout}, nil
}

// Pool exposes the underlying pool for metadata readers
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Execute runs a query and materializes the full result. Column order
// follows the statement's select list.
func (db *DB) Execute(ctx context.Context, sql string, args ...any) (*RowSet, error) {
	ctx, cancel := context.WithTimeout(ctx, db.queryTimeout)
	defer cancel()

	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeSQLExecution, "query execution failed")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))

	for i, fd := range fields {
		columns[i] = string(fd.Name)
	}

	result := &RowSet{Columns: columns, Records: [][]any{}}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeSQLExecution, "failed to read result row")
		}

		record := make([]any, len(values))
		copy(record, values)

		result.Records = append(result.Records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeSQLExecution, "query execution failed")
	}

	return result, nil
}

// Close shuts down the pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}
