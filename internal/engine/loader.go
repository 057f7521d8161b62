package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"parquet-meta/internal/ddl"
	"parquet-meta/internal/domain"
)

// Compile-time check.
var _ domain.TableLoader = (*ParquetLoader)(nil)

// ParquetLoader reads whole Parquet files through DuckDB. Nothing is
// materialized inside DuckDB; each load is a single scan into Go memory.
type ParquetLoader struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewParquetLoader creates a loader backed by db.
func NewParquetLoader(db *sql.DB, logger *slog.Logger) *ParquetLoader {
	return &ParquetLoader{db: db, logger: logger}
}

// LoadTable reads every row of the Parquet file at path. Failures are
// returned as *domain.LoadError.
func (l *ParquetLoader) LoadTable(ctx context.Context, path string) (*domain.Table, error) {
	table, err := l.load(ctx, path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	l.logger.Debug("table loaded", "path", path, "columns", len(table.Columns), "rows", table.RowCount)
	return table, nil
}

func (l *ParquetLoader) load(ctx context.Context, path string) (*domain.Table, error) {
	columns, err := l.describe(ctx, path)
	if err != nil {
		return nil, err
	}

	query, err := ddl.ReadParquetSQL(path)
	if err != nil {
		return nil, err
	}
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	if len(names) != len(columns) {
		return nil, fmt.Errorf("column count mismatch: describe=%d scan=%d", len(columns), len(names))
	}

	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	rowCount := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", rowCount, err)
		}
		for i := range columns {
			columns[i].Values = append(columns[i].Values, normalizeValue(vals[i]))
			vals[i] = nil
		}
		rowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &domain.Table{Columns: columns, RowCount: rowCount}, nil
}

// describe returns the file's columns, in order, with their storage types.
func (l *ParquetLoader) describe(ctx context.Context, path string) ([]domain.Column, error) {
	query, err := ddl.DescribeParquetSQL(path)
	if err != nil {
		return nil, err
	}
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("describe parquet: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	fields, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe columns: %w", err)
	}
	if len(fields) < 2 {
		return nil, fmt.Errorf("unexpected describe output: %v", fields)
	}

	vals := make([]any, len(fields))
	ptrs := make([]any, len(fields))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	var columns []domain.Column
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan describe row: %w", err)
		}
		name, _ := vals[0].(string)
		typeName, _ := vals[1].(string)
		columns = append(columns, domain.Column{
			Name:    name,
			Storage: StorageTypeOf(typeName),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate describe rows: %w", err)
	}
	return columns, nil
}
