// Package engine loads Parquet files into memory through an embedded DuckDB
// connection.
package engine

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"parquet-meta/internal/ddl"
)

// Open opens an in-memory DuckDB database. When maxMemory is non-empty
// (e.g. "2GB") it caps DuckDB's memory use.
func Open(ctx context.Context, maxMemory string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if maxMemory != "" {
		if _, err := db.ExecContext(ctx, "SET max_memory="+ddl.QuoteLiteral(maxMemory)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set max_memory: %w", err)
		}
	}
	return db, nil
}

// Version returns the DuckDB library version.
func Version(ctx context.Context, db *sql.DB) (string, error) {
	var version string
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("query duckdb version: %w", err)
	}
	return version, nil
}
