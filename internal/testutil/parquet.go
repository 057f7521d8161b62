// Package testutil provides Parquet fixtures for tests across the codebase.
// Fixtures are produced by DuckDB itself so they carry the same embedded
// schema a real export would.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/stretchr/testify/require"

	"parquet-meta/internal/ddl"
)

// OpenDuckDB opens an in-memory DuckDB database closed at test cleanup.
func OpenDuckDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// WriteParquet writes the result of selectSQL to path as a Parquet file.
func WriteParquet(t *testing.T, db *sql.DB, path, selectSQL string) string {
	t.Helper()
	stmt, err := ddl.CopyToParquetSQL(selectSQL, path)
	require.NoError(t, err)
	_, err = db.ExecContext(context.Background(), stmt)
	require.NoError(t, err, "write parquet fixture %s", path)
	return path
}

// ParquetFile writes selectSQL to a file called name inside a fresh
// t.TempDir() and returns its path.
func ParquetFile(t *testing.T, name, selectSQL string) string {
	t.Helper()
	db := OpenDuckDB(t)
	return WriteParquet(t, db, filepath.Join(t.TempDir(), name), selectSQL)
}

// UsersSQL selects 100 rows: distinct user_id 1..100 and a text name.
const UsersSQL = `SELECT range::BIGINT AS user_id, 'user ' || range::VARCHAR AS name
FROM range(1, 101)`

// EventsSQL selects 10 rows: a TIMESTAMP created_at and the same instant as
// ISO-8601 text in created_text.
const EventsSQL = `SELECT
	TIMESTAMP '2024-01-01 00:00:00' + to_hours(range) AS created_at,
	strftime(TIMESTAMP '2024-01-01 00:00:00' + to_hours(range), '%Y-%m-%dT%H:%M:%SZ') AS created_text
FROM range(0, 10)`

// OrdersSQL selects 20 rows with 3 null amounts, UUID-shaped order ids and
// float-stored integer quantities.
const OrdersSQL = `SELECT
	printf('%08d-0000-4000-8000-%012d', range, range) AS order_uuid,
	CASE WHEN range < 3 THEN NULL ELSE range * 1.5 END::DOUBLE AS amount,
	(range % 4)::DOUBLE AS quantity,
	range % 2 = 0 AS paid
FROM range(0, 20)`

// WriteCorrupt writes bytes that are not a Parquet file to name inside a
// fresh t.TempDir() and returns the path.
func WriteCorrupt(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("this is not parquet"), 0o600))
	return path
}
