// Package ddl builds the DuckDB statements used to read and write Parquet files.
package ddl

import (
	"fmt"
	"strings"
)

// ReadParquetSQL returns a query selecting every row and column of a Parquet file.
func ReadParquetSQL(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("source path is required")
	}
	return fmt.Sprintf("SELECT * FROM read_parquet(%s)", QuoteLiteral(path)), nil
}

// DescribeParquetSQL returns a DESCRIBE statement listing the column names and
// DuckDB types of a Parquet file without reading its rows.
func DescribeParquetSQL(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("source path is required")
	}
	return fmt.Sprintf("DESCRIBE SELECT * FROM read_parquet(%s) LIMIT 0", QuoteLiteral(path)), nil
}

// CopyToParquetSQL returns a COPY statement writing the result of query to a
// Parquet file at path.
func CopyToParquetSQL(query, path string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query is required")
	}
	if strings.Contains(query, ";") {
		return "", fmt.Errorf("query must be a single statement")
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("target path is required")
	}
	return fmt.Sprintf("COPY (%s) TO %s (FORMAT PARQUET)", query, QuoteLiteral(path)), nil
}
