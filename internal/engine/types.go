package engine

import (
	"math"
	"math/big"
	"strings"

	"github.com/duckdb/duckdb-go/v2"

	"parquet-meta/internal/domain"
)

// StorageTypeOf maps a DuckDB column type name, as reported by DESCRIBE, to
// its storage kind.
func StorageTypeOf(typeName string) domain.StorageType {
	name := strings.TrimSpace(typeName)
	upper := strings.ToUpper(name)

	// Nested types: INTEGER[], VARCHAR[3], STRUCT(...), MAP(...), UNION(...).
	if strings.HasSuffix(upper, "]") {
		return domain.StorageType{Kind: domain.StorageAmbiguous, Name: name}
	}
	base := upper
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}

	switch base {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT",
		"UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT", "UHUGEINT":
		return domain.StorageType{Kind: domain.StorageInteger, Name: name}
	case "FLOAT", "DOUBLE", "DECIMAL":
		return domain.StorageType{Kind: domain.StorageFloat, Name: name}
	case "BOOLEAN":
		return domain.StorageType{Kind: domain.StorageBoolean, Name: name}
	case "DATE", "TIMESTAMP", "TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS",
		"TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE":
		return domain.StorageType{Kind: domain.StorageDateTime, Name: name}
	case "VARCHAR", "BLOB", "UUID", "JSON", "BIT", "ENUM", "STRUCT", "MAP", "UNION", "LIST":
		return domain.StorageType{Kind: domain.StorageAmbiguous, Name: name}
	default:
		return domain.StorageType{Kind: domain.StorageOther, Name: name}
	}
}

// normalizeValue converts a scanned DuckDB value to the representation the
// classifier and statistics expect: integers as int64, floats and decimals as
// float64, NaN as null. Integers that do not fit in int64 keep their scanned
// type.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case nil:
		return nil
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
		return n
	case *big.Int:
		if n != nil && n.IsInt64() {
			return n.Int64()
		}
		return n
	case float32:
		return normalizeFloat(float64(n))
	case float64:
		return normalizeFloat(n)
	case duckdb.Decimal:
		return normalizeFloat(n.Float64())
	default:
		return v
	}
}

func normalizeFloat(f float64) any {
	if math.IsNaN(f) {
		return nil
	}
	return f
}
