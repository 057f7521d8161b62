// Package classify refines a loaded column's storage type into a semantic
// type label.
//
// Classification is a pure function of the column's values, its storage
// type and the file's declared schema. It never fails: a parse failure or a
// schema miss only means that branch does not match.
package classify

import (
	"math"

	"parquet-meta/internal/domain"
)

// Classify returns the semantic type label for col. Rules are evaluated in
// priority order and the first match wins.
func Classify(col domain.Column, schema domain.DeclaredSchema) domain.TypeLabel {
	if col.Storage.Kind == domain.StorageAmbiguous {
		if label, ok := classifyAmbiguous(col, schema); ok {
			return label
		}
	}

	switch col.Storage.Kind {
	case domain.StorageInteger:
		return domain.IntegerLabel()
	case domain.StorageFloat:
		if allIntegral(col.NonNull()) {
			return domain.IntegerStoredAsFloatLabel()
		}
		return domain.DecimalLabel()
	case domain.StorageBoolean:
		return domain.BooleanLabel()
	case domain.StorageDateTime:
		return domain.DateTimeLabel()
	default:
		return domain.OtherLabel(col.Storage.Name)
	}
}

// classifyAmbiguous consults the declared schema and then the values of a
// column whose storage type does not tell text apart from other content.
func classifyAmbiguous(col domain.Column, schema domain.DeclaredSchema) (domain.TypeLabel, bool) {
	if field, ok := schema.Lookup(col.Name); ok && field.IsTextual() {
		return domain.StringLabel(), true
	}

	values := col.NonNull()
	if len(values) == 0 {
		return domain.TypeLabel{}, false
	}
	sample, ok := values[0].(string)
	if !ok {
		return domain.TypeLabel{}, false
	}

	if allDateTimes(values) {
		return domain.DateTimeLabel(), true
	}
	// Only the first value is checked against the explicit formats.
	if format, ok := matchDateFormat(sample); ok {
		return domain.DateWithFormatLabel(format), true
	}
	return domain.TypeLabel{}, false
}

// allIntegral reports whether values is non-empty and every value is a
// finite float with no fractional part.
func allIntegral(values []any) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		f, ok := asFloat(v)
		if !ok || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
			return false
		}
	}
	return true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
