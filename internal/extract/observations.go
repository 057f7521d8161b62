package extract

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/big"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode/utf8"

	"parquet-meta/internal/domain"
)

const sampleSize = 5

// observe computes the notes for one column. Each note is derived
// independently; one that cannot be computed is left out without
// affecting the others.
func (e *Extractor) observe(file string, col domain.Column, label domain.TypeLabel, rowCount int) domain.Observations {
	var obs domain.Observations

	switch {
	case label.IsNumeric():
		if lo, hi, ok := minMax(col.NonNull()); ok {
			obs = obs.Set(domain.ObsMin, lo)
			obs = obs.Set(domain.ObsMax, hi)
		}
		if uniqueKey(col, rowCount) {
			obs = obs.Set(domain.ObsNote, domain.NoteUniqueKey)
		}
	case label.Kind == domain.TypeString:
		sample := e.sample(file, col)
		if looksLikeUUID(sample) {
			obs = obs.Set(domain.ObsNote, domain.NoteUUID)
		} else if looksLikeISOTimestamp(col.Name, sample) {
			obs = obs.Set(domain.ObsNote, domain.NoteISOTimestamp)
		}
	}

	if nulls, ok := nullSummary(col, rowCount); ok {
		obs = obs.Set(domain.ObsNulls, nulls)
	}
	return obs
}

// minMax returns the smallest and largest value in display form. Integer
// columns may mix int64 with the uint64 and *big.Int values that do not fit
// it. Any other value makes the statistic unavailable.
func minMax(values []any) (string, string, bool) {
	if len(values) == 0 {
		return "", "", false
	}
	if first, ok := values[0].(float64); ok {
		lo, hi := first, first
		for _, v := range values[1:] {
			f, ok := v.(float64)
			if !ok {
				return "", "", false
			}
			lo, hi = math.Min(lo, f), math.Max(hi, f)
		}
		return formatFloat(lo), formatFloat(hi), true
	}

	var lo, hi *big.Int
	for _, v := range values {
		n, ok := asBigInt(v)
		if !ok {
			return "", "", false
		}
		if lo == nil || n.Cmp(lo) < 0 {
			lo = n
		}
		if hi == nil || n.Cmp(hi) > 0 {
			hi = n
		}
	}
	return lo.String(), hi.String(), true
}

func asBigInt(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int64:
		return big.NewInt(n), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case *big.Int:
		return n, n != nil
	default:
		return nil, false
	}
}

// formatFloat renders f the way the report has always shown floats:
// shortest round-trip digits, ".0" on integral values, and exponent form
// below 1e-4 or from 1e16 up.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// uniqueKey reports whether an id-like column holds a distinct non-null
// value in every row. A column without rows qualifies.
func uniqueKey(col domain.Column, rowCount int) bool {
	name := strings.ToLower(col.Name)
	if !strings.HasSuffix(name, "id") && !strings.Contains(name, "codigo") {
		return false
	}
	seen := make(map[any]struct{}, rowCount)
	for _, v := range col.Values {
		if v == nil {
			return false
		}
		seen[distinctKey(v)] = struct{}{}
	}
	return len(seen) == rowCount
}

func distinctKey(v any) any {
	switch x := v.(type) {
	case *big.Int:
		return "bigint:" + x.String()
	case []byte:
		return "bytes:" + string(x)
	default:
		return v
	}
}

// sample picks up to sampleSize non-null values. The choice is
// pseudo-random but fixed for a given seed, file and column.
func (e *Extractor) sample(file string, col domain.Column) []any {
	values := col.NonNull()
	k := min(sampleSize, len(values))
	if k == 0 {
		return nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(file))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(col.Name))
	rng := rand.New(rand.NewPCG(e.seed, h.Sum64()))

	// Partial Fisher-Yates over an index slice.
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	out := make([]any, k)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = values[idx[i]]
	}
	return out
}

// allStrings reports whether sample is non-empty, holds only strings and
// every one satisfies pred. Nested values never qualify, whatever their
// printed form.
func allStrings(sample []any, pred func(string) bool) bool {
	if len(sample) == 0 {
		return false
	}
	for _, v := range sample {
		s, ok := v.(string)
		if !ok || !pred(s) {
			return false
		}
	}
	return true
}

// looksLikeUUID reports whether every sampled value is a 36 character
// string containing a hyphen. An empty sample proves nothing.
func looksLikeUUID(sample []any) bool {
	return allStrings(sample, func(s string) bool {
		return utf8.RuneCountInString(s) == 36 && strings.Contains(s, "-")
	})
}

// looksLikeISOTimestamp reports whether the column is named like an ISO
// timestamp or every sampled value is a string containing both 'T' and 'Z'.
func looksLikeISOTimestamp(name string, sample []any) bool {
	if strings.HasSuffix(strings.ToLower(name), "_iso") {
		return true
	}
	return allStrings(sample, func(s string) bool {
		return strings.Contains(s, "T") && strings.Contains(s, "Z")
	})
}

// nullSummary renders the null count with its share of all rows, e.g.
// "3 (15.0%)". Columns without nulls get no note.
func nullSummary(col domain.Column, rowCount int) (string, bool) {
	nulls := col.NullCount()
	if nulls == 0 || rowCount == 0 {
		return "", false
	}
	pct := float64(nulls) / float64(rowCount) * 100
	return fmt.Sprintf("%d (%.1f%%)", nulls, pct), true
}
