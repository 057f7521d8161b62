package extract_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parquet-meta/internal/domain"
	"parquet-meta/internal/engine"
	"parquet-meta/internal/extract"
	"parquet-meta/internal/parquetschema"
	"parquet-meta/internal/testutil"
)

func newExtractor(t *testing.T) *extract.Extractor {
	t.Helper()
	db, err := engine.Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.DiscardHandler)
	return extract.New(engine.NewParquetLoader(db, logger), parquetschema.NewReader(), 7, logger)
}

func recordFor(t *testing.T, records []domain.Record, file, column string) domain.Record {
	t.Helper()
	for _, r := range records {
		if r.File == file && r.Column == column {
			return r
		}
	}
	require.Failf(t, "record not found", "%s/%s", file, column)
	return domain.Record{}
}

func TestExtract_TwoFiles(t *testing.T) {
	users := testutil.ParquetFile(t, "users.parquet", testutil.UsersSQL)
	events := testutil.ParquetFile(t, "events.parquet", testutil.EventsSQL)

	records, err := newExtractor(t).Extract(context.Background(), []string{users, events})
	require.NoError(t, err)
	require.Len(t, records, 4)

	// File-then-column order with base names.
	assert.Equal(t, []string{"users.parquet", "users.parquet", "events.parquet", "events.parquet"},
		[]string{records[0].File, records[1].File, records[2].File, records[3].File})
	assert.Equal(t, []string{"user_id", "name", "created_at", "created_text"},
		[]string{records[0].Column, records[1].Column, records[2].Column, records[3].Column})

	userID := recordFor(t, records, "users.parquet", "user_id")
	assert.Equal(t, "integer", userID.Type.String())
	assert.Equal(t, "min: 1; max: 100; observação: possível chave única", userID.Observations.String())
	assert.Empty(t, userID.Description)

	name := recordFor(t, records, "users.parquet", "name")
	assert.Equal(t, "string", name.Type.String())
	assert.Empty(t, name.Observations)

	createdAt := recordFor(t, records, "events.parquet", "created_at")
	assert.Equal(t, "datetime", createdAt.Type.String())

	createdText := recordFor(t, records, "events.parquet", "created_text")
	assert.Equal(t, "string", createdText.Type.String(), "declared utf8 wins over value parsing")
	assert.Equal(t, "observação: possível timestamp ISO", createdText.Observations.String())
}

func TestExtract_Orders(t *testing.T) {
	orders := testutil.ParquetFile(t, "orders.parquet", testutil.OrdersSQL)

	records, err := newExtractor(t).Extract(context.Background(), []string{orders})
	require.NoError(t, err)

	tests := []struct {
		column string
		typ    string
		obs    string
	}{
		{"order_uuid", "string", "observação: possível UUID"},
		{"amount", "decimal", "min: 4.5; max: 28.5; nulos: 3 (15.0%)"},
		{"quantity", "integer (stored as float)", "min: 0.0; max: 3.0"},
		{"paid", "boolean", ""},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			r := recordFor(t, records, "orders.parquet", tt.column)
			assert.Equal(t, tt.typ, r.Type.String())
			assert.Equal(t, tt.obs, r.Observations.String())
		})
	}
}

func TestExtract_ObservationEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		selectSQL string
		column    string
		typ       string
		obs       string
	}{
		{
			name:      "unsigned ids beyond int64",
			selectSQL: "SELECT (18446744073709551615 - range)::UBIGINT AS uid FROM range(3)",
			column:    "uid",
			typ:       "integer",
			obs:       "min: 18446744073709551613; max: 18446744073709551615; observação: possível chave única",
		},
		{
			name:      "list of timestamp strings is not flagged",
			selectSQL: "SELECT ['2024-01-01T00:00:00Z'] AS events FROM range(3)",
			column:    "events",
			typ:       "string",
			obs:       "",
		},
		{
			name:      "id column without rows",
			selectSQL: "SELECT range::BIGINT AS order_id FROM range(0)",
			column:    "order_id",
			typ:       "integer",
			obs:       "observação: possível chave única",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.ParquetFile(t, "edge.parquet", tt.selectSQL)

			records, err := newExtractor(t).Extract(context.Background(), []string{path})
			require.NoError(t, err)

			r := recordFor(t, records, "edge.parquet", tt.column)
			assert.Equal(t, tt.typ, r.Type.String())
			assert.Equal(t, tt.obs, r.Observations.String())
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	users := testutil.ParquetFile(t, "users.parquet", testutil.UsersSQL)
	orders := testutil.ParquetFile(t, "orders.parquet", testutil.OrdersSQL)
	paths := []string{users, orders}

	ex := newExtractor(t)
	first, err := ex.Extract(context.Background(), paths)
	require.NoError(t, err)
	second, err := ex.Extract(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtract_MalformedFileAbortsBatch(t *testing.T) {
	good := testutil.ParquetFile(t, "users.parquet", testutil.UsersSQL)
	bad := testutil.WriteCorrupt(t, "broken.parquet")

	records, err := newExtractor(t).Extract(context.Background(), []string{good, bad})
	require.Error(t, err)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "broken.parquet")

	var loadErr *domain.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestExtract_CanceledContext(t *testing.T) {
	users := testutil.ParquetFile(t, "users.parquet", testutil.UsersSQL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newExtractor(t).Extract(ctx, []string{users})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_Empty(t *testing.T) {
	records, err := newExtractor(t).Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}
