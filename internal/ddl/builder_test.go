package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadParquetSQL(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr string
	}{
		{
			name: "plain",
			path: "/data/orders.parquet",
			want: `SELECT * FROM read_parquet('/data/orders.parquet')`,
		},
		{
			name: "escapes quotes",
			path: "/data/o'brien.parquet",
			want: `SELECT * FROM read_parquet('/data/o''brien.parquet')`,
		},
		{
			name:    "empty",
			path:    "  ",
			wantErr: "source path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadParquetSQL(tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribeParquetSQL(t *testing.T) {
	got, err := DescribeParquetSQL("a.parquet")
	require.NoError(t, err)
	assert.Equal(t, `DESCRIBE SELECT * FROM read_parquet('a.parquet') LIMIT 0`, got)

	_, err = DescribeParquetSQL("")
	require.Error(t, err)
}

func TestCopyToParquetSQL(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		path    string
		want    string
		wantErr string
	}{
		{
			name:  "valid",
			query: "SELECT 1 AS id",
			path:  "/tmp/out.parquet",
			want:  `COPY (SELECT 1 AS id) TO '/tmp/out.parquet' (FORMAT PARQUET)`,
		},
		{
			name:    "empty query",
			query:   "",
			path:    "/tmp/out.parquet",
			wantErr: "query is required",
		},
		{
			name:    "multiple statements",
			query:   "SELECT 1; DROP TABLE x",
			path:    "/tmp/out.parquet",
			wantErr: "single statement",
		},
		{
			name:    "empty path",
			query:   "SELECT 1",
			wantErr: "target path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CopyToParquetSQL(tt.query, tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
