// Package parquetschema reads the type schema embedded in a Parquet file's
// footer without touching its row groups.
package parquetschema

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"parquet-meta/internal/domain"
)

// Compile-time check.
var _ domain.SchemaReader = (*Reader)(nil)

// Reader converts a Parquet footer schema into its Arrow form. Field types
// are reported as Arrow type names ("utf8", "int64", "timestamp[us, tz=UTC]").
type Reader struct {
	mem memory.Allocator
}

// NewReader returns a Reader using the default Arrow allocator.
func NewReader() *Reader {
	return &Reader{mem: memory.DefaultAllocator}
}

// ReadSchema returns the declared schema of the Parquet file at path.
// Failures are returned as *domain.LoadError.
func (r *Reader) ReadSchema(path string) (domain.DeclaredSchema, error) {
	fields, err := r.fields(path)
	if err != nil {
		return domain.DeclaredSchema{}, &domain.LoadError{Path: path, Err: err}
	}
	return domain.NewDeclaredSchema(fields), nil
}

func (r *Reader) fields(path string) ([]domain.DeclaredField, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("open parquet footer: %w", err)
	}
	defer pf.Close() //nolint:errcheck

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("arrow reader: %w", err)
	}
	schema, err := fr.Schema()
	if err != nil {
		return nil, fmt.Errorf("arrow schema: %w", err)
	}

	out := make([]domain.DeclaredField, 0, schema.NumFields())
	for _, f := range schema.Fields() {
		out = append(out, domain.DeclaredField{Name: f.Name, Type: f.Type.String()})
	}
	return out, nil
}
