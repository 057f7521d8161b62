package domain

import "context"

// TableLoader loads a whole source file into memory.
// Implemented by engine.ParquetLoader.
type TableLoader interface {
	LoadTable(ctx context.Context, path string) (*Table, error)
}

// SchemaReader reads the type schema embedded in a source file.
// Implemented by parquetschema.Reader.
type SchemaReader interface {
	ReadSchema(path string) (DeclaredSchema, error)
}

// RecordExtractor produces the metadata records for a batch of files.
// Implemented by extract.Extractor.
type RecordExtractor interface {
	Extract(ctx context.Context, paths []string) ([]Record, error)
}

// ReportWriter renders records into the report artifact at path.
// Implemented by report.WorkbookWriter.
type ReportWriter interface {
	Write(records []Record, path string) error
}

// Stager makes remote inputs available as local files.
// Implemented by storage.S3Stager.
type Stager interface {
	// Handles reports whether the stager is responsible for path.
	Handles(path string) bool
	// Stage downloads path into dir and returns the local file path.
	Stage(ctx context.Context, path, dir string) (string, error)
}
