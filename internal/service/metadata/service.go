// Package metadata implements the extraction entry point shared by the CLI
// and the upload server: stage inputs, extract records, write the report.
package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"parquet-meta/internal/domain"
	"parquet-meta/internal/storage"
)

// Service runs one extraction batch at a time. It keeps no state between
// batches.
type Service struct {
	extractor domain.RecordExtractor
	writer    domain.ReportWriter
	stagers   []domain.Stager
	logger    *slog.Logger
}

// NewService creates a Service. stagers resolve non-local inputs such as
// s3:// URIs; local paths are passed through unchanged.
func NewService(extractor domain.RecordExtractor, writer domain.ReportWriter, logger *slog.Logger, stagers ...domain.Stager) *Service {
	return &Service{
		extractor: extractor,
		writer:    writer,
		stagers:   stagers,
		logger:    logger,
	}
}

// Process extracts metadata for paths and writes the report to dest. The
// report is only written once every file has been processed, so a failed
// batch produces no report. It returns dest on success.
func (s *Service) Process(ctx context.Context, paths []string, dest string) (string, error) {
	if _, err := s.Report(ctx, paths, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Report is Process for callers that also want the records.
func (s *Service) Report(ctx context.Context, paths []string, dest string) ([]domain.Record, error) {
	records, err := s.Extract(ctx, paths)
	if err != nil {
		return nil, err
	}
	if err := s.writer.Write(records, dest); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	s.logger.Info("batch processed", "files", len(paths), "records", len(records), "report", dest)
	return records, nil
}

// Extract stages paths and returns their records without writing a report.
func (s *Service) Extract(ctx context.Context, paths []string) ([]domain.Record, error) {
	if len(paths) == 0 {
		return nil, domain.ErrValidation("no input files")
	}

	local, cleanup, err := s.stage(ctx, paths)
	defer cleanup()
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(ctx, local)
}

// stage resolves every remote path to a local copy. Each remote input gets
// its own subdirectory so equal base names cannot collide.
func (s *Service) stage(ctx context.Context, paths []string) ([]string, func(), error) {
	var scratch string
	cleanup := func() {
		if scratch != "" {
			_ = os.RemoveAll(scratch)
		}
	}

	local := make([]string, len(paths))
	for i, p := range paths {
		stager := s.stagerFor(p)
		if stager == nil {
			if storage.IsS3Path(p) {
				return nil, cleanup, domain.ErrValidation("cannot read %s: S3 storage is not configured", p)
			}
			local[i] = p
			continue
		}

		if scratch == "" {
			dir, err := os.MkdirTemp("", "parquet-meta-stage-*")
			if err != nil {
				return nil, cleanup, fmt.Errorf("create staging dir: %w", err)
			}
			scratch = dir
		}
		dir := filepath.Join(scratch, strconv.Itoa(i))
		if err := os.Mkdir(dir, 0o700); err != nil {
			return nil, cleanup, fmt.Errorf("create staging dir: %w", err)
		}
		staged, err := stager.Stage(ctx, p, dir)
		if err != nil {
			return nil, cleanup, fmt.Errorf("stage %s: %w", p, err)
		}
		local[i] = staged
	}
	return local, cleanup, nil
}

func (s *Service) stagerFor(p string) domain.Stager {
	for _, st := range s.stagers {
		if st.Handles(p) {
			return st
		}
	}
	return nil
}
