// Package api serves the upload-and-download HTTP surface around the
// metadata extraction service.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"parquet-meta/internal/domain"
	"parquet-meta/internal/middleware"
	"parquet-meta/internal/service/metadata"
)

const (
	// ReportName is the file name of the report, on disk and in downloads.
	ReportName = "parquet_metadata.xlsx"
	xlsxMIME   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// multipartMemory is how much of an upload is buffered in memory before
	// spilling to temporary files.
	multipartMemory = 32 << 20
)

// User-facing messages.
const (
	msgNoFiles        = "Nenhum arquivo enviado"
	msgNoSelection    = "Nenhum arquivo selecionado"
	msgNoValidParquet = "Nenhum arquivo Parquet válido enviado"
	msgProcessed      = "Arquivos processados com sucesso"
	msgReportMissing  = "Arquivo Excel não encontrado"
	msgTooLarge       = "Arquivo excede o tamanho máximo permitido"
)

// Processor runs one extraction batch and writes its report to dest.
// Implemented by metadata.Service.
type Processor interface {
	Process(ctx context.Context, paths []string, dest string) (string, error)
}

// VersionFunc reports the version of the embedded query engine.
type VersionFunc func(ctx context.Context) (string, error)

// Handler implements the HTTP endpoints. Batches are serialized because
// every batch writes the same report file.
type Handler struct {
	processor      Processor
	version        VersionFunc
	uploadDir      string
	maxUploadBytes int64
	logger         *slog.Logger
	started        time.Time

	mu sync.Mutex
}

// NewHandler creates a Handler storing uploads and the report under
// uploadDir.
func NewHandler(processor Processor, version VersionFunc, uploadDir string, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		processor:      processor,
		version:        version,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		started:        time.Now(),
	}
}

// ReportPath is where the latest report lives.
func (h *Handler) ReportPath() string {
	return filepath.Join(h.uploadDir, ReportName)
}

// Routes registers the endpoints on a new chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/upload", h.Upload)
	r.Get("/download", h.Download)
	r.Get("/health", h.Health)
	return r
}

type uploadResponse struct {
	Message  string `json:"message"`
	ExcelURL string `json:"excel_url"`
}

// Upload accepts Parquet files in the multipart field "files", extracts
// their metadata and replaces the report.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: msgTooLarge})
			return
		}
		writeError(w, domain.ErrValidation(msgNoFiles))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	files := r.MultipartForm.File["files"]
	if len(files) == 0 || files[0].Filename == "" {
		// A file input submitted with nothing selected arrives as a part
		// without a file name, which is parsed as a plain value.
		if _, selected := r.MultipartForm.Value["files"]; selected || len(files) > 0 {
			writeError(w, domain.ErrValidation(msgNoSelection))
			return
		}
		writeError(w, domain.ErrValidation(msgNoFiles))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	batchDir := filepath.Join(h.uploadDir, "batch-"+uuid.NewString())
	if err := os.MkdirAll(batchDir, 0o700); err != nil {
		writeError(w, fmt.Errorf("create batch dir: %w", err))
		return
	}
	defer os.RemoveAll(batchDir) //nolint:errcheck

	paths, err := saveParquetFiles(files, batchDir)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(paths) == 0 {
		writeError(w, domain.ErrValidation(msgNoValidParquet))
		return
	}

	logger := h.logger.With("request_id", middleware.RequestIDFromContext(r.Context()))
	if _, err := h.processor.Process(r.Context(), paths, h.ReportPath()); err != nil {
		// The previous report belongs to another batch.
		if rmErr := os.Remove(h.ReportPath()); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn("remove stale report", "error", rmErr)
		}
		logger.Error("batch failed", "files", len(paths), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	logger.Info("batch processed", "files", len(paths))
	writeJSON(w, http.StatusOK, uploadResponse{Message: msgProcessed, ExcelURL: "/download"})
}

// saveParquetFiles writes the .parquet uploads into dir under sanitized,
// de-duplicated names and returns their paths in upload order. Other files
// are skipped.
func saveParquetFiles(files []*multipart.FileHeader, dir string) ([]string, error) {
	used := make(map[string]bool)
	var paths []string
	for _, fh := range files {
		if !metadata.IsParquetName(fh.Filename) {
			continue
		}
		name := uniqueName(sanitizeFilename(fh.Filename), used)
		dest := filepath.Join(dir, name)
		if err := saveUpload(fh, dest); err != nil {
			return nil, err
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

func saveUpload(fh *multipart.FileHeader, dest string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close() //nolint:errcheck

	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // dest is built from a sanitized name
	if err != nil {
		return fmt.Errorf("save upload %s: %w", fh.Filename, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("save upload %s: %w", fh.Filename, err)
	}
	return dst.Close()
}

// sanitizeFilename reduces an uploaded name to a safe base name: path
// components are dropped, whitespace becomes '_' and only ASCII letters,
// digits, '.', '-' and '_' are kept.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = name[strings.LastIndex(name, "/")+1:]

	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '-', c == '_':
			b.WriteRune(c)
		case c == ' ' || c == '\t':
			b.WriteByte('_')
		}
	}
	name = strings.TrimLeft(b.String(), "._")
	if name == "" || strings.EqualFold(name, "parquet") {
		return "upload.parquet"
	}
	return name
}

// uniqueName suffixes repeated names with -2, -3, ... before the extension.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	ext := filepath.Ext(name)
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
	}
	used[candidate] = true
	return candidate
}

// Download serves the latest report as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.ReportPath())
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, domain.ErrNotFound(msgReportMissing))
			return
		}
		writeError(w, fmt.Errorf("open report: %w", err))
		return
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		writeError(w, fmt.Errorf("stat report: %w", err))
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportName))
	http.ServeContent(w, r, ReportName, info.ModTime(), f)
}

type healthResponse struct {
	Status        string `json:"status"`
	DuckDBVersion string `json:"duckdb_version"`
	UptimeSeconds int    `json:"uptime_seconds"`
}

// Health reports liveness and the embedded engine version.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	version, err := h.version(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		DuckDBVersion: version,
		UptimeSeconds: int(time.Since(h.started).Seconds()),
	})
}
