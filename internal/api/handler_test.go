package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parquet-meta/internal/domain"
)

type fakeProcessor struct {
	err   error
	paths []string
	names []string
}

func (f *fakeProcessor) Process(_ context.Context, paths []string, dest string) (string, error) {
	f.paths = paths
	for _, p := range paths {
		_, err := os.Stat(p)
		if err != nil {
			return "", err
		}
		f.names = append(f.names, filepath.Base(p))
	}
	if f.err != nil {
		return "", f.err
	}
	return dest, os.WriteFile(dest, []byte("xlsx"), 0o600)
}

func staticVersion(v string) VersionFunc {
	return func(context.Context) (string, error) { return v, nil }
}

func newTestHandler(t *testing.T, p Processor) *Handler {
	t.Helper()
	return NewHandler(p, staticVersion("v1.4.0"), t.TempDir(), 1<<20, slog.New(slog.DiscardHandler))
}

type part struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.field, p.content))
			continue
		}
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestUpload_Success(t *testing.T) {
	proc := &fakeProcessor{}
	h := newTestHandler(t, proc)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, multipartRequest(t,
		part{"files", "users.parquet", "a"},
		part{"files", "notes.txt", "b"},
		part{"files", "../../etc/orders.PARQUET", "c"},
		part{"files", "users.parquet", "d"},
	))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Arquivos processados com sucesso", body["message"])
	assert.Equal(t, "/download", body["excel_url"])

	assert.Equal(t, []string{"users.parquet", "orders.PARQUET", "users-2.parquet"}, proc.names)
	assert.FileExists(t, h.ReportPath())
	for _, p := range proc.paths {
		assert.NoFileExists(t, p, "batch uploads are removed after processing")
	}
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		status  int
		message string
	}{
		{
			name: "not multipart",
			req: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/upload", nil)
			},
			status:  http.StatusBadRequest,
			message: "Nenhum arquivo enviado",
		},
		{
			name: "files field missing",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, part{"other", "users.parquet", "a"})
			},
			status:  http.StatusBadRequest,
			message: "Nenhum arquivo enviado",
		},
		{
			name: "empty selection",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, part{field: "files"})
			},
			status:  http.StatusBadRequest,
			message: "Nenhum arquivo selecionado",
		},
		{
			name: "no parquet files",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, part{"files", "data.csv", "a,b"})
			},
			status:  http.StatusBadRequest,
			message: "Nenhum arquivo Parquet válido enviado",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, part{"files", "big.parquet", string(bytes.Repeat([]byte("x"), 2<<20))})
			},
			status:  http.StatusRequestEntityTooLarge,
			message: "Arquivo excede o tamanho máximo permitido",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{}
			h := newTestHandler(t, proc)

			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, tt.req(t))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeBody(t, rec)["error"])
			assert.Nil(t, proc.paths, "processor must not run")
		})
	}
}

func TestUpload_ProcessingFailureRemovesStaleReport(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("extract broken.parquet: load failed")}
	h := newTestHandler(t, proc)
	require.NoError(t, os.WriteFile(h.ReportPath(), []byte("old report"), 0o600))

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, multipartRequest(t, part{"files", "broken.parquet", "nope"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "extract broken.parquet: load failed", decodeBody(t, rec)["error"])
	assert.NoFileExists(t, h.ReportPath())
}

func TestDownload(t *testing.T) {
	h := newTestHandler(t, &fakeProcessor{})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Arquivo Excel não encontrado", decodeBody(t, rec)["error"])

	require.NoError(t, os.WriteFile(h.ReportPath(), []byte("report-bytes"), 0o600))
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="parquet_metadata.xlsx"`, rec.Header().Get("Content-Disposition"))
	data, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "report-bytes", string(data))
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, &fakeProcessor{})
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "v1.4.0", body.DuckDBVersion)

	failing := NewHandler(&fakeProcessor{}, func(context.Context) (string, error) {
		return "", errors.New("database is closed")
	}, t.TempDir(), 1<<20, slog.New(slog.DiscardHandler))
	rec = httptest.NewRecorder()
	failing.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"users.parquet", "users.parquet"},
		{"../../etc/passwd.parquet", "passwd.parquet"},
		{`C:\data\sales 2024.parquet`, "sales_2024.parquet"},
		{"relatório.parquet", "relatrio.parquet"},
		{".hidden.parquet", "hidden.parquet"},
		{".parquet", "upload.parquet"},
		{"", "upload.parquet"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "a.parquet", uniqueName("a.parquet", used))
	assert.Equal(t, "a-2.parquet", uniqueName("a.parquet", used))
	assert.Equal(t, "a-3.parquet", uniqueName("a.parquet", used))
	assert.Equal(t, "a-2-2.parquet", uniqueName("a-2.parquet", used))
}

func TestHTTPStatusFromDomainError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, httpStatusFromDomainError(domain.ErrValidation("bad input")))
	assert.Equal(t, http.StatusNotFound, httpStatusFromDomainError(domain.ErrNotFound("missing")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, httpStatusFromDomainError(&http.MaxBytesError{Limit: 1}))
	assert.Equal(t, http.StatusInternalServerError, httpStatusFromDomainError(errors.New("boom")))
}
