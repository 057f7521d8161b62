package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parquet-meta/internal/api"
	"parquet-meta/internal/config"
)

type noopProcessor struct{}

func (noopProcessor) Process(_ context.Context, _ []string, dest string) (string, error) {
	return dest, nil
}

func testRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	h := api.NewHandler(noopProcessor{}, func(context.Context) (string, error) {
		return "v1.4.0", nil
	}, t.TempDir(), config.DefaultMaxUploadBytes, logger)
	return newRouter(t.Context(), cfg, h, logger)
}

func TestRouter(t *testing.T) {
	cfg := &config.Config{
		RateLimitRPS:       100,
		RateLimitBurst:     100,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	router := testRouter(t, cfg)

	tests := []struct {
		name       string
		method     string
		path       string
		headers    map[string]string
		wantStatus int
		check      func(t *testing.T, resp *http.Response)
	}{
		{
			name:       "health through middleware",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), `"duckdb_version":"v1.4.0"`)
			},
		},
		{
			name:       "incoming request id echoed",
			method:     http.MethodGet,
			path:       "/health",
			headers:    map[string]string{"X-Request-ID": "trace-42"},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				assert.Equal(t, "trace-42", resp.Header.Get("X-Request-ID"))
			},
		},
		{
			name:       "cors allowed origin",
			method:     http.MethodGet,
			path:       "/health",
			headers:    map[string]string{"Origin": "http://localhost:3000"},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
			},
		},
		{
			name:       "cors unknown origin",
			method:     http.MethodGet,
			path:       "/health",
			headers:    map[string]string{"Origin": "http://evil.example"},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp *http.Response) {
				assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
			},
		},
		{
			name:       "download before any upload",
			method:     http.MethodGet,
			path:       "/download",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.RemoteAddr = "192.0.2.1:1234"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			resp := rec.Result()
			defer resp.Body.Close()
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			if tc.check != nil {
				tc.check(t, resp)
			}
		})
	}
}

func TestRouterRateLimit(t *testing.T) {
	router := testRouter(t, &config.Config{
		RateLimitRPS:       1,
		RateLimitBurst:     1,
		CORSAllowedOrigins: []string{"*"},
	})

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "198.51.100.7:5555"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
