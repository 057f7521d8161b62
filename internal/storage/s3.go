// Package storage stages remote Parquet inputs onto local disk so the
// extraction pipeline only ever reads local files.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"parquet-meta/internal/config"
	"parquet-meta/internal/domain"
)

// Compile-time check.
var _ domain.Stager = (*S3Stager)(nil)

// ObjectGetter is the subset of the S3 client used for staging.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Stager downloads s3:// objects into a local directory.
type S3Stager struct {
	client ObjectGetter
	logger *slog.Logger
}

// NewS3Stager creates a stager for S3-compatible object storage using the
// static credentials in cfg. Path-style addressing is used so that
// non-AWS endpoints work.
func NewS3Stager(cfg *config.Config, logger *slog.Logger) (*S3Stager, error) {
	if !cfg.HasS3Config() {
		return nil, fmt.Errorf("S3 config is incomplete")
	}

	endpoint := *cfg.S3Endpoint
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	client := s3.New(s3.Options{
		Region: *cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			*cfg.S3KeyID, *cfg.S3Secret, "",
		),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})
	return NewS3StagerWithClient(client, logger), nil
}

// NewS3StagerWithClient creates a stager around an existing client.
func NewS3StagerWithClient(client ObjectGetter, logger *slog.Logger) *S3Stager {
	return &S3Stager{client: client, logger: logger}
}

// Handles reports whether p is an s3:// URI.
func (s *S3Stager) Handles(p string) bool {
	return IsS3Path(p)
}

// Stage downloads the object at s3Path into dir and returns the local path.
// The local file keeps the object's base name.
func (s *S3Stager) Stage(ctx context.Context, s3Path, dir string) (string, error) {
	bucket, key, err := ParseS3Path(s3Path)
	if err != nil {
		return "", &domain.ValidationError{Message: err.Error()}
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("get object %q: %w", s3Path, err)
	}
	defer out.Body.Close() //nolint:errcheck

	local := filepath.Join(dir, path.Base(key))
	f, err := os.Create(local) //nolint:gosec // dir is a scratch directory owned by the caller
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	n, err := io.Copy(f, out.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(local)
		return "", fmt.Errorf("download %q: %w", s3Path, err)
	}

	s.logger.Debug("object staged", "source", s3Path, "path", local, "bytes", n)
	return local, nil
}

// IsS3Path reports whether p uses the s3:// scheme.
func IsS3Path(p string) bool {
	return strings.HasPrefix(p, "s3://")
}

// ParseS3Path splits an s3://bucket/key URI into its bucket and key.
func ParseS3Path(s3Path string) (bucket, key string, err error) {
	u, err := url.Parse(s3Path)
	if err != nil {
		return "", "", fmt.Errorf("parse S3 path %q: %w", s3Path, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("expected s3:// scheme, got %q in %q", u.Scheme, s3Path)
	}
	bucket = u.Host
	if bucket == "" {
		return "", "", fmt.Errorf("empty bucket in S3 path %q", s3Path)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("empty key in S3 path %q", s3Path)
	}
	return bucket, key, nil
}
