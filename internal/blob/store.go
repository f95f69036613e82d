// Package blob reads JSON payloads from S3-compatible object storage.
package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/klauspost/compress/zlib"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kailas-cloud/mpapi/internal/db"
	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/metrics"
)

// Config holds object storage connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	// Compressed marks payloads as zlib-compressed JSON.
	Compressed bool
	// Suffix is appended to every object key, e.g. ".json.gz".
	Suffix string
}

// Store fetches and decodes objects. It is safe for concurrent use.
type Store struct {
	client     *minio.Client
	compressed bool
	suffix     string
}

// New creates a minio-backed store.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object storage endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("object storage credentials are required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Store{client: cli, compressed: cfg.Compressed, suffix: cfg.Suffix}, nil
}

// Get downloads bucket/key and decodes it as JSON.
// A missing object is domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, bucket, key string) (v any, err error) {
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ObjectFetchTotal.WithLabelValues(bucket, status).Inc()
	}()

	obj, err := s.client.GetObject(ctx, bucket, key+s.suffix, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap(err)
	}
	defer obj.Close()

	var r io.Reader = obj
	if s.compressed {
		zr, err := zlib.NewReader(obj)
		if err != nil {
			return nil, s.wrap(err)
		}
		defer zr.Close()
		r = zr
	}

	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, s.wrap(err)
	}
	return v, nil
}

// Ping checks that the endpoint answers.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.ListBuckets(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

func (s *Store) wrap(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, resp.Message)
	}
	return &db.Error{Op: db.OpGetObject, Err: err}
}
