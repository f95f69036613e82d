package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/mpapi/internal/db"
)

var _ db.KVStore = (*Store)(nil)

const defaultScanCount = 500

// Config holds connection parameters for the response cache.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	DB         int
	ClientName string
	// ScanCount is the SCAN batch size used by DelPrefix.
	ScanCount int64
}

// Store is the response cache backend. Values are opaque encoded documents.
type Store struct {
	client    rueidis.Client
	scanCount int64
}

// NewStore connects to Redis. Server-assisted client caching is disabled:
// cached responses are read once per request and never reused in-process.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   cfg.ClientName,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s := newStore(client)
	if cfg.ScanCount > 0 {
		s.scanCount = cfg.ScanCount
	}
	return s, nil
}

func newStore(c rueidis.Client) *Store {
	return &Store{client: c, scanCount: defaultScanCount}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the cache responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}
