// Package mongo implements db.DocumentStore on the MongoDB Go driver.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kailas-cloud/mpapi/internal/db"
	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/metrics"
)

// Compile-time check: Store implements db.DocumentStore.
var _ db.DocumentStore = (*Store)(nil)

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI      string
	Database string
	// Databases routes individual collections to another database,
	// e.g. consumer collections kept apart from the core data.
	Databases map[string]string
	// Timeout bounds every operation when positive.
	Timeout time.Duration
}

// Store is a document store over one MongoDB deployment.
type Store struct {
	client    *mongo.Client
	database  string
	databases map[string]string
}

// NewStore connects to MongoDB. Connect does not block on the server; use
// WaitForReady to wait for it.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	return newStore(client, cfg), nil
}

func newStore(client *mongo.Client, cfg Config) *Store {
	return &Store{client: client, database: cfg.Database, databases: cfg.Databases}
}

func (s *Store) collection(name string) *mongo.Collection {
	database := s.database
	if d, ok := s.databases[name]; ok && d != "" {
		database = d
	}
	return s.client.Database(database).Collection(name)
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Query runs a find with the criteria, projection, sort, skip, limit and hint of params.
func (s *Store) Query(ctx context.Context, collection string, params domain.StoreParams) (docs []domain.Document, err error) {
	defer observe(collection, db.OpFind, time.Now(), &err)

	opts := options.Find()
	if params.Properties != nil {
		opts.SetProjection(projection(params.Properties))
	}
	if len(params.Sort) > 0 {
		opts.SetSort(sortSpec(params.Sort))
	}
	if params.Skip > 0 {
		opts.SetSkip(int64(params.Skip))
	}
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}
	if !params.Hint.IsEmpty() {
		opts.SetHint(hintSpec(params.Hint))
	}

	cur, err := s.collection(collection).Find(ctx, filter(params.Criteria), opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	return decodeAll(ctx, cur)
}

// Count returns the number of documents matching criteria.
func (s *Store) Count(ctx context.Context, collection string, criteria domain.Criteria, hint domain.Hint) (n int, err error) {
	defer observe(collection, db.OpCount, time.Now(), &err)

	opts := options.Count()
	if !hint.IsEmpty() {
		opts.SetHint(hintSpec(hint))
	}
	total, err := s.collection(collection).CountDocuments(ctx, filter(criteria), opts)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return int(total), nil
}

// Aggregate runs pipeline against collection.
func (s *Store) Aggregate(ctx context.Context, collection string, pipeline []domain.Stage) (docs []domain.Document, err error) {
	defer observe(collection, db.OpAggregate, time.Now(), &err)

	stages := make([]bson.M, len(pipeline))
	for i, st := range pipeline {
		stages[i] = bson.M(st)
	}
	cur, err := s.collection(collection).Aggregate(ctx, stages, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	return decodeAll(ctx, cur)
}

// Upsert replaces the document whose key field matches doc, inserting it if absent.
func (s *Store) Upsert(ctx context.Context, collection, key string, doc domain.Document) (err error) {
	defer observe(collection, db.OpReplace, time.Now(), &err)

	id, ok := doc[key]
	if !ok {
		return fmt.Errorf("%w: document has no %s", domain.ErrValidation, key)
	}
	_, err = s.collection(collection).ReplaceOne(ctx, bson.M{key: id}, bson.M(doc), options.Replace().SetUpsert(true))
	if err != nil {
		return &db.Error{Op: db.OpReplace, Err: err}
	}
	return nil
}

// EnsureIndexes creates single-field ascending indexes. Existing indexes are left as they are.
func (s *Store) EnsureIndexes(ctx context.Context, collection string, indexes []domain.Index) error {
	if len(indexes) == 0 {
		return nil
	}
	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, ix := range indexes {
		m := mongo.IndexModel{Keys: bson.D{{Key: ix.Key, Value: 1}}}
		if ix.Unique {
			m.Options = options.Index().SetUnique(true)
		}
		models = append(models, m)
	}
	if _, err := s.collection(collection).Indexes().CreateMany(ctx, models); err != nil {
		var cmdErr mongo.CommandError
		// IndexOptionsConflict: an index on the same key exists with other options.
		if errors.As(err, &cmdErr) && cmdErr.Code == 85 {
			return nil
		}
		return &db.Error{Op: db.OpCreateIndexes, Err: err}
	}
	return nil
}

func observe(collection, op string, start time.Time, err *error) {
	metrics.ObserveStore(collection, op, time.Since(start).Seconds(), *err)
}

func filter(c domain.Criteria) bson.M {
	if c == nil {
		return bson.M{}
	}
	return bson.M(c)
}

// projection includes the requested fields and drops _id unless asked for.
func projection(fields []string) bson.D {
	out := bson.D{}
	withID := false
	for _, f := range fields {
		if f == "_id" {
			withID = true
		}
		out = append(out, bson.E{Key: f, Value: 1})
	}
	if !withID {
		out = append(out, bson.E{Key: "_id", Value: 0})
	}
	return out
}

func sortSpec(fields []domain.SortField) bson.D {
	out := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Descending {
			dir = -1
		}
		out = append(out, bson.E{Key: f.Field, Value: dir})
	}
	return out
}

// hintSpec orders hint keys so compound hints are deterministic.
func hintSpec(h domain.Hint) bson.D {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(bson.D, 0, len(keys))
	for _, k := range keys {
		out = append(out, bson.E{Key: k, Value: h[k]})
	}
	return out
}
