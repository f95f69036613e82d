package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/kailas-cloud/mpapi/internal/db"
	"github.com/kailas-cloud/mpapi/internal/domain"
)

func newMockTest(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestQuery_BuildsFindCommand(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("find", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mp_core.summary", mtest.FirstBatch,
			bson.D{{Key: "material_id", Value: "mp-149"}, {Key: "elements", Value: bson.A{"Si"}}},
		))

		docs, err := s.Query(context.Background(), "summary", domain.StoreParams{
			Criteria:   domain.Criteria{"nelements": 1},
			Properties: []string{"material_id", "elements"},
			Sort:       []domain.SortField{{Field: "band_gap", Descending: true}},
			Skip:       10,
			Limit:      5,
			Hint:       domain.Hint{"nelements": 1},
		})
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		assert.Equal(mt, "mp-149", docs[0]["material_id"])
		assert.Equal(mt, []any{"Si"}, docs[0]["elements"])

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "summary", cmd.Lookup("find").StringValue())
		assert.Equal(mt, int32(1), cmd.Lookup("filter", "nelements").Int32())
		assert.Equal(mt, int32(0), cmd.Lookup("projection", "_id").Int32())
		assert.Equal(mt, int32(-1), cmd.Lookup("sort", "band_gap").Int32())
		assert.Equal(mt, int64(10), cmd.Lookup("skip").Int64())
		assert.Equal(mt, int64(5), cmd.Lookup("limit").Int64())
		assert.Equal(mt, int32(1), cmd.Lookup("hint", "nelements").Int32())
	})

	mt.Run("error", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "bad hint",
		}))

		_, err := s.Query(context.Background(), "summary", domain.StoreParams{})
		var dbErr *db.Error
		require.True(mt, errors.As(err, &dbErr))
		assert.Equal(mt, db.OpFind, dbErr.Op)
	})
}

func TestQuery_RoutesCollectionDatabase(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("consumer database", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core", Databases: map[string]string{"user_settings": "mp_consumers"}})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mp_consumers.user_settings", mtest.FirstBatch))

		_, err := s.Query(context.Background(), "user_settings", domain.StoreParams{})
		require.NoError(mt, err)
		assert.Equal(mt, "mp_consumers", mt.GetStartedEvent().DatabaseName)
	})
}

func TestCount(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("count", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mp_core.summary", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(42)}},
		))

		n, err := s.Count(context.Background(), "summary", domain.Criteria{"deprecated": false}, domain.Hint{"deprecated": 1})
		require.NoError(mt, err)
		assert.Equal(mt, 42, n)
	})
}

func TestAggregate(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("aggregate", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mp_core.formula_autocomplete", mtest.FirstBatch,
			bson.D{{Key: "formula_pretty", Value: "SiO2"}},
		))

		docs, err := s.Aggregate(context.Background(), "formula_autocomplete", []domain.Stage{
			{"$match": map[string]any{"formula_pretty": "SiO2"}},
			{"$limit": 10},
		})
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		assert.Equal(mt, "SiO2", docs[0]["formula_pretty"])
		assert.Equal(mt, "formula_autocomplete", mt.GetStartedEvent().Command.Lookup("aggregate").StringValue())
	})
}

func TestUpsert(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("replace", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := s.Upsert(context.Background(), "mpcomplete", "submission_id", domain.Document{"submission_id": "abc", "state": "SUBMITTED"})
		require.NoError(mt, err)
		assert.Equal(mt, "update", mt.GetStartedEvent().CommandName)
	})

	mt.Run("missing key", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		err := s.Upsert(context.Background(), "mpcomplete", "submission_id", domain.Document{"state": "SUBMITTED"})
		assert.ErrorIs(mt, err, domain.ErrValidation)
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("create", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := s.EnsureIndexes(context.Background(), "summary", []domain.Index{{Key: "material_id", Unique: true}, {Key: "nelements"}})
		require.NoError(mt, err)
		assert.Equal(mt, "createIndexes", mt.GetStartedEvent().CommandName)
	})

	mt.Run("options conflict", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 85, Name: "IndexOptionsConflict", Message: "index exists",
		}))

		require.NoError(mt, s.EnsureIndexes(context.Background(), "summary", []domain.Index{{Key: "material_id"}}))
	})

	mt.Run("empty", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		require.NoError(mt, s.EnsureIndexes(context.Background(), "summary", nil))
	})
}

func TestPing(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("ok", func(mt *mtest.T) {
		s := newStore(mt.Client, Config{Database: "mp_core"})
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, s.Ping(context.Background()))
	})
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(context.Background(), Config{Database: "mp_core"})
	require.Error(t, err)
	_, err = NewStore(context.Background(), Config{URI: "mongodb://localhost:27017"})
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	when := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()
	in := bson.M{
		"nested":  bson.M{"list": bson.A{bson.D{{Key: "a", Value: 1}}}},
		"updated": primitive.NewDateTimeFromTime(when),
		"_id":     oid,
	}

	got := normalizeMap(in)
	assert.Equal(t, map[string]any{"list": []any{map[string]any{"a": 1}}}, got["nested"])
	assert.Equal(t, when, got["updated"])
	assert.Equal(t, oid.Hex(), got["_id"])
}

func TestProjection(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "material_id", Value: 1}, {Key: "_id", Value: 0}}, projection([]string{"material_id"}))
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, projection([]string{"_id"}))
}

func TestHintSpec_Ordered(t *testing.T) {
	got := hintSpec(domain.Hint{"nelements": 1, "composition_reduced.Fe": 1})
	assert.Equal(t, bson.D{{Key: "composition_reduced.Fe", Value: 1}, {Key: "nelements", Value: 1}}, got)
}
