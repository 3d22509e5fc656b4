package repository

import (
	"context"
	"testing"
	"time"

	"StockSense/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestCorrelationStoreFind(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "stock_db.correlations", mtest.FirstBatch, bson.D{
			{Key: "ticker", Value: "AAPL"},
			{Key: "correlations", Value: bson.A{"MSFT", "GOOGL"}},
		}))

		doc, err := NewMongoCorrelationStore(mt.Coll).Find(context.Background(), "AAPL")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, []string{"MSFT", "GOOGL"}, doc.Correlations)

		filter := mt.GetStartedEvent().Command.Lookup("filter", "ticker")
		assert.Equal(t, "AAPL", filter.StringValue())
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "stock_db.correlations", mtest.FirstBatch))

		doc, err := NewMongoCorrelationStore(mt.Coll).Find(context.Background(), "ZZZZ")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	mt.Run("error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		_, err := NewMongoCorrelationStore(mt.Coll).Find(context.Background(), "AAPL")
		assert.ErrorIs(t, err, models.ErrUpstreamService)
	})
}

func TestCorrelationStoreReplace(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	docs := []models.Correlation{
		{Ticker: "AAPL", Correlations: []string{"MSFT"}, Threshold: 0.4, ComputedAt: time.Now()},
		{Ticker: "MSFT", Correlations: []string{"AAPL"}, Threshold: 0.4, ComputedAt: time.Now()},
	}

	mt.Run("upsert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		require.NoError(t, NewMongoCorrelationStore(mt.Coll).Replace(context.Background(), docs, false))
		started := mt.GetStartedEvent()
		assert.Equal(t, "update", started.CommandName)
	})

	mt.Run("drop", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		require.NoError(t, NewMongoCorrelationStore(mt.Coll).Replace(context.Background(), docs, true))
		assert.Equal(t, "drop", mt.GetStartedEvent().CommandName)
		assert.Equal(t, "insert", mt.GetStartedEvent().CommandName)
	})
}

func TestSentimentStoreFindByTicker(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("uses configured field", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "stock_db.sentiment", mtest.FirstBatch,
			bson.D{{Key: "date", Value: "2024-03-02"}, {Key: "sentiment", Value: "positive"}, {Key: "sentiment_reasoning", Value: "beat"}, {Key: "tikker", Value: "AAPL"}},
			bson.D{{Key: "date", Value: "2024-03-01"}, {Key: "sentiment", Value: "negative"}, {Key: "sentiment_reasoning", Value: "miss"}, {Key: "tikker", Value: "AAPL"}},
		))

		out, err := NewMongoSentimentStore(mt.Coll, "").FindByTicker(context.Background(), "AAPL", 20)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, models.Sentiment{Date: "2024-03-02", Sentiment: "positive", SentimentReasoning: "beat", Ticker: "AAPL"}, out[0])

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, "AAPL", cmd.Lookup("filter", "tikker").StringValue())
		assert.EqualValues(t, 20, cmd.Lookup("limit").AsInt64())
		assert.EqualValues(t, -1, cmd.Lookup("sort", "date").AsInt64())
	})

	mt.Run("error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 1, Message: "boom"}))

		_, err := NewMongoSentimentStore(mt.Coll, "ticker").FindByTicker(context.Background(), "AAPL", 0)
		assert.ErrorIs(t, err, models.ErrUpstreamService)
	})
}

func TestSentimentStoreUpsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	rec := models.Sentiment{Date: "2024-03-01", Sentiment: "positive", SentimentReasoning: "beat", Ticker: "AAPL"}

	mt.Run("upserts on insight key", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "x"}}}},
		))

		n, err := NewMongoSentimentStore(mt.Coll, "tikker").Upsert(context.Background(), []models.Sentiment{rec, rec})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		started := mt.GetStartedEvent()
		assert.Equal(t, "update", started.CommandName)
		updates, err := started.Command.Lookup("updates").Array().Values()
		require.NoError(t, err)
		require.Len(t, updates, 1, "duplicates within a batch collapse")

		stmt := updates[0].Document()
		assert.Equal(t, InsightKey(rec), stmt.Lookup("q", "insight_key").StringValue())
		assert.True(t, stmt.Lookup("upsert").Boolean())
		assert.Equal(t, "AAPL", stmt.Lookup("u", "$setOnInsert", "tikker").StringValue())
	})

	mt.Run("already stored", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))

		n, err := NewMongoSentimentStore(mt.Coll, "tikker").Upsert(context.Background(), []models.Sentiment{rec})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	mt.Run("empty", func(mt *mtest.T) {
		n, err := NewMongoSentimentStore(mt.Coll, "tikker").Upsert(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestSentimentStoreEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unique insight key", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(t, NewMongoSentimentStore(mt.Coll, "tikker").EnsureIndexes(context.Background()))
		started := mt.GetStartedEvent()
		assert.Equal(t, "createIndexes", started.CommandName)
		idx := started.Command.Lookup("indexes").Array().Index(0).Value().Document()
		assert.True(t, idx.Lookup("unique").Boolean())
		assert.EqualValues(t, 1, idx.Lookup("key", "insight_key").AsInt64())
	})
}

func TestInsightKey(t *testing.T) {
	a := models.Sentiment{Date: "2024-03-01", SentimentReasoning: "beat", Ticker: "AAPL"}
	b := a
	b.Sentiment = "positive"
	assert.Equal(t, InsightKey(a), InsightKey(b))

	b.Date = "2024-03-02"
	assert.NotEqual(t, InsightKey(a), InsightKey(b))
}
