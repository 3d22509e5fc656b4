package repository

import (
	"context"
	"fmt"

	"StockSense/internal/domain/models"
	domrepo "StockSense/internal/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSentimentStore reads and upserts sentiment insights. Existing data
// stores the ticker under a configurable field name ("tikker" by default).
type MongoSentimentStore struct {
	coll        *mongo.Collection
	tickerField string
}

func NewMongoSentimentStore(coll *mongo.Collection, tickerField string) *MongoSentimentStore {
	if tickerField == "" {
		tickerField = "tikker"
	}
	return &MongoSentimentStore{coll: coll, tickerField: tickerField}
}

func (s *MongoSentimentStore) FindByTicker(ctx context.Context, ticker string, limit int) ([]models.Sentiment, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 0}}).
		SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.D{{Key: s.tickerField, Value: ticker}}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find sentiment for %s: %w", models.ErrUpstreamService, ticker, err)
	}
	var out []models.Sentiment
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: decode sentiment for %s: %w", models.ErrUpstreamService, ticker, err)
	}
	for i := range out {
		out[i].Ticker = ticker
	}
	return out, nil
}

// EnsureIndexes creates the unique index that keeps Upsert idempotent.
func (s *MongoSentimentStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: insightKeyField, Value: 1}},
		Options: options.Index().SetName("uniq_" + insightKeyField).SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create sentiment index: %w", err)
	}
	return nil
}

// Upsert stores records that are not already present, keyed on ticker, date
// and reasoning. It returns the number of newly stored records.
func (s *MongoSentimentStore) Upsert(ctx context.Context, records []models.Sentiment) (int, error) {
	seen := make(map[string]struct{}, len(records))
	writes := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		key := InsightKey(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		doc := bson.D{
			{Key: insightKeyField, Value: key},
			{Key: "date", Value: r.Date},
			{Key: "sentiment", Value: r.Sentiment},
			{Key: "sentiment_reasoning", Value: r.SentimentReasoning},
			{Key: s.tickerField, Value: r.Ticker},
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: insightKeyField, Value: key}}).
			SetUpdate(bson.D{{Key: "$setOnInsert", Value: doc}}).
			SetUpsert(true))
	}
	if len(writes) == 0 {
		return 0, nil
	}
	res, err := s.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("upsert sentiment: %w", err)
	}
	return int(res.UpsertedCount), nil
}

const insightKeyField = "insight_key"

var insightNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("stocksense/sentiment"))

// InsightKey identifies one insight across ingestion runs.
func InsightKey(r models.Sentiment) string {
	return uuid.NewSHA1(insightNamespace, []byte(r.Ticker+"\x00"+r.Date+"\x00"+r.SentimentReasoning)).String()
}

var (
	_ domrepo.SentimentStore  = (*MongoSentimentStore)(nil)
	_ domrepo.SentimentWriter = (*MongoSentimentStore)(nil)
)
