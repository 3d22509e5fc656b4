package repository

import (
	"context"
	"errors"
	"fmt"

	"StockSense/internal/domain/models"
	domrepo "StockSense/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCorrelationStore keeps one document per ticker:
// {ticker, correlations: [...], threshold, computed_at}.
type MongoCorrelationStore struct {
	coll *mongo.Collection
}

func NewMongoCorrelationStore(coll *mongo.Collection) *MongoCorrelationStore {
	return &MongoCorrelationStore{coll: coll}
}

func (s *MongoCorrelationStore) Find(ctx context.Context, ticker string) (*models.Correlation, error) {
	var doc models.Correlation
	err := s.coll.FindOne(ctx, bson.D{{Key: "ticker", Value: ticker}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find correlations for %s: %w", models.ErrUpstreamService, ticker, err)
	}
	return &doc, nil
}

// Replace writes docs. With dropExisting the collection is dropped first and
// docs are inserted; otherwise each doc is upserted by ticker.
func (s *MongoCorrelationStore) Replace(ctx context.Context, docs []models.Correlation, dropExisting bool) error {
	if dropExisting {
		if err := s.coll.Drop(ctx); err != nil {
			return fmt.Errorf("drop correlations: %w", err)
		}
		if len(docs) == 0 {
			return nil
		}
		batch := make([]interface{}, len(docs))
		for i := range docs {
			batch[i] = docs[i]
		}
		if _, err := s.coll.InsertMany(ctx, batch); err != nil {
			return fmt.Errorf("insert correlations: %w", err)
		}
		return nil
	}

	if len(docs) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		writes[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "ticker", Value: d.Ticker}}).
			SetReplacement(d).
			SetUpsert(true)
	}
	if _, err := s.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("upsert correlations: %w", err)
	}
	return nil
}

var (
	_ domrepo.CorrelationStore  = (*MongoCorrelationStore)(nil)
	_ domrepo.CorrelationWriter = (*MongoCorrelationStore)(nil)
)
