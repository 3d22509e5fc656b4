package repository

import (
	"context"
	"time"

	"StockSense/internal/domain/models"
)

// PriceFeed returns daily closes for tickers covering the last lookbackDays
// calendar days, in any order.
type PriceFeed interface {
	Fetch(ctx context.Context, tickers []string, lookbackDays int) ([]models.ClosePrice, error)
}

// PriceArchive persists daily closes.
type PriceArchive interface {
	StoreBatch(ctx context.Context, prices []models.ClosePrice) error
	Latest(ctx context.Context) (time.Time, error)
}

// CorrelationStore reads precomputed correlation lists. Find returns
// (nil, nil) when the ticker has no document.
type CorrelationStore interface {
	Find(ctx context.Context, ticker string) (*models.Correlation, error)
}

// CorrelationWriter persists correlation lists for the batch job.
type CorrelationWriter interface {
	Replace(ctx context.Context, docs []models.Correlation, dropExisting bool) error
}

// SentimentStore reads stored sentiment insights, newest first. limit <= 0
// means no limit.
type SentimentStore interface {
	FindByTicker(ctx context.Context, ticker string, limit int) ([]models.Sentiment, error)
}

// SentimentWriter stores sentiment insights for the ingestion job. Upsert
// skips insights already stored and returns how many were new.
type SentimentWriter interface {
	EnsureIndexes(ctx context.Context) error
	Upsert(ctx context.Context, records []models.Sentiment) (int, error)
}

// EventPublisher emits recommendation events.
type EventPublisher interface {
	PublishRecommendation(ctx context.Context, ev *models.RecommendationIssued) error
	Close() error
}

type Metrics interface {
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordForecast(universeVersion string, tickers int, seconds float64)
	RecordRecommendation(action string)
	RecordCacheResult(cache string, hit bool)
}
