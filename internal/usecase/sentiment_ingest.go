package usecase

import (
	"context"
	"time"

	"StockSense/internal/domain/models"
	domrepo "StockSense/internal/domain/repository"
	domsvc "StockSense/internal/domain/service"
	applogger "StockSense/pkg/logger"
	"StockSense/pkg/util"
)

// SentimentIngest copies per-article sentiment insights from a news source
// into the sentiment store.
type SentimentIngest struct {
	source  domsvc.NewsSource
	writer  domrepo.SentimentWriter
	tickers []string
	days    int
	l       *applogger.Logger
	now     func() time.Time
}

func NewSentimentIngest(source domsvc.NewsSource, writer domrepo.SentimentWriter, tickers []string, days int, l *applogger.Logger) *SentimentIngest {
	if l == nil {
		l = applogger.Nop()
	}
	return &SentimentIngest{source: source, writer: writer, tickers: tickers, days: days, l: l, now: time.Now}
}

// Days lists the dates covered by one run: today-days through today-2,
// inclusive, oldest first. The two most recent days are skipped because
// insights are not yet attached to fresh articles.
func (s *SentimentIngest) Days() []string {
	today := util.Day(s.now().UTC())
	return util.DayRange(today.AddDate(0, 0, -s.days), today.AddDate(0, 0, -2))
}

// Run returns the number of newly stored records. Days already ingested by
// an earlier run are not stored again. A failing ticker/day is
// logged and skipped; only storage failures abort the run.
func (s *SentimentIngest) Run(ctx context.Context) (int, error) {
	if err := s.writer.EnsureIndexes(ctx); err != nil {
		return 0, err
	}
	days := s.Days()
	total := 0
	for _, ticker := range s.tickers {
		batch := s.collect(ctx, ticker, days)
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.writer.Upsert(ctx, batch)
		if err != nil {
			return total, err
		}
		total += n
		s.l.Debug("sentiment ingested", applogger.String("ticker", ticker), applogger.Int("records", n))
	}
	s.l.Info("sentiment ingestion finished",
		applogger.Int("tickers", len(s.tickers)),
		applogger.Int("days", len(days)),
		applogger.Int("records", total),
	)
	return total, nil
}

func (s *SentimentIngest) collect(ctx context.Context, ticker string, days []string) []models.Sentiment {
	var batch []models.Sentiment
	for _, day := range days {
		if ctx.Err() != nil {
			return batch
		}
		records, err := s.source.Insights(ctx, ticker, day)
		if err != nil {
			s.l.Warn("sentiment fetch failed",
				applogger.String("ticker", ticker),
				applogger.String("day", day),
				applogger.Error(err),
			)
			continue
		}
		batch = append(batch, records...)
	}
	return batch
}
