package di

import (
	"context"
	"fmt"
	"time"

	"StockSense/internal/domain/repository"
	domsvc "StockSense/internal/domain/service"
	"StockSense/internal/forecast"
	"StockSense/internal/handler/api"
	internalrepo "StockSense/internal/repository"
	"StockSense/internal/service/polygon"
	"StockSense/internal/service/ratelimit"
	"StockSense/internal/service/yahoo"
	"StockSense/internal/services/advisor"
	"StockSense/internal/services/llm"
	"StockSense/internal/services/model"
	"StockSense/internal/usecase"
	"StockSense/pkg/cache"
	pkgch "StockSense/pkg/clickhouse"
	"StockSense/pkg/config"
	xhttp "StockSense/pkg/http"
	pkgkafka "StockSense/pkg/kafka"
	applogger "StockSense/pkg/logger"
	"StockSense/pkg/metrics"
	pkgmongo "StockSense/pkg/mongo"
	"StockSense/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideUniverse loads the universe manifest the model was trained on.
func ProvideUniverse(cfg *config.Config) (*forecast.Universe, error) {
	return forecast.LoadUniverse(cfg.Forecast.UniverseFile)
}

// ProvideSequenceModel creates the model-serving client.
func ProvideSequenceModel(cfg *config.Config) *model.ServingModel {
	return model.NewServingModel(cfg.Model.URL, cfg.Model.Name, cfg.Model.Timeout, cfg.Model.Retries)
}

// ProvideEngine creates the forecast engine.
func ProvideEngine(m *model.ServingModel, u *forecast.Universe) (*forecast.Engine, error) {
	return forecast.NewEngine(m, u)
}

// ProvideMongoClient connects to the document store.
func ProvideMongoClient(cfg *config.Config) (*pkgmongo.Client, error) {
	client, err := pkgmongo.NewClient(
		pkgmongo.WithURI(cfg.Mongo.URI),
		pkgmongo.WithDatabase(cfg.Mongo.Database),
		pkgmongo.WithConnectTimeout(cfg.Mongo.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo client: %w", err)
	}
	return client, nil
}

func ProvideCorrelationStore(mc *pkgmongo.Client, cfg *config.Config) *internalrepo.MongoCorrelationStore {
	return internalrepo.NewMongoCorrelationStore(mc.Collection(cfg.Mongo.CorrelationCollection))
}

func ProvideSentimentStore(mc *pkgmongo.Client, cfg *config.Config) *internalrepo.MongoSentimentStore {
	return internalrepo.NewMongoSentimentStore(mc.Collection(cfg.Mongo.SentimentCollection), cfg.Mongo.SentimentTickerField)
}

// ProvideCache returns a Redis-backed layered cache when Redis is enabled and
// a process-local cache otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Redis.MemorySize)), nil
	}
	remote, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(remote, cfg.Redis.MemorySize, time.Minute), nil
}

// ProvideClickHouseClient returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePriceStore creates the ClickHouse price archive and its schema.
// Returns nil when ClickHouse is disabled.
func ProvidePriceStore(ch *pkgch.Client, l *applogger.Logger) (*internalrepo.CHPriceStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHPriceStore(ch, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideYahooFeed creates the live daily-close feed.
func ProvideYahooFeed(cfg *config.Config) *yahoo.Feed {
	return yahoo.NewFeed(
		yahoo.WithConcurrency(cfg.PriceFeed.Concurrency),
		yahoo.WithRate(cfg.PriceFeed.RatePerSec),
	)
}

// ProvidePriceFeed picks the feed the forecast and correlation paths read.
func ProvidePriceFeed(cfg *config.Config, live *yahoo.Feed, archive *internalrepo.CHPriceStore) (repository.PriceFeed, error) {
	switch cfg.PriceFeed.Source {
	case "clickhouse":
		if archive == nil {
			return nil, fmt.Errorf("price feed: clickhouse source requires clickhouse.enabled")
		}
		return archive, nil
	default:
		return live, nil
	}
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher publishes recommendation events, or drops them when
// Kafka is disabled.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideTextGenerator creates the throttled LLM client.
func ProvideTextGenerator(cfg *config.Config) (domsvc.TextGenerator, error) {
	gen, err := llm.New(context.Background(), llm.Config{
		Provider:          cfg.LLM.Provider,
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		BaseURL:           cfg.LLM.BaseURL,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		Temperature:       cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	return gen, nil
}

func ProvideResolver(gen domsvc.TextGenerator) *advisor.Resolver {
	return advisor.NewResolver(gen)
}

func ProvideSynthesizer(gen domsvc.TextGenerator) *advisor.Synthesizer {
	return advisor.NewSynthesizer(gen)
}

// ProvideForecastService creates the cached forecast use case.
func ProvideForecastService(
	engine *forecast.Engine,
	feed repository.PriceFeed,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ForecastService {
	return usecase.NewForecastService(engine, feed, c, m, l, usecase.ForecastConfig{
		LookbackDays: cfg.Forecast.LookbackDays,
		Timeout:      cfg.Forecast.Timeout,
		CacheTTL:     cfg.Forecast.CacheTTL,
	})
}

// ProvideRecommendationService creates the recommendation use case.
func ProvideRecommendationService(
	resolver *advisor.Resolver,
	synth *advisor.Synthesizer,
	forecasts *usecase.ForecastService,
	correlations *internalrepo.MongoCorrelationStore,
	sentiment *internalrepo.MongoSentimentStore,
	events repository.EventPublisher,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.RecommendationService {
	return usecase.NewRecommendationService(resolver, synth, forecasts, correlations, sentiment, events, c, m, l,
		usecase.RecommendationConfig{
			MaxTickers:     cfg.Recommendation.MaxTickers,
			SentimentLimit: cfg.Recommendation.SentimentLimit,
			Concurrency:    cfg.Recommendation.Concurrency,
		})
}

// ProvideHandler creates the HTTP handler with rate limiting and readiness
// checks for every enabled dependency.
func ProvideHandler(
	cfg *config.Config,
	l *applogger.Logger,
	recs *usecase.RecommendationService,
	forecasts *usecase.ForecastService,
	m repository.Metrics,
	sm *model.ServingModel,
	mc *pkgmongo.Client,
	c cache.Service,
	ch *pkgch.Client,
) *api.RecommendationHandler {
	opts := []api.Option{
		api.WithRequestTimeout(cfg.Server.RequestTimeout),
		api.WithMetrics(m),
		api.WithHealthCheck("mongo", mc),
		api.WithHealthCheck("model", sm),
	}
	if cfg.Server.RateLimit.Enabled {
		opts = append(opts, api.WithRateLimiter(ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec)))
	}
	if hc, ok := c.(api.HealthChecker); ok && cfg.Redis.Enabled {
		opts = append(opts, api.WithHealthCheck("redis", hc))
	}
	if ch != nil {
		opts = append(opts, api.WithHealthCheck("clickhouse", ch))
	}
	return api.NewRecommendationHandler(l, recs, forecasts, opts...)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.RecommendationHandler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS, cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application server. Infrastructure clients are
// closed in reverse order on shutdown.
func ProvideApp(
	srv *xhttp.Server,
	l *applogger.Logger,
	mc *pkgmongo.Client,
	c cache.Service,
	ch *pkgch.Client,
	events repository.EventPublisher,
) *server.App {
	closers := []server.Closer{
		{Name: "mongo", Closer: mc},
		{Name: "cache", Closer: c},
	}
	if ch != nil {
		closers = append(closers, server.Closer{Name: "clickhouse", Closer: ch})
	}
	closers = append(closers, server.Closer{Name: "events", Closer: events})
	return server.New(srv, l, closers...)
}

// Jobs bundles the batch jobs run by cmd/jobs.
type Jobs struct {
	Logger      *applogger.Logger
	Correlation *usecase.CorrelationJob
	Sentiment   *usecase.SentimentIngest
	// PriceSync is nil when ClickHouse is disabled.
	PriceSync *usecase.PriceSync
	closers   []server.Closer
}

// Close releases the jobs' infrastructure clients.
func (j *Jobs) Close() error {
	return server.New(nil, j.Logger, j.closers...).Close()
}

// ProvidePolygonClient creates the news sentiment source.
func ProvidePolygonClient(cfg *config.Config) *polygon.Client {
	return polygon.NewClient(polygon.Config{
		APIKey:            cfg.Polygon.APIKey,
		BaseURL:           cfg.Polygon.BaseURL,
		Timeout:           cfg.Polygon.Timeout,
		RequestsPerMinute: cfg.Polygon.RequestsPerMinute,
		PageLimit:         cfg.Polygon.PageLimit,
	})
}

// ProvideJobs assembles the batch jobs.
func ProvideJobs(
	cfg *config.Config,
	l *applogger.Logger,
	u *forecast.Universe,
	feed repository.PriceFeed,
	live *yahoo.Feed,
	archive *internalrepo.CHPriceStore,
	correlations *internalrepo.MongoCorrelationStore,
	sentiment *internalrepo.MongoSentimentStore,
	news *polygon.Client,
	mc *pkgmongo.Client,
	ch *pkgch.Client,
) *Jobs {
	jobs := &Jobs{
		Logger: l,
		Correlation: usecase.NewCorrelationJob(feed, correlations, u, usecase.CorrelationJobConfig{
			Threshold:       cfg.Correlation.Threshold,
			LookbackDays:    cfg.Correlation.LookbackDays,
			MinObservations: cfg.Correlation.MinObservations,
		}, l.With(applogger.String("job", "correlate"))),
		Sentiment: usecase.NewSentimentIngest(news, sentiment, u.Tickers(), cfg.Polygon.Days,
			l.With(applogger.String("job", "ingest-sentiment"))),
		closers: []server.Closer{{Name: "mongo", Closer: mc}},
	}
	if archive != nil {
		jobs.PriceSync = usecase.NewPriceSync(live, archive, u.Tickers(), cfg.Correlation.LookbackDays,
			l.With(applogger.String("job", "sync-prices")))
		jobs.closers = append(jobs.closers, server.Closer{Name: "clickhouse", Closer: ch})
	}
	return jobs
}
