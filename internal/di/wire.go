//go:build wireinject
// +build wireinject

package di

import (
	"StockSense/pkg/config"
	"StockSense/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideUniverse,
	ProvideMongoClient,
	ProvideCorrelationStore,
	ProvideSentimentStore,
	ProvideClickHouseClient,
	ProvidePriceStore,
	ProvideYahooFeed,
	ProvidePriceFeed,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		infraSet,

		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideKafkaProducer,
		ProvideEventPublisher,

		// Model and LLM
		ProvideSequenceModel,
		ProvideEngine,
		ProvideTextGenerator,
		ProvideResolver,
		ProvideSynthesizer,

		// Use cases
		ProvideForecastService,
		ProvideRecommendationService,

		// Transport
		ProvideHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeJobs wires the batch jobs.
func InitializeJobs(cfg *config.Config) (*Jobs, error) {
	wire.Build(
		infraSet,
		ProvidePolygonClient,
		ProvideJobs,
	)
	return &Jobs{}, nil
}
