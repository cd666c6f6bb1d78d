//go:build wireinject
// +build wireinject

package di

import (
	"AstroPulse/pkg/config"
	"AstroPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideLogRing,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,

		// Repositories
		ProvideHistoryStore,
		ProvideAlertStore,
		ProvideSignalPublisher,

		// Scoring
		ProvideBoundsProvider,
		ProvideNormalizer,
		ProvideAggregator,
		ProvideInterpreter,

		// Alerts
		ProvideWSHub,
		ProvideNotifiers,
		ProvideAlertEngine,

		// Risk and backtesting
		ProvideSizer,
		ProvideRetrainClient,
		ProvideRetrainJob,
		ProvideRetrainQueue,
		ProvideRetrainTrigger,
		ProvideBacktestRunner,

		// Use cases
		ProvideEnricher,
		ProvideEvaluator,
		ProvideIngestPipeline,
		ProvideMetricsIngress,

		// HTTP and application server
		ProvideRoutes,
		ProvideApp,
	)
	return &server.App{}, nil
}
