package di

import (
	"context"
	"fmt"
	"net"
	"time"

	"AstroPulse/internal/alerts"
	"AstroPulse/internal/backtest"
	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	domsvc "AstroPulse/internal/domain/service"
	"AstroPulse/internal/handler/api"
	mid "AstroPulse/internal/middleware"
	internalrepo "AstroPulse/internal/repository"
	"AstroPulse/internal/risk"
	"AstroPulse/internal/scoring"
	icache "AstroPulse/internal/service/cache"
	"AstroPulse/internal/services/features"
	"AstroPulse/internal/services/notify"
	"AstroPulse/internal/services/retrain"
	"AstroPulse/internal/usecase"
	pkgcache "AstroPulse/pkg/cache"
	pkgch "AstroPulse/pkg/clickhouse"
	"AstroPulse/pkg/config"
	pkgkafka "AstroPulse/pkg/kafka"
	applogger "AstroPulse/pkg/logger"
	"AstroPulse/pkg/metrics"
	"AstroPulse/pkg/queue"
	"AstroPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideLogRing buffers recent aggregated logs for the system endpoint.
func ProvideLogRing(cfg *config.Config, l *applogger.Logger) *api.LogRing {
	ring := api.NewLogRing(cfg.Alerts.HistoryLimit)
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   15 * time.Second,
		CountThreshold: 100,
		Topic:          "system-logs",
		Publisher:      ring,
	})
	return ring
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.metric_readings (metric String, symbol String, value Float64, ts DateTime) ENGINE=MergeTree ORDER BY (metric, ts)", db),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.signals (symbol String, direction String, master_score Float64, confidence Float64, price Float64, ts DateTime) ENGINE=MergeTree ORDER BY (symbol, ts)", db),
	}
	for _, tf := range []string{"1m", "5m", "1h", "1d"} {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s.candles_%s (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=MergeTree ORDER BY (symbol, bucket)",
			db, tf))
	}
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideHistoryStore creates the ClickHouse-backed history store.
func ProvideHistoryStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.HistoryStore {
	store := internalrepo.NewCHHistoryStore(ch, cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisCache creates the shared Redis cache client. Returns nil when
// Redis is disabled; dependents treat a nil cache as a cold path.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port := 6379
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideBoundsProvider creates the lazy normalization bounds provider.
// Bounds are cached in a memory-over-Redis layered cache, or memory only
// when Redis is disabled.
func ProvideBoundsProvider(store domrepo.HistoryStore, rc *pkgcache.RedisCache, cfg *config.Config, l *applogger.Logger) *scoring.BoundsProvider {
	var boundsCache pkgcache.Service
	if rc != nil {
		boundsCache = pkgcache.NewLayeredCache(rc)
	} else {
		boundsCache = pkgcache.NewMemoryCache()
	}
	return scoring.NewBoundsProvider(store, cfg.Scoring.BoundsWindow,
		scoring.WithBoundsLogger(l),
		scoring.WithLogScale(cfg.Scoring.LogScaleKeys, cfg.Scoring.LogScaleThreshold),
		scoring.WithBoundsCache(boundsCache, cfg.Scoring.BoundsCacheTTL),
	)
}

// ProvideNormalizer creates the metric normalizer.
func ProvideNormalizer(bounds *scoring.BoundsProvider) *scoring.Normalizer {
	return scoring.NewNormalizer(bounds)
}

// ProvideAggregator creates the pillar aggregator with configured weights.
func ProvideAggregator(cfg *config.Config) *scoring.Aggregator {
	return scoring.NewAggregator(map[models.Pillar]float64{
		models.PillarTechnical:   cfg.Scoring.Weights.Technical,
		models.PillarSocial:      cfg.Scoring.Weights.Social,
		models.PillarFundamental: cfg.Scoring.Weights.Fundamental,
		models.PillarAstrology:   cfg.Scoring.Weights.Astrology,
	})
}

// ProvideInterpreter creates the signal interpreter.
func ProvideInterpreter(cfg *config.Config) *scoring.Interpreter {
	return scoring.NewInterpreter(cfg.Scoring.UpperThreshold, cfg.Scoring.LowerThreshold)
}

// ProvideAlertStore creates the in-memory alert rule store.
func ProvideAlertStore(cfg *config.Config) domrepo.AlertStore {
	return internalrepo.NewMemoryAlertStore(cfg.Alerts.HistoryLimit)
}

// ProvideWSHub creates the alert WebSocket hub.
func ProvideWSHub(l *applogger.Logger) *notify.WSHub {
	return notify.NewWSHub(l)
}

// ProvideNotifiers assembles the notification channels.
func ProvideNotifiers(producer *pkgkafka.Producer, hub *notify.WSHub, cfg *config.Config, l *applogger.Logger) []domsvc.Notifier {
	return []domsvc.Notifier{
		notify.NewWebhookNotifier(cfg.Alerts.WebhookTimeout),
		notify.NewKafkaNotifier(producer, cfg.Kafka.AlertsTopic),
		hub,
		notify.NewLogNotifier(l),
	}
}

// ProvideAlertEngine creates the alert rule engine.
func ProvideAlertEngine(store domrepo.AlertStore, notifiers []domsvc.Notifier, m domrepo.Metrics, cfg *config.Config, l *applogger.Logger) *alerts.Engine {
	return alerts.NewEngine(store, notifiers, l,
		alerts.WithDefaultCooldown(cfg.Alerts.DefaultCooldown),
		alerts.WithNotifyTimeout(cfg.Alerts.NotifyTimeout),
		alerts.WithMetrics(m),
	)
}

// ProvideSizer creates the Kelly position sizer.
func ProvideSizer(cfg *config.Config) *risk.Sizer {
	return risk.NewSizer(models.RiskSettings{
		MaxKellyFraction:   cfg.Risk.MaxKellyFraction,
		MaxBalanceFraction: cfg.Risk.MaxBalanceFraction,
		MinEdge:            cfg.Risk.MinEdge,
		DefaultVolatility:  cfg.Risk.DefaultVolatility,
		MinHistory:         cfg.Risk.MinHistory,
	})
}

// ProvideSignalPublisher creates the Kafka signal publisher.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvideRetrainClient creates the ML sidecar client.
func ProvideRetrainClient(cfg *config.Config) *retrain.HTTPClient {
	return retrain.NewHTTPClient(cfg)
}

// ProvideRetrainJob creates the queue worker job that calls the sidecar.
func ProvideRetrainJob(client *retrain.HTTPClient, l *applogger.Logger) *retrain.Job {
	return retrain.NewJob(client, l)
}

// ProvideRetrainQueue creates the Redis queue carrying retrain jobs. Nil
// when Redis is disabled.
func ProvideRetrainQueue(rc *pkgcache.RedisCache, cfg *config.Config, l *applogger.Logger) *queue.RedisQueue {
	if rc == nil {
		return nil
	}
	return queue.NewRedisQueue(l,
		&queue.QueueConfig{Workers: cfg.Retrain.Workers, RetryLimit: cfg.Retrain.Attempts},
		rc.Client(),
		queue.ModeProducerConsumer,
		queue.WithKeyPrefix(cfg.Retrain.QueueName),
	)
}

// ProvideRetrainTrigger wraps the queue as a retrain trigger. A nil queue
// (Redis disabled) means backtests never request retraining.
func ProvideRetrainTrigger(q *queue.RedisQueue) domsvc.RetrainTrigger {
	if q == nil {
		return nil
	}
	return retrain.NewQueueTrigger(q)
}

// ProvideBacktestRunner creates the backtest runner.
func ProvideBacktestRunner(store domrepo.HistoryStore, trigger domsvc.RetrainTrigger, cfg *config.Config, l *applogger.Logger) *backtest.Runner {
	opts := []backtest.RunnerOption{
		backtest.WithHorizon(cfg.Backtest.HorizonBars, domrepo.DefaultTimeframe()),
		backtest.WithAnnualization(cfg.Backtest.Annualization),
	}
	if trigger != nil {
		opts = append(opts, backtest.WithRetrainTrigger(trigger, cfg.Backtest.RetrainSharpe))
	}
	return backtest.NewRunner(store, l, opts...)
}

// ProvideEnricher computes missing technical metrics from stored candles.
func ProvideEnricher(store domrepo.HistoryStore, l *applogger.Logger) *features.Enricher {
	return features.NewEnricher(store, domrepo.DefaultTimeframe(), 200, l)
}

// ProvideEvaluator creates the evaluation pipeline use case.
func ProvideEvaluator(
	normalizer *scoring.Normalizer,
	aggregator *scoring.Aggregator,
	interpreter *scoring.Interpreter,
	engine *alerts.Engine,
	pub domrepo.Publisher,
	store domrepo.HistoryStore,
	enricher *features.Enricher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.Evaluator {
	return usecase.NewEvaluator(normalizer, aggregator, interpreter, engine, pub, store, m, l,
		usecase.WithEnricher(enricher),
	)
}

// ProvideIngestPipeline puts validation, throttling and buffering in front
// of the evaluator.
func ProvideIngestPipeline(evaluator *usecase.Evaluator, m domrepo.Metrics) *mid.IngestPipeline {
	return mid.NewIngestPipeline(evaluator, m,
		mid.WithMaxRPS(10),
		mid.WithBufferSize(256),
	)
}

// ProvideMetricsIngress registers the handler for the raw metric topic.
func ProvideMetricsIngress(pipe *mid.IngestPipeline, m domrepo.Metrics, cfg *config.Config) *usecase.MetricsIngress {
	return usecase.NewMetricsIngress(cfg.Kafka.MetricsTopic, pipe, m)
}

// ProvideRoutes assembles all Echo route groups.
func ProvideRoutes(
	evaluator *usecase.Evaluator,
	store domrepo.HistoryStore,
	engine *alerts.Engine,
	sizer *risk.Sizer,
	runner *backtest.Runner,
	hub *notify.WSHub,
	ring *api.LogRing,
	cfg *config.Config,
	l *applogger.Logger,
) *server.Routes {
	signals := api.NewSignalsHandler(l, evaluator, store)
	if cfg.Redis.Enabled {
		signals.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		signals.SetCache(icache.NewTTLCache())
	}

	return server.NewRoutes(
		signals,
		api.NewAlertsHandler(l, engine),
		api.NewRiskHandler(l, sizer),
		api.NewBacktestHandler(l, runner, cfg.Backtest.Timeout),
		api.NewSystemHandler(l, store, hub, ring),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	routes *server.Routes,
	consumer *pkgkafka.Consumer,
	ingress *usecase.MetricsIngress,
	pipe *mid.IngestPipeline,
	bounds *scoring.BoundsProvider,
	q *queue.RedisQueue,
	job *retrain.Job,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	l *applogger.Logger,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	if q != nil && job != nil {
		q.RegisterJob(job)
	}
	return server.New(cfg, routes, consumer, ingress, pipe, bounds, q, chClient, producer, l)
}
