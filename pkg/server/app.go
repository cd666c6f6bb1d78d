package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "AstroPulse/internal/middleware"
	"AstroPulse/internal/scoring"
	pkgch "AstroPulse/pkg/clickhouse"
	"AstroPulse/pkg/config"
	xhttp "AstroPulse/pkg/http"
	pkgkafka "AstroPulse/pkg/kafka"
	applogger "AstroPulse/pkg/logger"
	"AstroPulse/pkg/queue"

	"github.com/labstack/echo/v4"
)

// Routes aggregates the route groups of all API handlers into one
// xhttp.Handler.
type Routes struct {
	handlers []xhttp.Handler
}

func NewRoutes(handlers ...xhttp.Handler) *Routes {
	return &Routes{handlers: handlers}
}

func (r *Routes) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	routes     *Routes
	consumer   *pkgkafka.Consumer
	ingress    pkgkafka.MessageHandler
	pipe       *mid.IngestPipeline
	bounds     *scoring.BoundsProvider
	queue      *queue.RedisQueue
	chClient   *pkgch.Client
	producer   *pkgkafka.Producer
	l          *applogger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	routes *Routes,
	consumer *pkgkafka.Consumer,
	ingress pkgkafka.MessageHandler,
	pipe *mid.IngestPipeline,
	bounds *scoring.BoundsProvider,
	q *queue.RedisQueue,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		routes:   routes,
		consumer: consumer,
		ingress:  ingress,
		pipe:     pipe,
		bounds:   bounds,
		queue:    q,
		chClient: chClient,
		producer: producer,
		l:        l,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.routes,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Ingest pipeline buffers and flushes in the background
	if a.pipe != nil {
		a.pipe.Start(ctx)
	}

	// Periodic refresh of normalization bounds
	if a.bounds != nil && a.cfg.Scoring.BoundsRefresh > 0 {
		go a.refreshBounds(ctx, a.cfg.Scoring.BoundsRefresh)
	}

	// Retrain queue workers
	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.l.Error("retrain queue start error", applogger.Error(err))
		} else {
			a.queue.StartRetryProcessor()
			a.l.Info("retrain queue started", applogger.String("queue", a.cfg.Retrain.QueueName))
		}
	}

	// Kafka ingress for raw metric batches
	if a.consumer != nil && a.ingress != nil {
		a.consumer.RegisterHandler(a.ingress)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.l.Info("kafka consumer started", applogger.String("topic", a.ingress.Topic()))
	}

	// HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) refreshBounds(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.bounds.Refresh(ctx)
			a.l.Debug("normalization bounds refreshed", applogger.Int("known", a.bounds.Known()))
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.pipe != nil {
		a.pipe.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			a.l.Warn("retrain queue stop error", applogger.Error(err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
