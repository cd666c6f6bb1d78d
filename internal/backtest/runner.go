package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	domsvc "AstroPulse/internal/domain/service"
	applogger "AstroPulse/pkg/logger"
)

// ErrInvalidRange rejects backtests whose from date is not strictly before
// the to date. Validation errors are the only caller-visible failures apart
// from store errors.
var ErrInvalidRange = errors.New("backtest: from date must be strictly before to date")

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRetrainTrigger wires the external retraining hook plus the Sharpe
// threshold above which it fires.
func WithRetrainTrigger(t domsvc.RetrainTrigger, sharpeThreshold float64) RunnerOption {
	return func(r *Runner) {
		r.retrain = t
		r.retrainSharpe = sharpeThreshold
	}
}

// WithHorizon sets the number of bars of the signal's intended horizon.
func WithHorizon(bars int, tf domrepo.Timeframe) RunnerOption {
	return func(r *Runner) {
		if bars > 0 {
			r.horizonBars = bars
		}
		r.tf = tf
	}
}

// WithAnnualization sets the Sharpe annualization factor (periods per year).
func WithAnnualization(f float64) RunnerOption {
	return func(r *Runner) {
		if f > 0 {
			r.annualization = f
		}
	}
}

// Runner replays historical signals against realized subsequent returns and
// conditionally triggers retraining. It may walk large ranges, so Run honors
// ctx cancellation between trades.
type Runner struct {
	store domrepo.HistoryStore
	l     *applogger.Logger

	retrain       domsvc.RetrainTrigger
	retrainSharpe float64
	horizonBars   int
	tf            domrepo.Timeframe
	annualization float64
}

func NewRunner(store domrepo.HistoryStore, l *applogger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:         store,
		l:             l,
		horizonBars:   1,
		tf:            domrepo.DefaultTimeframe(),
		annualization: 365 * 24,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run scores every directional signal in [from, to) against the realized
// return over its horizon. A trade hits when the signal's direction matches
// the sign of the realized return. Zero qualifying signals produce a zeroed
// result, never an error.
func (r *Runner) Run(ctx context.Context, symbol string, from, to time.Time) (*models.BacktestRun, error) {
	if !from.Before(to) {
		return nil, ErrInvalidRange
	}

	signals, err := r.store.GetSignals(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}

	// Forward price data must extend past the range end by the horizon.
	horizon := time.Duration(r.horizonBars) * timeframeDuration(r.tf)
	candles, err := r.store.GetCandles(ctx, symbol, from, to.Add(horizon+timeframeDuration(r.tf)), r.tf)
	if err != nil {
		return nil, fmt.Errorf("load candles: %w", err)
	}

	trades := make([]models.TradeResult, 0, len(signals))
	for _, sig := range signals {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if sig.Direction == models.DirectionNeutral {
			continue // no position, nothing to score
		}
		ret, ok := realizedReturn(candles, sig.Timestamp, r.horizonBars)
		if !ok {
			continue // signal too close to the data edge
		}

		pnl := ret
		if sig.Direction == models.DirectionBearish {
			pnl = -ret
		}
		trades = append(trades, models.TradeResult{
			Symbol:         sig.Symbol,
			Direction:      sig.Direction,
			SignalTime:     sig.Timestamp,
			RealizedReturn: ret,
			PnL:            pnl,
			Hit:            pnl > 0,
		})
	}

	run := &models.BacktestRun{
		BacktestID: uuid.NewString(),
		Symbol:     symbol,
		FromDate:   from,
		ToDate:     to,
		Trades:     trades,
		Metrics:    computeMetrics(trades, r.annualization),
	}

	r.maybeTriggerRetrain(ctx, run)
	return run, nil
}

// maybeTriggerRetrain spawns the external retraining job when the Sharpe
// ratio clears the configured threshold. The spawn is fast (queue push); the
// job itself is detached from this call. A failed spawn is reported in the
// result but never fails the backtest.
func (r *Runner) maybeTriggerRetrain(ctx context.Context, run *models.BacktestRun) {
	if r.retrain == nil || run.Metrics.TotalTrades == 0 || run.Metrics.SharpeRatio <= r.retrainSharpe {
		return
	}
	run.RetrainTriggered = true
	if err := r.retrain.TriggerRetrain(ctx, run.Symbol, run.FromDate, run.ToDate); err != nil {
		run.RetrainError = err.Error()
		r.l.Error("retrain trigger failed",
			applogger.String("symbol", run.Symbol),
			applogger.String("backtest_id", run.BacktestID),
			applogger.Error(err),
		)
	}
}

// realizedReturn finds the first candle at or after ts and the candle
// horizonBars later, returning the fractional close-to-close move.
func realizedReturn(candles []models.Candle, ts time.Time, horizonBars int) (float64, bool) {
	idx := -1
	for i, c := range candles {
		if !c.Bucket.Before(ts) {
			idx = i
			break
		}
	}
	if idx < 0 || idx+horizonBars >= len(candles) {
		return 0, false
	}
	entry := candles[idx].Close
	exit := candles[idx+horizonBars].Close
	if entry == 0 {
		return 0, false
	}
	return exit/entry - 1, true
}

func timeframeDuration(tf domrepo.Timeframe) time.Duration {
	switch tf {
	case domrepo.TF1m:
		return time.Minute
	case domrepo.TF5m:
		return 5 * time.Minute
	case domrepo.TF1d:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}
