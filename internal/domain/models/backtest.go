package models

import "time"

// TradeResult is one historical signal paired with its realized outcome.
type TradeResult struct {
	Symbol         string    `json:"symbol"`
	Direction      Direction `json:"direction"`
	SignalTime     time.Time `json:"signal_time"`
	RealizedReturn float64   `json:"realized_return"` // next-horizon fractional move
	PnL            float64   `json:"pnl"`             // signed, direction applied
	Hit            bool      `json:"hit"`
}

// BacktestMetrics aggregates per-trade results.
type BacktestMetrics struct {
	TotalTrades int     `json:"total_trades"`
	Hits        int     `json:"hits"`
	HitRate     float64 `json:"hit_rate"`
	TotalPnL    float64 `json:"total_pnl"`
	AvgReturn   float64 `json:"avg_return"`
	Volatility  float64 `json:"volatility"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// BacktestRun is the result of one backtest invocation.
type BacktestRun struct {
	BacktestID       string          `json:"backtest_id"`
	Symbol           string          `json:"symbol"`
	FromDate         time.Time       `json:"from_date"`
	ToDate           time.Time       `json:"to_date"`
	Trades           []TradeResult   `json:"trades"`
	Metrics          BacktestMetrics `json:"metrics"`
	RetrainTriggered bool            `json:"retrain_triggered"`
	RetrainError     string          `json:"retrain_error,omitempty"`
}

// SignalRecord is a persisted historical signal, the unit the backtest
// runner replays.
type SignalRecord struct {
	Symbol      string    `json:"symbol"`
	Direction   Direction `json:"direction"`
	MasterScore float64   `json:"master_score"`
	Confidence  float64   `json:"confidence"`
	Price       float64   `json:"price"`
	Timestamp   time.Time `json:"timestamp"`
}
