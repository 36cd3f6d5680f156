package domain

import "time"

// SavedStrategy is a snapshot of a definition persisted by the save operation.
type SavedStrategy struct {
	ID         string             `json:"id" bson:"_id"`
	OwnerID    string             `json:"owner_id" bson:"owner_id"`
	Definition StrategyDefinition `json:"definition" bson:"definition"`
	SavedAt    time.Time          `json:"saved_at" bson:"saved_at"`
}

// BacktestResult carries the simulated metrics of a backtest run.
type BacktestResult struct {
	Strategy     string    `json:"strategy"`
	AnnualReturn float64   `json:"annual_return_pct"`
	SharpeRatio  float64   `json:"sharpe_ratio"`
	MaxDrawdown  float64   `json:"max_drawdown_pct"`
	WinRate      float64   `json:"win_rate_pct"`
	TotalTrades  int       `json:"total_trades"`
	StartedAt    time.Time `json:"started_at"`
}
