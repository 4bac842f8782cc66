package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// CumulativePoint is one point of the running realized P/L series.
type CumulativePoint struct {
	Date         time.Time `json:"date"`
	RunningTotal float64   `json:"runningTotal"`
}

// WinLossBreakdown counts closed trades by outcome.
type WinLossBreakdown struct {
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	BreakEven int `json:"breakEven"`
}

// SymbolPerformance is the realized P/L attributed to a single symbol.
type SymbolPerformance struct {
	Symbol     string  `json:"symbol"`
	ProfitLoss float64 `json:"profitLoss"`
	Trades     int     `json:"trades"`
}

// Summary aggregates a set of trades into journal-level statistics.
// Metrics that are undefined for the input (no closed trades, zero
// variance) are either zero or None, never NaN.
type Summary struct {
	TotalProfitLoss       float64                  `json:"totalProfitLoss"`
	WinRate               float64                  `json:"winRate"`
	AverageProfitPerTrade float64                  `json:"averageProfitPerTrade"`
	LargestWin            optional.Option[float64] `json:"largestWin"`
	LargestLoss           optional.Option[float64] `json:"largestLoss"`
	SharpeRatio           float64                  `json:"sharpeRatio"`
	MaxDrawdown           float64                  `json:"maxDrawdown"`
	AverageDurationDays   float64                  `json:"averageTradeDurationDays"`
	CumulativeProfitLoss  []CumulativePoint        `json:"cumulativeProfitLoss"`
	WinLossRatio          WinLossBreakdown         `json:"winLossRatio"`
	TopPerformingSymbols  []SymbolPerformance      `json:"topPerformingSymbols"`
	OpenTrades            int                      `json:"openTrades"`
	ClosedTrades          int                      `json:"closedTrades"`
}
