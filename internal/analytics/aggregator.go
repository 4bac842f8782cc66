// Package analytics reduces a set of journal trades into summary statistics
// for the dashboard and analytics views. Aggregate is pure and deterministic
// for a given input.
package analytics

import (
	"math"
	"sort"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/trade-journal/internal/pnl"
	"github.com/rxtech-lab/trade-journal/internal/types"
)

// TopSymbolCount bounds the top-performing-symbols breakdown.
const TopSymbolCount = 5

// Aggregate computes the Summary over the given trades.
//
// Realized P/L is summed over every trade with at least one exit; win rate,
// averages, extremes, Sharpe ratio, and the cumulative series consider only
// closed trades. An empty input produces an all-zero summary with None
// extremes and never divides by zero.
func Aggregate(trades []types.Trade) types.Summary {
	summary := types.Summary{
		LargestWin:           optional.None[float64](),
		LargestLoss:          optional.None[float64](),
		CumulativeProfitLoss: []types.CumulativePoint{},
		TopPerformingSymbols: []types.SymbolPerformance{},
	}

	var closed []types.Trade

	for _, trade := range trades {
		if trade.IsOpen() {
			summary.OpenTrades++
		} else {
			closed = append(closed, trade)
		}

		if len(trade.Exits) > 0 {
			summary.TotalProfitLoss += pnl.Realized(trade)
		}
	}

	summary.ClosedTrades = len(closed)
	if len(closed) == 0 {
		return summary
	}

	var (
		returns  []float64
		duration float64
	)

	symbolIndex := map[string]int{}

	for _, trade := range closed {
		realized := pnl.Realized(trade)

		switch {
		case realized > 0:
			summary.WinLossRatio.Wins++
		case realized < 0:
			summary.WinLossRatio.Losses++
		default:
			summary.WinLossRatio.BreakEven++
		}

		if summary.LargestWin.IsNone() || realized > summary.LargestWin.Unwrap() {
			summary.LargestWin = optional.Some(realized)
		}

		if summary.LargestLoss.IsNone() || realized < summary.LargestLoss.Unwrap() {
			summary.LargestLoss = optional.Some(realized)
		}

		breakdown := pnl.Compute(trade, optional.None[float64]())
		if breakdown.Percentage.IsSome() {
			returns = append(returns, breakdown.Percentage.Unwrap())
		}

		if exitDate, ok := trade.FinalExitDate(); ok {
			duration += exitDate.Sub(trade.EntryDate).Hours() / 24
		}

		idx, ok := symbolIndex[trade.Symbol]
		if !ok {
			idx = len(summary.TopPerformingSymbols)
			symbolIndex[trade.Symbol] = idx
			summary.TopPerformingSymbols = append(summary.TopPerformingSymbols,
				types.SymbolPerformance{Symbol: trade.Symbol})
		}

		summary.TopPerformingSymbols[idx].ProfitLoss += realized
		summary.TopPerformingSymbols[idx].Trades++
	}

	summary.WinRate = float64(summary.WinLossRatio.Wins) / float64(len(closed))
	summary.AverageProfitPerTrade = summary.TotalProfitLoss / float64(len(closed))
	summary.AverageDurationDays = duration / float64(len(closed))
	summary.SharpeRatio = sharpeRatio(returns)
	summary.CumulativeProfitLoss = cumulativeSeries(closed)
	summary.MaxDrawdown = maxDrawdown(summary.CumulativeProfitLoss)

	sort.SliceStable(summary.TopPerformingSymbols, func(i, j int) bool {
		return summary.TopPerformingSymbols[i].ProfitLoss > summary.TopPerformingSymbols[j].ProfitLoss
	})

	if len(summary.TopPerformingSymbols) > TopSymbolCount {
		summary.TopPerformingSymbols = summary.TopPerformingSymbols[:TopSymbolCount]
	}

	return summary
}

// sharpeRatio is mean(returns) over the population standard deviation
// (ddof=0) of per-trade percentage returns. Zero variance or fewer than two
// returns yield 0 rather than a division by zero.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += math.Pow(r-mean, 2)
	}

	variance /= float64(len(returns))

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}

	return mean / stdDev
}

// cumulativeSeries orders closed trades by final exit date ascending (ties
// broken by trade ID for determinism) and running-sums realized P/L.
func cumulativeSeries(closed []types.Trade) []types.CumulativePoint {
	ordered := make([]types.Trade, len(closed))
	copy(ordered, closed)

	sort.SliceStable(ordered, func(i, j int) bool {
		di, _ := ordered[i].FinalExitDate()
		dj, _ := ordered[j].FinalExitDate()

		if !di.Equal(dj) {
			return di.Before(dj)
		}

		return ordered[i].ID < ordered[j].ID
	})

	series := make([]types.CumulativePoint, 0, len(ordered))
	running := 0.0

	for _, trade := range ordered {
		date, _ := trade.FinalExitDate()
		running += pnl.Realized(trade)
		series = append(series, types.CumulativePoint{Date: date, RunningTotal: running})
	}

	return series
}

// maxDrawdown is the deepest peak-to-trough decline of the cumulative
// realized P/L series, reported as a non-negative amount.
func maxDrawdown(series []types.CumulativePoint) float64 {
	if len(series) < 2 {
		return 0
	}

	peak := series[0].RunningTotal
	drawdown := 0.0

	for _, point := range series {
		if point.RunningTotal > peak {
			peak = point.RunningTotal
		}

		if dd := peak - point.RunningTotal; dd > drawdown {
			drawdown = dd
		}
	}

	return drawdown
}
