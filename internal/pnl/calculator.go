// Package pnl computes realized and unrealized profit/loss for journal
// trades. All functions are pure; money math goes through shopspring/decimal
// to avoid float drift on accumulated sums.
package pnl

import (
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/trade-journal/internal/types"
)

// Breakdown is the profit/loss decomposition of a single trade.
//
// Unrealized is None for an open trade when no current market price was
// supplied; it is never silently reported as zero. Percentage is None when
// the trade's cost basis (entryPrice x quantity) is zero.
type Breakdown struct {
	Realized   float64                  `json:"realized"`
	Unrealized optional.Option[float64] `json:"unrealized"`
	Percentage optional.Option[float64] `json:"percentage"`
}

// Realized returns the profit/loss attributable to exits that have already
// occurred: sum of (exit.price - entryPrice) * exit.quantity. Positions are
// long-only; there is no sign flip.
func Realized(trade types.Trade) float64 {
	entry := decimal.NewFromFloat(trade.EntryPrice)
	total := decimal.Zero

	for _, exit := range trade.Exits {
		price := decimal.NewFromFloat(exit.Price)
		qty := decimal.NewFromInt(int64(exit.Quantity))
		total = total.Add(price.Sub(entry).Mul(qty))
	}

	result, _ := total.Float64()

	return result
}

// Compute returns the full profit/loss breakdown of a trade. currentPrice,
// when present, values the still-open portion of the position.
func Compute(trade types.Trade, currentPrice optional.Option[float64]) Breakdown {
	realized := Realized(trade)

	unrealized := unrealizedFor(trade, currentPrice)

	total := decimal.NewFromFloat(realized)
	if unrealized.IsSome() {
		total = total.Add(decimal.NewFromFloat(unrealized.Unwrap()))
	}

	return Breakdown{
		Realized:   realized,
		Unrealized: unrealized,
		Percentage: percentageOf(trade, total),
	}
}

func unrealizedFor(trade types.Trade, currentPrice optional.Option[float64]) optional.Option[float64] {
	if !trade.IsOpen() {
		return optional.Some(0.0)
	}

	if currentPrice.IsNone() {
		return optional.None[float64]()
	}

	entry := decimal.NewFromFloat(trade.EntryPrice)
	price := decimal.NewFromFloat(currentPrice.Unwrap())
	openQty := decimal.NewFromInt(int64(trade.OpenQuantity()))

	result, _ := price.Sub(entry).Mul(openQty).Float64()

	return optional.Some(result)
}

// percentageOf expresses total P/L as a fraction of the cost basis.
// A zero cost basis makes the metric undefined, reported as None.
func percentageOf(trade types.Trade, total decimal.Decimal) optional.Option[float64] {
	basis := decimal.NewFromFloat(trade.EntryPrice).Mul(decimal.NewFromInt(int64(trade.Quantity)))
	if basis.IsZero() {
		return optional.None[float64]()
	}

	result, _ := total.Div(basis).Float64()

	return optional.Some(result)
}
