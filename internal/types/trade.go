package types

import (
	"time"
)

type InstrumentType string

type OptionType string

const (
	InstrumentTypeStock  InstrumentType = "stock"
	InstrumentTypeOption InstrumentType = "option"
)

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
	// OptionTypeNone is the only legal option type for stock trades.
	OptionTypeNone OptionType = "none"
)

// Exit is a partial or full closing event of a trade. Exits are kept in
// chronological order; ties on date preserve submission order.
type Exit struct {
	Date     time.Time `json:"date" yaml:"date" csv:"date" validate:"required"`
	Quantity int       `json:"quantity" yaml:"quantity" csv:"quantity" validate:"required,gt=0"`
	Price    float64   `json:"price" yaml:"price" csv:"price" validate:"gte=0"`
}

// Trade is the central journal entity: an opened position plus the exit
// events recorded against it. The open/closed state is always derived from
// Quantity and Exits, never stored.
type Trade struct {
	ID             string         `json:"id" yaml:"id"`
	UserID         string         `json:"userId" yaml:"user_id"`
	Symbol         string         `json:"symbol" yaml:"symbol" validate:"required"`
	EntryDate      time.Time      `json:"entryDate" yaml:"entry_date" validate:"required"`
	InstrumentType InstrumentType `json:"instrumentType" yaml:"instrument_type" validate:"required,oneof=stock option"`
	OptionType     OptionType     `json:"optionType" yaml:"option_type" validate:"required,oneof=call put none"`
	Quantity       int            `json:"quantity" yaml:"quantity" validate:"required,gt=0"`
	EntryPrice     float64        `json:"entryPrice" yaml:"entry_price" validate:"gte=0"`
	Strategy       string         `json:"strategy" yaml:"strategy"`
	Notes          string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	Exits          []Exit         `json:"exits" yaml:"exits"`
}

// ExitedQuantity returns the cumulative quantity closed by exit events.
func (t *Trade) ExitedQuantity() int {
	total := 0
	for _, exit := range t.Exits {
		total += exit.Quantity
	}

	return total
}

// OpenQuantity returns the still-open portion of the position.
func (t *Trade) OpenQuantity() int {
	return t.Quantity - t.ExitedQuantity()
}

// IsOpen reports whether any portion of the position remains open.
// A trade with no exits is fully open.
func (t *Trade) IsOpen() bool {
	return t.ExitedQuantity() < t.Quantity
}

// FinalExitDate returns the date of the last exit in chronological order.
// The boolean is false when the trade has no exits.
func (t *Trade) FinalExitDate() (time.Time, bool) {
	if len(t.Exits) == 0 {
		return time.Time{}, false
	}

	return t.Exits[len(t.Exits)-1].Date, true
}

// TradeFilter selects trades by open/closed state in list queries.
type TradeFilter string

const (
	TradeFilterAll    TradeFilter = "all"
	TradeFilterOpen   TradeFilter = "open"
	TradeFilterClosed TradeFilter = "closed"
)

// TradeInput is the caller-supplied shape for creating a trade, before
// validation and ID assignment.
type TradeInput struct {
	Symbol         string         `json:"symbol" csv:"symbol"`
	EntryDate      time.Time      `json:"entryDate" csv:"entry_date"`
	InstrumentType InstrumentType `json:"instrumentType" csv:"instrument_type"`
	OptionType     OptionType     `json:"optionType" csv:"option_type"`
	Quantity       int            `json:"quantity" csv:"quantity"`
	EntryPrice     float64        `json:"entryPrice" csv:"entry_price"`
	Strategy       string         `json:"strategy" csv:"strategy"`
	Notes          string         `json:"notes" csv:"notes"`
}

// TradePatch carries the updatable fields of a trade. Nil fields are left
// unchanged. Exits are never patched; they only grow through exit recording.
type TradePatch struct {
	Symbol         *string         `json:"symbol,omitempty"`
	EntryDate      *time.Time      `json:"entryDate,omitempty"`
	InstrumentType *InstrumentType `json:"instrumentType,omitempty"`
	OptionType     *OptionType     `json:"optionType,omitempty"`
	Quantity       *int            `json:"quantity,omitempty"`
	EntryPrice     *float64        `json:"entryPrice,omitempty"`
	Strategy       *string         `json:"strategy,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
}
