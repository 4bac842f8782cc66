package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestExitedQuantity() {
	tests := []struct {
		name     string
		trade    Trade
		expected int
	}{
		{
			name:     "No exits",
			trade:    Trade{Quantity: 10},
			expected: 0,
		},
		{
			name: "Partial exits accumulate",
			trade: Trade{
				Quantity: 10,
				Exits: []Exit{
					{Quantity: 3, Price: 110},
					{Quantity: 4, Price: 115},
				},
			},
			expected: 7,
		},
		{
			name: "Fully exited",
			trade: Trade{
				Quantity: 10,
				Exits: []Exit{
					{Quantity: 10, Price: 120},
				},
			},
			expected: 10,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(tt.expected, tt.trade.ExitedQuantity())
		})
	}
}

func (suite *TradeTestSuite) TestIsOpenDerivation() {
	tests := []struct {
		name     string
		trade    Trade
		isOpen   bool
		openQty  int
	}{
		{
			name:    "Trade with no exits is fully open",
			trade:   Trade{Quantity: 10},
			isOpen:  true,
			openQty: 10,
		},
		{
			name: "Partially exited trade is still open",
			trade: Trade{
				Quantity: 10,
				Exits:    []Exit{{Quantity: 6, Price: 105}},
			},
			isOpen:  true,
			openQty: 4,
		},
		{
			name: "Exits equal to quantity close the trade",
			trade: Trade{
				Quantity: 10,
				Exits: []Exit{
					{Quantity: 6, Price: 105},
					{Quantity: 4, Price: 108},
				},
			},
			isOpen:  false,
			openQty: 0,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(tt.isOpen, tt.trade.IsOpen())
			suite.Equal(tt.openQty, tt.trade.OpenQuantity())
		})
	}
}

func (suite *TradeTestSuite) TestFinalExitDate() {
	trade := Trade{Quantity: 10}

	_, ok := trade.FinalExitDate()
	suite.False(ok)

	first := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	trade.Exits = []Exit{
		{Date: first, Quantity: 5, Price: 101},
		{Date: last, Quantity: 5, Price: 99},
	}

	date, ok := trade.FinalExitDate()
	suite.True(ok)
	suite.Equal(last, date)
}
