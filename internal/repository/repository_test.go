package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/trade-journal/internal/logger"
	"github.com/rxtech-lab/trade-journal/internal/types"
	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

type store interface {
	TradeRepository
	UserRepository
}

// RepositoryTestSuite runs the same contract against every store
// implementation.
type RepositoryTestSuite struct {
	suite.Suite
	newStore func() (store, error)
	store    store
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newStore: func() (store, error) { return NewMemoryStore(), nil },
	})
}

func TestDuckDBStoreSuite(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newStore: func() (store, error) {
			s, err := NewDuckDBStore(":memory:", logger.NewNop())
			if err != nil {
				return nil, err
			}

			return s, nil
		},
	})
}

// SetupTest creates a fresh store before each test
func (suite *RepositoryTestSuite) SetupTest() {
	s, err := suite.newStore()
	suite.Require().NoError(err)
	suite.store = s
}

func (suite *RepositoryTestSuite) TearDownTest() {
	if suite.store != nil {
		suite.Require().NoError(suite.store.Close())
	}
}

func (suite *RepositoryTestSuite) newTrade(id, userID, symbol string, entry time.Time) types.Trade {
	return types.Trade{
		ID:             id,
		UserID:         userID,
		Symbol:         symbol,
		EntryDate:      entry,
		InstrumentType: types.InstrumentTypeStock,
		OptionType:     types.OptionTypeNone,
		Quantity:       10,
		EntryPrice:     100,
		Strategy:       "swing",
	}
}

func (suite *RepositoryTestSuite) TestPutAndGetRoundTrip() {
	ctx := context.Background()
	trade := suite.newTrade("t1", "u1", "AAPL", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	trade.Exits = []types.Exit{
		{Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Quantity: 4, Price: 110},
		{Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Quantity: 2, Price: 111},
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Quantity: 1, Price: 112},
	}

	suite.Require().NoError(suite.store.Put(ctx, trade))

	got, err := suite.store.Get(ctx, "u1", "t1")
	suite.Require().NoError(err)
	suite.Equal("AAPL", got.Symbol)
	suite.Len(got.Exits, 3)
	// Same-date exits keep submission order.
	suite.Equal(4, got.Exits[0].Quantity)
	suite.Equal(2, got.Exits[1].Quantity)
	suite.Equal(1, got.Exits[2].Quantity)
	suite.True(got.IsOpen())
}

func (suite *RepositoryTestSuite) TestGetUnknownTrade() {
	_, err := suite.store.Get(context.Background(), "u1", "missing")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeTradeNotFound))
}

func (suite *RepositoryTestSuite) TestGetIsScopedByUser() {
	ctx := context.Background()
	trade := suite.newTrade("t1", "u1", "AAPL", time.Now().UTC())
	suite.Require().NoError(suite.store.Put(ctx, trade))

	_, err := suite.store.Get(ctx, "other-user", "t1")
	suite.True(errors.HasCode(err, errors.ErrCodeTradeNotFound))
}

func (suite *RepositoryTestSuite) TestQueryFiltersAndOrder() {
	ctx := context.Background()

	older := suite.newTrade("t1", "u1", "AAPL", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := suite.newTrade("t2", "u1", "MSFT", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	closed := suite.newTrade("t3", "u1", "NVDA", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	closed.Exits = []types.Exit{{Date: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), Quantity: 10, Price: 120}}
	foreign := suite.newTrade("t4", "u2", "TSLA", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))

	for _, trade := range []types.Trade{older, newer, closed, foreign} {
		suite.Require().NoError(suite.store.Put(ctx, trade))
	}

	all, err := suite.store.Query(ctx, "u1", types.TradeFilterAll)
	suite.Require().NoError(err)
	suite.Require().Len(all, 3)
	// Newest entry date first.
	suite.Equal("t2", all[0].ID)
	suite.Equal("t3", all[1].ID)
	suite.Equal("t1", all[2].ID)

	open, err := suite.store.Query(ctx, "u1", types.TradeFilterOpen)
	suite.Require().NoError(err)
	suite.Len(open, 2)

	closedTrades, err := suite.store.Query(ctx, "u1", types.TradeFilterClosed)
	suite.Require().NoError(err)
	suite.Require().Len(closedTrades, 1)
	suite.Equal("t3", closedTrades[0].ID)
}

func (suite *RepositoryTestSuite) TestPutReplacesExistingState() {
	ctx := context.Background()
	trade := suite.newTrade("t1", "u1", "AAPL", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(suite.store.Put(ctx, trade))

	trade.Notes = "updated"
	trade.Exits = []types.Exit{{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Quantity: 10, Price: 105}}
	suite.Require().NoError(suite.store.Put(ctx, trade))

	got, err := suite.store.Get(ctx, "u1", "t1")
	suite.Require().NoError(err)
	suite.Equal("updated", got.Notes)
	suite.Len(got.Exits, 1)
	suite.False(got.IsOpen())
}

func (suite *RepositoryTestSuite) TestRemove() {
	ctx := context.Background()
	trade := suite.newTrade("t1", "u1", "AAPL", time.Now().UTC())
	suite.Require().NoError(suite.store.Put(ctx, trade))

	suite.Require().NoError(suite.store.Remove(ctx, "u1", "t1"))

	err := suite.store.Remove(ctx, "u1", "t1")
	suite.True(errors.HasCode(err, errors.ErrCodeTradeNotFound))
}

func (suite *RepositoryTestSuite) TestUserLifecycle() {
	ctx := context.Background()
	user := types.User{
		ID:           "u1",
		Name:         "Taylor",
		Email:        "taylor@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	suite.Require().NoError(suite.store.CreateUser(ctx, user))

	byEmail, err := suite.store.GetUserByEmail(ctx, "taylor@example.com")
	suite.Require().NoError(err)
	suite.Equal("u1", byEmail.ID)

	byID, err := suite.store.GetUser(ctx, "u1")
	suite.Require().NoError(err)
	suite.Equal("taylor@example.com", byID.Email)

	duplicate := user
	duplicate.ID = "u2"
	err = suite.store.CreateUser(ctx, duplicate)
	suite.True(errors.HasCode(err, errors.ErrCodeEmailInUse))

	_, err = suite.store.GetUser(ctx, "missing")
	suite.True(errors.HasCode(err, errors.ErrCodeUserNotFound))
}
