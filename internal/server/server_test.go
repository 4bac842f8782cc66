package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/trade-journal/internal/auth"
	"github.com/rxtech-lab/trade-journal/internal/ledger"
	"github.com/rxtech-lab/trade-journal/internal/logger"
	"github.com/rxtech-lab/trade-journal/internal/repository"
	"github.com/rxtech-lab/trade-journal/internal/types"
	"github.com/rxtech-lab/trade-journal/mocks"
)

type ServerTestSuite struct {
	suite.Suite
	store  *repository.MemoryStore
	ledger *ledger.Service
	auth   *auth.Service
	server *Server
	token  string
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	log := logger.NewNop()
	suite.store = repository.NewMemoryStore()
	suite.ledger = ledger.NewService(suite.store, log)
	suite.auth = auth.NewService(suite.store, log, []byte("test-secret"), time.Hour)
	suite.server = New(suite.ledger, suite.auth, nil, log)
	suite.token = suite.signup("alice@example.com")
}

// signup registers a user and returns a working bearer token.
func (suite *ServerTestSuite) signup(email string) string {
	rec := suite.do("POST", "/api/auth/register", "", map[string]string{
		"name":     "Alice",
		"email":    email,
		"password": "correct-horse",
	})
	suite.Require().Equal(http.StatusCreated, rec.Code)

	rec = suite.do("POST", "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
	})
	suite.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Require().NotEmpty(resp.Token)

	return resp.Token
}

func (suite *ServerTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(rec, req)

	return rec
}

func (suite *ServerTestSuite) createTrade(symbol string) types.Trade {
	rec := suite.do("POST", "/api/trades", suite.token, map[string]any{
		"symbol":         symbol,
		"entryDate":      "2024-01-02T00:00:00Z",
		"instrumentType": "stock",
		"quantity":       10,
		"entryPrice":     100.0,
		"strategy":       "swing",
	})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var trade types.Trade
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &trade))

	return trade
}

func (suite *ServerTestSuite) TestRequiresToken() {
	rec := suite.do("GET", "/api/trades", "", nil)
	suite.Equal(http.StatusUnauthorized, rec.Code)

	rec = suite.do("GET", "/api/trades", "bogus-token", nil)
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *ServerTestSuite) TestRegisterConflict() {
	rec := suite.do("POST", "/api/auth/register", "", map[string]string{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "another-pass",
	})
	suite.Equal(http.StatusConflict, rec.Code)
}

func (suite *ServerTestSuite) TestLogout() {
	rec := suite.do("POST", "/api/auth/logout", suite.token, nil)
	suite.Equal(http.StatusNoContent, rec.Code)

	rec = suite.do("GET", "/api/trades", suite.token, nil)
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *ServerTestSuite) TestTradeLifecycle() {
	trade := suite.createTrade("AAPL")
	suite.True(trade.IsOpen())

	// Update.
	rec := suite.do("PUT", "/api/trades/"+trade.ID, suite.token, map[string]any{"notes": "tightened stop"})
	suite.Require().Equal(http.StatusOK, rec.Code)

	var updated types.Trade
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &updated))
	suite.Equal("tightened stop", updated.Notes)

	// Close with a full exit.
	rec = suite.do("POST", "/api/trades/"+trade.ID+"/close", suite.token, map[string]any{
		"date":     "2024-02-01T00:00:00Z",
		"quantity": 10,
		"price":    120.0,
	})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var closed types.Trade
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &closed))
	suite.False(closed.IsOpen())

	// Filtered listings.
	rec = suite.do("GET", "/api/trades/closed", suite.token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var listed []types.Trade
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &listed))
	suite.Require().Len(listed, 1)
	suite.Equal(trade.ID, listed[0].ID)

	rec = suite.do("GET", "/api/trades/open", suite.token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &listed))
	suite.Empty(listed)

	// Delete.
	rec = suite.do("DELETE", "/api/trades/"+trade.ID, suite.token, nil)
	suite.Equal(http.StatusNoContent, rec.Code)

	rec = suite.do("GET", "/api/trades/"+trade.ID, suite.token, nil)
	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *ServerTestSuite) TestCreateTradeValidationEnvelope() {
	rec := suite.do("POST", "/api/trades", suite.token, map[string]any{
		"symbol":         "",
		"entryDate":      "2024-01-02T00:00:00Z",
		"instrumentType": "stock",
		"quantity":       -5,
		"entryPrice":     100.0,
	})
	suite.Require().Equal(http.StatusBadRequest, rec.Code)

	var body struct {
		Error struct {
			Code   int `json:"code"`
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		} `json:"error"`
	}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	suite.NotZero(body.Error.Code)

	fields := make([]string, 0, len(body.Error.Fields))
	for _, f := range body.Error.Fields {
		fields = append(fields, f.Field)
	}

	suite.Contains(fields, "symbol")
	suite.Contains(fields, "quantity")
}

func (suite *ServerTestSuite) TestProfitLossEndpoint() {
	trade := suite.createTrade("AAPL")

	rec := suite.do("POST", "/api/trades/"+trade.ID+"/close", suite.token, map[string]any{
		"date":     "2024-02-01T00:00:00Z",
		"quantity": 5,
		"price":    120.0,
	})
	suite.Require().Equal(http.StatusOK, rec.Code)

	// Open remainder without a price: unrealized is unavailable.
	rec = suite.do("GET", "/api/trades/"+trade.ID+"/profit-loss", suite.token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var breakdown struct {
		Realized   float64  `json:"realized"`
		Unrealized *float64 `json:"unrealized"`
	}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &breakdown))
	suite.InDelta(100.0, breakdown.Realized, 1e-9)
	suite.Nil(breakdown.Unrealized)

	// With a market price the open half is valued.
	rec = suite.do("GET", "/api/trades/"+trade.ID+"/profit-loss?currentPrice=110", suite.token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &breakdown))
	suite.Require().NotNil(breakdown.Unrealized)
	suite.InDelta(50.0, *breakdown.Unrealized, 1e-9)

	rec = suite.do("GET", "/api/trades/"+trade.ID+"/profit-loss?currentPrice=abc", suite.token, nil)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *ServerTestSuite) TestImportEndpoint() {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "trades.csv")
	suite.Require().NoError(err)

	_, err = fmt.Fprint(part, "symbol,entryDate,instrumentType,optionType,quantity,entryPrice,strategy\n"+
		"AAPL,2024-01-02,stock,,10,100,swing\n"+
		"MSFT,2024-01-03,stock,,-5,200,swing\n"+
		"SPY,2024-01-04,option,call,2,4.25,earnings\n")
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	req := httptest.NewRequest("POST", "/api/trades/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+suite.token)

	rec := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(rec, req)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var results []struct {
		Row     int  `json:"row"`
		Success bool `json:"success"`
	}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &results))
	suite.Require().Len(results, 3)
	suite.True(results[0].Success)
	suite.False(results[1].Success)
	suite.True(results[2].Success)
}

func (suite *ServerTestSuite) TestAnalyticsEndpoint() {
	trade := suite.createTrade("AAPL")

	rec := suite.do("POST", "/api/trades/"+trade.ID+"/close", suite.token, map[string]any{
		"date":     "2024-02-01T00:00:00Z",
		"quantity": 10,
		"price":    120.0,
	})
	suite.Require().Equal(http.StatusOK, rec.Code)

	rec = suite.do("GET", "/api/analytics", suite.token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var summary types.Summary
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &summary))
	suite.InDelta(200.0, summary.TotalProfitLoss, 1e-9)
	suite.Equal(1, summary.ClosedTrades)
}

func (suite *ServerTestSuite) TestDashboardWithQuotes() {
	ctrl := gomock.NewController(suite.T())
	quotes := mocks.NewMockProvider(ctrl)
	quotes.EXPECT().LatestPrice(gomock.Any(), "AAPL").Return(110.0, nil)

	suite.server = New(suite.ledger, suite.auth, quotes, logger.NewNop())

	suite.createTrade("AAPL")

	rec := suite.do("GET", "/api/dashboard", suite.token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var dashboard struct {
		Summary       types.Summary `json:"summary"`
		OpenPositions []struct {
			Trade      types.Trade `json:"trade"`
			ProfitLoss struct {
				Unrealized *float64 `json:"unrealized"`
			} `json:"profitLoss"`
		} `json:"openPositions"`
	}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &dashboard))
	suite.Require().Len(dashboard.OpenPositions, 1)
	suite.Require().NotNil(dashboard.OpenPositions[0].ProfitLoss.Unrealized)
	suite.InDelta(100.0, *dashboard.OpenPositions[0].ProfitLoss.Unrealized, 1e-9)
	suite.Equal(1, dashboard.Summary.OpenTrades)
}

func (suite *ServerTestSuite) TestDashboardWithoutQuotes() {
	suite.createTrade("AAPL")

	rec := suite.do("GET", "/api/dashboard", suite.token, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var dashboard struct {
		OpenPositions []struct {
			ProfitLoss struct {
				Unrealized *float64 `json:"unrealized"`
			} `json:"profitLoss"`
		} `json:"openPositions"`
	}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &dashboard))
	suite.Require().Len(dashboard.OpenPositions, 1)
	suite.Nil(dashboard.OpenPositions[0].ProfitLoss.Unrealized)
}

func (suite *ServerTestSuite) TestOwnershipIsolation() {
	trade := suite.createTrade("AAPL")

	otherToken := suite.signup("bob@example.com")

	rec := suite.do("GET", "/api/trades/"+trade.ID, otherToken, nil)
	suite.Equal(http.StatusNotFound, rec.Code)

	rec = suite.do("GET", "/api/trades", otherToken, nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var listed []types.Trade
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &listed))
	suite.Empty(listed)
}
