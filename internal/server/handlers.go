package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/trade-journal/internal/analytics"
	"github.com/rxtech-lab/trade-journal/internal/pnl"
	"github.com/rxtech-lab/trade-journal/internal/types"
	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// maxImportSize caps the in-memory portion of a multipart CSV upload.
const maxImportSize = 10 << 20

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  types.User `json:"user"`
	Token string     `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	user, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	user, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidToken, "missing bearer token"))

		return
	}

	if err := s.auth.Logout(r.Context(), token); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	filter := types.TradeFilterAll

	switch {
	case strings.HasSuffix(r.URL.Path, "/open"):
		filter = types.TradeFilterOpen
	case strings.HasSuffix(r.URL.Path, "/closed"):
		filter = types.TradeFilterClosed
	}

	trades, err := s.ledger.ListTrades(r.Context(), sessionFromContext(r.Context()), filter)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var input types.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	trade, err := s.ledger.CreateTrade(r.Context(), sessionFromContext(r.Context()), input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := s.ledger.GetTrade(r.Context(), sessionFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	var patch types.TradePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	trade, err := s.ledger.UpdateTrade(r.Context(), sessionFromContext(r.Context()), mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTrade(r.Context(), sessionFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	var exit types.Exit
	if err := json.NewDecoder(r.Body).Decode(&exit); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	trade, err := s.ledger.RecordExit(r.Context(), sessionFromContext(r.Context()), mux.Vars(r)["id"], exit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleProfitLoss(w http.ResponseWriter, r *http.Request) {
	trade, err := s.ledger.GetTrade(r.Context(), sessionFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	currentPrice := optional.None[float64]()

	if raw := r.URL.Query().Get("currentPrice"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, errors.Newf(errors.ErrCodeInvalidParameter, "currentPrice %q is not a number", raw))

			return
		}

		currentPrice = optional.Some(price)
	}

	s.writeJSON(w, http.StatusOK, pnl.Compute(trade, currentPrice))
}

func (s *Server) handleImportTrades(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid multipart request", err))

		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "missing file field", err))

		return
	}
	defer file.Close()

	results, err := s.ledger.ImportTrades(r.Context(), sessionFromContext(r.Context()), file)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	trades, err := s.ledger.ListTrades(r.Context(), sessionFromContext(r.Context()), types.TradeFilterAll)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, analytics.Aggregate(trades))
}

// openPosition pairs an open trade with its current P/L valuation.
type openPosition struct {
	Trade      types.Trade   `json:"trade"`
	ProfitLoss pnl.Breakdown `json:"profitLoss"`
}

type dashboardResponse struct {
	Summary       types.Summary  `json:"summary"`
	OpenPositions []openPosition `json:"openPositions"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	trades, err := s.ledger.ListTrades(r.Context(), session, types.TradeFilterAll)
	if err != nil {
		s.writeError(w, err)

		return
	}

	positions := make([]openPosition, 0)

	for _, trade := range trades {
		if !trade.IsOpen() {
			continue
		}

		currentPrice := optional.None[float64]()

		if s.quotes != nil {
			price, err := s.quotes.LatestPrice(r.Context(), trade.Symbol)
			if err != nil {
				// A dead quote feed degrades the dashboard, it does not
				// break it.
				s.logger.Warn("quote lookup failed",
					zap.String("symbol", trade.Symbol),
					zap.Error(err),
				)
			} else {
				currentPrice = optional.Some(price)
			}
		}

		positions = append(positions, openPosition{
			Trade:      trade,
			ProfitLoss: pnl.Compute(trade, currentPrice),
		})
	}

	s.writeJSON(w, http.StatusOK, dashboardResponse{
		Summary:       analytics.Aggregate(trades),
		OpenPositions: positions,
	})
}
