// Package server exposes the journal over a JSON HTTP API. Every endpoint
// under /api except register and login requires a bearer token issued by the
// auth service.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/trade-journal/internal/auth"
	"github.com/rxtech-lab/trade-journal/internal/ledger"
	"github.com/rxtech-lab/trade-journal/internal/logger"
	"github.com/rxtech-lab/trade-journal/internal/quote"
)

// Server wires the journal services to their HTTP routes.
type Server struct {
	ledger *ledger.Service
	auth   *auth.Service
	// quotes is nil when no provider is configured; unrealized P/L is then
	// reported unavailable.
	quotes quote.Provider
	logger *logger.Logger

	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server. quotes may be nil.
func New(ledgerService *ledger.Service, authService *auth.Service, quotes quote.Provider, log *logger.Logger) *Server {
	s := &Server{
		ledger: ledgerService,
		auth:   authService,
		quotes: quotes,
		logger: log,
	}
	s.router = s.buildRouter()

	return s
}

func (s *Server) buildRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/auth/register", s.handleRegister).Methods("POST")
	router.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST")
	router.HandleFunc("/api/auth/logout", s.handleLogout).Methods("POST")

	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/trades", s.handleListTrades).Methods("GET")
	authed.HandleFunc("/trades/open", s.handleListTrades).Methods("GET")
	authed.HandleFunc("/trades/closed", s.handleListTrades).Methods("GET")
	authed.HandleFunc("/trades", s.handleCreateTrade).Methods("POST")
	authed.HandleFunc("/trades/import", s.handleImportTrades).Methods("POST")
	authed.HandleFunc("/trades/{id}", s.handleGetTrade).Methods("GET")
	authed.HandleFunc("/trades/{id}", s.handleUpdateTrade).Methods("PUT")
	authed.HandleFunc("/trades/{id}", s.handleDeleteTrade).Methods("DELETE")
	authed.HandleFunc("/trades/{id}/close", s.handleCloseTrade).Methods("POST")
	authed.HandleFunc("/trades/{id}/profit-loss", s.handleProfitLoss).Methods("GET")
	authed.HandleFunc("/analytics", s.handleAnalytics).Methods("GET")
	authed.HandleFunc("/dashboard", s.handleDashboard).Methods("GET")

	return router
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving on address. It returns once the listener is bound;
// serving continues on a background goroutine.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http server listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound listen address, or empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}
