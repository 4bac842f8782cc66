// Package repository provides durable storage for trades and users.
//
// Two TradeRepository implementations exist: a DuckDB-backed store for real
// deployments and an in-memory store for tests and ephemeral runs. Both scope
// every operation by owning user; a trade belonging to another user is
// indistinguishable from an absent one.
package repository

import (
	"context"

	"github.com/rxtech-lab/trade-journal/internal/types"
)

// TradeRepository is the durable store of trade records.
type TradeRepository interface {
	// Get returns the trade with the given id owned by userID.
	// Returns an ErrCodeTradeNotFound error when absent.
	Get(ctx context.Context, userID, id string) (types.Trade, error)
	// Query returns the user's trades matching the open/closed filter,
	// newest entry date first. Exits are ordered chronologically.
	Query(ctx context.Context, userID string, filter types.TradeFilter) ([]types.Trade, error)
	// Put stores the trade, replacing any previous state under the same id.
	Put(ctx context.Context, trade types.Trade) error
	// Remove deletes the trade. Returns an ErrCodeTradeNotFound error when
	// already absent.
	Remove(ctx context.Context, userID, id string) error
	// Close releases any underlying resources.
	Close() error
}

// UserRepository is the durable store of journal owners.
type UserRepository interface {
	// CreateUser stores a new user. Returns an ErrCodeEmailInUse error when
	// the email is already registered.
	CreateUser(ctx context.Context, user types.User) error
	// GetUserByEmail returns the user registered under email, or an
	// ErrCodeUserNotFound error.
	GetUserByEmail(ctx context.Context, email string) (types.User, error)
	// GetUser returns the user with the given id, or an ErrCodeUserNotFound
	// error.
	GetUser(ctx context.Context, id string) (types.User, error)
}
