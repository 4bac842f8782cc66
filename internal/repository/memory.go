package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/rxtech-lab/trade-journal/internal/types"
	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// MemoryStore keeps trades and users in process memory. Used by tests and
// ephemeral runs; implements the same contracts as DuckDBStore.
type MemoryStore struct {
	mu     sync.RWMutex
	trades map[string]types.Trade
	users  map[string]types.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trades: make(map[string]types.Trade),
		users:  make(map[string]types.User),
	}
}

func cloneTrade(t types.Trade) types.Trade {
	clone := t
	clone.Exits = make([]types.Exit, len(t.Exits))
	copy(clone.Exits, t.Exits)

	return clone
}

// Get returns the trade with the given id owned by userID.
func (s *MemoryStore) Get(ctx context.Context, userID, id string) (types.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trade, ok := s.trades[id]
	if !ok || trade.UserID != userID {
		return types.Trade{}, errors.Newf(errors.ErrCodeTradeNotFound, "trade %s not found", id)
	}

	return cloneTrade(trade), nil
}

// Query returns the user's trades matching the filter, newest entry date first.
func (s *MemoryStore) Query(ctx context.Context, userID string, filter types.TradeFilter) ([]types.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.Trade, 0)

	for _, trade := range s.trades {
		if trade.UserID != userID {
			continue
		}

		switch filter {
		case types.TradeFilterOpen:
			if !trade.IsOpen() {
				continue
			}
		case types.TradeFilterClosed:
			if trade.IsOpen() {
				continue
			}
		case types.TradeFilterAll:
		}

		result = append(result, cloneTrade(trade))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].EntryDate.Equal(result[j].EntryDate) {
			return result[i].EntryDate.After(result[j].EntryDate)
		}

		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Put stores the trade, replacing any previous state under the same id.
func (s *MemoryStore) Put(ctx context.Context, trade types.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[trade.ID] = cloneTrade(trade)

	return nil
}

// Remove deletes the trade.
func (s *MemoryStore) Remove(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade, ok := s.trades[id]
	if !ok || trade.UserID != userID {
		return errors.Newf(errors.ErrCodeTradeNotFound, "trade %s not found", id)
	}

	delete(s.trades, id)

	return nil
}

// CreateUser stores a new user, enforcing email uniqueness.
func (s *MemoryStore) CreateUser(ctx context.Context, user types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return errors.Newf(errors.ErrCodeEmailInUse, "email %s is already in use", user.Email)
		}
	}

	s.users[user.ID] = user

	return nil
}

// GetUserByEmail returns the user registered under email.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}

	return types.User{}, errors.New(errors.ErrCodeUserNotFound, "user not found")
}

// GetUser returns the user with the given id.
func (s *MemoryStore) GetUser(ctx context.Context, id string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return types.User{}, errors.New(errors.ErrCodeUserNotFound, "user not found")
	}

	return user, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
