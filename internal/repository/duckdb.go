package repository

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/trade-journal/internal/logger"
	"github.com/rxtech-lab/trade-journal/internal/types"
	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// DuckDBStore persists trades, exits, and users in a DuckDB database.
// Exits live in their own table keyed by (trade_id, seq) so that the
// chronological order, including same-date submission order, survives a
// round trip.
type DuckDBStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBStore opens (or creates) the database at path. Use ":memory:"
// for an ephemeral store.
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageFailed, "failed to open database", err)
	}

	store := &DuckDBStore{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

// initialize creates the tables for trades, exits, and users.
func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			symbol TEXT,
			entry_date TIMESTAMP,
			instrument_type TEXT,
			option_type TEXT,
			quantity INTEGER,
			entry_price DOUBLE,
			strategy TEXT,
			notes TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to create trades table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS exits (
			trade_id TEXT,
			seq INTEGER,
			exit_date TIMESTAMP,
			quantity INTEGER,
			price DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to create exits table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT,
			email TEXT,
			password_hash TEXT,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to create users table", err)
	}

	return nil
}

// Get returns the trade with the given id owned by userID.
func (s *DuckDBStore) Get(ctx context.Context, userID, id string) (types.Trade, error) {
	query := s.sq.
		Select("id", "user_id", "symbol", "entry_date", "instrument_type", "option_type",
			"quantity", "entry_price", "strategy", "notes").
		From("trades").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		RunWith(s.db)

	var trade types.Trade

	err := query.QueryRowContext(ctx).Scan(
		&trade.ID,
		&trade.UserID,
		&trade.Symbol,
		&trade.EntryDate,
		&trade.InstrumentType,
		&trade.OptionType,
		&trade.Quantity,
		&trade.EntryPrice,
		&trade.Strategy,
		&trade.Notes,
	)
	if err == sql.ErrNoRows {
		return types.Trade{}, errors.Newf(errors.ErrCodeTradeNotFound, "trade %s not found", id)
	}

	if err != nil {
		return types.Trade{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trade", err)
	}

	exits, err := s.loadExits(ctx, trade.ID)
	if err != nil {
		return types.Trade{}, err
	}

	trade.Exits = exits

	return trade, nil
}

func (s *DuckDBStore) loadExits(ctx context.Context, tradeID string) ([]types.Exit, error) {
	query := s.sq.
		Select("exit_date", "quantity", "price").
		From("exits").
		Where(squirrel.Eq{"trade_id": tradeID}).
		OrderBy("exit_date ASC", "seq ASC").
		RunWith(s.db)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query exits", err)
	}
	defer rows.Close()

	var exits []types.Exit

	for rows.Next() {
		var exit types.Exit
		if err := rows.Scan(&exit.Date, &exit.Quantity, &exit.Price); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan exit", err)
		}

		exits = append(exits, exit)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating exits", err)
	}

	return exits, nil
}

// Query returns the user's trades matching the filter, newest entry date
// first. The open/closed state is derived from the loaded exits, not stored.
func (s *DuckDBStore) Query(ctx context.Context, userID string, filter types.TradeFilter) ([]types.Trade, error) {
	query := s.sq.
		Select("id", "user_id", "symbol", "entry_date", "instrument_type", "option_type",
			"quantity", "entry_price", "strategy", "notes").
		From("trades").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("entry_date DESC", "id ASC").
		RunWith(s.db)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		var trade types.Trade

		err := rows.Scan(
			&trade.ID,
			&trade.UserID,
			&trade.Symbol,
			&trade.EntryDate,
			&trade.InstrumentType,
			&trade.OptionType,
			&trade.Quantity,
			&trade.EntryPrice,
			&trade.Strategy,
			&trade.Notes,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating trades", err)
	}

	result := make([]types.Trade, 0, len(trades))

	for i := range trades {
		exits, err := s.loadExits(ctx, trades[i].ID)
		if err != nil {
			return nil, err
		}

		trades[i].Exits = exits

		switch filter {
		case types.TradeFilterOpen:
			if !trades[i].IsOpen() {
				continue
			}
		case types.TradeFilterClosed:
			if trades[i].IsOpen() {
				continue
			}
		case types.TradeFilterAll:
		}

		result = append(result, trades[i])
	}

	return result, nil
}

// Put stores the trade, replacing any previous state under the same id.
// The trade row and its exits are written in one transaction so the derived
// open/closed state can never diverge from the stored exits.
func (s *DuckDBStore) Put(ctx context.Context, trade types.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to begin transaction", err)
	}

	deleteExits := s.sq.Delete("exits").Where(squirrel.Eq{"trade_id": trade.ID}).RunWith(tx)
	if _, err := deleteExits.ExecContext(ctx); err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to clear exits", err)
	}

	deleteTrade := s.sq.Delete("trades").Where(squirrel.Eq{"id": trade.ID}).RunWith(tx)
	if _, err := deleteTrade.ExecContext(ctx); err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to replace trade", err)
	}

	insertTrade := s.sq.
		Insert("trades").
		Columns("id", "user_id", "symbol", "entry_date", "instrument_type", "option_type",
			"quantity", "entry_price", "strategy", "notes").
		Values(trade.ID, trade.UserID, trade.Symbol, trade.EntryDate, trade.InstrumentType,
			trade.OptionType, trade.Quantity, trade.EntryPrice, trade.Strategy, trade.Notes).
		RunWith(tx)

	if _, err := insertTrade.ExecContext(ctx); err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to insert trade", err)
	}

	if len(trade.Exits) > 0 {
		insertExits := s.sq.
			Insert("exits").
			Columns("trade_id", "seq", "exit_date", "quantity", "price")

		for seq, exit := range trade.Exits {
			insertExits = insertExits.Values(trade.ID, seq, exit.Date, exit.Quantity, exit.Price)
		}

		if _, err := insertExits.RunWith(tx).ExecContext(ctx); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeStorageFailed, "failed to insert exits", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to commit transaction", err)
	}

	return nil
}

// Remove deletes the trade and its exits.
func (s *DuckDBStore) Remove(ctx context.Context, userID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to begin transaction", err)
	}

	deleteTrade := s.sq.Delete("trades").Where(squirrel.Eq{"id": id, "user_id": userID}).RunWith(tx)

	res, err := deleteTrade.ExecContext(ctx)
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to delete trade", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to read delete result", err)
	}

	if affected == 0 {
		tx.Rollback()

		return errors.Newf(errors.ErrCodeTradeNotFound, "trade %s not found", id)
	}

	deleteExits := s.sq.Delete("exits").Where(squirrel.Eq{"trade_id": id}).RunWith(tx)
	if _, err := deleteExits.ExecContext(ctx); err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to delete exits", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to commit transaction", err)
	}

	return nil
}

// CreateUser stores a new user, enforcing email uniqueness.
func (s *DuckDBStore) CreateUser(ctx context.Context, user types.User) error {
	existing := s.sq.
		Select("COUNT(*)").
		From("users").
		Where(squirrel.Eq{"email": user.Email}).
		RunWith(s.db)

	var count int
	if err := existing.QueryRowContext(ctx).Scan(&count); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to check email", err)
	}

	if count > 0 {
		return errors.Newf(errors.ErrCodeEmailInUse, "email %s is already in use", user.Email)
	}

	insert := s.sq.
		Insert("users").
		Columns("id", "name", "email", "password_hash", "created_at").
		Values(user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt).
		RunWith(s.db)

	if _, err := insert.ExecContext(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to insert user", err)
	}

	return nil
}

// GetUserByEmail returns the user registered under email.
func (s *DuckDBStore) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	return s.getUser(ctx, squirrel.Eq{"email": email})
}

// GetUser returns the user with the given id.
func (s *DuckDBStore) GetUser(ctx context.Context, id string) (types.User, error) {
	return s.getUser(ctx, squirrel.Eq{"id": id})
}

func (s *DuckDBStore) getUser(ctx context.Context, where squirrel.Eq) (types.User, error) {
	query := s.sq.
		Select("id", "name", "email", "password_hash", "created_at").
		From("users").
		Where(where).
		RunWith(s.db)

	var user types.User

	err := query.QueryRowContext(ctx).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return types.User{}, errors.New(errors.ErrCodeUserNotFound, "user not found")
	}

	if err != nil {
		return types.User{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query user", err)
	}

	return user, nil
}

// Close closes the underlying database.
func (s *DuckDBStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close database", zap.Error(err))

		return err
	}

	return nil
}
