// Package ledger validates and applies trade lifecycle transitions:
// open, partial exit, closed. It is the only writer of trade state; every
// operation is scoped to the session's user.
package ledger

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxtech-lab/trade-journal/internal/logger"
	"github.com/rxtech-lab/trade-journal/internal/repository"
	"github.com/rxtech-lab/trade-journal/internal/types"
	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// Service applies trade lifecycle operations against the repository.
type Service struct {
	repo     repository.TradeRepository
	logger   *logger.Logger
	validate *validator.Validate
}

// NewService creates a ledger service backed by the given repository.
func NewService(repo repository.TradeRepository, log *logger.Logger) *Service {
	validate := validator.New()

	// Report violations under the wire field names, not Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &Service{
		repo:     repo,
		logger:   log,
		validate: validate,
	}
}

// CreateTrade validates the input and stores a new open trade with no exits.
func (s *Service) CreateTrade(ctx context.Context, session types.Session, input types.TradeInput) (types.Trade, error) {
	trade := types.Trade{
		ID:             uuid.New().String(),
		UserID:         session.UserID,
		Symbol:         strings.TrimSpace(input.Symbol),
		EntryDate:      input.EntryDate,
		InstrumentType: input.InstrumentType,
		OptionType:     normalizeOptionType(input.InstrumentType, input.OptionType),
		Quantity:       input.Quantity,
		EntryPrice:     input.EntryPrice,
		Strategy:       input.Strategy,
		Notes:          input.Notes,
		Exits:          []types.Exit{},
	}

	if err := s.validateTrade(trade); err != nil {
		return types.Trade{}, err
	}

	if err := s.repo.Put(ctx, trade); err != nil {
		return types.Trade{}, err
	}

	s.logger.Info("trade created",
		zap.String("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.Int("quantity", trade.Quantity),
	)

	return trade, nil
}

// GetTrade returns the user's trade with the given id.
func (s *Service) GetTrade(ctx context.Context, session types.Session, id string) (types.Trade, error) {
	return s.repo.Get(ctx, session.UserID, id)
}

// ListTrades returns the user's trades matching the open/closed filter,
// newest entry date first.
func (s *Service) ListTrades(ctx context.Context, session types.Session, filter types.TradeFilter) ([]types.Trade, error) {
	return s.repo.Query(ctx, session.UserID, filter)
}

// UpdateTrade applies the patch to the stored trade, re-validating every
// changed field. Quantity can never drop below the already-exited quantity.
func (s *Service) UpdateTrade(ctx context.Context, session types.Session, id string, patch types.TradePatch) (types.Trade, error) {
	trade, err := s.repo.Get(ctx, session.UserID, id)
	if err != nil {
		return types.Trade{}, err
	}

	if patch.Symbol != nil {
		trade.Symbol = strings.TrimSpace(*patch.Symbol)
	}

	if patch.EntryDate != nil {
		trade.EntryDate = *patch.EntryDate
	}

	if patch.InstrumentType != nil {
		trade.InstrumentType = *patch.InstrumentType
	}

	if patch.OptionType != nil {
		trade.OptionType = *patch.OptionType
	}

	if patch.InstrumentType != nil && patch.OptionType == nil {
		trade.OptionType = normalizeOptionType(trade.InstrumentType, "")
	}

	if patch.Quantity != nil {
		trade.Quantity = *patch.Quantity
	}

	if patch.EntryPrice != nil {
		trade.EntryPrice = *patch.EntryPrice
	}

	if patch.Strategy != nil {
		trade.Strategy = *patch.Strategy
	}

	if patch.Notes != nil {
		trade.Notes = *patch.Notes
	}

	if err := s.validateTrade(trade); err != nil {
		return types.Trade{}, err
	}

	if trade.Quantity < trade.ExitedQuantity() {
		return types.Trade{}, errors.NewValidationError().Add(
			"quantity",
			errors.ErrCodeQuantityBelowExited,
			"cannot be reduced below the already-exited quantity",
		)
	}

	if err := s.repo.Put(ctx, trade); err != nil {
		return types.Trade{}, err
	}

	return trade, nil
}

// RecordExit appends a partial or full closing event to the trade. The exit
// is inserted in chronological position; same-date exits keep submission
// order. A rejected exit leaves the trade untouched, so the caller can
// correct the input and retry.
func (s *Service) RecordExit(ctx context.Context, session types.Session, id string, exit types.Exit) (types.Trade, error) {
	trade, err := s.repo.Get(ctx, session.UserID, id)
	if err != nil {
		return types.Trade{}, err
	}

	violations := errors.NewValidationError()

	if exit.Quantity <= 0 {
		violations.Add("quantity", errors.ErrCodeInvalidQuantity, "must be positive")
	}

	if exit.Price < 0 {
		violations.Add("price", errors.ErrCodeInvalidPrice, "must not be negative")
	}

	if exit.Date.Before(trade.EntryDate) {
		violations.Add("date", errors.ErrCodeExitBeforeEntry, "must not precede the entry date")
	}

	if exit.Quantity > 0 && trade.ExitedQuantity()+exit.Quantity > trade.Quantity {
		violations.Add("quantity", errors.ErrCodeExitExceedsQuantity,
			"cumulative exit quantity would exceed the trade quantity")
	}

	if !violations.Empty() {
		return types.Trade{}, violations
	}

	trade.Exits = insertChronological(trade.Exits, exit)

	if err := s.repo.Put(ctx, trade); err != nil {
		return types.Trade{}, err
	}

	if !trade.IsOpen() {
		s.logger.Info("trade closed",
			zap.String("trade_id", trade.ID),
			zap.String("symbol", trade.Symbol),
		)
	}

	return trade, nil
}

// DeleteTrade removes the trade. Deleting an absent trade reports a
// not-found error the caller may safely treat as a no-op.
func (s *Service) DeleteTrade(ctx context.Context, session types.Session, id string) error {
	return s.repo.Remove(ctx, session.UserID, id)
}

// insertChronological places the exit before the first strictly later exit,
// keeping same-date exits in submission order.
func insertChronological(exits []types.Exit, exit types.Exit) []types.Exit {
	pos := len(exits)

	for i, existing := range exits {
		if existing.Date.After(exit.Date) {
			pos = i

			break
		}
	}

	result := make([]types.Exit, 0, len(exits)+1)
	result = append(result, exits[:pos]...)
	result = append(result, exit)
	result = append(result, exits[pos:]...)

	return result
}

// normalizeOptionType defaults an empty option type for stocks; empty on an
// option trade is left for validation to reject.
func normalizeOptionType(instrument types.InstrumentType, opt types.OptionType) types.OptionType {
	if opt == "" && instrument == types.InstrumentTypeStock {
		return types.OptionTypeNone
	}

	return opt
}

// validateTrade runs tag-level validation and the cross-field lifecycle
// constraints, collecting every offending field.
func (s *Service) validateTrade(trade types.Trade) error {
	violations := errors.NewValidationError()

	if err := s.validate.Struct(trade); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return errors.Wrap(errors.ErrCodeInvalidParameter, "trade validation failed", err)
		}

		for _, fe := range fieldErrs {
			violations.Add(fe.Field(), tagCode(fe.Tag()), violationMessage(fe))
		}
	}

	if trade.InstrumentType == types.InstrumentTypeStock && trade.OptionType != types.OptionTypeNone {
		violations.Add("optionType", errors.ErrCodeInvalidOptionType, "must be none for stock trades")
	}

	if trade.InstrumentType == types.InstrumentTypeOption && trade.OptionType == types.OptionTypeNone {
		violations.Add("optionType", errors.ErrCodeInvalidOptionType, "must be call or put for option trades")
	}

	if violations.Empty() {
		return nil
	}

	return violations
}

func tagCode(tag string) errors.ErrorCode {
	switch tag {
	case "required":
		return errors.ErrCodeMissingField
	case "gt":
		return errors.ErrCodeInvalidQuantity
	case "gte":
		return errors.ErrCodeInvalidPrice
	case "oneof":
		return errors.ErrCodeInvalidInstrument
	default:
		return errors.ErrCodeInvalidParameter
	}
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
