package ledger

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/trade-journal/internal/types"
	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// importDateLayout is the entry date format of import files.
const importDateLayout = "2006-01-02"

// ImportResult reports the outcome of one import row, in input order.
type ImportResult struct {
	Row     int          `json:"row"`
	Success bool         `json:"success"`
	Trade   *types.Trade `json:"trade,omitempty"`
	Error   string       `json:"error,omitempty"`

	// Err carries the structured error for programmatic callers.
	Err error `json:"-"`
}

// ImportTrades reads CSV rows of the shape
//
//	symbol,entryDate,instrumentType,optionType,quantity,entryPrice,strategy[,notes]
//
// and creates one trade per row. Rows fail independently: a malformed or
// invalid row is reported in its result and the batch continues. A leading
// header row (first cell "symbol") is skipped. The optionType cell accepts
// "N/A" or empty for non-option trades.
func (s *Service) ImportTrades(ctx context.Context, session types.Session, r io.Reader) ([]ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var results []ImportResult

	row := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			if parseErr, ok := err.(*csv.ParseError); ok {
				row++
				results = append(results, failedRow(row,
					errors.Wrapf(errors.ErrCodeImportRowMalformed, parseErr, "row %d is not valid CSV", row)))

				continue
			}

			return results, errors.Wrap(errors.ErrCodeImportReadFailed, "failed to read import file", err)
		}

		if row == 0 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "symbol") {
			continue
		}

		row++

		input, err := parseImportRow(record)
		if err != nil {
			results = append(results, failedRow(row, err))

			continue
		}

		trade, err := s.CreateTrade(ctx, session, input)
		if err != nil {
			results = append(results, failedRow(row, err))

			continue
		}

		results = append(results, ImportResult{Row: row, Success: true, Trade: &trade})
	}

	s.logger.Info("import finished",
		zap.Int("rows", row),
		zap.Int("failed", countFailed(results)),
	)

	return results, nil
}

func failedRow(row int, err error) ImportResult {
	return ImportResult{Row: row, Success: false, Error: err.Error(), Err: err}
}

func countFailed(results []ImportResult) int {
	failed := 0

	for _, result := range results {
		if !result.Success {
			failed++
		}
	}

	return failed
}

func parseImportRow(record []string) (types.TradeInput, error) {
	if len(record) < 7 {
		return types.TradeInput{}, errors.Newf(errors.ErrCodeImportRowMalformed,
			"expected at least 7 columns, got %d", len(record))
	}

	entryDate, err := time.Parse(importDateLayout, strings.TrimSpace(record[1]))
	if err != nil {
		return types.TradeInput{}, errors.Wrapf(errors.ErrCodeImportRowMalformed, err,
			"entry date %q is not in %s format", record[1], importDateLayout)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return types.TradeInput{}, errors.Wrapf(errors.ErrCodeImportRowMalformed, err,
			"quantity %q is not an integer", record[4])
	}

	entryPrice, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
	if err != nil {
		return types.TradeInput{}, errors.Wrapf(errors.ErrCodeImportRowMalformed, err,
			"entry price %q is not a number", record[5])
	}

	input := types.TradeInput{
		Symbol:         strings.TrimSpace(record[0]),
		EntryDate:      entryDate,
		InstrumentType: types.InstrumentType(strings.TrimSpace(record[2])),
		OptionType:     parseOptionType(record[3]),
		Quantity:       quantity,
		EntryPrice:     entryPrice,
		Strategy:       strings.TrimSpace(record[6]),
	}

	if len(record) > 7 {
		input.Notes = strings.TrimSpace(record[7])
	}

	return input, nil
}

// parseOptionType maps the import file's "N/A" (and empty) cells onto none.
func parseOptionType(cell string) types.OptionType {
	value := strings.TrimSpace(cell)
	if value == "" || strings.EqualFold(value, "N/A") || strings.EqualFold(value, "none") {
		return types.OptionTypeNone
	}

	return types.OptionType(strings.ToLower(value))
}
