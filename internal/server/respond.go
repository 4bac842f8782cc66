package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// errorBody is the JSON error envelope: {"error": {...}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Fields  []fieldViolation `json:"fields,omitempty"`
}

type fieldViolation struct {
	Field   string `json:"field"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError maps the structured error taxonomy onto HTTP statuses. Every
// error stays recoverable and carries its code to the client.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if validationErr := errors.AsValidationError(err); validationErr != nil {
		fields := make([]fieldViolation, 0, len(validationErr.Violations))
		for _, v := range validationErr.Violations {
			fields = append(fields, fieldViolation{Field: v.Field, Code: int(v.Code), Message: v.Message})
		}

		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    int(errors.ErrCodeInvalidParameter),
			Message: validationErr.Error(),
			Fields:  fields,
		}})

		return
	}

	code := errors.GetCode(err)
	status := statusFor(code)

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: int(code), Message: err.Error()}})
}

func statusFor(code errors.ErrorCode) int {
	switch {
	case code >= 100 && code < 200:
		return http.StatusBadRequest
	case code >= 200 && code < 300:
		return http.StatusNotFound
	case code == errors.ErrCodeEmailInUse:
		return http.StatusConflict
	case code >= 400 && code < 500:
		return http.StatusUnauthorized
	case code >= 600 && code < 700:
		return http.StatusBadRequest
	case code >= 700 && code < 800:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
