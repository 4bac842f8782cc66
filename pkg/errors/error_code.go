package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingField         ErrorCode = 102
	ErrCodeInvalidQuantity      ErrorCode = 103
	ErrCodeInvalidPrice         ErrorCode = 104
	ErrCodeInvalidInstrument    ErrorCode = 105
	ErrCodeInvalidOptionType    ErrorCode = 106
	ErrCodeExitBeforeEntry      ErrorCode = 107
	ErrCodeExitExceedsQuantity  ErrorCode = 108
	ErrCodeQuantityBelowExited  ErrorCode = 109

	// Data/Resource errors (200-299)
	ErrCodeTradeNotFound ErrorCode = 200
	ErrCodeUserNotFound  ErrorCode = 201
	ErrCodeQueryFailed   ErrorCode = 202

	// Auth errors (400-499)
	ErrCodeInvalidCredentials ErrorCode = 400
	ErrCodeInvalidToken       ErrorCode = 401
	ErrCodeTokenRevoked       ErrorCode = 402
	ErrCodeEmailInUse         ErrorCode = 403

	// Storage errors (500-599)
	ErrCodeStorageFailed    ErrorCode = 500
	ErrCodeDuplicateTradeID ErrorCode = 501

	// Import errors (600-699)
	ErrCodeImportRowMalformed ErrorCode = 600
	ErrCodeImportReadFailed   ErrorCode = 601

	// Market data errors (700-799)
	ErrCodeQuoteFetchFailed ErrorCode = 700
	ErrCodeInvalidProvider  ErrorCode = 701
)
