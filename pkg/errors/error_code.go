package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter      ErrorCode = 100
	ErrCodeInvalidConfiguration  ErrorCode = 101
	ErrCodeMissingParameter      ErrorCode = 102
	ErrCodeInvalidSymbol         ErrorCode = 103
	ErrCodeInvalidSessionWindow  ErrorCode = 104
	ErrCodeInvalidTimezone       ErrorCode = 105
	ErrCodeInvalidInterval       ErrorCode = 106
	ErrCodeInvalidLookback       ErrorCode = 107
	ErrCodeInvalidProvider       ErrorCode = 108
	ErrCodeInvalidSheetName      ErrorCode = 109
	ErrCodeInvalidConcurrency    ErrorCode = 110
	ErrCodeMarketDataRequired    ErrorCode = 111
	ErrCodeInvalidOutputLocation ErrorCode = 112

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 203
	ErrCodeMissingTimezone       ErrorCode = 204

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeRateLimited           ErrorCode = 703

	// Export errors (900-999)
	ErrCodeExportFailed ErrorCode = 900
)
