// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, symbols, session windows, intervals
//   - Data/Resource errors (200-299): Data not found, query failures, unavailable resources, naive timestamps
//   - Market data errors (700-799): Market data fetching and parsing errors
//   - Export errors (900-999): Spreadsheet and parquet export failures
//
// Two domain error types sit beside the coded Error: ProviderError for a failed
// per-symbol retrieval and MissingTimezoneError for series with naive timestamps.
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeInvalidSymbol, "invalid symbol %q", symbol)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeDataNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error chain.
// *Error and *ProviderError report their own code, *MissingTimezoneError reports ErrCodeMissingTimezone.
// Returns ErrCodeUnknown for any other error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Code
	}

	var tzErr *MissingTimezoneError
	if errors.As(err, &tzErr) {
		return ErrCodeMissingTimezone
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// ProviderError is returned by a market data provider when candles for one symbol could not be retrieved.
// It covers network failures, unknown symbols, rate limits and empty payloads.
type ProviderError struct {
	Symbol  string
	Message string
	Code    ErrorCode
	Cause   error
}

// NewProviderError creates a new ProviderError with ErrCodeMarketDataFetchFailed.
func NewProviderError(symbol, message string) *ProviderError {
	return &ProviderError{
		Symbol:  symbol,
		Message: message,
		Code:    ErrCodeMarketDataFetchFailed,
		Cause:   nil,
	}
}

// NewProviderErrorf creates a new ProviderError with a formatted message.
func NewProviderErrorf(symbol, format string, args ...any) *ProviderError {
	return NewProviderError(symbol, fmt.Sprintf(format, args...))
}

// WrapProviderError wraps a transport or decoding failure for the given symbol.
func WrapProviderError(symbol, message string, cause error) *ProviderError {
	return &ProviderError{
		Symbol:  symbol,
		Message: message,
		Code:    ErrCodeMarketDataFetchFailed,
		Cause:   cause,
	}
}

// WithCode returns a copy of the error carrying the given code.
func (e *ProviderError) WithCode(code ErrorCode) *ProviderError {
	cp := *e
	cp.Code = code

	return &cp
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying error cause.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsProviderError checks if an error is a ProviderError.
func IsProviderError(err error) bool {
	var providerErr *ProviderError

	return errors.As(err, &providerErr)
}

// MissingTimezoneError is returned when a candle series carries naive timestamps
// that cannot be converted to another timezone.
type MissingTimezoneError struct {
	Symbol string
}

// NewMissingTimezoneError creates a new MissingTimezoneError.
func NewMissingTimezoneError(symbol string) *MissingTimezoneError {
	return &MissingTimezoneError{Symbol: symbol}
}

// Error implements the error interface.
func (e *MissingTimezoneError) Error() string {
	if e.Symbol == "" {
		return "series has no timezone information"
	}

	return fmt.Sprintf("series for %s has no timezone information", e.Symbol)
}

// IsMissingTimezoneError checks if an error is a MissingTimezoneError.
func IsMissingTimezoneError(err error) bool {
	var tzErr *MissingTimezoneError

	return errors.As(err, &tzErr)
}
