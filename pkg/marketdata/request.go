package marketdata

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
)

// symbolPattern accepts exchange tickers such as RELIANCE.NS, ^NSEI, BRK-B or EURUSD=X.
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9^][A-Za-z0-9.\-_=^&]{0,31}$`)

// FetchRequest asks a provider for one symbol's candles.
type FetchRequest struct {
	Symbol   string   `json:"symbol" validate:"required,symbol"`
	Lookback Lookback `json:"lookback" validate:"required,lookback"`
	Interval Interval `json:"interval" validate:"required,interval"`
}

// NewRequests builds one request per symbol sharing a lookback and interval.
func NewRequests(symbols []string, lookback Lookback, interval Interval) []FetchRequest {
	requests := make([]FetchRequest, 0, len(symbols))
	for _, s := range symbols {
		requests = append(requests, FetchRequest{
			Symbol:   strings.TrimSpace(s),
			Lookback: lookback,
			Interval: interval,
		})
	}

	return requests
}

// NewValidator returns a validator with the symbol, lookback and interval rules registered.
func NewValidator() *validator.Validate {
	validate := validator.New()

	// Registration only fails for an empty tag or nil func.
	_ = validate.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
		return IsValidSymbol(fl.Field().String())
	})
	_ = validate.RegisterValidation("lookback", func(fl validator.FieldLevel) bool {
		_, err := ParseLookback(fl.Field().String())

		return err == nil
	})
	_ = validate.RegisterValidation("interval", func(fl validator.FieldLevel) bool {
		_, err := ParseInterval(fl.Field().String())

		return err == nil
	})

	return validate
}

// IsValidSymbol reports whether s looks like a ticker a provider could resolve.
func IsValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// ValidateRequests checks every request and rejects duplicate symbols.
// The returned error carries ErrCodeInvalidParameter and names the offending index.
func ValidateRequests(validate *validator.Validate, requests []FetchRequest) error {
	seen := make(map[string]int, len(requests))

	for i, r := range requests {
		if err := validate.Struct(r); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid fetch request at index %d (%q)", i, r.Symbol)
		}

		if prev, ok := seen[r.Symbol]; ok {
			return errors.Newf(errors.ErrCodeInvalidParameter, "duplicate symbol %q at index %d and %d", r.Symbol, prev, i)
		}

		seen[r.Symbol] = i
	}

	return nil
}
