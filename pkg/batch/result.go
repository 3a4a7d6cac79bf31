package batch

import (
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
)

// ReasonNoData is the failure reason recorded when a provider returns an empty series.
const ReasonNoData = "no data returned"

// Result is the outcome of one fetch request: either Success or Failure.
type Result interface {
	// symbol is unexported so that only this package can add variants.
	symbol() string
	// Succeeded reports whether the request produced a filtered series.
	Succeeded() bool
}

// Success carries the filtered series of a symbol. The series may be empty
// when the provider returned candles but none fell inside the session window.
type Success struct {
	Series types.CandleSeries
}

func (s Success) symbol() string {
	return s.Series.Symbol
}

func (Success) Succeeded() bool {
	return true
}

// Failure records why a symbol produced no series.
type Failure struct {
	Symbol string
	Reason string
	// Err is the underlying error, nil when the provider simply had no data.
	Err error
}

func (f Failure) symbol() string {
	return f.Symbol
}

func (Failure) Succeeded() bool {
	return false
}

// NewFailure builds a Failure whose reason is the error text.
func NewFailure(symbol string, err error) Failure {
	return Failure{Symbol: symbol, Reason: err.Error(), Err: err}
}
