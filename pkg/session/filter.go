package session

import (
	"time"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
)

// Filter converts every candle timestamp in series to target and keeps the candles whose
// time of day falls inside w, bounds included. Relative order is preserved and the input
// is not modified. The returned series is expressed in target.
//
// An empty series yields an empty series. A non-empty series without a Location has naive
// timestamps and fails with *errors.MissingTimezoneError.
func Filter(series types.CandleSeries, target *time.Location, w Window) (types.CandleSeries, error) {
	if target == nil {
		return types.CandleSeries{}, errors.New(errors.ErrCodeInvalidTimezone, "target timezone is required")
	}

	if err := w.Validate(); err != nil {
		return types.CandleSeries{}, err
	}

	out := types.CandleSeries{
		Symbol:   series.Symbol,
		Location: target,
		Candles:  []types.Candle{},
	}

	if series.IsEmpty() {
		return out, nil
	}

	if !series.HasTimezone() {
		return types.CandleSeries{}, errors.NewMissingTimezoneError(series.Symbol)
	}

	for _, c := range series.Candles {
		local := c.Time.In(target)
		if !w.Contains(Of(local)) {
			continue
		}

		c.Time = local
		out.Candles = append(out.Candles, c)
	}

	return out, nil
}

// Filterer binds a target timezone and window so callers can filter many series with one configuration.
type Filterer struct {
	Location *time.Location
	Window   Window
}

// NewFilterer validates the window and returns a Filterer.
func NewFilterer(loc *time.Location, w Window) (*Filterer, error) {
	if loc == nil {
		return nil, errors.New(errors.ErrCodeInvalidTimezone, "target timezone is required")
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}

	return &Filterer{Location: loc, Window: w}, nil
}

// Filter applies the bound timezone and window to series.
func (f *Filterer) Filter(series types.CandleSeries) (types.CandleSeries, error) {
	return Filter(series, f.Location, f.Window)
}
