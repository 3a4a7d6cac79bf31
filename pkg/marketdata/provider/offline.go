package provider

import (
	"time"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
)

// localize reinterprets wall-clock times read from a zone-less file.
// With a nil loc the times stay naive and the caller must leave the series location unset.
func localize(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}

	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// trimToLookback keeps the candles within lookback of the newest one.
// Archives are replayed, so the window is anchored on the data rather than on the clock.
func trimToLookback(symbol string, candles []types.Candle, lookback marketdata.Lookback) ([]types.Candle, error) {
	if len(candles) == 0 {
		return candles, nil
	}

	start, err := lookback.Start(candles[len(candles)-1].Time)
	if err != nil {
		return nil, errors.WrapProviderError(symbol, "invalid lookback", err).WithCode(errors.ErrCodeInvalidLookback)
	}

	for i, c := range candles {
		if !c.Time.Before(start) {
			return candles[i:], nil
		}
	}

	return candles[:0], nil
}
