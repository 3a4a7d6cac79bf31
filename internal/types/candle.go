package types

import (
	"sort"
	"time"
)

// Candle is a single OHLCV bar. Candles are values and are never mutated after a provider emits them.
type Candle struct {
	Time   time.Time `csv:"time" json:"time"`
	Open   float64   `csv:"open" json:"open"`
	High   float64   `csv:"high" json:"high"`
	Low    float64   `csv:"low" json:"low"`
	Close  float64   `csv:"close" json:"close"`
	Volume float64   `csv:"volume" json:"volume"`
}

// CandleSeries is the ordered candle history of one symbol.
type CandleSeries struct {
	// Symbol is the provider ticker the candles belong to.
	Symbol string
	// Location is the zone the provider attached to the timestamps.
	// A nil Location means the timestamps are naive wall-clock values with no absolute reference.
	Location *time.Location
	// Candles are ordered by ascending time with no duplicate timestamps.
	Candles []Candle
}

// Len returns the number of candles in the series.
func (s CandleSeries) Len() int {
	return len(s.Candles)
}

// IsEmpty reports whether the series has no candles.
func (s CandleSeries) IsEmpty() bool {
	return len(s.Candles) == 0
}

// HasTimezone reports whether the series timestamps carry an absolute time reference.
func (s CandleSeries) HasTimezone() bool {
	return s.Location != nil
}

// Last returns the trailing n candles, or the whole series when it is shorter.
func (s CandleSeries) Last(n int) []Candle {
	if n <= 0 {
		return []Candle{}
	}

	if n >= len(s.Candles) {
		return s.Candles
	}

	return s.Candles[len(s.Candles)-n:]
}

// Normalize returns a copy of candles sorted by time with duplicate timestamps removed.
// When two candles share a timestamp the later one in the input wins.
func Normalize(candles []Candle) []Candle {
	out := make([]Candle, len(candles))
	copy(out, candles)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	deduped := out[:0]

	for _, c := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(c.Time) {
			deduped[n-1] = c

			continue
		}

		deduped = append(deduped, c)
	}

	return deduped
}
