package batch

import (
	"encoding/json"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
)

// Entry pairs a requested symbol with its result.
type Entry struct {
	Symbol string
	Result Result
}

// Report holds one result per requested symbol in request order.
type Report struct {
	entries []Entry
	index   map[string]int
}

// NewReport creates an empty report with room for size entries.
func NewReport(size int) *Report {
	return &Report{
		entries: make([]Entry, 0, size),
		index:   make(map[string]int, size),
	}
}

// Add appends a result. A symbol added twice keeps its first position and takes the newer result.
func (r *Report) Add(result Result) {
	symbol := result.symbol()

	if i, ok := r.index[symbol]; ok {
		r.entries[i].Result = result

		return
	}

	r.index[symbol] = len(r.entries)
	r.entries = append(r.entries, Entry{Symbol: symbol, Result: result})
}

// Get returns the result recorded for symbol.
func (r *Report) Get(symbol string) optional.Option[Result] {
	i, ok := r.index[symbol]
	if !ok {
		return optional.None[Result]()
	}

	return optional.Some(r.entries[i].Result)
}

func (r *Report) Len() int {
	return len(r.entries)
}

// Symbols returns the symbols in request order.
func (r *Report) Symbols() []string {
	symbols := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		symbols = append(symbols, e.Symbol)
	}

	return symbols
}

// Entries returns a copy of the entries in request order.
func (r *Report) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)

	return entries
}

// Successes returns the successful results in request order.
func (r *Report) Successes() []Success {
	successes := make([]Success, 0, len(r.entries))

	for _, e := range r.entries {
		if s, ok := e.Result.(Success); ok {
			successes = append(successes, s)
		}
	}

	return successes
}

// Failures returns the failed results in request order.
func (r *Report) Failures() []Failure {
	failures := make([]Failure, 0)

	for _, e := range r.entries {
		if f, ok := e.Result.(Failure); ok {
			failures = append(failures, f)
		}
	}

	return failures
}

// Series returns the filtered series of a successful symbol.
func (r *Report) Series(symbol string) optional.Option[types.CandleSeries] {
	result := r.Get(symbol)
	if result.IsNone() {
		return optional.None[types.CandleSeries]()
	}

	s, ok := result.Unwrap().(Success)
	if !ok {
		return optional.None[types.CandleSeries]()
	}

	return optional.Some(s.Series)
}

type entryJSON struct {
	Symbol   string         `json:"symbol"`
	Status   string         `json:"status"`
	Timezone string         `json:"timezone,omitempty"`
	Candles  []types.Candle `json:"candles,omitempty"`
	Reason   string         `json:"reason,omitempty"`
}

// MarshalJSON renders the report as an ordered list of {symbol, status, ...} objects.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := make([]entryJSON, 0, len(r.entries))

	for _, e := range r.entries {
		switch res := e.Result.(type) {
		case Success:
			entry := entryJSON{Symbol: e.Symbol, Status: "success", Candles: res.Series.Candles}
			if res.Series.Location != nil {
				entry.Timezone = res.Series.Location.String()
			}

			out = append(out, entry)
		case Failure:
			out = append(out, entryJSON{Symbol: e.Symbol, Status: "failure", Reason: res.Reason})
		}
	}

	return json.Marshal(out)
}
