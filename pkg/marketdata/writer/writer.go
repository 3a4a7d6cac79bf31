package writer

import (
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
)

// CandleWriter defines the interface for writing candles to a destination.
type CandleWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single candle of the given symbol.
	Write(symbol string, candle types.Candle) error
	// WriteSeries persists every candle of a series in order.
	WriteSeries(series types.CandleSeries) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
