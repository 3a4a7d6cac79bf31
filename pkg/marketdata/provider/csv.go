package provider

import (
	"context"
	stderrors "errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
)

// csvTimeLayouts are tried in order. Only RFC 3339 carries an offset.
var csvTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type csvRow struct {
	Time   string  `csv:"time"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// CSVReader reads candles from <dataDir>/<symbol>.csv files with a
// time,open,high,low,close,volume header.
//
// Rows whose time carries an offset are absolute. Naive rows take Location when it is set;
// otherwise any naive row makes the whole series naive.
type CSVReader struct {
	dataDir  string
	location *time.Location
	log      *logger.Logger
}

func NewCSVReader(dataDir string, location *time.Location, log *logger.Logger) *CSVReader {
	if log == nil {
		log = logger.NewNop()
	}

	return &CSVReader{
		dataDir:  dataDir,
		location: location,
		log:      log,
	}
}

func (r *CSVReader) Name() string {
	return string(marketdata.ProviderCSV)
}

// Fetch decodes the symbol's file and keeps lookback back from the newest row.
func (r *CSVReader) Fetch(ctx context.Context, symbol string, lookback marketdata.Lookback, _ marketdata.Interval) (types.CandleSeries, error) {
	series := types.CandleSeries{Symbol: symbol, Location: r.location, Candles: []types.Candle{}}
	path := marketdata.ArchivePath(r.dataDir, symbol, "csv")

	if err := ctx.Err(); err != nil {
		return series, errors.WrapProviderError(symbol, "csv read cancelled", err)
	}

	file, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			r.log.Debug("no csv file for symbol", zap.String("symbol", symbol), zap.String("path", path))

			return series, nil
		}

		return series, errors.WrapProviderError(symbol, "failed to open csv file", err).
			WithCode(errors.ErrCodeDataSourceUnavailable)
	}
	defer file.Close()

	var rows []csvRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		if stderrors.Is(err, gocsv.ErrEmptyCSVFile) {
			return series, nil
		}

		return series, errors.WrapProviderError(symbol, "failed to unmarshal csv", err).
			WithCode(errors.ErrCodeMarketDataParseFailed)
	}

	candles := make([]types.Candle, 0, len(rows))
	naive := false

	for i, row := range rows {
		t, absolute, err := parseCSVTime(row.Time)
		if err != nil {
			return series, errors.WrapProviderError(symbol, "invalid time in csv line "+strconv.Itoa(i+2), err).
				WithCode(errors.ErrCodeMarketDataParseFailed)
		}

		switch {
		case absolute && r.location != nil:
			t = t.In(r.location)
		case !absolute:
			t = localize(t, r.location)
			naive = naive || r.location == nil
		}

		candles = append(candles, types.Candle{
			Time:   t,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	if r.location == nil && !naive {
		series.Location = time.UTC
	}

	candles, err = trimToLookback(symbol, types.Normalize(candles), lookback)
	if err != nil {
		return series, err
	}

	series.Candles = candles

	r.log.Debug("read csv file",
		zap.String("symbol", symbol),
		zap.String("path", path),
		zap.Bool("naive", series.Location == nil),
		zap.Int("candles", series.Len()),
	)

	return series, nil
}

// parseCSVTime parses s with the supported layouts and reports whether it carried an offset.
// Naive values are returned with a UTC location holding the wall clock.
func parseCSVTime(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)

	var lastErr error

	for i, layout := range csvTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, i == 0, nil
		}

		lastErr = err
	}

	return time.Time{}, false, lastErr
}
