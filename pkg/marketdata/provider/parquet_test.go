package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata/writer"
	"github.com/stretchr/testify/suite"
)

type ParquetReaderTestSuite struct {
	suite.Suite
	dataDir string
	ist     *time.Location
}

func TestParquetReaderSuite(t *testing.T) {
	suite.Run(t, new(ParquetReaderTestSuite))
}

func (suite *ParquetReaderTestSuite) SetupTest() {
	suite.dataDir = suite.T().TempDir()
	suite.ist = time.FixedZone("IST", 19800)
}

// archive writes days of 09:15 and 15:30 candles ending on 2024-06-07.
func (suite *ParquetReaderTestSuite) archive(symbol string, days int) {
	series := types.CandleSeries{Symbol: symbol, Location: suite.ist, Candles: []types.Candle{}}
	for d := days - 1; d >= 0; d-- {
		day := time.Date(2024, 6, 7-d, 0, 0, 0, 0, suite.ist)
		series.Candles = append(series.Candles,
			types.Candle{Time: day.Add(9*time.Hour + 15*time.Minute), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
			types.Candle{Time: day.Add(15*time.Hour + 30*time.Minute), Open: 20, High: 21, Low: 19, Close: 20.5, Volume: 200},
		)
	}

	w := writer.NewDuckDBWriter(marketdata.ArchivePath(suite.dataDir, symbol, "parquet"), nil)
	suite.Require().NoError(w.Initialize())
	suite.Require().NoError(w.WriteSeries(series))
	_, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Require().NoError(w.Close())
}

func (suite *ParquetReaderTestSuite) TestName() {
	suite.Equal("parquet", NewParquetReader(suite.dataDir, nil, nil).Name())
}

func (suite *ParquetReaderTestSuite) TestFetchWithTimezone() {
	suite.archive("TCS.NS", 3)
	reader := NewParquetReader(suite.dataDir, suite.ist, nil)

	series, err := reader.Fetch(context.Background(), "TCS.NS", marketdata.LookbackTenDays, marketdata.IntervalFifteenMinutes)
	suite.Require().NoError(err)

	suite.Equal(suite.ist, series.Location)
	suite.Require().Len(series.Candles, 6)
	first := series.Candles[0]
	suite.True(first.Time.Equal(time.Date(2024, 6, 5, 9, 15, 0, 0, suite.ist)))
	suite.Equal(10.0, first.Open)
	suite.Equal(200.0, series.Candles[5].Volume)
}

func (suite *ParquetReaderTestSuite) TestFetchNaiveTimestamps() {
	suite.archive("INFY.NS", 1)
	reader := NewParquetReader(suite.dataDir, nil, nil)

	series, err := reader.Fetch(context.Background(), "INFY.NS", marketdata.LookbackFiveDays, marketdata.IntervalFifteenMinutes)
	suite.Require().NoError(err)

	suite.False(series.HasTimezone())
	suite.Require().Len(series.Candles, 2)
	suite.Equal(9, series.Candles[0].Time.Hour())
	suite.Equal(15, series.Candles[0].Time.Minute())
}

func (suite *ParquetReaderTestSuite) TestFetchAnchorsLookbackOnNewestCandle() {
	suite.archive("SBIN.NS", 5)
	reader := NewParquetReader(suite.dataDir, suite.ist, nil)

	series, err := reader.Fetch(context.Background(), "SBIN.NS", marketdata.LookbackOneDay, marketdata.IntervalFifteenMinutes)
	suite.Require().NoError(err)

	// Newest candle is 2024-06-07 15:30, so one day back keeps 06-06 15:30 onwards.
	suite.Require().Len(series.Candles, 3)
	suite.True(series.Candles[0].Time.Equal(time.Date(2024, 6, 6, 15, 30, 0, 0, suite.ist)))
}

func (suite *ParquetReaderTestSuite) TestFetchMissingFileIsEmpty() {
	reader := NewParquetReader(suite.dataDir, suite.ist, nil)

	series, err := reader.Fetch(context.Background(), "UNKNOWN.NS", marketdata.LookbackFiveDays, marketdata.IntervalFifteenMinutes)
	suite.NoError(err)
	suite.True(series.IsEmpty())
}

func (suite *ParquetReaderTestSuite) TestFetchCorruptFile() {
	path := marketdata.ArchivePath(suite.dataDir, "ITC.NS", "parquet")
	suite.Require().NoError(os.WriteFile(path, []byte("not parquet"), 0o600))
	reader := NewParquetReader(suite.dataDir, suite.ist, nil)

	_, err := reader.Fetch(context.Background(), "ITC.NS", marketdata.LookbackFiveDays, marketdata.IntervalFifteenMinutes)
	suite.Error(err)
	suite.True(errors.IsProviderError(err))
	suite.True(errors.HasCode(err, errors.ErrCodeQueryFailed))
}

func (suite *ParquetReaderTestSuite) TestFetchInvalidLookback() {
	suite.archive("LTIM.NS", 1)
	reader := NewParquetReader(filepath.Clean(suite.dataDir), suite.ist, nil)

	_, err := reader.Fetch(context.Background(), "LTIM.NS", marketdata.Lookback("2w"), marketdata.IntervalFifteenMinutes)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidLookback))
}
