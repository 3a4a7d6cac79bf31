package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/batch"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata/provider"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata/writer"
	"github.com/stretchr/testify/suite"
)

type failingWriter struct {
	writer.CandleWriter
	closed bool
}

func (w *failingWriter) Initialize() error { return nil }

func (w *failingWriter) WriteSeries(types.CandleSeries) error { return errors.New("disk full") }

func (w *failingWriter) Close() error {
	w.closed = true
	return nil
}

type ParquetExporterTestSuite struct {
	suite.Suite
	ist *time.Location
}

func TestParquetExporterSuite(t *testing.T) {
	suite.Run(t, new(ParquetExporterTestSuite))
}

func (suite *ParquetExporterTestSuite) SetupTest() {
	suite.ist = time.FixedZone("IST", 19800)
}

func (suite *ParquetExporterTestSuite) TestExportRoundTripsThroughReader() {
	dir := filepath.Join(suite.T().TempDir(), "archive")
	series := types.CandleSeries{
		Symbol:   "TCS.NS",
		Location: suite.ist,
		Candles: []types.Candle{
			{Time: time.Date(2024, 6, 3, 9, 15, 0, 0, suite.ist), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
			{Time: time.Date(2024, 6, 3, 15, 30, 0, 0, suite.ist), Open: 2, High: 3, Low: 1.5, Close: 2.5, Volume: 20},
		},
	}

	report := batch.NewReport(3)
	report.Add(batch.Success{Series: series})
	report.Add(batch.Failure{Symbol: "INFY.NS", Reason: batch.ReasonNoData})
	report.Add(batch.Success{Series: types.CandleSeries{Symbol: "SBIN.NS", Location: suite.ist}})

	paths, err := NewParquetExporter(dir, nil).Export(report)
	suite.Require().NoError(err)
	suite.Equal([]string{marketdata.ArchivePath(dir, "TCS.NS", "parquet")}, paths)

	reader := provider.NewParquetReader(dir, suite.ist, nil)
	replayed, err := reader.Fetch(context.Background(), "TCS.NS", marketdata.LookbackFiveDays, marketdata.IntervalFifteenMinutes)
	suite.Require().NoError(err)
	suite.Require().Len(replayed.Candles, 2)
	suite.True(replayed.Candles[0].Time.Equal(series.Candles[0].Time))
	suite.Equal(2.5, replayed.Candles[1].Close)
}

func (suite *ParquetExporterTestSuite) TestExportWriterError() {
	exporter := NewParquetExporter(suite.T().TempDir(), nil)
	fw := &failingWriter{}
	exporter.newWriter = func(string) writer.CandleWriter { return fw }

	report := batch.NewReport(1)
	report.Add(batch.Success{Series: types.CandleSeries{
		Symbol:   "TCS.NS",
		Location: suite.ist,
		Candles:  []types.Candle{{Time: time.Date(2024, 6, 3, 9, 15, 0, 0, suite.ist)}},
	}})

	_, err := exporter.Export(report)
	suite.Error(err)
	suite.Contains(err.Error(), "disk full")
	suite.True(fw.closed)
}

func (suite *ParquetExporterTestSuite) TestExportNilReport() {
	_, err := NewParquetExporter(suite.T().TempDir(), nil).Export(nil)
	suite.Error(err)
}
