package export

import (
	"testing"
	"time"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/stretchr/testify/suite"
)

type TableTestSuite struct {
	suite.Suite
}

func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableTestSuite))
}

func (suite *TableTestSuite) TestTableFormatsInSeriesLocation() {
	ist := time.FixedZone("IST", 19800)
	series := types.CandleSeries{
		Symbol:   "TCS.NS",
		Location: ist,
		Candles: []types.Candle{
			{Time: time.Date(2024, 6, 3, 3, 45, 0, 0, time.UTC), Open: 3800.125, High: 3810.994, Low: 3795.005, Close: 3805.5, Volume: 12000},
		},
	}

	rows := Table(series)
	suite.Require().Len(rows, 1)
	suite.Equal("2024-06-03 09:15", rows[0].Datetime)
	suite.Equal(3800.13, rows[0].Open)
	suite.Equal(3810.99, rows[0].High)
	suite.Equal(3795.01, rows[0].Low)
	suite.Equal(3805.5, rows[0].Close)
	suite.Equal(12000.0, rows[0].Volume)

	suite.Equal([]string{"2024-06-03 09:15", "3800.13", "3810.99", "3795.01", "3805.5", "12000"}, rows[0].Strings())
	suite.Equal([]any{"2024-06-03 09:15", 3800.13, 3810.99, 3795.01, 3805.5, 12000.0}, rows[0].Cells())
}

func (suite *TableTestSuite) TestTableEmptySeries() {
	suite.Empty(Table(types.CandleSeries{Symbol: "X"}))
}

func (suite *TableTestSuite) TestTableNaiveSeriesKeepsClock() {
	series := types.CandleSeries{
		Symbol:  "X",
		Candles: []types.Candle{{Time: time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)}},
	}

	suite.Equal("2024-06-03 09:15", Table(series)[0].Datetime)
}

func (suite *TableTestSuite) TestRoundHalfAwayFromZero() {
	suite.Equal(1.01, Round(1.005))
	suite.Equal(2.68, Round(2.675))
	suite.Equal(-1.01, Round(-1.005))
	suite.Equal(0.0, Round(0.001))
}

func (suite *TableTestSuite) TestHeader() {
	suite.Equal([]string{"Datetime", "Open", "High", "Low", "Close", "Volume"}, Header)
}
