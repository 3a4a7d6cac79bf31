package session

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/stretchr/testify/suite"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

type FilterTestSuite struct {
	suite.Suite
	window Window
}

func TestFilterSuite(t *testing.T) {
	suite.Run(t, new(FilterTestSuite))
}

func (suite *FilterTestSuite) SetupTest() {
	suite.window = MustParseWindow("09:15", "15:30")
}

func istCandle(hour, minute int, close float64) types.Candle {
	return types.Candle{
		Time:   time.Date(2024, 6, 3, hour, minute, 0, 0, ist),
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: 100,
	}
}

func (suite *FilterTestSuite) TestBoundaryScenario() {
	series := types.CandleSeries{
		Symbol:   "RELIANCE.NS",
		Location: ist,
		Candles: []types.Candle{
			istCandle(9, 14, 1),
			istCandle(9, 15, 2),
			istCandle(12, 0, 3),
			istCandle(15, 30, 4),
			istCandle(15, 31, 5),
		},
	}

	out, err := Filter(series, ist, suite.window)
	suite.Require().NoError(err)
	suite.Equal("RELIANCE.NS", out.Symbol)
	suite.Require().Len(out.Candles, 3)
	suite.Equal("09:15", out.Candles[0].Time.Format("15:04"))
	suite.Equal("12:00", out.Candles[1].Time.Format("15:04"))
	suite.Equal("15:30", out.Candles[2].Time.Format("15:04"))
}

func (suite *FilterTestSuite) TestConvertsToTargetTimezone() {
	// 03:45 UTC is 09:15 IST, 10:00 UTC is 15:30 IST, 10:15 UTC is 15:45 IST.
	series := types.CandleSeries{
		Symbol:   "TCS.NS",
		Location: time.UTC,
		Candles: []types.Candle{
			{Time: time.Date(2024, 6, 3, 3, 30, 0, 0, time.UTC), Close: 1},
			{Time: time.Date(2024, 6, 3, 3, 45, 0, 0, time.UTC), Close: 2},
			{Time: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC), Close: 3},
			{Time: time.Date(2024, 6, 3, 10, 15, 0, 0, time.UTC), Close: 4},
		},
	}

	out, err := Filter(series, ist, suite.window)
	suite.Require().NoError(err)
	suite.Require().Len(out.Candles, 2)
	suite.Equal(2.0, out.Candles[0].Close)
	suite.Equal(3.0, out.Candles[1].Close)
	suite.Equal(ist, out.Location)
	suite.Equal(ist, out.Candles[0].Time.Location())
	suite.True(out.Candles[0].Time.Equal(series.Candles[1].Time))
}

func (suite *FilterTestSuite) TestEmptySeries() {
	out, err := Filter(types.CandleSeries{Symbol: "ITC.NS", Location: ist}, ist, suite.window)
	suite.NoError(err)
	suite.NotNil(out.Candles)
	suite.Empty(out.Candles)
}

func (suite *FilterTestSuite) TestEmptySeriesWithoutTimezone() {
	out, err := Filter(types.CandleSeries{Symbol: "ITC.NS"}, ist, suite.window)
	suite.NoError(err)
	suite.Empty(out.Candles)
}

func (suite *FilterTestSuite) TestNoCandleInWindow() {
	series := types.CandleSeries{
		Symbol:   "SBIN.NS",
		Location: ist,
		Candles:  []types.Candle{istCandle(8, 0, 1), istCandle(16, 0, 2)},
	}

	out, err := Filter(series, ist, suite.window)
	suite.NoError(err)
	suite.Empty(out.Candles)
}

func (suite *FilterTestSuite) TestMissingTimezone() {
	series := types.CandleSeries{
		Symbol:  "INFY.NS",
		Candles: []types.Candle{istCandle(10, 0, 1)},
	}

	_, err := Filter(series, ist, suite.window)
	suite.Error(err)
	suite.True(errors.IsMissingTimezoneError(err))
	suite.Equal(errors.ErrCodeMissingTimezone, errors.GetCode(err))
}

func (suite *FilterTestSuite) TestNilTarget() {
	_, err := Filter(types.CandleSeries{Location: ist}, nil, suite.window)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimezone))
}

func (suite *FilterTestSuite) TestInvalidWindow() {
	_, err := Filter(types.CandleSeries{Location: ist}, ist, Window{Start: TimeOfDay(10 * time.Hour), End: TimeOfDay(9 * time.Hour)})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSessionWindow))
}

func (suite *FilterTestSuite) TestInputNotModified() {
	series := types.CandleSeries{
		Symbol:   "HDFCBANK.NS",
		Location: time.UTC,
		Candles:  []types.Candle{{Time: time.Date(2024, 6, 3, 4, 0, 0, 0, time.UTC), Close: 1}},
	}

	_, err := Filter(series, ist, suite.window)
	suite.Require().NoError(err)
	suite.Equal(time.UTC, series.Candles[0].Time.Location())
}

// Every output element must come from the input, in input order, and fall inside the window.
func (suite *FilterTestSuite) TestSubsequenceProperty() {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		start := TimeOfDay(time.Duration(rng.Intn(12*60)) * time.Minute)
		end := start + TimeOfDay(time.Duration(rng.Intn(12*60))*time.Minute)
		w, err := NewWindow(start, end)
		suite.Require().NoError(err)

		series := types.CandleSeries{Symbol: "X", Location: time.UTC}
		ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		for i := 0; i < 200; i++ {
			ts = ts.Add(time.Duration(1+rng.Intn(45)) * time.Minute)
			series.Candles = append(series.Candles, types.Candle{Time: ts, Close: float64(i)})
		}

		out, err := Filter(series, ist, w)
		suite.Require().NoError(err)

		next := 0

		for _, c := range out.Candles {
			suite.True(w.Contains(Of(c.Time)), "candle %s outside %s", c.Time, w)

			found := false

			for next < len(series.Candles) {
				candidate := series.Candles[next]
				next++

				if candidate.Time.Equal(c.Time) && candidate.Close == c.Close {
					found = true

					break
				}
			}

			suite.True(found, "candle %s is not a subsequence element", c.Time)
		}
	}
}

func (suite *FilterTestSuite) TestFilterer() {
	f, err := NewFilterer(ist, suite.window)
	suite.Require().NoError(err)

	out, err := f.Filter(types.CandleSeries{Symbol: "LTIM.NS", Location: ist, Candles: []types.Candle{istCandle(9, 15, 1)}})
	suite.NoError(err)
	suite.Len(out.Candles, 1)

	_, err = NewFilterer(nil, suite.window)
	suite.Error(err)

	_, err = NewFilterer(ist, Window{Start: TimeOfDay(2 * time.Hour), End: TimeOfDay(time.Hour)})
	suite.Error(err)
}
