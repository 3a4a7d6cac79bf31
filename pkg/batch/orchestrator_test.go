package batch

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/mocks"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
	"github.com/rxtech-lab/ohlc-tracker/pkg/session"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type progressCall struct {
	completed int
	total     int
}

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	provider *mocks.MockProvider
	ist      *time.Location
	cfg      RunConfig
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (suite *OrchestratorTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.provider = mocks.NewMockProvider(suite.ctrl)
	suite.provider.EXPECT().Name().Return("mock").AnyTimes()
	suite.ist = time.FixedZone("IST", 19800)
	suite.cfg = RunConfig{Location: suite.ist, Window: session.MustParseWindow("09:15", "15:30")}
}

func (suite *OrchestratorTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

// seriesAt builds a UTC series whose candles fall at the given IST wall-clock times on 2024-06-03.
func (suite *OrchestratorTestSuite) seriesAt(symbol string, clock ...string) types.CandleSeries {
	series := types.CandleSeries{Symbol: symbol, Location: time.UTC, Candles: []types.Candle{}}
	for i, c := range clock {
		t, err := time.ParseInLocation("2006-01-02 15:04", "2024-06-03 "+c, suite.ist)
		suite.Require().NoError(err)
		series.Candles = append(series.Candles, types.Candle{Time: t.UTC(), Open: float64(i), High: float64(i), Low: float64(i), Close: float64(i), Volume: 1})
	}

	return series
}

func (suite *OrchestratorTestSuite) requests(symbols ...string) []marketdata.FetchRequest {
	return marketdata.NewRequests(symbols, marketdata.LookbackFiveDays, marketdata.IntervalFifteenMinutes)
}

func (suite *OrchestratorTestSuite) recordProgress() (*[]progressCall, Option) {
	calls := &[]progressCall{}
	var mu sync.Mutex

	return calls, WithProgress(func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		*calls = append(*calls, progressCall{completed, total})
	})
}

func (suite *OrchestratorTestSuite) TestMixedOutcomes() {
	gomock.InOrder(
		suite.provider.EXPECT().Fetch(gomock.Any(), "A", marketdata.LookbackFiveDays, marketdata.IntervalFifteenMinutes).
			Return(suite.seriesAt("A", "09:30", "10:00"), nil),
		suite.provider.EXPECT().Fetch(gomock.Any(), "B", marketdata.LookbackFiveDays, marketdata.IntervalFifteenMinutes).
			Return(types.CandleSeries{}, errors.NewProviderError("B", "rate limited")),
		suite.provider.EXPECT().Fetch(gomock.Any(), "C", marketdata.LookbackFiveDays, marketdata.IntervalFifteenMinutes).
			Return(suite.seriesAt("C", "11:00"), nil),
	)

	calls, progress := suite.recordProgress()

	report, err := Run(context.Background(), suite.requests("A", "B", "C"), suite.cfg, suite.provider, progress)
	suite.Require().NoError(err)

	suite.Equal([]string{"A", "B", "C"}, report.Symbols())
	suite.Equal(3, report.Len())

	a := report.Get("A")
	suite.Require().True(a.IsSome())
	suite.True(a.Unwrap().Succeeded())
	suite.Len(a.Unwrap().(Success).Series.Candles, 2)

	b := report.Get("B")
	suite.Require().True(b.IsSome())
	failure, ok := b.Unwrap().(Failure)
	suite.Require().True(ok)
	suite.Equal("B", failure.Symbol)
	suite.Equal("rate limited", failure.Reason)
	suite.True(errors.IsProviderError(failure.Err))

	c := report.Get("C")
	suite.Require().True(c.IsSome())
	suite.True(c.Unwrap().Succeeded())

	suite.Equal([]progressCall{{1, 3}, {2, 3}, {3, 3}}, *calls)
}

func (suite *OrchestratorTestSuite) TestEmptyRequests() {
	calls, progress := suite.recordProgress()

	report, err := Run(context.Background(), []marketdata.FetchRequest{}, suite.cfg, suite.provider, progress)
	suite.Require().NoError(err)

	suite.Equal(0, report.Len())
	suite.Empty(report.Symbols())
	suite.Empty(*calls)
}

func (suite *OrchestratorTestSuite) TestEmptySeriesIsNoDataFailure() {
	suite.provider.EXPECT().Fetch(gomock.Any(), "X", gomock.Any(), gomock.Any()).
		Return(types.CandleSeries{Symbol: "X", Location: time.UTC, Candles: []types.Candle{}}, nil)

	report, err := Run(context.Background(), suite.requests("X"), suite.cfg, suite.provider)
	suite.Require().NoError(err)

	result := report.Get("X")
	suite.Require().True(result.IsSome())

	failure, ok := result.Unwrap().(Failure)
	suite.Require().True(ok)
	suite.Equal(ReasonNoData, failure.Reason)
	suite.Equal("no data returned", failure.Reason)
	suite.NoError(failure.Err)
}

func (suite *OrchestratorTestSuite) TestWindowFiltering() {
	suite.provider.EXPECT().Fetch(gomock.Any(), "TCS.NS", gomock.Any(), gomock.Any()).
		Return(suite.seriesAt("TCS.NS", "09:14", "09:15", "12:00", "15:30", "15:31"), nil)

	report, err := Run(context.Background(), suite.requests("TCS.NS"), suite.cfg, suite.provider)
	suite.Require().NoError(err)

	series := report.Series("TCS.NS")
	suite.Require().True(series.IsSome())

	got := make([]string, 0)
	for _, c := range series.Unwrap().Candles {
		got = append(got, c.Time.Format("15:04"))
		suite.Equal(suite.ist, c.Time.Location())
	}

	suite.Equal([]string{"09:15", "12:00", "15:30"}, got)
	suite.Equal(suite.ist, series.Unwrap().Location)
}

func (suite *OrchestratorTestSuite) TestAllCandlesOutsideWindowIsEmptySuccess() {
	suite.provider.EXPECT().Fetch(gomock.Any(), "TCS.NS", gomock.Any(), gomock.Any()).
		Return(suite.seriesAt("TCS.NS", "08:00", "16:00"), nil)

	report, err := Run(context.Background(), suite.requests("TCS.NS"), suite.cfg, suite.provider)
	suite.Require().NoError(err)

	result := report.Get("TCS.NS").Unwrap()
	success, ok := result.(Success)
	suite.Require().True(ok)
	suite.True(success.Series.IsEmpty())
}

func (suite *OrchestratorTestSuite) TestMissingTimezoneIsFailure() {
	naive := suite.seriesAt("INFY.NS", "10:00")
	naive.Location = nil

	suite.provider.EXPECT().Fetch(gomock.Any(), "INFY.NS", gomock.Any(), gomock.Any()).Return(naive, nil)

	report, err := Run(context.Background(), suite.requests("INFY.NS"), suite.cfg, suite.provider)
	suite.Require().NoError(err)

	failure, ok := report.Get("INFY.NS").Unwrap().(Failure)
	suite.Require().True(ok)
	suite.True(errors.IsMissingTimezoneError(failure.Err))
	suite.Contains(failure.Reason, "no timezone information")
}

func (suite *OrchestratorTestSuite) TestNonProviderErrorIsFailure() {
	suite.provider.EXPECT().Fetch(gomock.Any(), "SBIN.NS", gomock.Any(), gomock.Any()).
		Return(types.CandleSeries{}, stderrors.New("connection reset by peer"))

	report, err := Run(context.Background(), suite.requests("SBIN.NS"), suite.cfg, suite.provider)
	suite.Require().NoError(err)

	failure, ok := report.Get("SBIN.NS").Unwrap().(Failure)
	suite.Require().True(ok)
	suite.Equal("connection reset by peer", failure.Reason)
}

func (suite *OrchestratorTestSuite) TestSymbolKeyedByRequest() {
	returned := suite.seriesAt("tcs.ns", "10:00")
	suite.provider.EXPECT().Fetch(gomock.Any(), "TCS.NS", gomock.Any(), gomock.Any()).Return(returned, nil)

	report, err := Run(context.Background(), suite.requests("TCS.NS"), suite.cfg, suite.provider)
	suite.Require().NoError(err)

	suite.Equal("TCS.NS", report.Series("TCS.NS").Unwrap().Symbol)
}

func (suite *OrchestratorTestSuite) TestInvalidRequestsRejectedBeforeFetch() {
	calls, progress := suite.recordProgress()

	_, err := Run(context.Background(), suite.requests("TCS.NS", "BAD SYMBOL"), suite.cfg, suite.provider, progress)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	suite.Empty(*calls)

	_, err = Run(context.Background(), suite.requests("TCS.NS", "TCS.NS"), suite.cfg, suite.provider)
	suite.Error(err)
	suite.Contains(err.Error(), "duplicate symbol")
}

func (suite *OrchestratorTestSuite) TestInvalidConfig() {
	_, err := Run(context.Background(), suite.requests("TCS.NS"), RunConfig{Location: nil, Window: suite.cfg.Window}, suite.provider)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimezone))

	inverted := session.Window{Start: suite.cfg.Window.End, End: suite.cfg.Window.Start}
	_, err = Run(context.Background(), suite.requests("TCS.NS"), RunConfig{Location: suite.ist, Window: inverted}, suite.provider)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSessionWindow))

	_, err = Run(context.Background(), suite.requests("TCS.NS"), suite.cfg, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func (suite *OrchestratorTestSuite) TestCancelledContextFailsRemaining() {
	ctx, cancel := context.WithCancel(context.Background())

	suite.provider.EXPECT().Fetch(gomock.Any(), "A", gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, marketdata.Lookback, marketdata.Interval) (types.CandleSeries, error) {
			cancel()

			return suite.seriesAt("A", "10:00"), nil
		})

	calls, progress := suite.recordProgress()

	report, err := Run(ctx, suite.requests("A", "B"), suite.cfg, suite.provider, progress)
	suite.Require().NoError(err)

	suite.True(report.Get("A").Unwrap().Succeeded())
	failure, ok := report.Get("B").Unwrap().(Failure)
	suite.Require().True(ok)
	suite.ErrorIs(failure.Err, context.Canceled)
	suite.Len(*calls, 2)
}

func (suite *OrchestratorTestSuite) TestConcurrentRunKeepsOrderAndProgress() {
	symbols := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		symbols = append(symbols, fmt.Sprintf("SYM%02d.NS", i))
	}

	var inFlight, maxInFlight int32

	suite.provider.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, symbol string, _ marketdata.Lookback, _ marketdata.Interval) (types.CandleSeries, error) {
			n := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)

			for {
				m := atomic.LoadInt32(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
					break
				}
			}

			time.Sleep(5 * time.Millisecond)

			if symbol == "SYM07.NS" {
				return types.CandleSeries{}, errors.NewProviderError(symbol, "rate limited")
			}

			return suite.seriesAt(symbol, "10:00"), nil
		}).Times(len(symbols))

	calls, progress := suite.recordProgress()

	report, err := Run(context.Background(), suite.requests(symbols...), suite.cfg, suite.provider,
		progress, WithConcurrency(4))
	suite.Require().NoError(err)

	suite.Equal(symbols, report.Symbols())
	suite.Len(report.Successes(), 19)
	suite.Len(report.Failures(), 1)
	suite.Equal("SYM07.NS", report.Failures()[0].Symbol)
	suite.LessOrEqual(atomic.LoadInt32(&maxInFlight), int32(4))

	suite.Require().Len(*calls, len(symbols))
	for i, call := range *calls {
		suite.Equal(i+1, call.completed)
		suite.Equal(len(symbols), call.total)
	}
}
