package marketdata

import (
	"fmt"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
)

// Interval is the granularity each candle represents, using the provider's notation (e.g. "15m").
type Interval string

const (
	IntervalOneMinute      Interval = "1m"
	IntervalTwoMinutes     Interval = "2m"
	IntervalFiveMinutes    Interval = "5m"
	IntervalFifteenMinutes Interval = "15m"
	IntervalThirtyMinutes  Interval = "30m"
	IntervalSixtyMinutes   Interval = "60m"
	IntervalNinetyMinutes  Interval = "90m"
	IntervalOneHour        Interval = "1h"
	IntervalOneDay         Interval = "1d"
	IntervalFiveDays       Interval = "5d"
	IntervalOneWeek        Interval = "1wk"
	IntervalOneMonth       Interval = "1mo"
	IntervalThreeMonths    Interval = "3mo"
)

// Intervals lists every supported interval, shortest first.
var Intervals = []Interval{
	IntervalOneMinute,
	IntervalTwoMinutes,
	IntervalFiveMinutes,
	IntervalFifteenMinutes,
	IntervalThirtyMinutes,
	IntervalSixtyMinutes,
	IntervalNinetyMinutes,
	IntervalOneHour,
	IntervalOneDay,
	IntervalFiveDays,
	IntervalOneWeek,
	IntervalOneMonth,
	IntervalThreeMonths,
}

// ParseInterval validates s against the supported intervals.
func ParseInterval(s string) (Interval, error) {
	for _, i := range Intervals {
		if string(i) == s {
			return i, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", s)
}

func (i Interval) Multiplier() int {
	switch i {
	case IntervalOneMinute:
		return 1
	case IntervalTwoMinutes:
		return 2
	case IntervalFiveMinutes:
		return 5
	case IntervalFifteenMinutes:
		return 15
	case IntervalThirtyMinutes:
		return 30
	case IntervalSixtyMinutes:
		return 60
	case IntervalNinetyMinutes:
		return 90
	case IntervalOneHour:
		return 1
	case IntervalOneDay:
		return 1
	case IntervalFiveDays:
		return 5
	case IntervalOneWeek:
		return 1
	case IntervalOneMonth:
		return 1
	case IntervalThreeMonths:
		return 3
	default:
		return 1
	}
}

// Timespan maps the interval onto the polygon aggregate timespan used together with Multiplier.
func (i Interval) Timespan() models.Timespan {
	switch i {
	case IntervalOneMinute, IntervalTwoMinutes, IntervalFiveMinutes, IntervalFifteenMinutes,
		IntervalThirtyMinutes, IntervalSixtyMinutes, IntervalNinetyMinutes:
		return models.Minute
	case IntervalOneHour:
		return models.Hour
	case IntervalOneDay, IntervalFiveDays:
		return models.Day
	case IntervalOneWeek:
		return models.Week
	case IntervalOneMonth, IntervalThreeMonths:
		return models.Month
	default:
		return models.Day
	}
}

// BinanceInterval converts the interval into Binance kline notation.
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func (i Interval) BinanceInterval() (string, error) {
	switch i {
	case IntervalOneMinute, IntervalFiveMinutes, IntervalFifteenMinutes, IntervalThirtyMinutes:
		return string(i), nil
	case IntervalSixtyMinutes, IntervalOneHour:
		return "1h", nil
	case IntervalOneDay:
		return "1d", nil
	case IntervalOneWeek:
		return "1w", nil
	case IntervalOneMonth:
		return "1M", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval for Binance: %s", i)
	}
}

// Duration returns the approximate length of one candle. Months count as 30 days.
func (i Interval) Duration() time.Duration {
	switch i.Timespan() {
	case models.Minute:
		return time.Duration(i.Multiplier()) * time.Minute
	case models.Hour:
		return time.Duration(i.Multiplier()) * time.Hour
	case models.Week:
		return time.Duration(i.Multiplier()) * 7 * 24 * time.Hour
	case models.Month:
		return time.Duration(i.Multiplier()) * 30 * 24 * time.Hour
	default:
		return time.Duration(i.Multiplier()) * 24 * time.Hour
	}
}

// IsIntraday reports whether candles are shorter than a day, the only case where a session window is meaningful.
func (i Interval) IsIntraday() bool {
	return i.Duration() < 24*time.Hour
}

// Lookback is how far back to request history, e.g. "5d" or "1mo".
type Lookback string

const (
	LookbackOneDay      Lookback = "1d"
	LookbackFiveDays    Lookback = "5d"
	LookbackTenDays     Lookback = "10d"
	LookbackOneMonth    Lookback = "1mo"
	LookbackThreeMonths Lookback = "3mo"
	LookbackSixMonths   Lookback = "6mo"
	LookbackOneYear     Lookback = "1y"
	LookbackTwoYears    Lookback = "2y"
	LookbackFiveYears   Lookback = "5y"
	LookbackTenYears    Lookback = "10y"
	LookbackYearToDate  Lookback = "ytd"
	LookbackMax         Lookback = "max"
)

// Lookbacks lists every supported lookback period.
var Lookbacks = []Lookback{
	LookbackOneDay,
	LookbackFiveDays,
	LookbackTenDays,
	LookbackOneMonth,
	LookbackThreeMonths,
	LookbackSixMonths,
	LookbackOneYear,
	LookbackTwoYears,
	LookbackFiveYears,
	LookbackTenYears,
	LookbackYearToDate,
	LookbackMax,
}

// ParseLookback validates s against the supported lookback periods.
func ParseLookback(s string) (Lookback, error) {
	for _, l := range Lookbacks {
		if string(l) == s {
			return l, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidLookback, "unsupported lookback period %q", s)
}

// Start returns the beginning of the lookback window ending at now.
// Day based periods count calendar days, "ytd" starts on January 1st of now's year and
// "max" goes back to 1970.
func (l Lookback) Start(now time.Time) (time.Time, error) {
	switch l {
	case LookbackOneDay:
		return now.AddDate(0, 0, -1), nil
	case LookbackFiveDays:
		return now.AddDate(0, 0, -5), nil
	case LookbackTenDays:
		return now.AddDate(0, 0, -10), nil
	case LookbackOneMonth:
		return now.AddDate(0, -1, 0), nil
	case LookbackThreeMonths:
		return now.AddDate(0, -3, 0), nil
	case LookbackSixMonths:
		return now.AddDate(0, -6, 0), nil
	case LookbackOneYear:
		return now.AddDate(-1, 0, 0), nil
	case LookbackTwoYears:
		return now.AddDate(-2, 0, 0), nil
	case LookbackFiveYears:
		return now.AddDate(-5, 0, 0), nil
	case LookbackTenYears:
		return now.AddDate(-10, 0, 0), nil
	case LookbackYearToDate:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), nil
	case LookbackMax:
		return time.Unix(0, 0).In(now.Location()), nil
	default:
		return time.Time{}, errors.Newf(errors.ErrCodeInvalidLookback, "unsupported lookback period %q", string(l))
	}
}

// Range returns [start, now] for the lookback.
func (l Lookback) Range(now time.Time) (time.Time, time.Time, error) {
	start, err := l.Start(now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, now, nil
}

func (l Lookback) String() string {
	return string(l)
}

func (i Interval) String() string {
	return string(i)
}

// Describe renders a human readable label, e.g. "15m candles over 5d".
func Describe(l Lookback, i Interval) string {
	return fmt.Sprintf("%s candles over %s", i, l)
}
