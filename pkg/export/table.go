package export

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
)

// DatetimeLayout is how candle times are rendered in tables and sheets.
const DatetimeLayout = "2006-01-02 15:04"

// PricePlaces is the number of decimals kept for prices and volume.
const PricePlaces = 2

// Header is the first row of every exported table.
var Header = []string{"Datetime", "Open", "High", "Low", "Close", "Volume"}

// Row is one rendered candle.
type Row struct {
	Datetime string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Cells returns the row as spreadsheet cell values in Header order.
func (r Row) Cells() []any {
	return []any{r.Datetime, r.Open, r.High, r.Low, r.Close, r.Volume}
}

// Strings returns the row as display text in Header order.
func (r Row) Strings() []string {
	return []string{
		r.Datetime,
		FormatNumber(r.Open),
		FormatNumber(r.High),
		FormatNumber(r.Low),
		FormatNumber(r.Close),
		FormatNumber(r.Volume),
	}
}

// Table renders series as rows. Times are shown in the series location and
// numbers are rounded half away from zero to PricePlaces decimals.
func Table(series types.CandleSeries) []Row {
	rows := make([]Row, 0, len(series.Candles))

	for _, c := range series.Candles {
		t := c.Time
		if series.Location != nil {
			t = t.In(series.Location)
		}

		rows = append(rows, Row{
			Datetime: t.Format(DatetimeLayout),
			Open:     Round(c.Open),
			High:     Round(c.High),
			Low:      Round(c.Low),
			Close:    Round(c.Close),
			Volume:   Round(c.Volume),
		})
	}

	return rows
}

// Round rounds v half away from zero to PricePlaces decimals.
func Round(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(PricePlaces).Float64()

	return f
}

// FormatNumber renders v with the fewest digits that round-trip.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
