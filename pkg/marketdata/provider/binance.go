package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
)

// binancePageSize is the number of klines Binance returns per request by default.
const binancePageSize = 500

// BinanceKlinesService is the subset of the klines service used by BinanceClient.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the Binance client used by BinanceClient.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service.Interval(interval)

	return w
}

func (w *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service.StartTime(startTime)

	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

// BinanceClient fetches klines from the public Binance spot API.
type BinanceClient struct {
	apiClient BinanceAPIClient
	now       func() time.Time
	log       *logger.Logger
}

func NewBinanceClient() *BinanceClient {
	return NewBinanceClientWithAPI(&binanceClientWrapper{client: binance.NewClient("", "")})
}

// NewBinanceClientWithAPI creates a BinanceClient backed by the given API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		now:       time.Now,
		log:       logger.NewNop(),
	}
}

func (c *BinanceClient) Name() string {
	return string(marketdata.ProviderBinance)
}

// Fetch pages through the klines between now-lookback and now.
// Kline open times are epoch milliseconds, so the series is returned in UTC.
func (c *BinanceClient) Fetch(ctx context.Context, symbol string, lookback marketdata.Lookback, interval marketdata.Interval) (types.CandleSeries, error) {
	series := types.CandleSeries{Symbol: symbol, Location: time.UTC, Candles: []types.Candle{}}

	binanceInterval, err := interval.BinanceInterval()
	if err != nil {
		return series, errors.WrapProviderError(symbol, "failed to convert interval to Binance interval", err).
			WithCode(errors.ErrCodeInvalidInterval)
	}

	from, to, err := windowRange(symbol, lookback, c.now())
	if err != nil {
		return series, err
	}

	endTimeMillis := to.UnixMilli()
	currentStartTime := from.UnixMilli()
	candles := make([]types.Candle, 0)

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(symbol).
			Interval(binanceInterval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return series, errors.WrapProviderError(symbol, "failed to fetch klines from Binance", err)
		}

		candles = append(candles, convertKlines(klines)...)

		// A short page is the last one.
		if len(klines) < binancePageSize {
			break
		}

		// Continue after the close time of the last kline to avoid duplicates.
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	series.Candles = types.Normalize(candles)

	c.log.Debug("fetched binance klines",
		zap.String("symbol", symbol),
		zap.String("interval", binanceInterval),
		zap.Int("candles", series.Len()),
	)

	return series, nil
}

// convertKlines converts Binance klines to candles stamped with the kline open time.
// Unparseable numbers become zero.
func convertKlines(klines []*binance.Kline) []types.Candle {
	candles := make([]types.Candle, 0, len(klines))

	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		candles = append(candles, types.Candle{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return candles
}
