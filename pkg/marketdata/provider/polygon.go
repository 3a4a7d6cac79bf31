package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
)

// PolygonAggsIterator is the subset of the polygon aggregate iterator used by PolygonClient.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used by PolygonClient.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

// PolygonClient fetches aggregates from Polygon.io.
type PolygonClient struct {
	apiClient PolygonAPIClient
	now       func() time.Time
	log       *logger.Logger
}

func NewPolygonClient(apiKey string) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonClientWrapper{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a PolygonClient backed by the given API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		now:       time.Now,
		log:       logger.NewNop(),
	}
}

func (c *PolygonClient) Name() string {
	return string(marketdata.ProviderPolygon)
}

// Fetch lists the aggregates between now-lookback and now.
// Polygon timestamps are epoch milliseconds, so the series is returned in UTC.
func (c *PolygonClient) Fetch(ctx context.Context, symbol string, lookback marketdata.Lookback, interval marketdata.Interval) (types.CandleSeries, error) {
	series := types.CandleSeries{Symbol: symbol, Location: time.UTC, Candles: []types.Candle{}}

	from, to, err := windowRange(symbol, lookback, c.now())
	if err != nil {
		return series, err
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: interval.Multiplier(),
		Timespan:   interval.Timespan(),
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	candles := make([]types.Candle, 0)

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return series, errors.WrapProviderError(symbol, "polygon request cancelled", err)
		}

		agg := iter.Item()
		candles = append(candles, types.Candle{
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return series, errors.WrapProviderError(symbol, "error iterating polygon aggregates", err)
	}

	if err := ctx.Err(); err != nil {
		return series, errors.WrapProviderError(symbol, "polygon request cancelled", err)
	}

	series.Candles = types.Normalize(candles)

	c.log.Debug("fetched polygon aggregates",
		zap.String("symbol", symbol),
		zap.Int("candles", series.Len()),
	)

	return series, nil
}
