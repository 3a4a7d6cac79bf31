package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
)

// DefaultTimeout bounds a single remote fetch when the config leaves Timeout unset.
const DefaultTimeout = 30 * time.Second

// Provider retrieves the candle history of one symbol.
//
// Fetch returns the candles in ascending time order with unique timestamps.
// A symbol the provider knows nothing about yields an empty series rather than an error;
// transport, decoding and API failures are reported as *errors.ProviderError.
type Provider interface {
	// Name identifies the provider, e.g. "yahoo".
	Name() string
	// Fetch downloads candles for symbol covering lookback at the given interval.
	// The context can be used to cancel the request.
	Fetch(ctx context.Context, symbol string, lookback marketdata.Lookback, interval marketdata.Interval) (types.CandleSeries, error)
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Type marketdata.ProviderType `validate:"required,oneof=yahoo polygon binance parquet csv"`
	// APIKey authenticates against Polygon.
	APIKey string `validate:"required_if=Type polygon"`
	// BaseURL overrides the Yahoo chart endpoint, mostly for tests.
	BaseURL string `validate:"omitempty,url"`
	// DataDir holds the files read by the offline providers.
	DataDir string `validate:"required_if=Type parquet,required_if=Type csv"`
	// Timezone is attached to naive timestamps read by the offline providers.
	// Leave it empty to keep them naive.
	Timezone string
	// Timeout bounds each remote fetch.
	Timeout time.Duration `validate:"gte=0"`
	// HTTPClient is used by the Yahoo provider. A client with Timeout is created when nil.
	HTTPClient *http.Client   `validate:"-"`
	Logger     *logger.Logger `validate:"-"`
	// Now anchors lookback ranges for providers that need absolute dates.
	Now func() time.Time `validate:"-"`
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(config ProviderConfig) (Provider, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProvider, "invalid provider configuration", err)
	}

	log := config.Logger
	if log == nil {
		log = logger.NewNop()
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	switch config.Type {
	case marketdata.ProviderYahoo:
		httpClient := config.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: timeout}
		}

		return NewYahooClient(httpClient, config.BaseURL, log), nil
	case marketdata.ProviderPolygon:
		client, err := NewPolygonClient(config.APIKey)
		if err != nil {
			return nil, err
		}

		client.now = now
		client.log = log

		return client, nil
	case marketdata.ProviderBinance:
		client := NewBinanceClient()
		client.now = now
		client.log = log

		return client, nil
	case marketdata.ProviderParquet, marketdata.ProviderCSV:
		loc, err := loadOptionalLocation(config.Timezone)
		if err != nil {
			return nil, err
		}

		if config.Type == marketdata.ProviderParquet {
			return NewParquetReader(config.DataDir, loc, log), nil
		}

		return NewCSVReader(config.DataDir, loc, log), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", config.Type)
	}
}

func loadOptionalLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidTimezone, err, "unknown timezone %q", name)
	}

	return loc, nil
}

// windowRange resolves lookback against now for providers that take absolute ranges.
func windowRange(symbol string, lookback marketdata.Lookback, now time.Time) (time.Time, time.Time, error) {
	from, to, err := lookback.Range(now)
	if err != nil {
		return time.Time{}, time.Time{}, errors.WrapProviderError(symbol, "invalid lookback", err).WithCode(errors.ErrCodeInvalidLookback)
	}

	return from, to, nil
}
