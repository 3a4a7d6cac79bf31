package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
)

// DefaultYahooBaseURL is the host serving the v8 chart API.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// yahooUserAgent is sent because the chart API rejects requests without a browser-like agent.
const yahooUserAgent = "Mozilla/5.0 (X11; Linux x86_64) ohlc-tracker"

// yahooNotFound is the chart.error code Yahoo uses for unknown or delisted symbols.
const yahooNotFound = "Not Found"

// YahooClient fetches candles from the Yahoo Finance chart API.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// NewYahooClient creates a YahooClient. An empty baseURL selects DefaultYahooBaseURL.
func NewYahooClient(httpClient *http.Client, baseURL string, log *logger.Logger) *YahooClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}

	if log == nil {
		log = logger.NewNop()
	}

	return &YahooClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		log:        log,
	}
}

func (c *YahooClient) Name() string {
	return string(marketdata.ProviderYahoo)
}

// Fetch requests the chart for symbol and decodes it into a series located in the exchange timezone.
// Unknown symbols and charts without timestamps produce an empty series.
func (c *YahooClient) Fetch(ctx context.Context, symbol string, lookback marketdata.Lookback, interval marketdata.Interval) (types.CandleSeries, error) {
	series := types.CandleSeries{Symbol: symbol, Location: nil, Candles: []types.Candle{}}

	body, status, err := c.get(ctx, symbol, lookback, interval)
	if err != nil {
		return series, err
	}

	// Yahoo answers rate limiting with a plain-text body.
	if status == http.StatusTooManyRequests {
		return series, errors.NewProviderError(symbol, "yahoo rate limit exceeded").WithCode(errors.ErrCodeRateLimited)
	}

	if !gjson.ValidBytes(body) {
		if status != http.StatusOK {
			return series, errors.NewProviderErrorf(symbol, "yahoo returned status %d", status)
		}

		return series, errors.NewProviderErrorf(symbol, "yahoo returned malformed JSON (status %d)", status).
			WithCode(errors.ErrCodeMarketDataParseFailed)
	}

	chart := gjson.ParseBytes(body).Get("chart")

	if apiErr := chart.Get("error"); apiErr.Exists() && apiErr.Type != gjson.Null {
		code := apiErr.Get("code").String()
		if code == yahooNotFound {
			c.log.Debug("yahoo has no chart for symbol", zap.String("symbol", symbol))

			return series, nil
		}

		return series, errors.NewProviderErrorf(symbol, "yahoo chart error %s: %s", code, apiErr.Get("description").String())
	}

	if status != http.StatusOK {
		return series, errors.NewProviderErrorf(symbol, "yahoo returned status %d", status)
	}

	return c.decode(symbol, chart.Get("result.0"))
}

func (c *YahooClient) get(ctx context.Context, symbol string, lookback marketdata.Lookback, interval marketdata.Interval) ([]byte, int, error) {
	query := url.Values{}
	query.Set("range", lookback.String())
	query.Set("interval", interval.String())
	query.Set("includePrePost", "false")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, errors.WrapProviderError(symbol, "failed to build yahoo request", err)
	}

	req.Header.Set("User-Agent", yahooUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.WrapProviderError(symbol, "yahoo request failed", err).
			WithCode(errors.ErrCodeDataSourceUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.WrapProviderError(symbol, "failed to read yahoo response", err)
	}

	return body, resp.StatusCode, nil
}

func (c *YahooClient) decode(symbol string, result gjson.Result) (types.CandleSeries, error) {
	loc := yahooLocation(result.Get("meta"))
	series := types.CandleSeries{Symbol: symbol, Location: loc, Candles: []types.Candle{}}

	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return series, nil
	}

	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	candles := make([]types.Candle, 0, len(timestamps))
	skipped := 0

	for i, ts := range timestamps {
		open, okOpen := yahooNumber(opens, i)
		high, okHigh := yahooNumber(highs, i)
		low, okLow := yahooNumber(lows, i)
		closePrice, okClose := yahooNumber(closes, i)

		// Bars without prices are gaps in trading, not zero-valued candles.
		if !okOpen || !okHigh || !okLow || !okClose {
			skipped++

			continue
		}

		volume, _ := yahooNumber(volumes, i)

		candles = append(candles, types.Candle{
			Time:   time.Unix(ts.Int(), 0).In(loc),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	series.Candles = types.Normalize(candles)

	c.log.Debug("fetched yahoo chart",
		zap.String("symbol", symbol),
		zap.String("timezone", loc.String()),
		zap.Int("candles", series.Len()),
		zap.Int("skipped", skipped),
	)

	return series, nil
}

// yahooLocation resolves the exchange timezone, falling back to the GMT offset and then UTC.
// Chart timestamps are epoch seconds, so the series always has an absolute reference.
func yahooLocation(meta gjson.Result) *time.Location {
	if name := meta.Get("exchangeTimezoneName").String(); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}

	if offset := meta.Get("gmtoffset"); offset.Exists() {
		name := meta.Get("timezone").String()
		if name == "" {
			name = "GMT"
		}

		return time.FixedZone(name, int(offset.Int()))
	}

	return time.UTC
}

func yahooNumber(values []gjson.Result, i int) (float64, bool) {
	if i >= len(values) || values[i].Type != gjson.Number {
		return 0, false
	}

	return values[i].Float(), true
}
