package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
)

// DataGenerator generates realistic candle series for testing.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how candles are generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "TCS.NS")
	Symbol string
	// Location is attached to the series. Nil produces naive timestamps.
	Location *time.Location
	// StartTime is the first candle
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of candles to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per bar)
	Volatility float64
	// Trend is the drift factor (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns 15 minute NSE candles starting at 09:00 IST on 2024-06-03.
func DefaultConfig() GeneratorConfig {
	ist := time.FixedZone("IST", 5*3600+30*60)

	return GeneratorConfig{
		Symbol:         "TEST.NS",
		Location:       ist,
		StartTime:      time.Date(2024, 6, 3, 9, 0, 0, 0, ist),
		Interval:       15 * time.Minute,
		Count:          100,
		InitialPrice:   1000.0,
		Volatility:     0.002, // 0.2% per bar
		Trend:          0.0,   // neutral
		VolumeBase:     10000,
		VolumeVariance: 0.3,
	}
}

// Generate creates a series based on the configuration.
// Prices follow a geometric Brownian motion so consecutive candles look plausible.
func (g *DataGenerator) Generate(config GeneratorConfig) types.CandleSeries {
	candles := make([]types.Candle, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		candles[i], currentPrice = g.next(config, currentTime, currentPrice)
		currentTime = currentTime.Add(config.Interval)
	}

	return types.CandleSeries{
		Symbol:   config.Symbol,
		Location: config.Location,
		Candles:  candles,
	}
}

// GenerateTradingDays creates candles every config.Interval from dayStart to dayEnd (inclusive,
// offsets from local midnight) on each of days consecutive weekdays starting at config.StartTime's date.
// config.Count is ignored.
func (g *DataGenerator) GenerateTradingDays(config GeneratorConfig, days int, dayStart, dayEnd time.Duration) types.CandleSeries {
	loc := config.Location
	if loc == nil {
		loc = time.UTC
	}

	candles := make([]types.Candle, 0)
	currentPrice := config.InitialPrice
	start := config.StartTime.In(loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	for generated := 0; generated < days; day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		for offset := dayStart; offset <= dayEnd; offset += config.Interval {
			var c types.Candle
			c, currentPrice = g.next(config, day.Add(offset), currentPrice)
			candles = append(candles, c)
		}

		generated++
	}

	return types.CandleSeries{
		Symbol:   config.Symbol,
		Location: config.Location,
		Candles:  candles,
	}
}

func (g *DataGenerator) next(config GeneratorConfig, t time.Time, open float64) (types.Candle, float64) {
	// Box-Muller transform for a normally distributed move
	u1 := g.rng.Float64()
	u2 := g.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

	priceChange := config.Volatility * z

	drift := 0.0
	if config.Count > 0 {
		drift = config.Trend / float64(config.Count)
	}

	closePrice := open * (1 + priceChange + drift)
	if closePrice <= 0 {
		closePrice = open * 0.99
	}

	highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
	lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

	high := math.Max(open, closePrice) + highExtension
	low := math.Min(open, closePrice) - lowExtension
	if low <= 0 {
		low = math.Min(open, closePrice) * 0.99
	}

	volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
	volume := config.VolumeBase * volumeVariation
	if volume < 0 {
		volume = config.VolumeBase * 0.1
	}

	return types.Candle{
		Time:   t,
		Open:   roundToDecimals(open, 4),
		High:   roundToDecimals(high, 4),
		Low:    roundToDecimals(low, 4),
		Close:  roundToDecimals(closePrice, 4),
		Volume: roundToDecimals(volume, 0),
	}, closePrice
}

// GenerateMultiSymbol generates one series per symbol.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) []types.CandleSeries {
	all := make([]types.CandleSeries, 0, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		// Vary initial price and volatility slightly per symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		all = append(all, g.Generate(config))
	}

	return all
}

// GenerateWeek returns five trading days of 15 minute candles from 09:00 to 16:00 IST
// for symbol, wider than the NSE session so filters have something to drop.
func GenerateWeek(symbol string) types.CandleSeries {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Symbol = symbol

	return gen.GenerateTradingDays(config, 5, 9*time.Hour, 16*time.Hour)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
