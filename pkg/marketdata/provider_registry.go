package marketdata

import (
	"fmt"
	"sort"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderParquet ProviderType = "parquet"
	ProviderCSV     ProviderType = "csv"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
	// Offline providers read local files instead of calling a remote API.
	Offline bool `json:"offline"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderYahoo: {
		Name:         string(ProviderYahoo),
		DisplayName:  "Yahoo Finance",
		Description:  "Global equities and indices via the public chart API, including NSE (.NS) listings",
		RequiresAuth: false,
		Offline:      false,
	},
	ProviderPolygon: {
		Name:         string(ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market data provider with real-time and historical OHLCV data",
		RequiresAuth: true,
		Offline:      false,
	},
	ProviderBinance: {
		Name:         string(ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange with extensive market data for crypto trading pairs",
		RequiresAuth: false,
		Offline:      false,
	},
	ProviderParquet: {
		Name:         string(ProviderParquet),
		DisplayName:  "Parquet archive",
		Description:  "Replays candles previously exported to parquet files",
		RequiresAuth: false,
		Offline:      true,
	},
	ProviderCSV: {
		Name:         string(ProviderCSV),
		DisplayName:  "CSV files",
		Description:  "Reads SYMBOL.csv files with time,open,high,low,close,volume columns",
		RequiresAuth: false,
		Offline:      true,
	},
}

// GetSupportedProviders returns a sorted list of all supported provider names.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, fmt.Errorf("unsupported provider: %s", providerName)
	}

	return info, nil
}
