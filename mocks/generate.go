package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/ohlc-tracker/pkg/marketdata/provider Provider
