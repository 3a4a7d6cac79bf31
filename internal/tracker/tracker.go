// Package tracker binds the configuration, a provider and the batch orchestrator together.
// The CLI, the terminal UI and the HTTP dashboard all fetch through it.
package tracker

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/ohlc-tracker/internal/config"
	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/pkg/batch"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/export"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata/provider"
)

// Tracker fetches session-filtered candles for the configured market.
type Tracker struct {
	cfg      config.Config
	provider provider.Provider
	runCfg   batch.RunConfig
	validate *validator.Validate
	log      *logger.Logger
}

// New creates a tracker over an already constructed provider.
func New(cfg config.Config, p provider.Provider, log *logger.Logger) (*Tracker, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "provider is required")
	}

	if log == nil {
		log = logger.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	window, err := cfg.Window()
	if err != nil {
		return nil, err
	}

	return &Tracker{
		cfg:      cfg,
		provider: p,
		runCfg:   batch.RunConfig{Location: loc, Window: window},
		validate: marketdata.NewValidator(),
		log:      log,
	}, nil
}

// NewFromConfig builds the provider named by cfg and wraps it.
func NewFromConfig(cfg config.Config, log *logger.Logger) (*Tracker, error) {
	p, err := provider.NewMarketDataProvider(cfg.ProviderConfig(log))
	if err != nil {
		return nil, err
	}

	return New(cfg, p, log)
}

func (t *Tracker) Config() config.Config {
	return t.cfg
}

// ProviderName is the name of the underlying provider.
func (t *Tracker) ProviderName() string {
	return t.provider.Name()
}

// Symbols returns a copy of the configured universe.
func (t *Tracker) Symbols() []string {
	symbols := make([]string, len(t.cfg.Symbols))
	copy(symbols, t.cfg.Symbols)

	return symbols
}

// Fetch runs one batch for symbols, or for the whole universe when symbols is empty.
// progress may be nil.
func (t *Tracker) Fetch(ctx context.Context, symbols []string, progress batch.ProgressFunc) (*batch.Report, error) {
	return batch.Run(ctx, t.cfg.Requests(symbols), t.runCfg, t.provider,
		batch.WithConcurrency(t.cfg.Concurrency),
		batch.WithProgress(progress),
		batch.WithLogger(t.log),
		batch.WithValidator(t.validate),
	)
}

// Workbook renders report as an XLSX file.
func (t *Tracker) Workbook(report *batch.Report) ([]byte, error) {
	return t.xlsxExporter().Export(report)
}

// SaveWorkbook writes report to path, or to the configured report path when path is empty.
func (t *Tracker) SaveWorkbook(report *batch.Report, path string) (string, error) {
	if path == "" {
		path = t.cfg.ReportPath()
	}

	if err := t.xlsxExporter().WriteFile(report, path); err != nil {
		return "", err
	}

	return path, nil
}

// SaveParquet archives every non-empty successful series under dir, or the configured
// output directory when dir is empty.
func (t *Tracker) SaveParquet(report *batch.Report, dir string) ([]string, error) {
	if dir == "" {
		dir = t.cfg.Output.Dir
	}

	return export.NewParquetExporter(dir, t.log).Export(report)
}

func (t *Tracker) xlsxExporter() *export.XLSXExporter {
	return export.NewXLSXExporter(export.WithXLSXLogger(t.log))
}

// SplitSymbols parses a comma separated symbol list, dropping blanks.
func SplitSymbols(s string) []string {
	var symbols []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			symbols = append(symbols, part)
		}
	}

	return symbols
}
