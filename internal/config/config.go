// Package config loads the tracker configuration from YAML with environment overrides.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	// Embedded zone database so Asia/Kolkata resolves on hosts without tzdata.
	_ "time/tzdata"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/version"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/export"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata/provider"
	"github.com/rxtech-lab/ohlc-tracker/pkg/session"
	"github.com/rxtech-lab/ohlc-tracker/pkg/utils"
)

const (
	// EnvConfigPath points at the YAML file when no path is given explicitly.
	EnvConfigPath = "OHLC_CONFIG"
	// EnvPolygonAPIKey overrides apiKey.
	EnvPolygonAPIKey = "POLYGON_API_KEY"
)

// NiftySymbols is the default symbol universe.
var NiftySymbols = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "ICICIBANK.NS", "INFY.NS",
	"BHARTIARTL.NS", "ITC.NS", "SBIN.NS", "LTIM.NS", "AXISBANK.NS",
}

// SessionConfig is the daily trading window in exchange-local time.
type SessionConfig struct {
	Start string `yaml:"start" json:"start" jsonschema:"title=Session Start,description=Inclusive start of the trading session (HH:MM),default=09:15" validate:"required"`
	End   string `yaml:"end" json:"end" jsonschema:"title=Session End,description=Inclusive end of the trading session (HH:MM),default=15:30" validate:"required"`
}

// OutputConfig controls where exports are written.
type OutputConfig struct {
	Dir string `yaml:"dir" json:"dir" jsonschema:"title=Output Directory,description=Directory for exported workbooks and parquet archives,default=." validate:"required"`
}

// ServerConfig configures the HTTP dashboard.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr" jsonschema:"title=Listen Address,description=Address the dashboard listens on,default=:8080" validate:"required,hostname_port|startswith=:"`
}

// Config is the tracker configuration.
type Config struct {
	Version        string        `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=Version of the tool that wrote the file; newer minor versions are rejected"`
	Name           string        `yaml:"name" json:"name" jsonschema:"title=Report Name,description=Prefix of the exported workbook file name,default=Nifty50" validate:"required"`
	Provider       string        `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider,enum=yahoo,enum=polygon,enum=binance,enum=parquet,enum=csv,default=yahoo" validate:"required,oneof=yahoo polygon binance parquet csv"`
	APIKey         string        `yaml:"apiKey,omitempty" json:"apiKey,omitempty" jsonschema:"title=API Key,description=Polygon API key (POLYGON_API_KEY overrides it)" validate:"required_if=Provider polygon"`
	DataDir        string        `yaml:"dataDir,omitempty" json:"dataDir,omitempty" jsonschema:"title=Data Directory,description=Directory read by the parquet and csv providers" validate:"required_if=Provider parquet,required_if=Provider csv"`
	DataTimezone   string        `yaml:"dataTimezone,omitempty" json:"dataTimezone,omitempty" jsonschema:"title=Data Timezone,description=IANA zone of naive timestamps in offline files; leave empty to keep them naive" validate:"omitempty,timezone"`
	Timezone       string        `yaml:"timezone" json:"timezone" jsonschema:"title=Timezone,description=IANA zone candles are converted to,default=Asia/Kolkata" validate:"required,timezone"`
	Session        SessionConfig `yaml:"session" json:"session" jsonschema:"title=Session"`
	Lookback       string        `yaml:"lookback" json:"lookback" jsonschema:"title=Lookback,description=History period requested per symbol,default=5d" validate:"required,lookback"`
	Interval       string        `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Candle granularity,default=15m" validate:"required,interval"`
	Symbols        []string      `yaml:"symbols" json:"symbols" jsonschema:"title=Symbols,description=Symbol universe offered for selection" validate:"required,min=1,unique,dive,symbol"`
	Concurrency    int           `yaml:"concurrency" json:"concurrency" jsonschema:"title=Concurrency,description=Symbols fetched at once (1 is sequential),minimum=1,maximum=16,default=1" validate:"gte=1,lte=16"`
	TimeoutSeconds int           `yaml:"timeoutSeconds" json:"timeoutSeconds" jsonschema:"title=Timeout,description=Per-request timeout in seconds,minimum=1,default=30" validate:"gte=1"`
	LogLevel       string        `yaml:"logLevel" json:"logLevel" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"omitempty,oneof=debug info warn error"`
	Output         OutputConfig  `yaml:"output" json:"output" jsonschema:"title=Output"`
	Server         ServerConfig  `yaml:"server" json:"server" jsonschema:"title=Server"`
}

// Default returns the configuration used when no file is present:
// the Nifty 50 leaders on the NSE session, 15 minute candles over five days.
func Default() Config {
	symbols := make([]string, len(NiftySymbols))
	copy(symbols, NiftySymbols)

	return Config{
		Version:        "",
		Name:           "Nifty50",
		Provider:       string(marketdata.ProviderYahoo),
		APIKey:         "",
		DataDir:        "",
		DataTimezone:   "",
		Timezone:       "Asia/Kolkata",
		Session:        SessionConfig{Start: "09:15", End: "15:30"},
		Lookback:       string(marketdata.LookbackFiveDays),
		Interval:       string(marketdata.IntervalFifteenMinutes),
		Symbols:        symbols,
		Concurrency:    1,
		TimeoutSeconds: 30,
		LogLevel:       "info",
		Output:         OutputConfig{Dir: "."},
		Server:         ServerConfig{Addr: ":8080"},
	}
}

// Load reads path, or $OHLC_CONFIG when path is empty, over the defaults.
// A missing file is only an error when a path was given explicitly.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if cfg, err = Parse(data); err != nil {
				return Config{}, err
			}
		case stderrors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Parse decodes YAML over the defaults without validating.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv(EnvPolygonAPIKey); key != "" {
		c.APIKey = key
	}
}

// Validate checks version compatibility, field rules and that the session window parses.
func (c Config) Validate() error {
	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return err
	}

	if err := marketdata.NewValidator().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if _, err := c.Window(); err != nil {
		return err
	}

	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidTimezone, err, "unknown timezone %q", c.Timezone)
	}

	return loc, nil
}

// Window parses the session bounds.
func (c Config) Window() (session.Window, error) {
	return session.ParseWindow(c.Session.Start, c.Session.End)
}

// Requests builds fetch requests for symbols, or for the whole universe when symbols is empty.
func (c Config) Requests(symbols []string) []marketdata.FetchRequest {
	if len(symbols) == 0 {
		symbols = c.Symbols
	}

	return marketdata.NewRequests(symbols, marketdata.Lookback(c.Lookback), marketdata.Interval(c.Interval))
}

// Timeout is the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProviderConfig maps the configuration onto the provider factory input.
func (c Config) ProviderConfig(log *logger.Logger) provider.ProviderConfig {
	return provider.ProviderConfig{
		Type:       marketdata.ProviderType(c.Provider),
		APIKey:     c.APIKey,
		BaseURL:    "",
		DataDir:    c.DataDir,
		Timezone:   c.DataTimezone,
		Timeout:    c.Timeout(),
		HTTPClient: nil,
		Logger:     log,
		Now:        nil,
	}
}

// ReportFileName is the download name of the workbook, e.g. Nifty50_Market_Report.xlsx.
func (c Config) ReportFileName() string {
	return export.ReportFileName(c.Name)
}

// ReportPath is where the CLI and TUI save the workbook.
func (c Config) ReportPath() string {
	return filepath.Join(c.Output.Dir, c.ReportFileName())
}

// Logger builds a logger at LogLevel writing to outputPaths, stdout when none are given.
func (c Config) Logger(outputPaths ...string) (*logger.Logger, error) {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid log level", err)
	}

	return logger.NewLoggerWithOptions(logger.Options{Level: c.LogLevel, Development: false, OutputPaths: outputPaths})
}

// Schema returns the JSON schema of the configuration file.
func Schema() (string, error) {
	schema, err := utils.GetSchemaFromConfig(&Config{})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnknown, "failed to generate config schema", err)
	}

	return schema, nil
}
