package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/ohlc-tracker/internal/config"
	"github.com/rxtech-lab/ohlc-tracker/internal/tracker"
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/internal/version"
	"github.com/rxtech-lab/ohlc-tracker/pkg/batch"
	"github.com/rxtech-lab/ohlc-tracker/pkg/export"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
)

// DefaultTail is how many of the newest in-session rows fetch prints per symbol.
const DefaultTail = 30

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

// loadConfig reads --config and applies the command line overrides shared by the subcommands.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if p := cmd.String("provider"); p != "" {
		cfg.Provider = p
	}

	if dir := cmd.String("output"); dir != "" {
		cfg.Output.Dir = dir
	}

	if n := cmd.Int("concurrency"); n > 0 {
		cfg.Concurrency = int(n)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// fetchAction fetches the selected symbols, prints the tail of every series and
// optionally saves the workbook and parquet archives.
func fetchAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	errOut := cmd.Root().ErrWriter

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := cfg.Logger("stderr")
	if err != nil {
		return err
	}
	defer logger.Sync()

	t, err := tracker.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	symbols := cmd.StringSlice("symbols")

	var progress batch.ProgressFunc
	if !cmd.Bool("quiet") {
		total := len(symbols)
		if total == 0 {
			total = len(cfg.Symbols)
		}

		progress = newProgress(errOut, total)
	}

	report, err := t.Fetch(ctx, symbols, progress)
	if err != nil {
		return err
	}

	tail := int(cmd.Int("tail"))
	for _, entry := range report.Entries() {
		switch res := entry.Result.(type) {
		case batch.Success:
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s (%d candles)", entry.Symbol, res.Series.Len())))
			fmt.Fprintln(out, renderSeries(res.Series, tail))
		case batch.Failure:
			fmt.Fprintf(errOut, "%s: %s\n", entry.Symbol, res.Reason)
		}
	}

	if cmd.Bool("xlsx") {
		path, err := t.SaveWorkbook(report, "")
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Saved workbook to %s\n", path)
	}

	if cmd.Bool("parquet") {
		paths, err := t.SaveParquet(report, "")
		if err != nil {
			return err
		}

		for _, path := range paths {
			fmt.Fprintf(out, "Saved archive to %s\n", path)
		}
	}

	return nil
}

func symbolsAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	for _, s := range cfg.Symbols {
		fmt.Fprintln(out, s)
	}

	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	if dir := cmd.String("out"); dir != "" {
		schemaPath, samplePath, err := config.WriteSample(dir)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.Root().Writer, "Schema written to %s, sample config at %s\n", schemaPath, samplePath)

		return nil
	}

	schema, err := config.Schema()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, schema)

	return nil
}

// newProgress returns a progress observer drawing a bar on w.
func newProgress(w io.Writer, total int) batch.ProgressFunc {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Fetching"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)

	return func(completed, _ int) {
		_ = bar.Set(completed)
	}
}

// renderSeries draws the last tail rows of series as a table. tail <= 0 prints every row.
func renderSeries(series types.CandleSeries, tail int) string {
	rows := export.Table(series)
	if tail > 0 && len(rows) > tail {
		rows = rows[len(rows)-tail:]
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(export.Header...)

	for _, r := range rows {
		t.Row(r.Strings()...)
	}

	if len(rows) == 0 {
		return t.String() + "\n(no candles inside the session window)"
	}

	return t.String()
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "ohlc",
		Version: version.GetVersion(),
		Usage:   "Fetch intraday candles and keep only the trading session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config (defaults to $" + config.EnvConfigPath + ")",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Override the data provider (" + strings.Join(marketdata.GetSupportedProviders(), ", ") + ")",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Override the output directory",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Symbols fetched at once",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Fetch symbols and print the newest in-session candles",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "symbols",
						Aliases: []string{"s"},
						Usage:   "Symbols to fetch (defaults to the configured universe)",
					},
					&cli.IntFlag{
						Name:  "tail",
						Usage: "Rows printed per symbol, 0 for all",
						Value: DefaultTail,
					},
					&cli.BoolFlag{
						Name:  "xlsx",
						Usage: "Save the Excel report to the output directory",
					},
					&cli.BoolFlag{
						Name:  "parquet",
						Usage: "Save one parquet archive per symbol to the output directory",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Hide the progress bar",
					},
				},
				Action: fetchAction,
			},
			{
				Name:   "symbols",
				Usage:  "List the configured symbol universe",
				Action: symbolsAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the schema and a sample config into this directory instead",
					},
				},
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
