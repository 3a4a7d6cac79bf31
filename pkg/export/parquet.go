package export

import (
	"os"

	"go.uber.org/zap"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/batch"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata/writer"
)

// ParquetExporter archives each successful series of a report as <dir>/<symbol>.parquet,
// the layout the parquet provider reads back.
type ParquetExporter struct {
	dir       string
	log       *logger.Logger
	newWriter func(path string) writer.CandleWriter
}

func NewParquetExporter(dir string, log *logger.Logger) *ParquetExporter {
	if log == nil {
		log = logger.NewNop()
	}

	return &ParquetExporter{
		dir: dir,
		log: log,
		newWriter: func(path string) writer.CandleWriter {
			return writer.NewDuckDBWriter(path, log)
		},
	}
}

// Export writes the archives and returns their paths in report order.
// Symbols whose window held no candles are skipped.
func (e *ParquetExporter) Export(report *batch.Report) ([]string, error) {
	if report == nil {
		return nil, errors.New(errors.ErrCodeExportFailed, "report is required")
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidOutputLocation, err, "failed to create %s", e.dir)
	}

	paths := make([]string, 0, report.Len())

	for _, success := range report.Successes() {
		if success.Series.IsEmpty() {
			continue
		}

		path, err := e.writeSeries(success.Series)
		if err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	e.log.Info("exported parquet archives", zap.String("dir", e.dir), zap.Int("files", len(paths)))

	return paths, nil
}

func (e *ParquetExporter) writeSeries(series types.CandleSeries) (path string, err error) {
	w := e.newWriter(marketdata.ArchivePath(e.dir, series.Symbol, "parquet"))

	if err = w.Initialize(); err != nil {
		return "", err
	}

	defer func() {
		if cerr := w.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				e.log.Warn("failed to close writer after another error", zap.Error(cerr))
			}
		}
	}()

	if err = w.WriteSeries(series); err != nil {
		return "", err
	}

	return w.Finalize()
}
