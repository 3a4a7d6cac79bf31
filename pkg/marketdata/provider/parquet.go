package provider

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
)

// ParquetReader replays candles from parquet files written by the DuckDB writer.
//
// The files store wall-clock timestamps. Location is attached to them when set,
// otherwise the returned series is naive and cannot be converted to another zone.
type ParquetReader struct {
	dataDir  string
	location *time.Location
	log      *logger.Logger
}

// NewParquetReader creates a reader for <dataDir>/<symbol>.parquet files.
func NewParquetReader(dataDir string, location *time.Location, log *logger.Logger) *ParquetReader {
	if log == nil {
		log = logger.NewNop()
	}

	return &ParquetReader{
		dataDir:  dataDir,
		location: location,
		log:      log,
	}
}

func (r *ParquetReader) Name() string {
	return string(marketdata.ProviderParquet)
}

// Fetch reads the candles of symbol covering lookback back from the newest stored candle.
// The interval is not resampled; candles come back at the resolution they were archived with.
func (r *ParquetReader) Fetch(ctx context.Context, symbol string, lookback marketdata.Lookback, _ marketdata.Interval) (types.CandleSeries, error) {
	series := types.CandleSeries{Symbol: symbol, Location: r.location, Candles: []types.Candle{}}
	path := marketdata.ArchivePath(r.dataDir, symbol, "parquet")

	if _, err := os.Stat(path); err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			r.log.Debug("no parquet archive for symbol", zap.String("symbol", symbol), zap.String("path", path))

			return series, nil
		}

		return series, errors.WrapProviderError(symbol, "failed to stat parquet archive", err).
			WithCode(errors.ErrCodeDataSourceUnavailable)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return series, errors.WrapProviderError(symbol, "failed to open DuckDB connection", err).
			WithCode(errors.ErrCodeDataSourceUnavailable)
	}
	defer db.Close()

	source := fmt.Sprintf("read_parquet('%s')", strings.ReplaceAll(path, "'", "''"))
	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	latestQuery, latestArgs, err := sq.Select("MAX(time)").From(source).Where(squirrel.Eq{"symbol": symbol}).ToSql()
	if err != nil {
		return series, errors.WrapProviderError(symbol, "failed to build SQL query", err).WithCode(errors.ErrCodeQueryFailed)
	}

	var latest sql.NullTime
	if err := db.QueryRowContext(ctx, latestQuery, latestArgs...).Scan(&latest); err != nil {
		return series, errors.WrapProviderError(symbol, "failed to query parquet archive", err).WithCode(errors.ErrCodeQueryFailed)
	}

	if !latest.Valid {
		return series, nil
	}

	start, err := lookback.Start(latest.Time)
	if err != nil {
		return series, errors.WrapProviderError(symbol, "invalid lookback", err).WithCode(errors.ErrCodeInvalidLookback)
	}

	query, args, err := sq.
		Select("time", "open", "high", "low", "close", "volume").
		From(source).
		Where(squirrel.Eq{"symbol": symbol}).
		Where(squirrel.GtOrEq{"time": start}).
		OrderBy("time").
		ToSql()
	if err != nil {
		return series, errors.WrapProviderError(symbol, "failed to build SQL query", err).WithCode(errors.ErrCodeQueryFailed)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return series, errors.WrapProviderError(symbol, "failed to query parquet archive", err).WithCode(errors.ErrCodeQueryFailed)
	}
	defer rows.Close()

	candles := make([]types.Candle, 0)

	for rows.Next() {
		var c types.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return series, errors.WrapProviderError(symbol, "failed to scan candle row", err).WithCode(errors.ErrCodeMarketDataParseFailed)
		}

		c.Time = localize(c.Time, r.location)
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return series, errors.WrapProviderError(symbol, "error iterating candle rows", err).WithCode(errors.ErrCodeQueryFailed)
	}

	series.Candles = types.Normalize(candles)

	r.log.Debug("read parquet archive",
		zap.String("symbol", symbol),
		zap.String("path", path),
		zap.Bool("naive", r.location == nil),
		zap.Int("candles", series.Len()),
	)

	return series, nil
}
