package batch

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata"
	"github.com/rxtech-lab/ohlc-tracker/pkg/marketdata/provider"
	"github.com/rxtech-lab/ohlc-tracker/pkg/session"
)

// ProgressFunc is notified once per finished request. completed counts up from 1 to total.
type ProgressFunc = func(completed, total int)

// RunConfig is the session filter applied to every fetched series.
type RunConfig struct {
	Location *time.Location
	Window   session.Window
}

type options struct {
	concurrency int
	progress    ProgressFunc
	log         *logger.Logger
	validate    *validator.Validate
}

// Option configures Run.
type Option func(*options)

// WithConcurrency fetches up to n symbols at once. n <= 1 keeps the run sequential.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithProgress registers an observer for per-request completion.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithValidator reuses a validator that already has the request rules registered.
func WithValidator(validate *validator.Validate) Option {
	return func(o *options) {
		o.validate = validate
	}
}

// Run fetches every request through p, filters each series to the session window of cfg
// and returns one result per request in request order.
//
// Invalid requests are rejected before anything is fetched. Per-symbol problems never abort
// the run: they are recorded as Failure results. There are no retries.
func Run(ctx context.Context, requests []marketdata.FetchRequest, cfg RunConfig, p provider.Provider, opts ...Option) (*Report, error) {
	o := options{concurrency: 1, progress: nil, log: nil, validate: nil}
	for _, opt := range opts {
		opt(&o)
	}

	if o.log == nil {
		o.log = logger.NewNop()
	}

	if o.validate == nil {
		o.validate = marketdata.NewValidator()
	}

	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "provider is required")
	}

	filterer, err := session.NewFilterer(cfg.Location, cfg.Window)
	if err != nil {
		return nil, err
	}

	if err := marketdata.ValidateRequests(o.validate, requests); err != nil {
		return nil, err
	}
	total := len(requests)
	results := make([]Result, total)

	tracker := &progressTracker{total: total, notify: o.progress}

	fetchOne := func(i int) {
		req := requests[i]
		results[i] = fetchAndFilter(ctx, p, filterer, req, o.log)

		completed := tracker.done()
		o.log.Debug("fetched symbol",
			zap.String("symbol", req.Symbol),
			zap.Bool("success", results[i].Succeeded()),
			zap.Int("completed", completed),
			zap.Int("total", total),
		)
	}

	if o.concurrency <= 1 {
		for i := range requests {
			fetchOne(i)
		}
	} else {
		var group errgroup.Group
		group.SetLimit(o.concurrency)

		for i := range requests {
			group.Go(func() error {
				fetchOne(i)

				// Failures are data, not errors: returning nil keeps the other fetches running.
				return nil
			})
		}

		_ = group.Wait()
	}

	report := NewReport(total)
	for _, r := range results {
		report.Add(r)
	}

	o.log.Info("batch fetch finished",
		zap.String("provider", p.Name()),
		zap.Int("total", total),
		zap.Int("successes", len(report.Successes())),
		zap.Int("failures", len(report.Failures())),
	)

	return report, nil
}

func fetchAndFilter(ctx context.Context, p provider.Provider, filterer *session.Filterer, req marketdata.FetchRequest, log *logger.Logger) Result {
	if err := ctx.Err(); err != nil {
		return NewFailure(req.Symbol, err)
	}

	series, err := p.Fetch(ctx, req.Symbol, req.Lookback, req.Interval)
	if err != nil {
		log.Warn("provider failed", zap.String("symbol", req.Symbol), zap.Error(err))

		return NewFailure(req.Symbol, err)
	}

	if series.IsEmpty() {
		return Failure{Symbol: req.Symbol, Reason: ReasonNoData, Err: nil}
	}

	// Providers may normalise the ticker; the report is keyed by what was requested.
	series.Symbol = req.Symbol

	filtered, err := filterer.Filter(series)
	if err != nil {
		log.Warn("session filter failed", zap.String("symbol", req.Symbol), zap.Error(err))

		return NewFailure(req.Symbol, err)
	}

	return Success{Series: filtered}
}

// progressTracker serialises completion notifications so completed is strictly increasing
// even when requests finish concurrently.
type progressTracker struct {
	mu        sync.Mutex
	completed int
	total     int
	notify    ProgressFunc
}

func (t *progressTracker) done() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.completed++
	if t.notify != nil {
		t.notify(t.completed, t.total)
	}

	return t.completed
}
