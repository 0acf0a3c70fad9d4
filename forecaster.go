package forecaster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-tempcast/arima"
	"github.com/aouyang1/go-tempcast/timedataset"
	"github.com/rs/zerolog"
)

var (
	ErrNilResults     = errors.New("nil results")
	ErrInvalidOptions = errors.New("invalid forecaster options")
	ErrModelPanic     = errors.New("model fit panicked")
)

// Forecaster fits a primary and a seasonal model to a series and forecasts both out to the
// target year. It holds no state between calls and is safe for concurrent use.
type Forecaster struct {
	opt *Options
}

// New creates a new instance of a Forecaster using the provided options. If no options are provided
// a default is used.
func New(opt *Options) (*Forecaster, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	o := *opt
	opt = &o
	if err := opt.PrimaryOrder.Validate(); err != nil {
		return nil, fmt.Errorf("primary order %s, %w", opt.PrimaryOrder, err)
	}
	if err := opt.SeasonalOrder.Validate(); err != nil {
		return nil, fmt.Errorf("seasonal order %s, %w", opt.SeasonalOrder, err)
	}
	if opt.FallbackOrder != nil {
		if err := opt.FallbackOrder.Validate(); err != nil {
			return nil, fmt.Errorf("fallback order %s, %w", opt.FallbackOrder, err)
		}
	}
	if opt.ModelOptions == nil {
		opt.ModelOptions = arima.NewDefaultOptions()
	}
	if opt.TargetYear <= 0 {
		return nil, fmt.Errorf("target year %d, %w", opt.TargetYear, ErrInvalidOptions)
	}
	return &Forecaster{opt: opt}, nil
}

// Options returns the options the forecaster was built with
func (f *Forecaster) Options() Options {
	return *f.opt
}

// Horizon returns the number of months to forecast after last for the target year.
// The count runs (targetYear-lastYear)*12 + (12-lastMonth), which may be zero or negative.
func Horizon(last time.Time, targetYear int) int {
	return (targetYear-last.Year())*12 + (12 - int(last.Month()))
}

// ForecastDates returns horizon contiguous month starts beginning at the month of last, or the
// month after it when startAfter is set.
func ForecastDates(last time.Time, horizon int, startAfter bool) []time.Time {
	if horizon <= 0 {
		return []time.Time{}
	}
	start := timedataset.MonthStart(last)
	if startAfter {
		start = timedataset.AddMonths(start, 1)
	}
	return timedataset.MonthRange(start, horizon)
}

// Forecast fits both models against the series and forecasts each over the horizon up to the
// configured target year. An empty series or a non-positive horizon yields empty forecasts. A
// model that fails records its error and leaves the other untouched. Cancelling ctx stops both
// fits.
func (f *Forecaster) Forecast(ctx context.Context, series *timedataset.TimeDataset) (*Results, error) {
	return f.ForecastTo(ctx, series, f.opt.TargetYear)
}

// ForecastTo is Forecast with an explicit target year
func (f *Forecaster) ForecastTo(ctx context.Context, series *timedataset.TimeDataset, targetYear int) (*Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Results{
		TargetYear: targetYear,
		Primary:    newModelForecast(PrimaryModelName, f.opt.PrimaryOrder),
		Seasonal:   newModelForecast(SeasonalModelName, f.opt.SeasonalOrder),
	}

	logger := f.opt.Logger.With().Int("target_year", targetYear).Logger()
	if series.Len() == 0 {
		logger.Debug().Msg("empty series, nothing to forecast")
		return res, nil
	}

	res.LastDate = series.EndTime()
	res.Horizon = Horizon(res.LastDate, targetYear)
	if res.Horizon <= 0 {
		logger.Debug().
			Time("last_date", res.LastDate).
			Int("horizon", res.Horizon).
			Msg("non-positive horizon, nothing to forecast")
		return res, nil
	}
	dates := ForecastDates(res.LastDate, res.Horizon, f.opt.StartAfterLastDate)

	type fitResult struct {
		idx int
		mf  *ModelForecast
	}
	models := []*ModelForecast{res.Primary, res.Seasonal}
	done := make(chan fitResult, len(models))
	for i, m := range models {
		y := series.Copy().Y
		go func() {
			done <- fitResult{idx: i, mf: f.fitModel(ctx, logger, m.Name, m.Order, y, res.Horizon, dates)}
		}()
	}

	for range models {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-done:
			models[r.idx] = r.mf
		}
	}
	res.Primary, res.Seasonal = models[0], models[1]
	return res, nil
}

// fitModel fits one model and forecasts it, substituting the fallback order on failure when one
// is configured.
func (f *Forecaster) fitModel(ctx context.Context, logger zerolog.Logger, name string, order arima.Order, y []float64, horizon int, dates []time.Time) *ModelForecast {
	logger = logger.With().Str("model", name).Logger()

	mf := newModelForecast(name, order)
	forecast, params, err := f.fitPredict(ctx, order, y, horizon)
	if err != nil && ctx.Err() == nil && f.opt.FallbackOrder != nil && *f.opt.FallbackOrder != order {
		logger.Warn().Err(err).
			Stringer("order", order).
			Stringer("fallback_order", f.opt.FallbackOrder).
			Msg("model fit failed, substituting fallback order")

		mf.Order = *f.opt.FallbackOrder
		mf.Substituted = true
		forecast, params, err = f.fitPredict(ctx, mf.Order, y, horizon)
	}
	if err != nil {
		logger.Warn().Err(err).Stringer("order", mf.Order).Msg("model fit failed")
		mf.Err = err.Error()
		return mf
	}

	mf.T = make([]time.Time, len(dates))
	copy(mf.T, dates)
	mf.Forecast = forecast
	mf.Params = &params
	logger.Debug().
		Stringer("order", mf.Order).
		Float64("sigma2", params.Sigma2).
		Float64("aic", params.AIC).
		Bool("converged", params.Converged).
		Msg("fit model")
	return mf
}

func (f *Forecaster) fitPredict(ctx context.Context, order arima.Order, y []float64, horizon int) (forecast []float64, params arima.Params, err error) {
	defer func() {
		if r := recover(); r != nil {
			forecast, params, err = nil, arima.Params{}, fmt.Errorf("%v, %w", r, ErrModelPanic)
		}
	}()

	start := time.Now()
	m, err := arima.New(order, f.opt.ModelOptions)
	if err != nil {
		return nil, arima.Params{}, fmt.Errorf("unable to initialize model, %w", err)
	}
	if err := m.FitContext(ctx, y); err != nil {
		return nil, arima.Params{}, fmt.Errorf("unable to fit model, %w", err)
	}
	forecast, err = m.Predict(horizon)
	if err != nil {
		return nil, arima.Params{}, fmt.Errorf("unable to predict model, %w", err)
	}
	params, err = m.Params()
	if err != nil {
		return nil, arima.Params{}, fmt.Errorf("unable to fetch model parameters, %w", err)
	}
	f.opt.Logger.Trace().Stringer("order", order).Dur("elapsed", time.Since(start)).Msg("model fit and predict")
	return forecast, params, nil
}
