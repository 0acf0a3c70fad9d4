package forecaster

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-tempcast/arima"
	"github.com/aouyang1/go-tempcast/timedataset"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cssOptions() *Options {
	opt := NewDefaultOptions()
	opt.ModelOptions = &arima.Options{
		Method:        arima.MethodCSS,
		MaxIterations: 500,
		Tolerance:     1e-6,
	}
	return opt
}

// monthlySeries simulates a noisy annual cycle starting at start
func monthlySeries(t *testing.T, start time.Time, n int, seed uint64) *timedataset.TimeDataset {
	t.Helper()
	tSeries := timedataset.MonthRange(start, n)
	y := timedataset.GenerateConstY(n, 12.0).
		Add(timedataset.GenerateSeasonalY(tSeries, 10.0, time.July)).
		Add(timedataset.GenerateNoise(n, 0.5, seed))

	td, err := timedataset.NewUnivariateDataset(tSeries, y)
	require.Nil(t, err)
	return td
}

func TestHorizon(t *testing.T) {
	testData := map[string]struct {
		last       time.Time
		targetYear int
		expected   int
	}{
		"december": {
			last:       time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC),
			targetYear: 2040,
			expected:   240,
		},
		"june": {
			last:       time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC),
			targetYear: 2040,
			expected:   306,
		},
		"berkeley last date": {
			last:       time.Date(2013, 9, 1, 0, 0, 0, 0, time.UTC),
			targetYear: 2040,
			expected:   327,
		},
		"same year december": {
			last:       time.Date(2040, 12, 1, 0, 0, 0, 0, time.UTC),
			targetYear: 2040,
			expected:   0,
		},
		"same year january": {
			last:       time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC),
			targetYear: 2040,
			expected:   11,
		},
		"past target": {
			last:       time.Date(2041, 3, 1, 0, 0, 0, 0, time.UTC),
			targetYear: 2040,
			expected:   -3,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, Horizon(td.last, td.targetYear))
		})
	}
}

func TestForecastDates(t *testing.T) {
	last := time.Date(2013, 11, 1, 0, 0, 0, 0, time.UTC)
	jst := time.FixedZone("JST", 9*3600)

	testData := map[string]struct {
		last       time.Time
		horizon    int
		startAfter bool
		expected   []time.Time
	}{
		"non-positive horizon": {
			last:     last,
			horizon:  0,
			expected: []time.Time{},
		},
		"inclusive start": {
			last:    last,
			horizon: 3,
			expected: []time.Time{
				time.Date(2013, 11, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2013, 12, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		"start after last date": {
			last:       last,
			horizon:    2,
			startAfter: true,
			expected: []time.Time{
				time.Date(2013, 12, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		"last date east of utc": {
			last:    time.Date(2040, 12, 1, 0, 0, 0, 0, jst),
			horizon: 2,
			expected: []time.Time{
				time.Date(2040, 12, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2041, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, ForecastDates(td.last, td.horizon, td.startAfter))
		})
	}
}

func TestForecastNonUTCSeries(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	n := 60
	tSeries := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		tSeries = append(tSeries, time.Date(2036, time.January+time.Month(i), 1, 0, 0, 0, 0, jst))
	}
	y := timedataset.GenerateConstY(n, 12.0).
		Add(timedataset.GenerateSeasonalY(timedataset.MonthRange(tSeries[0], n), 10.0, time.July)).
		Add(timedataset.GenerateNoise(n, 0.5, 11))
	series, err := timedataset.NewUnivariateDataset(tSeries, y)
	require.Nil(t, err)

	f, err := New(cssOptions())
	require.Nil(t, err)

	res, err := f.ForecastTo(context.Background(), series, 2042)
	require.Nil(t, err)
	assert.Equal(t, 24, res.Horizon)

	for _, m := range res.Models() {
		require.False(t, m.Failed(), m.Err)
		require.Len(t, m.T, 24)
		assert.Equal(t, res.LastDate.Year(), m.T[0].Year())
		assert.Equal(t, res.LastDate.Month(), m.T[0].Month())
	}
}

func TestNew(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)
	assert.Equal(t, DefaultTargetYear, f.Options().TargetYear)
	assert.Equal(t, "(1,1,1)", f.Options().PrimaryOrder.String())
	assert.Equal(t, "(1,1,1)(1,1,1,12)", f.Options().SeasonalOrder.String())

	testData := map[string]struct {
		mutate func(*Options)
		err    error
	}{
		"invalid primary": {
			mutate: func(o *Options) { o.PrimaryOrder = arima.NewOrder(-1, 1, 1) },
			err:    arima.ErrInvalidOrder,
		},
		"invalid seasonal": {
			mutate: func(o *Options) { o.SeasonalOrder = arima.NewSeasonalOrder(1, 1, 1, 1, 1, 1, -12) },
			err:    arima.ErrInvalidOrder,
		},
		"invalid fallback": {
			mutate: func(o *Options) {
				fallback := arima.NewOrder(0, -1, 0)
				o.FallbackOrder = &fallback
			},
			err: arima.ErrInvalidOrder,
		},
		"invalid target year": {
			mutate: func(o *Options) { o.TargetYear = 0 },
			err:    ErrInvalidOptions,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultOptions()
			td.mutate(opt)
			_, err := New(opt)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestForecastEmpty(t *testing.T) {
	f, err := New(cssOptions())
	require.Nil(t, err)

	testData := map[string]*timedataset.TimeDataset{
		"nil series":   nil,
		"empty series": timedataset.Empty(),
	}

	for name, series := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := f.Forecast(context.Background(), series)
			require.Nil(t, err)
			require.NotNil(t, res)
			assert.True(t, res.Empty())
			assert.Equal(t, 0, res.Horizon)
			assert.False(t, res.Primary.Failed())
			assert.False(t, res.Seasonal.Failed())
			assert.Empty(t, res.Primary.T)
			assert.Empty(t, res.Seasonal.T)
		})
	}
}

func TestForecastNonPositiveHorizon(t *testing.T) {
	f, err := New(cssOptions())
	require.Nil(t, err)

	series := monthlySeries(t, time.Date(2038, 1, 1, 0, 0, 0, 0, time.UTC), 48, 3)
	res, err := f.ForecastTo(context.Background(), series, 2040)
	require.Nil(t, err)

	assert.Equal(t, time.Date(2041, 12, 1, 0, 0, 0, 0, time.UTC), res.LastDate)
	assert.Equal(t, -12, res.Horizon)
	assert.True(t, res.Empty())
	assert.Nil(t, res.Primary.Params)
	assert.Nil(t, res.Seasonal.Params)
}

func TestForecast(t *testing.T) {
	opt := cssOptions()
	opt.TargetYear = 2012
	f, err := New(opt)
	require.Nil(t, err)

	series := monthlySeries(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 120, 11)
	input := series.Copy()

	res, err := f.Forecast(context.Background(), series)
	require.Nil(t, err)
	require.NotNil(t, res)

	assert.Equal(t, input, series, "input series must not be modified")
	assert.Equal(t, 2012, res.TargetYear)
	assert.Equal(t, time.Date(2009, 12, 1, 0, 0, 0, 0, time.UTC), res.LastDate)
	assert.Equal(t, 36, res.Horizon)
	assert.False(t, res.Empty())

	expectedDates := ForecastDates(res.LastDate, res.Horizon, false)
	for _, m := range res.Models() {
		require.False(t, m.Failed(), m.Err)
		assert.Len(t, m.Forecast, res.Horizon)
		assert.Equal(t, expectedDates, m.T)
		assert.Equal(t, res.LastDate, m.T[0])
		require.NotNil(t, m.Params)
		assert.Equal(t, arima.MethodCSS, m.Params.Method)
		assert.False(t, m.Substituted)
		for _, v := range m.Forecast {
			assert.False(t, math.IsNaN(v))
		}
	}
	assert.Equal(t, PrimaryModelName, res.Primary.Name)
	assert.Equal(t, SeasonalModelName, res.Seasonal.Name)
	assert.Equal(t, opt.PrimaryOrder, res.Primary.Params.Order)
	assert.Equal(t, opt.SeasonalOrder, res.Seasonal.Params.Order)
}

func TestForecastStartAfterLastDate(t *testing.T) {
	opt := cssOptions()
	opt.TargetYear = 2010
	opt.StartAfterLastDate = true
	f, err := New(opt)
	require.Nil(t, err)

	series := monthlySeries(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 120, 5)
	res, err := f.Forecast(context.Background(), series)
	require.Nil(t, err)

	require.Len(t, res.Primary.T, 12)
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), res.Primary.T[0])
	assert.Equal(t, time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC), res.Primary.T[11])
}

func TestForecastIndependentFailure(t *testing.T) {
	f, err := New(cssOptions())
	require.Nil(t, err)

	// too short to seasonally difference and still estimate the seasonal terms
	series := monthlySeries(t, time.Date(2012, 2, 1, 0, 0, 0, 0, time.UTC), 20, 9)
	res, err := f.Forecast(context.Background(), series)
	require.Nil(t, err)

	require.True(t, res.Seasonal.Failed())
	assert.Contains(t, res.Seasonal.Err, arima.ErrInsufficientData.Error())
	assert.Nil(t, res.Seasonal.Forecast)
	assert.Nil(t, res.Seasonal.Params)

	require.False(t, res.Primary.Failed(), res.Primary.Err)
	assert.Len(t, res.Primary.Forecast, res.Horizon)
	assert.False(t, res.Empty())
}

func TestForecastFallbackOrder(t *testing.T) {
	opt := cssOptions()
	fallback := arima.NewOrder(0, 1, 0)
	opt.FallbackOrder = &fallback
	f, err := New(opt)
	require.Nil(t, err)

	series := monthlySeries(t, time.Date(2012, 2, 1, 0, 0, 0, 0, time.UTC), 20, 9)
	res, err := f.Forecast(context.Background(), series)
	require.Nil(t, err)

	require.False(t, res.Seasonal.Failed(), res.Seasonal.Err)
	assert.True(t, res.Seasonal.Substituted)
	assert.Equal(t, fallback, res.Seasonal.Order)
	assert.Len(t, res.Seasonal.Forecast, res.Horizon)
	for _, v := range res.Seasonal.Forecast {
		assert.InDelta(t, series.Y[len(series.Y)-1], v, 1e-9)
	}

	assert.False(t, res.Primary.Substituted)
	assert.Equal(t, opt.PrimaryOrder, res.Primary.Order)
}

func TestNewKeepsCallerOptions(t *testing.T) {
	opt := NewDefaultOptions()
	opt.ModelOptions = nil

	f, err := New(opt)
	require.Nil(t, err)
	assert.Nil(t, opt.ModelOptions)
	assert.NotNil(t, f.Options().ModelOptions)
}

func TestFitModelCanceled(t *testing.T) {
	opt := cssOptions()
	fallback := arima.NewOrder(0, 1, 0)
	opt.FallbackOrder = &fallback
	f, err := New(opt)
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	series := monthlySeries(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 120, 1)
	mf := f.fitModel(ctx, zerolog.Nop(), PrimaryModelName, opt.PrimaryOrder, series.Y, 12, nil)
	assert.True(t, mf.Failed())
	assert.False(t, mf.Substituted)
	assert.Contains(t, mf.Err, context.Canceled.Error())
	assert.Nil(t, mf.Forecast)
}

func TestForecastCanceled(t *testing.T) {
	f, err := New(cssOptions())
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	series := monthlySeries(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 120, 1)
	res, err := f.Forecast(ctx, series)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestForecastSeasonalTracksPeriodicity(t *testing.T) {
	if testing.Short() {
		t.Skip("exact likelihood fit of the seasonal model")
	}

	opt := NewDefaultOptions()
	opt.TargetYear = 2010
	f, err := New(opt)
	require.Nil(t, err)

	full := monthlySeries(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 132, 21)
	train, err := timedataset.NewUnivariateDataset(full.T[:120], full.Y[:120])
	require.Nil(t, err)
	holdout := full.Y[120:]

	res, err := f.Forecast(context.Background(), train)
	require.Nil(t, err)
	require.Equal(t, len(holdout), res.Horizon)
	require.False(t, res.Primary.Failed(), res.Primary.Err)
	require.False(t, res.Seasonal.Failed(), res.Seasonal.Err)

	primaryMSE := arima.MSE(res.Primary.Forecast, holdout)
	seasonalMSE := arima.MSE(res.Seasonal.Forecast, holdout)
	assert.Less(t, seasonalMSE, primaryMSE)
	assert.Less(t, seasonalMSE, 4.0)
}
