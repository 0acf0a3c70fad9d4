package config

import (
	forecaster "github.com/aouyang1/go-tempcast"
	"github.com/aouyang1/go-tempcast/arima"
	"github.com/aouyang1/go-tempcast/timedataset"
	"github.com/rs/zerolog"
)

// CSVOptions converts the data section into loader options
func (c *DataConfig) CSVOptions() *timedataset.CSVOptions {
	opt := timedataset.DefaultCSVOptions()
	opt.DateColumn = c.DateColumn
	opt.ValueColumn = c.ValueColumn
	opt.CountryColumn = c.CountryColumn
	if len(c.DateFormats) > 0 {
		opt.DateFormats = append([]string(nil), c.DateFormats...)
	}
	return opt
}

// ForecasterOptions converts the forecast section into forecaster options logging to logger
func (c *ForecastConfig) ForecasterOptions(logger zerolog.Logger) (*forecaster.Options, error) {
	fallback, err := c.FallbackOrder()
	if err != nil {
		return nil, err
	}

	opt := forecaster.NewDefaultOptions()
	opt.TargetYear = c.TargetYear
	opt.SeasonalOrder.S = c.SeasonalPeriod
	opt.ModelOptions = &arima.Options{
		Method:        arima.Method(c.Method),
		MaxIterations: c.MaxIterations,
		Tolerance:     c.Tolerance,
	}
	opt.FallbackOrder = fallback
	opt.StartAfterLastDate = c.StartAfterLastDate
	opt.Logger = logger
	return opt, nil
}
