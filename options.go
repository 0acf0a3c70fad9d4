package forecaster

import (
	"github.com/aouyang1/go-tempcast/arima"
	"github.com/rs/zerolog"
)

const (
	DefaultTargetYear = 2040
	// DefaultPeriod is the seasonal period of monthly data
	DefaultPeriod = 12

	PrimaryModelName  = "primary"
	SeasonalModelName = "seasonal"
)

// Options configures both models fit by a Forecaster
type Options struct {
	TargetYear    int            `json:"target_year"`
	PrimaryOrder  arima.Order    `json:"primary_order"`
	SeasonalOrder arima.Order    `json:"seasonal_order"`
	ModelOptions  *arima.Options `json:"model_options"`

	// FallbackOrder is fit in place of a model whose own order fails. Nil disables substitution.
	FallbackOrder *arima.Order `json:"fallback_order,omitempty"`

	// StartAfterLastDate begins forecast dates one month after the last observation instead of
	// at it
	StartAfterLastDate bool `json:"start_after_last_date"`

	Logger zerolog.Logger `json:"-"`
}

// NewDefaultOptions returns an ARIMA(1,1,1) primary model and a SARIMA(1,1,1)(1,1,1,12) seasonal
// model forecasting out to 2040
func NewDefaultOptions() *Options {
	return &Options{
		TargetYear:    DefaultTargetYear,
		PrimaryOrder:  arima.NewOrder(1, 1, 1),
		SeasonalOrder: arima.NewSeasonalOrder(1, 1, 1, 1, 1, 1, DefaultPeriod),
		ModelOptions:  arima.NewDefaultOptions(),
		Logger:        zerolog.Nop(),
	}
}
