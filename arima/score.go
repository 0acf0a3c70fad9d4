package arima

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scores are in-sample accuracy measures of the one step ahead fitted values
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores compares predicted against actual, skipping any pair with a NaN.
func NewScores(predicted, actual []float64) (*Scores, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	pred := make([]float64, 0, len(predicted))
	act := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		pred = append(pred, predicted[i])
		act = append(act, actual[i])
	}

	s := &Scores{
		MSE:  MSE(pred, act),
		MAPE: MAPE(pred, act),
		R2:   1.0,
	}
	if len(act) > 1 {
		if r2 := stat.RSquaredFrom(pred, act, nil); !math.IsNaN(r2) && !math.IsInf(r2, 0) {
			s.R2 = r2
		}
	}
	return s, nil
}

// MSE is the mean squared error of equal length slices. Empty input scores 0.
func MSE(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var sum float64
	for i, a := range actual {
		d := a - predicted[i]
		sum += d * d
	}
	return sum / float64(len(actual))
}

// MAPE is the mean absolute percent error of equal length slices, ignoring zero actuals.
func MAPE(predicted, actual []float64) float64 {
	var sum float64
	var cnt int
	for i, a := range actual {
		if a == 0 {
			continue
		}
		sum += math.Abs((a - predicted[i]) / a)
		cnt++
	}
	if cnt == 0 {
		return 0
	}
	return sum / float64(cnt)
}
