// Package timedataset holds the monthly temperature observations, the per-country time series
// selected from them, and helpers to load and simulate such data.
package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrMissingValue       = errors.New("series contains a missing value")
)

// TimeDataset is a single country series storing a slice of month start times and values.
// Times are strictly increasing, values are never NaN, and both slices have the same length.
// An empty TimeDataset is valid and means there is nothing to forecast.
type TimeDataset struct {
	T []time.Time `json:"time"`
	Y []float64   `json:"values"`
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if i > 0 && !currT.After(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
		if math.IsNaN(y[i]) {
			return nil, fmt.Errorf("at %d, %w", i, ErrMissingValue)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

// Empty returns a series with no observations
func Empty() *TimeDataset {
	return &TimeDataset{
		T: []time.Time{},
		Y: []float64{},
	}
}

// Len returns the number of observations, treating a nil series as empty
func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.Y)
}

// EndTime returns the last observed time or the zero time for an empty series
func (td *TimeDataset) EndTime() time.Time {
	if td == nil {
		return time.Time{}
	}
	return TimeSlice(td.T).EndTime()
}

// Copy returns a deep copy so callers can hand each consumer its own series
func (td *TimeDataset) Copy() *TimeDataset {
	if td == nil {
		return Empty()
	}
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.T))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}
