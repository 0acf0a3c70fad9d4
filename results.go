package forecaster

import (
	"fmt"
	"io"
	"time"

	"github.com/aouyang1/go-tempcast/arima"
)

// ModelForecast is the point forecast of one model. Forecast is nil when the fit failed and
// Err holds the reason.
type ModelForecast struct {
	Name        string        `json:"name"`
	Order       arima.Order   `json:"order"`
	T           []time.Time   `json:"time"`
	Forecast    []float64     `json:"forecast"`
	Params      *arima.Params `json:"params,omitempty"`
	Err         string        `json:"error,omitempty"`
	Substituted bool          `json:"substituted,omitempty"`
}

func newModelForecast(name string, order arima.Order) *ModelForecast {
	return &ModelForecast{
		Name:  name,
		Order: order,
		T:     []time.Time{},
	}
}

// Failed reports whether the model could not produce a forecast
func (m *ModelForecast) Failed() bool {
	return m == nil || m.Err != ""
}

// Len returns the number of forecast points
func (m *ModelForecast) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Forecast)
}

// Results holds the forecasts of the primary and seasonal models over the same dates
type Results struct {
	TargetYear int            `json:"target_year"`
	LastDate   time.Time      `json:"last_date"`
	Horizon    int            `json:"horizon"`
	Primary    *ModelForecast `json:"primary"`
	Seasonal   *ModelForecast `json:"seasonal"`
}

// Empty reports whether neither model has anything to show
func (r *Results) Empty() bool {
	if r == nil {
		return true
	}
	return r.Primary.Len() == 0 && r.Seasonal.Len() == 0
}

// Models returns the primary and seasonal forecasts in display order
func (r *Results) Models() []*ModelForecast {
	if r == nil {
		return nil
	}
	return []*ModelForecast{r.Primary, r.Seasonal}
}

// TablePrint writes a summary of the horizon and each model's fit
func (r *Results) TablePrint(w io.Writer) error {
	if r == nil {
		return ErrNilResults
	}
	last := "n/a"
	if !r.LastDate.IsZero() {
		last = r.LastDate.Format("2006-01")
	}
	if _, err := fmt.Fprintf(w, "Target Year: %d  Last Observation: %s  Horizon: %d months\n",
		r.TargetYear, last, r.Horizon); err != nil {
		return err
	}
	for _, m := range r.Models() {
		if m == nil {
			continue
		}
		status := fmt.Sprintf("%d points", m.Len())
		if m.Substituted {
			status += ", substituted"
		}
		if m.Failed() {
			status = "failed: " + m.Err
		}
		if _, err := fmt.Fprintf(w, "  %s %s: %s\n", m.Name, m.Order, status); err != nil {
			return err
		}
		if m.Params != nil {
			if err := m.Params.TablePrint(w, "", "  ", 2); err != nil {
				return err
			}
		}
	}
	return nil
}
