package forecaster

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-tempcast/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const chartDateFormat = "2006-01-02"

// timeLineData pairs each value with its date for a time x axis, skipping NaN values
func timeLineData(t []time.Time, y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(y))
	for i := 0; i < len(y) && i < len(t); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		data = append(data, opts.LineData{Value: []interface{}{t[i].Format(chartDateFormat), y[i]}})
	}
	return data
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	for i, series := range seriesName {
		if i >= len(y) {
			break
		}
		line.AddSeries(series, timeLineData(t, y[i]))
	}
	return line
}

// LineForecaster generates an echart line chart of the observed series followed by each model's
// forecast.
func LineForecaster(country string, series *timedataset.TimeDataset, res *Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    fmt.Sprintf("%s Average Temperature", country),
				Subtitle: fmt.Sprintf("forecast to %d", res.TargetYear),
			},
		),
		charts.WithXAxisOpts(opts.XAxis{Type: "time", Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "°C"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	if series != nil {
		line.AddSeries("Actual", timeLineData(series.T, series.Y))
	}
	for _, m := range res.Models() {
		if m == nil || m.Len() == 0 {
			continue
		}
		line.AddSeries(
			fmt.Sprintf("%s %s", m.Name, m.Order),
			timeLineData(m.T, m.Forecast),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
		)
	}
	return line
}

// PlotForecast renders an html page holding the forecast chart of a country
func PlotForecast(w io.Writer, country string, series *timedataset.TimeDataset, res *Results) error {
	if res == nil {
		return ErrNilResults
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s temperature forecast", country)
	page.AddCharts(LineForecaster(country, series, res))
	return page.Render(w)
}
