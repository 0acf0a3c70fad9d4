package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	forecaster "github.com/aouyang1/go-tempcast"
	"github.com/aouyang1/go-tempcast/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixtures writes a small temperature csv and a config pointing at it
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	tSeries := timedataset.MonthRange(time.Date(1998, 1, 1, 0, 0, 0, 0, time.UTC), 189)
	obs := timedataset.GenerateTemperatureObservations("Norway", tSeries, 1.5, 8.0, 3)
	obs = append(obs, timedataset.GenerateTemperatureObservations("Chile", tSeries, 10.0, 5.0, 4)...)

	var buf bytes.Buffer
	buf.WriteString("dt,AverageTemperature,AverageTemperatureUncertainty,Country\n")
	for _, o := range obs {
		fmt.Fprintf(&buf, "%s,%.3f,0.3,%s\n", o.Date.Format("2006-01-02"), o.Value, o.Country)
	}
	dataPath := filepath.Join(dir, "temps.csv")
	require.Nil(t, os.WriteFile(dataPath, buf.Bytes(), 0o644))

	cfg := fmt.Sprintf(`data:
  path: %s
forecast:
  target_year: 2015
  method: css
  max_iterations: 300
  tolerance: 0.000001
cache:
  enabled: false
logging:
  level: error
  output_path: %s
`, dataPath, filepath.Join(dir, "tempcast.log"))
	cfgPath := filepath.Join(dir, "tempcast.yaml")
	require.Nil(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func TestRunUsage(t *testing.T) {
	cfgPath := writeFixtures(t)

	testData := map[string]struct {
		args []string
		code int
	}{
		"no command":      {[]string{"-config", cfgPath}, 2},
		"unknown command": {[]string{"-config", cfgPath, "train"}, 2},
		"unknown flag":    {[]string{"-verbose"}, 2},
		"unknown profile": {[]string{"-profile", "block", "countries"}, 2},
		"missing country": {[]string{"-config", cfgPath, "forecast"}, 2},
		"missing config":  {[]string{"-config", filepath.Join(t.TempDir(), "nope.yaml"), "countries"}, 1},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(td.args, &stdout, &stderr)
			assert.Equal(t, td.code, code, stderr.String())
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunCountries(t *testing.T) {
	cfgPath := writeFixtures(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "countries"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Chile\nNorway\n", stdout.String())
}

func TestRunForecast(t *testing.T) {
	cfgPath := writeFixtures(t)
	outDir := t.TempDir()
	htmlPath := filepath.Join(outDir, "norway.html")
	jsonPath := filepath.Join(outDir, "norway.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-config", cfgPath, "forecast",
		"-country", "Norway", "-out", htmlPath, "-json", jsonPath,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	// last observation 2013-09, target 2015
	assert.True(t, strings.HasPrefix(stdout.String(), "Target Year: 2015  Last Observation: 2013-09  Horizon: 27 months"), stdout.String())

	b, err := os.ReadFile(jsonPath)
	require.Nil(t, err)
	var res forecaster.Results
	require.Nil(t, json.Unmarshal(b, &res))
	assert.Equal(t, 27, res.Horizon)
	assert.Equal(t, 27, res.Primary.Len())
	assert.Equal(t, 27, res.Seasonal.Len())

	html, err := os.ReadFile(htmlPath)
	require.Nil(t, err)
	assert.Contains(t, string(html), "Norway")
}

func TestRunForecastJSONStdout(t *testing.T) {
	cfgPath := writeFixtures(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-config", cfgPath, "forecast",
		"-country", "Chile", "-target-year", "2014", "-json", "-",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var res forecaster.Results
	require.Nil(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Equal(t, 2014, res.TargetYear)
	assert.Equal(t, 15, res.Horizon)
}

func TestRunForecastUnknownCountry(t *testing.T) {
	cfgPath := writeFixtures(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "forecast", "-country", "Atlantis"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Atlantis")
}
