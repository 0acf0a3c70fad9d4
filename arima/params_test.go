package arima

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsTablePrint(t *testing.T) {
	p := Params{
		Order:      NewSeasonalOrder(1, 1, 1, 1, 1, 1, 12),
		Method:     MethodCSS,
		AR:         []float64{0.25},
		MA:         []float64{-0.5},
		SeasonalAR: []float64{0.1},
		SeasonalMA: []float64{-0.8},
		Sigma2:     1.2,
		LogLik:     -300.5,
		AIC:        611,
		BIC:        625.2,
		NObs:       200,
		Converged:  true,
		Scores:     &Scores{MSE: 1.1, MAPE: 0.2, R2: 0.9},
	}

	var buf bytes.Buffer
	require.Nil(t, p.TablePrint(&buf, "", "  ", 1))
	out := buf.String()

	assert.Contains(t, out, "  Model: "+p.Order.String()+"  Method: css  Converged: true\n")
	assert.Contains(t, out, "Observations: 200")
	assert.Contains(t, out, "MAPE: 0.200")
	assert.Contains(t, out, "seasonal_ma")
	assert.Contains(t, out, "-0.8000")
	assert.NotContains(t, out, "mean")
}
