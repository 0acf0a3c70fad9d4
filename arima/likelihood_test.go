package arima

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactLogLikWhiteNoise(t *testing.T) {
	w := simulateARMA(200, nil, nil, 2.0, 31)

	exact, exactSigma2, err := exactLogLik(w, nil, nil)
	require.Nil(t, err)
	css, cssSigma2, err := cssLogLik(w, nil, nil, 0)
	require.Nil(t, err)

	assert.InDelta(t, css, exact, 1e-9)
	assert.InDelta(t, cssSigma2, exactSigma2, 1e-12)
}

func TestExactLogLikAR1(t *testing.T) {
	phi := 0.7
	w := simulateARMA(150, []float64{phi}, nil, 1.0, 41)
	n := float64(len(w))

	// closed form of the exact AR(1) likelihood with concentrated variance
	ssr := w[0] * w[0] * (1 - phi*phi)
	for i := 1; i < len(w); i++ {
		d := w[i] - phi*w[i-1]
		ssr += d * d
	}
	sigma2 := ssr / n
	expected := -0.5 * (n*math.Log(2*math.Pi) + math.Log(1/(1-phi*phi)) + n*math.Log(sigma2) + n)

	ll, s2, err := exactLogLik(w, []float64{phi}, nil)
	require.Nil(t, err)
	assert.InDelta(t, expected, ll, 1e-8)
	assert.InDelta(t, sigma2, s2, 1e-10)
}

func TestExactLogLikMA1(t *testing.T) {
	theta := 0.4
	w := simulateARMA(400, nil, []float64{theta}, 1.0, 43)

	// the exact likelihood peaks near the generating coefficient
	best := math.Inf(-1)
	bestTheta := 0.0
	for th := -0.9; th <= 0.9; th += 0.05 {
		ll, _, err := exactLogLik(w, nil, []float64{th})
		require.Nil(t, err)
		if ll > best {
			best = ll
			bestTheta = th
		}
	}
	assert.InDelta(t, theta, bestTheta, 0.15)
}

func TestStationaryCov(t *testing.T) {
	testData := map[string]struct {
		phi      []float64
		rv       []float64
		expected []float64
	}{
		"white noise": {
			phi:      []float64{0},
			rv:       []float64{1},
			expected: []float64{1},
		},
		"ar1": {
			phi:      []float64{0.5},
			rv:       []float64{1},
			expected: []float64{1 / (1 - 0.25)},
		},
		"ma1": {
			phi: []float64{0, 0},
			rv:  []float64{1, 0.5},
			// x_t = [w_t, 0.5 e_t]
			expected: []float64{1.25, 0.5, 0.5, 0.25},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p, err := stationaryCov(td.phi, td.rv)
			require.Nil(t, err)
			assert.InDeltaSlice(t, td.expected, p, 1e-10)
		})
	}
}

func TestStationaryCovUnitRoot(t *testing.T) {
	_, err := stationaryCov([]float64{1.0}, []float64{1})
	assert.ErrorIs(t, err, errNonStationary)
}

func TestCSSLogLikInsufficient(t *testing.T) {
	_, _, err := cssLogLik([]float64{1}, []float64{0.5}, nil, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCSSLogLikZeroCoefficient(t *testing.T) {
	w := simulateARMA(200, []float64{0.5}, nil, 1.0, 7)

	// a zero coefficient is trimmed from the expanded polynomial but keeps its lag conditioned on
	zero, _, err := cssLogLik(w, expandAR([]float64{0}, nil, 0), nil, 1)
	require.Nil(t, err)
	near, _, err := cssLogLik(w, expandAR([]float64{1e-9}, nil, 0), nil, 1)
	require.Nil(t, err)
	assert.InDelta(t, near, zero, 1e-4)

	e := cssResiduals(w, nil, nil, 1)
	assert.Equal(t, 0.0, e[0])
	assert.Equal(t, w[1], e[1])
}
