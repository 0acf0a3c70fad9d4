package arima

import "math"

// constrain maps an unconstrained vector onto the coefficients of a stationary
// autoregressive polynomial. Each value is squashed into a partial autocorrelation in
// (-1, 1) and the Durbin-Levinson recursion turns the partial autocorrelations into
// lag coefficients.
func constrain(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}
	phi := make([]float64, n)
	prev := make([]float64, n)
	for k := 0; k < n; k++ {
		r := x[k] / math.Sqrt(1+x[k]*x[k])
		copy(prev, phi)
		for j := 0; j < k; j++ {
			phi[j] = prev[j] - r*prev[k-1-j]
		}
		phi[k] = r
	}
	return phi
}

// unconstrain is the inverse of constrain. It returns false when the coefficients do not
// describe a stationary polynomial.
func unconstrain(phi []float64) ([]float64, bool) {
	n := len(phi)
	if n == 0 {
		return nil, true
	}
	cur := make([]float64, n)
	copy(cur, phi)

	pacf := make([]float64, n)
	for k := n - 1; k >= 0; k-- {
		r := cur[k]
		if math.IsNaN(r) || math.Abs(r) >= 1 {
			return nil, false
		}
		pacf[k] = r
		prev := make([]float64, k)
		for j := 0; j < k; j++ {
			prev[j] = (cur[j] + r*cur[k-1-j]) / (1 - r*r)
		}
		cur = prev
	}

	x := make([]float64, n)
	for i, r := range pacf {
		x[i] = r / math.Sqrt(1-r*r)
	}
	return x, true
}

func negate(x []float64) []float64 {
	res := make([]float64, len(x))
	for i, v := range x {
		res[i] = -v
	}
	return res
}
