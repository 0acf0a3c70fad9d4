package arima

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// lstsq solves the least squares problem min ||x*b - y|| through a QR factorization.
// Each row of x is one observation.
func lstsq(x [][]float64, y []float64) ([]float64, error) {
	m := len(x)
	if m == 0 || m != len(y) {
		return nil, fmt.Errorf("design has %d rows and target has %d, %w", m, len(y), ErrResLenMismatch)
	}
	n := len(x[0])
	if m < n {
		return nil, ErrInsufficientData
	}
	design := mat.NewDense(m, n, nil)
	for i, row := range x {
		design.SetRow(i, row)
	}
	target := mat.NewVecDense(m, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(design)

	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, target); err != nil {
		return nil, fmt.Errorf("unable to solve least squares, %w", err)
	}
	return mat.Col(nil, 0, &coef), nil
}

// hannanRissanen estimates starting non-seasonal AR and MA coefficients. A long
// autoregression approximates the innovations which then enter a second regression as
// lagged regressors next to the lagged series.
func hannanRissanen(w []float64, p, q int) ([]float64, []float64, error) {
	if p == 0 && q == 0 {
		return nil, nil, nil
	}

	resid := make([]float64, len(w))
	start := p
	if q > 0 {
		long := max(p+q, min(len(w)/4, 20))
		longCoef, err := regressLags(w, nil, long, 0)
		if err != nil {
			return nil, nil, err
		}
		for t := long; t < len(w); t++ {
			pred := 0.0
			for i, c := range longCoef {
				pred += c * w[t-1-i]
			}
			resid[t] = w[t] - pred
		}
		start = long + q
	}

	coef, err := regressLags(w, resid, p, q, start)
	if err != nil {
		return nil, nil, err
	}
	return coef[:p], coef[p:], nil
}

// regressLags regresses w_t on w_{t-1..t-p} and e_{t-1..t-q} for t >= start, where
// start defaults to p when omitted.
func regressLags(w, e []float64, p, q int, start ...int) ([]float64, error) {
	from := p
	if len(start) > 0 {
		from = max(start[0], p)
	}
	if from >= len(w) || p+q == 0 {
		return nil, ErrInsufficientData
	}

	x := make([][]float64, 0, len(w)-from)
	y := make([]float64, 0, len(w)-from)
	for t := from; t < len(w); t++ {
		row := make([]float64, 0, p+q)
		for i := 1; i <= p; i++ {
			row = append(row, w[t-i])
		}
		for j := 1; j <= q; j++ {
			row = append(row, e[t-j])
		}
		x = append(x, row)
		y = append(y, w[t])
	}
	return lstsq(x, y)
}
