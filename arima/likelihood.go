package arima

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	errNonPositiveVariance = errors.New("non-positive prediction variance")
	errNonStationary       = errors.New("state covariance did not converge")
)

const (
	maxDoublings      = 64
	doublingTolerance = 1e-14
)

// cssResiduals runs the ARMA recursion e_t = w_t - sum(a_i w_{t-i}) - sum(b_j e_{t-j})
// conditioning on the first cond observations, whose residuals are left at zero. cond must
// be at least len(ar).
func cssResiduals(w, ar, ma []float64, cond int) []float64 {
	n := len(w)
	e := make([]float64, n)
	for t := cond; t < n; t++ {
		v := w[t]
		for i, a := range ar {
			v -= a * w[t-1-i]
		}
		for j, b := range ma {
			if t-1-j < 0 {
				break
			}
			v -= b * e[t-1-j]
		}
		e[t] = v
	}
	return e
}

// cssLogLik is the conditional gaussian log likelihood with the innovation variance
// concentrated out. The first cond observations are conditioned on.
func cssLogLik(w, ar, ma []float64, cond int) (float64, float64, error) {
	cond = max(cond, len(ar))
	m := len(w) - cond
	if m <= 0 {
		return 0, 0, ErrInsufficientData
	}
	e := cssResiduals(w, ar, ma, cond)
	var ssr float64
	for _, v := range e[cond:] {
		ssr += v * v
	}
	sigma2 := ssr / float64(m)
	if !(sigma2 > 0) || math.IsInf(sigma2, 0) {
		return 0, 0, errNonPositiveVariance
	}
	ll := -0.5 * float64(m) * (math.Log(2*math.Pi*sigma2) + 1)
	return ll, sigma2, nil
}

// exactLogLik evaluates the exact gaussian log likelihood of a zero mean ARMA process
// through a Kalman filter on its state space form
//
//	w_t     = Z x_t,            Z = [1 0 ... 0]
//	x_{t+1} = T x_t + R e_{t+1}
//
// where T carries the AR coefficients in its first column and ones on the super diagonal
// and R = [1 b_1 ... b_{r-1}]. The filter runs with unit innovation variance so sigma2 is
// concentrated out of the likelihood.
func exactLogLik(w, ar, ma []float64) (float64, float64, error) {
	n := len(w)
	if n == 0 {
		return 0, 0, ErrInsufficientData
	}
	r := max(len(ar), len(ma)+1)
	phi := make([]float64, r)
	copy(phi, ar)
	rv := make([]float64, r)
	rv[0] = 1
	copy(rv[1:], ma)

	p, err := stationaryCov(phi, rv)
	if err != nil {
		return 0, 0, err
	}

	state := make([]float64, r)
	upd := make([]float64, r)
	pc := make([]float64, r)
	pu := make([]float64, r*r)
	tp := make([]float64, r*r)

	var sumLogF, sumV2F float64
	for t := 0; t < n; t++ {
		f := p[0]
		if !(f > 0) || math.IsInf(f, 0) {
			return 0, 0, errNonPositiveVariance
		}
		v := w[t] - state[0]
		sumLogF += math.Log(f)
		sumV2F += v * v / f

		// measurement update
		for i := 0; i < r; i++ {
			pc[i] = p[i*r]
		}
		for i := 0; i < r; i++ {
			upd[i] = state[i] + pc[i]*v/f
			for j := 0; j < r; j++ {
				pu[i*r+j] = p[i*r+j] - pc[i]*pc[j]/f
			}
		}

		// time update, exploiting the companion structure of T
		for i := 0; i < r; i++ {
			state[i] = phi[i] * upd[0]
			if i+1 < r {
				state[i] += upd[i+1]
			}
		}
		for i := 0; i < r; i++ {
			for j := 0; j < r; j++ {
				val := phi[i] * pu[j]
				if i+1 < r {
					val += pu[(i+1)*r+j]
				}
				tp[i*r+j] = val
			}
		}
		for i := 0; i < r; i++ {
			for j := 0; j < r; j++ {
				val := tp[i*r]*phi[j] + rv[i]*rv[j]
				if j+1 < r {
					val += tp[i*r+j+1]
				}
				p[i*r+j] = val
			}
		}
	}

	nf := float64(n)
	sigma2 := sumV2F / nf
	if !(sigma2 > 0) || math.IsInf(sigma2, 0) {
		return 0, 0, errNonPositiveVariance
	}
	ll := -0.5 * (nf*math.Log(2*math.Pi) + sumLogF + nf*math.Log(sigma2) + nf)
	return ll, sigma2, nil
}

// stationaryCov solves the discrete Lyapunov equation P = T P T' + R R' for the
// unconditional state covariance with the doubling iteration
//
//	P_{k+1} = P_k + A_k P_k A_k',  A_{k+1} = A_k A_k
//
// starting from P_0 = R R' and A_0 = T. The result is returned row-major.
func stationaryCov(phi, rv []float64) ([]float64, error) {
	r := len(phi)
	a := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		a.Set(i, 0, phi[i])
		if i+1 < r {
			a.Set(i, i+1, 1)
		}
	}
	p := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			p.Set(i, j, rv[i]*rv[j])
		}
	}

	var ap, apa, aa mat.Dense
	converged := false
	for iter := 0; iter < maxDoublings; iter++ {
		ap.Mul(a, p)
		apa.Mul(&ap, a.T())
		p.Add(p, &apa)
		if mat.Norm(&apa, 1) <= doublingTolerance*mat.Norm(p, 1) {
			converged = true
			break
		}
		aa.Mul(a, a)
		a.Copy(&aa)
	}
	if !converged {
		return nil, errNonStationary
	}

	raw := p.RawMatrix()
	res := make([]float64, r*r)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			v := raw.Data[i*raw.Stride+j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errNonStationary
			}
			res[i*r+j] = v
		}
	}
	return res, nil
}
