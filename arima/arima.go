// Package arima fits seasonal autoregressive integrated moving average models by
// maximum likelihood and produces point forecasts from them.
package arima

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

var errNonFiniteObjective = errors.New("non-finite objective")

// Model is a single-use (p,d,q)(P,D,Q,s) model. It is fit once against a series and then
// forecasts forward from the end of that series.
type Model struct {
	order Order
	opt   *Options

	params *Params

	y      []float64 // training history on the original scale
	w      []float64 // differenced and centered history
	resid  []float64
	fitted []float64

	trained bool
}

// New creates an untrained model of the given order. If no options are provided a default
// is used.
func New(order Order, opt *Options) (*Model, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	switch opt.Method {
	case MethodExact, MethodCSS, "":
	default:
		return nil, fmt.Errorf("%q, %w", opt.Method, ErrUnknownMethod)
	}
	return &Model{order: order, opt: opt}, nil
}

// NewFromParams rebuilds a trained model from previously estimated parameters and the
// history they were estimated on. No optimization is run.
func NewFromParams(params Params, y []float64) (*Model, error) {
	opt := NewDefaultOptions()
	opt.Method = params.Method

	m, err := New(params.Order, opt)
	if err != nil {
		return nil, err
	}
	if err := m.prepare(y); err != nil {
		return nil, err
	}
	p := params
	p.AR = append([]float64(nil), params.AR...)
	p.MA = append([]float64(nil), params.MA...)
	p.SeasonalAR = append([]float64(nil), params.SeasonalAR...)
	p.SeasonalMA = append([]float64(nil), params.SeasonalMA...)
	if len(p.AR) != m.order.P || len(p.MA) != m.order.Q {
		return nil, fmt.Errorf("coefficient count does not match %s, %w", m.order, ErrInvalidOrder)
	}
	if m.order.Seasonal() && (len(p.SeasonalAR) != m.order.SP || len(p.SeasonalMA) != m.order.SQ) {
		return nil, fmt.Errorf("seasonal coefficient count does not match %s, %w", m.order, ErrInvalidOrder)
	}
	m.center(p.Mean)
	m.params = &p
	m.finish()
	return m, nil
}

// Order returns the model order
func (m *Model) Order() Order {
	if m == nil {
		return Order{}
	}
	return m.order
}

// prepare validates and differences the training series
func (m *Model) prepare(y []float64) error {
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value at index %d, %w", i, ErrNonFiniteData)
		}
	}

	poly := m.order.diffPoly()
	k := len(poly) - 1
	nW := len(y) - k

	arLen := m.order.arLags()
	minObs := arLen + m.order.NumParams() + 2
	if nW < minObs {
		return fmt.Errorf(
			"%s needs %d observations but got %d, %w",
			m.order, minObs+k, len(y), ErrInsufficientData,
		)
	}

	m.y = append([]float64(nil), y...)
	m.w = difference(m.y, poly)
	return nil
}

// center removes the process mean from the differenced series
func (m *Model) center(mean float64) {
	if mean == 0 {
		return
	}
	for i := range m.w {
		m.w[i] -= mean
	}
}

// Fit estimates the model coefficients by maximizing the likelihood of the differenced
// series y.
func (m *Model) Fit(y []float64) error {
	return m.FitContext(context.Background(), y)
}

// FitContext is Fit, stopping the optimizer and returning ctx.Err() once ctx ends
func (m *Model) FitContext(ctx context.Context, y []float64) error {
	if m == nil {
		return ErrUninitializedModel
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.prepare(y); err != nil {
		return err
	}

	mean := 0.0
	if !m.order.integrated() {
		mean = stat.Mean(m.w, nil)
	}
	m.center(mean)

	x0 := m.startParams()
	nW := float64(len(m.w))
	cond := m.order.arLags()

	objective := func(x []float64) float64 {
		ar, ma := m.expand(x)
		ll, _, err := m.opt.logLik(m.w, ar, ma, cond)
		if err != nil || math.IsNaN(ll) || math.IsInf(ll, 0) {
			return math.Inf(1)
		}
		return -ll / nW
	}

	x := x0
	converged := true
	if len(x0) > 0 {
		settings := &optimize.Settings{
			MajorIterations: m.opt.MaxIterations,
			Converger: &optimize.FunctionConverge{
				Absolute:   m.opt.Tolerance,
				Iterations: 50,
			},
			Recorder: ctxRecorder{ctx: ctx},
		}
		res, err := optimize.Minimize(optimize.Problem{Func: objective}, x0, settings, &optimize.NelderMead{})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s, %w", m.order, ctxErr)
		}
		if res == nil || math.IsInf(res.F, 0) || math.IsNaN(res.F) {
			if err == nil {
				err = errNonFiniteObjective
			}
			return fmt.Errorf("%s, %v, %w", m.order, err, ErrFitFailure)
		}
		x = res.X
		converged = err == nil && res.Status == optimize.FunctionConvergence
	}

	ar, ma, sar, sma := m.split(x)
	m.params = &Params{
		Order:      m.order,
		Method:     m.method(),
		AR:         ar,
		MA:         ma,
		SeasonalAR: sar,
		SeasonalMA: sma,
		Mean:       mean,
		Converged:  converged,
	}
	if err := m.finishLikelihood(); err != nil {
		return err
	}
	m.finish()
	return nil
}

// ctxRecorder fails the optimization once its context ends
type ctxRecorder struct {
	ctx context.Context
}

func (r ctxRecorder) Init() error { return nil }

func (r ctxRecorder) Record(*optimize.Location, optimize.Operation, *optimize.Stats) error {
	return r.ctx.Err()
}

func (m *Model) method() Method {
	if m.opt.Method == "" {
		return MethodExact
	}
	return m.opt.Method
}

// finishLikelihood records the likelihood and information criteria at the estimate
func (m *Model) finishLikelihood() error {
	ar := expandAR(m.params.AR, m.params.SeasonalAR, m.order.S)
	ma := expandMA(m.params.MA, m.params.SeasonalMA, m.order.S)
	ll, sigma2, err := m.opt.logLik(m.w, ar, ma, m.order.arLags())
	if err != nil {
		return fmt.Errorf("%s, %v, %w", m.order, err, ErrFitFailure)
	}

	k := float64(m.order.NumParams() + 1)
	if !m.order.integrated() {
		k++
	}
	m.params.LogLik = ll
	m.params.Sigma2 = sigma2
	m.params.NObs = len(m.y)
	m.params.AIC = -2*ll + 2*k
	m.params.BIC = -2*ll + k*math.Log(float64(len(m.w)))
	return nil
}

// finish computes residuals, one step ahead fitted values and scores from the parameters
func (m *Model) finish() {
	ar := expandAR(m.params.AR, m.params.SeasonalAR, m.order.S)
	ma := expandMA(m.params.MA, m.params.SeasonalMA, m.order.S)
	cond := m.order.arLags()
	m.resid = cssResiduals(m.w, ar, ma, cond)

	k := len(m.y) - len(m.w)
	m.fitted = make([]float64, len(m.y))
	for i := range m.fitted {
		j := i - k
		if j < cond {
			m.fitted[i] = math.NaN()
			continue
		}
		m.fitted[i] = m.y[i] - m.resid[j]
	}

	if scores, err := NewScores(m.fitted, m.y); err == nil {
		m.params.Scores = scores
	}
	m.trained = true
}

// startParams returns the initial unconstrained optimizer vector
func (m *Model) startParams() []float64 {
	o := m.order
	x := make([]float64, o.NumParams())

	ar, ma, err := hannanRissanen(m.w, o.P, o.Q)
	if err != nil {
		return x
	}
	xar, okAR := unconstrain(ar)
	xma, okMA := unconstrain(negate(ma))
	if okAR {
		copy(x[:o.P], xar)
	}
	if okMA {
		copy(x[o.P:o.P+o.Q], xma)
	}
	return x
}

// split maps the unconstrained optimizer vector to stationary and invertible coefficients
func (m *Model) split(x []float64) (ar, ma, sar, sma []float64) {
	o := m.order
	idx := 0
	take := func(n int) []float64 {
		v := x[idx : idx+n]
		idx += n
		return v
	}
	ar = constrain(take(o.P))
	ma = negate(constrain(take(o.Q)))
	if o.Seasonal() {
		sar = constrain(take(o.SP))
		sma = negate(constrain(take(o.SQ)))
	}
	return ar, ma, sar, sma
}

// expand returns the full lag AR and MA coefficients for the optimizer vector
func (m *Model) expand(x []float64) ([]float64, []float64) {
	ar, ma, sar, sma := m.split(x)
	return expandAR(ar, sar, m.order.S), expandMA(ma, sma, m.order.S)
}

// Predict produces point forecasts for the next steps after the training series.
func (m *Model) Predict(steps int) ([]float64, error) {
	if m == nil {
		return nil, ErrUninitializedModel
	}
	if !m.trained {
		return nil, ErrUntrainedModel
	}
	if steps < 1 {
		return nil, fmt.Errorf("got %d, %w", steps, ErrInvalidSteps)
	}

	ar := expandAR(m.params.AR, m.params.SeasonalAR, m.order.S)
	ma := expandMA(m.params.MA, m.params.SeasonalMA, m.order.S)

	n := len(m.w)
	w := make([]float64, n+steps)
	copy(w, m.w)
	e := make([]float64, n+steps)
	copy(e, m.resid)

	for t := n; t < n+steps; t++ {
		pred := 0.0
		for i, a := range ar {
			if t-1-i < 0 {
				break
			}
			pred += a * w[t-1-i]
		}
		for j, b := range ma {
			if t-1-j < 0 {
				break
			}
			pred += b * e[t-1-j]
		}
		w[t] = pred
	}

	future := w[n:]
	if m.params.Mean != 0 {
		for i := range future {
			future[i] += m.params.Mean
		}
	}
	return integrate(m.y, future, m.order.diffPoly()), nil
}

// Params returns a copy of the estimated parameters
func (m *Model) Params() (Params, error) {
	if m == nil {
		return Params{}, ErrUninitializedModel
	}
	if !m.trained {
		return Params{}, ErrUntrainedModel
	}
	p := *m.params
	p.AR = append([]float64(nil), p.AR...)
	p.MA = append([]float64(nil), p.MA...)
	p.SeasonalAR = append([]float64(nil), p.SeasonalAR...)
	p.SeasonalMA = append([]float64(nil), p.SeasonalMA...)
	return p, nil
}

// Residuals returns the one step ahead innovations on the differenced scale
func (m *Model) Residuals() []float64 {
	if m == nil {
		return nil
	}
	return append([]float64(nil), m.resid...)
}

// FittedValues returns one step ahead in-sample predictions aligned with the training
// series. Points consumed by differencing or the AR conditioning are NaN.
func (m *Model) FittedValues() []float64 {
	if m == nil {
		return nil
	}
	return append([]float64(nil), m.fitted...)
}

// difference applies the lag polynomial poly to y
func difference(y, poly []float64) []float64 {
	k := len(poly) - 1
	if len(y) <= k {
		return nil
	}
	w := make([]float64, len(y)-k)
	for t := k; t < len(y); t++ {
		var v float64
		for j, c := range poly {
			v += c * y[t-j]
		}
		w[t-k] = v
	}
	return w
}

// integrate reverses difference for values that continue the history y
func integrate(y, future, poly []float64) []float64 {
	n := len(y)
	ext := make([]float64, n+len(future))
	copy(ext, y)
	for h, v := range future {
		t := n + h
		for j := 1; j < len(poly); j++ {
			v -= poly[j] * ext[t-j]
		}
		ext[t] = v
	}
	return ext[n:]
}
