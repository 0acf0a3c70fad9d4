package arima

// Method selects the likelihood maximized during fitting
type Method string

const (
	// MethodExact maximizes the exact gaussian likelihood computed by a Kalman filter
	MethodExact Method = "exact"
	// MethodCSS maximizes the conditional sum of squares likelihood
	MethodCSS Method = "css"
)

const (
	DefaultMaxIterations = 1000
	DefaultTolerance     = 1e-8
)

// Options configures model estimation
type Options struct {
	Method        Method  `json:"method"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
}

// NewDefaultOptions returns exact maximum likelihood estimation options
func NewDefaultOptions() *Options {
	return &Options{
		Method:        MethodExact,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// logLik evaluates the configured likelihood. cond is the conditioning window of the css
// likelihood and is ignored by the exact one.
func (o *Options) logLik(w, ar, ma []float64, cond int) (float64, float64, error) {
	switch o.Method {
	case MethodExact, "":
		return exactLogLik(w, ar, ma)
	case MethodCSS:
		return cssLogLik(w, ar, ma, cond)
	default:
		return 0, 0, ErrUnknownMethod
	}
}
