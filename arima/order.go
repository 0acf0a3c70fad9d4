package arima

import "fmt"

// Order describes a multiplicative seasonal model (p,d,q)(P,D,Q,s). A zero seasonal
// period or all-zero seasonal terms reduces it to a plain (p,d,q) model.
type Order struct {
	P  int `json:"p"`
	D  int `json:"d"`
	Q  int `json:"q"`
	SP int `json:"seasonal_p"`
	SD int `json:"seasonal_d"`
	SQ int `json:"seasonal_q"`
	S  int `json:"period"`
}

// NewOrder returns a non-seasonal (p,d,q) order
func NewOrder(p, d, q int) Order {
	return Order{P: p, D: d, Q: q}
}

// NewSeasonalOrder returns a (p,d,q)(sp,sd,sq,s) order
func NewSeasonalOrder(p, d, q, sp, sd, sq, s int) Order {
	return Order{P: p, D: d, Q: q, SP: sp, SD: sd, SQ: sq, S: s}
}

// Seasonal reports whether any seasonal term is active
func (o Order) Seasonal() bool {
	return o.S > 1 && (o.SP > 0 || o.SD > 0 || o.SQ > 0)
}

// Validate checks that all terms are non-negative and that seasonal terms come with
// a usable period.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 || o.S < 0 {
		return fmt.Errorf("negative term in %s, %w", o, ErrInvalidOrder)
	}
	if (o.SP > 0 || o.SD > 0 || o.SQ > 0) && o.S < 2 {
		return fmt.Errorf("seasonal terms require a period of at least 2, got %d, %w", o.S, ErrInvalidOrder)
	}
	return nil
}

func (o Order) String() string {
	if !o.Seasonal() {
		return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
	}
	return fmt.Sprintf("(%d,%d,%d)(%d,%d,%d,%d)", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.S)
}

// NumParams is the number of estimated polynomial coefficients
func (o Order) NumParams() int {
	n := o.P + o.Q
	if o.Seasonal() {
		n += o.SP + o.SQ
	}
	return n
}

// arLags is the highest lag of the expanded AR polynomial, whatever its coefficient values
func (o Order) arLags() int {
	n := o.P
	if o.Seasonal() {
		n += o.SP * o.S
	}
	return n
}

// diffPoly returns the coefficients of (1-B)^d (1-B^s)^D starting at lag 0.
func (o Order) diffPoly() []float64 {
	poly := []float64{1}
	for i := 0; i < o.D; i++ {
		poly = polyMul(poly, []float64{1, -1})
	}
	if o.Seasonal() {
		seasonal := make([]float64, o.S+1)
		seasonal[0] = 1
		seasonal[o.S] = -1
		for i := 0; i < o.SD; i++ {
			poly = polyMul(poly, seasonal)
		}
	}
	return poly
}

// integrated reports whether the model differences the series at all
func (o Order) integrated() bool {
	return o.D > 0 || (o.Seasonal() && o.SD > 0)
}

func polyMul(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	res := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			res[i+j] += av * bv
		}
	}
	return res
}

// lagPoly expands coefficients at lags step, 2*step, ... into a polynomial 1 + sign*c1*B^step + ...
func lagPoly(coef []float64, step int, sign float64) []float64 {
	poly := make([]float64, len(coef)*step+1)
	poly[0] = 1
	for i, c := range coef {
		poly[(i+1)*step] = sign * c
	}
	return poly
}

// expandAR multiplies (1 - phi(B))(1 - Phi(B^s)) and returns the lag coefficients a_k of
// w_t = a_1 w_{t-1} + ... + a_k w_{t-k}
func expandAR(ar, sar []float64, s int) []float64 {
	poly := lagPoly(ar, 1, -1)
	if len(sar) > 0 {
		poly = polyMul(poly, lagPoly(sar, s, -1))
	}
	coef := make([]float64, len(poly)-1)
	for i := 1; i < len(poly); i++ {
		coef[i-1] = -poly[i]
	}
	return trimZeros(coef)
}

// expandMA multiplies (1 + theta(B))(1 + Theta(B^s)) and returns the lag coefficients b_k
func expandMA(ma, sma []float64, s int) []float64 {
	poly := lagPoly(ma, 1, 1)
	if len(sma) > 0 {
		poly = polyMul(poly, lagPoly(sma, s, 1))
	}
	return trimZeros(poly[1:])
}

// trimZeros drops trailing zero lags which only add dead state to the filters
func trimZeros(coef []float64) []float64 {
	n := len(coef)
	for n > 0 && coef[n-1] == 0 {
		n--
	}
	return coef[:n]
}
