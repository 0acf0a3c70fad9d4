package arima

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Params is the serializeable result of a fit: the order, estimation method, coefficients and
// the likelihood based diagnostics at the estimate.
type Params struct {
	Order      Order     `json:"order"`
	Method     Method    `json:"method"`
	AR         []float64 `json:"ar"`
	MA         []float64 `json:"ma"`
	SeasonalAR []float64 `json:"seasonal_ar,omitempty"`
	SeasonalMA []float64 `json:"seasonal_ma,omitempty"`
	Mean       float64   `json:"mean"`
	Sigma2     float64   `json:"sigma2"`
	LogLik     float64   `json:"log_likelihood"`
	AIC        float64   `json:"aic"`
	BIC        float64   `json:"bic"`
	NObs       int       `json:"num_observations"`
	Converged  bool      `json:"converged"`
	Scores     *Scores   `json:"scores,omitempty"`
}

// TablePrint writes a human readable summary of the parameters
func (p Params) TablePrint(w io.Writer, prefix, indent string, level int) error {
	if _, err := fmt.Fprintf(w, "%s%sModel: %s  Method: %s  Converged: %t\n",
		prefix, indentExpand(indent, level), p.Order, p.Method, p.Converged); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sObservations: %d  Sigma2: %.4f  LogLik: %.3f  AIC: %.3f  BIC: %.3f\n",
		prefix, indentExpand(indent, level+1), p.NObs, p.Sigma2, p.LogLik, p.AIC, p.BIC); err != nil {
		return err
	}
	if p.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sMAPE: %.3f    MSE: %.3f    R2: %.3f\n",
			prefix, indentExpand(indent, level+1), p.Scores.MAPE, p.Scores.MSE, p.Scores.R2); err != nil {
			return err
		}
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sTerm\tLag\tValue\t\n", prefix, indentExpand(indent, level+1)); err != nil {
		return err
	}
	rows := []struct {
		term string
		step int
		coef []float64
	}{
		{"ar", 1, p.AR},
		{"ma", 1, p.MA},
		{"seasonal_ar", p.Order.S, p.SeasonalAR},
		{"seasonal_ma", p.Order.S, p.SeasonalMA},
	}
	for _, row := range rows {
		for i, c := range row.coef {
			if _, err := fmt.Fprintf(tbl, "%s%s%s\t%d\t%.4f\t\n",
				prefix, indentExpand(indent, level+1), row.term, (i+1)*row.step, c); err != nil {
				return err
			}
		}
	}
	if p.Mean != 0 {
		if _, err := fmt.Fprintf(tbl, "%s%smean\t\t%.4f\t\n", prefix, indentExpand(indent, level+1), p.Mean); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

func indentExpand(indent string, level int) string {
	return strings.Repeat(indent, level)
}
