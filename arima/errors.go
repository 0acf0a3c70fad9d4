package arima

import "errors"

var (
	ErrUninitializedModel = errors.New("uninitialized model")
	ErrUntrainedModel     = errors.New("model has not been trained yet")
	ErrInvalidOrder       = errors.New("invalid model order")
	ErrInvalidSteps       = errors.New("forecast steps must be at least 1")
	ErrInsufficientData   = errors.New("insufficient observations for model order")
	ErrNonFiniteData      = errors.New("series contains non-finite values")
	ErrFitFailure         = errors.New("unable to maximize likelihood")
	ErrUnknownMethod      = errors.New("unknown estimation method")
	ErrResLenMismatch     = errors.New("predicted and actual have different lengths")
)
