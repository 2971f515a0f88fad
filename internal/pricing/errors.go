package pricing

import "fmt"

// PricingError is a model-level failure: the inputs are valid but the model
// cannot produce a price (expired option, degenerate terms). Retrying will
// not help; the workflow reports FAILED.
type PricingError struct {
	Reason string
}

func (e *PricingError) Error() string { return "pricing: " + e.Reason }

// Pricingf builds a PricingError.
func Pricingf(format string, args ...any) *PricingError {
	return &PricingError{Reason: fmt.Sprintf(format, args...)}
}

// CalibrationError is an upstream calibration failure: market data is missing
// or too thin to fit the model. Also non-retryable by policy; a retry would
// see the same snapshot.
type CalibrationError struct {
	Reason string
}

func (e *CalibrationError) Error() string { return "calibration: " + e.Reason }

// Calibrationf builds a CalibrationError.
func Calibrationf(format string, args ...any) *CalibrationError {
	return &CalibrationError{Reason: fmt.Sprintf(format, args...)}
}
