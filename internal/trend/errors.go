// Package trend filters noise out of a count series and fits a linear trend over it.
//
// All functions are pure. Degenerate input is reported through the sentinel
// errors below; a returned FitResult never holds NaN or Inf.
package trend

import "errors"

var (
	// ErrEmptyInput is returned when a series has no usable points.
	ErrEmptyInput = errors.New("empty input")
	// ErrInsufficientData is returned when fewer than two valid pairs remain for a fit.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerateFit is returned when all included x values are identical.
	ErrDegenerateFit = errors.New("degenerate fit")
)
