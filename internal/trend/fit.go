package trend

import (
	"fmt"
	"math"

	"ology/internal/model"
)

func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Fit computes the Pearson correlation and the ordinary least-squares line of ys
// against xs. Values are paired by index; a pair takes part only when both of
// its values are finite numbers. Extra values of the longer slice are ignored.
//
// With n included pairs:
//
//	num = Sxy - Sx*Sy/n
//	dx  = Sxx - Sx*Sx/n
//	dy  = Syy - Sy*Sy/n
//	r = num / sqrt(dx*dy), m = num / dx, b = (Sy - m*Sx) / n
//
// The sums are taken around the means, which is the same quantity without the
// cancellation that raw sums of squared epoch seconds suffer from.
// Constant y over varying x yields r = 0, m = 0.
func Fit(xs, ys []float64) (model.FitResult, error) {
	size := min(len(xs), len(ys))

	var sx, sy, firstX float64
	var n int
	sameX := true
	for i := range size {
		if !valid(xs[i]) || !valid(ys[i]) {
			continue
		}
		if n == 0 {
			firstX = xs[i]
		} else if xs[i] != firstX {
			sameX = false
		}
		sx += xs[i]
		sy += ys[i]
		n++
	}
	if n < 2 {
		return model.FitResult{}, fmt.Errorf("fit over %d valid pairs: %w", n, ErrInsufficientData)
	}
	// The mean of identical values can be off by an ulp, so denomX alone misses this case.
	if sameX {
		return model.FitResult{}, fmt.Errorf("fit: all %d x values equal %g: %w", n, firstX, ErrDegenerateFit)
	}

	meanX := sx / float64(n)
	meanY := sy / float64(n)
	var num, denomX, denomY float64
	for i := range size {
		if !valid(xs[i]) || !valid(ys[i]) {
			continue
		}
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		num += dx * dy
		denomX += dx * dx
		denomY += dy * dy
	}

	if denomX == 0 {
		return model.FitResult{}, fmt.Errorf("fit: zero x variance over %d pairs: %w", n, ErrDegenerateFit)
	}
	m := num / denomX
	b := meanY - m*meanX

	if denomY == 0 {
		return model.FitResult{R: 0, M: 0, B: meanY}, nil
	}
	prod := denomX * denomY
	if prod <= 0 || !valid(prod) {
		return model.FitResult{}, fmt.Errorf("fit: correlation undefined (dx*dy=%g): %w", prod, ErrDegenerateFit)
	}
	r := num / math.Sqrt(prod)
	if !valid(r) || !valid(m) || !valid(b) {
		return model.FitResult{}, fmt.Errorf("fit: non-finite result r=%g m=%g b=%g: %w", r, m, b, ErrDegenerateFit)
	}
	return model.FitResult{R: r, M: m, B: b}, nil
}

// FitSeries fits y against x over the points of s.
func FitSeries(s model.Series) (model.FitResult, error) {
	return Fit(s.Xs(), s.Ys())
}
