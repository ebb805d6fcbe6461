package fit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/solarops/inverter-insight/internal/domain"
)

// leastSquares fits a degree-2 polynomial to the samples accepted by keep.
// The offset domain is mapped to [-1, 1] before building the Vandermonde
// system so the QR factorization stays well conditioned; the mapping is
// retained in the returned FitCurve.
func (f *Fitter) leastSquares(samples []domain.Sample, keep func(domain.Sample) bool) (domain.FitCurve, error) {
	var xs, ys []float64
	for _, s := range samples {
		if keep(s) {
			xs = append(xs, float64(s.OffsetSecs))
			ys = append(ys, float64(s.Watts))
		}
	}
	if len(xs) < 3 {
		return domain.FitCurve{}, fmt.Errorf("%d usable points: %w", len(xs), domain.ErrFitUndefined)
	}

	xmin, xmax := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < xmin {
			xmin = x
		}
		if x > xmax {
			xmax = x
		}
	}
	if xmax == xmin {
		return domain.FitCurve{}, fmt.Errorf("degenerate offset domain: %w", domain.ErrFitUndefined)
	}
	offset := (xmax + xmin) / 2
	scale := (xmax - xmin) / 2

	a := mat.NewDense(len(xs), 3, nil)
	for i, x := range xs {
		u := (x - offset) / scale
		a.Set(i, 0, 1)
		a.Set(i, 1, u)
		a.Set(i, 2, u*u)
	}
	b := mat.NewVecDense(len(ys), ys)

	var qr mat.QR
	qr.Factorize(a)
	var coeffs mat.VecDense
	if err := qr.SolveVecTo(&coeffs, false, b); err != nil {
		return domain.FitCurve{}, fmt.Errorf("least squares solve: %w", err)
	}

	return domain.FitCurve{
		Coeffs: [3]float64{coeffs.AtVec(0), coeffs.AtVec(1), coeffs.AtVec(2)},
		Offset: offset,
		Scale:  scale,
	}, nil
}
