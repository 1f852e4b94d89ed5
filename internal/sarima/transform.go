package sarima

import "math"

// constrainStationary maps unconstrained reals to the coefficients of a
// stationary AR polynomial (Monahan 1984): each value becomes a partial
// autocorrelation in (-1, 1), then Durbin-Levinson recursion.
func constrainStationary(x []float64) []float64 {
	n := len(x)
	phi := make([]float64, n)
	prev := make([]float64, n)
	for k := 0; k < n; k++ {
		r := x[k] / math.Sqrt(1+x[k]*x[k])
		copy(prev, phi)
		phi[k] = r
		for j := 0; j < k; j++ {
			phi[j] = prev[j] - r*prev[k-j-1]
		}
	}
	return phi
}

// constrainInvertible maps unconstrained reals to invertible MA coefficients.
func constrainInvertible(x []float64) []float64 {
	phi := constrainStationary(x)
	for i := range phi {
		phi[i] = -phi[i]
	}
	return phi
}
