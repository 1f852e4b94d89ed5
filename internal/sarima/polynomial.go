package sarima

// Lag polynomials are stored as coefficient slices: p[k] multiplies B^k and
// p[0] is always 1.

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// arPolynomial expands φ(B)Φ(B^m) where φ(B) = 1 - Σ φ_i B^i.
func arPolynomial(ar, sar []float64, m int) []float64 {
	ns := make([]float64, len(ar)+1)
	ns[0] = 1
	for i, c := range ar {
		ns[i+1] = -c
	}
	s := make([]float64, len(sar)*m+1)
	s[0] = 1
	for j, c := range sar {
		s[(j+1)*m] = -c
	}
	return polyMul(ns, s)
}

// maPolynomial expands θ(B)Θ(B^m) where θ(B) = 1 + Σ θ_i B^i.
func maPolynomial(ma, sma []float64, m int) []float64 {
	ns := make([]float64, len(ma)+1)
	ns[0] = 1
	copy(ns[1:], ma)
	s := make([]float64, len(sma)*m+1)
	s[0] = 1
	for j, c := range sma {
		s[(j+1)*m] = c
	}
	return polyMul(ns, s)
}

// differencingPolynomial expands (1-B)^d (1-B^m)^D.
func differencingPolynomial(d, sd, m int) []float64 {
	out := []float64{1}
	for i := 0; i < d; i++ {
		out = polyMul(out, []float64{1, -1})
	}
	seasonal := make([]float64, m+1)
	seasonal[0], seasonal[m] = 1, -1
	for i := 0; i < sd; i++ {
		out = polyMul(out, seasonal)
	}
	return out
}

func polySum(p []float64) float64 {
	var s float64
	for _, c := range p {
		s += c
	}
	return s
}

// psiWeights returns the first n coefficients of ma(B)/ar(B).
func psiWeights(ar, ma []float64, n int) []float64 {
	psi := make([]float64, n)
	if n == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < n; j++ {
		var v float64
		if j < len(ma) {
			v = ma[j]
		}
		for k := 1; k < len(ar) && k <= j; k++ {
			v -= ar[k] * psi[j-k]
		}
		psi[j] = v
	}
	return psi
}
