package sarima

// Diff returns the lag-1 differences; the result has len(values)-1 entries.
func Diff(values []float64) []float64 {
	return SeasonalDiff(values, 1)
}

// SeasonalDiff returns values[t] - values[t-m].
func SeasonalDiff(values []float64, m int) []float64 {
	if len(values) <= m {
		return []float64{}
	}
	out := make([]float64, len(values)-m)
	for t := m; t < len(values); t++ {
		out[t-m] = values[t] - values[t-m]
	}
	return out
}

// difference applies d regular then sd seasonal differences.
func difference(values []float64, d, sd, m int) []float64 {
	out := values
	for i := 0; i < d; i++ {
		out = Diff(out)
	}
	for i := 0; i < sd; i++ {
		out = SeasonalDiff(out, m)
	}
	return out
}
