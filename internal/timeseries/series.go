// Package timeseries provides the monthly series value type shared by every
// forecasting stage.
package timeseries

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrLengthMismatch = errors.New("timestamps and values must have the same length")
	ErrNotIncreasing  = errors.New("timestamps must be strictly increasing")
)

// Series is an ordered monthly series.
// ⭐ SSOT: 생성 후 변경 불가 (접근자는 복사본을 반환)
type Series struct {
	times  []time.Time
	values []float64
}

// New creates a series from parallel timestamp/value slices.
// Inputs are copied.
func New(times []time.Time, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, ErrLengthMismatch
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("%w: %s after %s", ErrNotIncreasing,
				times[i].Format("2006-01-02"), times[i-1].Format("2006-01-02"))
		}
	}

	s := &Series{
		times:  make([]time.Time, len(times)),
		values: make([]float64, len(values)),
	}
	copy(s.times, times)
	copy(s.values, values)
	return s, nil
}

// Monthly builds a contiguous month-end series starting at the month of start.
func Monthly(start time.Time, values []float64) *Series {
	times := make([]time.Time, len(values))
	t := MonthEnd(start)
	for i := range values {
		times[i] = t
		t = NextMonthEnd(t)
	}
	s, _ := New(times, values)
	return s
}

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Values returns a copy of the values.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Times returns a copy of the timestamps.
func (s *Series) Times() []time.Time {
	out := make([]time.Time, len(s.times))
	copy(out, s.times)
	return out
}

// At returns the i-th observation.
func (s *Series) At(i int) (time.Time, float64) {
	return s.times[i], s.values[i]
}

// Start returns the first timestamp (zero time for an empty series).
func (s *Series) Start() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.times[0]
}

// End returns the last timestamp (zero time for an empty series).
func (s *Series) End() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.times[len(s.times)-1]
}

// Slice returns the observations in [i, j) as a new series.
func (s *Series) Slice(i, j int) *Series {
	out, _ := New(s.times[i:j], s.values[i:j])
	return out
}

// Split returns the first n-k observations and the last k.
func (s *Series) Split(k int) (*Series, *Series) {
	cut := s.Len() - k
	return s.Slice(0, cut), s.Slice(cut, s.Len())
}

// Mean returns the arithmetic mean of the values.
func (s *Series) Mean() float64 {
	if s.Len() == 0 {
		return 0
	}
	return stat.Mean(s.values, nil)
}

// IsConstant reports whether every value is identical.
func (s *Series) IsConstant() bool {
	for _, v := range s.values {
		if v != s.values[0] {
			return false
		}
	}
	return true
}

// NextPeriods returns the n month-end timestamps following the last observation.
func (s *Series) NextPeriods(n int) []time.Time {
	out := make([]time.Time, n)
	t := s.End()
	for i := 0; i < n; i++ {
		t = NextMonthEnd(t)
		out[i] = t
	}
	return out
}
