package contracts

import "fmt"

// SeasonalPeriod 고정 계절 주기 (월별 데이터)
const SeasonalPeriod = 12

// ModelOrder SARIMA 차수 (p,d,q)x(P,D,Q,m)
// ⭐ SSOT: 모델 차수 표현은 여기서만
type ModelOrder struct {
	P      int `json:"p" yaml:"p"`
	D      int `json:"d" yaml:"d"`
	Q      int `json:"q" yaml:"q"`
	SP     int `json:"P" yaml:"seasonal_p"`
	SD     int `json:"D" yaml:"seasonal_d"`
	SQ     int `json:"Q" yaml:"seasonal_q"`
	Period int `json:"m" yaml:"period"`
}

// NewModelOrder builds an order with the fixed monthly period.
func NewModelOrder(p, d, q, sp, sd, sq int) ModelOrder {
	return ModelOrder{P: p, D: d, Q: q, SP: sp, SD: sd, SQ: sq, Period: SeasonalPeriod}
}

// DefaultModelOrder (1,1,1)x(1,1,1,12)
func DefaultModelOrder() ModelOrder {
	return NewModelOrder(1, 1, 1, 1, 1, 1)
}

// Validate checks that every order is non-negative and the period positive.
func (o ModelOrder) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 {
		return fmt.Errorf("%w: negative order in %s", ErrInvalidOrder, o)
	}
	if o.Period <= 0 {
		return fmt.Errorf("%w: period must be > 0, got %d", ErrInvalidOrder, o.Period)
	}
	return nil
}

// Order returns (p, d, q).
func (o ModelOrder) Order() [3]int {
	return [3]int{o.P, o.D, o.Q}
}

// SeasonalOrder returns (P, D, Q, m).
func (o ModelOrder) SeasonalOrder() [4]int {
	return [4]int{o.SP, o.SD, o.SQ, o.Period}
}

// NumARMAParams counts AR and MA coefficients (seasonal included).
func (o ModelOrder) NumARMAParams() int {
	return o.P + o.Q + o.SP + o.SQ
}

// HasIntercept reports whether the model estimates a mean (no differencing).
func (o ModelOrder) HasIntercept() bool {
	return o.D == 0 && o.SD == 0
}

// LostObservations is the number of leading observations consumed by differencing.
func (o ModelOrder) LostObservations() int {
	return o.D + o.SD*o.Period
}

// Less orders lexicographically over (p,d,q,P,D,Q).
func (o ModelOrder) Less(other ModelOrder) bool {
	a := [6]int{o.P, o.D, o.Q, o.SP, o.SD, o.SQ}
	b := [6]int{other.P, other.D, other.Q, other.SP, other.SD, other.SQ}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// String renders "(p,d,q)x(P,D,Q,m)".
func (o ModelOrder) String() string {
	return fmt.Sprintf("%s x %s", o.OrderString(), o.SeasonalOrderString())
}

// OrderString renders "(p, d, q)".
func (o ModelOrder) OrderString() string {
	return fmt.Sprintf("(%d, %d, %d)", o.P, o.D, o.Q)
}

// SeasonalOrderString renders "(P, D, Q, m)".
func (o ModelOrder) SeasonalOrderString() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", o.SP, o.SD, o.SQ, o.Period)
}
