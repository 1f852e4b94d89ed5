package contracts

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// ForecastPoint 예측 구간 한 개
type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Forecast float64   `json:"forecast"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}

// ForecastResult 연속된 미래 월별 예측
type ForecastResult struct {
	Order  ModelOrder      `json:"order"`
	Alpha  float64         `json:"alpha"`
	Points []ForecastPoint `json:"points"`
}

// Len returns the number of forecast periods.
func (r *ForecastResult) Len() int {
	return len(r.Points)
}

// Values returns the point forecasts.
func (r *ForecastResult) Values() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Forecast
	}
	return out
}

// SearchEntry 수렴한 후보 하나
type SearchEntry struct {
	Order ModelOrder `json:"order"`
	AIC   float64    `json:"aic"`
	BIC   float64    `json:"bic"`
}

// FailedFit 수렴 실패 후보 (랭킹에서 제외)
type FailedFit struct {
	Order  ModelOrder `json:"order"`
	Reason string     `json:"reason"`
}

// GridSearchResult ranked search output.
// Entries only holds converged candidates.
type GridSearchResult struct {
	Entries    []SearchEntry `json:"entries"`
	Failed     []FailedFit   `json:"failed,omitempty"`
	Candidates int           `json:"candidates"`

	Baseline     *ModelOrder `json:"baseline,omitempty"`
	BaselineRank int         `json:"baseline_rank,omitempty"` // 1-based, 0 = not ranked
	BaselineGap  float64     `json:"baseline_gap,omitempty"`  // baseline AIC - best AIC
}

// SignificantGap AIC 차이가 이 값보다 크면 의미 있는 개선
const SignificantGap = 2.0

// SortEntries ranks by AIC, then BIC, then lexicographic order.
func SortEntries(entries []SearchEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.AIC != b.AIC {
			return a.AIC < b.AIC
		}
		if a.BIC != b.BIC {
			return a.BIC < b.BIC
		}
		return a.Order.Less(b.Order)
	})
}

// Best returns the top-ranked entry.
func (r *GridSearchResult) Best() (SearchEntry, bool) {
	if len(r.Entries) == 0 {
		return SearchEntry{}, false
	}
	return r.Entries[0], true
}

// Top returns at most n leading entries.
func (r *GridSearchResult) Top(n int) []SearchEntry {
	if n > len(r.Entries) {
		n = len(r.Entries)
	}
	return r.Entries[:n]
}

// GapSignificant reports whether tuning beat the baseline by more than 2 AIC.
func (r *GridSearchResult) GapSignificant() bool {
	return r.BaselineRank > 0 && r.BaselineGap > SignificantGap
}

// EvaluationMetrics 홀드아웃 정확도
type EvaluationMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"` // NaN when undefined

	TrainSize int             `json:"train_size"`
	TestSize  int             `json:"test_size"`
	Order     ModelOrder      `json:"order"`
	Periods   []EvaluatedStep `json:"periods"`
}

// EvaluatedStep 실제값 vs 예측값
type EvaluatedStep struct {
	Date      time.Time `json:"date"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}

// MAPEDefined reports whether MAPE could be computed.
func (m *EvaluationMetrics) MAPEDefined() bool {
	return !math.IsNaN(m.MAPE)
}

// StationarityResult ADF 검정 결과
type StationarityResult struct {
	Statistic      float64            `json:"statistic"`
	PValue         float64            `json:"p_value"`
	CriticalValues map[string]float64 `json:"critical_values"`
	UsedLag        int                `json:"used_lag"`
	NObs           int                `json:"n_obs"`
}

// StationarityLevel 유의수준
const StationarityLevel = 0.05

// Stationary reports whether the unit-root null is rejected at 5%.
func (r *StationarityResult) Stationary() bool {
	return r.PValue < StationarityLevel
}

// MarshalJSON writes an undefined MAPE as null.
func (m EvaluationMetrics) MarshalJSON() ([]byte, error) {
	type plain EvaluationMetrics
	out := struct {
		plain
		MAPE *float64 `json:"mape"`
	}{plain: plain(m)}
	if !math.IsNaN(m.MAPE) {
		out.MAPE = &m.MAPE
	}
	return json.Marshal(out)
}
