package contracts

import (
	"fmt"
	"time"

	"github.com/wonny/salescast/internal/timeseries"
)

// ModelTypeSARIMA metadata model_type value
const ModelTypeSARIMA = "SARIMA"

// DateLayout 메타데이터/CSV 날짜 포맷
const DateLayout = "2006-01-02"

// DateRange 학습 데이터 기간
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ModelMetadata sidecar record of a persisted model.
// ⭐ SSOT: JSON 키는 외부 포맷이므로 변경 금지
type ModelMetadata struct {
	ModelType     string    `json:"model_type"`
	Order         [3]int    `json:"order"`
	SeasonalOrder [4]int    `json:"seasonal_order"`
	NObservations int       `json:"n_observations"`
	DateRange     DateRange `json:"date_range"`
	AIC           float64   `json:"aic"`
	BIC           float64   `json:"bic"`
	SavedAt       string    `json:"saved_at"`
	ModelFile     string    `json:"model_file"`
}

// NewModelMetadata derives metadata from a fitted model.
// SavedAt/ModelFile are set by the store.
func NewModelMetadata(m FittedModel) *ModelMetadata {
	o := m.Order()
	s := m.Series()
	return &ModelMetadata{
		ModelType:     ModelTypeSARIMA,
		Order:         o.Order(),
		SeasonalOrder: o.SeasonalOrder(),
		NObservations: s.Len(),
		DateRange: DateRange{
			Start: s.Start().Format(DateLayout),
			End:   s.End().Format(DateLayout),
		},
		AIC: m.AIC(),
		BIC: m.BIC(),
	}
}

// ModelOrder reconstructs the order recorded in metadata.
func (m *ModelMetadata) ModelOrder() ModelOrder {
	return ModelOrder{
		P: m.Order[0], D: m.Order[1], Q: m.Order[2],
		SP: m.SeasonalOrder[0], SD: m.SeasonalOrder[1], SQ: m.SeasonalOrder[2],
		Period: m.SeasonalOrder[3],
	}
}

// SavedTime parses SavedAt.
func (m *ModelMetadata) SavedTime() (time.Time, error) {
	return time.Parse(time.RFC3339, m.SavedAt)
}

// CheckSeries compares the metadata with a series.
// Returns a *StaleModelError on the first mismatch.
func (m *ModelMetadata) CheckSeries(s *timeseries.Series) error {
	if got := s.End().Format(DateLayout); got != m.DateRange.End {
		return &StaleModelError{Field: "date_range.end", Model: got, Stored: m.DateRange.End}
	}
	if s.Len() != m.NObservations {
		return &StaleModelError{
			Field:  "n_observations",
			Model:  fmt.Sprintf("%d", s.Len()),
			Stored: fmt.Sprintf("%d", m.NObservations),
		}
	}
	return nil
}

// CheckModel compares the metadata with a fitted model (series and order).
func (m *ModelMetadata) CheckModel(model FittedModel) error {
	if err := m.CheckSeries(model.Series()); err != nil {
		return err
	}
	if got := model.Order(); got != m.ModelOrder() {
		return &StaleModelError{Field: "order", Model: got.String(), Stored: m.ModelOrder().String()}
	}
	return nil
}
