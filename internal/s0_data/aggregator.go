package s0_data

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

// Aggregator 주문 기록 → 월별 매출 시계열
type Aggregator struct {
	log zerolog.Logger
}

// NewAggregator 새 집계기 생성
func NewAggregator(log zerolog.Logger) *Aggregator {
	return &Aggregator{
		log: log.With().Str("component", "s0_data.aggregator").Logger(),
	}
}

// Aggregate sums sales per calendar month of the order date.
// Months without records are absent from the result.
func (a *Aggregator) Aggregate(records []contracts.SalesRecord) (*timeseries.Series, error) {
	buckets := make(map[time.Time]float64)
	var skipped int
	for _, r := range records {
		if !r.HasOrderDate() {
			skipped++
			continue
		}
		buckets[timeseries.MonthEnd(r.OrderDate)] += r.Sales
	}

	if len(buckets) == 0 {
		return nil, fmt.Errorf("%w: no records with an order date (%d given)", contracts.ErrEmptyInput, len(records))
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	values := make([]float64, len(months))
	for i, m := range months {
		values[i] = buckets[m]
	}

	series, err := timeseries.New(months, values)
	if err != nil {
		return nil, err
	}

	a.log.Info().
		Int("records", len(records)).
		Int("skipped", skipped).
		Int("months", series.Len()).
		Str("start", series.Start().Format(contracts.DateLayout)).
		Str("end", series.End().Format(contracts.DateLayout)).
		Msg("monthly sales aggregated")

	return series, nil
}
