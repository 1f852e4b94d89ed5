package s0_data

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
)

// CleaningSummary 클리닝 전/후 행 수
type CleaningSummary struct {
	RowsBefore       int `json:"rows_before"`
	RowsAfter        int `json:"rows_after"`
	NonPositiveSales int `json:"non_positive_sales"`
	MissingOrderDate int `json:"missing_order_date"`
	Duplicates       int `json:"duplicates"`
}

// Removed returns the number of dropped rows.
func (s CleaningSummary) Removed() int {
	return s.RowsBefore - s.RowsAfter
}

// Cleaner 원본 CSV → 검증된 SalesRecord
// ⭐ SSOT: 클리닝 규칙은 여기서만
type Cleaner struct {
	log zerolog.Logger
}

// NewCleaner 새 클리너 생성
func NewCleaner(log zerolog.Logger) *Cleaner {
	return &Cleaner{
		log: log.With().Str("component", "s0_data.cleaner").Logger(),
	}
}

// Parse converts raw rows into records. Unparseable dates become zero
// times and unparseable numbers become NaN; nothing is dropped here.
func (c *Cleaner) Parse(t *RawTable) ([]contracts.SalesRecord, error) {
	for _, col := range []string{"order_date", "sales"} {
		if !t.Has(col) {
			return nil, fmt.Errorf("%w: %s (have %v)", ErrMissingColumn, col, t.Header)
		}
	}

	records := make([]contracts.SalesRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, contracts.SalesRecord{
			OrderID:      t.Value(row, "order_id"),
			ProductID:    t.Value(row, "product_id"),
			OrderDate:    ParseDate(t.Value(row, "order_date")),
			ShipDate:     ParseDate(t.Value(row, "ship_date")),
			Sales:        ParseNumber(t.Value(row, "sales")),
			Quantity:     ParseNumber(t.Value(row, "quantity")),
			Profit:       ParseNumber(t.Value(row, "profit")),
			ShippingCost: ParseNumber(t.Value(row, "shipping_cost")),
		})
	}
	return records, nil
}

type dedupeKey struct {
	orderID   string
	productID string
}

// Clean drops non-positive (or missing) sales, missing order dates and
// repeated (order_id, product_id) pairs, keeping the first occurrence.
// Empty identifiers compare equal. Input without any identifier (no id
// columns) is not deduplicated.
func (c *Cleaner) Clean(records []contracts.SalesRecord) ([]contracts.SalesRecord, CleaningSummary) {
	summary := CleaningSummary{RowsBefore: len(records)}
	dedupe := hasIdentifiers(records)

	seen := make(map[dedupeKey]struct{}, len(records))
	out := make([]contracts.SalesRecord, 0, len(records))
	for _, r := range records {
		if math.IsNaN(r.Sales) || r.Sales <= 0 {
			summary.NonPositiveSales++
			continue
		}
		if !r.HasOrderDate() {
			summary.MissingOrderDate++
			continue
		}
		if dedupe {
			key := dedupeKey{r.OrderID, r.ProductID}
			if _, dup := seen[key]; dup {
				summary.Duplicates++
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, r)
	}
	summary.RowsAfter = len(out)

	c.log.Info().
		Int("rows_before", summary.RowsBefore).
		Int("rows_after", summary.RowsAfter).
		Int("removed", summary.Removed()).
		Int("non_positive_sales", summary.NonPositiveSales).
		Int("missing_order_date", summary.MissingOrderDate).
		Int("duplicates", summary.Duplicates).
		Msg("cleaning summary")

	return out, summary
}

func hasIdentifiers(records []contracts.SalesRecord) bool {
	for _, r := range records {
		if r.OrderID != "" || r.ProductID != "" {
			return true
		}
	}
	return false
}
