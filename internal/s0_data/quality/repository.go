package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles validation report persistence
// ⭐ SSOT: 품질 리포트 저장/조회
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new quality repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveReport appends a validation report.
func (r *Repository) SaveReport(ctx context.Context, source string, report *Report) error {
	query := `
		INSERT INTO sales.quality_reports (
			source, rows_total, negative_quantity, non_positive_sales,
			missing_order_dates, duplicate_order_ids, future_dates, outliers,
			min_date, max_date, total_issues, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		source,
		report.Rows,
		report.NegativeQuantity,
		report.NonPositiveSales,
		report.MissingOrderDates,
		report.DuplicateOrderIDs,
		report.FutureDates,
		report.Outliers,
		nullableDate(report.MinDate),
		nullableDate(report.MaxDate),
		report.TotalIssues(),
	)
	if err != nil {
		return fmt.Errorf("insert quality report: %w", err)
	}
	return nil
}

// LatestTotalIssues returns the issue count of the most recent report for source.
func (r *Repository) LatestTotalIssues(ctx context.Context, source string) (int, error) {
	query := `
		SELECT total_issues
		FROM sales.quality_reports
		WHERE source = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var total int
	if err := r.pool.QueryRow(ctx, query, source).Scan(&total); err != nil {
		return 0, fmt.Errorf("query latest quality report: %w", err)
	}
	return total, nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
