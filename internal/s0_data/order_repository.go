package s0_data

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

// OrderRepository PostgreSQL 주문 테이블 기반 RecordSource
// ⭐ SSOT: sales.orders 테이블 접근은 여기서만
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Name identifies the source in logs.
func (r *OrderRepository) Name() string {
	return "postgres:sales.orders"
}

// Records returns every order with a positive sale, oldest first.
func (r *OrderRepository) Records(ctx context.Context) ([]contracts.SalesRecord, error) {
	query := `
		SELECT order_id, product_id, order_date, ship_date, sales, quantity, profit, shipping_cost
		FROM sales.orders
		WHERE sales > 0 AND order_date IS NOT NULL
		ORDER BY order_date ASC, order_id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var records []contracts.SalesRecord
	for rows.Next() {
		var (
			rec                      contracts.SalesRecord
			shipDate                 *time.Time
			quantity, profit, shipCo *float64
		)
		if err := rows.Scan(&rec.OrderID, &rec.ProductID, &rec.OrderDate, &shipDate,
			&rec.Sales, &quantity, &profit, &shipCo); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if shipDate != nil {
			rec.ShipDate = *shipDate
		}
		rec.Quantity = orNaN(quantity)
		rec.Profit = orNaN(profit)
		rec.ShippingCost = orNaN(shipCo)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MonthlySales aggregates in SQL; equivalent to Aggregator.Aggregate over Records.
func (r *OrderRepository) MonthlySales(ctx context.Context) (*timeseries.Series, error) {
	query := `
		SELECT date_trunc('month', order_date)::date AS month, SUM(sales)
		FROM sales.orders
		WHERE sales > 0 AND order_date IS NOT NULL
		GROUP BY 1
		ORDER BY 1 ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query monthly sales: %w", err)
	}
	defer rows.Close()

	var (
		times  []time.Time
		values []float64
	)
	for rows.Next() {
		var month time.Time
		var total float64
		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("scan monthly sales: %w", err)
		}
		times = append(times, timeseries.MonthEnd(month))
		values = append(values, total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: sales.orders has no valid rows", contracts.ErrEmptyInput)
	}
	return timeseries.New(times, values)
}

// SaveBatch upserts cleaned records in one round trip.
func (r *OrderRepository) SaveBatch(ctx context.Context, records []contracts.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO sales.orders (order_id, product_id, order_date, ship_date, sales, quantity, profit, shipping_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id, product_id) DO UPDATE SET
			order_date = EXCLUDED.order_date,
			ship_date = EXCLUDED.ship_date,
			sales = EXCLUDED.sales,
			quantity = EXCLUDED.quantity,
			profit = EXCLUDED.profit,
			shipping_cost = EXCLUDED.shipping_cost
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		var shipDate *time.Time
		if !rec.ShipDate.IsZero() {
			shipDate = &rec.ShipDate
		}
		batch.Queue(query, rec.OrderID, rec.ProductID, rec.OrderDate, shipDate,
			rec.Sales, nilIfNaN(rec.Quantity), nilIfNaN(rec.Profit), nilIfNaN(rec.ShippingCost))
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert order %d: %w", i, err)
		}
	}
	return nil
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func nilIfNaN(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
