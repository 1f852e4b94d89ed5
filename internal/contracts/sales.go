package contracts

import "time"

// SalesRecord 주문 단위 판매 기록 (클리닝 이후)
type SalesRecord struct {
	OrderID      string    `json:"order_id"`
	ProductID    string    `json:"product_id"`
	OrderDate    time.Time `json:"order_date"`
	ShipDate     time.Time `json:"ship_date"` // zero if missing
	Sales        float64   `json:"sales"`
	Quantity     float64   `json:"quantity"`
	Profit       float64   `json:"profit"`
	ShippingCost float64   `json:"shipping_cost"`
}

// HasOrderDate reports whether the order date parsed.
func (r SalesRecord) HasOrderDate() bool {
	return !r.OrderDate.IsZero()
}
