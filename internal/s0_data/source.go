// Package s0_data loads, cleans and aggregates transactional sales records.
package s0_data

import (
	"context"

	"github.com/wonny/salescast/internal/contracts"
)

// RecordSource yields cleaned sales records.
// ⭐ SSOT: 입력 데이터 경계 인터페이스
type RecordSource interface {
	Records(ctx context.Context) ([]contracts.SalesRecord, error)
	Name() string
}
