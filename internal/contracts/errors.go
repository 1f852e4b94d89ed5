package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy
// ⭐ SSOT: 도메인 에러는 여기서만 정의
var (
	ErrEmptyInput       = errors.New("empty input")
	ErrInsufficientData = errors.New("insufficient data")
	ErrFitting          = errors.New("model fitting failed")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrModelNotFound    = errors.New("model not found")
	ErrStaleModel       = errors.New("stale model")
	ErrInvalidHorizon   = errors.New("invalid forecast horizon")
	ErrInvalidOrder     = errors.New("invalid model order")
)

// FittingError wraps an estimation failure for one order.
type FittingError struct {
	Order ModelOrder
	Err   error
}

func (e *FittingError) Error() string {
	return fmt.Sprintf("fit %s: %v", e.Order, e.Err)
}

func (e *FittingError) Unwrap() error { return e.Err }

// Is matches ErrFitting.
func (e *FittingError) Is(target error) bool { return target == ErrFitting }

// StaleModelError 모델과 저장된 메타데이터 불일치
type StaleModelError struct {
	Field  string
	Model  string
	Stored string
}

func (e *StaleModelError) Error() string {
	if e.Stored == "" {
		return fmt.Sprintf("stale model: %s (model=%s, no stored metadata)", e.Field, e.Model)
	}
	return fmt.Sprintf("stale model: %s mismatch (model=%s, stored=%s)", e.Field, e.Model, e.Stored)
}

// Is matches ErrStaleModel.
func (e *StaleModelError) Is(target error) bool { return target == ErrStaleModel }

// ValidationError 설정/입력 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
