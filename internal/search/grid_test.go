package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/sarima"
	"github.com/wonny/salescast/internal/timeseries"
)

var start = time.Date(2017, 1, 31, 0, 0, 0, 0, time.UTC)

// stubModel reports a deterministic AIC derived from the order.
type stubModel struct {
	order  contracts.ModelOrder
	series *timeseries.Series
	aic    float64
}

func (m *stubModel) Order() contracts.ModelOrder { return m.order }
func (m *stubModel) Series() *timeseries.Series  { return m.series }
func (m *stubModel) AIC() float64                { return m.aic }
func (m *stubModel) BIC() float64                { return m.aic + 1 }
func (m *stubModel) LogLikelihood() float64      { return -m.aic / 2 }
func (m *stubModel) Sigma2() float64             { return 1 }
func (m *stubModel) Forecast(int, float64) (*contracts.ForecastResult, error) {
	return nil, errors.New("not implemented")
}

type stubEstimator struct {
	fail  func(contracts.ModelOrder) bool
	calls atomic.Int64
	delay time.Duration
}

func (e *stubEstimator) Fit(ctx context.Context, s *timeseries.Series, o contracts.ModelOrder, _ contracts.FitOptions) (contracts.FittedModel, error) {
	e.calls.Add(1)
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.fail != nil && e.fail(o) {
		return nil, &contracts.FittingError{Order: o, Err: errors.New("did not converge")}
	}
	// AIC ties between (p, q) swaps exercise the BIC/lexicographic tie-break
	aic := float64(10*(o.P+o.Q) + 3*o.D + o.SP + o.SD + o.SQ)
	return &stubModel{order: o, series: s, aic: aic}, nil
}

func flatSeries(n int, v float64) *timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return timeseries.Monthly(start, values)
}

func TestRanges_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Ranges)
		wantErr bool
		field   string
	}{
		{name: "default", modify: func(*Ranges) {}},
		{name: "single point", modify: func(r *Ranges) { r.P = Range{1, 1} }},
		{name: "negative", modify: func(r *Ranges) { r.D = Range{-1, 1} }, wantErr: true, field: "d"},
		{name: "inverted", modify: func(r *Ranges) { r.SQ = Range{2, 1} }, wantErr: true, field: "Q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRanges()
			tt.modify(&r)
			err := r.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve contracts.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestRanges_Product(t *testing.T) {
	r := Ranges{P: Range{0, 1}, D: Range{1, 1}, Q: Range{0, 2}, SP: Range{0, 0}, SD: Range{0, 1}, SQ: Range{0, 0}}

	orders := r.Product(12)

	assert.Equal(t, 12, r.Size())
	require.Len(t, orders, 12)
	assert.Equal(t, contracts.NewModelOrder(0, 1, 0, 0, 0, 0), orders[0])
	assert.Equal(t, contracts.NewModelOrder(1, 1, 2, 0, 1, 0), orders[11])
	for i := 1; i < len(orders); i++ {
		assert.True(t, orders[i-1].Less(orders[i]))
	}
	assert.Equal(t, 729, DefaultRanges().Size())
}

func TestSearch_RanksAndSkipsFailures(t *testing.T) {
	est := &stubEstimator{fail: func(o contracts.ModelOrder) bool { return o.P == 2 }}
	g := NewGridSearcher(est, zerolog.Nop())

	var progress atomic.Int64
	baseline := contracts.NewModelOrder(1, 1, 1, 1, 1, 1)
	res, err := g.Search(context.Background(), flatSeries(36, 1), DefaultRanges(), Options{
		Workers:    4,
		Baseline:   &baseline,
		OnProgress: func(done, total int) { progress.Store(int64(done)) },
	})
	require.NoError(t, err)

	assert.Equal(t, 729, res.Candidates)
	assert.EqualValues(t, 729, est.calls.Load())
	assert.EqualValues(t, 729, progress.Load())
	assert.Len(t, res.Failed, 243)
	assert.Len(t, res.Entries, 486)
	assert.LessOrEqual(t, len(res.Entries), DefaultRanges().Size())

	for _, e := range res.Entries {
		assert.NotEqual(t, 2, e.Order.P, "failed orders must not be ranked")
	}
	for i := 1; i < len(res.Entries); i++ {
		a, b := res.Entries[i-1], res.Entries[i]
		require.True(t, a.AIC < b.AIC || (a.AIC == b.AIC && (a.BIC < b.BIC || (a.BIC == b.BIC && a.Order.Less(b.Order)))),
			"entries %d and %d out of order", i-1, i)
	}
	for i := 1; i < len(res.Failed); i++ {
		assert.True(t, res.Failed[i-1].Order.Less(res.Failed[i].Order))
	}

	best, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, contracts.NewModelOrder(0, 0, 0, 0, 0, 0), best.Order)

	// baseline AIC = 10*2 + 3 + 3 = 26
	assert.Positive(t, res.BaselineRank)
	assert.InDelta(t, 26, res.BaselineGap, 1e-12)
	assert.True(t, res.GapSignificant())
	assert.Len(t, res.Top(10), 10)
}

func TestSearch_Errors(t *testing.T) {
	g := NewGridSearcher(&stubEstimator{}, zerolog.Nop())

	_, err := g.Search(context.Background(), flatSeries(36, 1), Ranges{P: Range{2, 0}}, Options{})
	var ve contracts.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = g.Search(context.Background(), flatSeries(0, 1), DefaultRanges(), Options{})
	assert.ErrorIs(t, err, contracts.ErrEmptyInput)
}

func TestSearch_Cancellation(t *testing.T) {
	est := &stubEstimator{delay: 20 * time.Millisecond}
	g := NewGridSearcher(est, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.Search(ctx, flatSeries(36, 1), DefaultRanges(), Options{Workers: 2})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, est.calls.Load(), int64(729))
}

func TestSearch_ConstantSeriesWithEngine(t *testing.T) {
	g := NewGridSearcher(sarima.NewEngine(zerolog.Nop()), zerolog.Nop())
	one := Range{0, 1}
	ranges := Ranges{P: one, D: one, Q: one, SP: one, SD: one, SQ: one}

	res, err := g.Search(context.Background(), flatSeries(36, 100), ranges, Options{Workers: 4})
	require.NoError(t, err)

	best, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, contracts.NewModelOrder(0, 0, 0, 0, 0, 0), best.Order)
	assert.Equal(t, 64, res.Candidates)
	assert.Equal(t, 64, len(res.Entries)+len(res.Failed))
}
