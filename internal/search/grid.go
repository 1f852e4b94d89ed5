// Package search ranks SARIMA orders over a Cartesian grid by information
// criteria.
package search

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/metrics"
	"github.com/wonny/salescast/internal/timeseries"
)

// Range 포함 구간 [Min, Max]
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Len returns the number of values in the range.
func (r Range) Len() int {
	return r.Max - r.Min + 1
}

// Ranges 6개 차수 탐색 구간
type Ranges struct {
	P  Range `json:"p" yaml:"p"`
	D  Range `json:"d" yaml:"d"`
	Q  Range `json:"q" yaml:"q"`
	SP Range `json:"P" yaml:"seasonal_p"`
	SD Range `json:"D" yaml:"seasonal_d"`
	SQ Range `json:"Q" yaml:"seasonal_q"`
}

// DefaultRanges searches every order component over 0..2.
func DefaultRanges() Ranges {
	r := Range{Min: 0, Max: 2}
	return Ranges{P: r, D: r, Q: r, SP: r, SD: r, SQ: r}
}

// Validate rejects negative bounds and min > max.
func (r Ranges) Validate() error {
	for _, f := range []struct {
		name string
		r    Range
	}{
		{"p", r.P}, {"d", r.D}, {"q", r.Q},
		{"P", r.SP}, {"D", r.SD}, {"Q", r.SQ},
	} {
		if f.r.Min < 0 {
			return contracts.ValidationError{Field: f.name, Message: fmt.Sprintf("min must be >= 0, got %d", f.r.Min)}
		}
		if f.r.Min > f.r.Max {
			return contracts.ValidationError{Field: f.name, Message: fmt.Sprintf("min %d > max %d", f.r.Min, f.r.Max)}
		}
	}
	return nil
}

// Size returns the number of candidates.
func (r Ranges) Size() int {
	return r.P.Len() * r.D.Len() * r.Q.Len() * r.SP.Len() * r.SD.Len() * r.SQ.Len()
}

func (r Range) contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Contains reports whether o lies inside the grid. Period is ignored.
func (r Ranges) Contains(o contracts.ModelOrder) bool {
	return r.P.contains(o.P) && r.D.contains(o.D) && r.Q.contains(o.Q) &&
		r.SP.contains(o.SP) && r.SD.contains(o.SD) && r.SQ.contains(o.SQ)
}

// Product enumerates every order, lexicographic in (p, d, q, P, D, Q).
func (r Ranges) Product(period int) []contracts.ModelOrder {
	out := make([]contracts.ModelOrder, 0, r.Size())
	for p := r.P.Min; p <= r.P.Max; p++ {
		for d := r.D.Min; d <= r.D.Max; d++ {
			for q := r.Q.Min; q <= r.Q.Max; q++ {
				for sp := r.SP.Min; sp <= r.SP.Max; sp++ {
					for sd := r.SD.Min; sd <= r.SD.Max; sd++ {
						for sq := r.SQ.Min; sq <= r.SQ.Max; sq++ {
							out = append(out, contracts.ModelOrder{
								P: p, D: d, Q: q, SP: sp, SD: sd, SQ: sq, Period: period,
							})
						}
					}
				}
			}
		}
	}
	return out
}

// Options 그리드 탐색 옵션
type Options struct {
	Period     int // seasonal period (default 12)
	MaxIter    int // per-fit iteration cap (default 50)
	Workers    int // concurrent fits (default runtime.NumCPU())
	Baseline   *contracts.ModelOrder
	OnProgress func(done, total int)
}

const defaultMaxIter = 50

// GridSearcher fits every candidate order and ranks the survivors.
// ⭐ SSOT: 차수 선택 로직은 여기서만
type GridSearcher struct {
	estimator contracts.Estimator
	log       zerolog.Logger
}

// NewGridSearcher creates a new grid searcher
func NewGridSearcher(estimator contracts.Estimator, log zerolog.Logger) *GridSearcher {
	return &GridSearcher{
		estimator: estimator,
		log:       log.With().Str("component", "search.grid").Logger(),
	}
}

// Search fits all candidates with enforcement disabled. Candidates whose fit
// fails are left out of Entries and listed in Failed.
func (g *GridSearcher) Search(ctx context.Context, series *timeseries.Series, ranges Ranges, opts Options) (*contracts.GridSearchResult, error) {
	if err := ranges.Validate(); err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("grid search: %w", contracts.ErrEmptyInput)
	}
	if opts.Period == 0 {
		opts.Period = contracts.SeasonalPeriod
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = defaultMaxIter
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	candidates := ranges.Product(opts.Period)
	total := len(candidates)
	fitOpts := contracts.FitOptions{MaxIter: opts.MaxIter}

	g.log.Info().
		Int("candidates", total).
		Int("workers", opts.Workers).
		Int("max_iter", opts.MaxIter).
		Int("observations", series.Len()).
		Msg("grid search started")
	started := time.Now()

	result := &contracts.GridSearchResult{Candidates: total, Baseline: opts.Baseline}
	var (
		mu   sync.Mutex
		done int
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)

	for _, order := range candidates {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			fitStart := time.Now()
			model, err := g.estimator.Fit(egCtx, series, order, fitOpts)
			metrics.ObserveFit(fitStart)

			// cancellation is not a candidate failure
			if ctxErr := egCtx.Err(); ctxErr != nil {
				return ctxErr
			}

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				metrics.FitsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
				g.log.Debug().Err(err).Str("order", order.String()).Msg("candidate skipped")
				result.Failed = append(result.Failed, contracts.FailedFit{Order: order, Reason: err.Error()})
			} else {
				metrics.FitsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
				result.Entries = append(result.Entries, contracts.SearchEntry{
					Order: order, AIC: model.AIC(), BIC: model.BIC(),
				})
			}
			if opts.OnProgress != nil {
				opts.OnProgress(done, total)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	// the dispatch loop may stop early without any goroutine failing
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contracts.SortEntries(result.Entries)
	sortFailed(result.Failed)
	rankBaseline(result)

	event := g.log.Info().
		Int("fitted", len(result.Entries)).
		Int("failed", len(result.Failed)).
		Dur("elapsed", time.Since(started))
	if best, ok := result.Best(); ok {
		metrics.SearchBestAIC.Set(best.AIC)
		event = event.Str("best", best.Order.String()).Float64("best_aic", best.AIC)
	}
	if result.Baseline != nil {
		event = event.Int("baseline_rank", result.BaselineRank).Float64("baseline_gap", result.BaselineGap)
	}
	event.Msg("grid search finished")

	return result, nil
}

func sortFailed(failed []contracts.FailedFit) {
	sort.Slice(failed, func(i, j int) bool { return failed[i].Order.Less(failed[j].Order) })
}

func rankBaseline(r *contracts.GridSearchResult) {
	if r.Baseline == nil {
		return
	}
	best, ok := r.Best()
	if !ok {
		return
	}
	for i, e := range r.Entries {
		if e.Order == *r.Baseline {
			r.BaselineRank = i + 1
			r.BaselineGap = e.AIC - best.AIC
			return
		}
	}
}
