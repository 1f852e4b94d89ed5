package sarima

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/timeseries"
)

// codecVersion is bumped whenever snapshot changes shape.
const codecVersion = 1

var ErrUnsupportedModel = errors.New("model was not produced by the sarima engine")

// snapshot is the gob wire form of Model, training series included.
type snapshot struct {
	Version   int
	Order     contracts.ModelOrder
	Times     []time.Time
	Values    []float64
	Params    Params
	Mean      float64
	HasMean   bool
	Sigma2    float64
	LogLik    float64
	AIC       float64
	BIC       float64
	NObs      int
	Residuals []float64
}

// Marshal encodes a model produced by this engine.
func (e *Engine) Marshal(fm contracts.FittedModel) ([]byte, error) {
	m, ok := fm.(*Model)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedModel, fm)
	}

	snap := snapshot{
		Version:   codecVersion,
		Order:     m.order,
		Times:     m.series.Times(),
		Values:    m.series.Values(),
		Params:    m.Params(),
		Mean:      m.mean,
		HasMean:   m.hasMean,
		Sigma2:    m.sigma2,
		LogLik:    m.loglik,
		AIC:       m.aic,
		BIC:       m.bic,
		NObs:      m.nobs,
		Residuals: m.Residuals(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a model blob.
func (e *Engine) Unmarshal(data []byte) (contracts.FittedModel, error) {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if snap.Version != codecVersion {
		return nil, fmt.Errorf("decode model: unsupported version %d", snap.Version)
	}
	if err := snap.Order.Validate(); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	series, err := timeseries.New(snap.Times, snap.Values)
	if err != nil {
		return nil, fmt.Errorf("decode model series: %w", err)
	}

	return &Model{
		order:     snap.Order,
		series:    series,
		params:    snap.Params,
		mean:      snap.Mean,
		hasMean:   snap.HasMean,
		sigma2:    snap.Sigma2,
		loglik:    snap.LogLik,
		aic:       snap.AIC,
		bic:       snap.BIC,
		nobs:      snap.NObs,
		residuals: snap.Residuals,
	}, nil
}
