package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeFailure, Outcome(errors.New("x")))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(FitsTotal.WithLabelValues(OutcomeFailure))
	FitsTotal.WithLabelValues(OutcomeFailure).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FitsTotal.WithLabelValues(OutcomeFailure)))
}

func TestObserveFit(t *testing.T) {
	assert.NotPanics(t, func() { ObserveFit(time.Now()) })
	assert.Positive(t, testutil.CollectAndCount(FitDuration))
}
