package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Appraise/internal/evaluator"
	"github.com/MikeSquared-Agency/Appraise/internal/scoring"
)

func TestOutcomeCounters(t *testing.T) {
	m := New()
	rec := scoring.ScoreRecord{NetScore: 0.8, LicenseLatency: 12}

	m.OutcomeRecorded(evaluator.Outcome{Kind: evaluator.KindSuccess, Record: &rec})
	m.OutcomeRecorded(evaluator.Outcome{Kind: evaluator.KindLookup, Err: errors.New("404")})
	m.OutcomeRecorded(evaluator.Outcome{Kind: evaluator.KindLookup, Err: errors.New("401")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("lookup")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.netScore))
	assert.Equal(t, 8, testutil.CollectAndCount(m.metricLatency), "one series per sub-metric")
}

func TestInFlightGauge(t *testing.T) {
	m := New()
	m.WorkerStarted()
	m.WorkerStarted()
	m.WorkerFinished()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
}

func TestContextBuilt(t *testing.T) {
	m := New()
	m.ContextBuilt(20*time.Millisecond, nil)
	m.ContextBuilt(time.Second, errors.New("timeout"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.buildDuration))
}

func TestRegistryGathers(t *testing.T) {
	m := New()
	m.WorkerStarted()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["appraise_evaluations_in_flight"])
	assert.True(t, names["go_goroutines"])
}
