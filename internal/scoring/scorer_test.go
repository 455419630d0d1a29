package scoring

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Appraise/internal/modelctx"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScorer() *Scorer {
	return NewScorer(DefaultWeights(), DefaultParams(), discardLogger())
}

func maximalContext() *modelctx.EvaluationContext {
	return &modelctx.EvaluationContext{
		TotalBytes:     50_000_000,
		LicenseText:    "MIT",
		Docs:           modelctx.DocSignals{Readme: 1, Quickstart: 1, Tutorials: 1, APIDocs: 1, Reproducibility: 1},
		Contributors:   10,
		DatasetPresent: true,
		CodePresent:    true,
		DatasetDoc:     modelctx.DatasetDoc{Source: 1, License: 1, Splits: 1, Ethics: 1},
		Flake8Errors:   0,
		MypyErrors:     0,
		IsortSorted:    true,
		Perf:           modelctx.PerfClaims{Benchmarks: true, Citations: true},
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	if err := w.Validate(); err != nil {
		t.Errorf("default weights invalid: %v", err)
	}
	if math.Abs(w.Sum()-1.0) > 0.001 {
		t.Errorf("default weights sum to %f, expected 1.0", w.Sum())
	}
}

func TestWeightValidation(t *testing.T) {
	t.Run("bad sum", func(t *testing.T) {
		w := DefaultWeights()
		w.License = 0.5
		assert.Error(t, w.Validate())
	})

	t.Run("negative weight", func(t *testing.T) {
		w := DefaultWeights()
		w.Size = -0.05
		w.License = 0.30
		require.InDelta(t, 1.0, w.Sum(), 0.001)
		assert.ErrorContains(t, w.Validate(), "negative weight")
	})

	t.Run("lookup by metric", func(t *testing.T) {
		w := DefaultWeights()
		assert.Equal(t, 0.20, w.For(modelctx.MetricLicense))
		assert.Equal(t, 0.15, w.For(modelctx.MetricCodeQuality))
		assert.Equal(t, 0.0, w.For(modelctx.Metric("unknown")))
	})
}

func TestScoreMaximalContext(t *testing.T) {
	rec := newTestScorer().Score("model-A", "MODEL", maximalContext())

	assert.Equal(t, "model-A", rec.Name)
	assert.Equal(t, "MODEL", rec.Category)
	assert.Equal(t, 1.0, rec.Size)
	assert.Equal(t, 1.0, rec.License)
	assert.Equal(t, 1.0, rec.RampUpTime)
	assert.Equal(t, 1.0, rec.DatasetAndCodeScore)
	assert.Equal(t, 1.0, rec.DatasetQuality)
	assert.Equal(t, 1.0, rec.CodeQuality)
	assert.Equal(t, 1.0, rec.PerformanceClaims)
	// contributors/(contributors+5) only approaches 1.0.
	assert.InDelta(t, 10.0/15.0, rec.BusFactor, 1e-9)
	assert.InDelta(t, 1.0-0.10*(5.0/15.0), rec.NetScore, 1e-9)

	t.Run("saturated contributors reach the ceiling", func(t *testing.T) {
		ec := maximalContext()
		ec.Contributors = math.MaxInt32
		rec := newTestScorer().Score("model-A", "MODEL", ec)
		assert.InDelta(t, 1.0, rec.NetScore, 1e-6)
	})
}

func TestScoreNetIsConvexCombination(t *testing.T) {
	s := newTestScorer()
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		ec := &modelctx.EvaluationContext{
			TotalBytes:     rng.Int64N(1_000_000_000),
			LicenseText:    []string{"", "mit", "gpl-3.0", "other"}[rng.IntN(4)],
			Docs:           modelctx.DocSignals{Readme: rng.Float64(), Quickstart: rng.Float64(), Tutorials: rng.Float64(), APIDocs: rng.Float64(), Reproducibility: rng.Float64()},
			Contributors:   rng.IntN(200),
			DatasetPresent: rng.IntN(2) == 0,
			CodePresent:    rng.IntN(2) == 0,
			DatasetDoc:     modelctx.DatasetDoc{Source: rng.Float64(), License: rng.Float64(), Splits: rng.Float64(), Ethics: rng.Float64()},
			Flake8Errors:   rng.IntN(80),
			MypyErrors:     rng.IntN(40),
			IsortSorted:    rng.IntN(2) == 0,
			Perf:           modelctx.PerfClaims{Benchmarks: rng.IntN(2) == 0, Citations: rng.IntN(2) == 0},
		}
		rec := s.Score("m", "MODEL", ec)

		lo, hi := 1.0, 0.0
		for _, m := range modelctx.AllMetrics {
			v := rec.Metric(m).Score
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		require.GreaterOrEqual(t, rec.NetScore, lo-1e-9, "iteration %d", i)
		require.LessOrEqual(t, rec.NetScore, hi+1e-9, "iteration %d", i)
	}
}

func TestScoreLatencyPrecedence(t *testing.T) {
	ec := maximalContext()
	ec.Latencies = map[modelctx.Metric]int64{
		modelctx.MetricLicense:   120,
		modelctx.MetricBusFactor: 0,
		modelctx.MetricRampUp:    45,
	}

	rec := newTestScorer().Score("m", "MODEL", ec)

	assert.Equal(t, int64(120), rec.LicenseLatency)
	assert.Equal(t, int64(45), rec.RampUpTimeLatency)
	assert.Equal(t, int64(1), rec.BusFactorLatency, "upstream latency is floored at 1ms")
	for _, m := range modelctx.AllMetrics {
		assert.GreaterOrEqual(t, rec.Metric(m).LatencyMs, int64(1), string(m))
	}
	// slowest metric plus at least 1ms of coordination overhead
	assert.GreaterOrEqual(t, rec.NetScoreLatency, int64(121))
}

func TestScoreAttachesDeviceMap(t *testing.T) {
	ec := maximalContext()
	ec.TotalBytes = 700_000_000

	rec := newTestScorer().Score("m", "MODEL", ec)

	assert.Equal(t, DeviceSizeScores(700_000_000), rec.SizeScore)
	assert.Equal(t, 0.0, rec.Size)
}

func TestScoreRecordJSONShape(t *testing.T) {
	rec := newTestScorer().Score("bert-base-uncased", "MODEL", maximalContext())

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	expected := []string{
		"name", "category", "net_score", "net_score_latency",
		"ramp_up_time", "ramp_up_time_latency",
		"bus_factor", "bus_factor_latency",
		"performance_claims", "performance_claims_latency",
		"license", "license_latency",
		"size_score", "size_score_latency",
		"dataset_and_code_score", "dataset_and_code_score_latency",
		"dataset_quality", "dataset_quality_latency",
		"code_quality", "code_quality_latency",
	}
	for _, k := range expected {
		assert.Contains(t, fields, k)
	}
	assert.Len(t, fields, len(expected))

	devices, ok := fields["size_score"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"raspberry_pi", "jetson_nano", "desktop_pc", "aws_server"}, keys(devices))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
