package scoring

import (
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/Appraise/internal/modelctx"
)

// ScoreRecord is the complete scoring output for one model. Its JSON form is
// one line of the result stream.
type ScoreRecord struct {
	Name     string `json:"name"`
	Category string `json:"category"`

	NetScore        float64 `json:"net_score"`
	NetScoreLatency int64   `json:"net_score_latency"`

	RampUpTime        float64 `json:"ramp_up_time"`
	RampUpTimeLatency int64   `json:"ramp_up_time_latency"`

	BusFactor        float64 `json:"bus_factor"`
	BusFactorLatency int64   `json:"bus_factor_latency"`

	PerformanceClaims        float64 `json:"performance_claims"`
	PerformanceClaimsLatency int64   `json:"performance_claims_latency"`

	License        float64 `json:"license"`
	LicenseLatency int64   `json:"license_latency"`

	// Size is the linear size-band score. The result stream carries the device
	// map under size_score, so this is kept out of the JSON form.
	Size             float64      `json:"-"`
	SizeScore        DeviceScores `json:"size_score"`
	SizeScoreLatency int64        `json:"size_score_latency"`

	DatasetAndCodeScore        float64 `json:"dataset_and_code_score"`
	DatasetAndCodeScoreLatency int64   `json:"dataset_and_code_score_latency"`

	DatasetQuality        float64 `json:"dataset_quality"`
	DatasetQualityLatency int64   `json:"dataset_quality_latency"`

	CodeQuality        float64 `json:"code_quality"`
	CodeQualityLatency int64   `json:"code_quality_latency"`
}

// Metric returns the score and latency recorded for m.
func (r *ScoreRecord) Metric(m modelctx.Metric) MetricResult {
	switch m {
	case modelctx.MetricSize:
		return MetricResult{Score: r.Size, LatencyMs: r.SizeScoreLatency}
	case modelctx.MetricLicense:
		return MetricResult{Score: r.License, LatencyMs: r.LicenseLatency}
	case modelctx.MetricRampUp:
		return MetricResult{Score: r.RampUpTime, LatencyMs: r.RampUpTimeLatency}
	case modelctx.MetricBusFactor:
		return MetricResult{Score: r.BusFactor, LatencyMs: r.BusFactorLatency}
	case modelctx.MetricDatasetAndCode:
		return MetricResult{Score: r.DatasetAndCodeScore, LatencyMs: r.DatasetAndCodeScoreLatency}
	case modelctx.MetricDatasetQuality:
		return MetricResult{Score: r.DatasetQuality, LatencyMs: r.DatasetQualityLatency}
	case modelctx.MetricCodeQuality:
		return MetricResult{Score: r.CodeQuality, LatencyMs: r.CodeQualityLatency}
	case modelctx.MetricPerformanceClaims:
		return MetricResult{Score: r.PerformanceClaims, LatencyMs: r.PerformanceClaimsLatency}
	}
	return MetricResult{}
}

func (r *ScoreRecord) set(m modelctx.Metric, res MetricResult) {
	switch m {
	case modelctx.MetricSize:
		r.Size, r.SizeScoreLatency = res.Score, res.LatencyMs
	case modelctx.MetricLicense:
		r.License, r.LicenseLatency = res.Score, res.LatencyMs
	case modelctx.MetricRampUp:
		r.RampUpTime, r.RampUpTimeLatency = res.Score, res.LatencyMs
	case modelctx.MetricBusFactor:
		r.BusFactor, r.BusFactorLatency = res.Score, res.LatencyMs
	case modelctx.MetricDatasetAndCode:
		r.DatasetAndCodeScore, r.DatasetAndCodeScoreLatency = res.Score, res.LatencyMs
	case modelctx.MetricDatasetQuality:
		r.DatasetQuality, r.DatasetQualityLatency = res.Score, res.LatencyMs
	case modelctx.MetricCodeQuality:
		r.CodeQuality, r.CodeQualityLatency = res.Score, res.LatencyMs
	case modelctx.MetricPerformanceClaims:
		r.PerformanceClaims, r.PerformanceClaimsLatency = res.Score, res.LatencyMs
	}
}

// Scorer combines the eight sub-metrics into a ScoreRecord.
type Scorer struct {
	weights WeightSet
	params  Params
	logger  *slog.Logger
}

// NewScorer creates a Scorer with the given weights and metric bounds.
// Weights are expected to have passed Validate.
func NewScorer(weights WeightSet, params Params, logger *slog.Logger) *Scorer {
	return &Scorer{
		weights: weights,
		params:  params,
		logger:  logger,
	}
}

// Compute runs every sub-metric against ec. Results are keyed by metric.
func (s *Scorer) Compute(ec *modelctx.EvaluationContext) map[modelctx.Metric]MetricResult {
	d := ec.Docs
	dd := ec.DatasetDoc
	return map[modelctx.Metric]MetricResult{
		modelctx.MetricSize:              SizeScore(ec.TotalBytes, s.params.SizeLower, s.params.SizeUpper),
		modelctx.MetricLicense:           LicenseScore(ec.LicenseText),
		modelctx.MetricRampUp:            RampUpScore(d.Readme, d.Quickstart, d.Tutorials, d.APIDocs, d.Reproducibility),
		modelctx.MetricBusFactor:         BusFactorScore(ec.Contributors, s.params.BusFactorK),
		modelctx.MetricDatasetAndCode:    DatasetAndCodeScore(ec.DatasetPresent, ec.CodePresent),
		modelctx.MetricDatasetQuality:    DatasetQualityScore(dd.Source, dd.License, dd.Splits, dd.Ethics),
		modelctx.MetricCodeQuality:       CodeQualityScore(ec.Flake8Errors, ec.IsortSorted, ec.MypyErrors, s.params.Flake8Cap, s.params.MypyCap),
		modelctx.MetricPerformanceClaims: PerformanceClaimsScore(ec.Perf.Benchmarks, ec.Perf.Citations),
	}
}

// Score computes the full record for one model.
//
// Upstream latencies supplied by the context take precedence over local
// compute timings. The net latency follows a parallel cost model: the slowest
// metric plus the wall time of this call.
func (s *Scorer) Score(name, category string, ec *modelctx.EvaluationContext) ScoreRecord {
	start := time.Now()

	rec := ScoreRecord{Name: name, Category: category}

	results := s.Compute(ec)
	var total float64
	var slowest int64 = 1
	for _, m := range modelctx.AllMetrics {
		res := results[m]
		if upstream, ok := ec.Latency(m); ok {
			res.LatencyMs = upstream
		}
		res.LatencyMs = floorMs(res.LatencyMs)
		if res.LatencyMs > slowest {
			slowest = res.LatencyMs
		}
		total += res.Score * s.weights.For(m)
		rec.set(m, res)
	}

	rec.SizeScore = DeviceSizeScores(ec.TotalBytes)
	rec.NetScore = clamp01(total)

	overhead := floorMs(time.Since(start).Milliseconds())
	rec.NetScoreLatency = slowest + overhead

	s.logger.Debug("scored model",
		"name", name,
		"net_score", rec.NetScore,
		"net_score_latency", rec.NetScoreLatency,
	)
	return rec
}
