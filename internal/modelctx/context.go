// Package modelctx defines the per-model snapshot consumed by the scoring
// engine and the contract for the collaborators that assemble it.
package modelctx

import (
	"context"
	"fmt"
)

// Metric names a scoring dimension. The string values double as the
// NDJSON field names of the result stream.
type Metric string

const (
	MetricSize              Metric = "size_score"
	MetricLicense           Metric = "license"
	MetricRampUp            Metric = "ramp_up_time"
	MetricBusFactor         Metric = "bus_factor"
	MetricDatasetAndCode    Metric = "dataset_and_code_score"
	MetricDatasetQuality    Metric = "dataset_quality"
	MetricCodeQuality       Metric = "code_quality"
	MetricPerformanceClaims Metric = "performance_claims"
)

// AllMetrics lists the eight sub-metrics in emission order.
var AllMetrics = []Metric{
	MetricSize,
	MetricLicense,
	MetricRampUp,
	MetricBusFactor,
	MetricDatasetAndCode,
	MetricDatasetQuality,
	MetricCodeQuality,
	MetricPerformanceClaims,
}

// DocSignals are documentation quality signals feeding ramp-up, each in [0,1].
type DocSignals struct {
	Readme          float64 `json:"readme"`
	Quickstart      float64 `json:"quickstart"`
	Tutorials       float64 `json:"tutorials"`
	APIDocs         float64 `json:"api_docs"`
	Reproducibility float64 `json:"reproducibility"`
}

// DatasetDoc are dataset documentation signals, each in [0,1].
type DatasetDoc struct {
	Source  float64 `json:"source"`
	License float64 `json:"license"`
	Splits  float64 `json:"splits"`
	Ethics  float64 `json:"ethics"`
}

// PerfClaims records whether benchmarks and citations back the model's claims.
type PerfClaims struct {
	Benchmarks bool `json:"benchmarks"`
	Citations  bool `json:"citations"`
}

// EvaluationContext is an immutable snapshot of facts about one model.
// Builders hand out a fresh value per evaluation; the engine never mutates it.
type EvaluationContext struct {
	TotalBytes     int64      `json:"total_bytes"`
	LicenseText    string     `json:"license_text"`
	Docs           DocSignals `json:"docs"`
	Contributors   int        `json:"contributors"`
	DatasetPresent bool       `json:"dataset_present"`
	CodePresent    bool       `json:"code_present"`
	DatasetDoc     DatasetDoc `json:"dataset_doc"`
	Flake8Errors   int        `json:"flake8_errors"`
	MypyErrors     int        `json:"mypy_errors"`
	IsortSorted    bool       `json:"isort_sorted"`
	Perf           PerfClaims `json:"perf"`

	// Latencies holds upstream-measured milliseconds per metric, including
	// network and parsing cost. Optional.
	Latencies map[Metric]int64 `json:"latencies,omitempty"`

	// Informational; not scored.
	ReadmeText      string `json:"-"`
	Downloads       int64  `json:"downloads,omitempty"`
	Likes           int64  `json:"likes,omitempty"`
	DaysSinceUpdate int    `json:"days_since_update,omitempty"`
}

// Latency returns the upstream latency for m, if one was supplied.
func (c *EvaluationContext) Latency(m Metric) (int64, bool) {
	if c.Latencies == nil {
		return 0, false
	}
	v, ok := c.Latencies[m]
	return v, ok
}

// Builder assembles an EvaluationContext for a model identifier. It must be
// idempotent and side-effect free from the engine's point of view, and is
// expected to enforce its own per-call timeouts.
type Builder interface {
	BuildContext(ctx context.Context, identifier string) (*EvaluationContext, error)
}

// LookupError reports that the upstream metadata source refused or could not
// find a model (not found, unauthorized, bad gateway and similar).
type LookupError struct {
	Identifier string
	Status     int
	Message    string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: HTTP %d - %s", e.Identifier, e.Status, e.Message)
}
