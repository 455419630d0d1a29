package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Appraise/internal/modelctx"
)

// WeightSet defines the relative importance of each sub-metric in the net score.
// All weights must sum to 1.0 (±0.001 tolerance).
type WeightSet struct {
	Size              float64
	License           float64
	RampUp            float64
	BusFactor         float64
	DatasetAndCode    float64
	DatasetQuality    float64
	CodeQuality       float64
	PerformanceClaims float64
}

// DefaultWeights returns the policy weight distribution.
func DefaultWeights() WeightSet {
	return WeightSet{
		Size:              0.05,
		License:           0.20,
		RampUp:            0.15,
		BusFactor:         0.10,
		DatasetAndCode:    0.20,
		DatasetQuality:    0.05,
		CodeQuality:       0.15,
		PerformanceClaims: 0.10,
	}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.Size + w.License + w.RampUp + w.BusFactor +
		w.DatasetAndCode + w.DatasetQuality + w.CodeQuality + w.PerformanceClaims
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for m, v := range w.asMap() {
		if v < 0 {
			return fmt.Errorf("negative weight for %s: %f", m, v)
		}
	}
	return nil
}

// For returns the weight applied to metric m.
func (w WeightSet) For(m modelctx.Metric) float64 {
	return w.asMap()[m]
}

func (w WeightSet) asMap() map[modelctx.Metric]float64 {
	return map[modelctx.Metric]float64{
		modelctx.MetricSize:              w.Size,
		modelctx.MetricLicense:           w.License,
		modelctx.MetricRampUp:            w.RampUp,
		modelctx.MetricBusFactor:         w.BusFactor,
		modelctx.MetricDatasetAndCode:    w.DatasetAndCode,
		modelctx.MetricDatasetQuality:    w.DatasetQuality,
		modelctx.MetricCodeQuality:       w.CodeQuality,
		modelctx.MetricPerformanceClaims: w.PerformanceClaims,
	}
}
