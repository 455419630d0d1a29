package scoring

import (
	"math"
	"strings"
	"time"
)

// MetricResult is one sub-metric's score and the time it took to compute.
type MetricResult struct {
	Score     float64 `json:"score"`
	LatencyMs int64   `json:"latency_ms"`
}

// Params holds the tunable bounds of the metric library.
type Params struct {
	// SizeLower is the artifact size (bytes) at or below which size scores 1.0.
	SizeLower int64
	// SizeUpper is the artifact size (bytes) at or above which size scores 0.0.
	SizeUpper int64
	// BusFactorK is the saturation constant of the contributor curve.
	BusFactorK int
	// Flake8Cap is the lint error count at which the lint term reaches 0.
	Flake8Cap int
	// MypyCap is the type error count at which the typing term reaches 0.
	MypyCap int
}

// DefaultParams returns the default metric bounds.
func DefaultParams() Params {
	return Params{
		SizeLower:  50_000_000,
		SizeUpper:  500_000_000,
		BusFactorK: 5,
		Flake8Cap:  50,
		MypyCap:    20,
	}
}

var permissiveLicenses = []string{
	"lgpl-2.1",
	"lgpl v2.1",
	"gnu lesser general public license v2.1",
	"apache-2.0",
	"apache 2.0",
	"mit",
	"bsd-2",
	"bsd-3",
	"bsd 2",
	"bsd 3",
	"mpl-2.0",
	"mpl 2.0",
	"cc-by-4.0",
	"unlicense",
}

var copyleftLicenses = []string{
	"gpl-3.0",
	"gpl v3",
	"gnu general public license v3",
	"agpl",
}

// timed runs fn, clamps its score to [0,1] and reports elapsed time with a 1ms floor.
func timed(fn func() float64) MetricResult {
	start := time.Now()
	score := fn()
	return MetricResult{Score: clamp01(score), LatencyMs: floorMs(time.Since(start).Milliseconds())}
}

// SizeScore ramps linearly from 1.0 at lower to 0.0 at upper.
// A degenerate band (upper <= lower) scores 0.0.
func SizeScore(totalBytes, lower, upper int64) MetricResult {
	return timed(func() float64 {
		if upper <= lower {
			return 0
		}
		return (float64(upper) - float64(totalBytes)) / (float64(upper) - float64(lower))
	})
}

// LicenseScore is 1.0 for permissive licenses, 0.0 for strong copyleft and
// 0.5 for anything empty, custom or unrecognised.
func LicenseScore(licenseText string) MetricResult {
	return timed(func() float64 {
		text := strings.ToLower(strings.TrimSpace(licenseText))
		if text == "" {
			return 0.5
		}
		for _, tok := range permissiveLicenses {
			if strings.Contains(text, tok) {
				return 1.0
			}
		}
		for _, tok := range copyleftLicenses {
			if strings.Contains(text, tok) {
				return 0.0
			}
		}
		return 0.5
	})
}

// RampUpScore is the mean of the five documentation signals.
func RampUpScore(readme, quickstart, tutorials, apiDocs, reproducibility float64) MetricResult {
	return timed(func() float64 {
		return mean(readme, quickstart, tutorials, apiDocs, reproducibility)
	})
}

// BusFactorScore saturates as contributors/(contributors+k).
func BusFactorScore(contributors, k int) MetricResult {
	return timed(func() float64 {
		c := max(0, contributors)
		if c+k <= 0 {
			return 0
		}
		return float64(c) / float64(c+k)
	})
}

// DatasetAndCodeScore is the mean of the dataset and code indicators.
func DatasetAndCodeScore(datasetPresent, codePresent bool) MetricResult {
	return timed(func() float64 {
		return mean(indicator(datasetPresent), indicator(codePresent))
	})
}

// DatasetQualityScore is the mean of the four dataset documentation signals.
func DatasetQualityScore(source, license, splits, ethics float64) MetricResult {
	return timed(func() float64 {
		return mean(source, license, splits, ethics)
	})
}

// CodeQualityScore weights lint (40%), import ordering (20%) and typing (40%).
//
//	0.4*(1-flake8/flake8Cap) + 0.2*isort + 0.4*(1-mypy/mypyCap)
//
// Each error term is floored at 0; a non-positive cap zeroes its term.
func CodeQualityScore(flake8Errors int, isortSorted bool, mypyErrors, flake8Cap, mypyCap int) MetricResult {
	return timed(func() float64 {
		return 0.4*errorTerm(flake8Errors, flake8Cap) +
			0.2*indicator(isortSorted) +
			0.4*errorTerm(mypyErrors, mypyCap)
	})
}

// PerformanceClaimsScore is the mean of the benchmark and citation indicators.
func PerformanceClaimsScore(benchmarks, citations bool) MetricResult {
	return timed(func() float64 {
		return mean(indicator(benchmarks), indicator(citations))
	})
}

func errorTerm(errs, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Max(0, 1-float64(max(0, errs))/float64(limit))
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// mean clamps each value to [0,1] before averaging.
func mean(vals ...float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += clamp01(v)
	}
	return sum / float64(len(vals))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func floorMs(ms int64) int64 {
	if ms < 1 {
		return 1
	}
	return ms
}
