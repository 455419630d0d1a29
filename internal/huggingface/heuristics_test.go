package huggingface

import (
	"math"
	"testing"
	"time"
)

func TestEstimateContributors(t *testing.T) {
	tests := []struct {
		downloads int64
		want      int
	}{
		{0, 2},
		{1_000, 2},
		{1_001, 3},
		{10_001, 10},
		{100_001, 45},
		{1_000_001, 95},
	}
	for _, tt := range tests {
		if got := estimateContributors(tt.downloads); got != tt.want {
			t.Errorf("estimateContributors(%d) = %d, want %d", tt.downloads, got, tt.want)
		}
	}
}

func TestLicenseOf(t *testing.T) {
	tests := []struct {
		name string
		info ModelInfo
		want string
	}{
		{"card wins", ModelInfo{CardData: map[string]any{"license": "mit"}, License: "gpl"}, "mit"},
		{"top level", ModelInfo{License: "apache-2.0"}, "apache-2.0"},
		{"tag", ModelInfo{Tags: []string{"pytorch", "License:BSD"}}, "License:BSD"},
		{"lgpl tag", ModelInfo{Tags: []string{"lgpl-2.1"}}, "lgpl-2.1"},
		{"none", ModelInfo{Tags: []string{"pytorch"}}, ""},
		{"non-string card license", ModelInfo{CardData: map[string]any{"license": []any{"mit"}}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := licenseOf(&tt.info); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEstimateDocsBounds(t *testing.T) {
	for _, d := range []int64{0, 10, 1_000_000, 1 << 40} {
		docs := estimateDocs(d, d)
		for _, v := range []float64{docs.Readme, docs.Quickstart, docs.Tutorials, docs.APIDocs, docs.Reproducibility} {
			if v < 0 || v > 1 {
				t.Errorf("downloads=%d: signal %f out of range", d, v)
			}
		}
	}
	if docs := estimateDocs(0, 0); docs.Readme != 0.5 || docs.Reproducibility != 0 {
		t.Errorf("unexpected baseline for an unknown model: %+v", docs)
	}
}

func TestEstimateCodeQuality(t *testing.T) {
	f, m, sorted := estimateCodeQuality(0)
	if f != 18 || m != 12 || sorted {
		t.Errorf("unpopular model: got (%d, %d, %v)", f, m, sorted)
	}
	f, m, sorted = estimateCodeQuality(50_000_000)
	if f != 2 || m != 1 || !sorted {
		t.Errorf("popular model: got (%d, %d, %v)", f, m, sorted)
	}
}

func TestEstimatePerformanceClaims(t *testing.T) {
	p := estimatePerformanceClaims(&ModelInfo{CardData: map[string]any{"model-index": "GLUE results"}})
	if !p.Benchmarks || p.Citations {
		t.Errorf("expected benchmarks only, got %+v", p)
	}
	p = estimatePerformanceClaims(&ModelInfo{Likes: 3_000})
	if !p.Benchmarks {
		t.Error("expected popular model to count as benchmarked")
	}
	p = estimatePerformanceClaims(&ModelInfo{})
	if p.Benchmarks || p.Citations {
		t.Errorf("expected no claims, got %+v", p)
	}
}

func TestDatasetSignals(t *testing.T) {
	if datasetPresent(&ModelInfo{}) {
		t.Error("expected no dataset for an empty card")
	}
	if !datasetPresent(&ModelInfo{Tags: []string{"dataset:squad"}}) {
		t.Error("expected dataset tag to count")
	}

	docs := estimateDatasetDocs(&ModelInfo{CardData: map[string]any{"datasets": "corpus", "bias": "see section"}})
	if docs.Source < 0.85 || docs.Ethics < 0.65 {
		t.Errorf("expected explicit signals to dominate, got %+v", docs)
	}
	bare := estimateDatasetDocs(&ModelInfo{})
	if math.Abs(bare.Source-0.255) > 1e-9 {
		t.Errorf("expected tempered default, got %f", bare.Source)
	}
}

func TestDaysSinceUpdate(t *testing.T) {
	now := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	if got := daysSinceUpdate("2024-01-01T00:00:00Z", now); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	if got := daysSinceUpdate("yesterday", now); got != 365 {
		t.Errorf("expected 365 for a bad timestamp, got %d", got)
	}
}
