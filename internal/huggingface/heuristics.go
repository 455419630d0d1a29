package huggingface

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Appraise/internal/modelctx"
)

func totalSize(files []FileEntry) int64 {
	var n int64
	for _, f := range files {
		if f.Size > 0 {
			n += f.Size
		}
	}
	return n
}

// licenseOf prefers the model card, then the top-level field, then a
// license: tag.
func licenseOf(info *ModelInfo) string {
	if l, ok := info.CardData["license"].(string); ok && l != "" {
		return l
	}
	if info.License != "" {
		return info.License
	}
	for _, tag := range info.Tags {
		lower := strings.ToLower(tag)
		if strings.Contains(lower, "license:") || strings.Contains(lower, "lgpl") {
			return tag
		}
	}
	return ""
}

// logShare is log1p(v)/log1p(scale), zero for non-positive v.
func logShare(v, scale int64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Log1p(float64(v)) / math.Log1p(float64(scale))
}

func popularity(downloads, likes int64) float64 {
	p := 0.65*logShare(downloads, 5_000_000) + 0.35*logShare(likes, 100_000)
	return math.Max(0, math.Min(1, p))
}

// estimateDocs derives baseline documentation signals from popularity. The
// README analysis refines them afterwards.
func estimateDocs(downloads, likes int64) modelctx.DocSignals {
	p := popularity(downloads, likes)
	return modelctx.DocSignals{
		Readme:          math.Min(1, 0.50+p*0.50),
		Quickstart:      math.Min(1, 0.10+p*0.60),
		Tutorials:       math.Min(1, 0.05+p*0.55),
		APIDocs:         math.Min(1, 0.05+p*0.60),
		Reproducibility: math.Min(1, p*0.50),
	}
}

// estimateContributors maps downloads onto coarse contributor tiers.
func estimateContributors(downloads int64) int {
	switch {
	case downloads > 1_000_000:
		return 95
	case downloads > 100_000:
		return 45
	case downloads > 10_000:
		return 10
	case downloads > 1_000:
		return 3
	default:
		return 2
	}
}

// cardText flattens the model card into lowercase text for keyword probes.
func cardText(info *ModelInfo) string {
	if len(info.CardData) == 0 {
		return ""
	}
	b, err := json.Marshal(info.CardData)
	if err != nil {
		return ""
	}
	return strings.ToLower(string(b))
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func datasetPresent(info *ModelInfo) bool {
	for _, tag := range info.Tags {
		if strings.Contains(strings.ToLower(tag), "data") {
			return true
		}
	}
	return containsAny(cardText(info), "dataset", "training data", "pretraining data")
}

// estimateDatasetDocs weighs explicit card signals against a tempered
// popularity proxy.
func estimateDatasetDocs(info *ModelInfo) modelctx.DatasetDoc {
	card := cardText(info)
	sig := func(words ...string) float64 {
		if containsAny(card, words...) {
			return 1
		}
		return 0.3
	}
	p := logShare(info.Downloads, 1_000_000)

	return modelctx.DatasetDoc{
		Source:  math.Min(1, 0.85*sig("dataset", "data source", "corpus", "pretraining data")+0.15*p),
		License: math.Min(1, 0.85*sig("dataset license", "data license", "license")+0.15*p),
		Splits:  math.Min(1, 0.75*sig("train", "validation", "test split", "split")+0.25*p*0.8),
		Ethics:  math.Min(1, 0.65*sig("bias", "ethical", "responsible", "safety")+0.35*p*0.6),
	}
}

// estimateCodeQuality returns lint proxies (flake8, mypy, isort) that improve
// with popularity but never reach a perfect score.
func estimateCodeQuality(downloads int64) (flake8, mypy int, isortSorted bool) {
	p := math.Min(1, logShare(downloads, 1_000_000))
	flake8 = max(2, int(18*(1-p)))
	mypy = max(1, int(12*(1-p)))
	return flake8, mypy, p > 0.6
}

var benchmarkTerms = []string{
	"benchmark", "eval", "evaluation", "score", "accuracy", "acc", "f1", "bleu",
	"rouge", "exact match", "glue", "squad", "mnli", "spearman", "pearson",
}

func estimatePerformanceClaims(info *ModelInfo) modelctx.PerfClaims {
	card := cardText(info)
	bench := containsAny(card, benchmarkTerms...)
	if !bench && (info.Downloads > 100_000 || info.Likes > 2_000) {
		bench = true
	}
	return modelctx.PerfClaims{
		Benchmarks: bench,
		Citations:  strings.Contains(card, "citation") || info.Downloads > 5_000,
	}
}

// daysSinceUpdate defaults to a year when the timestamp is missing or bad.
func daysSinceUpdate(lastModified string, now time.Time) int {
	if lastModified == "" {
		return 365
	}
	t, err := time.Parse(time.RFC3339Nano, lastModified)
	if err != nil {
		return 365
	}
	return int(now.Sub(t).Hours() / 24)
}
