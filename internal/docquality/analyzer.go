// Package docquality derives documentation quality signals from a model's
// README. A local heuristic is always available; a remote language-model
// analyzer can be layered on top and falls back to it on any failure.
package docquality

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/MikeSquared-Agency/Appraise/internal/modelctx"
)

// Source tags which strategy produced an Analysis.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Analysis holds documentation signals extracted from README text.
type Analysis struct {
	DocumentationQuality     float64 `json:"documentation_quality"`
	EaseOfUse                float64 `json:"ease_of_use"`
	ExamplesPresent          bool    `json:"examples_present"`
	InstallationInstructions bool    `json:"installation_instructions"`
	UsageExamples            bool    `json:"usage_examples"`
	CodeBlocks               int     `json:"code_blocks"`
	Source                   Source  `json:"source"`
}

// Composite folds an analysis into one score: 40% quality, 40% ease of use
// and 20% for the presence of examples.
func (a Analysis) Composite() float64 {
	examples := 0.0
	if a.ExamplesPresent {
		examples = 1
	}
	return 0.4*a.DocumentationQuality + 0.4*a.EaseOfUse + 0.2*examples
}

// Analyzer extracts documentation signals. Implementations never fail: any
// internal problem degrades to the local heuristic.
type Analyzer interface {
	Analyze(ctx context.Context, readme, identifier string) Analysis
}

// Config selects and configures the analyzer strategy.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	// Strict forbids remote calls so scores are reproducible.
	Strict bool
	// Seed is forwarded to the remote model for repeatable sampling.
	Seed int64
}

// New returns the remote analyzer when it is configured and permitted, and
// the local heuristic otherwise.
func New(cfg Config, logger *slog.Logger) Analyzer {
	local := NewLocalAnalyzer()
	if cfg.Strict {
		logger.Info("strict determinism enabled, using local documentation analysis")
		return local
	}
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		logger.Info("remote documentation analyzer not configured, using local analysis")
		return local
	}
	return NewRemoteAnalyzer(cfg, local, logger)
}

const (
	baseWeight     = 0.7
	enhancerWeight = 0.3
)

// Blend mixes a base readme signal with an analysis composite (70/30).
func Blend(base float64, a Analysis) float64 {
	return clamp01(baseWeight*base + enhancerWeight*a.Composite())
}

// Refine applies an analysis to popularity-derived doc signals: the readme
// signal is blended with the analysis and the remaining signals get fixed
// bumps when the README shows installation steps, usage or several code blocks.
func Refine(docs modelctx.DocSignals, a Analysis) modelctx.DocSignals {
	docs.Readme = Blend(docs.Readme, a)
	if a.InstallationInstructions {
		docs.Quickstart = math.Min(1, docs.Quickstart+0.1)
	}
	if a.UsageExamples {
		docs.Tutorials = math.Min(1, docs.Tutorials+0.15)
	}
	if a.CodeBlocks >= 2 {
		docs.APIDocs = math.Min(1, docs.APIDocs+0.1)
	}
	return docs
}

var (
	installWords = []string{"install", "pip", "conda", "setup"}
	usageWords   = []string{"usage", "example", "how to", "getting started"}
	apiWords     = []string{"api", "reference", "documentation", "docs"}
	exampleWords = []string{"example", "sample", "demo", "tutorial"}
)

// LocalAnalyzer is a deterministic keyword and structure heuristic.
type LocalAnalyzer struct {
	md goldmark.Markdown
}

func NewLocalAnalyzer() *LocalAnalyzer {
	return &LocalAnalyzer{md: goldmark.New()}
}

// Analyze scores the README 0.25 each for installation steps, usage notes,
// API references and at least one code block.
func (l *LocalAnalyzer) Analyze(_ context.Context, readme, _ string) Analysis {
	if strings.TrimSpace(readme) == "" {
		return Analysis{Source: SourceLocal}
	}

	lower := strings.ToLower(readme)
	a := Analysis{
		InstallationInstructions: containsAny(lower, installWords),
		UsageExamples:            containsAny(lower, usageWords),
		ExamplesPresent:          containsAny(lower, exampleWords),
		CodeBlocks:               l.countCodeBlocks([]byte(readme)),
		Source:                   SourceLocal,
	}

	var quality float64
	if a.InstallationInstructions {
		quality += 0.25
	}
	if a.UsageExamples {
		quality += 0.25
	}
	if containsAny(lower, apiWords) {
		quality += 0.25
	}
	if a.CodeBlocks >= 1 {
		quality += 0.25
	}
	a.DocumentationQuality = quality
	a.EaseOfUse = math.Min(1, float64(len(readme))/1000*0.5+quality*0.5)
	return a
}

func (l *LocalAnalyzer) countCodeBlocks(source []byte) int {
	doc := l.md.Parser().Parse(text.NewReader(bytes.Clone(source)))
	var n int
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			n++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return n
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(1, v)
}
