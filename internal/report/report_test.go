package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Appraise/internal/scoring"
)

func rec(name string, net, license, pi float64) scoring.ScoreRecord {
	return scoring.ScoreRecord{
		Name:      name,
		Category:  "MODEL",
		NetScore:  net,
		License:   license,
		SizeScore: scoring.DeviceScores{RaspberryPi: pi, JetsonNano: 1, DesktopPC: 1, AWSServer: 1},
	}
}

func sample() []scoring.ScoreRecord {
	return []scoring.ScoreRecord{
		rec("mid", 0.65, 0, 0.2),
		rec("top", 0.91, 1, 0.9),
		rec("low", 0.30, 1, 0.0),
		rec("tie-a", 0.45, 0, 0.6),
		rec("tie-b", 0.45, 1, 0.1),
		rec("edge", 0.80, 0, 0.5),
	}
}

func TestAnalyze(t *testing.T) {
	a := Analyze(sample())

	assert.Equal(t, 6, a.Total)
	names := make([]string, len(a.Ranked))
	for i, r := range a.Ranked {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"top", "edge", "mid", "tie-a", "tie-b", "low"}, names, "ties keep input order")

	assert.InDelta(t, (0.65+0.91+0.30+0.45+0.45+0.80)/6, a.Average, 1e-9)
	assert.Equal(t, 0.91, a.Highest)
	assert.Equal(t, 0.30, a.Lowest)

	assert.Equal(t, 2, a.Excellent, "0.8 is excellent")
	assert.Equal(t, 1, a.Good)
	assert.Equal(t, 2, a.Acceptable)
	assert.Equal(t, 1, a.Poor)

	assert.Equal(t, 3, a.Compliant)
	assert.Equal(t, 3, a.NonCompliant)
	assert.Equal(t, 2, a.RaspberryPi, "0.5 is not above the device threshold")
	assert.Equal(t, 6, a.DesktopPC)

	require.Len(t, a.Top, 5)
	assert.Equal(t, "tie-b", a.Top[4].Name)
	require.NotNil(t, a.BestCompliant)
	assert.Equal(t, "top", a.BestCompliant.Name)
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze(nil)
	assert.Zero(t, a.Total)
	assert.Empty(t, a.Top)
	assert.Nil(t, a.BestCompliant)
}

func TestLabel(t *testing.T) {
	cases := map[float64]string{
		1.0:  "Excellent",
		0.8:  "Excellent",
		0.79: "Good",
		0.6:  "Good",
		0.4:  "Acceptable",
		0.39: "Poor",
		0:    "Poor",
	}
	for score, want := range cases {
		assert.Equal(t, want, Label(score), "score %v", score)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, Render(&buf, Analyze(sample()), generated))

	out := buf.String()
	assert.Contains(t, out, "Generated: 2025-03-04 05:06:07")
	assert.Contains(t, out, "Total Models Evaluated: 6")
	assert.Contains(t, out, "Highest Score: 91.0% (Excellent)")
	assert.Contains(t, out, "Lowest Score:  30.0% (Poor)")
	assert.Contains(t, out, "1. top\n   Score: 91.0% (Excellent)\n   License: compliant")
	assert.Contains(t, out, "Best license-compliant model: top (91.0% (Excellent))")
	assert.Contains(t, out, "2 models are suitable for Raspberry Pi deployment")
	assert.NotContains(t, out, "6. low")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Analyze(nil), time.Now()))
	assert.Contains(t, buf.String(), "No models were successfully evaluated.")
	assert.NotContains(t, buf.String(), "TOP MODELS")
}

func TestRenderNoCompliantModels(t *testing.T) {
	var buf bytes.Buffer
	records := []scoring.ScoreRecord{rec("x", 0.2, 0, 0)}
	require.NoError(t, Render(&buf, Analyze(records), time.Now()))
	out := buf.String()
	assert.Contains(t, out, "No license-compliant models found")
	assert.Contains(t, out, "No models suitable for Raspberry Pi deployment found.")
	assert.Contains(t, out, "below the recommended threshold")
}

func TestWriteFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "evaluation")
	records := sample()

	ndjsonPath, summaryPath, err := WriteFiles(base, records, time.Now())
	require.NoError(t, err)
	assert.Equal(t, base+".ndjson", ndjsonPath)
	assert.Equal(t, base+"_summary.txt", summaryPath)

	f, err := os.Open(ndjsonPath)
	require.NoError(t, err)
	defer f.Close()

	var got []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r scoring.ScoreRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		got = append(got, r.Name)
	}
	assert.Equal(t, []string{"mid", "top", "low", "tie-a", "tie-b", "edge"}, got, "results keep completion order")

	summary, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(summary), strings.Repeat("=", 80)))
}

func TestWriteFilesBadDir(t *testing.T) {
	_, _, err := WriteFiles(filepath.Join(t.TempDir(), "missing", "out"), sample(), time.Now())
	assert.Error(t, err)
}

func TestFrontier(t *testing.T) {
	records := []scoring.ScoreRecord{
		rec("big-strong", 0.90, 1, 0.1),
		rec("small-weak", 0.50, 1, 0.9),
		rec("dominated", 0.45, 1, 0.8),
		rec("copyleft", 0.95, 0, 0.0),
		rec("twin", 0.50, 1, 0.9),
	}
	got := Frontier(records)

	names := make([]string, len(got))
	for i, r := range got {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"big-strong", "small-weak", "copyleft", "twin"}, names, "equal records do not dominate each other")

	assert.Len(t, Frontier(records[:1]), 1)
	assert.Empty(t, Frontier(nil))
}

func TestAnalyzeTradeOffs(t *testing.T) {
	a := Analyze(sample())
	require.Len(t, a.TradeOffs, 1)
	assert.Equal(t, "top", a.TradeOffs[0].Name)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, a, time.Now()))
	assert.Contains(t, buf.String(), "  top  score 0.91  pi 0.90  license 1.0\n")
}
