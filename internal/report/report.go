// Package report turns a batch's successful records into a ranked summary.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MikeSquared-Agency/Appraise/internal/scoring"
)

var printer = message.NewPrinter(language.English)

const (
	excellentThreshold  = 0.8
	goodThreshold       = 0.6
	acceptableThreshold = 0.4
	deviceFitThreshold  = 0.5
	topN                = 5
)

// Analysis is the aggregate view of a batch.
type Analysis struct {
	Total   int
	Ranked  []scoring.ScoreRecord
	Average float64
	Highest float64
	Lowest  float64

	Excellent  int
	Good       int
	Acceptable int
	Poor       int

	// Compliant counts records whose license scored 1.0.
	Compliant    int
	NonCompliant int

	RaspberryPi int
	DesktopPC   int

	Top           []scoring.ScoreRecord
	BestCompliant *scoring.ScoreRecord

	// TradeOffs is the Pareto frontier of the ranked records.
	TradeOffs []scoring.ScoreRecord
}

// Analyze ranks records by net score (stable for ties) and buckets them.
func Analyze(records []scoring.ScoreRecord) Analysis {
	a := Analysis{Total: len(records)}
	if len(records) == 0 {
		return a
	}

	a.Ranked = append([]scoring.ScoreRecord(nil), records...)
	sort.SliceStable(a.Ranked, func(i, j int) bool {
		return a.Ranked[i].NetScore > a.Ranked[j].NetScore
	})

	var sum float64
	a.Highest, a.Lowest = a.Ranked[0].NetScore, a.Ranked[len(a.Ranked)-1].NetScore
	for i := range a.Ranked {
		r := &a.Ranked[i]
		sum += r.NetScore

		switch {
		case r.NetScore >= excellentThreshold:
			a.Excellent++
		case r.NetScore >= goodThreshold:
			a.Good++
		case r.NetScore >= acceptableThreshold:
			a.Acceptable++
		default:
			a.Poor++
		}

		if r.License >= 1.0 {
			a.Compliant++
			if a.BestCompliant == nil {
				a.BestCompliant = r
			}
		} else {
			a.NonCompliant++
		}

		if r.SizeScore.RaspberryPi > deviceFitThreshold {
			a.RaspberryPi++
		}
		if r.SizeScore.DesktopPC > deviceFitThreshold {
			a.DesktopPC++
		}
	}
	a.Average = sum / float64(len(records))
	a.Top = a.Ranked[:min(topN, len(a.Ranked))]
	a.TradeOffs = Frontier(a.Ranked)
	return a
}

// Label is the quality bucket for a net score.
func Label(score float64) string {
	switch {
	case score >= excellentThreshold:
		return "Excellent"
	case score >= goodThreshold:
		return "Good"
	case score >= acceptableThreshold:
		return "Acceptable"
	default:
		return "Poor"
	}
}

func formatScore(score float64) string {
	return printer.Sprintf("%.1f%% (%s)", score*100, Label(score))
}

// Render writes the human-readable summary.
func Render(w io.Writer, a Analysis, generated time.Time) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", 80)
	section := func(title string) {
		fmt.Fprintf(bw, "%s\n%s\n", title, strings.Repeat("-", 40))
	}

	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "MODEL EVALUATION SUMMARY")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Generated: %s\n", generated.Format("2006-01-02 15:04:05"))
	printer.Fprintf(bw, "Total Models Evaluated: %d\n\n", a.Total)

	if a.Total == 0 {
		fmt.Fprintln(bw, "No models were successfully evaluated.")
		fmt.Fprintln(bw, "Check the input identifiers and network connectivity.")
		fmt.Fprintln(bw)
	} else {
		section("SUMMARY")
		fmt.Fprintf(bw, "Average Score: %s\n", formatScore(a.Average))
		fmt.Fprintf(bw, "Highest Score: %s\n", formatScore(a.Highest))
		fmt.Fprintf(bw, "Lowest Score:  %s\n\n", formatScore(a.Lowest))

		section("QUALITY DISTRIBUTION")
		fmt.Fprintf(bw, "  Excellent (>=80%%):   %d\n", a.Excellent)
		fmt.Fprintf(bw, "  Good (60-79%%):       %d\n", a.Good)
		fmt.Fprintf(bw, "  Acceptable (40-59%%): %d\n", a.Acceptable)
		fmt.Fprintf(bw, "  Poor (<40%%):         %d\n\n", a.Poor)

		section("LICENSE COMPLIANCE")
		fmt.Fprintf(bw, "Compliant:     %d\n", a.Compliant)
		fmt.Fprintf(bw, "Non-compliant: %d\n\n", a.NonCompliant)

		section("DEVICE COMPATIBILITY")
		fmt.Fprintf(bw, "Raspberry Pi: %d\n", a.RaspberryPi)
		fmt.Fprintf(bw, "Desktop PC:   %d\n\n", a.DesktopPC)

		section("TOP MODELS")
		for i, r := range a.Top {
			license := "other"
			if r.License >= 1.0 {
				license = "compliant"
			}
			fmt.Fprintf(bw, "%d. %s\n   Score: %s\n   License: %s\n\n", i+1, r.Name, formatScore(r.NetScore), license)
		}

		section("DEPLOYMENT TRADE-OFFS")
		fmt.Fprintln(bw, "Not outranked on score, Raspberry Pi fit and license together:")
		for _, r := range a.TradeOffs {
			fmt.Fprintf(bw, "  %s  score %.2f  pi %.2f  license %.1f\n", r.Name, r.NetScore, r.SizeScore.RaspberryPi, r.License)
		}
		fmt.Fprintln(bw)

		section("RECOMMENDATIONS")
		if a.BestCompliant != nil {
			fmt.Fprintf(bw, "Best license-compliant model: %s (%s)\n", a.BestCompliant.Name, formatScore(a.BestCompliant.NetScore))
		} else {
			fmt.Fprintln(bw, "No license-compliant models found; review license implications.")
		}
		if a.RaspberryPi > 0 {
			fmt.Fprintf(bw, "%d models are suitable for Raspberry Pi deployment\n", a.RaspberryPi)
		} else {
			fmt.Fprintln(bw, "No models suitable for Raspberry Pi deployment found.")
		}
		if a.Average < goodThreshold {
			fmt.Fprintln(bw, "Overall model quality is below the recommended threshold.")
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, rule)
	return bw.Flush()
}

// WriteFiles writes <base>.ndjson with every record and <base>_summary.txt
// with the rendered summary, returning both paths.
func WriteFiles(base string, records []scoring.ScoreRecord, generated time.Time) (ndjsonPath, summaryPath string, err error) {
	ndjsonPath = base + ".ndjson"
	summaryPath = base + "_summary.txt"

	if err := writeNDJSON(ndjsonPath, records); err != nil {
		return "", "", err
	}

	f, err := os.Create(summaryPath)
	if err != nil {
		return "", "", fmt.Errorf("create summary: %w", err)
	}
	defer f.Close()
	if err := Render(f, Analyze(records), generated); err != nil {
		return "", "", fmt.Errorf("write summary: %w", err)
	}
	return ndjsonPath, summaryPath, f.Close()
}

func writeNDJSON(path string, records []scoring.ScoreRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return f.Close()
}
