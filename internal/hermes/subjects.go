package hermes

import "strings"

const (
	StreamName   = "APPRAISE_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

func SubjectRecordScored(name string) string      { return "appraise.record." + Token(name) + ".scored" }
func SubjectOutcomeFailed(name string) string     { return "appraise.outcome." + Token(name) + ".failed" }
func SubjectBatchCompleted(batchID string) string { return "appraise.batch." + Token(batchID) + ".completed" }

var tokenReplacer = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_", "\t", "_")

// Token makes s safe to use as a single subject token.
func Token(s string) string {
	if s == "" {
		return "_"
	}
	return tokenReplacer.Replace(s)
}
