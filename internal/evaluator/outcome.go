package evaluator

import (
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/Appraise/internal/identifier"
	"github.com/MikeSquared-Agency/Appraise/internal/scoring"
)

// OutcomeKind classifies how the evaluation of one identifier ended. The
// failure kinds double as the "kind" field of the error log.
type OutcomeKind string

const (
	KindSuccess    OutcomeKind = "success"
	KindClassify   OutcomeKind = "classify"
	KindLookup     OutcomeKind = "lookup"
	KindProcessing OutcomeKind = "processing"
)

// Outcome is the result of evaluating one identifier. Record is set only on
// success; Err only on failure.
type Outcome struct {
	BatchID    string
	Identifier string
	Category   identifier.Category
	Kind       OutcomeKind
	Record     *scoring.ScoreRecord
	Err        error

	// Ignored marks a non-model classification that does not count against
	// the batch because the caller asked to skip other categories.
	Ignored bool
}

func (o Outcome) Failed() bool { return o.Kind != KindSuccess }

// Reason is the human-readable failure description used by every
// diagnostic channel.
func (o Outcome) Reason() string {
	switch o.Kind {
	case KindSuccess:
		return ""
	case KindLookup:
		return fmt.Sprintf("model lookup failed: %v", o.Err)
	case KindProcessing:
		return fmt.Sprintf("processing error: %v", o.Err)
	default:
		return o.Err.Error()
	}
}

// BatchResult summarises a completed batch.
type BatchResult struct {
	ID       string
	Total    int
	Duration time.Duration

	Succeeded          int
	ClassifyFailures   int
	LookupFailures     int
	ProcessingFailures int

	// IgnoredCategories counts DATASET and CODE identifiers excluded from
	// the exit decision.
	IgnoredCategories int

	// Skipped counts model identifiers that were never evaluated because
	// fail-fast or caller cancellation stopped the batch first.
	Skipped int

	// Interrupted is set when the caller's context ended the batch early.
	Interrupted bool

	// Records holds every success in emission order when the evaluator was
	// asked to keep them.
	Records []scoring.ScoreRecord
}

func (r *BatchResult) Failures() int {
	return r.ClassifyFailures + r.LookupFailures + r.ProcessingFailures
}

func (r *BatchResult) OK() bool {
	return r.Failures() == 0 && !r.Interrupted
}

// Err returns a *BatchFailedError when the batch did not fully succeed.
func (r *BatchResult) Err() error {
	if r.OK() {
		return nil
	}
	return &BatchFailedError{
		BatchID:     r.ID,
		Total:       r.Total,
		Failures:    r.Failures(),
		Skipped:     r.Skipped,
		Interrupted: r.Interrupted,
	}
}

type BatchFailedError struct {
	BatchID     string
	Total       int
	Failures    int
	Skipped     int
	Interrupted bool
}

func (e *BatchFailedError) Error() string {
	if e.Interrupted {
		return fmt.Sprintf("batch %s interrupted: %d of %d identifiers failed, %d skipped", e.BatchID, e.Failures, e.Total, e.Skipped)
	}
	return fmt.Sprintf("batch %s: %d of %d identifiers failed, %d skipped", e.BatchID, e.Failures, e.Total, e.Skipped)
}
