package emit

import (
	"time"

	"github.com/MikeSquared-Agency/Appraise/internal/evaluator"
	"github.com/MikeSquared-Agency/Appraise/internal/hermes"
	"github.com/MikeSquared-Agency/Appraise/internal/identifier"
)

// EventSink publishes outcomes to hermes.
type EventSink struct {
	client hermes.Client
}

func NewEventSink(client hermes.Client) *EventSink {
	return &EventSink{client: client}
}

func (s *EventSink) HandleOutcome(o evaluator.Outcome) error {
	if !o.Failed() {
		return s.client.Publish(hermes.SubjectRecordScored(o.Record.Name), hermes.RecordScoredEvent{
			BatchID:    o.BatchID,
			Identifier: o.Identifier,
			Record:     o.Record,
		})
	}
	return s.client.Publish(hermes.SubjectOutcomeFailed(identifier.ModelName(o.Identifier)), hermes.OutcomeFailedEvent{
		BatchID:    o.BatchID,
		Identifier: o.Identifier,
		Kind:       string(o.Kind),
		Error:      o.Reason(),
	})
}

func (s *EventSink) CompleteBatch(res *evaluator.BatchResult) error {
	return s.client.Publish(hermes.SubjectBatchCompleted(res.ID), hermes.BatchCompletedEvent{
		BatchID:     res.ID,
		Total:       res.Total,
		Succeeded:   res.Succeeded,
		Failed:      res.Failures(),
		Skipped:     res.Skipped,
		Interrupted: res.Interrupted,
		DurationMs:  res.Duration.Milliseconds(),
		Timestamp:   time.Now().UTC(),
	})
}
