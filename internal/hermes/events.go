package hermes

import "time"

type RecordScoredEvent struct {
	BatchID    string      `json:"batch_id"`
	Identifier string      `json:"identifier"`
	Record     interface{} `json:"record"`
}

type OutcomeFailedEvent struct {
	BatchID    string `json:"batch_id"`
	Identifier string `json:"identifier"`
	Kind       string `json:"kind"`
	Error      string `json:"error"`
}

type BatchCompletedEvent struct {
	BatchID     string    `json:"batch_id"`
	Total       int       `json:"total"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Interrupted bool      `json:"interrupted,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}
