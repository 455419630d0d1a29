// Package emit holds the outcome sinks a batch reports through: the NDJSON
// result stream, the error log, terminal diagnostics and NATS events.
package emit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MikeSquared-Agency/Appraise/internal/evaluator"
)

// NDJSONWriter writes one JSON object per successful record.
type NDJSONWriter struct {
	enc *json.Encoder
}

func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &NDJSONWriter{enc: enc}
}

func (n *NDJSONWriter) HandleOutcome(o evaluator.Outcome) error {
	if o.Kind != evaluator.KindSuccess || o.Record == nil {
		return nil
	}
	if err := n.enc.Encode(o.Record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

type errorLine struct {
	URL   string `json:"url"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ErrorLog appends one JSON object per failure to a file.
type ErrorLog struct {
	f   *os.File
	enc *json.Encoder
}

// OpenErrorLog opens path for appending, creating it if needed.
func OpenErrorLog(path string) (*ErrorLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &ErrorLog{f: f, enc: enc}, nil
}

func (l *ErrorLog) HandleOutcome(o evaluator.Outcome) error {
	if !o.Failed() {
		return nil
	}
	return l.enc.Encode(errorLine{URL: o.Identifier, Error: o.Reason(), Kind: string(o.Kind)})
}

func (l *ErrorLog) Close() error {
	return l.f.Close()
}

// Multi fans outcomes out to several sinks in order.
type Multi []evaluator.Sink

func (m Multi) HandleOutcome(o evaluator.Outcome) error {
	var errs []error
	for _, s := range m {
		if err := s.HandleOutcome(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) CompleteBatch(res *evaluator.BatchResult) error {
	var errs []error
	for _, s := range m {
		if bs, ok := s.(evaluator.BatchSink); ok {
			if err := bs.CompleteBatch(res); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
