// Package evaluator runs a batch of identifiers through classification,
// context building and scoring on a bounded worker pool.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Appraise/internal/identifier"
	"github.com/MikeSquared-Agency/Appraise/internal/modelctx"
	"github.com/MikeSquared-Agency/Appraise/internal/scoring"
)

// Sink receives every outcome. It is only ever called from the collector
// goroutine, so implementations need no locking of their own.
type Sink interface {
	HandleOutcome(o Outcome) error
}

// BatchSink is implemented by sinks that want to hear about batch completion.
type BatchSink interface {
	CompleteBatch(res *BatchResult) error
}

// Observer receives instrumentation callbacks. Implementations must be safe
// for concurrent use; build and in-flight callbacks come from workers.
type Observer interface {
	WorkerStarted()
	WorkerFinished()
	ContextBuilt(d time.Duration, err error)
	OutcomeRecorded(o Outcome)
}

type nopObserver struct{}

func (nopObserver) WorkerStarted()                    {}
func (nopObserver) WorkerFinished()                   {}
func (nopObserver) ContextBuilt(time.Duration, error) {}
func (nopObserver) OutcomeRecorded(Outcome)           {}

type Options struct {
	// Workers bounds concurrent evaluations. Zero means GOMAXPROCS.
	Workers int
	// FailFast stops dispatching after the first lookup or processing failure.
	FailFast bool
	// IgnoreNonModel keeps DATASET and CODE identifiers out of the exit decision.
	IgnoreNonModel bool
	// KeepRecords retains successful records on the BatchResult for reporting.
	KeepRecords bool
}

type Evaluator struct {
	builder  modelctx.Builder
	scorer   *scoring.Scorer
	sink     Sink
	observer Observer
	opts     Options
	logger   *slog.Logger
}

func New(builder modelctx.Builder, scorer *scoring.Scorer, sink Sink, observer Observer, opts Options, logger *slog.Logger) *Evaluator {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Evaluator{
		builder:  builder,
		scorer:   scorer,
		sink:     sink,
		observer: observer,
		opts:     opts,
		logger:   logger,
	}
}

func (e *Evaluator) workers() int {
	if e.opts.Workers > 0 {
		return e.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Run evaluates ids and blocks until every dispatched evaluation has
// resolved. Outcomes stream to the sink as they complete.
func (e *Evaluator) Run(ctx context.Context, ids []string) *BatchResult {
	start := time.Now()
	res := &BatchResult{ID: uuid.NewString(), Total: len(ids)}
	logger := e.logger.With("batch_id", res.ID)
	logger.Info("batch started", "identifiers", len(ids), "workers", e.workers(), "fail_fast", e.opts.FailFast)

	outcomes := make(chan Outcome, e.workers())
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for o := range outcomes {
			e.collect(logger, res, o)
		}
	}()

	models := e.classify(ids, outcomes)

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var skipped atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(e.workers())
	for i, id := range models {
		if runCtx.Err() != nil {
			skipped.Add(int64(len(models) - i))
			break
		}
		g.Go(func() error {
			if !e.evaluate(runCtx, cancel, logger, id, outcomes) {
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)
	<-collected

	res.Skipped = int(skipped.Load())
	res.Interrupted = ctx.Err() != nil
	res.Duration = time.Since(start)

	if bs, ok := e.sink.(BatchSink); ok {
		if err := bs.CompleteBatch(res); err != nil {
			logger.Warn("batch completion sink failed", "error", err)
		}
	}

	logger.Info("batch completed",
		"succeeded", res.Succeeded,
		"failures", res.Failures(),
		"skipped", res.Skipped,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res
}

// classify reports non-model identifiers straight to the collector and
// returns the model identifiers that need a worker.
func (e *Evaluator) classify(ids []string, outcomes chan<- Outcome) []string {
	var models []string
	for _, id := range ids {
		cat, err := identifier.Classify(id)
		switch {
		case err != nil:
			outcomes <- Outcome{Identifier: id, Kind: KindClassify, Err: fmt.Errorf("classify error: %w", err)}
		case cat != identifier.Model:
			outcomes <- Outcome{
				Identifier: id,
				Category:   cat,
				Kind:       KindClassify,
				Err:        fmt.Errorf("unsupported category: %s", cat),
				Ignored:    e.opts.IgnoreNonModel,
			}
		default:
			models = append(models, id)
		}
	}
	return models
}

// evaluate builds, scores and reports one model. It returns false when the
// model was skipped because the batch had already been cancelled.
func (e *Evaluator) evaluate(ctx context.Context, cancel context.CancelCauseFunc, logger *slog.Logger, id string, outcomes chan<- Outcome) (started bool) {
	if ctx.Err() != nil {
		return false
	}

	e.observer.WorkerStarted()
	defer e.observer.WorkerFinished()

	report := func(o Outcome) {
		if o.Failed() && e.opts.FailFast {
			cancel(fmt.Errorf("fail-fast after %s", id))
		}
		outcomes <- o
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("evaluation panicked", "identifier", id, "panic", r)
			report(Outcome{Identifier: id, Category: identifier.Model, Kind: KindProcessing, Err: fmt.Errorf("panic: %v", r)})
			started = true
		}
	}()

	buildStart := time.Now()
	ec, err := e.builder.BuildContext(ctx, id)
	e.observer.ContextBuilt(time.Since(buildStart), err)

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			logger.Debug("evaluation abandoned", "identifier", id, "error", err)
			return false
		}
		var lookup *modelctx.LookupError
		if errors.As(err, &lookup) {
			report(Outcome{Identifier: id, Category: identifier.Model, Kind: KindLookup, Err: err})
		} else {
			report(Outcome{Identifier: id, Category: identifier.Model, Kind: KindProcessing, Err: err})
		}
		return true
	}
	if ec == nil {
		report(Outcome{Identifier: id, Category: identifier.Model, Kind: KindProcessing, Err: errors.New("builder returned no context")})
		return true
	}

	rec := e.scorer.Score(identifier.ModelName(id), string(identifier.Model), ec)
	report(Outcome{Identifier: id, Category: identifier.Model, Kind: KindSuccess, Record: &rec})
	return true
}

func (e *Evaluator) collect(logger *slog.Logger, res *BatchResult, o Outcome) {
	switch o.Kind {
	case KindSuccess:
		res.Succeeded++
		if e.opts.KeepRecords {
			res.Records = append(res.Records, *o.Record)
		}
	case KindClassify:
		if o.Ignored {
			res.IgnoredCategories++
		} else {
			res.ClassifyFailures++
		}
	case KindLookup:
		res.LookupFailures++
	case KindProcessing:
		res.ProcessingFailures++
	}

	o.BatchID = res.ID
	if o.Failed() {
		logger.Debug("evaluation failed", "identifier", o.Identifier, "kind", o.Kind, "error", o.Err)
	}

	e.observer.OutcomeRecorded(o)
	if err := e.sink.HandleOutcome(o); err != nil {
		logger.Error("failed to emit outcome", "identifier", o.Identifier, "error", err)
	}
}
