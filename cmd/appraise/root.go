package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Appraise/internal/api"
	"github.com/MikeSquared-Agency/Appraise/internal/config"
	"github.com/MikeSquared-Agency/Appraise/internal/docquality"
	"github.com/MikeSquared-Agency/Appraise/internal/emit"
	"github.com/MikeSquared-Agency/Appraise/internal/evaluator"
	"github.com/MikeSquared-Agency/Appraise/internal/hermes"
	"github.com/MikeSquared-Agency/Appraise/internal/huggingface"
	"github.com/MikeSquared-Agency/Appraise/internal/identifier"
	"github.com/MikeSquared-Agency/Appraise/internal/report"
	"github.com/MikeSquared-Agency/Appraise/internal/scoring"
	"github.com/MikeSquared-Agency/Appraise/internal/telemetry"
)

var version = "dev"

type options struct {
	configPath     string
	summary        bool
	output         string
	failFast       bool
	errorFile      string
	workers        int
	metricsAddr    string
	natsURL        string
	ignoreNonModel bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "appraise <identifiers-file>",
		Short: "Score the trustworthiness of Hugging Face models",
		Long: `Appraise reads model, dataset and code identifiers from a file
(newline or comma separated), scores every model on eight trust metrics
and writes one NDJSON record per model to stdout.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return &config.Error{Err: err}
			}
			applyFlags(cmd, cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts, args[0], stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "path to config file")
	f.BoolVar(&opts.summary, "summary", false, "write <output>.ndjson and <output>_summary.txt after the batch")
	f.StringVar(&opts.output, "output", "evaluation", "base path for --summary files")
	f.BoolVar(&opts.failFast, "fail-fast", false, "stop dispatching after the first failure")
	f.StringVar(&opts.errorFile, "error-file", "", "append failures as NDJSON to this file")
	f.IntVar(&opts.workers, "workers", 0, "concurrent evaluations (0 = GOMAXPROCS)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics on this address while the batch runs")
	f.StringVar(&opts.natsURL, "nats-url", "", "publish outcome events to this NATS server")
	f.BoolVar(&opts.ignoreNonModel, "ignore-non-model", false, "do not fail the batch for DATASET and CODE identifiers")

	return cmd
}

// applyFlags lets explicitly set flags override file and env config.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	f := cmd.Flags()
	if f.Changed("workers") {
		cfg.Evaluation.Workers = opts.workers
	}
	if f.Changed("fail-fast") {
		cfg.Evaluation.FailFast = opts.failFast
	}
	if f.Changed("ignore-non-model") {
		cfg.Evaluation.IgnoreNonModelCategories = opts.ignoreNonModel
	}
	if f.Changed("metrics-addr") {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if f.Changed("nats-url") {
		cfg.Hermes.URL = opts.natsURL
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, inputPath string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, closeLog, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ids, err := identifier.ReadFile(inputPath)
	if err != nil {
		return &config.Error{Err: fmt.Errorf("read identifiers: %w", err)}
	}
	if len(ids) == 0 {
		return &config.Error{Err: fmt.Errorf("no identifiers in %s", inputPath)}
	}

	analyzer := docquality.New(docquality.Config{
		Endpoint: cfg.Enhancer.URL,
		APIKey:   cfg.Enhancer.APIKey,
		Model:    cfg.Enhancer.Model,
		Timeout:  cfg.EnhancerTimeout(),
		Strict:   cfg.Determinism.Strict,
		Seed:     cfg.Determinism.Seed,
	}, logger)
	hub := huggingface.NewHTTPClient(cfg.HuggingFace.BaseURL, cfg.HuggingFace.Token, analyzer, logger)
	scorer := scoring.NewScorer(cfg.WeightSet(), cfg.Params(), logger)
	metrics := telemetry.New()

	// Metrics (optional)
	if cfg.Metrics.Addr != "" {
		srv, err := api.StartMetricsServer(cfg.Metrics.Addr, metrics.Registry(), logger)
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics server started", "addr", srv.Addr())
	}

	sinks := emit.Multi{emit.NewNDJSONWriter(stdout)}

	if opts.errorFile != "" {
		errLog, err := emit.OpenErrorLog(opts.errorFile)
		if err != nil {
			return err
		}
		defer errLog.Close()
		sinks = append(sinks, errLog)
	}

	// Hermes (optional)
	if cfg.Hermes.URL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		hc, err := hermes.NewNATSClient(connectCtx, cfg.Hermes.URL, logger)
		cancel()
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			defer hc.Close()
			sinks = append(sinks, emit.NewEventSink(hc))
			logger.Info("connected to hermes")
		}
	}

	sinks = append(sinks, emit.NewDiagnostics(stderr, colorEnabled(stderr)))

	ev := evaluator.New(hub, scorer, sinks, metrics, evaluator.Options{
		Workers:        cfg.Evaluation.Workers,
		FailFast:       cfg.Evaluation.FailFast,
		IgnoreNonModel: cfg.Evaluation.IgnoreNonModelCategories,
		KeepRecords:    opts.summary,
	}, logger)

	res := ev.Run(ctx, ids)

	if opts.summary {
		ndjsonPath, summaryPath, err := report.WriteFiles(opts.output, res.Records, time.Now())
		if err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		logger.Info("summary written", "results", ndjsonPath, "summary", summaryPath)
	}

	return res.Err()
}

func newLogger(cfg config.LoggingConfig, stderr io.Writer) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, &config.Error{Err: fmt.Errorf("log level: %w", err)}
	}

	w, closeFn := stderr, func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, func() { f.Close() }
	}

	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	return slog.New(h), closeFn, nil
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
