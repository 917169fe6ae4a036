package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lemmekk/internal/collect"
	"lemmekk/internal/config"
	"lemmekk/internal/logging"
)

// Options configures a planning run.
type Options struct {
	Sources            []string
	ExcludedExtensions []string
	Steganography      bool
	Boundary           Boundary
	// Workers bounds concurrent scan and carve work. Values below one mean one.
	Workers   int
	IOTimeout time.Duration
}

// OptionsFromConfig maps the [extract] section onto planner options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{Boundary: BoundaryTrailer, Workers: 1}
	}
	ex := cfg.Extract
	return Options{
		Sources:            append([]string(nil), ex.Sources...),
		ExcludedExtensions: append([]string(nil), ex.ExcludedExtensions...),
		Steganography:      ex.Steganography,
		Boundary:           Boundary(ex.CarveBoundary),
		Workers:            ex.Workers,
		IOTimeout:          time.Duration(ex.IOTimeoutSeconds) * time.Second,
	}
}

// Report summarises a planning run.
type Report struct {
	RunID string
	// Files is the number of candidate files after exclusion.
	Files int
	// Aggregated is the number of jobs before validation.
	Aggregated int
	// Invalid counts jobs dropped by validation.
	Invalid int
	// Detected counts covers reclassified as steganographic.
	Detected int
	Carved   int
	// Failed counts jobs dropped by the scan or carve stages.
	Failed   int
	Duration time.Duration
	Jobs     []Job
}

// Planner turns configured sources into extraction jobs.
type Planner struct {
	opts Options
	// base is handed to stages, which attach their own component.
	base   *slog.Logger
	logger *slog.Logger
}

// NewPlanner constructs a planner. A nil logger discards output.
func NewPlanner(opts Options, logger *slog.Logger) *Planner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Boundary == "" {
		opts.Boundary = BoundaryTrailer
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Planner{
		opts:   opts,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "planner"),
	}
}

type outcome uint8

const (
	outcomeKept outcome = iota
	outcomeDetected
	outcomeCarved
	outcomeFailed
)

// Plan runs every stage and returns the surviving jobs in aggregation order.
// The only error is cancellation of ctx; per-file and per-job failures are
// logged and counted.
func (p *Planner) Plan(ctx context.Context) (*Report, error) {
	start := time.Now()
	ctx = logging.WithRunID(ctx, uuid.NewString())
	runID, _ := logging.RunIDFromContext(ctx)
	logger := logging.WithContext(ctx, p.logger)
	report := &Report{RunID: runID}

	logger.Info("collecting files", logging.Int("sources", len(p.opts.Sources)))
	files := collect.Collect(logging.WithStage(ctx, "collect"), p.base, p.opts.Sources, p.opts.ExcludedExtensions)
	report.Files = len(files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs := Aggregate(logging.WithStage(ctx, "aggregate"), p.base, files)
	report.Aggregated = len(jobs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs = Validate(logging.WithContext(logging.WithStage(ctx, "validate"), p.base), jobs)
	report.Invalid = report.Aggregated - len(jobs)

	jobs, outcomes, err := p.process(ctx, jobs)
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		switch o {
		case outcomeDetected:
			report.Detected++
		case outcomeCarved:
			report.Detected++
			report.Carved++
		case outcomeFailed:
			report.Failed++
		}
	}

	report.Jobs = jobs
	report.Duration = time.Since(start)
	logger.Info("planning complete",
		logging.Int("files", report.Files),
		logging.Int("jobs", len(jobs)),
		logging.Int("invalid", report.Invalid),
		logging.Int("detected", report.Detected),
		logging.Int("carved", report.Carved),
		logging.Int("failed", report.Failed),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

// process runs the scan and carve stages per job on a bounded pool. Results
// are written by index so output order matches input order.
func (p *Planner) process(ctx context.Context, jobs []Job) ([]Job, []outcome, error) {
	if !p.opts.Steganography {
		return jobs, make([]outcome, len(jobs)), nil
	}
	ctx = logging.WithStage(ctx, "stego")
	stageLogger := logging.WithContext(ctx, p.base)
	logger := logging.WithContext(ctx, p.logger)
	scanner := StegoScanner{Boundary: p.opts.Boundary, Timeout: p.opts.IOTimeout, Logger: stageLogger}
	carver := Carver{Timeout: p.opts.IOTimeout, Logger: stageLogger}

	results := make([]Job, len(jobs))
	outcomes := make([]outcome, len(jobs))
	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i], outcomes[i] = processJob(ctx, logger, scanner, carver, job)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	kept := make([]Job, 0, len(jobs))
	for i, job := range results {
		if outcomes[i] != outcomeFailed {
			kept = append(kept, job)
		}
	}
	return kept, outcomes, nil
}

func processJob(ctx context.Context, logger *slog.Logger, scanner StegoScanner, carver Carver, job Job) (Job, outcome) {
	if !job.Kind.IsNormal() {
		return job, outcomeKept
	}
	scanned, err := scanner.Scan(ctx, job)
	if err != nil {
		logging.WarnWithContext(logger, "steganography scan failed; job dropped", "stego_scan_failed",
			logging.String(logging.FieldPath, job.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the file looks like an image but holds no recognisable archive"),
			logging.String(logging.FieldImpact, "file not extracted"),
		)
		return job, outcomeFailed
	}
	if !scanned.Kind.IsStego() {
		return scanned, outcomeKept
	}
	if scanned.Kind.Offset() <= 0 {
		return scanned, outcomeDetected
	}
	carved, err := carver.Carve(ctx, scanned)
	if err != nil {
		logging.WarnWithContext(logger, "carving failed; job dropped", "carve_failed",
			logging.String(logging.FieldPath, job.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove stale .basis/.file outputs or check disk space"),
			logging.String(logging.FieldImpact, "file not extracted"),
		)
		return job, outcomeFailed
	}
	return carved, outcomeCarved
}
