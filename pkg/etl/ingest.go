package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marshallshelly/pebble-orders/pkg/discover"
)

// ErrPartialIngest is returned when ContinueOnError skipped at least one file.
var ErrPartialIngest = errors.New("some files failed to load")

// Policy decides what a run does after a file fails.
type Policy int

const (
	// FailFast stops at the first failing file.
	FailFast Policy = iota
	// ContinueOnError records the failure and loads the remaining files.
	ContinueOnError
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == ContinueOnError {
		return "continue-on-error"
	}
	return "fail-fast"
}

// Progress is reported before and after each file. Result is nil before the file loads.
type Progress struct {
	Total   int
	Done    int
	Current string
	Result  *FileResult
}

// Report summarizes a run.
type Report struct {
	Root     string        `json:"root"`
	Policy   string        `json:"policy"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Files    []FileResult  `json:"files"`
	Loaded   int           `json:"loaded"`
	Failed   int           `json:"failed"`
	Records  int           `json:"records"`
	Items    int           `json:"items"`
}

func (r *Report) add(res FileResult) {
	r.Files = append(r.Files, res)
	if res.OK() {
		r.Loaded++
		r.Records += res.Records
		r.Items += res.Items
	} else {
		r.Failed++
	}
}

// Failures returns the results of files that were not committed.
func (r *Report) Failures() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if !f.OK() {
			failed = append(failed, f)
		}
	}
	return failed
}

// Ingester discovers data files and loads them one by one.
type Ingester struct {
	loader   *Loader
	logger   *zap.Logger
	policy   Policy
	pattern  string
	progress func(Progress)
}

// IngesterOption configures an Ingester.
type IngesterOption func(*Ingester)

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) IngesterOption {
	return func(i *Ingester) { i.policy = p }
}

// WithPattern sets the file name pattern used for discovery.
func WithPattern(pattern string) IngesterOption {
	return func(i *Ingester) { i.pattern = pattern }
}

// WithProgress registers a callback for per-file progress.
func WithProgress(fn func(Progress)) IngesterOption {
	return func(i *Ingester) { i.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) IngesterOption {
	return func(i *Ingester) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewIngester creates an ingester that loads through loader.
func NewIngester(loader *Loader, opts ...IngesterOption) *Ingester {
	i := &Ingester{
		loader:  loader,
		logger:  zap.NewNop(),
		policy:  FailFast,
		pattern: discover.DefaultPattern,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run loads every data file under root. The report is returned even when err is
// non-nil and holds every file attempted so far.
func (i *Ingester) Run(ctx context.Context, root string) (*Report, error) {
	report := &Report{Root: root, Policy: i.policy.String(), Started: time.Now(), Files: make([]FileResult, 0)}
	defer func() { report.Duration = time.Since(report.Started) }()

	files, err := discover.Discover(root, discover.WithPattern(i.pattern), discover.WithLogger(i.logger))
	if err != nil {
		return report, err
	}

	for n, path := range files {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("ingest interrupted: %w", err)
		}
		i.notify(Progress{Total: len(files), Done: n, Current: path})

		res, err := i.loader.LoadFile(ctx, path)
		report.add(res)
		i.notify(Progress{Total: len(files), Done: n + 1, Current: path, Result: &res})

		if err != nil && i.policy == FailFast {
			return report, err
		}
	}

	i.logger.Info("ingest finished",
		zap.Int("files", len(files)),
		zap.Int("loaded", report.Loaded),
		zap.Int("failed", report.Failed),
		zap.Int("records", report.Records),
		zap.Int("items", report.Items),
	)

	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrPartialIngest, report.Failed, len(files))
	}
	return report, nil
}

func (i *Ingester) notify(p Progress) {
	if i.progress != nil {
		i.progress(p)
	}
}
