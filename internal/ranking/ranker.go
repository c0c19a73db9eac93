// Package ranking scores many resumes against one job and orders them.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchsense/matchsense/internal/engine"
	"github.com/matchsense/matchsense/internal/extract"
	"github.com/matchsense/matchsense/internal/logger"
	"github.com/matchsense/matchsense/internal/metrics"
	"github.com/matchsense/matchsense/internal/scoring"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// ErrNotStarted marks entries skipped because the batch was cancelled.
var ErrNotStarted = errors.New("analysis not started: batch cancelled")

type analyzer interface {
	PrepareJob(text string, level extract.Level) (*engine.Job, error)
	AnalyzeJob(ctx context.Context, job *engine.Job, resumeText string, weights *scoring.Weights) (*engine.Result, error)
}

// Resume is one batch input. An empty ID is replaced by a generated one.
// When Load is set it runs on the worker and its text replaces Text; a Load
// error fails the entry like an analysis error.
type Resume struct {
	ID       string
	Filename string
	Text     string
	Load     func() (string, error)
}

// Entry is the outcome for one resume. Exactly one of Result and Err is set.
type Entry struct {
	Index    int
	ID       string
	Filename string
	Result   *engine.Result
	Err      error
}

// Overall is the entry's score; failed entries score 0.
func (e Entry) Overall() float64 {
	if e.Result == nil {
		return 0
	}
	return e.Result.Overall
}

func (e Entry) Failed() bool { return e.Err != nil }

type Summary struct {
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Degraded   int           `json:"degraded"`
	Failed     int           `json:"failed"`
	NotStarted int           `json:"not_started"`
	Duration   time.Duration `json:"duration"`
}

// Batch holds entries sorted by descending overall score. Equal scores keep
// their input order.
type Batch struct {
	Entries []Entry
	Summary Summary
}

type Options struct {
	Concurrency int
	Metrics     *metrics.Metrics
}

type Ranker struct {
	analyzer    analyzer
	concurrency int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func New(a analyzer, log *zap.Logger, opts Options) *Ranker {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Ranker{
		analyzer:    a,
		concurrency: concurrency,
		metrics:     opts.Metrics,
		logger:      logger.WithFields(log).Named("ranking"),
	}
}

// Rank analyzes every resume against the job and sorts the outcomes. A
// single resume failure never fails the batch. When ctx is cancelled no new
// analyses are started, the remaining entries fail with ErrNotStarted and
// the partial batch is returned together with ctx.Err().
func (r *Ranker) Rank(ctx context.Context, resumes []Resume, jobText string, level extract.Level, weights *scoring.Weights) (*Batch, error) {
	if weights != nil {
		if err := weights.Check(); err != nil {
			return nil, err
		}
	}

	job, err := r.analyzer.PrepareJob(jobText, level)
	if err != nil {
		return nil, fmt.Errorf("preparing job: %w", err)
	}

	start := time.Now()
	entries := make([]Entry, len(resumes))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)

	for i, resume := range resumes {
		id := strings.TrimSpace(resume.ID)
		if id == "" {
			id = uuid.NewString()
		}
		entries[i] = Entry{Index: i, ID: id, Filename: resume.Filename}

		if ctx.Err() != nil {
			entries[i].Err = ErrNotStarted
			continue
		}

		g.Go(func() error {
			r.analyzeOne(ctx, job, resume, weights, &entries[i])
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Overall() > entries[j].Overall()
	})

	batch := &Batch{Entries: entries, Summary: summarize(entries, time.Since(start))}

	cancelled := ctx.Err() != nil
	r.metrics.ObserveBatch(len(entries), cancelled)

	r.logger.Info("batch ranked",
		zap.Int("total", batch.Summary.Total),
		zap.Int("succeeded", batch.Summary.Succeeded),
		zap.Int("degraded", batch.Summary.Degraded),
		zap.Int("failed", batch.Summary.Failed),
		zap.Int("not_started", batch.Summary.NotStarted),
		zap.Duration("duration", batch.Summary.Duration),
	)

	if cancelled {
		return batch, ctx.Err()
	}
	return batch, nil
}

func (r *Ranker) analyzeOne(ctx context.Context, job *engine.Job, resume Resume, weights *scoring.Weights, entry *Entry) {
	log := logger.WithFields(r.logger, logger.ResumeFields(entry.ID, entry.Filename)...)

	defer func() {
		if rec := recover(); rec != nil {
			entry.Result = nil
			entry.Err = fmt.Errorf("analysis panicked: %v", rec)
			log.Error("resume analysis panicked", zap.Any("panic", rec))
		}
	}()

	if ctx.Err() != nil {
		entry.Err = ErrNotStarted
		return
	}

	text := resume.Text
	if resume.Load != nil {
		loaded, err := resume.Load()
		if err != nil {
			entry.Err = err
			log.Warn("loading resume failed", zap.Error(err))
			return
		}
		text = loaded
	}

	result, err := r.analyzer.AnalyzeJob(ctx, job, text, weights)
	if err != nil {
		entry.Err = err
		log.Warn("resume analysis failed", zap.Error(err))
		return
	}
	entry.Result = result
}

func summarize(entries []Entry, d time.Duration) Summary {
	s := Summary{Total: len(entries), Duration: d}
	for _, e := range entries {
		switch {
		case errors.Is(e.Err, ErrNotStarted):
			s.NotStarted++
			s.Failed++
		case e.Err != nil:
			s.Failed++
		case e.Result.Degraded():
			s.Degraded++
			s.Succeeded++
		default:
			s.Succeeded++
		}
	}
	return s
}
